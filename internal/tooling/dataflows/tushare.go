package dataflows

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// TushareClient calls the Tushare Pro HTTP API
// (http://api.tushare.pro, a single JSON-RPC-shaped endpoint dispatched
// by api_name) for A-share fundamentals and daily bars.
type TushareClient struct {
	client *resty.Client
	token  string
	cache  *Cache
}

// NewTushareClient builds a client bound to the given token; cacheDir
// backs short-lived response caching per api_name+params.
func NewTushareClient(token string, cacheDir string, cacheEnabled bool) *TushareClient {
	client := resty.New().
		SetBaseURL("http://api.tushare.pro").
		SetTimeout(60 * time.Second)
	return &TushareClient{
		client: client,
		token:  token,
		cache:  NewCache(cacheDir, 6*time.Hour, cacheEnabled),
	}
}

type tushareRequest struct {
	APIName string         `json:"api_name"`
	Token   string         `json:"token"`
	Params  map[string]any `json:"params"`
	Fields  string         `json:"fields"`
}

type tushareResponse struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
	Data struct {
		Fields []string        `json:"fields"`
		Items  [][]interface{} `json:"items"`
	} `json:"data"`
}

// query performs one api_name call and returns rows as field→value maps.
func (t *TushareClient) query(ctx context.Context, apiName string, params map[string]any, fields string) ([]map[string]any, error) {
	if t.token == "" {
		return nil, fmt.Errorf("auth: tushare token is not configured")
	}

	var cached []map[string]any
	if t.cache.Get("tushare", apiName, params, &cached) {
		return cached, nil
	}

	var out tushareResponse
	resp, err := t.client.R().
		SetContext(ctx).
		SetBody(tushareRequest{APIName: apiName, Token: t.token, Params: params, Fields: fields}).
		SetResult(&out).
		Post("")
	if err != nil {
		return nil, fmt.Errorf("network: tushare request failed: %w", err)
	}
	if resp.StatusCode() == 429 {
		return nil, fmt.Errorf("rate limit: tushare returned 429")
	}
	if resp.StatusCode() >= 500 {
		return nil, fmt.Errorf("server: tushare returned %d", resp.StatusCode())
	}
	if out.Code != 0 {
		if strings.Contains(strings.ToLower(out.Msg), "token") {
			return nil, fmt.Errorf("auth: %s", out.Msg)
		}
		return nil, fmt.Errorf("server: tushare error %d: %s", out.Code, out.Msg)
	}

	rows := make([]map[string]any, 0, len(out.Data.Items))
	for _, item := range out.Data.Items {
		row := make(map[string]any, len(out.Data.Fields))
		for i, f := range out.Data.Fields {
			if i < len(item) {
				row[f] = item[i]
			}
		}
		rows = append(rows, row)
	}

	if len(rows) == 0 {
		return nil, fmt.Errorf("not found: tushare returned no rows for %s", apiName)
	}

	_ = t.cache.Set("tushare", apiName, params, rows)
	return rows, nil
}

// DailyBars fetches OHLCV bars for tsCode (already market-suffixed,
// e.g. "600519.SH") between start and end (YYYYMMDD).
func (t *TushareClient) DailyBars(ctx context.Context, tsCode, start, end string) ([]map[string]any, error) {
	return t.query(ctx, "daily", map[string]any{
		"ts_code":    tsCode,
		"start_date": start,
		"end_date":   end,
	}, "ts_code,trade_date,open,high,low,close,vol")
}

// DailyBasic fetches the PE/PB/turnover/dividend-yield snapshot for one
// trading date, the primary input to the validation layer.
func (t *TushareClient) DailyBasic(ctx context.Context, tsCode, tradeDate string) ([]map[string]any, error) {
	return t.query(ctx, "daily_basic", map[string]any{
		"ts_code":    tsCode,
		"trade_date": tradeDate,
	}, "ts_code,trade_date,pe,pb,ps,total_mv,circ_mv,turnover_rate,volume_ratio,dv_ratio,dv_ttm")
}

// DailyBasicHistory fetches the daily_basic time series between start
// and end (YYYYMMDD), the input to PE/PB percentile statistics the
// valuation-consistency checks compare a report's claims against.
func (t *TushareClient) DailyBasicHistory(ctx context.Context, tsCode, start, end string) ([]map[string]any, error) {
	return t.query(ctx, "daily_basic", map[string]any{
		"ts_code":    tsCode,
		"start_date": start,
		"end_date":   end,
	}, "ts_code,trade_date,pe,pb,ps,total_mv,circ_mv,turnover_rate,volume_ratio,dv_ratio,dv_ttm")
}

// FinancialIndicators fetches per-period ROE/ROA/margin/leverage
// indicators used by the fundamentals analyst.
func (t *TushareClient) FinancialIndicators(ctx context.Context, tsCode string) ([]map[string]any, error) {
	return t.query(ctx, "fina_indicator", map[string]any{
		"ts_code": tsCode,
	}, "ts_code,end_date,eps,bps,roe,roa,grossprofit_margin,netprofit_margin,debt_to_assets,current_ratio,quick_ratio,netprofit_yoy")
}

// Dividends fetches cash-dividend records with ex-dates, the basis for
// the TTM dividend validation.
func (t *TushareClient) Dividends(ctx context.Context, tsCode string) ([]map[string]any, error) {
	return t.query(ctx, "dividend", map[string]any{
		"ts_code": tsCode,
	}, "ts_code,ex_date,cash_div_tax,record_date,div_listdate")
}

// Top10Holders fetches the latest ten largest shareholders.
func (t *TushareClient) Top10Holders(ctx context.Context, tsCode string) ([]map[string]any, error) {
	return t.query(ctx, "top10_holders", map[string]any{
		"ts_code": tsCode,
	}, "ts_code,end_date,holder_name,hold_amount,hold_ratio")
}

// HSGTTop10 fetches the northbound-capital (Hong Kong Stock Connect)
// top-10 holdings list, a China-market-regime tool (SUPPLEMENTED
// FEATURES).
func (t *TushareClient) HSGTTop10(ctx context.Context, tradeDate string) ([]map[string]any, error) {
	return t.query(ctx, "hsgt_top10", map[string]any{
		"trade_date": tradeDate,
	}, "trade_date,ts_code,name,close,change,rank,amount,net_amount,trade")
}

// PMI fetches the monthly manufacturing Purchasing Managers' Index, a
// China-market-regime macro tool (SUPPLEMENTED FEATURES).
func (t *TushareClient) PMI(ctx context.Context, month string) ([]map[string]any, error) {
	return t.query(ctx, "cn_pmi", map[string]any{
		"m": month,
	}, "month,pmi010000")
}
