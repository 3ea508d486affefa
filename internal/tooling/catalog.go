package tooling

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/cloudwego/eino/schema"

	"github.com/shopspring/decimal"

	"github.com/marketsage/ashare-agents/config"
	"github.com/marketsage/ashare-agents/internal/models"
	"github.com/marketsage/ashare-agents/internal/tooling/dataflows"
)

// Catalog owns the data-provider clients and registers every data tool
// an agent role can bind.
type Catalog struct {
	Registry *Registry

	tushare  *dataflows.TushareClient
	akshare  *dataflows.AKShareClient
	yahoo    *dataflows.YahooClient
	longport *dataflows.LongportClient
	news     *dataflows.NewsScraper
	regime   *dataflows.RegimeClient
}

// NewCatalog builds every data-provider client from cfg and registers
// its tools on a fresh Registry.
func NewCatalog(cfg *config.Config) *Catalog {
	cacheDir := cfg.Runtime.DataCacheDir
	cacheOn := cfg.Runtime.CacheEnabled

	tushare := dataflows.NewTushareClient(cfg.Data.TushareToken, cacheDir, cacheOn)
	akshare := dataflows.NewAKShareClient(cacheDir, cacheOn)
	yahoo := dataflows.NewYahooClient(cacheDir, cacheOn)
	news := dataflows.NewNewsScraper(cacheDir, cacheOn)
	regime := dataflows.NewRegimeClient(tushare, akshare)

	longport, err := dataflows.NewLongportClient(cfg.Data.LongportAppKey, cfg.Data.LongportAppSecret, cfg.Data.LongportAccessToken)
	if err != nil {
		longport = nil
	}

	c := &Catalog{
		Registry: NewRegistry(),
		tushare:  tushare,
		akshare:  akshare,
		yahoo:    yahoo,
		longport: longport,
		news:     news,
		regime:   regime,
	}
	c.register()
	return c
}

// Tushare exposes the tushare client for callers that need to dispatch
// a data fetch directly rather than through an LLM tool call (the
// analysis graph's validation layer, in particular).
func (c *Catalog) Tushare() *dataflows.TushareClient { return c.tushare }

func strArg(args map[string]any, key, def string) string {
	if v, ok := args[key].(string); ok && v != "" {
		return v
	}
	return def
}

func intArg(args map[string]any, key string, def int) int {
	switch v := args[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	default:
		return def
	}
}

func marshalData(v any) Envelope {
	b, err := json.Marshal(v)
	if err != nil {
		return Envelope{Success: false, Error: err.Error(), Category: ErrUnknown}
	}
	return Envelope{Success: true, Data: string(b)}
}

func envelopeFromErr(source string, err error) Envelope {
	return Envelope{Success: false, Error: err.Error(), Category: Classify(err), Source: source}
}

func (c *Catalog) register() {
	c.registerMarketTools()
	c.registerFundamentalsTools()
	c.registerSentimentAndNewsTools()
	c.registerChinaRegimeTool()
}

func (c *Catalog) registerMarketTools() {
	c.Registry.Register(Definition{
		Name:        "get_market_data",
		Description: "获取指定A股代码最近若干个交易日的日线行情（OHLCV），并计算技术指标。",
		Params: map[string]*schema.ParameterInfo{
			"symbol": {Type: "string", Desc: "六位A股代码，如 600519", Required: true},
			"count":  {Type: "integer", Desc: "取最近多少个交易日，默认30", Required: false},
		},
		Handler: func(ctx context.Context, args map[string]any) Envelope {
			symbol := strArg(args, "symbol", "")
			if symbol == "" {
				return Envelope{Success: false, Error: "symbol is required", Category: ErrInvalidParam}
			}
			tsCode, err := NormalizeTicker(symbol)
			if err != nil {
				return Envelope{Success: false, Error: err.Error(), Category: ErrInvalidParam}
			}
			count := intArg(args, "count", 30)
			end := time.Now()
			start := end.AddDate(0, 0, -count*2)

			rows, err := c.tushare.DailyBars(ctx, tsCode, start.Format("20060102"), end.Format("20060102"))
			if err != nil || len(rows) == 0 {
				bars, yerr := c.yahoo.DailyBars(ctx, symbol, start, end)
				if yerr != nil {
					return envelopeFromErr("get_market_data", fmt.Errorf("tushare: %v; yahoo fallback: %w", err, yerr))
				}
				return marketBarsEnvelope(symbol, bars)
			}
			bars := barsFromTushareRows(symbol, rows)
			return marketBarsEnvelope(symbol, bars)
		},
	})
}

func (c *Catalog) registerFundamentalsTools() {
	c.Registry.Register(Definition{
		Name:        "get_fundamentals",
		Description: "获取A股代码的每日估值指标（PE/PB/市值）与核心财务指标。",
		Params: map[string]*schema.ParameterInfo{
			"symbol": {Type: "string", Desc: "六位A股代码", Required: true},
		},
		Handler: func(ctx context.Context, args map[string]any) Envelope {
			symbol := strArg(args, "symbol", "")
			tsCode, err := NormalizeTicker(symbol)
			if err != nil {
				return Envelope{Success: false, Error: err.Error(), Category: ErrInvalidParam}
			}
			tradeDate := time.Now().Format("20060102")
			basic, err := c.tushare.DailyBasic(ctx, tsCode, tradeDate)
			if err != nil {
				return envelopeFromErr("get_fundamentals", err)
			}
			indicators, err := c.tushare.FinancialIndicators(ctx, tsCode)
			if err != nil {
				return envelopeFromErr("get_fundamentals", err)
			}
			return marshalData(map[string]any{"daily_basic": basic, "indicators": indicators})
		},
	})

	c.Registry.Register(Definition{
		Name:        "get_dividends",
		Description: "获取A股代码的历史分红记录，用于股息率校验。",
		Params: map[string]*schema.ParameterInfo{
			"symbol": {Type: "string", Desc: "六位A股代码", Required: true},
		},
		Handler: func(ctx context.Context, args map[string]any) Envelope {
			tsCode, err := NormalizeTicker(strArg(args, "symbol", ""))
			if err != nil {
				return Envelope{Success: false, Error: err.Error(), Category: ErrInvalidParam}
			}
			rows, err := c.tushare.Dividends(ctx, tsCode)
			if err != nil {
				return envelopeFromErr("get_dividends", err)
			}
			return marshalData(rows)
		},
	})

	c.Registry.Register(Definition{
		Name:        "get_top_holders",
		Description: "获取A股代码的十大股东及北向资金持股情况。",
		Params: map[string]*schema.ParameterInfo{
			"symbol": {Type: "string", Desc: "六位A股代码", Required: true},
		},
		Handler: func(ctx context.Context, args map[string]any) Envelope {
			tsCode, err := NormalizeTicker(strArg(args, "symbol", ""))
			if err != nil {
				return Envelope{Success: false, Error: err.Error(), Category: ErrInvalidParam}
			}
			rows, err := c.tushare.Top10Holders(ctx, tsCode)
			if err != nil {
				return envelopeFromErr("get_top_holders", err)
			}
			return marshalData(rows)
		},
	})
}

func (c *Catalog) registerSentimentAndNewsTools() {
	c.Registry.Register(Definition{
		Name:        "get_stock_news",
		Description: "获取A股代码相关的个股新闻与投资者互动问答，用于舆情与题材判断。",
		Params: map[string]*schema.ParameterInfo{
			"symbol": {Type: "string", Desc: "六位A股代码", Required: true},
		},
		Handler: func(ctx context.Context, args map[string]any) Envelope {
			symbol := strArg(args, "symbol", "")
			items, err := c.akshare.StockNews(ctx, symbol)
			if err != nil {
				return envelopeFromErr("get_stock_news", err)
			}
			return marshalData(items)
		},
	})

	c.Registry.Register(Definition{
		Name:        "search_news",
		Description: "按关键词检索全网新闻报道，用于补充个股新闻覆盖不足的情形。",
		Params: map[string]*schema.ParameterInfo{
			"query":       {Type: "string", Desc: "检索关键词", Required: true},
			"max_results": {Type: "integer", Desc: "返回条数，默认10", Required: false},
		},
		Handler: func(ctx context.Context, args map[string]any) Envelope {
			query := strArg(args, "query", "")
			if query == "" {
				return Envelope{Success: false, Error: "query is required", Category: ErrInvalidParam}
			}
			max := intArg(args, "max_results", 10)
			articles, err := c.news.Search(ctx, query, max)
			if err != nil {
				return envelopeFromErr("search_news", err)
			}
			return marshalData(articles)
		},
	})
}

func (c *Catalog) registerChinaRegimeTool() {
	c.Registry.Register(Definition{
		Name:        "get_china_market_regime",
		Description: "获取当前A股市场宏观环境快照：制造业PMI、北向资金十大重仓、央视新闻联播摘要。",
		Params: map[string]*schema.ParameterInfo{
			"month":      {Type: "string", Desc: "PMI所属月份 YYYYMM", Required: false},
			"trade_date": {Type: "string", Desc: "北向资金查询交易日 YYYYMMDD", Required: false},
			"cctv_date":  {Type: "string", Desc: "新闻联播日期 YYYYMMDD", Required: false},
		},
		Handler: func(ctx context.Context, args map[string]any) Envelope {
			now := time.Now()
			month := strArg(args, "month", now.Format("200601"))
			tradeDate := strArg(args, "trade_date", now.Format("20060102"))
			cctvDate := strArg(args, "cctv_date", now.Format("20060102"))
			report := c.regime.Snapshot(ctx, month, tradeDate, cctvDate)
			return Envelope{Success: true, Data: report}
		},
	})

	if c.longport == nil {
		return
	}
	c.Registry.Register(Definition{
		Name:        "get_hk_us_quote",
		Description: "通过长桥获取港股/美股实时报价，用于跨市场情绪对照（需配置长桥凭证）。",
		Params: map[string]*schema.ParameterInfo{
			"symbols": {Type: "string", Desc: "逗号分隔的长桥标的代码，如 700.HK,AAPL.US", Required: true},
		},
		Handler: func(ctx context.Context, args map[string]any) Envelope {
			symbols := splitCSV(strArg(args, "symbols", ""))
			if len(symbols) == 0 {
				return Envelope{Success: false, Error: "symbols is required", Category: ErrInvalidParam}
			}
			quotes, err := c.longport.Quote(ctx, symbols)
			if err != nil {
				return envelopeFromErr("get_hk_us_quote", err)
			}
			return marshalData(quotes)
		},
	})
}

// barsFromTushareRows converts tushare's loosely-typed row maps into
// MarketBar, skipping rows that don't parse cleanly.
func barsFromTushareRows(symbol string, rows []map[string]any) []*models.MarketBar {
	bars := make([]*models.MarketBar, 0, len(rows))
	for _, row := range rows {
		date, _ := row["trade_date"].(string)
		bars = append(bars, &models.MarketBar{
			Symbol: symbol,
			Date:   date,
			Open:   decimalFromField(row["open"]),
			High:   decimalFromField(row["high"]),
			Low:    decimalFromField(row["low"]),
			Close:  decimalFromField(row["close"]),
			Volume: int64(floatFromField(row["vol"])),
		})
	}
	return bars
}

func decimalFromField(v any) decimal.Decimal {
	return decimal.NewFromFloat(floatFromField(v))
}

func floatFromField(v any) float64 {
	switch t := v.(type) {
	case float64:
		return t
	case int:
		return float64(t)
	default:
		return 0
	}
}

// marketBarsEnvelope renders bars plus the standard technical-indicator
// set as one Markdown document, the content the market analyst's tool
// call returns.
func marketBarsEnvelope(symbol string, bars []*models.MarketBar) Envelope {
	if len(bars) == 0 {
		return Envelope{Success: false, Error: "no market data returned", Category: ErrNotFound, Source: "get_market_data"}
	}

	sma := dataflows.SMA(bars, 20)
	ema := dataflows.EMA(bars, 12)
	rsi := dataflows.RSI(bars, 14)
	macdLine, macdSignal, macdHist := dataflows.MACD(bars)
	bbMid, bbUp, bbLow := dataflows.BollingerBands(bars)
	atr := dataflows.ATR(bars, 14)
	mfi := dataflows.MFI(bars, 14)

	report := fmt.Sprintf("## %s 行情与技术指标\n\n", symbol)
	report += renderBarsTable(bars)
	report += dataflows.RenderMarkdown("SMA(20)", sma)
	report += dataflows.RenderMarkdown("EMA(12)", ema)
	report += dataflows.RenderMarkdown("RSI(14)", rsi)
	report += dataflows.RenderMarkdown("MACD", macdLine)
	report += dataflows.RenderMarkdown("MACD Signal", macdSignal)
	report += dataflows.RenderMarkdown("MACD Histogram", macdHist)
	report += dataflows.RenderMarkdown("Bollinger Mid", bbMid)
	report += dataflows.RenderMarkdown("Bollinger Upper", bbUp)
	report += dataflows.RenderMarkdown("Bollinger Lower", bbLow)
	report += dataflows.RenderMarkdown("ATR(14)", atr)
	report += dataflows.RenderMarkdown("MFI(14)", mfi)

	return Envelope{Success: true, Data: report, Source: "get_market_data"}
}

func renderBarsTable(bars []*models.MarketBar) string {
	s := "| date | open | high | low | close | volume |\n|---|---|---|---|---|---|\n"
	start := 0
	if len(bars) > 30 {
		start = len(bars) - 30
	}
	for _, bar := range bars[start:] {
		s += fmt.Sprintf("| %s | %s | %s | %s | %s | %d |\n",
			bar.Date, bar.Open.StringFixed(2), bar.High.StringFixed(2),
			bar.Low.StringFixed(2), bar.Close.StringFixed(2), bar.Volume)
	}
	return s + "\n"
}

func splitCSV(s string) []string {
	var out []string
	cur := ""
	for _, r := range s {
		if r == ',' {
			if cur != "" {
				out = append(out, cur)
				cur = ""
			}
			continue
		}
		cur += string(r)
	}
	if cur != "" {
		out = append(out, cur)
	}
	return out
}
