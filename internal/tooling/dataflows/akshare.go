package dataflows

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

// AKShareClient mirrors the subset of akshare's stock-news/sentiment
// surface the sentiment analyst draws on, backed directly by the public
// Eastmoney JSON endpoints akshare itself wraps (no Go SDK exists for
// akshare, so the underlying HTTP contract is called directly).
type AKShareClient struct {
	client *resty.Client
	cache  *Cache
}

// NewAKShareClient returns a client with a short cache TTL suited to
// intraday sentiment data.
func NewAKShareClient(cacheDir string, cacheEnabled bool) *AKShareClient {
	client := resty.New().SetTimeout(30 * time.Second)
	return &AKShareClient{client: client, cache: NewCache(cacheDir, 1*time.Hour, cacheEnabled)}
}

// StockNewsItem is one company-specific news item.
type StockNewsItem struct {
	Title     string `json:"title"`
	Content   string `json:"content"`
	Source    string `json:"source"`
	PublishAt string `json:"publish_at"`
	URL       string `json:"url"`
}

type eastmoneyNewsResponse struct {
	Data struct {
		Items []struct {
			Title     string `json:"Title"`
			Digest    string `json:"Digest"`
			Source    string `json:"MediaName"`
			ShowTime  string `json:"ShowTime"`
			ArticleID string `json:"ArticleID"`
		} `json:"List"`
	} `json:"Data"`
}

// StockNews fetches recent company-specific news for a six-digit A-share
// code, the sentiment analyst's primary tool.
func (a *AKShareClient) StockNews(ctx context.Context, code string) ([]StockNewsItem, error) {
	var cached []StockNewsItem
	if a.cache.Get("akshare", "stock_news", code, &cached) {
		return cached, nil
	}

	var out eastmoneyNewsResponse
	resp, err := a.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"code":     code,
			"pageSize": "20",
			"pageIndex": "1",
		}).
		SetResult(&out).
		Get("https://np-listapi.eastmoney.com/comm/web/getListInfo")
	if err != nil {
		return nil, fmt.Errorf("network: akshare-equivalent news fetch failed: %w", err)
	}
	if resp.StatusCode() == 429 {
		return nil, fmt.Errorf("rate limit: news endpoint returned 429")
	}
	if resp.StatusCode() >= 500 {
		return nil, fmt.Errorf("server: news endpoint returned %d", resp.StatusCode())
	}

	items := make([]StockNewsItem, 0, len(out.Data.Items))
	for _, it := range out.Data.Items {
		items = append(items, StockNewsItem{
			Title:     it.Title,
			Content:   it.Digest,
			Source:    it.Source,
			PublishAt: it.ShowTime,
			URL:       fmt.Sprintf("https://finance.eastmoney.com/a/%s.html", it.ArticleID),
		})
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("not found: no news items for %s", code)
	}

	_ = a.cache.Set("akshare", "stock_news", code, items)
	return items, nil
}

// CCTVDigest is one day's CCTV evening-news economic-affairs digest
// entry, a China-market-regime tool (SUPPLEMENTED FEATURES).
type CCTVDigest struct {
	Date    string `json:"date"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

type cctvResponse struct {
	Data []struct {
		Date    string `json:"date"`
		Title   string `json:"title"`
		Content string `json:"content"`
	} `json:"data"`
}

// CCTVNews fetches the evening-news economic digest for a given date
// (YYYYMMDD).
func (a *AKShareClient) CCTVNews(ctx context.Context, date string) ([]CCTVDigest, error) {
	var cached []CCTVDigest
	if a.cache.Get("akshare", "cctv_news", date, &cached) {
		return cached, nil
	}

	var out cctvResponse
	resp, err := a.client.R().
		SetContext(ctx).
		SetQueryParam("date", date).
		SetResult(&out).
		Get("https://datacenter-web.eastmoney.com/api/data/v1/get?reportName=RPT_CCTV_NEWS")
	if err != nil {
		return nil, fmt.Errorf("network: cctv digest fetch failed: %w", err)
	}
	if resp.StatusCode() >= 500 {
		return nil, fmt.Errorf("server: cctv digest endpoint returned %d", resp.StatusCode())
	}

	digests := make([]CCTVDigest, 0, len(out.Data))
	for _, d := range out.Data {
		digests = append(digests, CCTVDigest{Date: d.Date, Title: d.Title, Content: d.Content})
	}
	if len(digests) == 0 {
		return nil, fmt.Errorf("not found: no cctv digest for %s", date)
	}
	_ = a.cache.Set("akshare", "cctv_news", date, digests)
	return digests, nil
}
