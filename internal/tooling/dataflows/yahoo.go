package dataflows

import (
	"context"
	"fmt"
	"time"

	"github.com/piquette/finance-go/chart"
	"github.com/piquette/finance-go/datetime"

	"github.com/marketsage/ashare-agents/internal/models"
)

// YahooClient fetches daily bars from Yahoo Finance. The get_market_data
// tool calls it, with the bare six-digit code as the symbol, when
// Tushare returns an error or no rows; tickers outside the six-digit
// code space are rejected before any provider is called.
type YahooClient struct {
	cache *Cache
}

// NewYahooClient returns a client with a daily cache, matching the low
// update frequency of historical bar data.
func NewYahooClient(cacheDir string, cacheEnabled bool) *YahooClient {
	return &YahooClient{cache: NewCache(cacheDir, 24*time.Hour, cacheEnabled)}
}

// DailyBars fetches OHLCV bars for symbol, passed to Yahoo Finance
// unchanged, between the given start/end dates.
func (y *YahooClient) DailyBars(ctx context.Context, symbol string, start, end time.Time) ([]*models.MarketBar, error) {
	var cached []*models.MarketBar
	cacheKey := fmt.Sprintf("%s|%d|%d", symbol, start.Unix(), end.Unix())
	if y.cache.Get("yahoo", "chart", cacheKey, &cached) {
		return cached, nil
	}

	iter := chart.Get(&chart.Params{
		Symbol:   symbol,
		Start:    datetime.New(&start),
		End:      datetime.New(&end),
		Interval: datetime.OneDay,
	})

	var bars []*models.MarketBar
	for iter.Next() {
		bar := iter.Bar()
		open, _ := bar.Open.Float64()
		high, _ := bar.High.Float64()
		low, _ := bar.Low.Float64()
		closeV, _ := bar.Close.Float64()
		bars = append(bars, &models.MarketBar{
			Symbol: symbol,
			Date:   time.Unix(int64(bar.Timestamp), 0).Format("2006-01-02"),
			Open:   decimalFromFloat(open),
			High:   decimalFromFloat(high),
			Low:    decimalFromFloat(low),
			Close:  decimalFromFloat(closeV),
			Volume: int64(bar.Volume),
		})
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("network: yahoo finance chart fetch failed: %w", err)
	}
	if len(bars) == 0 {
		return nil, fmt.Errorf("not found: yahoo finance returned no bars for %s", symbol)
	}

	_ = y.cache.Set("yahoo", "chart", cacheKey, bars)
	return bars, nil
}
