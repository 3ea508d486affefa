package dataflows

import (
	"context"
	"fmt"

	"github.com/longportapp/openapi-go/config"
	"github.com/longportapp/openapi-go/quote"
)

// LongportClient wraps the Longport OpenAPI quote context, the fallback
// quote source for Hong Kong and US-listed tickers that fall outside
// the six-digit A-share code space.
type LongportClient struct {
	quoteCtx *quote.QuoteContext
}

// NewLongportClient builds a quote context from explicit credentials.
// Returns a nil-context client (rather than erroring) when credentials
// are absent, so the registry can register the tool and let individual
// calls report an auth error instead of failing process startup.
func NewLongportClient(appKey, appSecret, accessToken string) (*LongportClient, error) {
	if appKey == "" || appSecret == "" || accessToken == "" {
		return &LongportClient{}, nil
	}

	conf, err := config.New(config.WithConfigKey(appKey, appSecret, accessToken))
	if err != nil {
		return nil, fmt.Errorf("build longport config: %w", err)
	}
	quoteCtx, err := quote.NewFromCfg(conf)
	if err != nil {
		return nil, fmt.Errorf("build longport quote context: %w", err)
	}
	return &LongportClient{quoteCtx: quoteCtx}, nil
}

// StaticInfo fetches static instrument metadata (name, exchange, lot
// size) for the given symbols, e.g. "700.HK" or "AAPL.US".
func (l *LongportClient) StaticInfo(ctx context.Context, symbols []string) ([]*quote.StaticInfo, error) {
	if l.quoteCtx == nil {
		return nil, fmt.Errorf("auth: longport credentials are not configured")
	}
	info, err := l.quoteCtx.StaticInfo(ctx, symbols)
	if err != nil {
		return nil, fmt.Errorf("network: longport static info fetch failed: %w", err)
	}
	if len(info) == 0 {
		return nil, fmt.Errorf("not found: longport returned no static info for %v", symbols)
	}
	return info, nil
}

// Quote fetches real-time last-price/volume snapshots for the given
// symbols.
func (l *LongportClient) Quote(ctx context.Context, symbols []string) ([]*quote.SecurityQuote, error) {
	if l.quoteCtx == nil {
		return nil, fmt.Errorf("auth: longport credentials are not configured")
	}
	quotes, err := l.quoteCtx.Quote(ctx, symbols)
	if err != nil {
		return nil, fmt.Errorf("network: longport quote fetch failed: %w", err)
	}
	if len(quotes) == 0 {
		return nil, fmt.Errorf("not found: longport returned no quotes for %v", symbols)
	}
	return quotes, nil
}
