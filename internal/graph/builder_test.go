package graph

import (
	"strings"
	"testing"
	"time"

	"github.com/marketsage/ashare-agents/internal/models"
)

func TestTradeDateParsesValidDate(t *testing.T) {
	state := &models.RunState{TradeDate: "2026-03-05"}
	got := tradeDate(state)
	want := time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("tradeDate() = %v, want %v", got, want)
	}
}

func TestTradeDateFallsBackToNowOnBadInput(t *testing.T) {
	state := &models.RunState{TradeDate: "not-a-date"}
	before := time.Now().Add(-time.Second)
	got := tradeDate(state)
	if got.Before(before) {
		t.Errorf("expected fallback to current time, got %v", got)
	}
}

func TestAnalystSeedMentionsTicker(t *testing.T) {
	state := &models.RunState{Ticker: "600519"}
	seed := analystSeed(state)
	if len(seed) != 1 {
		t.Fatalf("expected exactly one seed message, got %d", len(seed))
	}
	if !strings.Contains(seed[0].Content, "600519") {
		t.Errorf("expected seed message to mention the ticker, got %q", seed[0].Content)
	}
}

func TestAnalystBundleIncludesAllReportsAndWarnings(t *testing.T) {
	state := &models.RunState{
		MarketReport:       "市场报告内容",
		SentimentReport:    "情绪报告内容",
		NewsReport:         "新闻报告内容",
		FundamentalsReport: "基本面报告内容",
		ChinaMarketReport:  "宏观报告内容",
		ValidationWarnings: []string{"警告一"},
	}
	bundle := analystBundle(state)
	for _, want := range []string{"市场报告内容", "情绪报告内容", "新闻报告内容", "基本面报告内容", "宏观报告内容", "警告一"} {
		if !strings.Contains(bundle, want) {
			t.Errorf("expected bundle to contain %q, got %q", want, bundle)
		}
	}
}

func TestAnalystBundleWithNoWarnings(t *testing.T) {
	state := &models.RunState{MarketReport: "m"}
	bundle := analystBundle(state)
	if !strings.Contains(bundle, "m") {
		t.Error("expected bundle to include the market report")
	}
}
