package models

import (
	"testing"
	"time"
)

func TestNewRunStateInitializesSubStates(t *testing.T) {
	s := NewRunState("600519", time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC))
	if s.Ticker != "600519" {
		t.Errorf("Ticker = %q, want 600519", s.Ticker)
	}
	if s.TradeDate != "2026-03-05" {
		t.Errorf("TradeDate = %q, want 2026-03-05", s.TradeDate)
	}
	if s.InvestmentDebateState == nil || s.RiskDebateState == nil {
		t.Error("expected both debate sub-states initialized")
	}
	if s.ValidationWarnings == nil {
		t.Error("expected ValidationWarnings initialized to an empty slice, not nil")
	}
}

func TestRunStateFieldLookup(t *testing.T) {
	s := &RunState{
		MarketReport:        "market",
		SentimentReport:     "sentiment",
		NewsReport:          "news",
		FundamentalsReport:  "fundamentals",
		ChinaMarketReport:   "china",
		TraderInvestmentPlan: "plan",
		ConsolidationReport: "consolidation",
	}
	for _, want := range ReportFields {
		if s.Field(want) == "" {
			t.Errorf("Field(%q) returned empty", want)
		}
	}
	if got := s.Field("unknown_field"); got != "" {
		t.Errorf("Field(unknown) = %q, want empty", got)
	}
}

func TestAnalystReportsCompleteRequiresAllFour(t *testing.T) {
	s := &RunState{}
	if s.AnalystReportsComplete() {
		t.Error("expected incomplete with no reports set")
	}
	s.MarketReport = "m"
	s.SentimentReport = "s"
	s.NewsReport = "n"
	if s.AnalystReportsComplete() {
		t.Error("expected incomplete with only three of four reports set")
	}
	s.FundamentalsReport = "f"
	if !s.AnalystReportsComplete() {
		t.Error("expected complete with all four reports set")
	}
}

func TestNewInvestDebateStateInitializesSlicesAndMap(t *testing.T) {
	s := NewInvestDebateState()
	if s.BullClaims == nil || s.BearClaims == nil || s.PendingRebuttals == nil || s.AddressedClaims == nil {
		t.Error("expected all collections initialized, not nil")
	}
}
