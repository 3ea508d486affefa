// Package models holds the data carried through a single analysis run:
// the graph-wide RunState, its debate sub-states, and the memory-facing
// DecisionRecord.
package models

import (
	"time"

	"github.com/cloudwego/eino/schema"
	"github.com/shopspring/decimal"
)

// InvestDebateState tracks one bull/bear investment-debate round.
type InvestDebateState struct {
	History         string `json:"history"`          // full interleaved transcript
	BullHistory     string `json:"bull_history"`      // bull-only transcript
	BearHistory     string `json:"bear_history"`      // bear-only transcript
	CurrentResponse string `json:"current_response"`  // latest utterance, speaker-tagged
	Count           int    `json:"count"`              // total turns so far

	BullClaims       []string          `json:"bull_claims"`
	BearClaims       []string          `json:"bear_claims"`
	PendingRebuttals []string          `json:"pending_rebuttals"` // claims the next speaker must address
	AddressedClaims  map[string]bool   `json:"addressed_claims"`  // claims already responded to

	JudgeDecision string `json:"judge_decision"` // populated once, by the research manager
}

// RiskDebateState tracks the three-way momentum/value/risk-manager
// debate.
type RiskDebateState struct {
	History        string `json:"history"`
	MomentumHistory string `json:"momentum_history"`
	ValueHistory    string `json:"value_history"`
	RiskMgrHistory  string `json:"risk_mgr_history"`

	LatestSpeaker string `json:"latest_speaker"`

	CurrentMomentumResponse string `json:"current_momentum_response"`
	CurrentValueResponse    string `json:"current_value_response"`
	CurrentRiskMgrResponse  string `json:"current_risk_mgr_response"`

	Count         int    `json:"count"`
	JudgeDecision string `json:"judge_decision"`
}

// NewInvestDebateState returns an empty investment-debate state.
func NewInvestDebateState() *InvestDebateState {
	return &InvestDebateState{
		BullClaims:       []string{},
		BearClaims:       []string{},
		PendingRebuttals: []string{},
		AddressedClaims:  map[string]bool{},
	}
}

// NewRiskDebateState returns an empty risk-debate state.
func NewRiskDebateState() *RiskDebateState {
	return &RiskDebateState{}
}

// RunState is the single mapping carried through the analysis graph.
// Fields are populated monotonically: a node never clears a prior
// node's output.
type RunState struct {
	Ticker    string            `json:"ticker"`
	TradeDate string            `json:"trade_date"`
	Messages  []*schema.Message `json:"messages"`

	MarketReport       string `json:"market_report"`
	SentimentReport    string `json:"sentiment_report"`
	NewsReport         string `json:"news_report"`
	FundamentalsReport string `json:"fundamentals_report"`
	ChinaMarketReport  string `json:"china_market_report"`

	// CurrentPrice is the latest close price fetched directly from the
	// data provider (not parsed out of report text), the baseline the
	// validation layer and the reflection scorer both compare against.
	CurrentPrice decimal.Decimal `json:"current_price"`

	InvestmentDebateState *InvestDebateState `json:"investment_debate_state"`
	TraderInvestmentPlan  string             `json:"trader_investment_plan"`
	RiskDebateState       *RiskDebateState   `json:"risk_debate_state"`

	FinalTradeDecision string `json:"final_trade_decision"`
	ConsolidationReport string `json:"consolidation_report"`

	PreviousDecisionReflection string `json:"previous_decision_reflection"`

	// Sender names the last contributing agent; used for transcript
	// attribution and as the graph's routing value.
	Sender string `json:"sender"`

	// ValidationWarnings accumulates "Data Consistency Warnings" lines
	// produced by the validation layer ahead of consolidation.
	ValidationWarnings []string `json:"validation_warnings"`

	CreatedAt time.Time `json:"created_at"`
}

// NewRunState builds the empty initial state for a run.
func NewRunState(ticker string, tradeDate time.Time) *RunState {
	return &RunState{
		Ticker:                ticker,
		TradeDate:             tradeDate.Format("2006-01-02"),
		Messages:              []*schema.Message{},
		InvestmentDebateState: NewInvestDebateState(),
		RiskDebateState:       NewRiskDebateState(),
		ValidationWarnings:    []string{},
		CreatedAt:             time.Now(),
	}
}

// ReportFields lists the RunState fields the controller watches for new
// content after each graph snapshot, in emission order.
var ReportFields = []string{
	"market_report",
	"sentiment_report",
	"news_report",
	"fundamentals_report",
	"china_market_report",
	"trader_investment_plan",
	"consolidation_report",
}

// Field returns the named report field's current text, or "" if unset.
func (s *RunState) Field(name string) string {
	switch name {
	case "market_report":
		return s.MarketReport
	case "sentiment_report":
		return s.SentimentReport
	case "news_report":
		return s.NewsReport
	case "fundamentals_report":
		return s.FundamentalsReport
	case "china_market_report":
		return s.ChinaMarketReport
	case "trader_investment_plan":
		return s.TraderInvestmentPlan
	case "consolidation_report":
		return s.ConsolidationReport
	default:
		return ""
	}
}

// AnalystReportsComplete reports whether the four mandatory analyst
// reports have all been populated.
func (s *RunState) AnalystReportsComplete() bool {
	return s.MarketReport != "" && s.SentimentReport != "" &&
		s.NewsReport != "" && s.FundamentalsReport != ""
}
