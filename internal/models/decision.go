package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Decision type taxonomy.
const (
	DecisionStrongBuy  = "STRONG_BUY"
	DecisionBuy        = "BUY"
	DecisionHold       = "HOLD"
	DecisionReduce     = "REDUCE"
	DecisionSell       = "SELL"
	DecisionStrongSell = "STRONG_SELL"
)

// Outcome categories.
const (
	OutcomeProfit    = "profit"
	OutcomeLoss      = "loss"
	OutcomeBreakeven = "breakeven"
)

// DecisionRecord is the unit persisted to the decision memory store,
// keyed by (Ticker, DecisionDate).
type DecisionRecord struct {
	RecordID     string `json:"record_id"` // "{ticker}_{date}_{offset}"
	Ticker       string `json:"ticker"`
	DecisionDate string `json:"decision_date"` // YYYY-MM-DD

	Situation      string `json:"situation"`      // embedding key: four reports + decision excerpt
	Recommendation string `json:"recommendation"` // structured block, rendered Markdown

	DecisionType string          `json:"decision_type"`
	Confidence   decimal.Decimal `json:"confidence"`
	TargetPrice  decimal.Decimal `json:"target_price"`
	StopLoss     decimal.Decimal `json:"stop_loss"`
	EntryPrice   decimal.Decimal `json:"entry_price"` // price at decision time, the reflection scorer's baseline
	PositionSize int             `json:"position_size"` // percent, 0-100

	OutcomeUpdated   bool            `json:"outcome_updated"`
	ActualReturn     decimal.Decimal `json:"actual_return"` // percent
	DaysHeld         int             `json:"days_held"`
	OutcomeCategory  string          `json:"outcome_category"`
	ExitDate         string          `json:"exit_date,omitempty"`
	ExitReason       string          `json:"exit_reason,omitempty"`

	CreatedAt         time.Time `json:"created_at"`
	OutcomeUpdatedAt  time.Time `json:"outcome_updated_at,omitempty"`

	// Embedding is the dense vector computed from Situation, stored
	// alongside the record for in-application cosine similarity.
	Embedding []float32 `json:"-"`
}

// DeriveOutcomeCategory applies the outcome thresholds: profit if
// actual_return > 0.5, loss if < -0.5, otherwise breakeven.
func DeriveOutcomeCategory(actualReturn decimal.Decimal) string {
	half := decimal.NewFromFloat(0.5)
	switch {
	case actualReturn.GreaterThan(half):
		return OutcomeProfit
	case actualReturn.LessThan(half.Neg()):
		return OutcomeLoss
	default:
		return OutcomeBreakeven
	}
}

// MemoryMatch is one neighbour returned by a decision-memory query.
type MemoryMatch struct {
	MatchedSituation string          `json:"matched_situation"`
	Recommendation   string          `json:"recommendation"`
	SimilarityScore  float64         `json:"similarity_score"` // 1 - distance, in [0,1]
	DecisionType     string          `json:"decision_type"`
	DecisionDate     string          `json:"decision_date"`
	Ticker           string          `json:"ticker"`
	Confidence       decimal.Decimal `json:"confidence"`
	EntryPrice       decimal.Decimal `json:"entry_price,omitempty"`
	ActualReturn     *decimal.Decimal `json:"actual_return,omitempty"`
	OutcomeCategory  string          `json:"outcome_category,omitempty"`
}

// PerformanceStats summarises the decision memory's win/loss record,
// optionally scoped to one ticker or decision type.
type PerformanceStats struct {
	Total       int             `json:"total"`
	WinRate     float64         `json:"win_rate"`
	AvgReturn   decimal.Decimal `json:"avg_return"`
	BestReturn  decimal.Decimal `json:"best_return"`
	WorstReturn decimal.Decimal `json:"worst_return"`
	AvgDaysHeld float64         `json:"avg_days_held"`
}

// HealthStatus is the overall verdict from a memory health_check call.
type HealthStatus string

const (
	HealthHealthy  HealthStatus = "healthy"
	HealthDegraded HealthStatus = "degraded"
	HealthUnhealthy HealthStatus = "unhealthy"
)

// HealthCheck reports decision-memory liveness
type HealthCheck struct {
	Status       HealthStatus `json:"status"`
	Details      []string     `json:"details"`
	RecordCount  int          `json:"record_count"`
	StorageBytes int64        `json:"storage_bytes"`
}

// MarketBar is one OHLCV bar for a ticker, used by the technical
// indicator tools.
type MarketBar struct {
	Symbol string          `json:"symbol"`
	Date   string          `json:"date"`
	Open   decimal.Decimal `json:"open"`
	High   decimal.Decimal `json:"high"`
	Low    decimal.Decimal `json:"low"`
	Close  decimal.Decimal `json:"close"`
	Volume int64           `json:"volume"`
}
