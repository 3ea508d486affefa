package memory

import (
	"context"

	"github.com/marketsage/ashare-agents/internal/models"
)

// Store is the decision memory contract.
type Store interface {
	// AddOrUpdate overwrites the record at (ticker, decision_date) if one
	// exists, otherwise appends. Returns the record's id.
	AddOrUpdate(ctx context.Context, record *models.DecisionRecord) (string, error)

	// Query returns up to n neighbours of situation, excluding any
	// record whose decision_date equals excludeDate.
	Query(ctx context.Context, situation string, n int, excludeDate string) ([]models.MemoryMatch, error)

	// QueryByOutcome restricts Query's results to outcomeFilter
	// (profit/loss/breakeven).
	QueryByOutcome(ctx context.Context, situation string, outcomeFilter string, n int) ([]models.MemoryMatch, error)

	// UpdateOutcome marks a record's realised outcome and derives its
	// outcome_category.
	UpdateOutcome(ctx context.Context, recordID string, actualReturn float64, daysHeld int, exitDate, exitReason string) error

	// PerformanceStats aggregates win rate / returns, optionally scoped
	// to a ticker and/or decision type.
	PerformanceStats(ctx context.Context, ticker, decisionType string) (models.PerformanceStats, error)

	// LessonsLearned returns nSucc profit neighbours and nFail loss
	// neighbours of situation.
	LessonsLearned(ctx context.Context, situation string, nSucc, nFail int) (successes, failures []models.MemoryMatch, err error)

	// Cleanup deletes records older than maxAgeDays, never dropping
	// below keepMin total records.
	Cleanup(ctx context.Context, maxAgeDays int, keepMin int) (deleted int, err error)

	// HealthCheck reports store/embedding liveness and storage size.
	HealthCheck(ctx context.Context) models.HealthCheck
}
