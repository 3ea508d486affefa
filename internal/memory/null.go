package memory

import (
	"context"
	"fmt"

	"github.com/marketsage/ashare-agents/internal/models"
)

// NullStore is the Store used when no memory DSN is configured at all
// (config.MemoryEnabled() == false) — distinct from a PostgresStore
// whose embedder is disabled, but with identical all-reads-empty,
// all-writes-are-no-ops semantics.
type NullStore struct{}

func (NullStore) AddOrUpdate(_ context.Context, record *models.DecisionRecord) (string, error) {
	return fmt.Sprintf("%s_%s_disabled", record.Ticker, record.DecisionDate), nil
}

func (NullStore) Query(context.Context, string, int, string) ([]models.MemoryMatch, error) {
	return nil, nil
}

func (NullStore) QueryByOutcome(context.Context, string, string, int) ([]models.MemoryMatch, error) {
	return nil, nil
}

func (NullStore) UpdateOutcome(context.Context, string, float64, int, string, string) error {
	return nil
}

func (NullStore) PerformanceStats(context.Context, string, string) (models.PerformanceStats, error) {
	return models.PerformanceStats{}, nil
}

func (NullStore) LessonsLearned(context.Context, string, int, int) ([]models.MemoryMatch, []models.MemoryMatch, error) {
	return nil, nil, nil
}

func (NullStore) Cleanup(context.Context, int, int) (int, error) { return 0, nil }

func (NullStore) HealthCheck(context.Context) models.HealthCheck {
	return models.HealthCheck{Status: models.HealthDegraded, Details: []string{"no memory DSN configured"}}
}
