package memory

import (
	"context"
	"testing"

	"github.com/marketsage/ashare-agents/internal/models"
)

func TestNullStoreImplementsStore(t *testing.T) {
	var _ Store = NullStore{}
}

func TestNullStoreAddOrUpdateReturnsDisabledID(t *testing.T) {
	var s NullStore
	id, err := s.AddOrUpdate(context.Background(), &models.DecisionRecord{Ticker: "600519", DecisionDate: "2026-07-31"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != "600519_2026-07-31_disabled" {
		t.Errorf("unexpected id: %q", id)
	}
}

func TestNullStoreReadsAreEmpty(t *testing.T) {
	var s NullStore
	matches, err := s.Query(context.Background(), "anything", 5, "")
	if err != nil || matches != nil {
		t.Errorf("expected nil matches and no error, got %v %v", matches, err)
	}

	succ, fail, err := s.LessonsLearned(context.Background(), "anything", 2, 2)
	if err != nil || succ != nil || fail != nil {
		t.Errorf("expected nil/nil and no error, got %v %v %v", succ, fail, err)
	}

	stats, err := s.PerformanceStats(context.Background(), "600519", "")
	if err != nil || stats != (models.PerformanceStats{}) {
		t.Errorf("expected zero-value stats, got %+v %v", stats, err)
	}
}

func TestNullStoreWritesAreNoops(t *testing.T) {
	var s NullStore
	if err := s.UpdateOutcome(context.Background(), "id", 1.0, 5, "2026-07-31", "target hit"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	deleted, err := s.Cleanup(context.Background(), 90, 100)
	if err != nil || deleted != 0 {
		t.Errorf("expected no-op cleanup, got deleted=%d err=%v", deleted, err)
	}
}

func TestNullStoreHealthCheckReportsDegraded(t *testing.T) {
	var s NullStore
	health := s.HealthCheck(context.Background())
	if health.Status != models.HealthDegraded {
		t.Errorf("expected degraded status, got %q", health.Status)
	}
}
