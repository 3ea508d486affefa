package memory

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/marketsage/ashare-agents/internal/models"
	"github.com/shopspring/decimal"
)

// fakeEmbedder turns a situation string into a 2-d vector so similarity
// ranking is deterministic in tests without a real embedding API call.
type fakeEmbedder struct{}

func (fakeEmbedder) Enabled() bool { return true }

func (fakeEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	if strings.Contains(text, "半导体") {
		return []float32{1, 0}, nil
	}
	return []float32{0, 1}, nil
}

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "memory.db"), fakeEmbedder{})
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSQLiteStoreImplementsStore(t *testing.T) {
	var _ Store = (*SQLiteStore)(nil)
}

func TestSQLiteStoreAddOrUpdateThenQueryFindsNeighbour(t *testing.T) {
	store := newTestSQLiteStore(t)
	ctx := context.Background()

	id, err := store.AddOrUpdate(ctx, &models.DecisionRecord{
		Ticker:       "688981",
		DecisionDate: "2026-07-01",
		Situation:    "半导体行业景气度回升",
		DecisionType: models.DecisionBuy,
		Confidence:   decimal.NewFromFloat(0.8),
		EntryPrice:   decimal.NewFromFloat(55.0),
	})
	if err != nil {
		t.Fatalf("AddOrUpdate: %v", err)
	}
	if id == "" {
		t.Fatal("expected non-empty record id")
	}

	matches, err := store.Query(ctx, "半导体景气持续", 5, "")
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(matches) != 1 {
		t.Fatalf("expected 1 match, got %d", len(matches))
	}
	if matches[0].Ticker != "688981" || !matches[0].EntryPrice.Equal(decimal.NewFromFloat(55.0)) {
		t.Errorf("unexpected match: %+v", matches[0])
	}
}

func TestSQLiteStoreAddOrUpdateUpsertsSameTickerAndDate(t *testing.T) {
	store := newTestSQLiteStore(t)
	ctx := context.Background()

	rec := &models.DecisionRecord{
		Ticker:       "600519",
		DecisionDate: "2026-07-01",
		Situation:    "白酒行业龙头",
		DecisionType: models.DecisionHold,
		Confidence:   decimal.NewFromFloat(0.6),
	}
	firstID, err := store.AddOrUpdate(ctx, rec)
	if err != nil {
		t.Fatalf("first AddOrUpdate: %v", err)
	}

	rec2 := &models.DecisionRecord{
		Ticker:       "600519",
		DecisionDate: "2026-07-01",
		Situation:    "白酒行业龙头，估值修复",
		DecisionType: models.DecisionBuy,
		Confidence:   decimal.NewFromFloat(0.9),
	}
	secondID, err := store.AddOrUpdate(ctx, rec2)
	if err != nil {
		t.Fatalf("second AddOrUpdate: %v", err)
	}
	if firstID != secondID {
		t.Errorf("expected same record id on upsert, got %q and %q", firstID, secondID)
	}

	matches, err := store.Query(ctx, "白酒", 5, "")
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(matches) != 1 || matches[0].DecisionType != models.DecisionBuy {
		t.Fatalf("expected the upserted BUY record, got %+v", matches)
	}
}

func TestSQLiteStoreQueryExcludesGivenDate(t *testing.T) {
	store := newTestSQLiteStore(t)
	ctx := context.Background()

	if _, err := store.AddOrUpdate(ctx, &models.DecisionRecord{
		Ticker: "600519", DecisionDate: "2026-07-01", Situation: "白酒",
		DecisionType: models.DecisionHold, Confidence: decimal.NewFromFloat(0.5),
	}); err != nil {
		t.Fatalf("AddOrUpdate: %v", err)
	}

	matches, err := store.Query(ctx, "白酒", 5, "2026-07-01")
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(matches) != 0 {
		t.Errorf("expected the excluded date to be filtered out, got %+v", matches)
	}
}

func TestSQLiteStoreUpdateOutcomeThenPerformanceStats(t *testing.T) {
	store := newTestSQLiteStore(t)
	ctx := context.Background()

	id, err := store.AddOrUpdate(ctx, &models.DecisionRecord{
		Ticker: "600519", DecisionDate: "2026-07-01", Situation: "白酒",
		DecisionType: models.DecisionBuy, Confidence: decimal.NewFromFloat(0.7),
	})
	if err != nil {
		t.Fatalf("AddOrUpdate: %v", err)
	}
	if err := store.UpdateOutcome(ctx, id, 8.5, 10, "2026-07-11", "target hit"); err != nil {
		t.Fatalf("UpdateOutcome: %v", err)
	}

	stats, err := store.PerformanceStats(ctx, "600519", "")
	if err != nil {
		t.Fatalf("PerformanceStats: %v", err)
	}
	if stats.Total != 1 || stats.WinRate != 100 {
		t.Errorf("unexpected stats: %+v", stats)
	}
}

func TestSQLiteStoreCleanupRespectsKeepMin(t *testing.T) {
	store := newTestSQLiteStore(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		date := []string{"2026-06-01", "2026-06-15", "2026-07-01"}[i]
		if _, err := store.AddOrUpdate(ctx, &models.DecisionRecord{
			Ticker: "600519", DecisionDate: date, Situation: "白酒",
			DecisionType: models.DecisionHold, Confidence: decimal.NewFromFloat(0.5),
		}); err != nil {
			t.Fatalf("AddOrUpdate: %v", err)
		}
	}

	deleted, err := store.Cleanup(ctx, 0, 2)
	if err != nil {
		t.Fatalf("Cleanup: %v", err)
	}
	if deleted != 1 {
		t.Errorf("expected 1 deleted record (3 total, keepMin 2), got %d", deleted)
	}

	var remaining int
	if err := store.db.QueryRowContext(ctx, `SELECT count(*) FROM decision_records`).Scan(&remaining); err != nil {
		t.Fatalf("count remaining: %v", err)
	}
	if remaining != 2 {
		t.Errorf("expected 2 remaining records, got %d", remaining)
	}
}

func TestSQLiteStoreHealthCheckReportsRecordCount(t *testing.T) {
	store := newTestSQLiteStore(t)
	ctx := context.Background()

	if _, err := store.AddOrUpdate(ctx, &models.DecisionRecord{
		Ticker: "600519", DecisionDate: "2026-07-01", Situation: "白酒",
		DecisionType: models.DecisionHold, Confidence: decimal.NewFromFloat(0.5),
	}); err != nil {
		t.Fatalf("AddOrUpdate: %v", err)
	}

	health := store.HealthCheck(ctx)
	if health.RecordCount != 1 {
		t.Errorf("expected RecordCount 1, got %d", health.RecordCount)
	}
}
