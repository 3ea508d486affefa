package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/marketsage/ashare-agents/internal/models"
	"github.com/marketsage/ashare-agents/internal/obs"
)

func decimalFromFloat(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v)
}

const schemaDDL = `
CREATE TABLE IF NOT EXISTS decision_records (
	record_id         TEXT PRIMARY KEY,
	ticker            TEXT NOT NULL,
	decision_date     TEXT NOT NULL,
	situation         TEXT NOT NULL,
	recommendation    TEXT NOT NULL,
	decision_type     TEXT NOT NULL,
	confidence        DOUBLE PRECISION NOT NULL,
	target_price      DOUBLE PRECISION NOT NULL DEFAULT 0,
	stop_loss         DOUBLE PRECISION NOT NULL DEFAULT 0,
	entry_price       DOUBLE PRECISION NOT NULL DEFAULT 0,
	position_size     INTEGER NOT NULL DEFAULT 0,
	embedding         JSONB NOT NULL,
	outcome_updated   BOOLEAN NOT NULL DEFAULT FALSE,
	actual_return     DOUBLE PRECISION NOT NULL DEFAULT 0,
	days_held         INTEGER NOT NULL DEFAULT 0,
	outcome_category  TEXT NOT NULL DEFAULT '',
	exit_date         TEXT NOT NULL DEFAULT '',
	exit_reason       TEXT NOT NULL DEFAULT '',
	created_at        TIMESTAMPTZ NOT NULL DEFAULT now(),
	outcome_updated_at TIMESTAMPTZ,
	UNIQUE (ticker, decision_date)
);
CREATE INDEX IF NOT EXISTS idx_decision_records_ticker ON decision_records (ticker);
CREATE INDEX IF NOT EXISTS idx_decision_records_outcome ON decision_records (outcome_category);
`

// PostgresStore is the pgx-backed Store. Similarity search is done in
// application code via cosine distance over JSON-decoded embeddings
// rather than a pgvector operator, grounded on
// selivandex-trader-bot/internal/agents/semantic_memory.go's own
// cosineSimilarity fallback — this keeps the store's only hard
// dependency on PostgreSQL itself, not an extension.
type PostgresStore struct {
	pool     *pgxpool.Pool
	embedder Embedder
}

// NewPostgresStore connects to dsn and ensures the schema exists.
func NewPostgresStore(ctx context.Context, dsn string, embedder Embedder) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect decision memory store: %w", err)
	}
	if _, err := pool.Exec(ctx, schemaDDL); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ensure decision memory schema: %w", err)
	}
	return &PostgresStore{pool: pool, embedder: embedder}, nil
}

// Close releases the underlying connection pool.
func (s *PostgresStore) Close() { s.pool.Close() }

func (s *PostgresStore) disabled() bool { return s.embedder == nil || !s.embedder.Enabled() }

// AddOrUpdate implements Store.
func (s *PostgresStore) AddOrUpdate(ctx context.Context, record *models.DecisionRecord) (string, error) {
	if s.disabled() {
		return fmt.Sprintf("%s_%s_disabled", record.Ticker, record.DecisionDate), nil
	}

	embedding, err := s.embedder.Embed(ctx, record.Situation)
	if err != nil {
		obs.L().Warn("memory embed failed, treating as disabled write", zap.Error(err))
		return fmt.Sprintf("%s_%s_disabled", record.Ticker, record.DecisionDate), nil
	}
	record.Embedding = embedding

	var existingID string
	err = s.pool.QueryRow(ctx,
		`SELECT record_id FROM decision_records WHERE ticker=$1 AND decision_date=$2`,
		record.Ticker, record.DecisionDate,
	).Scan(&existingID)
	if err == nil {
		record.RecordID = existingID
	} else if record.RecordID == "" {
		var count int
		if err := s.pool.QueryRow(ctx, `SELECT count(*) FROM decision_records`).Scan(&count); err != nil {
			return "", fmt.Errorf("count decision records: %w", err)
		}
		record.RecordID = fmt.Sprintf("%s_%s_%d", record.Ticker, record.DecisionDate, count)
	}

	embeddingJSON, err := json.Marshal(record.Embedding)
	if err != nil {
		return "", fmt.Errorf("encode embedding: %w", err)
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now()
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO decision_records (
			record_id, ticker, decision_date, situation, recommendation,
			decision_type, confidence, target_price, stop_loss, entry_price, position_size,
			embedding, created_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
		ON CONFLICT (ticker, decision_date) DO UPDATE SET
			situation = EXCLUDED.situation,
			recommendation = EXCLUDED.recommendation,
			decision_type = EXCLUDED.decision_type,
			confidence = EXCLUDED.confidence,
			target_price = EXCLUDED.target_price,
			stop_loss = EXCLUDED.stop_loss,
			entry_price = EXCLUDED.entry_price,
			position_size = EXCLUDED.position_size,
			embedding = EXCLUDED.embedding
	`,
		record.RecordID, record.Ticker, record.DecisionDate, record.Situation, record.Recommendation,
		record.DecisionType, record.Confidence.InexactFloat64(), record.TargetPrice.InexactFloat64(), record.StopLoss.InexactFloat64(),
		record.EntryPrice.InexactFloat64(), record.PositionSize,
		embeddingJSON, record.CreatedAt,
	)
	if err != nil {
		return "", fmt.Errorf("upsert decision record: %w", err)
	}
	return record.RecordID, nil
}

type decisionRow struct {
	RecordID        string
	Ticker          string
	DecisionDate    string
	Situation       string
	Recommendation  string
	DecisionType    string
	Confidence      float64
	EntryPrice      float64
	OutcomeUpdated  bool
	ActualReturn    float64
	OutcomeCategory string
	Embedding       []float32
}

func (s *PostgresStore) fetchAll(ctx context.Context, extraWhere string, args ...any) ([]decisionRow, error) {
	query := `
		SELECT record_id, ticker, decision_date, situation, recommendation,
		       decision_type, confidence, entry_price, outcome_updated, actual_return,
		       outcome_category, embedding
		FROM decision_records
	`
	if extraWhere != "" {
		query += " WHERE " + extraWhere
	}
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query decision records: %w", err)
	}
	defer rows.Close()

	var out []decisionRow
	for rows.Next() {
		var r decisionRow
		var embeddingJSON []byte
		if err := rows.Scan(&r.RecordID, &r.Ticker, &r.DecisionDate, &r.Situation, &r.Recommendation,
			&r.DecisionType, &r.Confidence, &r.EntryPrice, &r.OutcomeUpdated, &r.ActualReturn, &r.OutcomeCategory, &embeddingJSON); err != nil {
			return nil, fmt.Errorf("scan decision record: %w", err)
		}
		_ = json.Unmarshal(embeddingJSON, &r.Embedding)
		out = append(out, r)
	}
	return out, rows.Err()
}

type scoredRow struct {
	row   decisionRow
	score float64
}

func (s *PostgresStore) rankBySimilarity(ctx context.Context, situation string, candidates []decisionRow) ([]scoredRow, error) {
	queryEmbedding, err := s.embedder.Embed(ctx, situation)
	if err != nil {
		return nil, fmt.Errorf("embed query situation: %w", err)
	}
	scored := make([]scoredRow, 0, len(candidates))
	for _, c := range candidates {
		scored = append(scored, scoredRow{row: c, score: cosineSimilarity(queryEmbedding, c.Embedding)})
	}
	sort.Slice(scored, func(i, j int) bool { return scored[i].score > scored[j].score })
	return scored, nil
}

// Query implements Store.
func (s *PostgresStore) Query(ctx context.Context, situation string, n int, excludeDate string) ([]models.MemoryMatch, error) {
	if s.disabled() {
		return nil, nil
	}
	candidates, err := s.fetchAll(ctx, "")
	if err != nil {
		return nil, err
	}
	scored, err := s.rankBySimilarity(ctx, situation, candidates)
	if err != nil {
		return nil, err
	}

	var out []models.MemoryMatch
	for _, sc := range scored {
		if sc.row.DecisionDate == excludeDate {
			continue
		}
		out = append(out, toMatch(sc.row, sc.score))
		if len(out) >= n {
			break
		}
	}
	return out, nil
}

// QueryByOutcome implements Store.
func (s *PostgresStore) QueryByOutcome(ctx context.Context, situation string, outcomeFilter string, n int) ([]models.MemoryMatch, error) {
	if s.disabled() {
		return nil, nil
	}
	candidates, err := s.fetchAll(ctx, "outcome_category = $1", outcomeFilter)
	if err != nil {
		return nil, err
	}
	scored, err := s.rankBySimilarity(ctx, situation, candidates)
	if err != nil {
		return nil, err
	}
	var out []models.MemoryMatch
	for _, sc := range scored {
		out = append(out, toMatch(sc.row, sc.score))
		if len(out) >= n {
			break
		}
	}
	return out, nil
}

func toMatch(r decisionRow, score float64) models.MemoryMatch {
	match := models.MemoryMatch{
		MatchedSituation: r.Situation,
		Recommendation:   r.Recommendation,
		SimilarityScore:  score,
		DecisionType:     r.DecisionType,
		DecisionDate:     r.DecisionDate,
		Ticker:           r.Ticker,
		Confidence:       decimalFromFloat(r.Confidence),
		EntryPrice:       decimalFromFloat(r.EntryPrice),
		OutcomeCategory:  r.OutcomeCategory,
	}
	if r.OutcomeUpdated {
		ret := decimalFromFloat(r.ActualReturn)
		match.ActualReturn = &ret
	}
	return match
}

// UpdateOutcome implements Store.
func (s *PostgresStore) UpdateOutcome(ctx context.Context, recordID string, actualReturn float64, daysHeld int, exitDate, exitReason string) error {
	if s.disabled() {
		return nil
	}
	category := "breakeven"
	switch {
	case actualReturn > 0.5:
		category = "profit"
	case actualReturn < -0.5:
		category = "loss"
	}
	_, err := s.pool.Exec(ctx, `
		UPDATE decision_records SET
			outcome_updated = TRUE,
			actual_return = $2,
			days_held = $3,
			outcome_category = $4,
			exit_date = $5,
			exit_reason = $6,
			outcome_updated_at = now()
		WHERE record_id = $1
	`, recordID, actualReturn, daysHeld, category, exitDate, exitReason)
	if err != nil {
		return fmt.Errorf("update decision outcome: %w", err)
	}
	return nil
}

// PerformanceStats implements Store.
func (s *PostgresStore) PerformanceStats(ctx context.Context, ticker, decisionType string) (models.PerformanceStats, error) {
	if s.disabled() {
		return models.PerformanceStats{}, nil
	}
	query := `
		SELECT count(*) FILTER (WHERE outcome_updated),
		       count(*) FILTER (WHERE outcome_updated AND outcome_category='profit'),
		       coalesce(avg(actual_return) FILTER (WHERE outcome_updated), 0),
		       coalesce(max(actual_return) FILTER (WHERE outcome_updated), 0),
		       coalesce(min(actual_return) FILTER (WHERE outcome_updated), 0),
		       coalesce(avg(days_held) FILTER (WHERE outcome_updated), 0)
		FROM decision_records
		WHERE ($1 = '' OR ticker = $1) AND ($2 = '' OR decision_type = $2)
	`
	var total, profitCount int
	var avgReturn, bestReturn, worstReturn, avgDaysHeld float64
	err := s.pool.QueryRow(ctx, query, ticker, decisionType).Scan(&total, &profitCount, &avgReturn, &bestReturn, &worstReturn, &avgDaysHeld)
	if err != nil {
		return models.PerformanceStats{}, fmt.Errorf("performance stats query: %w", err)
	}
	winRate := 0.0
	if total > 0 {
		winRate = float64(profitCount) / float64(total) * 100
	}
	return models.PerformanceStats{
		Total:       total,
		WinRate:     winRate,
		AvgDaysHeld: avgDaysHeld,
		AvgReturn:   decimalFromFloat(avgReturn),
		BestReturn:  decimalFromFloat(bestReturn),
		WorstReturn: decimalFromFloat(worstReturn),
	}, nil
}

// LessonsLearned implements Store.
func (s *PostgresStore) LessonsLearned(ctx context.Context, situation string, nSucc, nFail int) ([]models.MemoryMatch, []models.MemoryMatch, error) {
	if s.disabled() {
		return nil, nil, nil
	}
	successes, err := s.QueryByOutcome(ctx, situation, "profit", nSucc)
	if err != nil {
		return nil, nil, err
	}
	failures, err := s.QueryByOutcome(ctx, situation, "loss", nFail)
	if err != nil {
		return nil, nil, err
	}
	return successes, failures, nil
}

// Cleanup implements Store.
func (s *PostgresStore) Cleanup(ctx context.Context, maxAgeDays int, keepMin int) (int, error) {
	var total int
	if err := s.pool.QueryRow(ctx, `SELECT count(*) FROM decision_records`).Scan(&total); err != nil {
		return 0, fmt.Errorf("count decision records: %w", err)
	}
	if total <= keepMin {
		return 0, nil
	}
	maxDeletable := total - keepMin
	cutoff := time.Now().AddDate(0, 0, -maxAgeDays)

	tag, err := s.pool.Exec(ctx, `
		DELETE FROM decision_records WHERE record_id IN (
			SELECT record_id FROM decision_records
			WHERE created_at < $1
			ORDER BY created_at ASC
			LIMIT $2
		)
	`, cutoff, maxDeletable)
	if err != nil {
		return 0, fmt.Errorf("delete aged decision records: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

// HealthCheck implements Store.
func (s *PostgresStore) HealthCheck(ctx context.Context) models.HealthCheck {
	if s.disabled() {
		return models.HealthCheck{Status: models.HealthDegraded, Details: []string{"memory disabled: no valid embedding API key configured"}}
	}

	var details []string
	status := models.HealthHealthy

	var count int
	if err := s.pool.QueryRow(ctx, `SELECT count(*) FROM decision_records`).Scan(&count); err != nil {
		details = append(details, fmt.Sprintf("postgres connection failed: %v", err))
		status = models.HealthUnhealthy
	} else {
		details = append(details, fmt.Sprintf("record_count=%d", count))
	}

	if _, err := s.embedder.Embed(ctx, "health check probe"); err != nil {
		details = append(details, fmt.Sprintf("embedding service probe failed: %v", err))
		status = models.HealthUnhealthy
	} else {
		details = append(details, "embedding service ok")
	}

	var storageBytes int64
	_ = s.pool.QueryRow(ctx, `SELECT pg_total_relation_size('decision_records')`).Scan(&storageBytes)

	if status == models.HealthHealthy && count == 0 {
		status = models.HealthDegraded
		details = append(details, "no decision records yet")
	}

	return models.HealthCheck{Status: status, Details: details, RecordCount: count, StorageBytes: storageBytes}
}
