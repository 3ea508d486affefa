package memory

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/marketsage/ashare-agents/internal/models"
)

const sqliteSchemaDDL = `
CREATE TABLE IF NOT EXISTS decision_records (
	record_id          TEXT PRIMARY KEY,
	ticker             TEXT NOT NULL,
	decision_date      TEXT NOT NULL,
	situation          TEXT NOT NULL,
	recommendation     TEXT NOT NULL,
	decision_type      TEXT NOT NULL,
	confidence         REAL NOT NULL,
	target_price       REAL NOT NULL DEFAULT 0,
	stop_loss          REAL NOT NULL DEFAULT 0,
	entry_price        REAL NOT NULL DEFAULT 0,
	position_size      INTEGER NOT NULL DEFAULT 0,
	embedding          TEXT NOT NULL,
	outcome_updated    INTEGER NOT NULL DEFAULT 0,
	actual_return      REAL NOT NULL DEFAULT 0,
	days_held          INTEGER NOT NULL DEFAULT 0,
	outcome_category   TEXT NOT NULL DEFAULT '',
	exit_date          TEXT NOT NULL DEFAULT '',
	exit_reason        TEXT NOT NULL DEFAULT '',
	created_at         TEXT NOT NULL,
	outcome_updated_at TEXT,
	UNIQUE (ticker, decision_date)
);
CREATE INDEX IF NOT EXISTS idx_decision_records_ticker ON decision_records (ticker);
CREATE INDEX IF NOT EXISTS idx_decision_records_outcome ON decision_records (outcome_category);
`

// SQLiteStore is a single-file decision memory store for local runs and
// small deployments that don't warrant standing up PostgreSQL. It opens
// the database the way CortexGo's pkg/sqlite.Open does (WAL journal
// mode, a short busy timeout so concurrent polls don't collide with a
// write), and ranks neighbours the same way PostgresStore does: cosine
// similarity over JSON-decoded embeddings computed in Go, not a
// SQLite extension.
type SQLiteStore struct {
	db       *sql.DB
	embedder Embedder
	dbPath   string
}

// NewSQLiteStore opens (creating if absent) the sqlite file at dbPath
// and ensures the schema exists.
func NewSQLiteStore(dbPath string, embedder Embedder) (*SQLiteStore, error) {
	if strings.TrimSpace(dbPath) == "" {
		return nil, fmt.Errorf("sqlite db path is required")
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create sqlite db dir: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath+"?_loc=Local")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA busy_timeout=3000;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA foreign_keys=ON;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("set pragma %s: %w", p, err)
		}
	}
	if _, err := db.Exec(sqliteSchemaDDL); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure decision memory schema: %w", err)
	}
	return &SQLiteStore{db: db, embedder: embedder, dbPath: dbPath}, nil
}

// Close releases the underlying database handle.
func (s *SQLiteStore) Close() error { return s.db.Close() }

func (s *SQLiteStore) disabled() bool { return s.embedder == nil || !s.embedder.Enabled() }

// AddOrUpdate implements Store.
func (s *SQLiteStore) AddOrUpdate(ctx context.Context, record *models.DecisionRecord) (string, error) {
	if s.disabled() {
		return fmt.Sprintf("%s_%s_disabled", record.Ticker, record.DecisionDate), nil
	}

	embedding, err := s.embedder.Embed(ctx, record.Situation)
	if err != nil {
		return "", fmt.Errorf("embed situation: %w", err)
	}
	record.Embedding = embedding

	var existingID string
	err = s.db.QueryRowContext(ctx,
		`SELECT record_id FROM decision_records WHERE ticker=? AND decision_date=?`,
		record.Ticker, record.DecisionDate,
	).Scan(&existingID)
	switch {
	case err == nil:
		record.RecordID = existingID
	case err == sql.ErrNoRows && record.RecordID == "":
		var count int
		if err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM decision_records`).Scan(&count); err != nil {
			return "", fmt.Errorf("count decision records: %w", err)
		}
		record.RecordID = fmt.Sprintf("%s_%s_%d", record.Ticker, record.DecisionDate, count)
	case err != nil && err != sql.ErrNoRows:
		return "", fmt.Errorf("lookup existing decision record: %w", err)
	}

	embeddingJSON, err := json.Marshal(record.Embedding)
	if err != nil {
		return "", fmt.Errorf("encode embedding: %w", err)
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now()
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO decision_records (
			record_id, ticker, decision_date, situation, recommendation,
			decision_type, confidence, target_price, stop_loss, entry_price, position_size,
			embedding, created_at
		) VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?)
		ON CONFLICT (ticker, decision_date) DO UPDATE SET
			situation = excluded.situation,
			recommendation = excluded.recommendation,
			decision_type = excluded.decision_type,
			confidence = excluded.confidence,
			target_price = excluded.target_price,
			stop_loss = excluded.stop_loss,
			entry_price = excluded.entry_price,
			position_size = excluded.position_size,
			embedding = excluded.embedding
	`,
		record.RecordID, record.Ticker, record.DecisionDate, record.Situation, record.Recommendation,
		record.DecisionType, record.Confidence.InexactFloat64(), record.TargetPrice.InexactFloat64(), record.StopLoss.InexactFloat64(),
		record.EntryPrice.InexactFloat64(), record.PositionSize,
		string(embeddingJSON), record.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return "", fmt.Errorf("upsert decision record: %w", err)
	}
	return record.RecordID, nil
}

func (s *SQLiteStore) fetchAll(ctx context.Context, extraWhere string, args ...any) ([]decisionRow, error) {
	query := `
		SELECT record_id, ticker, decision_date, situation, recommendation,
		       decision_type, confidence, entry_price, outcome_updated, actual_return,
		       outcome_category, embedding
		FROM decision_records
	`
	if extraWhere != "" {
		query += " WHERE " + extraWhere
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query decision records: %w", err)
	}
	defer rows.Close()

	var out []decisionRow
	for rows.Next() {
		var r decisionRow
		var embeddingJSON string
		var outcomeUpdated int
		if err := rows.Scan(&r.RecordID, &r.Ticker, &r.DecisionDate, &r.Situation, &r.Recommendation,
			&r.DecisionType, &r.Confidence, &r.EntryPrice, &outcomeUpdated, &r.ActualReturn, &r.OutcomeCategory, &embeddingJSON); err != nil {
			return nil, fmt.Errorf("scan decision record: %w", err)
		}
		r.OutcomeUpdated = outcomeUpdated != 0
		_ = json.Unmarshal([]byte(embeddingJSON), &r.Embedding)
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) rankBySimilarity(ctx context.Context, situation string, candidates []decisionRow) ([]scoredRow, error) {
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
func (s *SQLiteStore) Query(ctx context.Context, situation string, n int, excludeDate string) ([]models.MemoryMatch, error) {
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
func (s *SQLiteStore) QueryByOutcome(ctx context.Context, situation string, outcomeFilter string, n int) ([]models.MemoryMatch, error) {
	if s.disabled() {
		return nil, nil
	}
	candidates, err := s.fetchAll(ctx, "outcome_category = ?", outcomeFilter)
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

// UpdateOutcome implements Store.
func (s *SQLiteStore) UpdateOutcome(ctx context.Context, recordID string, actualReturn float64, daysHeld int, exitDate, exitReason string) error {
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
	_, err := s.db.ExecContext(ctx, `
		UPDATE decision_records SET
			outcome_updated = 1,
			actual_return = ?,
			days_held = ?,
			outcome_category = ?,
			exit_date = ?,
			exit_reason = ?,
			outcome_updated_at = ?
		WHERE record_id = ?
	`, actualReturn, daysHeld, category, exitDate, exitReason, time.Now().Format(time.RFC3339), recordID)
	if err != nil {
		return fmt.Errorf("update decision outcome: %w", err)
	}
	return nil
}

// PerformanceStats implements Store.
func (s *SQLiteStore) PerformanceStats(ctx context.Context, ticker, decisionType string) (models.PerformanceStats, error) {
	if s.disabled() {
		return models.PerformanceStats{}, nil
	}
	query := `
		SELECT
			count(*) FILTER (WHERE outcome_updated = 1),
			count(*) FILTER (WHERE outcome_updated = 1 AND outcome_category = 'profit'),
			coalesce(avg(actual_return) FILTER (WHERE outcome_updated = 1), 0),
			coalesce(max(actual_return) FILTER (WHERE outcome_updated = 1), 0),
			coalesce(min(actual_return) FILTER (WHERE outcome_updated = 1), 0),
			coalesce(avg(days_held) FILTER (WHERE outcome_updated = 1), 0)
		FROM decision_records
		WHERE (? = '' OR ticker = ?) AND (? = '' OR decision_type = ?)
	`
	var total, profitCount int
	var avgReturn, bestReturn, worstReturn, avgDaysHeld float64
	err := s.db.QueryRowContext(ctx, query, ticker, ticker, decisionType, decisionType).
		Scan(&total, &profitCount, &avgReturn, &bestReturn, &worstReturn, &avgDaysHeld)
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
func (s *SQLiteStore) LessonsLearned(ctx context.Context, situation string, nSucc, nFail int) ([]models.MemoryMatch, []models.MemoryMatch, error) {
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

// Cleanup implements Store. SQLite's delete-limit support depends on a
// build flag mattn/go-sqlite3 doesn't turn on, so the deletable rows are
// selected first and deleted by id rather than relying on DELETE...LIMIT.
func (s *SQLiteStore) Cleanup(ctx context.Context, maxAgeDays int, keepMin int) (int, error) {
	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM decision_records`).Scan(&total); err != nil {
		return 0, fmt.Errorf("count decision records: %w", err)
	}
	if total <= keepMin {
		return 0, nil
	}
	maxDeletable := total - keepMin
	cutoff := time.Now().AddDate(0, 0, -maxAgeDays).Format(time.RFC3339)

	rows, err := s.db.QueryContext(ctx, `
		SELECT record_id FROM decision_records
		WHERE created_at <= ?
		ORDER BY created_at ASC
		LIMIT ?
	`, cutoff, maxDeletable)
	if err != nil {
		return 0, fmt.Errorf("select aged decision records: %w", err)
	}
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return 0, fmt.Errorf("scan aged decision record id: %w", err)
		}
		ids = append(ids, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return 0, err
	}
	if len(ids) == 0 {
		return 0, nil
	}

	placeholders := make([]string, len(ids))
	args := make([]any, len(ids))
	for i, id := range ids {
		placeholders[i] = "?"
		args[i] = id
	}
	result, err := s.db.ExecContext(ctx,
		fmt.Sprintf(`DELETE FROM decision_records WHERE record_id IN (%s)`, strings.Join(placeholders, ",")),
		args...,
	)
	if err != nil {
		return 0, fmt.Errorf("delete aged decision records: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("count deleted decision records: %w", err)
	}
	return int(affected), nil
}

// HealthCheck implements Store.
func (s *SQLiteStore) HealthCheck(ctx context.Context) models.HealthCheck {
	if s.disabled() {
		return models.HealthCheck{Status: models.HealthDegraded, Details: []string{"memory disabled: no valid embedding API key configured"}}
	}

	var details []string
	status := models.HealthHealthy

	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM decision_records`).Scan(&count); err != nil {
		details = append(details, fmt.Sprintf("sqlite query failed: %v", err))
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
	if info, err := os.Stat(s.dbPath); err == nil {
		storageBytes = info.Size()
	}

	if status == models.HealthHealthy && count == 0 {
		status = models.HealthDegraded
		details = append(details, "no decision records yet")
	}

	return models.HealthCheck{Status: status, Details: details, RecordCount: count, StorageBytes: storageBytes}
}

