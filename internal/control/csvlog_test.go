package control

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/marketsage/ashare-agents/internal/tooling"
)

func TestNewToolCallLogWritesHeaderOnce(t *testing.T) {
	dir := t.TempDir()
	log, err := NewToolCallLog(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := log.Close(); err != nil {
		t.Fatalf("unexpected close error: %v", err)
	}

	log2, err := NewToolCallLog(dir)
	if err != nil {
		t.Fatalf("unexpected error reopening: %v", err)
	}
	if err := log2.Close(); err != nil {
		t.Fatalf("unexpected close error: %v", err)
	}

	f, err := os.Open(filepath.Join(dir, "tool_data.csv"))
	if err != nil {
		t.Fatalf("unexpected error opening csv: %v", err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("unexpected error reading csv: %v", err)
	}
	if len(rows) != 1 {
		t.Errorf("expected exactly one header row across two opens, got %d rows: %v", len(rows), rows)
	}
}

func TestRecordToolCallSuccessRow(t *testing.T) {
	dir := t.TempDir()
	log, err := NewToolCallLog(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer log.Close()

	log.RecordToolCall(context.Background(), "get_market_data",
		map[string]any{"ticker": "600519", "date": "2026-07-31"},
		tooling.Envelope{Success: true, Data: "hello", Source: "yahoo"})

	f, err := os.Open(filepath.Join(dir, "tool_data.csv"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected header + 1 data row, got %d rows", len(rows))
	}
	row := rows[1]
	if row[1] != "get_market_data" || row[2] != "yahoo" || row[3] != "2026-07-31" || row[4] != "result_size" || row[5] != "5" || row[7] != "600519" {
		t.Errorf("unexpected row: %v", row)
	}
}

func TestRecordToolCallFailureRow(t *testing.T) {
	dir := t.TempDir()
	log, err := NewToolCallLog(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer log.Close()

	log.RecordToolCall(context.Background(), "get_fundamentals",
		map[string]any{"stock_code": "000001"},
		tooling.Envelope{Success: false, Category: tooling.ErrServer})

	f, err := os.Open(filepath.Join(dir, "tool_data.csv"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	row := rows[1]
	if row[4] != "error" || row[5] != "1" || row[6] != "SERVER" || row[7] != "000001" {
		t.Errorf("unexpected row: %v", row)
	}
}
