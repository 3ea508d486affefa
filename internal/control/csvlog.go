package control

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/marketsage/ashare-agents/internal/tooling"
)

// csvLogColumns are tool_data.csv's columns. Tool envelopes here carry
// rendered Markdown rather than structured per-datapoint frames, so one
// row is written per tool call rather than per underlying data point:
// metric is "result_size" and value/unit describe the response payload
// size.
var csvLogColumns = []string{"timestamp", "tool_name", "data_category", "date", "metric", "value", "unit", "stock_code"}

// ToolCallLog is a Recorder (internal/tooling.Recorder) that appends one
// row to {results_dir}/{ticker}/{date}/tool_data.csv per dispatched tool
// call.
type ToolCallLog struct {
	mu   sync.Mutex
	file *os.File
	w    *csv.Writer
}

// NewToolCallLog opens (creating if absent) tool_data.csv under dir,
// writing the header row only when the file is new.
func NewToolCallLog(dir string) (*ToolCallLog, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create task directory: %w", err)
	}
	path := filepath.Join(dir, "tool_data.csv")

	isNew := true
	if info, err := os.Stat(path); err == nil && info.Size() > 0 {
		isNew = false
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open tool_data.csv: %w", err)
	}

	w := csv.NewWriter(f)
	if isNew {
		if err := w.Write(csvLogColumns); err != nil {
			f.Close()
			return nil, fmt.Errorf("write tool_data.csv header: %w", err)
		}
		w.Flush()
	}

	return &ToolCallLog{file: f, w: w}, nil
}

// RecordToolCall implements tooling.Recorder.
func (l *ToolCallLog) RecordToolCall(_ context.Context, toolName string, args map[string]any, env tooling.Envelope) {
	l.mu.Lock()
	defer l.mu.Unlock()

	stockCode, _ := args["ticker"].(string)
	if stockCode == "" {
		stockCode, _ = args["stock_code"].(string)
	}
	date, _ := args["date"].(string)
	if date == "" {
		date, _ = args["trade_date"].(string)
	}

	metric, value, unit := "result_size", "0", "chars"
	if env.Success {
		value = strconv.Itoa(len(env.Data))
	} else {
		metric, value, unit = "error", "1", string(env.Category)
	}

	row := []string{
		time.Now().Format(time.RFC3339),
		toolName,
		env.Source,
		date,
		metric,
		value,
		unit,
		stockCode,
	}
	_ = l.w.Write(row)
	l.w.Flush()
}

// Close flushes and closes the underlying file.
func (l *ToolCallLog) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.w.Flush()
	return l.file.Close()
}
