package control

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/marketsage/ashare-agents/internal/models"
	"github.com/marketsage/ashare-agents/internal/signal"
)

// reportFiles maps each RunState report field to the filename it is
// persisted under within the task's reports/ directory. research_report.md
// and risk_report.md name the investment/risk debate judge decisions,
// which RunState carries inside InvestmentDebateState/RiskDebateState
// rather than as top-level fields.
var reportFiles = map[string]string{
	"market_report":          "market_report.md",
	"sentiment_report":       "sentiment_report.md",
	"news_report":            "news_report.md",
	"fundamentals_report":    "fundamentals_report.md",
	"china_market_report":    "china_market_report.md",
	"trader_investment_plan": "trader_investment_plan.md",
	"consolidation_report":   "consolidation_report.md",
}

// AnalysisSummary is analysis_summary.json's contract.
type AnalysisSummary struct {
	Ticker      string    `json:"ticker"`
	TickerName  string    `json:"ticker_name"`
	Date        string    `json:"date"`
	Signal      string    `json:"signal"`
	Decision    string    `json:"decision"`
	UserID      string    `json:"user_id"`
	CreatedAt   time.Time `json:"created_at"`
	CompletedAt time.Time `json:"completed_at"`
}

// Artifacts writes one task's persisted state layout under
// {results_dir}/{ticker}/{date}/.
type Artifacts struct {
	dir       string
	toolLog   *ToolCallLog
	startedAt time.Time
}

// NewArtifacts creates {resultsDir}/{ticker}/{date}/reports/ and opens
// the tool-call CSV log.
func NewArtifacts(resultsDir, ticker, date string) (*Artifacts, error) {
	dir := filepath.Join(resultsDir, ticker, date)
	if err := os.MkdirAll(filepath.Join(dir, "reports"), 0o755); err != nil {
		return nil, fmt.Errorf("create task directory: %w", err)
	}
	toolLog, err := NewToolCallLog(dir)
	if err != nil {
		return nil, err
	}
	return &Artifacts{dir: dir, toolLog: toolLog, startedAt: time.Now()}, nil
}

// Dir is the task's root artifact directory.
func (a *Artifacts) Dir() string { return a.dir }

// ToolCallLog is the tooling.Recorder to install on the run's context.
func (a *Artifacts) ToolCallLog() *ToolCallLog { return a.toolLog }

// WriteReport persists one report field's content to reports/{file}.md
// as soon as it's available, so a cancelled run still leaves completed
// reports on disk.
func (a *Artifacts) WriteReport(field, content string) error {
	filename, ok := reportFiles[field]
	if !ok {
		return nil
	}
	path := filepath.Join(a.dir, "reports", filename)
	return os.WriteFile(path, []byte(content), 0o644)
}

// WriteReflection persists the historical-decision-review block to
// reports/reflection_report.md, only when a prior decision existed.
func (a *Artifacts) WriteReflection(content string) error {
	if content == "" {
		return nil
	}
	return os.WriteFile(filepath.Join(a.dir, "reports", "reflection_report.md"), []byte(content), 0o644)
}

// WriteFinal persists final_trade_decision.md and research/risk judge
// reports, then writes analysis_summary.json, once the run reaches a
// terminal COMPLETED state.
func (a *Artifacts) WriteFinal(state *models.RunState, userID string) error {
	if state.InvestmentDebateState != nil && state.InvestmentDebateState.JudgeDecision != "" {
		if err := os.WriteFile(filepath.Join(a.dir, "reports", "research_report.md"),
			[]byte(state.InvestmentDebateState.JudgeDecision), 0o644); err != nil {
			return err
		}
	}
	if state.RiskDebateState != nil && state.RiskDebateState.JudgeDecision != "" {
		if err := os.WriteFile(filepath.Join(a.dir, "reports", "risk_report.md"),
			[]byte(state.RiskDebateState.JudgeDecision), 0o644); err != nil {
			return err
		}
	}
	if err := os.WriteFile(filepath.Join(a.dir, "reports", "final_trade_decision.md"),
		[]byte(state.FinalTradeDecision), 0o644); err != nil {
		return err
	}

	decisionType, confidence, _, _, _ := signal.ExtractDecision(state.FinalTradeDecision)
	summary := AnalysisSummary{
		Ticker:      state.Ticker,
		TickerName:  state.Ticker,
		Date:        state.TradeDate,
		Signal:      signal.ProcessSignal(state.FinalTradeDecision),
		Decision:    signal.FormatDecisionLine(decisionType, confidence),
		UserID:      userID,
		CreatedAt:   a.startedAt,
		CompletedAt: time.Now(),
	}
	payload, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal analysis_summary.json: %w", err)
	}
	return os.WriteFile(filepath.Join(a.dir, "analysis_summary.json"), payload, 0o644)
}

// AppendLog appends one timestamped line to message_tool.log.
func (a *Artifacts) AppendLog(line string) error {
	f, err := os.OpenFile(filepath.Join(a.dir, "message_tool.log"), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open message_tool.log: %w", err)
	}
	defer f.Close()
	_, err = fmt.Fprintf(f, "[%s] %s\n", time.Now().Format(time.RFC3339), line)
	return err
}

// Close releases the tool-call CSV log.
func (a *Artifacts) Close() error {
	return a.toolLog.Close()
}
