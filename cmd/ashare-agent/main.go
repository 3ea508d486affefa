// Command ashare-agent drives one-off and polling analysis runs from
// the terminal: it wires configuration, model tiers, the tool catalog,
// decision memory, and the compiled analysis graph into a run
// controller, then submits and polls one task to completion.
package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/marketsage/ashare-agents/config"
	"github.com/marketsage/ashare-agents/internal/agents"
	"github.com/marketsage/ashare-agents/internal/control"
	"github.com/marketsage/ashare-agents/internal/graph"
	"github.com/marketsage/ashare-agents/internal/memory"
	"github.com/marketsage/ashare-agents/internal/obs"
	"github.com/marketsage/ashare-agents/internal/tooling"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "ashare-agent",
		Short: "A 股多智能体研究引擎",
		Long:  "ashare-agent runs a directed graph of LLM analysts, debaters, and judges over one A-share ticker and produces a structured investment report.",
	}

	root.AddCommand(newAnalyzeCmd())
	root.AddCommand(newMemoryCmd())
	return root
}

func newAnalyzeCmd() *cobra.Command {
	var date, userID string

	cmd := &cobra.Command{
		Use:   "analyze TICKER",
		Short: "Run a full analysis for one ticker and wait for it to complete",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ticker := args[0]
			if date == "" {
				date = time.Now().Format("2006-01-02")
			}
			return runAnalyze(cmd.Context(), ticker, date, userID)
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "trade date, YYYY-MM-DD (default today)")
	cmd.Flags().StringVar(&userID, "user", "cli", "user id recorded in analysis_summary.json")
	return cmd
}

func runAnalyze(ctx context.Context, ticker, date, userID string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return err
	}
	if !tooling.ValidateTicker(ticker) {
		return fmt.Errorf("invalid ticker %q", ticker)
	}

	quickModel, err := agents.NewChatModel(ctx, cfg, agents.Quick)
	if err != nil {
		return fmt.Errorf("build quick-think model: %w", err)
	}
	deepModel, err := agents.NewChatModel(ctx, cfg, agents.Deep)
	if err != nil {
		return fmt.Errorf("build deep-think model: %w", err)
	}

	catalog := tooling.NewCatalog(cfg)
	quickRuntime := agents.NewRuntime(quickModel, catalog.Registry)
	deepRuntime := agents.NewRuntime(deepModel, catalog.Registry)

	mem, err := newMemoryStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("build decision memory store: %w", err)
	}

	orchestrator := graph.NewOrchestrator(quickRuntime, deepRuntime, mem, catalog.Tushare(), cfg)
	runner, err := graph.NewRunner(ctx, orchestrator)
	if err != nil {
		return fmt.Errorf("compile analysis graph: %w", err)
	}

	controller := control.NewController(runner, cfg.Runtime.ResultsDir)
	taskID, err := controller.Submit(ticker, date, userID)
	if err != nil {
		return fmt.Errorf("submit task: %w", err)
	}

	fmt.Printf("任务 %s 已提交：%s @ %s\n", taskID, ticker, date)
	return pollUntilDone(controller, taskID)
}

func pollUntilDone(controller *control.Controller, taskID string) error {
	lastStep := ""
	for {
		task, ok := controller.Get(taskID)
		if !ok {
			return fmt.Errorf("task %s vanished", taskID)
		}
		if task.Progress.CurrentStep != "" && task.Progress.CurrentStep != lastStep {
			lastStep = task.Progress.CurrentStep
			fmt.Printf("[%d/%d] %s\n", task.Progress.CompletedSteps, task.Progress.TotalSteps, lastStep)
		}
		switch task.Status {
		case control.StatusCompleted:
			fmt.Printf("\n完成：%s\n结果目录：%s\n", task.Result.FinalTradeDecision, controller.ResultsDir())
			return nil
		case control.StatusFailed:
			return fmt.Errorf("analysis failed: %s", task.Error)
		}
		time.Sleep(500 * time.Millisecond)
	}
}

// sqliteDSNPrefix selects the single-file decision memory store over
// PostgresStore: a DSN such as "sqlite:///abs/path.db" opens SQLiteStore
// at the path after the prefix. Any other DSN, a bare local file path
// included, is handed to NewPostgresStore.
const sqliteDSNPrefix = "sqlite://"

func newMemoryStore(ctx context.Context, cfg *config.Config) (memory.Store, error) {
	if !cfg.MemoryEnabled() {
		return memory.NullStore{}, nil
	}
	embedder := memory.NewHTTPEmbedder(cfg.Memory.EmbeddingBaseURL, cfg.Memory.EmbeddingAPIKey, cfg.Memory.EmbeddingModel)

	if strings.HasPrefix(cfg.Memory.DSN, sqliteDSNPrefix) {
		dbPath := strings.TrimPrefix(cfg.Memory.DSN, sqliteDSNPrefix)
		store, err := memory.NewSQLiteStore(dbPath, embedder)
		if err != nil {
			obs.L().Warn("decision memory store unavailable, continuing without it")
			return memory.NullStore{}, nil
		}
		return store, nil
	}

	store, err := memory.NewPostgresStore(ctx, cfg.Memory.DSN, embedder)
	if err != nil {
		obs.L().Warn("decision memory store unavailable, continuing without it")
		return memory.NullStore{}, nil
	}
	return store, nil
}

func newMemoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "memory",
		Short: "Inspect the decision memory store",
	}
	cmd.AddCommand(newMemoryStatsCmd())
	cmd.AddCommand(newMemoryQueryCmd())
	return cmd
}

func newMemoryStatsCmd() *cobra.Command {
	var ticker, decisionType string
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show win-rate and return statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			store, err := newMemoryStore(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			stats, err := store.PerformanceStats(cmd.Context(), ticker, decisionType)
			if err != nil {
				return err
			}
			fmt.Printf("总计: %d  胜率: %.1f%%  平均收益: %s\n", stats.Total, stats.WinRate, stats.AvgReturn.String())
			return nil
		},
	}
	cmd.Flags().StringVar(&ticker, "ticker", "", "restrict to one ticker")
	cmd.Flags().StringVar(&decisionType, "decision-type", "", "restrict to one decision type")
	return cmd
}

func newMemoryQueryCmd() *cobra.Command {
	var n int
	cmd := &cobra.Command{
		Use:   "query SITUATION",
		Short: "Find the nearest prior decisions for a situation description",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			store, err := newMemoryStore(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			matches, err := store.Query(cmd.Context(), args[0], n, "")
			if err != nil {
				return err
			}
			for _, m := range matches {
				fmt.Printf("%s %s (%s, 置信度 %s, 相似度 %.2f)\n", m.Ticker, m.DecisionDate, m.DecisionType, m.Confidence.String(), m.SimilarityScore)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&n, "n", 5, "number of neighbours to return")
	return cmd
}
