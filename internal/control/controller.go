// Package control implements the run controller: a task-keyed map
// driving the analysis graph on background workers, translating each
// progress event into a persisted report file, a tool-call CSV row,
// and a capped task log, and finishing every task in either COMPLETED
// or FAILED with a diagnostic.
package control

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/marketsage/ashare-agents/internal/graph"
	"github.com/marketsage/ashare-agents/internal/models"
	"github.com/marketsage/ashare-agents/internal/obs"
	"github.com/marketsage/ashare-agents/internal/tooling"
	"go.uber.org/zap"
)

// Status is one of the four task lifecycle states.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusRunning   Status = "RUNNING"
	StatusCompleted Status = "COMPLETED"
	StatusFailed    Status = "FAILED"
)

const maxLogLines = 50

// Progress tracks the run against the graph's 14-node count:
// CurrentStep is the last report field written, CompletedSteps counts
// the report fields written so far (debate turns add no step), and
// CompletedSteps is set to TotalSteps when the run completes.
type Progress struct {
	CurrentStep    string
	CompletedSteps int
	TotalSteps     int
}

// Task is one controller-tracked run.
type Task struct {
	ID          string
	Ticker      string
	TradeDate   string
	UserID      string
	Status      Status
	Progress    Progress
	Logs        []string
	Error       string
	Result      *models.RunState
	CreatedAt   time.Time
	CompletedAt time.Time

	cancel context.CancelFunc
}

// totalSteps mirrors the 14 node names builder.go wires, in the fixed
// order a task passes through them at least once.
const totalSteps = 14

// Controller owns the task map and the components every run needs: the
// compiled graph runner and the results directory root are both
// provided at construction.
type Controller struct {
	mu        sync.RWMutex
	tasks     map[string]*Task
	runner    *graph.Runner
	resultsDir string
}

// NewController builds a Controller around an already-compiled Runner.
func NewController(runner *graph.Runner, resultsDir string) *Controller {
	return &Controller{
		tasks:      make(map[string]*Task),
		runner:     runner,
		resultsDir: resultsDir,
	}
}

// ResultsDir is the directory root every task's artifacts are written
// under, at {ResultsDir}/{ticker}/{date}/.
func (c *Controller) ResultsDir() string { return c.resultsDir }

// Submit starts a new background run for ticker on tradeDate and
// returns its task id immediately; the caller polls Get for progress.
func (c *Controller) Submit(ticker, tradeDate, userID string) (string, error) {
	id := uuid.NewString()
	ctx, cancel := context.WithCancel(context.Background())

	task := &Task{
		ID:        id,
		Ticker:    ticker,
		TradeDate: tradeDate,
		UserID:    userID,
		Status:    StatusPending,
		Progress:  Progress{TotalSteps: totalSteps},
		CreatedAt: time.Now(),
		cancel:    cancel,
	}

	c.mu.Lock()
	c.tasks[id] = task
	c.mu.Unlock()

	go c.run(ctx, task)
	return id, nil
}

// Get returns a snapshot of one task's state, or false if id is unknown.
func (c *Controller) Get(id string) (Task, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	t, ok := c.tasks[id]
	if !ok {
		return Task{}, false
	}
	return *t, true
}

// Cancel flags a running task for cooperative cancellation.
// The next blocking LLM/tool call the task's context is passed to
// observes ctx.Done() and returns context.Canceled, which run() maps to
// the "user-cancelled" terminal state.
func (c *Controller) Cancel(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	t, ok := c.tasks[id]
	if !ok || t.cancel == nil {
		return false
	}
	t.cancel()
	return true
}

func (c *Controller) run(ctx context.Context, task *Task) {
	c.setStatus(task.ID, StatusRunning)

	artifacts, err := NewArtifacts(c.resultsDir, task.Ticker, task.TradeDate)
	if err != nil {
		c.fail(task.ID, err)
		return
	}
	defer artifacts.Close()

	c.appendLog(task.ID, artifacts, fmt.Sprintf("analysis_start %s %s", task.Ticker, task.TradeDate))

	runCtx := tooling.WithRecorder(ctx, artifacts.ToolCallLog())

	tradeDate, err := time.Parse("2006-01-02", task.TradeDate)
	if err != nil {
		c.fail(task.ID, fmt.Errorf("invalid trade date %q: %w", task.TradeDate, err))
		return
	}

	final, err := c.runner.Run(runCtx, task.Ticker, tradeDate, func(evt graph.ProgressEvent) {
		c.onProgress(task.ID, artifacts, evt)
	})
	if err != nil {
		if ctx.Err() == context.Canceled {
			c.cancelled(task.ID)
			return
		}
		c.fail(task.ID, err)
		return
	}

	if err := artifacts.WriteReflection(final.PreviousDecisionReflection); err != nil {
		obs.L().Warn("write reflection report failed", zap.String("task", task.ID), zap.Error(err))
	}
	if err := artifacts.WriteFinal(final, task.UserID); err != nil {
		c.fail(task.ID, fmt.Errorf("write final artifacts: %w", err))
		return
	}

	c.appendLog(task.ID, artifacts, "analysis_complete")
	c.mu.Lock()
	task.Status = StatusCompleted
	task.Result = final
	task.CompletedAt = time.Now()
	task.Progress.CurrentStep = "consolidation"
	task.Progress.CompletedSteps = totalSteps
	c.mu.Unlock()
}

func (c *Controller) onProgress(taskID string, artifacts *Artifacts, evt graph.ProgressEvent) {
	if evt.Field == "error" {
		c.appendLog(taskID, artifacts, "error "+evt.Content)
		return
	}

	if err := artifacts.WriteReport(evt.Field, evt.Content); err != nil {
		obs.L().Warn("write report failed", zap.String("task", taskID), zap.String("field", evt.Field), zap.Error(err))
	}
	c.appendLog(taskID, artifacts, "section_complete "+evt.Field)

	c.mu.Lock()
	if t, ok := c.tasks[taskID]; ok {
		t.Progress.CurrentStep = evt.Field
		t.Progress.CompletedSteps++
	}
	c.mu.Unlock()
}

func (c *Controller) setStatus(id string, status Status) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if t, ok := c.tasks[id]; ok {
		t.Status = status
	}
}

// appendLog records line against the task's in-memory log (capped at
// maxLogLines, for Get callers polling progress) and, when artifacts is
// non-nil, against the task's message_tool.log file on disk.
func (c *Controller) appendLog(id string, artifacts *Artifacts, line string) {
	if artifacts != nil {
		if err := artifacts.AppendLog(line); err != nil {
			obs.L().Warn("append message_tool.log failed", zap.String("task", id), zap.Error(err))
		}
	}

	entry := fmt.Sprintf("[%s] %s", time.Now().Format(time.RFC3339), line)
	c.mu.Lock()
	defer c.mu.Unlock()
	t, ok := c.tasks[id]
	if !ok {
		return
	}
	t.Logs = append(t.Logs, entry)
	if len(t.Logs) > maxLogLines {
		t.Logs = t.Logs[len(t.Logs)-maxLogLines:]
	}
}

func (c *Controller) fail(id string, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if t, ok := c.tasks[id]; ok {
		t.Status = StatusFailed
		t.Error = err.Error()
		t.CompletedAt = time.Now()
	}
}

func (c *Controller) cancelled(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if t, ok := c.tasks[id]; ok {
		t.Status = StatusFailed
		t.Error = "user-cancelled"
		t.CompletedAt = time.Now()
	}
}
