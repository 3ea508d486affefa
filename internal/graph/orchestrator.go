package graph

import (
	"context"
	"fmt"
	"time"

	"github.com/cloudwego/eino/callbacks"
	"github.com/cloudwego/eino/compose"

	"github.com/marketsage/ashare-agents/internal/models"
)

// ProgressEvent is one field of a RunState becoming newly populated, or
// the run reaching a terminal state.
type ProgressEvent struct {
	Field   string // a models.ReportFields entry, or "error"
	Content string
}

// ProgressCallback adapts eino's node-granularity callbacks into
// ProgressEvent emissions: each node here returns a whole
// *models.RunState rather than a token stream, so progress is emitted
// per newly-populated field rather than per chat token.
type ProgressCallback struct {
	callbacks.HandlerBuilder
	Emit func(ProgressEvent)

	emitted map[string]bool
}

func (cb *ProgressCallback) OnStart(ctx context.Context, info *callbacks.RunInfo, input callbacks.CallbackInput) context.Context {
	return ctx
}

func (cb *ProgressCallback) OnEnd(ctx context.Context, info *callbacks.RunInfo, output callbacks.CallbackOutput) context.Context {
	if cb.Emit == nil || info == nil {
		return ctx
	}
	state, ok := output.(*models.RunState)
	if !ok || state == nil {
		return ctx
	}
	if cb.emitted == nil {
		cb.emitted = make(map[string]bool)
	}
	for _, field := range models.ReportFields {
		if cb.emitted[field] {
			continue
		}
		if content := state.Field(field); content != "" {
			cb.emitted[field] = true
			cb.Emit(ProgressEvent{Field: field, Content: content})
		}
	}
	return ctx
}

func (cb *ProgressCallback) OnError(ctx context.Context, info *callbacks.RunInfo, err error) context.Context {
	if cb.Emit != nil {
		cb.Emit(ProgressEvent{Field: "error", Content: err.Error()})
	}
	return ctx
}

// Runner drives a compiled analysis graph end to end for one
// ticker/trade-date pair.
type Runner struct {
	compiled compose.Runnable[*models.RunState, *models.RunState]
}

// NewRunner compiles the orchestrator's graph once; the returned Runner
// may be reused across tickers.
func NewRunner(ctx context.Context, o *Orchestrator) (*Runner, error) {
	compiled, err := o.Build(ctx)
	if err != nil {
		return nil, fmt.Errorf("compile analysis graph: %w", err)
	}
	return &Runner{compiled: compiled}, nil
}

// Run executes one full pass of the graph for ticker on tradeDate,
// emitting a ProgressEvent through onProgress each time a node
// populates a new report field (onProgress may be nil).
func (r *Runner) Run(ctx context.Context, ticker string, tradeDate time.Time, onProgress func(ProgressEvent)) (*models.RunState, error) {
	initial := models.NewRunState(ticker, tradeDate)

	opts := []compose.Option{}
	if onProgress != nil {
		opts = append(opts, compose.WithCallbacks(&ProgressCallback{Emit: onProgress}))
	}

	final, err := r.compiled.Invoke(ctx, initial, opts...)
	if err != nil {
		return nil, fmt.Errorf("run analysis graph for %s on %s: %w", ticker, tradeDate.Format("2006-01-02"), err)
	}
	return final, nil
}
