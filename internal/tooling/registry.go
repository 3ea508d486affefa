package tooling

import (
	"context"
	"fmt"
	"time"

	"github.com/cloudwego/eino/components/tool"
	t_utils "github.com/cloudwego/eino/components/tool/utils"
	"github.com/cloudwego/eino/schema"
	"go.uber.org/zap"

	"github.com/marketsage/ashare-agents/internal/obs"
)

// Handler implements one tool's body. args is the JSON-decoded call
// arguments; the returned Envelope is never an error return — dispatch
// failures are represented inside the envelope itself.
type Handler func(ctx context.Context, args map[string]any) Envelope

// Definition is one catalog entry: a stable name, a JSON-schema input
// contract, a free-text description, and its Handler.
type Definition struct {
	Name        string
	Description string
	Params      map[string]*schema.ParameterInfo
	Handler     Handler
}

// Registry is the named tool catalog every analyst/debater role draws
// its bound subset from.
type Registry struct {
	defs map[string]*Definition
}

// NewRegistry returns an empty catalog.
func NewRegistry() *Registry {
	return &Registry{defs: make(map[string]*Definition)}
}

// Register adds a tool definition, overwriting any prior definition of
// the same name.
func (r *Registry) Register(def Definition) {
	r.defs[def.Name] = &def
}

// Names returns every registered tool name.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.defs))
	for name := range r.defs {
		names = append(names, name)
	}
	return names
}

// Recorder receives one entry per dispatched tool call, for the
// per-task tool_data.csv audit trail. Installed on a
// context via WithRecorder; Dispatch is a no-op towards any context
// that carries none, so the shared, process-wide Registry stays free of
// per-task state.
type Recorder interface {
	RecordToolCall(ctx context.Context, toolName string, args map[string]any, env Envelope)
}

type recorderKey struct{}

// WithRecorder returns a context that routes every Dispatch call made
// through it to rec, alongside the usual logging.
func WithRecorder(ctx context.Context, rec Recorder) context.Context {
	return context.WithValue(ctx, recorderKey{}, rec)
}

// Dispatch invokes the named tool's Handler, logging the call and its
// outcome. Calling an unregistered name surfaces an UNKNOWN envelope
// rather than panicking.
func (r *Registry) Dispatch(ctx context.Context, name string, args map[string]any) Envelope {
	def, ok := r.defs[name]
	if !ok {
		return Envelope{Success: false, Error: fmt.Sprintf("unknown tool %q", name), Category: ErrUnknown, Source: name}
	}

	start := time.Now()
	env := def.Handler(ctx, args)
	duration := time.Since(start)

	log := obs.L().With(zap.String("tool", name), zap.Duration("duration", duration))
	if env.Success {
		log.Debug("tool call completed")
	} else {
		log.Warn("tool call failed", zap.String("category", string(env.Category)), zap.Int("retried", env.Retried))
	}

	if rec, ok := ctx.Value(recorderKey{}).(Recorder); ok {
		rec.RecordToolCall(ctx, name, args, env)
	}
	return env
}

// BaseTools builds the eino tool.BaseTool bindings for the named subset
// of the catalog, for attaching to one agent role's model call.
func (r *Registry) BaseTools(names ...string) ([]tool.BaseTool, error) {
	tools := make([]tool.BaseTool, 0, len(names))
	for _, name := range names {
		def, ok := r.defs[name]
		if !ok {
			return nil, fmt.Errorf("tool %q is not registered", name)
		}
		handler := def.Handler
		bound := t_utils.NewTool(
			&schema.ToolInfo{
				Name:        def.Name,
				Desc:        def.Description,
				ParamsOneOf: schema.NewParamsOneOfByParams(def.Params),
			},
			func(ctx context.Context, args map[string]any) (string, error) {
				return handler(ctx, args).AsContent(), nil
			},
		)
		tools = append(tools, bound)
	}
	return tools, nil
}
