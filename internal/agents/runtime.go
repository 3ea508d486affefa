package agents

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"go.uber.org/zap"

	"github.com/marketsage/ashare-agents/internal/obs"
	"github.com/marketsage/ashare-agents/internal/tooling"
)

// Recursion-limit defaults.
const (
	DefaultRecursionLimit  = 10
	QuickRoleRecursionLimit = 5
	AnalysisRoleRecursionLimit = 20
	GraphRecursionLimit    = 100
)

// Role is one agent's static shape: its system prompt template, the
// tool subset it may call, and its own recursion ceiling.
type Role struct {
	Name           string
	SystemPrompt   string
	ToolNames      []string
	RecursionLimit int
}

// Render fills the role's prompt template placeholders
// ({today}, {ticker}, {current_date}, {tool_names}).
func (r Role) Render(ticker string, today time.Time) string {
	repl := strings.NewReplacer(
		"{today}", today.Format("2006-01-02"),
		"{current_date}", today.Format("2006-01-02"),
		"{ticker}", ticker,
		"{tool_names}", strings.Join(r.ToolNames, ", "),
	)
	return repl.Replace(r.SystemPrompt)
}

// Runtime executes any Role's tool-call loop against a shared chat
// model and tool registry: bind tools, generate, dispatch tool calls,
// loop until a tool-call-free response.
type Runtime struct {
	chatModel model.ChatModel
	registry  *tooling.Registry
}

// NewRuntime builds a Runtime bound to one chat model tier and the
// shared tool registry.
func NewRuntime(chatModel model.ChatModel, registry *tooling.Registry) *Runtime {
	return &Runtime{chatModel: chatModel, registry: registry}
}

// Result carries a completed role run's report text, the full message
// trail to fold into RunState.Messages, and whether it exited via the
// recursion limit (a low-confidence signal the caller may want to note).
type Result struct {
	Report           string
	Trail            []*schema.Message
	HitRecursionCap  bool
}

// Run drives role's tool-call loop to completion: the system prompt
// plus seed messages go to the model; each tool-call response is
// dispatched through the registry and fed back as a tool message; the
// loop ends when a response carries no tool calls, and that response's
// text becomes the report.
func (rt *Runtime) Run(ctx context.Context, role Role, ticker string, today time.Time, seed []*schema.Message) (*Result, error) {
	toolInfos, err := rt.bind(ctx, role.ToolNames)
	if err != nil {
		return nil, fmt.Errorf("role %s: bind tools: %w", role.Name, err)
	}

	bound := rt.chatModel
	if len(toolInfos) > 0 {
		bound, err = rt.chatModel.WithTools(toolInfos)
		if err != nil {
			return nil, fmt.Errorf("role %s: bind tools to model: %w", role.Name, err)
		}
	}

	messages := make([]*schema.Message, 0, len(seed)+1)
	messages = append(messages, schema.SystemMessage(role.Render(ticker, today)))
	messages = append(messages, seed...)

	limit := role.RecursionLimit
	if limit <= 0 {
		limit = DefaultRecursionLimit
	}

	log := obs.L()
	for i := 0; i < limit; i++ {
		resp, err := bound.Generate(ctx, messages)
		if err != nil {
			return nil, fmt.Errorf("role %s: generate: %w", role.Name, err)
		}
		messages = append(messages, resp)

		if len(resp.ToolCalls) == 0 {
			return &Result{Report: resp.Content, Trail: messages}, nil
		}

		for _, call := range resp.ToolCalls {
			args := map[string]any{}
			if call.Function.Arguments != "" {
				if err := json.Unmarshal([]byte(call.Function.Arguments), &args); err != nil {
					log.Warn("tool call arguments did not parse as JSON",
						zap.String("role", role.Name), zap.String("tool", call.Function.Name))
				}
			}
			env := rt.registry.Dispatch(ctx, call.Function.Name, args)
			messages = append(messages, &schema.Message{
				Role:       schema.Tool,
				Content:    env.AsContent(),
				ToolCallID: call.ID,
				ToolName:   call.Function.Name,
			})
		}
	}

	return rt.finishOnRecursionCap(ctx, role, messages)
}

// finishOnRecursionCap implements the recursion-limit exit: one final
// direct-answer call, instructing the model to stop calling tools and
// answer with what it has.
func (rt *Runtime) finishOnRecursionCap(ctx context.Context, role Role, messages []*schema.Message) (*Result, error) {
	messages = append(messages, schema.UserMessage(
		"已达到工具调用次数上限，请基于已获得的信息直接给出你的最终结论，不要再调用任何工具。"))
	resp, err := rt.chatModel.Generate(ctx, messages)
	if err != nil {
		return nil, fmt.Errorf("role %s: recursion-cap finalization: %w", role.Name, err)
	}
	messages = append(messages, resp)
	return &Result{Report: resp.Content, Trail: messages, HitRecursionCap: true}, nil
}

func (rt *Runtime) bind(ctx context.Context, names []string) ([]*schema.ToolInfo, error) {
	if len(names) == 0 {
		return nil, nil
	}
	tools, err := rt.registry.BaseTools(names...)
	if err != nil {
		return nil, err
	}
	infos := make([]*schema.ToolInfo, 0, len(tools))
	for _, t := range tools {
		info, err := t.Info(ctx)
		if err != nil {
			return nil, err
		}
		infos = append(infos, info)
	}
	return infos, nil
}
