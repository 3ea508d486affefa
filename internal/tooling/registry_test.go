package tooling

import (
	"context"
	"testing"
)

func TestRegistryDispatchUnknownTool(t *testing.T) {
	r := NewRegistry()
	env := r.Dispatch(context.Background(), "nonexistent", nil)
	if env.Success || env.Category != ErrUnknown {
		t.Errorf("expected UNKNOWN envelope for unregistered tool, got %+v", env)
	}
}

func TestRegistryDispatchInvokesHandler(t *testing.T) {
	r := NewRegistry()
	r.Register(Definition{
		Name: "echo",
		Handler: func(ctx context.Context, args map[string]any) Envelope {
			return Envelope{Success: true, Data: args["msg"].(string)}
		},
	})
	env := r.Dispatch(context.Background(), "echo", map[string]any{"msg": "hi"})
	if !env.Success || env.Data != "hi" {
		t.Errorf("unexpected envelope: %+v", env)
	}
}

func TestRegistryNames(t *testing.T) {
	r := NewRegistry()
	r.Register(Definition{Name: "a", Handler: func(ctx context.Context, args map[string]any) Envelope { return Envelope{} }})
	r.Register(Definition{Name: "b", Handler: func(ctx context.Context, args map[string]any) Envelope { return Envelope{} }})
	names := r.Names()
	if len(names) != 2 {
		t.Errorf("expected 2 names, got %v", names)
	}
}

type fakeRecorder struct {
	calls []string
}

func (f *fakeRecorder) RecordToolCall(ctx context.Context, toolName string, args map[string]any, env Envelope) {
	f.calls = append(f.calls, toolName)
}

func TestRegistryDispatchRecordsViaWithRecorder(t *testing.T) {
	r := NewRegistry()
	r.Register(Definition{
		Name: "ping",
		Handler: func(ctx context.Context, args map[string]any) Envelope {
			return Envelope{Success: true, Data: "pong"}
		},
	})

	rec := &fakeRecorder{}
	ctx := WithRecorder(context.Background(), rec)
	r.Dispatch(ctx, "ping", nil)

	if len(rec.calls) != 1 || rec.calls[0] != "ping" {
		t.Errorf("expected recorder to capture one call to ping, got %v", rec.calls)
	}
}

func TestRegistryDispatchWithoutRecorderIsNoop(t *testing.T) {
	r := NewRegistry()
	r.Register(Definition{
		Name: "ping",
		Handler: func(ctx context.Context, args map[string]any) Envelope {
			return Envelope{Success: true, Data: "pong"}
		},
	})
	env := r.Dispatch(context.Background(), "ping", nil)
	if !env.Success {
		t.Errorf("expected dispatch to succeed without a recorder installed, got %+v", env)
	}
}
