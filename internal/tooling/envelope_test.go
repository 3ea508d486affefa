package tooling

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestClassifyNilError(t *testing.T) {
	if got := Classify(nil); got != "" {
		t.Errorf("Classify(nil) = %q, want empty", got)
	}
}

func TestClassifyMessagePatterns(t *testing.T) {
	cases := []struct {
		msg  string
		want ErrorCategory
	}{
		{"request timeout", ErrTimeout},
		{"context deadline exceeded", ErrTimeout},
		{"rate limit exceeded", ErrRateLimit},
		{"429 too many requests", ErrRateLimit},
		{"401 unauthorized", ErrAuth},
		{"invalid api key", ErrAuth},
		{"resource not found", ErrNotFound},
		{"404 no data", ErrNotFound},
		{"invalid param: bad ticker", ErrInvalidParam},
		{"400 bad request", ErrInvalidParam},
		{"connection refused", ErrNetwork},
		{"no such host", ErrNetwork},
		{"500 internal server error", ErrServer},
		{"something unexpected happened", ErrUnknown},
	}
	for _, c := range cases {
		got := Classify(errors.New(c.msg))
		if got != c.want {
			t.Errorf("Classify(%q) = %q, want %q", c.msg, got, c.want)
		}
	}
}

func TestErrorCategoryRetryable(t *testing.T) {
	retryable := []ErrorCategory{ErrNetwork, ErrTimeout, ErrRateLimit, ErrServer}
	for _, c := range retryable {
		if !c.Retryable() {
			t.Errorf("%q should be retryable", c)
		}
	}
	notRetryable := []ErrorCategory{ErrAuth, ErrInvalidParam, ErrNotFound, ErrUnknown}
	for _, c := range notRetryable {
		if c.Retryable() {
			t.Errorf("%q should not be retryable", c)
		}
	}
}

func TestEnvelopeAsContent(t *testing.T) {
	ok := Envelope{Success: true, Data: "hello"}
	if got := ok.AsContent(); got != "hello" {
		t.Errorf("AsContent() = %q, want %q", got, "hello")
	}

	fail := Envelope{Success: false, Error: "boom", Category: ErrServer}
	want := "tool error [SERVER]: boom"
	if got := fail.AsContent(); got != want {
		t.Errorf("AsContent() = %q, want %q", got, want)
	}
}

func TestDefaultRetryPolicy(t *testing.T) {
	p := DefaultRetryPolicy()
	if p.MaxRetries != 3 || p.BaseDelay != time.Second || p.MaxDelay != 30*time.Second || p.Multiplier != 2.0 {
		t.Errorf("unexpected default policy: %+v", p)
	}
}

func TestRetryPolicyDoSucceedsWithoutRetry(t *testing.T) {
	p := RetryPolicy{MaxRetries: 3, BaseDelay: time.Millisecond, MaxDelay: time.Millisecond, Multiplier: 2}
	calls := 0
	env := p.Do(context.Background(), "test-source", func(ctx context.Context) (string, error) {
		calls++
		return "ok", nil
	})
	if !env.Success || env.Data != "ok" || env.Retried != 0 || calls != 1 {
		t.Errorf("unexpected envelope: %+v, calls=%d", env, calls)
	}
}

func TestRetryPolicyDoRetriesThenSucceeds(t *testing.T) {
	p := RetryPolicy{MaxRetries: 3, BaseDelay: time.Millisecond, MaxDelay: time.Millisecond, Multiplier: 1}
	calls := 0
	env := p.Do(context.Background(), "test-source", func(ctx context.Context) (string, error) {
		calls++
		if calls < 3 {
			return "", errors.New("connection refused")
		}
		return "recovered", nil
	})
	if !env.Success || env.Data != "recovered" || env.Retried != 2 {
		t.Errorf("unexpected envelope: %+v", env)
	}
}

func TestRetryPolicyDoStopsOnNonRetryableCategory(t *testing.T) {
	p := RetryPolicy{MaxRetries: 3, BaseDelay: time.Millisecond, MaxDelay: time.Millisecond, Multiplier: 1}
	calls := 0
	env := p.Do(context.Background(), "test-source", func(ctx context.Context) (string, error) {
		calls++
		return "", errors.New("401 unauthorized")
	})
	if env.Success || calls != 1 || env.Category != ErrAuth {
		t.Errorf("expected single attempt and AUTH category, got calls=%d env=%+v", calls, env)
	}
}

func TestRetryPolicyDoExhaustsRetries(t *testing.T) {
	p := RetryPolicy{MaxRetries: 2, BaseDelay: time.Millisecond, MaxDelay: time.Millisecond, Multiplier: 1}
	calls := 0
	env := p.Do(context.Background(), "test-source", func(ctx context.Context) (string, error) {
		calls++
		return "", errors.New("500 internal server error")
	})
	if env.Success || calls != 3 || env.Retried != 2 || env.Category != ErrServer {
		t.Errorf("expected exhausted retries, got calls=%d env=%+v", calls, env)
	}
}

func TestRetryPolicyDoRespectsContextCancellation(t *testing.T) {
	p := RetryPolicy{MaxRetries: 5, BaseDelay: 50 * time.Millisecond, MaxDelay: time.Second, Multiplier: 1}
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	go func() {
		<-time.After(5 * time.Millisecond)
		cancel()
	}()
	env := p.Do(ctx, "test-source", func(ctx context.Context) (string, error) {
		calls++
		return "", fmt.Errorf("connection reset")
	})
	if env.Success {
		t.Error("expected failure after context cancellation")
	}
	if env.Category != ErrTimeout {
		t.Errorf("expected ErrTimeout category on cancellation, got %q", env.Category)
	}
}
