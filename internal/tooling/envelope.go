// Package tooling implements the tool registry and dispatch layer every
// agent role calls through: a uniform response envelope, an error
// taxonomy, and exponential-backoff retry.
package tooling

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net"
	"strings"
	"time"
)

// ErrorCategory classifies a tool-call failure for retry decisions and
// for surfacing a diagnostic to the calling agent.
type ErrorCategory string

const (
	ErrNetwork      ErrorCategory = "NETWORK"
	ErrTimeout      ErrorCategory = "TIMEOUT"
	ErrRateLimit    ErrorCategory = "RATE_LIMIT"
	ErrAuth         ErrorCategory = "AUTH"
	ErrNotFound     ErrorCategory = "NOT_FOUND"
	ErrInvalidParam ErrorCategory = "INVALID_PARAM"
	ErrServer       ErrorCategory = "SERVER"
	ErrUnknown      ErrorCategory = "UNKNOWN"
)

// Envelope is the internal result of one tool dispatch.
// Success() surfaces Data to the calling agent; failure surfaces a
// diagnostic string naming Category.
type Envelope struct {
	Success  bool
	Data     string
	Error    string
	Category ErrorCategory
	Retried  int
	Source   string
}

// AsContent renders the envelope as the string handed back to the
// agent's message list: Data on success, a diagnostic on failure.
func (e Envelope) AsContent() string {
	if e.Success {
		return e.Data
	}
	return fmt.Sprintf("tool error [%s]: %s", e.Category, e.Error)
}

// Classify maps an error to its taxonomy bucket by type and
// message-substring matching
func Classify(err error) ErrorCategory {
	if err == nil {
		return ""
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return ErrTimeout
		}
		return ErrNetwork
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "timeout") || strings.Contains(msg, "deadline exceeded"):
		return ErrTimeout
	case strings.Contains(msg, "rate limit") || strings.Contains(msg, "429") || strings.Contains(msg, "too many requests"):
		return ErrRateLimit
	case strings.Contains(msg, "unauthorized") || strings.Contains(msg, "401") || strings.Contains(msg, "forbidden") || strings.Contains(msg, "403") || strings.Contains(msg, "invalid token") || strings.Contains(msg, "invalid api key"):
		return ErrAuth
	case strings.Contains(msg, "not found") || strings.Contains(msg, "404") || strings.Contains(msg, "no data"):
		return ErrNotFound
	case strings.Contains(msg, "invalid param") || strings.Contains(msg, "invalid argument") || strings.Contains(msg, "bad request") || strings.Contains(msg, "400"):
		return ErrInvalidParam
	case strings.Contains(msg, "connection refused") || strings.Contains(msg, "connection reset") || strings.Contains(msg, "no such host") || strings.Contains(msg, "eof"):
		return ErrNetwork
	case strings.Contains(msg, "500") || strings.Contains(msg, "502") || strings.Contains(msg, "503") || strings.Contains(msg, "internal server error"):
		return ErrServer
	default:
		return ErrUnknown
	}
}

// Retryable reports whether a category is ever retried: NETWORK,
// TIMEOUT, RATE_LIMIT, SERVER retry; AUTH, INVALID_PARAM, NOT_FOUND
// never do.
func (c ErrorCategory) Retryable() bool {
	switch c {
	case ErrNetwork, ErrTimeout, ErrRateLimit, ErrServer:
		return true
	default:
		return false
	}
}

// RetryPolicy is the exponential-backoff schedule applied to retryable
// tool-call failures.
type RetryPolicy struct {
	MaxRetries int
	BaseDelay  time.Duration
	MaxDelay   time.Duration
	Multiplier float64
}

// DefaultRetryPolicy is the schedule names: initial delay
// 1s, multiplier 2, max delay 30s, max 3 retries.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxRetries: 3,
		BaseDelay:  1 * time.Second,
		MaxDelay:   30 * time.Second,
		Multiplier: 2.0,
	}
}

// delay returns the backoff before attempt n (1-indexed), doubled for
// RATE_LIMIT
func (p RetryPolicy) delay(attempt int, category ErrorCategory) time.Duration {
	d := float64(p.BaseDelay) * math.Pow(p.Multiplier, float64(attempt-1))
	if category == ErrRateLimit {
		d *= 2
	}
	if d > float64(p.MaxDelay) {
		d = float64(p.MaxDelay)
	}
	return time.Duration(d)
}

// Do runs fn, retrying on retryable categories per the policy, and
// returns a fully populated Envelope. source names the data provider or
// tool backend, surfaced for observability.
func (p RetryPolicy) Do(ctx context.Context, source string, fn func(ctx context.Context) (string, error)) Envelope {
	var lastErr error
	var category ErrorCategory
	retried := 0

	for attempt := 0; attempt <= p.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return Envelope{
					Success:  false,
					Error:    ctx.Err().Error(),
					Category: ErrTimeout,
					Retried:  retried,
					Source:   source,
				}
			case <-time.After(p.delay(attempt, category)):
			}
			retried++
		}

		data, err := fn(ctx)
		if err == nil {
			return Envelope{Success: true, Data: data, Retried: retried, Source: source}
		}

		lastErr = err
		category = Classify(err)
		if !category.Retryable() {
			break
		}
	}

	return Envelope{
		Success:  false,
		Error:    lastErr.Error(),
		Category: category,
		Retried:  retried,
		Source:   source,
	}
}
