// Package retry wraps store operations with attempt-based retries and
// linear backoff.
package retry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/avast/retry-go"
)

// ExhaustedError reports an operation that kept failing after every attempt.
type ExhaustedError struct {
	Op       string
	Attempts uint
	Elapsed  time.Duration
	Err      error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("%s failed after %d attempts in %s: %v", e.Op, e.Attempts, e.Elapsed, e.Err)
}

func (e *ExhaustedError) Unwrap() error { return e.Err }

// Executor retries transient failures with linear backoff: attempt 1 sleeps
// baseDelay, attempt 2 sleeps 2*baseDelay, and so on. Errors recognised by
// the terminal predicate are returned as-is without further attempts. An
// Executor holds no per-call state and is safe for concurrent use.
type Executor struct {
	attempts  uint
	baseDelay time.Duration
	terminal  func(error) bool
	logger    *slog.Logger
}

func NewExecutor(attempts uint, baseDelay time.Duration, terminal func(error) bool, logger *slog.Logger) *Executor {
	if terminal == nil {
		terminal = func(error) bool { return false }
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Executor{attempts: attempts, baseDelay: baseDelay, terminal: terminal, logger: logger}
}

// Execute runs op under the retry policy. After exhausting all attempts the
// last error is wrapped in an *ExhaustedError carrying the operation name,
// attempt count and elapsed time.
func (e *Executor) Execute(ctx context.Context, name string, op func(context.Context) error) error {
	start := time.Now()
	err := retry.Do(
		func() error { return op(ctx) },
		retry.Context(ctx),
		retry.Attempts(e.attempts),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool { return !e.terminal(err) }),
		retry.DelayType(func(n uint, _ error, _ *retry.Config) time.Duration {
			// Linear, not exponential.
			return e.baseDelay * time.Duration(n+1)
		}),
		retry.OnRetry(func(n uint, err error) {
			e.logger.Warn("operation attempt failed",
				"operation", name,
				"attempt", n+1,
				"elapsed", time.Since(start),
				"error", err,
			)
		}),
	)
	if err == nil {
		return nil
	}
	if e.terminal(err) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	exhausted := &ExhaustedError{Op: name, Attempts: e.attempts, Elapsed: time.Since(start), Err: err}
	e.logger.Error("operation failed after all attempts",
		"operation", name,
		"attempts", e.attempts,
		"elapsed", exhausted.Elapsed,
		"error", err,
	)
	return exhausted
}

// Do runs fn under the executor's retry policy and returns its result.
func Do[T any](ctx context.Context, e *Executor, name string, fn func(context.Context) (T, error)) (T, error) {
	var out T
	err := e.Execute(ctx, name, func(ctx context.Context) error {
		var err error
		out, err = fn(ctx)
		return err
	})
	return out, err
}
