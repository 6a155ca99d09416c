package retry

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	errTransient = errors.New("store unreachable")
	errTerminal  = errors.New("rejected")
)

func testExecutor(attempts uint, baseDelay time.Duration) *Executor {
	terminal := func(err error) bool { return errors.Is(err, errTerminal) }
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewExecutor(attempts, baseDelay, terminal, logger)
}

func TestExecuteSucceedsFirstAttempt(t *testing.T) {
	e := testExecutor(3, time.Millisecond)

	calls := 0
	err := e.Execute(context.Background(), "op", func(context.Context) error {
		calls++
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestExecuteRetriesTransientFailures(t *testing.T) {
	e := testExecutor(3, time.Millisecond)

	calls := 0
	err := e.Execute(context.Background(), "op", func(context.Context) error {
		calls++
		if calls < 3 {
			return errTransient
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestExecuteDoesNotRetryTerminalErrors(t *testing.T) {
	e := testExecutor(3, time.Millisecond)

	calls := 0
	err := e.Execute(context.Background(), "op", func(context.Context) error {
		calls++
		return errTerminal
	})

	require.ErrorIs(t, err, errTerminal)
	assert.Equal(t, 1, calls)

	var exhausted *ExhaustedError
	assert.False(t, errors.As(err, &exhausted), "terminal errors must not be wrapped")
}

func TestExecuteWrapsExhaustedError(t *testing.T) {
	e := testExecutor(3, time.Millisecond)

	calls := 0
	err := e.Execute(context.Background(), "promo.redeem", func(context.Context) error {
		calls++
		return errTransient
	})

	assert.Equal(t, 3, calls)

	var exhausted *ExhaustedError
	require.ErrorAs(t, err, &exhausted)
	assert.Equal(t, "promo.redeem", exhausted.Op)
	assert.Equal(t, uint(3), exhausted.Attempts)
	assert.Greater(t, exhausted.Elapsed, time.Duration(0))
	assert.ErrorIs(t, err, errTransient)
}

func TestExecuteLinearBackoff(t *testing.T) {
	base := 20 * time.Millisecond
	e := testExecutor(3, base)

	start := time.Now()
	err := e.Execute(context.Background(), "op", func(context.Context) error {
		return errTransient
	})
	elapsed := time.Since(start)

	require.Error(t, err)
	// Two sleeps: base*1 after the first failure, base*2 after the second.
	assert.GreaterOrEqual(t, elapsed, 3*base)
	assert.Less(t, elapsed, 10*base)
}

func TestExecuteStopsOnContextCancel(t *testing.T) {
	e := testExecutor(5, 50*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	calls := 0
	err := e.Execute(ctx, "op", func(context.Context) error {
		calls++
		return errTransient
	})

	require.Error(t, err)
	// The 50ms backoff outlives the 10ms deadline, so no second attempt runs.
	assert.Equal(t, 1, calls)
}

func TestDoReturnsValue(t *testing.T) {
	e := testExecutor(3, time.Millisecond)

	calls := 0
	got, err := Do(context.Background(), e, "op", func(context.Context) (string, error) {
		calls++
		if calls == 1 {
			return "", errTransient
		}
		return "result", nil
	})

	require.NoError(t, err)
	assert.Equal(t, "result", got)
	assert.Equal(t, 2, calls)
}
