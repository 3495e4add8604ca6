package safecall

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/altairlabs/lib-resilience/resilience"
	"github.com/altairlabs/lib-resilience/resilience/circuitbreaker"
	"github.com/altairlabs/lib-resilience/resilience/log"
	"github.com/altairlabs/lib-resilience/resilience/retry"
)

const fallbackAnswer = "I'm sorry, I couldn't generate a response."

func fastPolicy(maxAttempts int) retry.Policy {
	return retry.Policy{
		MaxAttempts: maxAttempts,
		BaseDelay:   time.Millisecond,
		MaxDelay:    10 * time.Millisecond,
		Multiplier:  2,
	}
}

func TestCaller_SuccessPassesThrough(t *testing.T) {
	t.Parallel()

	caller := New[string]("generate").WithFallback(fallbackAnswer)

	value, err := caller.Call(context.Background(), func(ctx context.Context) (string, error) {
		return "a genuine answer", nil
	})

	require.NoError(t, err)
	assert.Equal(t, "a genuine answer", value)
}

func TestCaller_PermanentFailureReturnsFallback(t *testing.T) {
	t.Parallel()

	caller := New[string]("generate").
		WithFallback(fallbackAnswer).
		WithRetry(fastPolicy(5))

	invocations := 0
	permanent := resilience.Permanent(401, errors.New("invalid api key"))

	value, err := caller.Call(context.Background(), func(ctx context.Context) (string, error) {
		invocations++
		return "", permanent
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, permanent)
	assert.Equal(t, fallbackAnswer, value)
	assert.Equal(t, 1, invocations, "permanent failures must not be retried")
}

func TestCaller_ExhaustedRetriesReturnFallback(t *testing.T) {
	t.Parallel()

	caller := New[string]("generate").
		WithFallback(fallbackAnswer).
		WithRetry(fastPolicy(3))

	invocations := 0

	value, err := caller.Call(context.Background(), func(ctx context.Context) (string, error) {
		invocations++
		return "", resilience.Transient(503, errors.New("unavailable"))
	})

	require.Error(t, err)
	assert.Equal(t, fallbackAnswer, value)
	assert.Equal(t, 3, invocations)

	var exhausted *retry.ExhaustedError
	assert.ErrorAs(t, err, &exhausted)
}

func TestCaller_PanicIsConvertedToFallback(t *testing.T) {
	t.Parallel()

	caller := New[string]("generate").WithFallback(fallbackAnswer)

	var value string
	var err error

	assert.NotPanics(t, func() {
		value, err = caller.Call(context.Background(), func(ctx context.Context) (string, error) {
			panic("nil response candidate")
		})
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "operation panicked")
	assert.Equal(t, fallbackAnswer, value)
}

func TestCaller_OpenBreakerReturnsFallbackWithoutInvoking(t *testing.T) {
	t.Parallel()

	manager := circuitbreaker.NewManager(&log.NoneLogger{})

	caller := New[string]("generate").
		WithFallback(fallbackAnswer).
		WithBreaker(manager, circuitbreaker.Config{
			FailureThreshold: 2,
			ResetTimeout:     time.Hour,
		})

	down := errors.New("upstream down")

	for range 2 {
		_, err := caller.Call(context.Background(), func(ctx context.Context) (string, error) {
			return "", down
		})
		require.Error(t, err)
	}

	require.Equal(t, circuitbreaker.StateOpen, manager.GetState("generate"))

	invoked := false

	value, err := caller.Call(context.Background(), func(ctx context.Context) (string, error) {
		invoked = true
		return "unreachable", nil
	})

	require.Error(t, err)
	assert.True(t, circuitbreaker.IsOpen(err))
	assert.False(t, invoked)
	assert.Equal(t, fallbackAnswer, value)
}

func TestCaller_BreakerCountsRetryRunAsOneFailure(t *testing.T) {
	t.Parallel()

	manager := circuitbreaker.NewManager(&log.NoneLogger{})

	caller := New[string]("generate").
		WithFallback(fallbackAnswer).
		WithRetry(fastPolicy(3)).
		WithBreaker(manager, circuitbreaker.Config{
			FailureThreshold: 5,
			ResetTimeout:     time.Hour,
		})

	invocations := 0

	_, err := caller.Call(context.Background(), func(ctx context.Context) (string, error) {
		invocations++
		return "", resilience.Transient(503, errors.New("unavailable"))
	})

	require.Error(t, err)
	assert.Equal(t, 3, invocations, "retry governs attempts inside the breaker")
	assert.Equal(t, uint32(1), manager.GetCounts("generate").ConsecutiveFailures,
		"an exhausted retry run is a single breaker failure")
}

func TestCaller_InvalidPolicySurfacesAsFallback(t *testing.T) {
	t.Parallel()

	caller := New[string]("generate").
		WithFallback(fallbackAnswer).
		WithRetry(retry.Policy{}) // invalid: zero attempts

	invoked := false

	value, err := caller.Call(context.Background(), func(ctx context.Context) (string, error) {
		invoked = true
		return "unreachable", nil
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, retry.ErrInvalidMaxAttempts)
	assert.Equal(t, fallbackAnswer, value)
	assert.False(t, invoked)
}

func TestCaller_ZeroValueFallbackByDefault(t *testing.T) {
	t.Parallel()

	caller := New[int]("count")

	value, err := caller.Call(context.Background(), func(ctx context.Context) (int, error) {
		return 0, errors.New("boom")
	})

	require.Error(t, err)
	assert.Zero(t, value)
}

func TestCaller_CustomClassifier(t *testing.T) {
	t.Parallel()

	caller := New[string]("generate").
		WithFallback(fallbackAnswer).
		WithRetry(fastPolicy(4)).
		WithClassifier(func(err error) bool { return false })

	invocations := 0

	_, err := caller.Call(context.Background(), func(ctx context.Context) (string, error) {
		invocations++
		return "", errors.New("anything")
	})

	require.Error(t, err)
	assert.Equal(t, 1, invocations, "classifier rejecting all errors disables retries")
}

func TestCall_PlainForm(t *testing.T) {
	t.Parallel()

	value, err := Call(context.Background(), func(ctx context.Context) (string, error) {
		return "", errors.New("generation failed")
	}, fallbackAnswer)

	require.Error(t, err)
	assert.Equal(t, fallbackAnswer, value)

	value, err = Call(context.Background(), func(ctx context.Context) (string, error) {
		return "ok", nil
	}, fallbackAnswer)

	require.NoError(t, err)
	assert.Equal(t, "ok", value)
}
