package retry

import (
	"context"
	"fmt"

	"github.com/altairlabs/lib-resilience/resilience"
	"github.com/altairlabs/lib-resilience/resilience/backoff"
	"github.com/altairlabs/lib-resilience/resilience/log"
)

// Operation is a fallible call governed by an Executor.
type Operation func(ctx context.Context) (any, error)

// Classifier reports whether a failure is worth retrying.
type Classifier func(error) bool

// ExhaustedError is returned when every attempt permitted by the policy has
// failed. It wraps the error from the final attempt.
type ExhaustedError struct {
	Attempts int
	Err      error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("retries exhausted after %d attempts: %v", e.Attempts, e.Err)
}

func (e *ExhaustedError) Unwrap() error {
	return e.Err
}

// Executor applies a retry Policy around operations. It holds no per-call
// state and is safe for concurrent use.
type Executor struct {
	policy      Policy
	isRetryable Classifier
	logger      log.Logger
}

// Option configures an Executor.
type Option func(*Executor)

// WithClassifier overrides the default failure classifier
// (resilience.Retryable).
func WithClassifier(c Classifier) Option {
	return func(e *Executor) {
		if c != nil {
			e.isRetryable = c
		}
	}
}

// WithLogger attaches a logger to the executor. Attempts and exhaustion are
// logged; by default the executor is silent.
func WithLogger(logger log.Logger) Option {
	return func(e *Executor) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// NewExecutor validates the policy and builds an Executor.
func NewExecutor(policy Policy, opts ...Option) (*Executor, error) {
	if err := policy.Validate(); err != nil {
		return nil, err
	}

	e := &Executor{
		policy:      policy,
		isRetryable: resilience.Retryable,
		logger:      &log.NoneLogger{},
	}

	for _, opt := range opts {
		opt(e)
	}

	return e, nil
}

// Policy returns the executor's policy.
func (e *Executor) Policy() Policy {
	return e.policy
}

// Do runs op until it succeeds, fails permanently, or the policy's attempts
// are exhausted.
//
// A success returns immediately. A failure the classifier rejects is
// returned as-is without further attempts. Retryable failures wait
// Policy.Delay(attempt) between attempts; the wait suspends only the calling
// goroutine and aborts early if ctx is cancelled. When the final attempt
// fails, the last error is returned wrapped in an ExhaustedError.
func (e *Executor) Do(ctx context.Context, op Operation) (any, error) {
	var lastErr error

	for attempt := 1; attempt <= e.policy.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("retry aborted: %w", err)
		}

		value, err := op(ctx)
		if err == nil {
			if attempt > 1 {
				e.logger.Infof("operation succeeded on attempt %d/%d", attempt, e.policy.MaxAttempts)
			}

			return value, nil
		}

		lastErr = err

		if !e.isRetryable(err) {
			e.logger.Errorf("non-retryable error on attempt %d: %v", attempt, err)

			return nil, err
		}

		if attempt == e.policy.MaxAttempts {
			break
		}

		delay := e.policy.Delay(attempt)
		e.logger.Warnf("attempt %d/%d failed: %v - retrying in %v", attempt, e.policy.MaxAttempts, err, delay)

		if err := backoff.WaitContext(ctx, delay); err != nil {
			return nil, fmt.Errorf("retry aborted: %w", err)
		}
	}

	e.logger.Errorf("all %d attempts failed, last error: %v", e.policy.MaxAttempts, lastErr)

	return nil, &ExhaustedError{Attempts: e.policy.MaxAttempts, Err: lastErr}
}

// Do executes fn through the executor and returns its typed result.
// This is a convenience wrapper for operations that return a concrete value.
func Do[T any](ctx context.Context, e *Executor, fn func(ctx context.Context) (T, error)) (T, error) {
	var result T

	_, err := e.Do(ctx, func(ctx context.Context) (any, error) {
		var fnErr error
		result, fnErr = fn(ctx)

		return nil, fnErr
	})

	return result, err
}
