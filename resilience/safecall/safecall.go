package safecall

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/altairlabs/lib-resilience/resilience/circuitbreaker"
	"github.com/altairlabs/lib-resilience/resilience/log"
	"github.com/altairlabs/lib-resilience/resilience/retry"
)

// Operation is the fallible call protected by a Caller.
type Operation[T any] func(ctx context.Context) (T, error)

// Caller wraps operations of one category with circuit breaking, retries,
// and a fallback value. Configure it with the chained With* setters before
// the first Call; afterwards it is safe for concurrent use.
type Caller[T any] struct {
	operation  string
	fallback   T
	policy     *retry.Policy
	classifier retry.Classifier
	manager    circuitbreaker.Manager
	breakerCfg circuitbreaker.Config
	logger     log.Logger

	once     sync.Once
	executor *retry.Executor
	initErr  error
}

// New creates a Caller for the named operation category. Without further
// configuration it performs a single guarded attempt with no breaker and a
// zero-value fallback.
func New[T any](operation string) *Caller[T] {
	return &Caller[T]{
		operation: operation,
		logger:    &log.NoneLogger{},
	}
}

// WithFallback sets the value substituted when the operation ultimately fails.
func (c *Caller[T]) WithFallback(value T) *Caller[T] {
	c.fallback = value
	return c
}

// WithRetry enables retries governed by the given policy.
func (c *Caller[T]) WithRetry(policy retry.Policy) *Caller[T] {
	c.policy = &policy
	return c
}

// WithClassifier overrides the retry classifier (default resilience.Retryable).
func (c *Caller[T]) WithClassifier(classifier retry.Classifier) *Caller[T] {
	c.classifier = classifier
	return c
}

// WithBreaker gates calls through the manager's breaker for this operation,
// creating it with the given configuration if it does not exist yet.
func (c *Caller[T]) WithBreaker(manager circuitbreaker.Manager, config circuitbreaker.Config) *Caller[T] {
	c.manager = manager
	c.breakerCfg = config

	return c
}

// WithLogger attaches a logger; by default the caller is silent.
func (c *Caller[T]) WithLogger(logger log.Logger) *Caller[T] {
	if logger != nil {
		c.logger = logger
	}

	return c
}

// init finalizes configuration on first use. An invalid retry policy is not
// a panic: it is remembered and surfaced as a fallback result on every call.
func (c *Caller[T]) init() {
	if c.policy != nil {
		opts := []retry.Option{retry.WithLogger(c.logger)}
		if c.classifier != nil {
			opts = append(opts, retry.WithClassifier(c.classifier))
		}

		c.executor, c.initErr = retry.NewExecutor(*c.policy, opts...)
		if c.initErr != nil {
			return
		}
	}

	if c.manager != nil {
		c.manager.GetOrCreate(c.operation, c.breakerCfg)
	}
}

// Call executes op under the configured protections and always returns.
//
// On success the operation's value is returned with a nil error. On any
// terminal failure, including panics inside op, rejected calls, and
// exhausted retries, the fallback value is returned together with the error
// that caused it. Callers must inspect the error to distinguish a genuine
// result from a substituted one.
func (c *Caller[T]) Call(ctx context.Context, op Operation[T]) (T, error) {
	c.once.Do(c.init)

	callID := uuid.NewString()

	if c.initErr != nil {
		c.logger.Errorf("safecall [%s] %s: invalid configuration, returning fallback: %v", c.operation, callID, c.initErr)

		return c.fallback, c.initErr
	}

	value, err := c.execute(ctx, op)
	if err != nil {
		c.logger.Warnf("safecall [%s] %s: call failed, returning fallback: %v", c.operation, callID, err)

		return c.fallback, err
	}

	c.logger.Debugf("safecall [%s] %s: call succeeded", c.operation, callID)

	return value, nil
}

// execute runs the breaker-outside, retry-inside composition: the breaker
// admits or rejects the whole call, and one admitted call spans every retry
// attempt, so an exhausted retry run counts as a single breaker failure.
func (c *Caller[T]) execute(ctx context.Context, op Operation[T]) (T, error) {
	guarded := guard(op)

	run := func() (T, error) {
		if c.executor != nil {
			return retry.Do(ctx, c.executor, guarded)
		}

		return guarded(ctx)
	}

	if c.manager == nil {
		return run()
	}

	var result T

	_, err := c.manager.Execute(c.operation, func() (any, error) {
		var runErr error
		result, runErr = run()

		return nil, runErr
	})
	if err != nil {
		var zero T

		return zero, err
	}

	return result, nil
}

// guard converts panics inside op into ordinary errors so the safe contract
// holds even for misbehaving operations.
func guard[T any](op Operation[T]) Operation[T] {
	return func(ctx context.Context) (value T, err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("operation panicked: %v", r)
			}
		}()

		return op(ctx)
	}
}

// Call executes op once with panic protection and converts any failure into
// the fallback value paired with the error. This is the plain form for
// callers that do not need retries or circuit breaking.
func Call[T any](ctx context.Context, op Operation[T], fallback T) (T, error) {
	value, err := guard(op)(ctx)
	if err != nil {
		return fallback, err
	}

	return value, nil
}
