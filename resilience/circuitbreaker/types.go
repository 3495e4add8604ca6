package circuitbreaker

import (
	"context"
	"errors"
	"fmt"

	"github.com/sony/gobreaker"
)

// Manager manages circuit breakers, one per upstream operation category.
type Manager interface {
	// GetOrCreate returns the existing circuit breaker for the operation or
	// creates a new one with the given configuration.
	GetOrCreate(operation string, config Config) CircuitBreaker

	// Execute runs fn through the operation's circuit breaker.
	Execute(operation string, fn func() (any, error)) (any, error)

	// GetState returns the current state of the operation's breaker.
	GetState(operation string) State

	// GetCounts returns the current counts of the operation's breaker.
	GetCounts(operation string) Counts

	// IsHealthy returns true if the operation's breaker is closed.
	IsHealthy(operation string) bool

	// Reset returns the operation's breaker to the closed state with
	// cleared counts.
	Reset(operation string)

	// RegisterStateChangeListener registers a listener notified on every
	// breaker state change.
	RegisterStateChangeListener(listener StateChangeListener)
}

// CircuitBreaker gates calls to a single operation category.
type CircuitBreaker interface {
	Execute(fn func() (any, error)) (any, error)
	State() State
	Counts() Counts
}

// State represents circuit breaker state.
type State string

const (
	StateClosed   State = "closed"
	StateOpen     State = "open"
	StateHalfOpen State = "half-open"
	StateUnknown  State = "unknown"
)

// Counts represents circuit breaker statistics.
type Counts struct {
	Requests             uint32
	TotalSuccesses       uint32
	TotalFailures        uint32
	ConsecutiveSuccesses uint32
	ConsecutiveFailures  uint32
}

// OpenError is returned when a call is rejected without invoking the
// underlying operation: either the breaker is open, or it is half-open and
// its probe quota is already in flight.
type OpenError struct {
	Operation string
	cause     error
}

func (e *OpenError) Error() string {
	return fmt.Sprintf("operation %q is currently unavailable (circuit breaker open): %v", e.Operation, e.cause)
}

func (e *OpenError) Unwrap() error {
	return e.cause
}

// Rejected marks the error as raised without the operation running, so retry
// classifiers know not to hammer an open gate.
func (e *OpenError) Rejected() bool {
	return true
}

// IsOpen reports whether err is a circuit breaker rejection.
func IsOpen(err error) bool {
	var oe *OpenError

	return errors.As(err, &oe)
}

// StateChangeListener is notified when a circuit breaker changes state.
type StateChangeListener interface {
	// OnStateChange is called when the operation's breaker changes state.
	OnStateChange(operation string, from State, to State)
}

// HealthCheckFunc probes whether an operation's downstream dependency is
// reachable again. It must respect the supplied context deadline.
type HealthCheckFunc func(ctx context.Context) error

// HealthChecker periodically probes unhealthy operations and resets their
// breakers once the downstream dependency recovers.
type HealthChecker interface {
	// Register adds an operation to the health check loop.
	Register(operation string, probe HealthCheckFunc)

	// Start begins the health check loop in a separate goroutine.
	Start()

	// Stop gracefully stops the health checker.
	Stop()

	// GetHealthStatus returns the breaker state for every registered
	// operation.
	GetHealthStatus() map[string]string

	// StateChangeListener lets the checker schedule an immediate probe
	// when a breaker opens.
	StateChangeListener
}

// circuitBreaker is the internal implementation wrapping gobreaker.
type circuitBreaker struct {
	breaker *gobreaker.CircuitBreaker
}

func (cb *circuitBreaker) Execute(fn func() (any, error)) (any, error) {
	return cb.breaker.Execute(fn)
}

func (cb *circuitBreaker) State() State {
	return stateFromGobreaker(cb.breaker.State())
}

func (cb *circuitBreaker) Counts() Counts {
	counts := cb.breaker.Counts()

	return Counts{
		Requests:             counts.Requests,
		TotalSuccesses:       counts.TotalSuccesses,
		TotalFailures:        counts.TotalFailures,
		ConsecutiveSuccesses: counts.ConsecutiveSuccesses,
		ConsecutiveFailures:  counts.ConsecutiveFailures,
	}
}

// stateFromGobreaker converts a gobreaker.State to our State type.
func stateFromGobreaker(state gobreaker.State) State {
	switch state {
	case gobreaker.StateClosed:
		return StateClosed
	case gobreaker.StateOpen:
		return StateOpen
	case gobreaker.StateHalfOpen:
		return StateHalfOpen
	default:
		return StateUnknown
	}
}
