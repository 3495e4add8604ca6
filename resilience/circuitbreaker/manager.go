package circuitbreaker

import (
	"sync"

	"github.com/sony/gobreaker"

	"github.com/altairlabs/lib-resilience/resilience/log"
)

type manager struct {
	breakers  map[string]*gobreaker.CircuitBreaker
	configs   map[string]Config // Stored for Reset
	listeners []StateChangeListener
	mu        sync.RWMutex
	logger    log.Logger
}

// NewManager creates a new circuit breaker manager.
func NewManager(logger log.Logger) Manager {
	if logger == nil {
		logger = &log.NoneLogger{}
	}

	return &manager{
		breakers:  make(map[string]*gobreaker.CircuitBreaker),
		configs:   make(map[string]Config),
		listeners: make([]StateChangeListener, 0),
		logger:    logger,
	}
}

// buildSettings translates our Config into gobreaker settings for one
// operation. MaxRequests bounds the half-open probe quota, so the default of
// one guarantees a single probe decides recovery.
func (m *manager) buildSettings(operation string, config Config) gobreaker.Settings {
	cfg := config.normalized()

	return gobreaker.Settings{
		Name:        "operation-" + operation,
		MaxRequests: cfg.MaxHalfOpen,
		Interval:    cfg.Interval,
		Timeout:     cfg.ResetTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.ConsecutiveFailures >= cfg.FailureThreshold {
				return true
			}

			if cfg.FailureRatio <= 0 || counts.Requests < cfg.MinRequests {
				return false
			}

			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)

			return failureRatio >= cfg.FailureRatio
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			m.handleStateChange(operation, from, to)
		},
	}
}

func (m *manager) GetOrCreate(operation string, config Config) CircuitBreaker {
	m.mu.RLock()
	breaker, exists := m.breakers[operation]
	m.mu.RUnlock()

	if exists {
		return &circuitBreaker{breaker: breaker}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	// Double-check after acquiring write lock
	if breaker, exists = m.breakers[operation]; exists {
		return &circuitBreaker{breaker: breaker}
	}

	breaker = gobreaker.NewCircuitBreaker(m.buildSettings(operation, config))
	m.breakers[operation] = breaker
	m.configs[operation] = config

	m.logger.Infof("Created circuit breaker for operation: %s", operation)

	return &circuitBreaker{breaker: breaker}
}

func (m *manager) Execute(operation string, fn func() (any, error)) (any, error) {
	m.mu.RLock()
	breaker, exists := m.breakers[operation]
	m.mu.RUnlock()

	if !exists {
		// Unknown operations get the default configuration rather than an
		// unguarded call.
		m.GetOrCreate(operation, DefaultConfig())

		m.mu.RLock()
		breaker = m.breakers[operation]
		m.mu.RUnlock()
	}

	result, err := breaker.Execute(fn)
	if err != nil {
		if err == gobreaker.ErrOpenState {
			m.logger.Warnf("Circuit breaker [%s] is OPEN - request rejected immediately", operation)

			return nil, &OpenError{Operation: operation, cause: err}
		}

		if err == gobreaker.ErrTooManyRequests {
			m.logger.Warnf("Circuit breaker [%s] is HALF-OPEN - probe quota exhausted", operation)

			return nil, &OpenError{Operation: operation, cause: err}
		}
	}

	return result, err
}

func (m *manager) GetState(operation string) State {
	m.mu.RLock()
	breaker, exists := m.breakers[operation]
	m.mu.RUnlock()

	if !exists {
		return StateUnknown
	}

	return stateFromGobreaker(breaker.State())
}

func (m *manager) GetCounts(operation string) Counts {
	m.mu.RLock()
	breaker, exists := m.breakers[operation]
	m.mu.RUnlock()

	if !exists {
		return Counts{}
	}

	counts := breaker.Counts()

	return Counts{
		Requests:             counts.Requests,
		TotalSuccesses:       counts.TotalSuccesses,
		TotalFailures:        counts.TotalFailures,
		ConsecutiveSuccesses: counts.ConsecutiveSuccesses,
		ConsecutiveFailures:  counts.ConsecutiveFailures,
	}
}

func (m *manager) IsHealthy(operation string) bool {
	// Only the closed state counts as healthy; open and half-open both need
	// recovery before normal traffic resumes.
	state := m.GetState(operation)
	isHealthy := state == StateClosed

	m.logger.Debugf("IsHealthy check: operation=%s, state=%s, isHealthy=%v", operation, state, isHealthy)

	return isHealthy
}

func (m *manager) Reset(operation string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.breakers[operation]; !exists {
		return
	}

	m.logger.Infof("Resetting circuit breaker for operation: %s", operation)

	config, configExists := m.configs[operation]
	if !configExists {
		m.logger.Warnf("No stored config found for operation %s, cannot recreate", operation)
		delete(m.breakers, operation)

		return
	}

	// gobreaker has no explicit reset; recreate the breaker with the same
	// configuration to return it to a pristine closed state.
	m.breakers[operation] = gobreaker.NewCircuitBreaker(m.buildSettings(operation, config))

	m.logger.Infof("Circuit breaker reset completed for operation: %s", operation)
}

// RegisterStateChangeListener registers a listener for state change notifications.
func (m *manager) RegisterStateChangeListener(listener StateChangeListener) {
	if listener == nil {
		m.logger.Warnf("Attempted to register a nil state change listener")

		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.listeners = append(m.listeners, listener)
	m.logger.Debugf("Registered state change listener (total: %d)", len(m.listeners))
}

// handleStateChange processes state changes and notifies listeners.
func (m *manager) handleStateChange(operation string, from gobreaker.State, to gobreaker.State) {
	m.logger.Warnf("Circuit breaker [%s] state changed: %s -> %s",
		operation, from.String(), to.String())

	switch to {
	case gobreaker.StateOpen:
		m.logger.Errorf("Circuit breaker [%s] OPENED - operation is unhealthy, requests will fast-fail", operation)
	case gobreaker.StateHalfOpen:
		m.logger.Infof("Circuit breaker [%s] HALF-OPEN - probing recovery", operation)
	case gobreaker.StateClosed:
		m.logger.Infof("Circuit breaker [%s] CLOSED - operation is healthy", operation)
	}

	fromState := stateFromGobreaker(from)
	toState := stateFromGobreaker(to)

	m.mu.RLock()
	listeners := make([]StateChangeListener, len(m.listeners))
	copy(listeners, m.listeners)
	m.mu.RUnlock()

	for _, listener := range listeners {
		// Notify in a goroutine so a slow listener cannot block breaker
		// transitions.
		go func(l StateChangeListener) {
			defer func() {
				if r := recover(); r != nil {
					m.logger.Errorf("State change listener panic for operation %s: %v", operation, r)
				}
			}()

			l.OnStateChange(operation, fromState, toState)
		}(listener)
	}
}
