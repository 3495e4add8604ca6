package circuitbreaker

import (
	"context"
	"errors"
	"maps"
	"sync"
	"time"

	"github.com/altairlabs/lib-resilience/resilience/log"
)

var (
	// ErrInvalidHealthCheckInterval indicates that the health check interval must be positive.
	ErrInvalidHealthCheckInterval = errors.New("circuitbreaker: health check interval must be positive")
	// ErrInvalidHealthCheckTimeout indicates that the health check timeout must be positive.
	ErrInvalidHealthCheckTimeout = errors.New("circuitbreaker: health check timeout must be positive")
)

// healthChecker periodically probes operations whose breaker has tripped and
// resets the breaker once the downstream dependency answers again.
type healthChecker struct {
	manager        Manager
	probes         map[string]HealthCheckFunc
	interval       time.Duration
	checkTimeout   time.Duration // Timeout for individual probe calls
	logger         log.Logger
	stopChan       chan struct{}
	immediateCheck chan string // Triggers an out-of-cycle probe for one operation
	wg             sync.WaitGroup
	mu             sync.RWMutex
}

// NewHealthChecker creates a health checker driving recovery through manager.
// interval is how often the probe loop runs; checkTimeout bounds each
// individual probe call.
func NewHealthChecker(manager Manager, interval, checkTimeout time.Duration, logger log.Logger) (HealthChecker, error) {
	if interval <= 0 {
		return nil, ErrInvalidHealthCheckInterval
	}

	if checkTimeout <= 0 {
		return nil, ErrInvalidHealthCheckTimeout
	}

	if logger == nil {
		logger = &log.NoneLogger{}
	}

	return &healthChecker{
		manager:        manager,
		probes:         make(map[string]HealthCheckFunc),
		interval:       interval,
		checkTimeout:   checkTimeout,
		logger:         logger,
		stopChan:       make(chan struct{}),
		immediateCheck: make(chan string, 10),
	}, nil
}

// Register adds an operation to the probe loop.
func (hc *healthChecker) Register(operation string, probe HealthCheckFunc) {
	hc.mu.Lock()
	defer hc.mu.Unlock()

	hc.probes[operation] = probe
	hc.logger.Infof("Registered health check for operation: %s", operation)
}

// Start begins the health check loop.
func (hc *healthChecker) Start() {
	hc.wg.Add(1)

	go hc.healthCheckLoop()

	hc.logger.Infof("Health checker started - probing operations every %v", hc.interval)
}

// Stop gracefully stops the health checker.
func (hc *healthChecker) Stop() {
	close(hc.stopChan)
	hc.wg.Wait()
	hc.logger.Info("Health checker stopped")
}

func (hc *healthChecker) healthCheckLoop() {
	defer hc.wg.Done()

	ticker := time.NewTicker(hc.interval)
	defer ticker.Stop()

	// By entering the select loop immediately, the checker is responsive to
	// immediate probes from the moment it starts.
	for {
		select {
		case <-ticker.C:
			hc.probeUnhealthy()
		case operation := <-hc.immediateCheck:
			hc.logger.Debugf("Triggering immediate health check for operation: %s", operation)
			hc.probeOperation(operation)
		case <-hc.stopChan:
			return
		}
	}
}

func (hc *healthChecker) probeUnhealthy() {
	hc.mu.RLock()
	// Snapshot so probes run without holding the lock
	probes := make(map[string]HealthCheckFunc, len(hc.probes))
	maps.Copy(probes, hc.probes)

	hc.mu.RUnlock()

	hc.logger.Debug("Probing registered operations...")

	unhealthyCount := 0
	recoveredCount := 0

	for operation, probe := range probes {
		if hc.manager.IsHealthy(operation) {
			continue
		}

		unhealthyCount++

		if hc.runProbe(operation, probe) {
			recoveredCount++
		}
	}

	if unhealthyCount > 0 {
		hc.logger.Infof("Health check complete: %d operations needed healing, %d recovered", unhealthyCount, recoveredCount)
	} else {
		hc.logger.Debug("All operations healthy")
	}
}

// probeOperation runs an out-of-cycle probe on a single operation.
func (hc *healthChecker) probeOperation(operation string) {
	hc.mu.RLock()
	probe, exists := hc.probes[operation]
	hc.mu.RUnlock()

	if !exists {
		hc.logger.Warnf("No health check registered for operation: %s", operation)
		return
	}

	if hc.manager.IsHealthy(operation) {
		hc.logger.Debugf("Operation %s is already healthy, skipping probe", operation)
		return
	}

	hc.runProbe(operation, probe)
}

// runProbe executes one probe with the configured timeout and resets the
// breaker on success. Returns true if the operation recovered.
func (hc *healthChecker) runProbe(operation string, probe HealthCheckFunc) bool {
	hc.logger.Infof("Attempting to heal operation: %s (circuit breaker is open)", operation)

	ctx, cancel := context.WithTimeout(context.Background(), hc.checkTimeout)
	err := probe(ctx)

	cancel()

	if err != nil {
		hc.logger.Warnf("Operation %s still unhealthy: %v - will retry in %v", operation, err, hc.interval)

		return false
	}

	hc.logger.Infof("Operation %s recovered - resetting circuit breaker", operation)
	hc.manager.Reset(operation)

	return true
}

// GetHealthStatus returns the breaker state for every registered operation.
func (hc *healthChecker) GetHealthStatus() map[string]string {
	hc.mu.RLock()
	defer hc.mu.RUnlock()

	status := make(map[string]string)

	for operation := range hc.probes {
		status[operation] = string(hc.manager.GetState(operation))
	}

	return status
}

// OnStateChange implements the StateChangeListener interface. A breaker that
// just opened gets an immediate probe instead of waiting a full interval.
func (hc *healthChecker) OnStateChange(operation string, from State, to State) {
	hc.logger.Debugf("Health checker notified of state change for %s: %s -> %s", operation, from, to)

	if to != StateOpen {
		return
	}

	hc.logger.Infof("Circuit breaker opened for %s - scheduling immediate health check", operation)

	// Non-blocking send to avoid deadlock
	select {
	case hc.immediateCheck <- operation:
		hc.logger.Debugf("Immediate health check scheduled for %s", operation)
	default:
		hc.logger.Warnf("Immediate health check channel full for %s, will probe on next interval", operation)
	}
}
