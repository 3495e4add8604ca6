package retry

import (
	"errors"
	"time"

	"github.com/altairlabs/lib-resilience/resilience/backoff"
)

var (
	// ErrInvalidMaxAttempts indicates that MaxAttempts must be at least 1.
	ErrInvalidMaxAttempts = errors.New("retry: max attempts must be at least 1")
	// ErrInvalidBaseDelay indicates that BaseDelay must not be negative.
	ErrInvalidBaseDelay = errors.New("retry: base delay must not be negative")
	// ErrInvalidMaxDelay indicates that MaxDelay must not be below BaseDelay.
	ErrInvalidMaxDelay = errors.New("retry: max delay must not be below base delay")
	// ErrInvalidMultiplier indicates that Multiplier must be greater than 1.
	ErrInvalidMultiplier = errors.New("retry: multiplier must be greater than 1")
)

// Policy describes a bounded exponential backoff retry schedule.
// It is a value type: construct it once and pass it around by copy.
type Policy struct {
	// MaxAttempts is the total number of attempts, including the first.
	// A value of 1 disables retries.
	MaxAttempts int

	// BaseDelay is the wait after the first failed attempt.
	BaseDelay time.Duration

	// MaxDelay caps the computed delay. Zero means no cap.
	MaxDelay time.Duration

	// Multiplier is the exponential growth factor between attempts.
	Multiplier float64

	// Jitter randomizes each delay into [delay/2, delay) to avoid
	// thundering-herd retries from synchronized callers.
	Jitter bool
}

// DefaultPolicy provides balanced settings for most upstream calls.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts: 3,
		BaseDelay:   1 * time.Second,
		MaxDelay:    60 * time.Second,
		Multiplier:  2.0,
		Jitter:      true,
	}
}

// RateLimitPolicy is tuned for quota and rate-limit errors (HTTP 429),
// which need patient, widely spaced retries.
func RateLimitPolicy() Policy {
	return Policy{
		MaxAttempts: 6,
		BaseDelay:   2 * time.Second,
		MaxDelay:    120 * time.Second,
		Multiplier:  2.0,
		Jitter:      true,
	}
}

// ServerErrorPolicy is tuned for transient server errors (HTTP 500/503),
// which usually clear quickly.
func ServerErrorPolicy() Policy {
	return Policy{
		MaxAttempts: 4,
		BaseDelay:   1 * time.Second,
		MaxDelay:    30 * time.Second,
		Multiplier:  2.0,
		Jitter:      true,
	}
}

// Validate checks the policy invariants.
func (p Policy) Validate() error {
	if p.MaxAttempts < 1 {
		return ErrInvalidMaxAttempts
	}

	if p.BaseDelay < 0 {
		return ErrInvalidBaseDelay
	}

	if p.MaxDelay > 0 && p.MaxDelay < p.BaseDelay {
		return ErrInvalidMaxDelay
	}

	if p.Multiplier <= 1 {
		return ErrInvalidMultiplier
	}

	return nil
}

// Delay returns the wait before the attempt following the given one.
// The attempt number is 1-based: Delay(1) is the wait after the first
// failure and equals BaseDelay (modulo jitter).
func (p Policy) Delay(attempt int) time.Duration {
	delay := backoff.Exponential(p.BaseDelay, p.Multiplier, attempt)
	delay = backoff.Cap(delay, p.MaxDelay)

	if p.Jitter {
		delay = backoff.HalfJitter(delay)
	}

	return delay
}
