package circuitbreaker

import "time"

// Config holds circuit breaker configuration.
type Config struct {
	// FailureThreshold is the number of consecutive failures that trips
	// the breaker open.
	FailureThreshold uint32

	// ResetTimeout is how long the breaker stays open before admitting
	// probe calls.
	ResetTimeout time.Duration

	// MaxHalfOpen is the number of probe calls admitted while half-open.
	// Zero defaults to 1, meaning exactly one probe decides recovery.
	MaxHalfOpen uint32

	// FailureRatio optionally trips the breaker when the failure ratio in
	// the closed state reaches this value. Zero disables ratio tripping.
	FailureRatio float64

	// MinRequests is the minimum number of requests in the closed state
	// before FailureRatio is considered.
	MinRequests uint32

	// Interval is the cyclic period in the closed state after which counts
	// are cleared. Zero keeps counts for the life of the closed state.
	Interval time.Duration
}

// normalized applies defaults for zero-valued fields.
func (c Config) normalized() Config {
	if c.FailureThreshold == 0 {
		c.FailureThreshold = 5
	}

	if c.ResetTimeout <= 0 {
		c.ResetTimeout = 60 * time.Second
	}

	if c.MaxHalfOpen == 0 {
		c.MaxHalfOpen = 1
	}

	return c
}

// DefaultConfig provides balanced settings for most operations.
func DefaultConfig() Config {
	return Config{
		FailureThreshold: 5,
		ResetTimeout:     60 * time.Second,
		MaxHalfOpen:      1,
		FailureRatio:     0.5,
		MinRequests:      10,
		Interval:         2 * time.Minute,
	}
}

// AggressiveConfig for operations requiring fast failure detection.
func AggressiveConfig() Config {
	return Config{
		FailureThreshold: 3,
		ResetTimeout:     30 * time.Second,
		MaxHalfOpen:      1,
		FailureRatio:     0.4,
		MinRequests:      5,
		Interval:         1 * time.Minute,
	}
}

// ConservativeConfig for operations that should tolerate more failures.
func ConservativeConfig() Config {
	return Config{
		FailureThreshold: 15,
		ResetTimeout:     5 * time.Minute,
		MaxHalfOpen:      2,
		FailureRatio:     0.6,
		MinRequests:      20,
		Interval:         3 * time.Minute,
	}
}

// GenerativeAPIConfig is tuned for hosted text-generation APIs: quota errors
// arrive in bursts, and providers usually recover within a minute, so the
// breaker trips fast and probes with a single call.
func GenerativeAPIConfig() Config {
	return Config{
		FailureThreshold: 5,
		ResetTimeout:     60 * time.Second,
		MaxHalfOpen:      1,
		FailureRatio:     0.5,
		MinRequests:      10,
		Interval:         2 * time.Minute,
	}
}
