package backoff

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"math"
	"math/big"
	mrand "math/rand/v2"
	"time"
)

// Exponential calculates the delay before the next attempt. The delay grows
// as base * multiplier^(attempt-1), so the first attempt waits exactly base.
// Attempts below 1 are treated as 1, multipliers below 1 as 1, and results
// that overflow are clamped to the maximum duration.
func Exponential(base time.Duration, multiplier float64, attempt int) time.Duration {
	if base <= 0 {
		return 0
	}

	if attempt < 1 {
		attempt = 1
	}

	if multiplier < 1 {
		multiplier = 1
	}

	delay := float64(base) * math.Pow(multiplier, float64(attempt-1))
	if delay >= math.MaxInt64 || math.IsInf(delay, 1) {
		return time.Duration(math.MaxInt64)
	}

	return time.Duration(delay)
}

// Cap limits a delay to the given maximum. A non-positive max means no cap.
func Cap(delay, max time.Duration) time.Duration {
	if max > 0 && delay > max {
		return max
	}

	return delay
}

// HalfJitter returns a random duration in the range [delay/2, delay).
// Keeping at least half of the computed delay preserves backoff pressure
// while spreading synchronized retries apart.
// Uses crypto/rand for randomness, falling back to math/rand if crypto fails.
// Returns 0 for zero or negative delays.
func HalfJitter(delay time.Duration) time.Duration {
	if delay <= 0 {
		return 0
	}

	half := delay / 2
	if half <= 0 {
		return delay
	}

	n, err := rand.Int(rand.Reader, big.NewInt(int64(half)))
	if err != nil {
		return half + time.Duration(cryptoFallbackRand(int64(half)))
	}

	return half + time.Duration(n.Int64())
}

// fallbackDivisor is used when crypto/rand fails completely.
const fallbackDivisor = 2

// cryptoFallbackRand provides a fallback random number generator when
// crypto/rand fails. It first attempts to seed a math/rand PRNG via
// rand.Read, which uses a different code path than rand.Int and may succeed
// independently. If even seeding fails, it returns a deterministic midpoint
// so jitter never stalls under entropy exhaustion.
func cryptoFallbackRand(maxValue int64) int64 {
	var seed [8]byte

	_, err := rand.Read(seed[:])
	if err != nil {
		return maxValue / fallbackDivisor
	}

	rng := mrand.New(
		mrand.NewPCG(binary.LittleEndian.Uint64(seed[:]), 0),
	) // #nosec G404 -- Fallback when crypto/rand fails

	return rng.Int64N(maxValue)
}

// WaitContext sleeps for the specified duration but respects context
// cancellation, suspending only the calling goroutine. Returns nil if the
// sleep completes, or an error if the context is cancelled first.
// Returns immediately (nil) for zero or negative durations.
func WaitContext(ctx context.Context, duration time.Duration) error {
	if duration <= 0 {
		return nil
	}

	timer := time.NewTimer(duration)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("context done: %w", ctx.Err())
	}
}
