// Package resilience provides the shared failure taxonomy used by the
// retry, circuitbreaker, and safecall subpackages.
//
// Upstream failures are split into two classes: TransientError for faults
// worth retrying (rate limits, timeouts, server errors) and PermanentError
// for faults that retrying cannot fix (validation, auth, missing resources).
// FromStatus maps HTTP-style status codes onto the taxonomy, and Retryable
// is the default classifier consumed by the retry executor.
//
// Specialized behavior lives in subpackages: backoff for delay math, retry
// for the attempt loop, circuitbreaker for fast-fail gating, and safecall
// for the never-failing composition of all three.
package resilience
