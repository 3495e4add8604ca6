// Package backoff provides retry delay helpers with exponential growth and jitter.
//
// Use Exponential and Cap to compute per-attempt delays, HalfJitter to spread
// synchronized retries, and WaitContext to wait while respecting cancellation
// and deadlines.
package backoff
