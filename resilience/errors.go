package resilience

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// TransientError marks a failure as worth retrying: rate limits, timeouts,
// and upstream server errors. Status carries the HTTP-style status code when
// one is known, or 0 otherwise.
type TransientError struct {
	Status int
	Err    error
}

func (e *TransientError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("transient error (status %d): %v", e.Status, e.Err)
	}

	return fmt.Sprintf("transient error: %v", e.Err)
}

func (e *TransientError) Unwrap() error {
	return e.Err
}

// PermanentError marks a failure that retrying cannot fix: invalid requests,
// auth failures, missing models or resources.
type PermanentError struct {
	Status int
	Err    error
}

func (e *PermanentError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("permanent error (status %d): %v", e.Status, e.Err)
	}

	return fmt.Sprintf("permanent error: %v", e.Err)
}

func (e *PermanentError) Unwrap() error {
	return e.Err
}

// Transient wraps err as a TransientError with the given status code.
// A zero status means the code is unknown (e.g., a network timeout).
func Transient(status int, err error) error {
	return &TransientError{Status: status, Err: err}
}

// Permanent wraps err as a PermanentError with the given status code.
func Permanent(status int, err error) error {
	return &PermanentError{Status: status, Err: err}
}

// FromStatus classifies err by its HTTP-style status code.
//
// Rate limiting, request timeouts, and 5xx responses are transient; the
// remaining 4xx family (bad request, auth, not found, conflict, validation)
// is permanent. Codes outside both families are returned wrapped as
// transient, matching the upstream convention of retrying anything not
// explicitly rejected.
func FromStatus(status int, err error) error {
	switch status {
	case http.StatusRequestTimeout,
		http.StatusTooEarly,
		http.StatusTooManyRequests:
		return Transient(status, err)
	}

	if status >= 500 {
		return Transient(status, err)
	}

	if status >= 400 {
		return Permanent(status, err)
	}

	return Transient(status, err)
}

// IsTransient reports whether err is classified as transient.
func IsTransient(err error) bool {
	var te *TransientError

	return errors.As(err, &te)
}

// IsPermanent reports whether err is classified as permanent.
func IsPermanent(err error) bool {
	var pe *PermanentError

	return errors.As(err, &pe)
}

// rejected is implemented by synthetic errors that were raised without the
// underlying operation ever running, such as circuit-open rejections.
// Retrying those immediately would defeat the gate in front of them.
type rejected interface {
	Rejected() bool
}

// Retryable is the default retry classifier.
//
// It returns false for nil errors, permanent errors, context cancellation,
// and gate rejections; everything else, including unclassified errors, is
// considered retryable.
func Retryable(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	if IsPermanent(err) {
		return false
	}

	var r rejected
	if errors.As(err, &r) && r.Rejected() {
		return false
	}

	return true
}
