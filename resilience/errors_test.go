package resilience

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromStatus(t *testing.T) {
	t.Parallel()

	base := errors.New("upstream said no")

	tests := []struct {
		name          string
		status        int
		wantTransient bool
	}{
		{name: "rate limit is transient", status: 429, wantTransient: true},
		{name: "request timeout is transient", status: 408, wantTransient: true},
		{name: "too early is transient", status: 425, wantTransient: true},
		{name: "internal server error is transient", status: 500, wantTransient: true},
		{name: "bad gateway is transient", status: 502, wantTransient: true},
		{name: "service unavailable is transient", status: 503, wantTransient: true},
		{name: "gateway timeout is transient", status: 504, wantTransient: true},
		{name: "bad request is permanent", status: 400, wantTransient: false},
		{name: "unauthorized is permanent", status: 401, wantTransient: false},
		{name: "forbidden is permanent", status: 403, wantTransient: false},
		{name: "model not found is permanent", status: 404, wantTransient: false},
		{name: "conflict is permanent", status: 409, wantTransient: false},
		{name: "unprocessable entity is permanent", status: 422, wantTransient: false},
		{name: "unknown status defaults to transient", status: 0, wantTransient: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := FromStatus(tt.status, base)
			require.Error(t, err)

			assert.Equal(t, tt.wantTransient, IsTransient(err))
			assert.Equal(t, !tt.wantTransient, IsPermanent(err))
			assert.ErrorIs(t, err, base, "classification must preserve the cause chain")
		})
	}
}

func TestTransientError_Message(t *testing.T) {
	t.Parallel()

	err := Transient(429, errors.New("quota exceeded"))
	assert.Contains(t, err.Error(), "429")
	assert.Contains(t, err.Error(), "quota exceeded")

	noStatus := Transient(0, errors.New("timeout"))
	assert.NotContains(t, noStatus.Error(), "status")
}

func TestPermanentError_Unwrap(t *testing.T) {
	t.Parallel()

	cause := errors.New("invalid api key")
	err := Permanent(401, cause)

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "401")
}

// rejectedErr mimics a circuit-open rejection raised without the operation
// ever running.
type rejectedErr struct{}

func (rejectedErr) Error() string  { return "gate closed" }
func (rejectedErr) Rejected() bool { return true }

func TestRetryable(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil error", err: nil, want: false},
		{name: "transient error", err: Transient(503, errors.New("unavailable")), want: true},
		{name: "permanent error", err: Permanent(401, errors.New("unauthorized")), want: false},
		{name: "wrapped permanent error", err: fmt.Errorf("calling model: %w", Permanent(404, errors.New("not found"))), want: false},
		{name: "context canceled", err: context.Canceled, want: false},
		{name: "context deadline", err: fmt.Errorf("call: %w", context.DeadlineExceeded), want: false},
		{name: "gate rejection", err: rejectedErr{}, want: false},
		{name: "wrapped gate rejection", err: fmt.Errorf("call: %w", rejectedErr{}), want: false},
		{name: "unclassified error", err: errors.New("connection reset"), want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, Retryable(tt.err))
		})
	}
}
