//go:build unit

package retry

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPolicy_Validate(t *testing.T) {
	t.Parallel()

	valid := Policy{
		MaxAttempts: 3,
		BaseDelay:   100 * time.Millisecond,
		MaxDelay:    time.Second,
		Multiplier:  2,
	}

	tests := []struct {
		name    string
		mutate  func(*Policy)
		wantErr error
	}{
		{
			name:    "valid policy",
			mutate:  func(p *Policy) {},
			wantErr: nil,
		},
		{
			name:    "zero attempts",
			mutate:  func(p *Policy) { p.MaxAttempts = 0 },
			wantErr: ErrInvalidMaxAttempts,
		},
		{
			name:    "negative base delay",
			mutate:  func(p *Policy) { p.BaseDelay = -time.Second },
			wantErr: ErrInvalidBaseDelay,
		},
		{
			name:    "max delay below base delay",
			mutate:  func(p *Policy) { p.MaxDelay = 10 * time.Millisecond },
			wantErr: ErrInvalidMaxDelay,
		},
		{
			name:    "uncapped max delay allowed",
			mutate:  func(p *Policy) { p.MaxDelay = 0 },
			wantErr: nil,
		},
		{
			name:    "multiplier of 1",
			mutate:  func(p *Policy) { p.Multiplier = 1 },
			wantErr: ErrInvalidMultiplier,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			policy := valid
			tt.mutate(&policy)

			err := policy.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestPolicy_Delay_MatchesFormula(t *testing.T) {
	t.Parallel()

	policy := Policy{
		MaxAttempts: 8,
		BaseDelay:   100 * time.Millisecond,
		MaxDelay:    1 * time.Second,
		Multiplier:  2,
		Jitter:      false,
	}

	for attempt := 1; attempt <= policy.MaxAttempts; attempt++ {
		raw := float64(policy.BaseDelay) * math.Pow(policy.Multiplier, float64(attempt-1))
		expected := time.Duration(math.Min(raw, float64(policy.MaxDelay)))

		assert.Equal(t, expected, policy.Delay(attempt), "attempt %d", attempt)
	}
}

func TestPolicy_Delay_Jitter(t *testing.T) {
	t.Parallel()

	policy := Policy{
		MaxAttempts: 3,
		BaseDelay:   100 * time.Millisecond,
		MaxDelay:    time.Second,
		Multiplier:  2,
		Jitter:      true,
	}

	for range 100 {
		delay := policy.Delay(1)
		assert.GreaterOrEqual(t, delay, 50*time.Millisecond)
		assert.Less(t, delay, 100*time.Millisecond)
	}
}

func TestPresets(t *testing.T) {
	t.Parallel()

	for name, policy := range map[string]Policy{
		"default":      DefaultPolicy(),
		"rate limit":   RateLimitPolicy(),
		"server error": ServerErrorPolicy(),
	} {
		require.NoError(t, policy.Validate(), "%s preset must be valid", name)
	}

	assert.Equal(t, 6, RateLimitPolicy().MaxAttempts)
	assert.Greater(t, RateLimitPolicy().MaxDelay, ServerErrorPolicy().MaxDelay)
}
