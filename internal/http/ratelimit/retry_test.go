package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIsRetryableStatus(t *testing.T) {
	tests := []struct {
		status int
		want   bool
	}{
		{200, false},
		{400, false},
		{404, false},
		{429, true},
		{500, true},
		{503, true},
		{599, true},
		{600, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IsRetryableStatus(tt.status), "status %d", tt.status)
	}
}

func TestCalculateBackoffBounds(t *testing.T) {
	cfg := Config{InitialBackoff: 100 * time.Millisecond, MaxBackoff: time.Second}

	for attempt := 0; attempt < 6; attempt++ {
		d := CalculateBackoff(attempt, cfg)
		base := float64(100*time.Millisecond) * float64(int(1)<<attempt)
		if base > float64(time.Second) {
			base = float64(time.Second)
		}
		assert.GreaterOrEqual(t, float64(d), base, "attempt %d", attempt)
		assert.LessOrEqual(t, float64(d), base*1.25, "attempt %d", attempt)
	}
}

func TestCalculateRateLimitBackoffRetryAfter(t *testing.T) {
	cfg := DefaultConfig()
	d := CalculateRateLimitBackoff(0, cfg, "3")
	assert.GreaterOrEqual(t, d, 3*time.Second)
	assert.Less(t, d, 4*time.Second)

	d = CalculateRateLimitBackoff(0, cfg, "garbage")
	assert.GreaterOrEqual(t, d, cfg.InitialBackoff)
}

func TestWithOverrides(t *testing.T) {
	retries := 7
	cfg := WithOverrides(PartialConfig{MaxRetries: &retries})
	assert.Equal(t, 7, cfg.MaxRetries)
	assert.Equal(t, DefaultConfig().Burst, cfg.Burst)
}

func TestSleepCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, Sleep(ctx, time.Hour), context.Canceled)
	assert.NoError(t, Sleep(context.Background(), 0))
}

func TestThrottleUnlimited(t *testing.T) {
	rl := NewRateLimiter(Config{RequestsPerSecond: 0, Burst: 0})
	for i := 0; i < 100; i++ {
		assert.NoError(t, rl.Throttle(context.Background()))
	}
}
