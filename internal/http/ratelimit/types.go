package ratelimit

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Config holds rate limiting and retry configuration for one upstream
type Config struct {
	RequestsPerSecond float64       `json:"requestsPerSecond" mapstructure:"requests_per_second"`
	Burst             int           `json:"burst" mapstructure:"burst"`
	MaxRetries        int           `json:"maxRetries" mapstructure:"max_retries"`
	InitialBackoff    time.Duration `json:"initialBackoff" mapstructure:"initial_backoff"`
	MaxBackoff        time.Duration `json:"maxBackoff" mapstructure:"max_backoff"`
}

// DefaultConfig returns the default rate limit configuration.
// The Torn API allows 100 requests per minute per key.
func DefaultConfig() Config {
	return Config{
		RequestsPerSecond: 1.5,
		Burst:             5,
		MaxRetries:        3,
		InitialBackoff:    250 * time.Millisecond,
		MaxBackoff:        30 * time.Second,
	}
}

// WithOverrides returns the default config with the given overrides applied
func WithOverrides(overrides PartialConfig) Config {
	cfg := DefaultConfig()
	if overrides.RequestsPerSecond != nil {
		cfg.RequestsPerSecond = *overrides.RequestsPerSecond
	}
	if overrides.Burst != nil {
		cfg.Burst = *overrides.Burst
	}
	if overrides.MaxRetries != nil {
		cfg.MaxRetries = *overrides.MaxRetries
	}
	if overrides.InitialBackoff != nil {
		cfg.InitialBackoff = *overrides.InitialBackoff
	}
	if overrides.MaxBackoff != nil {
		cfg.MaxBackoff = *overrides.MaxBackoff
	}
	return cfg
}

// PartialConfig allows partial configuration overrides
type PartialConfig struct {
	RequestsPerSecond *float64
	Burst             *int
	MaxRetries        *int
	InitialBackoff    *time.Duration
	MaxBackoff        *time.Duration
}

// RateLimiter paces requests to one upstream with a token bucket
type RateLimiter struct {
	limiter *rate.Limiter
}

// NewRateLimiter creates a new rate limiter with the given config.
// A non-positive rate disables limiting.
func NewRateLimiter(config Config) *RateLimiter {
	limit := rate.Inf
	if config.RequestsPerSecond > 0 {
		limit = rate.Limit(config.RequestsPerSecond)
	}
	burst := config.Burst
	if burst < 1 {
		burst = 1
	}
	return &RateLimiter{limiter: rate.NewLimiter(limit, burst)}
}

// Throttle waits until a request may be made or ctx is done
func (r *RateLimiter) Throttle(ctx context.Context) error {
	return r.limiter.Wait(ctx)
}
