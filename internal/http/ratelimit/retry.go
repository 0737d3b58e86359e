package ratelimit

import (
	"context"
	"math"
	"math/rand"
	"strconv"
	"time"
)

// IsRetryableStatus checks if an HTTP status code is retryable
// Retryable: 429, 500-599
func IsRetryableStatus(status int) bool {
	return status == 429 || (status >= 500 && status < 600)
}

// CalculateBackoff calculates exponential backoff delay for a given attempt
// with 0-25% jitter
func CalculateBackoff(attempt int, config Config) time.Duration {
	return backoff(attempt, 2.0, config)
}

// CalculateRateLimitBackoff calculates backoff for HTTP 429 responses.
// A Retry-After header in seconds takes precedence.
func CalculateRateLimitBackoff(attempt int, config Config, retryAfter string) time.Duration {
	if retryAfter != "" {
		if seconds, err := strconv.Atoi(retryAfter); err == nil && seconds > 0 {
			jitter := time.Duration(rand.Float64() * float64(time.Second))
			return time.Duration(seconds)*time.Second + jitter
		}
	}
	return backoff(attempt, 3.0, config)
}

func backoff(attempt int, base float64, config Config) time.Duration {
	delay := float64(config.InitialBackoff) * math.Pow(base, float64(attempt))
	if config.MaxBackoff > 0 {
		delay = math.Min(delay, float64(config.MaxBackoff))
	}
	jitter := rand.Float64() * 0.25 * delay
	return time.Duration(delay + jitter)
}

// Sleep blocks for d or until ctx is done
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
