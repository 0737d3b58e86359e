package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/scolli03/rwmarket/internal/http/ratelimit"
	"github.com/scolli03/rwmarket/internal/metrics"
	"github.com/scolli03/rwmarket/internal/types"
)

// DefaultUserAgent is sent when no user agent is configured
const DefaultUserAgent = "RWMarket/1.0"

// maxBodyBytes caps how much of an upstream response is read
const maxBodyBytes = 16 << 20

var tracer = otel.Tracer("github.com/scolli03/rwmarket/internal/http")

// Client is an HTTP client with rate limiting and retry logic
type Client struct {
	httpClient  *http.Client
	rateLimiter *ratelimit.RateLimiter
	config      ratelimit.Config
	source      string
	userAgent   string
	metrics     *metrics.Recorder
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithUserAgent sets the User-Agent header sent on every request
func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}

// NewClient creates a new HTTP client for the named upstream source
func NewClient(source string, config ratelimit.Config, opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		rateLimiter: ratelimit.NewRateLimiter(config),
		config:      config,
		source:      source,
		userAgent:   DefaultUserAgent,
		metrics:     metrics.NewRecorder(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewClientDefault creates a new HTTP client with default rate limiting
func NewClientDefault(source string) *Client {
	return NewClient(source, ratelimit.DefaultConfig())
}

// Source returns the upstream name used in metrics and errors
func (c *Client) Source() string {
	return c.source
}

// GetConfig returns the current rate limit config
func (c *Client) GetConfig() ratelimit.Config {
	return c.config
}

// Get performs a GET request with rate limiting and retry logic and
// returns the response body. Non-2xx responses that are not retryable
// fail immediately with a *types.TransportError.
func (c *Client) Get(ctx context.Context, url string, header http.Header) ([]byte, error) {
	ctx, span := tracer.Start(ctx, c.source+".get")
	defer span.End()
	span.SetAttributes(attribute.String("http.url", url))

	body, status, err := c.do(ctx, url, header)
	span.SetAttributes(attribute.Int("http.status_code", status))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return body, nil
}

// GetJSON performs a GET request and decodes the JSON body into out
func (c *Client) GetJSON(ctx context.Context, url string, header http.Header, out any) error {
	body, err := c.Get(ctx, url, header)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return &types.TransportError{Op: c.source + " decode", URL: url, Err: err}
	}
	return nil
}

func (c *Client) do(ctx context.Context, url string, header http.Header) ([]byte, int, error) {
	var lastStatus int
	var lastErr error

	for attempt := 0; attempt <= c.config.MaxRetries; attempt++ {
		if attempt > 0 {
			c.metrics.RecordRetry(c.source)
		}

		if err := c.rateLimiter.Throttle(ctx); err != nil {
			return nil, lastStatus, c.fail(url, lastStatus, fmt.Errorf("rate limiter: %w", err))
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, 0, c.fail(url, 0, err)
		}
		for k, vs := range header {
			for _, v := range vs {
				req.Header.Add(k, v)
			}
		}
		req.Header.Set("User-Agent", c.userAgent)
		req.Header.Set("Accept", "application/json")

		start := time.Now()
		resp, err := c.httpClient.Do(req)
		if err != nil {
			c.metrics.RecordUpstream(c.source, "error", time.Since(start))
			lastErr = err
			if ctx.Err() != nil || attempt == c.config.MaxRetries {
				return nil, 0, c.fail(url, 0, lastErr)
			}
			c.backoff(ctx, url, attempt, ratelimit.CalculateBackoff(attempt, c.config))
			continue
		}

		lastStatus = resp.StatusCode
		body, readErr := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
		resp.Body.Close()
		c.metrics.RecordUpstream(c.source, strconv.Itoa(resp.StatusCode), time.Since(start))

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			if readErr != nil {
				return nil, lastStatus, c.fail(url, lastStatus, fmt.Errorf("read body: %w", readErr))
			}
			return body, lastStatus, nil
		}

		lastErr = fmt.Errorf("unexpected status %d", resp.StatusCode)
		if !ratelimit.IsRetryableStatus(resp.StatusCode) || attempt == c.config.MaxRetries {
			return body, lastStatus, c.fail(url, lastStatus, lastErr)
		}

		var wait time.Duration
		if resp.StatusCode == http.StatusTooManyRequests {
			wait = ratelimit.CalculateRateLimitBackoff(attempt, c.config, resp.Header.Get("Retry-After"))
		} else {
			wait = ratelimit.CalculateBackoff(attempt, c.config)
		}
		c.backoff(ctx, url, attempt, wait)
	}

	return nil, lastStatus, c.fail(url, lastStatus, lastErr)
}

func (c *Client) backoff(ctx context.Context, url string, attempt int, wait time.Duration) {
	log.Debug().
		Str("source", c.source).
		Str("url", url).
		Int("attempt", attempt+1).
		Dur("backoff", wait).
		Msg("Retrying upstream request")
	// A cancelled context surfaces on the next Throttle call.
	_ = ratelimit.Sleep(ctx, wait)
}

func (c *Client) fail(url string, status int, err error) error {
	if err == nil {
		err = errors.New("request failed")
	}
	return &types.TransportError{Op: c.source + " GET", URL: url, Status: status, Err: err}
}
