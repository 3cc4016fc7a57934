package core

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"

	"github.com/Sahilcoder4/greenroute-repo/pkg/monitoring"
	"github.com/Sahilcoder4/greenroute-repo/pkg/tracing"
)

// DefaultUserAgent identifies outbound requests; Nominatim rejects anonymous clients
const DefaultUserAgent = "GreenRoute/0.1 (+https://github.com/Sahilcoder4/greenroute-repo)"

// RetryOptions configures retry behavior for outbound requests
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}

var DefaultRetryOptions = RetryOptions{
	MaxAttempts:  3,
	InitialDelay: 500 * time.Millisecond,
	MaxDelay:     10 * time.Second,
	Multiplier:   2.0,
}

// NoRetry performs a single attempt
var NoRetry = RetryOptions{MaxAttempts: 1}

// RequestFactory builds a fresh request for each attempt, so bodies can be replayed
type RequestFactory func(ctx context.Context) (*http.Request, error)

// Client performs rate limited, retried, traced and metered upstream calls
type Client struct {
	HTTP      *http.Client
	UserAgent string

	mu       sync.RWMutex
	limiters map[string]*rate.Limiter
}

// NewClient creates a client with connection pooling and the given timeout
func NewClient(timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		HTTP: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
				TLSHandshakeTimeout: 10 * time.Second,
			},
		},
		UserAgent: DefaultUserAgent,
		limiters:  make(map[string]*rate.Limiter),
	}
}

// SetRateLimit installs a limiter for service; rps <= 0 removes it
func (c *Client) SetRateLimit(service string, rps float64, burst int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if rps <= 0 {
		delete(c.limiters, service)
		return
	}
	if burst < 1 {
		burst = 1
	}
	c.limiters[service] = rate.NewLimiter(rate.Limit(rps), burst)
}

func (c *Client) limiter(service string) *rate.Limiter {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.limiters[service]
}

func (c *Client) waitForRateLimit(ctx context.Context, service string) error {
	l := c.limiter(service)
	if l == nil || l.Allow() {
		return nil
	}

	start := time.Now()
	tracing.AddEvent(ctx, "rate_limit_wait",
		trace.WithAttributes(attribute.String(tracing.AttrRateLimitService, service)))

	err := l.Wait(ctx)

	wait := time.Since(start)
	monitoring.RecordRateLimitWait(service, wait)
	tracing.SetAttributes(ctx,
		attribute.String(tracing.AttrRateLimitService, service),
		attribute.Int64(tracing.AttrRateLimitWaitMs, wait.Milliseconds()),
	)
	return err
}

// Do executes the request built by factory with retries and exponential
// backoff. Transport errors, 429 and 5xx are retried; other non-200
// statuses fail immediately. The caller owns the returned body.
func (c *Client) Do(ctx context.Context, service, operation string, factory RequestFactory, opts RetryOptions) (*http.Response, error) {
	if opts.MaxAttempts < 1 {
		opts.MaxAttempts = 1
	}

	ctx, span := tracing.StartSpan(ctx, fmt.Sprintf("%s.%s", service, operation),
		trace.WithAttributes(
			attribute.String(tracing.AttrServiceName, service),
			attribute.String(tracing.AttrServiceOperation, operation),
			attribute.Int("http.retry.max_attempts", opts.MaxAttempts),
		),
	)
	defer span.End()

	logger := slog.Default().With("service", service, "operation", operation)
	start := time.Now()
	delay := opts.InitialDelay
	var lastErr error

	for attempt := 0; attempt < opts.MaxAttempts; attempt++ {
		if attempt > 0 {
			tracing.AddEvent(ctx, "retry_attempt",
				trace.WithAttributes(
					attribute.Int("attempt", attempt+1),
					attribute.Int64("delay_ms", delay.Milliseconds()),
				),
			)
			logger.Info("retrying request",
				"attempt", attempt+1,
				"max_attempts", opts.MaxAttempts,
				"delay", delay,
				"last_error", lastErr,
			)

			select {
			case <-time.After(delay):
			case <-ctx.Done():
				span.SetStatus(codes.Error, "request cancelled")
				monitoring.RecordExternalServiceRequest(service, operation, time.Since(start), false)
				return nil, ctx.Err()
			}

			delay = time.Duration(float64(delay) * opts.Multiplier)
			if opts.MaxDelay > 0 && delay > opts.MaxDelay {
				delay = opts.MaxDelay
			}
		}

		if err := c.waitForRateLimit(ctx, service); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "rate limit wait aborted")
			monitoring.RecordExternalServiceRequest(service, operation, time.Since(start), false)
			return nil, err
		}

		req, err := factory(ctx)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "request creation failed")
			return nil, fmt.Errorf("create %s request: %w", service, err)
		}
		if req.Header.Get("User-Agent") == "" {
			req.Header.Set("User-Agent", c.UserAgent)
		}

		resp, err := c.HTTP.Do(req)
		if err == nil && resp.StatusCode == http.StatusOK {
			span.SetAttributes(
				attribute.String(tracing.AttrServiceURL, req.URL.Redacted()),
				attribute.Int(tracing.AttrHTTPStatusCode, resp.StatusCode),
				attribute.Int("http.retry.attempts", attempt+1),
			)
			span.SetStatus(codes.Ok, "")
			monitoring.RecordExternalServiceRequest(service, operation, time.Since(start), true)
			logger.Debug("request successful", "status", resp.StatusCode, "attempts", attempt+1)
			return resp, nil
		}

		if err != nil {
			if ctx.Err() != nil {
				span.SetStatus(codes.Error, "request cancelled")
				monitoring.RecordExternalServiceRequest(service, operation, time.Since(start), false)
				return nil, ctx.Err()
			}
			lastErr = NewError(ErrNetworkError, fmt.Sprintf("%s request failed: %v", service, err))
			logger.Warn("request failed", "error", err, "attempt", attempt+1)
			continue
		}

		resp.Body.Close()
		lastErr = ServiceError(service, resp.StatusCode, fmt.Sprintf("HTTP status %d", resp.StatusCode))
		logger.Warn("request returned error status", "status", resp.StatusCode, "attempt", attempt+1)
		if !retryable(resp.StatusCode) {
			break
		}
	}

	span.RecordError(lastErr)
	span.SetStatus(codes.Error, "request failed")
	monitoring.RecordExternalServiceRequest(service, operation, time.Since(start), false)
	return nil, lastErr
}

func retryable(status int) bool {
	return status == http.StatusTooManyRequests || status >= 500
}
