package provider

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"terminalcoin/internal/apierr"
	"terminalcoin/internal/metrics"
	"terminalcoin/pkg/logger"

	"go.opentelemetry.io/otel/trace"
)

// HTTPConfig configures a resilient client for one upstream base URL.
// All values are supplied by the composition root; the client performs
// no environment reads.
type HTTPConfig struct {
	BaseURL    string
	Name       string // short upstream label for logs and metrics
	UserAgent  string
	Timeout    time.Duration
	MaxRetries int // total attempts, not additional retries
	RetryDelay time.Duration
}

// Response is the raw result of a successful exchange, with enough
// detail for the caller to log attempt counts and latency.
type Response struct {
	StatusCode int
	Body       []byte
	Attempts   int
	Elapsed    time.Duration
}

// HTTPClient wraps one upstream host with rate limiting, timeouts,
// retry-with-backoff, and the typed error taxonomy. Transient failures
// (timeout, connection error, 429, 5xx) are retried with exponential
// backoff; a 429 Retry-After header overrides the computed delay.
type HTTPClient struct {
	client     *http.Client
	baseURL    string
	name       string
	userAgent  string
	maxRetries int
	retryDelay time.Duration
	limiter    *RateLimiter
	tracer     trace.Tracer
	log        *logger.Logger
	metrics    *metrics.Metrics
}

func NewHTTPClient(cfg HTTPConfig, limiter *RateLimiter, tracer trace.Tracer, log *logger.Logger, m *metrics.Metrics) (*HTTPClient, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, apierr.New(apierr.KindConfiguration, "httpclient.new", "base URL is required")
	}
	if _, err := url.Parse(cfg.BaseURL); err != nil {
		return nil, apierr.New(apierr.KindConfiguration, "httpclient.new", "invalid base URL %q: %v", cfg.BaseURL, err)
	}
	if cfg.Timeout <= 0 {
		return nil, apierr.New(apierr.KindConfiguration, "httpclient.new", "timeout must be positive, got %s", cfg.Timeout)
	}
	if cfg.MaxRetries < 1 {
		return nil, apierr.New(apierr.KindConfiguration, "httpclient.new", "max retries must be at least 1, got %d", cfg.MaxRetries)
	}
	if cfg.RetryDelay <= 0 {
		return nil, apierr.New(apierr.KindConfiguration, "httpclient.new", "retry delay must be positive, got %s", cfg.RetryDelay)
	}
	if log == nil {
		log = logger.Nop()
	}
	name := cfg.Name
	if name == "" {
		name = "upstream"
	}
	return &HTTPClient{
		client:     &http.Client{Timeout: cfg.Timeout},
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		name:       name,
		userAgent:  cfg.UserAgent,
		maxRetries: cfg.MaxRetries,
		retryDelay: cfg.RetryDelay,
		limiter:    limiter,
		tracer:     tracer,
		log:        log,
		metrics:    m,
	}, nil
}

// Get performs a rate-limited GET with retries and returns the raw
// body. Terminal failures carry the last observed cause, status code
// and attempt count.
func (c *HTTPClient) Get(ctx context.Context, path string, params url.Values) (*Response, error) {
	ctx, span := c.tracer.Start(ctx, c.name+".request")
	defer span.End()

	op := c.name + ".get"
	reqURL := c.baseURL + "/" + strings.TrimLeft(path, "/")
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	start := time.Now()
	defer func() {
		if c.metrics != nil {
			c.metrics.RequestDuration.WithLabelValues(c.name).Observe(time.Since(start).Seconds())
		}
	}()

	var (
		lastErr    error
		lastStatus int
		retryAfter time.Duration
	)

	for attempt := 1; attempt <= c.maxRetries; attempt++ {
		if attempt > 1 {
			delay := c.backoffDelay(attempt)
			if retryAfter > 0 {
				delay = retryAfter
				retryAfter = 0
			}
			if c.metrics != nil {
				c.metrics.RequestRetriesTotal.WithLabelValues(c.name).Inc()
			}
			c.log.Debugw("retrying upstream request",
				"upstream", c.name, "attempt", attempt, "delay", delay, "last_status", lastStatus)
			select {
			case <-ctx.Done():
				return nil, c.terminal(apierr.KindNetwork, op, lastStatus, attempt-1, start, ctx.Err())
			case <-time.After(delay):
			}
		}

		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return nil, c.terminal(apierr.KindNetwork, op, lastStatus, attempt-1, start, fmt.Errorf("rate limit wait: %w", err))
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return nil, c.terminal(apierr.KindValidation, op, 0, attempt, start, fmt.Errorf("build request: %w", err))
		}
		req.Header.Set("Accept", "application/json")
		if c.userAgent != "" {
			req.Header.Set("User-Agent", c.userAgent)
		}

		resp, err := c.client.Do(req)
		if err != nil {
			c.countAttempt("error")
			var dnsErr *net.DNSError
			if errors.As(err, &dnsErr) {
				// Host will not resolve on a retry either.
				return nil, c.terminal(apierr.KindNetwork, op, 0, attempt, start, err)
			}
			if ctx.Err() != nil {
				return nil, c.terminal(apierr.KindNetwork, op, 0, attempt, start, err)
			}
			lastErr = err
			lastStatus = 0
			c.log.Warnw("upstream request failed", "upstream", c.name, "attempt", attempt, "error", err)
			continue
		}

		body, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()

		switch {
		case resp.StatusCode >= 200 && resp.StatusCode < 300:
			if readErr != nil {
				c.countAttempt("error")
				lastErr = readErr
				lastStatus = resp.StatusCode
				continue
			}
			c.countAttempt("success")
			return &Response{
				StatusCode: resp.StatusCode,
				Body:       body,
				Attempts:   attempt,
				Elapsed:    time.Since(start),
			}, nil

		case resp.StatusCode == http.StatusTooManyRequests:
			c.countAttempt("throttled")
			lastStatus = resp.StatusCode
			lastErr = fmt.Errorf("upstream throttled: %s", strings.TrimSpace(string(body)))
			if d, ok := parseRetryAfter(resp.Header.Get("Retry-After"), time.Now()); ok {
				retryAfter = d
			}
			continue

		case resp.StatusCode >= 500:
			c.countAttempt("server_error")
			lastStatus = resp.StatusCode
			lastErr = fmt.Errorf("upstream error %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
			continue

		case resp.StatusCode == http.StatusNotFound:
			c.countAttempt("not_found")
			return nil, c.terminal(apierr.KindNotFound, op, resp.StatusCode, attempt, start,
				fmt.Errorf("resource not found: %s", path))

		default:
			// Remaining 4xx are the caller's fault; retrying cannot help.
			c.countAttempt("client_error")
			return nil, c.terminal(apierr.KindAPI, op, resp.StatusCode, attempt, start,
				fmt.Errorf("upstream rejected request: %s", strings.TrimSpace(string(body))))
		}
	}

	kind := apierr.KindNetwork
	if lastStatus == http.StatusTooManyRequests {
		kind = apierr.KindRateLimit
	}
	return nil, c.terminal(kind, op, lastStatus, c.maxRetries, start, lastErr)
}

// backoffDelay doubles the base delay per completed attempt:
// retryDelay, 2*retryDelay, 4*retryDelay, ...
func (c *HTTPClient) backoffDelay(attempt int) time.Duration {
	delay := c.retryDelay
	for i := 2; i < attempt; i++ {
		delay *= 2
	}
	return delay
}

func (c *HTTPClient) terminal(kind apierr.Kind, op string, status, attempts int, start time.Time, cause error) error {
	err := &apierr.Error{
		Kind:       kind,
		Op:         op,
		StatusCode: status,
		Attempts:   attempts,
		Elapsed:    time.Since(start),
		Err:        cause,
	}
	c.log.Warnw("upstream request terminal failure",
		"upstream", c.name, "kind", string(kind), "status", status, "attempts", attempts, "error", cause)
	return err
}

func (c *HTTPClient) countAttempt(outcome string) {
	if c.metrics != nil {
		c.metrics.RequestAttemptsTotal.WithLabelValues(c.name, outcome).Inc()
	}
}

// parseRetryAfter handles both forms the header allows: delay seconds
// and an HTTP date.
func parseRetryAfter(value string, now time.Time) (time.Duration, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, false
	}
	if secs, err := strconv.Atoi(value); err == nil {
		if secs < 0 {
			return 0, false
		}
		return time.Duration(secs) * time.Second, true
	}
	if at, err := http.ParseTime(value); err == nil {
		if d := at.Sub(now); d > 0 {
			return d, true
		}
	}
	return 0, false
}
