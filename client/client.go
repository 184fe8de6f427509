package client

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/hashicorp/go-retryablehttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/GriffinCanCode/tinify/apierror"
	"github.com/GriffinCanCode/tinify/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/tinify/internal/infrastructure/resilience"
	"github.com/GriffinCanCode/tinify/internal/logging"
	"github.com/GriffinCanCode/tinify/internal/shared/id"
)

const (
	// APIEndpoint is the service base URL.
	APIEndpoint = "https://api.tinify.com"

	// Version is the client library version reported in the User-Agent.
	Version = "1.0.0"

	// RetryCount is the number of extra attempts per logical call, shared
	// by timeouts, connection faults and 5xx responses.
	RetryCount = 1

	// DefaultTimeout bounds a single attempt.
	DefaultTimeout = 60 * time.Second

	authUser = "api"
)

// UserAgent identifies the library and runtime.
var UserAgent = fmt.Sprintf("Tinify/%s Go/%s (%s/%s)",
	Version, strings.TrimPrefix(runtime.Version(), "go"), runtime.GOOS, runtime.GOARCH)

// Options configures a Client.
type Options struct {
	Key           string
	AppIdentifier string
	Proxy         string

	// Endpoint overrides APIEndpoint.
	Endpoint string
	// Timeout bounds a single attempt. Zero means DefaultTimeout.
	Timeout time.Duration
	// RetryWaitMin and RetryWaitMax bound the pause before a retry.
	// Zero RetryWaitMax retries immediately.
	RetryWaitMin time.Duration
	RetryWaitMax time.Duration
	// RateLimit caps requests per second. Zero is unlimited.
	RateLimit float64

	// Counter receives Compression-Count values. Nil allocates one.
	Counter *CompressionCounter
	Logger  *zap.Logger
	Metrics *monitoring.Metrics
	// Breaker guards whole calls. Nil never rejects.
	Breaker *resilience.Breaker

	// RoundTripper replaces the pooled base transport. With a Proxy set it
	// must be an *http.Transport, otherwise New fails.
	RoundTripper http.RoundTripper
}

// Client executes authenticated calls against the service. A Client is
// immutable after New and safe for concurrent use.
type Client struct {
	id      id.ClientID
	resty   *resty.Client
	limiter *rate.Limiter
	counter *CompressionCounter
	logger  *zap.Logger
	metrics *monitoring.Metrics
	breaker *resilience.Breaker
	waitMin time.Duration
	waitMax time.Duration
}

// Response is a successful exchange.
type Response struct {
	Status int
	Header http.Header
	Body   []byte
}

// Location returns the Location header.
func (r *Response) Location() string {
	return r.Header.Get("Location")
}

// New creates a Client. A malformed proxy fails here with a connection
// error rather than on first use.
func New(opts Options) (*Client, error) {
	base := opts.RoundTripper
	if base == nil {
		retryClient := retryablehttp.NewClient()
		retryClient.Logger = nil
		base = retryClient.HTTPClient.Transport
	}

	if opts.Proxy != "" {
		proxyURL, err := parseProxy(opts.Proxy)
		if err != nil {
			return nil, apierror.Connection("Invalid proxy: "+err.Error(), err)
		}
		t, ok := base.(*http.Transport)
		if !ok {
			return nil, apierror.Connection("Invalid proxy: custom round tripper cannot be proxied", nil)
		}
		t = t.Clone()
		t.Proxy = http.ProxyURL(proxyURL)
		base = t
	}

	endpoint := opts.Endpoint
	if endpoint == "" {
		endpoint = APIEndpoint
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	logger := logging.OrNop(opts.Logger).Named("tinify")
	clientID := id.NewClientID()

	restyClient := resty.New()
	restyClient.
		SetTransport(base).
		SetBaseURL(strings.TrimRight(endpoint, "/")).
		SetTimeout(timeout).
		SetRetryCount(0).
		SetAllowGetMethodPayload(true).
		SetBasicAuth(authUser, opts.Key).
		SetHeader("User-Agent", userAgent(opts.AppIdentifier)).
		SetLogger(logger.Sugar())

	counter := opts.Counter
	if counter == nil {
		counter = &CompressionCounter{}
	}

	c := &Client{
		id:      clientID,
		resty:   restyClient,
		limiter: newLimiter(opts.RateLimit),
		counter: counter,
		logger:  logger.With(zap.String("client_id", clientID.String())),
		metrics: opts.Metrics,
		breaker: opts.Breaker,
		waitMin: opts.RetryWaitMin,
		waitMax: opts.RetryWaitMax,
	}
	c.logger.Debug("client created",
		zap.String("endpoint", endpoint),
		zap.Bool("proxy", opts.Proxy != ""),
		zap.Duration("timeout", timeout))
	return c, nil
}

// CompressionCounter returns the counter updated by this client.
func (c *Client) CompressionCounter() *CompressionCounter {
	return c.counter
}

// Execute performs one logical call. body may be nil, a []byte upload, or
// a map that is sent as JSON (an empty map sends no body).
//
// Timeouts, connection faults and 5xx responses are retried once; the last
// failure is returned as an *apierror.Error. An open Breaker fails the call
// with a connection error before anything is sent.
func (c *Client) Execute(ctx context.Context, method, path string, body any, header http.Header) (*Response, error) {
	payload, contentType, err := encodeBody(body)
	if err != nil {
		return nil, apierror.New(apierror.KindClient, "Error while encoding request: "+err.Error(), "EncodeError", 0)
	}

	reqID := id.NewRequestID()
	log := c.logger.With(
		zap.String("request_id", reqID.String()),
		zap.String("method", method),
		zap.String("path", path))

	start := time.Now()
	defer func() { c.metrics.RecordCall(method, time.Since(start)) }()

	if err := c.breaker.Allow(); err != nil {
		return nil, c.fail(log, apierror.Connection("Error while connecting: "+err.Error(), err))
	}
	resp, apiErr := c.attempts(ctx, log, method, path, payload, contentType, header)
	c.breaker.Done(outcome(ctx, apiErr))
	if apiErr != nil {
		return nil, c.fail(log, apiErr)
	}
	return resp, nil
}

func (c *Client) attempts(ctx context.Context, log *zap.Logger, method, path string, payload []byte, contentType string, header http.Header) (*Response, *apierror.Error) {
	var (
		lastErr  *apierror.Error
		lastResp *http.Response
	)
	for attempt := 0; attempt <= RetryCount; attempt++ {
		if attempt > 0 {
			if err := c.pause(ctx, attempt, lastResp); err != nil {
				return nil, abortError(err)
			}
		}
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, abortError(err)
		}

		attemptStart := time.Now()
		resp, err := c.request(ctx, payload, contentType, header).Execute(method, path)
		if err != nil {
			c.metrics.RecordAttempt(method, 0)
			if ctx.Err() != nil {
				return nil, abortError(ctx.Err())
			}
			lastErr, lastResp = transportError(err), nil
			log.Debug("attempt failed", zap.Int("attempt", attempt), zap.Error(err))
			if attempt < RetryCount {
				c.retry(log, reasonFor(err), attempt)
				continue
			}
			break
		}

		status := resp.StatusCode()
		c.metrics.RecordAttempt(method, status)
		log.Debug("attempt completed",
			zap.Int("attempt", attempt),
			zap.Int("status", status),
			zap.Duration("duration", time.Since(attemptStart)))

		if status >= 200 && status <= 299 {
			c.observeCompressionCount(resp.Header())
			return &Response{Status: status, Header: resp.Header(), Body: resp.Body()}, nil
		}

		lastErr, lastResp = decodeError(status, resp.Body()), resp.RawResponse
		if status >= 500 && attempt < RetryCount {
			c.retry(log, "server", attempt)
			continue
		}
		break
	}
	return nil, lastErr
}

// outcome classifies a finished call for the breaker. Client and account
// errors mean the service answered; a cancelled context says nothing.
func outcome(ctx context.Context, err *apierror.Error) resilience.Outcome {
	switch {
	case err == nil:
		return resilience.Success
	case ctx.Err() != nil:
		return resilience.Ignored
	case err.Kind() == apierror.KindServer, err.Kind() == apierror.KindConnection:
		return resilience.Failure
	default:
		return resilience.Success
	}
}

func (c *Client) request(ctx context.Context, payload []byte, contentType string, header http.Header) *resty.Request {
	req := c.resty.R().SetContext(ctx)
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	if payload != nil {
		req.SetHeader("Content-Type", contentType)
		req.SetBody(payload)
	}
	return req
}

func (c *Client) pause(ctx context.Context, attempt int, resp *http.Response) error {
	if c.waitMax <= 0 {
		return nil
	}
	wait := retryablehttp.DefaultBackoff(c.waitMin, c.waitMax, attempt-1, resp)
	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (c *Client) retry(log *zap.Logger, reason string, attempt int) {
	c.metrics.RecordRetry(reason)
	log.Warn("retrying request", zap.String("reason", reason), zap.Int("attempt", attempt+1))
}

func (c *Client) fail(log *zap.Logger, err *apierror.Error) *apierror.Error {
	c.metrics.RecordError(err.Kind().String())
	log.Warn("request failed",
		zap.String("kind", err.Kind().String()),
		zap.Int("status", err.Status()),
		zap.String("code", err.Code()),
		zap.String("message", err.Message()))
	return err
}

func (c *Client) observeCompressionCount(h http.Header) {
	raw := h.Get("Compression-Count")
	if raw == "" {
		return
	}
	n, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return
	}
	c.counter.Store(n)
	c.metrics.SetCompressionCount(n)
}

func userAgent(appIdentifier string) string {
	if appIdentifier == "" {
		return UserAgent
	}
	return UserAgent + " " + appIdentifier
}

func newLimiter(rps float64) *rate.Limiter {
	if rps <= 0 {
		return rate.NewLimiter(rate.Inf, 0)
	}
	burst := int(rps)
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(rps), burst)
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func reasonFor(err error) string {
	if isTimeout(err) {
		return "timeout"
	}
	return "connection"
}

func transportError(err error) *apierror.Error {
	if isTimeout(err) {
		return apierror.Connection("Timeout while connecting", err)
	}
	return apierror.Connection("Error while connecting: "+err.Error(), err)
}

func abortError(err error) *apierror.Error {
	return apierror.Connection("Error while connecting: "+err.Error(), err)
}
