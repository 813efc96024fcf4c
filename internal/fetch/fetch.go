// Package fetch provides HTTP page fetching with bounded retries and URL verification.
// This package centralizes HTTP access used by website resolution and site crawling.
package fetch

import (
	"context"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	// DefaultPageTimeout bounds a single page GET attempt.
	DefaultPageTimeout = 15 * time.Second
	// DefaultVerifyTimeout bounds a single verification HEAD attempt.
	DefaultVerifyTimeout = 10 * time.Second
	// DefaultMaxRetries is the number of retries after the first attempt.
	DefaultMaxRetries = 3
	// DefaultBackoffFactor is the delay before the first retry; it doubles per retry.
	DefaultBackoffFactor = 1 * time.Second
	// DefaultMaxBackoff caps any single retry delay, including Retry-After.
	DefaultMaxBackoff = 30 * time.Second
	// DefaultMaxBodyBytes caps how much of a response body is read.
	DefaultMaxBodyBytes = 5 * 1024 * 1024
)

// DefaultUserAgent is the user agent string for HTTP requests.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

const acceptHeader = "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8"

// retryableStatuses are retried with backoff; every other status is final.
var retryableStatuses = map[int]bool{
	http.StatusTooManyRequests:     true,
	http.StatusInternalServerError: true,
	http.StatusBadGateway:          true,
	http.StatusServiceUnavailable:  true,
	http.StatusGatewayTimeout:      true,
}

// IsRetryableStatus reports whether an HTTP status triggers an automatic retry.
func IsRetryableStatus(code int) bool {
	return retryableStatuses[code]
}

// Result holds the response of a completed fetch.
type Result struct {
	URL         string
	FinalURL    string // after redirects
	StatusCode  int
	HTML        string // body decoded to UTF-8; empty for HEAD
	ContentType string
	MIME        string // sniffed from the body
	IsText      bool   // body is some text/* flavour worth mining
	Attempts    int
}

// Options configures the fetch behavior.
type Options struct {
	PageTimeout   time.Duration
	VerifyTimeout time.Duration
	UserAgent     string
	Headers       map[string]string
	MaxRetries    int
	// VerifyRetries bounds retries of the verification HEAD; zero means a single attempt.
	VerifyRetries int
	BackoffFactor time.Duration
	MaxBackoff    time.Duration
	MaxBodyBytes  int64
}

// DefaultOptions returns sensible defaults for fetching.
func DefaultOptions() *Options {
	return &Options{
		PageTimeout:   DefaultPageTimeout,
		VerifyTimeout: DefaultVerifyTimeout,
		UserAgent:     DefaultUserAgent,
		MaxRetries:    DefaultMaxRetries,
		BackoffFactor: DefaultBackoffFactor,
		MaxBackoff:    DefaultMaxBackoff,
		MaxBodyBytes:  DefaultMaxBodyBytes,
	}
}

// normalize fills zero values with defaults.
func (o *Options) normalize() {
	defaults := DefaultOptions()
	if o.PageTimeout <= 0 {
		o.PageTimeout = defaults.PageTimeout
	}
	if o.VerifyTimeout <= 0 {
		o.VerifyTimeout = defaults.VerifyTimeout
	}
	if o.UserAgent == "" {
		o.UserAgent = defaults.UserAgent
	}
	if o.MaxRetries < 0 {
		o.MaxRetries = 0
	}
	if o.VerifyRetries < 0 {
		o.VerifyRetries = 0
	}
	if o.BackoffFactor < 0 {
		o.BackoffFactor = 0
	}
	if o.MaxBackoff <= 0 {
		o.MaxBackoff = defaults.MaxBackoff
	}
	if o.MaxBodyBytes <= 0 {
		o.MaxBodyBytes = defaults.MaxBodyBytes
	}
}

// Fetcher performs GET and HEAD requests, retrying transient HTTP statuses.
// Transport errors (timeouts, refused connections, DNS failures) are never retried.
type Fetcher struct {
	client     *http.Client
	noRedirect *http.Client
	opts       Options
	logger     *zap.Logger
	sleep      func(ctx context.Context, d time.Duration) error
}

// New creates a Fetcher with its own HTTP client.
func New(opts *Options, logger *zap.Logger) *Fetcher {
	return NewWithClient(&http.Client{}, opts, logger)
}

// NewWithClient creates a Fetcher around an existing client. Per-attempt timeouts are applied
// through the request context, so the client's own Timeout may be left unset.
func NewWithClient(client *http.Client, opts *Options, logger *zap.Logger) *Fetcher {
	if opts == nil {
		opts = DefaultOptions()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	o := *opts
	o.normalize()

	noRedirect := *client
	noRedirect.CheckRedirect = func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}

	return &Fetcher{
		client:     client,
		noRedirect: &noRedirect,
		opts:       o,
		logger:     logger,
		sleep:      sleepContext,
	}
}

// Options returns a copy of the effective options.
func (f *Fetcher) Options() Options {
	return f.opts
}

// Get fetches a page with the page timeout, following redirects.
// Any final status is returned as a Result; only exhausted retries and transport
// failures produce an error.
func (f *Fetcher) Get(ctx context.Context, urlStr string) (*Result, error) {
	return f.Fetch(ctx, http.MethodGet, urlStr, f.opts.PageTimeout)
}

// Verify checks that a URL answers a HEAD request with exactly HTTP 200.
// Redirects are not followed, so 3xx counts as failure. Transient statuses are
// retried only VerifyRetries times.
func (f *Fetcher) Verify(ctx context.Context, urlStr string) error {
	result, err := f.fetch(ctx, http.MethodHead, urlStr, f.opts.VerifyTimeout, f.opts.VerifyRetries)
	if err != nil {
		return err
	}
	if result.StatusCode != http.StatusOK {
		return &Error{
			URL:        urlStr,
			Kind:       KindStatus,
			StatusCode: result.StatusCode,
			Message:    fmt.Sprintf("HTTP status %d", result.StatusCode),
		}
	}
	return nil
}

// Fetch issues one logical request. Statuses 429/500/502/503/504 are retried up to
// MaxRetries times with exponential backoff; each attempt is bounded by timeout.
// HEAD requests do not follow redirects.
func (f *Fetcher) Fetch(ctx context.Context, method, urlStr string, timeout time.Duration) (*Result, error) {
	return f.fetch(ctx, method, urlStr, timeout, f.opts.MaxRetries)
}

func (f *Fetcher) fetch(ctx context.Context, method, urlStr string, timeout time.Duration, maxRetries int) (*Result, error) {
	parsedURL, err := url.Parse(urlStr)
	if err != nil || parsedURL.Scheme == "" || parsedURL.Host == "" {
		return nil, &Error{
			URL:     urlStr,
			Kind:    KindInvalidURL,
			Message: "invalid URL",
			Cause:   err,
		}
	}

	client := f.client
	if method == http.MethodHead {
		client = f.noRedirect
	}

	for attempt := 0; ; attempt++ {
		result, retryAfter, err := f.attempt(ctx, client, method, urlStr, timeout)
		if err != nil {
			return nil, err
		}
		result.Attempts = attempt + 1

		if !IsRetryableStatus(result.StatusCode) {
			return result, nil
		}

		if attempt >= maxRetries {
			return result, &Error{
				URL:        urlStr,
				Kind:       KindRetriesExhausted,
				StatusCode: result.StatusCode,
				Message:    fmt.Sprintf("giving up after %d attempts, last status %d", attempt+1, result.StatusCode),
			}
		}

		delay := f.backoff(attempt+1, retryAfter)
		f.logger.Debug("retrying request",
			zap.String("url", urlStr),
			zap.String("method", method),
			zap.Int("status", result.StatusCode),
			zap.Int("retry", attempt+1),
			zap.Duration("delay", delay))

		if err := f.sleep(ctx, delay); err != nil {
			return nil, &Error{
				URL:     urlStr,
				Kind:    KindCanceled,
				Message: "canceled during retry backoff",
				Cause:   err,
			}
		}
	}
}

// attempt performs a single HTTP round trip under its own timeout.
func (f *Fetcher) attempt(ctx context.Context, client *http.Client, method, urlStr string, timeout time.Duration) (*Result, time.Duration, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(attemptCtx, method, urlStr, nil)
	if err != nil {
		return nil, 0, &Error{
			URL:     urlStr,
			Kind:    KindInvalidURL,
			Message: "failed to create request",
			Cause:   err,
		}
	}

	req.Header.Set("User-Agent", f.opts.UserAgent)
	req.Header.Set("Accept", acceptHeader)
	for key, value := range f.opts.Headers {
		req.Header.Set(key, value)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, 0, &Error{
			URL:     urlStr,
			Kind:    classifyTransportError(ctx, err),
			Message: "HTTP request failed",
			Cause:   err,
		}
	}
	defer func() { _ = resp.Body.Close() }()

	bodyBytes, err := io.ReadAll(io.LimitReader(resp.Body, f.opts.MaxBodyBytes))
	if err != nil {
		return nil, 0, &Error{
			URL:        urlStr,
			Kind:       classifyTransportError(ctx, err),
			StatusCode: resp.StatusCode,
			Message:    "failed to read response body",
			Cause:      err,
		}
	}

	result := &Result{
		URL:         urlStr,
		FinalURL:    resp.Request.URL.String(),
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
	}
	if method != http.MethodHead {
		result.HTML, result.MIME, result.IsText = decodeBody(bodyBytes, result.ContentType)
	}

	return result, parseRetryAfter(resp.Header.Get("Retry-After")), nil
}

// backoff returns the delay before the given retry (1-based).
func (f *Fetcher) backoff(retry int, retryAfter time.Duration) time.Duration {
	if retryAfter > 0 {
		return min(retryAfter, f.opts.MaxBackoff)
	}
	delay := float64(f.opts.BackoffFactor) * math.Pow(2, float64(retry-1))
	if delay > float64(f.opts.MaxBackoff) {
		return f.opts.MaxBackoff
	}
	return time.Duration(delay)
}

// parseRetryAfter understands the delay-seconds form of Retry-After.
func parseRetryAfter(value string) time.Duration {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0
	}
	seconds, err := strconv.Atoi(value)
	if err != nil || seconds <= 0 {
		return 0
	}
	return time.Duration(seconds) * time.Second
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
