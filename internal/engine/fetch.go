package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/anatolykoptev/go-kit/strutil"
	"github.com/cenkalti/backoff/v5"
)

const maxResponseBytes = 16 << 20

// Request describes one logical HTTP call made through a Fetcher.
type Request struct {
	Method  string
	URL     string
	Headers map[string]string
	Body    []byte
	// Browser routes the request through the Chrome-fingerprinted client when one is configured.
	Browser bool
}

// Fetcher performs HTTP requests with per-attempt timeouts, per-host pacing
// and linear-backoff retries.
type Fetcher struct {
	client         *http.Client
	browser        *BrowserClient
	limiter        *HostLimiter
	maxAttempts    int
	step           time.Duration
	attemptTimeout time.Duration
}

// FetchOption configures a Fetcher.
type FetchOption func(*Fetcher)

// WithHTTPClient sets the plain HTTP client.
func WithHTTPClient(c *http.Client) FetchOption {
	return func(f *Fetcher) { f.client = c }
}

// WithBrowserClient enables routing of Request.Browser calls through bc.
func WithBrowserClient(bc *BrowserClient) FetchOption {
	return func(f *Fetcher) { f.browser = bc }
}

// WithHostLimiter sets the per-host pacing limiter.
func WithHostLimiter(l *HostLimiter) FetchOption {
	return func(f *Fetcher) { f.limiter = l }
}

// WithMaxAttempts sets the attempt budget per logical request.
func WithMaxAttempts(n int) FetchOption {
	return func(f *Fetcher) {
		if n > 0 {
			f.maxAttempts = n
		}
	}
}

// WithBackoffStep sets the linear backoff unit.
func WithBackoffStep(d time.Duration) FetchOption {
	return func(f *Fetcher) { f.step = d }
}

// WithAttemptTimeout bounds each individual attempt.
func WithAttemptTimeout(d time.Duration) FetchOption {
	return func(f *Fetcher) { f.attemptTimeout = d }
}

// NewFetcher creates a Fetcher. Defaults: 3 attempts, 600ms step, 8s per attempt.
func NewFetcher(opts ...FetchOption) *Fetcher {
	f := &Fetcher{
		client:         &http.Client{Timeout: 15 * time.Second},
		maxAttempts:    3,
		step:           600 * time.Millisecond,
		attemptTimeout: 8 * time.Second,
	}
	for _, o := range opts {
		o(f)
	}
	return f
}

// FetcherFromConfig translates engine configuration into fetcher options.
func FetcherFromConfig(c Config) []FetchOption {
	opts := []FetchOption{
		WithMaxAttempts(c.FetchMaxAttempts),
		WithBackoffStep(c.FetchBackoffStep),
		WithAttemptTimeout(c.FetchAttemptTimeout),
	}
	if c.HTTPClient != nil {
		opts = append(opts, WithHTTPClient(c.HTTPClient))
	}
	if c.BrowserClient != nil {
		opts = append(opts, WithBrowserClient(c.BrowserClient))
	}
	if c.YouTubeRPS > 0 {
		opts = append(opts, WithHostLimiter(NewHostLimiter(c.YouTubeRPS, 2)))
	}
	return opts
}

var defaultFetcher = NewFetcher(FetcherFromConfig(defaultConfig())...)

// DefaultFetcher returns the fetcher built from the current engine config.
func DefaultFetcher() *Fetcher { return defaultFetcher }

// Do executes req, retrying 429, 5xx and transport failures up to the attempt budget.
// Other 4xx responses end the call immediately. The returned error is a *FetchError.
func (f *Fetcher) Do(ctx context.Context, req Request) ([]byte, error) {
	if req.Method == "" {
		req.Method = http.MethodGet
	}
	attempts := 0
	lastStatus := 0

	op := func() ([]byte, error) {
		attempts++
		metrics.FetchAttempts.Add(1)
		if f.limiter != nil {
			if err := f.limiter.Wait(ctx, req.URL); err != nil {
				return nil, backoff.Permanent(err)
			}
		}
		body, status, err := f.attempt(ctx, req)
		lastStatus = status
		if err != nil {
			if errors.Is(err, ErrRateLimited) {
				metrics.FetchRateLimited.Add(1)
			}
			if ctx.Err() != nil || !isRetryable(err) {
				return nil, backoff.Permanent(err)
			}
			return nil, err
		}
		return body, nil
	}

	body, err := backoff.Retry(ctx, op,
		backoff.WithBackOff(&LinearBackOff{Step: f.step}),
		backoff.WithMaxTries(uint(f.maxAttempts)),
		backoff.WithNotify(func(err error, wait time.Duration) {
			slog.Debug("fetch retry",
				slog.String("url", req.URL),
				slog.Int("attempt", attempts),
				slog.Duration("wait", wait),
				slog.Any("error", err))
		}),
	)
	if err != nil {
		metrics.FetchErrors.Add(1)
		return nil, &FetchError{URL: req.URL, Status: lastStatus, Attempts: attempts, Err: err}
	}
	return body, nil
}

func (f *Fetcher) attempt(ctx context.Context, req Request) ([]byte, int, error) {
	actx := ctx
	if f.attemptTimeout > 0 {
		var cancel context.CancelFunc
		actx, cancel = context.WithTimeout(ctx, f.attemptTimeout)
		defer cancel()
	}

	if req.Browser && f.browser != nil {
		return f.browserAttempt(actx, req)
	}

	var body io.Reader
	if len(req.Body) > 0 {
		body = bytes.NewReader(req.Body)
	}
	httpReq, err := http.NewRequestWithContext(actx, req.Method, req.URL, body)
	if err != nil {
		return nil, 0, backoff.Permanent(fmt.Errorf("build request: %w", err))
	}
	if _, ok := req.Headers["user-agent"]; !ok {
		httpReq.Header.Set("User-Agent", RandomUserAgent())
	}
	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}

	resp, err := f.client.Do(httpReq)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("read body: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, resp.StatusCode, &statusError{StatusCode: resp.StatusCode, Snippet: snippet(data)}
	}
	return data, resp.StatusCode, nil
}

type browserResult struct {
	data   []byte
	status int
	err    error
}

// browserAttempt runs the stealth client call, which takes no context, and
// abandons it once actx is done.
func (f *Fetcher) browserAttempt(actx context.Context, req Request) ([]byte, int, error) {
	var body io.Reader
	if len(req.Body) > 0 {
		body = bytes.NewReader(req.Body)
	}
	r, err := runUntil(actx, func() browserResult {
		data, _, status, err := f.browser.Do(req.Method, req.URL, req.Headers, body)
		return browserResult{data: data, status: status, err: err}
	})
	if err != nil {
		return nil, 0, fmt.Errorf("browser request: %w", err)
	}
	if r.err != nil {
		return nil, r.status, fmt.Errorf("browser request: %w", r.err)
	}
	if r.status < 200 || r.status >= 300 {
		return nil, r.status, &statusError{StatusCode: r.status, Snippet: snippet(r.data)}
	}
	return r.data, r.status, nil
}

// runUntil runs fn in its own goroutine and returns its result, or ctx's
// error if ctx is done first. An abandoned fn keeps running to completion.
func runUntil[T any](ctx context.Context, fn func() T) (T, error) {
	done := make(chan T, 1)
	go func() { done <- fn() }()
	select {
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	case v := <-done:
		return v, nil
	}
}

// FetchText GETs url and returns the body as a string.
func (f *Fetcher) FetchText(ctx context.Context, url string, headers map[string]string) (string, error) {
	data, err := f.Do(ctx, Request{URL: url, Headers: headers})
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// FetchJSON GETs url and decodes the JSON body into v.
func (f *Fetcher) FetchJSON(ctx context.Context, url string, headers map[string]string, v any) error {
	data, err := f.Do(ctx, Request{URL: url, Headers: withJSONAccept(headers)})
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %s: %w", url, err)
	}
	return nil
}

// PostJSON POSTs payload as JSON and returns the raw response body.
func (f *Fetcher) PostJSON(ctx context.Context, url string, headers map[string]string, payload any) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode payload: %w", err)
	}
	h := withJSONAccept(headers)
	h["content-type"] = "application/json"
	return f.Do(ctx, Request{Method: http.MethodPost, URL: url, Headers: h, Body: body})
}

func withJSONAccept(headers map[string]string) map[string]string {
	h := make(map[string]string, len(headers)+2)
	for k, v := range headers {
		h[strings.ToLower(k)] = v
	}
	if _, ok := h["accept"]; !ok {
		h["accept"] = "application/json"
	}
	return h
}

func snippet(data []byte) string {
	return strutil.TruncateWith(strings.TrimSpace(string(data)), 200, "...")
}
