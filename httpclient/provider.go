package httpclient

// Durable, renewable HTTP clients with a fixed retry/timeout policy

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"sync"
	"time"

	"github.com/FBakkensen/vi-access/logging"
)

// DefaultClientName is the client every caller gets unless they ask for a named one.
const DefaultClientName = "default"

// Policy is the resilience configuration wrapping every outbound call.
type Policy struct {
	MaxAttempts   int           // total tries, not additional retries
	BaseDelay     time.Duration // first backoff step, doubled per attempt
	MaxJitter     time.Duration // random extra delay to avoid thundering herds
	PerTryTimeout time.Duration // deadline applied to each individual attempt
}

// DefaultPolicy returns the standard policy: 4 attempts, exponential backoff
// starting at 2s, 5s per-attempt budget.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts:   4,
		BaseDelay:     2 * time.Second,
		MaxJitter:     100 * time.Millisecond,
		PerTryTimeout: 5 * time.Second,
	}
}

// Response is the read-and-closed result of an outbound call.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// IsSuccess reports whether the status code is in the 2xx range.
func (r *Response) IsSuccess() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Provider owns named HTTP clients sharing one resilience policy.
// The default client is built eagerly; callers must never mutate a returned
// client, per-request state belongs on the request itself.
type Provider struct {
	mu      sync.Mutex
	policy  Policy
	clients map[string]*http.Client
}

// NewProvider creates a provider with the default client built eagerly.
func NewProvider(policy Policy) *Provider {
	p := &Provider{
		policy:  policy,
		clients: make(map[string]*http.Client),
	}
	p.clients[DefaultClientName] = newClient()
	return p
}

// Client returns the current client for name, building it on first use.
func (p *Provider) Client(name string) *http.Client {
	p.mu.Lock()
	defer p.mu.Unlock()
	if c, ok := p.clients[name]; ok {
		return c
	}
	logging.Debug("Building HTTP client", "name", name)
	c := newClient()
	p.clients[name] = c
	return c
}

// Default returns the eagerly built default client.
func (p *Provider) Default() *http.Client {
	return p.Client(DefaultClientName)
}

// Renew discards the cached client for name and rebuilds it with a fresh
// transport, recovering from a wedged connection pool or rotated credentials.
func (p *Provider) Renew(name string) *http.Client {
	p.mu.Lock()
	defer p.mu.Unlock()
	logging.Info("Renewing HTTP client", "name", name)
	if old, ok := p.clients[name]; ok {
		if t, ok := old.Transport.(*http.Transport); ok {
			t.CloseIdleConnections()
		}
	}
	c := newClient()
	p.clients[name] = c
	return c
}

// Policy returns the provider's resilience policy.
func (p *Provider) Policy() Policy {
	return p.policy
}

// newClient builds a transport with redirect following disabled: the service
// uses redirects to convey widget URLs, so the Location header must reach the
// caller instead of being auto-followed.
func newClient() *http.Client {
	return &http.Client{
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
		},
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

// Do executes the request through the named client under the retry policy.
// The body is replayed from the byte slice on every attempt and headers are
// attached per request, never on the shared client. Transport errors, per-try
// timeouts and 4xx/5xx statuses are retried up to the attempt budget; the
// final response is returned for the caller to inspect. 3xx responses return
// immediately so the Location header stays observable.
func (p *Provider) Do(ctx context.Context, name, method, url string, header http.Header, body []byte) (*Response, error) {
	var lastErr error
	var lastResp *Response

	for attempt := 1; attempt <= p.policy.MaxAttempts; attempt++ {
		resp, err := p.attempt(ctx, name, method, url, header, body)
		if err == nil {
			if resp.IsSuccess() || (resp.StatusCode >= 300 && resp.StatusCode < 400) {
				return resp, nil
			}
			lastResp = resp
			lastErr = nil
			logging.Warn("Request returned non-success status",
				"method", method, "url", url,
				"status", fmt.Sprintf("%d", resp.StatusCode),
				"attempt", fmt.Sprintf("%d/%d", attempt, p.policy.MaxAttempts))
		} else {
			// Caller cancellation is terminal, only per-try budgets are retryable
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastResp = nil
			lastErr = err
			logging.Warn("Request attempt failed",
				"method", method, "url", url,
				"error", err.Error(),
				"attempt", fmt.Sprintf("%d/%d", attempt, p.policy.MaxAttempts))
		}

		if attempt == p.policy.MaxAttempts {
			break
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(p.backoffDelay(attempt)):
		}
	}

	if lastResp != nil {
		return lastResp, nil
	}
	return nil, fmt.Errorf("request failed after %d attempts: %w", p.policy.MaxAttempts, lastErr)
}

// attempt performs a single request with its own deadline and drains the body.
func (p *Provider) attempt(ctx context.Context, name, method, url string, header http.Header, body []byte) (*Response, error) {
	tryCtx := ctx
	if p.policy.PerTryTimeout > 0 {
		var cancel context.CancelFunc
		tryCtx, cancel = context.WithTimeout(ctx, p.policy.PerTryTimeout)
		defer cancel()
	}

	var bodyReader io.Reader
	if len(body) > 0 {
		bodyReader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(tryCtx, method, url, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	for k, vals := range header {
		for _, v := range vals {
			req.Header.Add(k, v)
		}
	}

	// Re-resolve the client per attempt so a Renew takes effect mid-flight
	resp, err := p.Client(name).Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       respBody,
	}, nil
}

// backoffDelay computes the exponential backoff with jitter for an attempt.
func (p *Provider) backoffDelay(attempt int) time.Duration {
	delay := p.policy.BaseDelay * time.Duration(1<<(attempt-1))
	if p.policy.MaxJitter > 0 {
		delay += time.Duration(rand.Int63n(int64(p.policy.MaxJitter))) //nolint:gosec // G404: jitter doesn't need crypto rand
	}
	return delay
}
