// Package api is the HTTP client for the student-registry backend. Every
// call attaches the session's bearer token read fresh per request,
// concurrent identical GETs are coalesced into one network round trip, and
// paged responses are normalized into one envelope shape.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"registryctl/internal/logger"
)

// TokenSource supplies the bearer token for each request. *session.Session
// satisfies it.
type TokenSource interface {
	Token() string
}

// cleanupDelay keeps a settled coalescing entry alive for one beat so rapid
// re-requests still share it, then drops it so a stale entry cannot linger.
const cleanupDelay = 50 * time.Millisecond

type inflight struct {
	done chan struct{}
	body []byte
	err  error
}

// Client talks to the registry backend.
type Client struct {
	BaseURL string
	HTTP    *http.Client

	tokens TokenSource

	mu      sync.Mutex
	pending map[string]*inflight

	// after schedules the post-settlement cleanup; swapped in tests to
	// control the clock.
	after func(d time.Duration, fn func())
}

// New creates a client for the given base URL and token source.
func New(baseURL string, tokens TokenSource, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    &http.Client{Timeout: timeout},
		tokens:  tokens,
		pending: make(map[string]*inflight),
		after:   func(d time.Duration, fn func()) { time.AfterFunc(d, fn) },
	}
}

// Call issues a request and returns the raw response body. Empty bodies
// (204, zero content length, non-JSON success bodies are handed back as-is)
// return nil. GET calls to an identical endpoint+query already in flight
// share that request's result instead of hitting the network again.
func (c *Client) Call(ctx context.Context, method, endpoint string, body any) ([]byte, error) {
	if method != http.MethodGet {
		return c.do(ctx, method, endpoint, body, true)
	}

	key := method + ":" + endpoint

	c.mu.Lock()
	if entry, ok := c.pending[key]; ok {
		c.mu.Unlock()
		coalescedTotal.Inc()
		select {
		case <-entry.done:
			return entry.body, entry.err
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	entry := &inflight{done: make(chan struct{})}
	c.pending[key] = entry
	c.mu.Unlock()

	entry.body, entry.err = c.do(ctx, method, endpoint, nil, true)
	close(entry.done)

	// Clear shortly after settlement regardless of outcome.
	c.after(cleanupDelay, func() {
		c.mu.Lock()
		if c.pending[key] == entry {
			delete(c.pending, key)
		}
		c.mu.Unlock()
	})

	return entry.body, entry.err
}

// NoCoalesceWindow retires settled coalescing entries immediately instead of
// after cleanupDelay. Test fixtures use it so a refetch right after a
// mutation hits the network instead of reading the prior response.
func (c *Client) NoCoalesceWindow() {
	c.after = func(_ time.Duration, fn func()) { fn() }
}

// CallUnauthenticated issues a request without a bearer token; only the
// login endpoint uses it.
func (c *Client) CallUnauthenticated(ctx context.Context, method, endpoint string, body any) ([]byte, error) {
	return c.do(ctx, method, endpoint, body, false)
}

func (c *Client) do(ctx context.Context, method, endpoint string, body any, withAuth bool) ([]byte, error) {
	var token string
	if withAuth {
		// Read the token fresh per call; it may have been replaced since
		// the client was built.
		token = c.tokens.Token()
		if token == "" {
			return nil, ErrNotAuthenticated
		}
	}

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+endpoint, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.HTTP.Do(req)
	if err != nil {
		requestsTotal.WithLabelValues(method, "transport_error").Inc()
		return nil, err
	}
	defer resp.Body.Close()

	requestDuration.Observe(time.Since(start).Seconds())
	requestsTotal.WithLabelValues(method, strconv.Itoa(resp.StatusCode)).Inc()
	logger.L().Debug("registry request",
		"method", method, "endpoint", endpoint, "status", resp.StatusCode)

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, newHTTPError(resp.StatusCode, raw)
	}

	if resp.StatusCode == http.StatusNoContent || len(bytes.TrimSpace(raw)) == 0 {
		return nil, nil
	}
	return raw, nil
}

// decode unmarshals a body into out. An empty body is an explicit no-value
// result and leaves out untouched; a body that is not valid JSON on a
// successful response is handed back as raw text when out is a *string.
func decode(raw []byte, out any) error {
	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		if s, ok := out.(*string); ok {
			*s = string(raw)
			return nil
		}
		return err
	}
	return nil
}

// getJSON fetches endpoint and decodes into T.
func getJSON[T any](ctx context.Context, c *Client, endpoint string) (T, error) {
	var out T
	raw, err := c.Call(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return out, err
	}
	return out, decode(raw, &out)
}

// postJSON sends body and decodes the response into T.
func postJSON[T any](ctx context.Context, c *Client, endpoint string, body any) (T, error) {
	var out T
	raw, err := c.Call(ctx, http.MethodPost, endpoint, body)
	if err != nil {
		return out, err
	}
	return out, decode(raw, &out)
}

// putJSON sends body via PUT and decodes the response into T.
func putJSON[T any](ctx context.Context, c *Client, endpoint string, body any) (T, error) {
	var out T
	raw, err := c.Call(ctx, http.MethodPut, endpoint, body)
	if err != nil {
		return out, err
	}
	return out, decode(raw, &out)
}

// buildQuery renders params as a query string, skipping empty values, and
// returns "" or "?k=v&...".
func buildQuery(params map[string]string) string {
	values := url.Values{}
	for k, v := range params {
		if v == "" {
			continue
		}
		values.Set(k, v)
	}
	if len(values) == 0 {
		return ""
	}
	return "?" + values.Encode()
}
