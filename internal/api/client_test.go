package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

type staticToken string

func (t staticToken) Token() string { return string(t) }

type rotatingToken struct {
	mu    sync.Mutex
	value string
}

func (t *rotatingToken) Token() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.value
}

func (t *rotatingToken) set(v string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.value = v
}

// manualClock collects scheduled cleanups so tests control when the
// coalescing map is cleared.
type manualClock struct {
	mu  sync.Mutex
	fns []func()
}

func (m *manualClock) after(_ time.Duration, fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fns = append(m.fns, fn)
}

func (m *manualClock) fire() {
	m.mu.Lock()
	fns := m.fns
	m.fns = nil
	m.mu.Unlock()
	for _, fn := range fns {
		fn()
	}
}

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(srv.URL, staticToken("tok"), time.Second), srv
}

func TestCoalescesConcurrentGETs(t *testing.T) {
	var hits atomic.Int64
	release := make(chan struct{})
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		<-release
		w.Write([]byte(`{"value":42}`))
	})
	clock := &manualClock{}
	client.after = clock.after

	const callers = 8
	var wg sync.WaitGroup
	results := make([][]byte, callers)
	errs := make([]error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = client.Call(context.Background(), http.MethodGet, "/thing", nil)
		}(i)
	}

	// Let the goroutines pile up on the shared in-flight entry before the
	// handler responds.
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	if got := hits.Load(); got != 1 {
		t.Fatalf("backend hit %d times, want 1", got)
	}
	for i := 0; i < callers; i++ {
		if errs[i] != nil {
			t.Fatalf("caller %d error: %v", i, errs[i])
		}
		if string(results[i]) != `{"value":42}` {
			t.Errorf("caller %d body = %q", i, results[i])
		}
	}
}

func TestCoalescingClearedAfterSettlement(t *testing.T) {
	var hits atomic.Int64
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Write([]byte(`{}`))
	})
	clock := &manualClock{}
	client.after = clock.after

	if _, err := client.Call(context.Background(), http.MethodGet, "/thing", nil); err != nil {
		t.Fatal(err)
	}
	clock.fire()
	if _, err := client.Call(context.Background(), http.MethodGet, "/thing", nil); err != nil {
		t.Fatal(err)
	}
	if got := hits.Load(); got != 2 {
		t.Fatalf("backend hit %d times after cleanup, want 2", got)
	}
}

func TestDistinctEndpointsNotCoalesced(t *testing.T) {
	var hits atomic.Int64
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Write([]byte(`{}`))
	})
	client.after = (&manualClock{}).after

	ctx := context.Background()
	client.Call(ctx, http.MethodGet, "/a?page=1", nil)
	client.Call(ctx, http.MethodGet, "/a?page=2", nil)
	if got := hits.Load(); got != 2 {
		t.Fatalf("backend hit %d times, want 2 for distinct query strings", got)
	}
}

func TestMutationsNeverCoalesced(t *testing.T) {
	var hits atomic.Int64
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusNoContent)
	})
	ctx := context.Background()
	client.Call(ctx, http.MethodPost, "/thing", map[string]string{"a": "b"})
	client.Call(ctx, http.MethodPost, "/thing", map[string]string{"a": "b"})
	if got := hits.Load(); got != 2 {
		t.Fatalf("backend hit %d times, want 2 for POSTs", got)
	}
}

func TestTokenReadFreshPerCall(t *testing.T) {
	var seen []string
	var mu sync.Mutex
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		seen = append(seen, r.Header.Get("Authorization"))
		mu.Unlock()
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	tokens := &rotatingToken{value: "first"}
	client := New(srv.URL, tokens, time.Second)
	client.after = (&manualClock{}).after

	ctx := context.Background()
	client.Call(ctx, http.MethodGet, "/a", nil)
	tokens.set("second")
	client.Call(ctx, http.MethodGet, "/b", nil)

	if len(seen) != 2 || seen[0] != "Bearer first" || seen[1] != "Bearer second" {
		t.Fatalf("authorization headers = %v", seen)
	}
}

func TestMissingTokenFailsWithoutNetwork(t *testing.T) {
	var hits atomic.Int64
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	})
	client.tokens = staticToken("")

	_, err := client.Call(context.Background(), http.MethodGet, "/thing", nil)
	if !errors.Is(err, ErrNotAuthenticated) {
		t.Fatalf("err = %v, want ErrNotAuthenticated", err)
	}
	if hits.Load() != 0 {
		t.Fatal("request should not reach the network without a token")
	}
}

func TestEmptyBodyReturnsNil(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	raw, err := client.Call(context.Background(), http.MethodDelete, "/thing", nil)
	if err != nil {
		t.Fatal(err)
	}
	if raw != nil {
		t.Fatalf("raw = %q, want nil for 204", raw)
	}
}

func TestErrorTaxonomy(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/missing":
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"message":"no such student"}`))
		case "/forbidden":
			w.WriteHeader(http.StatusForbidden)
			w.Write([]byte(`{"message":"admin role required"}`))
		}
	})
	client.after = (&manualClock{}).after
	ctx := context.Background()

	_, err := client.Call(ctx, http.MethodGet, "/missing", nil)
	if !IsNotFound(err) {
		t.Errorf("expected not-found, got %v", err)
	}
	var apiErr *Error
	if !errors.As(err, &apiErr) || apiErr.Message != "no such student" {
		t.Errorf("message not extracted: %v", err)
	}

	_, err = client.Call(ctx, http.MethodGet, "/forbidden", nil)
	if !IsForbidden(err) {
		t.Errorf("expected forbidden, got %v", err)
	}
	if errors.As(err, &apiErr) {
		if want := "admin role required (if your role changed recently, log out and log back in)"; apiErr.Message != want {
			t.Errorf("403 message = %q, want %q", apiErr.Message, want)
		}
	}
}

func TestPageNormalization(t *testing.T) {
	type row struct {
		ID int64 `json:"id"`
	}
	spring := map[string]any{
		"content":       []row{{1}, {2}},
		"totalElements": 12,
		"totalPages":    6,
		"number":        2,
		"size":          2,
	}
	uniform := map[string]any{
		"data":        []row{{3}},
		"total":       7,
		"totalPages":  7,
		"currentPage": 4,
		"limit":       1,
	}
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/spring" {
			json.NewEncoder(w).Encode(spring)
			return
		}
		json.NewEncoder(w).Encode(uniform)
	})
	client.after = (&manualClock{}).after
	ctx := context.Background()

	page, err := getPage[row](ctx, client, "/spring")
	if err != nil {
		t.Fatal(err)
	}
	if page.CurrentPage != 3 {
		t.Errorf("0-based number 2 should normalize to page 3, got %d", page.CurrentPage)
	}
	if page.Total != 12 || page.TotalPages != 6 || page.Limit != 2 || len(page.Data) != 2 {
		t.Errorf("unexpected normalized page %+v", page)
	}

	page, err = getPage[row](ctx, client, "/uniform")
	if err != nil {
		t.Fatal(err)
	}
	if page.CurrentPage != 4 || page.Total != 7 || len(page.Data) != 1 {
		t.Errorf("uniform envelope should pass through, got %+v", page)
	}
}

func TestBuildQuerySkipsEmpties(t *testing.T) {
	q := buildQuery(map[string]string{"a": "1", "b": "", "c": "x y"})
	if q != "?a=1&c=x+y" {
		t.Errorf("buildQuery = %q", q)
	}
	if buildQuery(map[string]string{"a": ""}) != "" {
		t.Error("all-empty params should yield empty string")
	}
}
