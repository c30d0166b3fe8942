package http

import (
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	applog "chitieu/internal/log"
)

func newTestLimiter(t *testing.T, cfg RateLimitConfig) *rateLimiter {
	t.Helper()
	logger := applog.New(applog.Config{
		Component: applog.ComponentRateLimit,
		Handler:   slog.NewTextHandler(io.Discard, nil),
	})
	rl := newRateLimiter(cfg, logger)
	t.Cleanup(rl.stop)
	return rl
}

func TestRateLimiterEnforcesConfiguredLimit(t *testing.T) {
	rl := newTestLimiter(t, RateLimitConfig{RequestsPerMinute: 2})

	metrics := &securityMetrics{}
	if !rl.allow("198.51.100.7", metrics) {
		t.Fatal("first request should pass")
	}
	if !rl.allow("198.51.100.7", metrics) {
		t.Fatal("second request should pass")
	}
	if rl.allow("198.51.100.7", metrics) {
		t.Fatal("third request should be rejected")
	}
	if metrics.rateLimitHits != 1 {
		t.Fatalf("rateLimitHits = %d, want 1", metrics.rateLimitHits)
	}

	// A different client has its own window.
	if !rl.allow("198.51.100.8", metrics) {
		t.Fatal("other client should pass")
	}
}

func TestRateLimiterEvictsIdleClients(t *testing.T) {
	rl := newTestLimiter(t, RateLimitConfig{RequestsPerMinute: 5})

	rl.allow("198.51.100.7", nil)
	rl.allow("198.51.100.8", nil)

	if n := rl.evictIdle(time.Now().Add(3 * time.Minute)); n != 2 {
		t.Fatalf("evicted = %d, want 2", n)
	}
	if n := rl.evictIdle(time.Now().Add(3 * time.Minute)); n != 0 {
		t.Fatalf("second eviction = %d, want 0", n)
	}
}

func TestRateLimitAppliesToMutatingRequestsOnly(t *testing.T) {
	srv, _ := newTestServerLimited(t, RateLimitConfig{RequestsPerMinute: 2})

	rr := doJSON(t, srv, http.MethodPost, "/api/budgets", `{"category": "Food", "limit": 100}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("first create status=%d: %s", rr.Code, rr.Body.String())
	}
	rr = doJSON(t, srv, http.MethodPost, "/api/budgets", `{"category": "Rent", "limit": 100}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("second create status=%d: %s", rr.Code, rr.Body.String())
	}

	rr = doJSON(t, srv, http.MethodPost, "/api/budgets", `{"category": "Misc", "limit": 100}`)
	if rr.Code != http.StatusTooManyRequests {
		t.Fatalf("third create status=%d, want 429", rr.Code)
	}
	if rr.Header().Get("Retry-After") != "60" {
		t.Fatalf("Retry-After = %q, want 60", rr.Header().Get("Retry-After"))
	}

	// Reads stay unthrottled.
	rr = doJSON(t, srv, http.MethodGet, "/api/budgets", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("list status=%d, want 200", rr.Code)
	}
}
