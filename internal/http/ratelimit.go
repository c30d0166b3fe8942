package http

import (
	"sync"
	"sync/atomic"
	"time"

	applog "chitieu/internal/log"
)

// Fallbacks when the server is constructed with a zero RateLimitConfig.
const (
	defaultRequestsPerMinute = 60
	defaultCleanupInterval   = 5 * time.Minute
)

// RateLimitConfig controls the per-IP limiter applied to mutating
// routes. Zero fields fall back to the defaults above.
type RateLimitConfig struct {
	RequestsPerMinute int
	CleanupInterval   time.Duration
}

// rateLimiter counts mutating requests per client IP over fixed
// one-minute windows anchored at each client's first request.
type rateLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor

	limit        int
	cleanupEvery time.Duration
	logger       *applog.Logger

	done     chan struct{}
	stopOnce sync.Once
}

type visitor struct {
	windowStart time.Time
	count       int
}

func newRateLimiter(cfg RateLimitConfig, logger *applog.Logger) *rateLimiter {
	if cfg.RequestsPerMinute <= 0 {
		cfg.RequestsPerMinute = defaultRequestsPerMinute
	}
	if cfg.CleanupInterval <= 0 {
		cfg.CleanupInterval = defaultCleanupInterval
	}
	rl := &rateLimiter{
		visitors:     make(map[string]*visitor),
		limit:        cfg.RequestsPerMinute,
		cleanupEvery: cfg.CleanupInterval,
		logger:       logger.WithComponent(applog.ComponentRateLimit),
		done:         make(chan struct{}),
	}
	go rl.evictLoop()
	return rl
}

// evictLoop periodically drops clients that have been idle for longer
// than two full windows.
func (rl *rateLimiter) evictLoop() {
	ticker := time.NewTicker(rl.cleanupEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if evicted := rl.evictIdle(time.Now()); evicted > 0 {
				rl.logger.Debug("Evicted idle rate limit entries", "evicted", evicted)
			}
		case <-rl.done:
			return
		}
	}
}

func (rl *rateLimiter) evictIdle(now time.Time) int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := now.Add(-2 * time.Minute)
	evicted := 0
	for ip, v := range rl.visitors {
		if v.windowStart.Before(cutoff) {
			delete(rl.visitors, ip)
			evicted++
		}
	}
	return evicted
}

// stop terminates the eviction goroutine. Safe to call more than once.
func (rl *rateLimiter) stop() {
	rl.stopOnce.Do(func() { close(rl.done) })
}

// allow reports whether the client may issue another mutating request
// in its current window.
func (rl *rateLimiter) allow(clientIP string, metrics *securityMetrics) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	v, ok := rl.visitors[clientIP]
	if !ok || now.Sub(v.windowStart) >= time.Minute {
		rl.visitors[clientIP] = &visitor{windowStart: now, count: 1}
		return true
	}

	v.count++
	if v.count > rl.limit {
		if metrics != nil {
			atomic.AddInt64(&metrics.rateLimitHits, 1)
		}
		return false
	}
	return true
}
