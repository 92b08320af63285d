// Package ratelimit provides per-client token bucket rate limiting for the HTTP API.
package ratelimit

import (
	"sync"
	"time"
)

// tokenBucket allows capacity requests in a burst and refills at refillRate
// tokens per second.
type tokenBucket struct {
	mu         sync.Mutex
	capacity   float64
	refillRate float64
	tokens     float64
	lastRefill time.Time
	lastAccess time.Time
}

func newTokenBucket(capacity int, refillRate float64, now time.Time) *tokenBucket {
	return &tokenBucket{
		capacity:   float64(capacity),
		refillRate: refillRate,
		tokens:     float64(capacity),
		lastRefill: now,
		lastAccess: now,
	}
}

// take refills the bucket, consumes a token when one is available and
// reports the tokens left and when the bucket will be full again.
func (tb *tokenBucket) take(now time.Time) (allowed bool, remaining int, reset time.Time) {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	if elapsed := now.Sub(tb.lastRefill); elapsed > 0 {
		tb.tokens = min(tb.capacity, tb.tokens+elapsed.Seconds()*tb.refillRate)
	}
	tb.lastRefill = now
	tb.lastAccess = now

	if tb.tokens >= 1 {
		tb.tokens--
		allowed = true
	}

	reset = now
	if missing := tb.capacity - tb.tokens; missing > 0 {
		reset = now.Add(time.Duration(missing / tb.refillRate * float64(time.Second)))
	}
	return allowed, int(tb.tokens), reset
}

func (tb *tokenBucket) idleSince(cutoff time.Time) bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	return tb.lastAccess.Before(cutoff)
}

// Info describes the rate limit state after a request.
type Info struct {
	Allowed    bool
	Limit      int
	Remaining  int
	ResetTime  time.Time
	RetryAfter time.Duration
}

// Config holds rate limiting configuration.
type Config struct {
	Enabled         bool
	DefaultLimit    int
	DefaultWindow   time.Duration
	CleanupInterval time.Duration
	// IdleTTL is how long an unused bucket is kept.
	IdleTTL   time.Duration
	Allowlist []string
	Blocklist []string
	Endpoints []EndpointConfig
}

// Limiter manages a token bucket per client and endpoint.
type Limiter struct {
	config    Config
	allowlist map[string]bool
	blocklist map[string]bool

	mu      sync.Mutex
	buckets map[string]*tokenBucket

	// now is replaced in tests.
	now func() time.Time

	stopOnce sync.Once
	stop     chan struct{}
}

// NewLimiter creates a limiter and starts bucket cleanup when configured.
// Call Stop to release the cleanup goroutine.
func NewLimiter(cfg Config) *Limiter {
	if cfg.DefaultLimit <= 0 {
		cfg.DefaultLimit = 600
	}
	if cfg.DefaultWindow <= 0 {
		cfg.DefaultWindow = time.Minute
	}
	if cfg.IdleTTL <= 0 {
		cfg.IdleTTL = time.Hour
	}

	l := &Limiter{
		config:    cfg,
		allowlist: toSet(cfg.Allowlist),
		blocklist: toSet(cfg.Blocklist),
		buckets:   make(map[string]*tokenBucket),
		now:       time.Now,
		stop:      make(chan struct{}),
	}
	if cfg.Enabled && cfg.CleanupInterval > 0 {
		go l.cleanupLoop(cfg.CleanupInterval)
	}
	return l
}

// Allow reports whether clientID may call method on path now.
func (l *Limiter) Allow(clientID, path, method string) Info {
	if !l.config.Enabled || l.allowlist[clientID] {
		return Info{Allowed: true}
	}
	if l.blocklist[clientID] {
		return Info{Allowed: false}
	}

	endpoint := MatchEndpoint(path, method, l.config.Endpoints)
	if endpoint == nil {
		endpoint = &EndpointConfig{Limit: l.config.DefaultLimit, Window: l.config.DefaultWindow}
	}
	if endpoint.Limit <= 0 {
		return Info{Allowed: true}
	}

	now := l.now()
	key := clientID + ":" + method + ":" + endpoint.key(path)
	allowed, remaining, reset := l.bucket(key, *endpoint, now).take(now)

	info := Info{
		Allowed:   allowed,
		Limit:     endpoint.Limit,
		Remaining: remaining,
		ResetTime: reset,
	}
	if !allowed {
		// One token is enough to retry.
		info.RetryAfter = max(time.Duration(float64(time.Second)/endpoint.refillRate()), 0)
	}
	return info
}

func (l *Limiter) bucket(key string, endpoint EndpointConfig, now time.Time) *tokenBucket {
	l.mu.Lock()
	defer l.mu.Unlock()

	if b, ok := l.buckets[key]; ok {
		return b
	}
	b := newTokenBucket(endpoint.burst(), endpoint.refillRate(), now)
	l.buckets[key] = b
	return b
}

func (l *Limiter) cleanupLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			l.cleanup()
		case <-l.stop:
			return
		}
	}
}

// cleanup removes buckets idle for longer than IdleTTL.
func (l *Limiter) cleanup() {
	cutoff := l.now().Add(-l.config.IdleTTL)

	l.mu.Lock()
	defer l.mu.Unlock()
	for key, b := range l.buckets {
		if b.idleSince(cutoff) {
			delete(l.buckets, key)
		}
	}
}

// Stop stops the cleanup goroutine. It is safe to call more than once.
func (l *Limiter) Stop() {
	l.stopOnce.Do(func() { close(l.stop) })
}

func toSet(items []string) map[string]bool {
	set := make(map[string]bool, len(items))
	for _, item := range items {
		if item != "" {
			set[item] = true
		}
	}
	return set
}
