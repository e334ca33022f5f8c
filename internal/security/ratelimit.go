package security

import (
	"net/http"
	"sync"
	"time"
)

// RateLimiter allows a fixed number of requests per client per window
type RateLimiter struct {
	visitors  map[string]*visitor
	mu        sync.Mutex
	rate      int           // requests per window
	window    time.Duration // time window
	lastSweep time.Time
	proxies   TrustedProxies
	now       func() time.Time
}

type visitor struct {
	tokens     int
	lastRefill time.Time
}

// NewRateLimiter creates a new rate limiter
// rate: number of requests allowed per window
// window: time window for rate limiting
// proxies: reverse proxies whose forwarding headers name the client
func NewRateLimiter(rate int, window time.Duration, proxies TrustedProxies) *RateLimiter {
	return &RateLimiter{
		visitors: make(map[string]*visitor),
		rate:     rate,
		window:   window,
		proxies:  proxies,
		now:      time.Now,
	}
}

// ClientIP is the address requests are limited by
func (rl *RateLimiter) ClientIP(r *http.Request) string {
	return rl.proxies.ClientIP(r)
}

// Allow checks if a request from a client should be allowed
func (rl *RateLimiter) Allow(client string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	rl.sweep(now)

	v, exists := rl.visitors[client]
	if !exists {
		v = &visitor{tokens: rl.rate, lastRefill: now}
		rl.visitors[client] = v
	}
	if now.Sub(v.lastRefill) >= rl.window {
		v.tokens = rl.rate
		v.lastRefill = now
	}
	if v.tokens > 0 {
		v.tokens--
		return true
	}
	return false
}

// sweep drops visitors idle for two windows, at most once per window
func (rl *RateLimiter) sweep(now time.Time) {
	if now.Sub(rl.lastSweep) < rl.window {
		return
	}
	rl.lastSweep = now
	for client, v := range rl.visitors {
		if now.Sub(v.lastRefill) > rl.window*2 {
			delete(rl.visitors, client)
		}
	}
}

// Limit rejects requests over the limit with 429
func (rl *RateLimiter) Limit(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !rl.Allow(rl.ClientIP(r)) {
			http.Error(w, "Too many requests, try again later", http.StatusTooManyRequests)
			return
		}
		next(w, r)
	}
}
