package middleware

import (
	"log/slog"
	"net/http"
	"sync"
	"time"
)

// RateLimiter implements a simple in-memory sliding-window rate limiter.
// Entries for clients that have gone quiet are swept out periodically so the
// map stays bounded by recent traffic, not by every IP ever seen.
type RateLimiter struct {
	requests  map[string][]time.Time
	mutex     sync.Mutex
	maxReqs   int
	window    time.Duration
	lastSweep time.Time
}

// NewRateLimiter creates a new rate limiter
func NewRateLimiter(maxRequests int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		requests:  make(map[string][]time.Time),
		maxReqs:   maxRequests,
		window:    window,
		lastSweep: time.Now(),
	}
}

// IsAllowed checks if a request from the given IP is allowed
func (rl *RateLimiter) IsAllowed(clientIP string) bool {
	rl.mutex.Lock()
	defer rl.mutex.Unlock()

	now := time.Now()
	if now.Sub(rl.lastSweep) >= rl.window {
		rl.sweep(now)
		rl.lastSweep = now
	}

	valid := pruneAged(rl.requests[clientIP], now, rl.window)
	if len(valid) >= rl.maxReqs {
		rl.requests[clientIP] = valid
		return false
	}

	rl.requests[clientIP] = append(valid, now)
	return true
}

// sweep drops every client whose requests have all aged out of the window.
// Called at most once per window, under the mutex.
func (rl *RateLimiter) sweep(now time.Time) {
	for ip, times := range rl.requests {
		valid := pruneAged(times, now, rl.window)
		if len(valid) == 0 {
			delete(rl.requests, ip)
			continue
		}
		rl.requests[ip] = valid
	}
}

func pruneAged(times []time.Time, now time.Time, window time.Duration) []time.Time {
	valid := times[:0]
	for _, t := range times {
		if now.Sub(t) < window {
			valid = append(valid, t)
		}
	}
	return valid
}

// RateLimitMiddleware creates a rate limiting middleware
func RateLimitMiddleware(maxRequests int, window time.Duration) func(http.Handler) http.Handler {
	limiter := NewRateLimiter(maxRequests, window)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			clientIP := getClientIP(r)

			if !limiter.IsAllowed(clientIP) {
				slog.Warn("Rate limit exceeded", "ip", clientIP, "path", r.URL.Path)
				http.Error(w, "Rate limit exceeded", http.StatusTooManyRequests)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
