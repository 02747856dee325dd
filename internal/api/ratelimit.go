package api

import (
	"net"
	"net/http"
	"sync"
	"time"
)

// loginRateLimiter throttles credential attempts per client IP with a fixed
// window. It exists to slow password guessing, not to be a general limiter.
type loginRateLimiter struct {
	mu      sync.Mutex
	max     int
	window  time.Duration
	entries map[string]*rateEntry
}

type rateEntry struct {
	count       int
	windowStart time.Time
}

// newLoginRateLimiter allows max attempts per window for each IP.
func newLoginRateLimiter(max int, window time.Duration) *loginRateLimiter {
	return &loginRateLimiter{
		max:     max,
		window:  window,
		entries: make(map[string]*rateEntry),
	}
}

// allow reports whether the IP may attempt a login now. When denied, it also
// returns the number of whole seconds until the window resets, never less
// than 1 so the Retry-After header stays meaningful.
func (rl *loginRateLimiter) allow(ip string) (bool, int) {
	now := time.Now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	e, ok := rl.entries[ip]
	if !ok || now.Sub(e.windowStart) >= rl.window {
		rl.entries[ip] = &rateEntry{count: 1, windowStart: now}
		rl.maybeCleanup(now)
		return true, 0
	}

	if e.count < rl.max {
		e.count++
		return true, 0
	}

	retryAfter := int(rl.window.Seconds() - now.Sub(e.windowStart).Seconds())
	if retryAfter < 1 {
		retryAfter = 1
	}
	return false, retryAfter
}

// maybeCleanup drops expired entries once the map grows. Called with the
// lock held.
func (rl *loginRateLimiter) maybeCleanup(now time.Time) {
	if len(rl.entries) < 1024 {
		return
	}
	for ip, e := range rl.entries {
		if now.Sub(e.windowStart) >= rl.window {
			delete(rl.entries, ip)
		}
	}
}

// clientIP extracts the client address for rate limiting purposes.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
