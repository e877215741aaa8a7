package api

import (
	"net"
	"net/http"
	"sync"

	"github.com/labstack/echo/v5"
	"golang.org/x/time/rate"
)

// RateLimiter hands out one token bucket per client address.
type RateLimiter struct {
	mu       sync.RWMutex
	limiters map[string]*rate.Limiter
	rate     rate.Limit
	burst    int
}

func NewRateLimiter(r rate.Limit, burst int) *RateLimiter {
	return &RateLimiter{
		limiters: make(map[string]*rate.Limiter),
		rate:     r,
		burst:    burst,
	}
}

func (rl *RateLimiter) limiter(client string) *rate.Limiter {
	rl.mu.RLock()
	l, ok := rl.limiters[client]
	rl.mu.RUnlock()
	if ok {
		return l
	}

	rl.mu.Lock()
	defer rl.mu.Unlock()
	if l, ok := rl.limiters[client]; ok {
		return l
	}
	l = rate.NewLimiter(rl.rate, rl.burst)
	rl.limiters[client] = l
	return l
}

func (rl *RateLimiter) Allow(client string) bool {
	return rl.limiter(client).Allow()
}

// Middleware rejects requests over the client's budget with 429.
func (rl *RateLimiter) Middleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c *echo.Context) error {
		if !rl.Allow(clientAddr(c.Request())) {
			return writeError(c, http.StatusTooManyRequests, "rate_limit_error", "rate limit exceeded")
		}
		return next(c)
	}
}

func clientAddr(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
