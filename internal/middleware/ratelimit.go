// Package middleware provides HTTP middleware for the audit service.
package middleware

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// Rate-limiter table bounds.
const (
	maxTrackedIPs  = 100_000
	sweepInterval  = 5 * time.Minute
	visitorMaxIdle = 10 * time.Minute
)

// visitor is one client IP's token balance. Tokens refill continuously at
// the limiter's rate up to burst; a request spends one token.
type visitor struct {
	tokens   float64
	lastSeen time.Time
}

// RateLimiter throttles requests per client IP using token buckets. The
// visitor table is swept periodically so it cannot grow without bound.
type RateLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	rate     float64
	burst    float64
}

// NewRateLimiter creates a RateLimiter allowing ratePerSec sustained
// requests with the given burst per IP. The sweep goroutine stops when ctx
// is cancelled.
func NewRateLimiter(ctx context.Context, ratePerSec, burst int) *RateLimiter {
	rl := &RateLimiter{
		visitors: make(map[string]*visitor),
		rate:     float64(ratePerSec),
		burst:    float64(burst),
	}
	go rl.sweep(ctx)

	return rl
}

// take spends one token for ip. The second return is false when the
// visitor table is full and ip is not already tracked.
func (rl *RateLimiter) take(ip string) (allowed, tracked bool) {
	now := time.Now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	v, ok := rl.visitors[ip]
	if !ok {
		if len(rl.visitors) >= maxTrackedIPs {
			return false, false
		}

		v = &visitor{tokens: rl.burst, lastSeen: now}
		rl.visitors[ip] = v
	}

	v.tokens += now.Sub(v.lastSeen).Seconds() * rl.rate
	if v.tokens > rl.burst {
		v.tokens = rl.burst
	}
	v.lastSeen = now

	if v.tokens < 1 {
		return false, true
	}
	v.tokens--

	return true, true
}

// sweep evicts visitors idle longer than visitorMaxIdle.
func (rl *RateLimiter) sweep(ctx context.Context) {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			rl.mu.Lock()
			for ip, v := range rl.visitors {
				if now.Sub(v.lastSeen) > visitorMaxIdle {
					delete(rl.visitors, ip)
				}
			}
			rl.mu.Unlock()
		}
	}
}

// Handler returns Gin middleware enforcing the per-IP limit.
func (rl *RateLimiter) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		// ClientIP is spoof-safe: the router disables proxy header trust
		// with SetTrustedProxies(nil).
		allowed, tracked := rl.take(c.ClientIP())

		switch {
		case !tracked:
			respondError(c, http.StatusTooManyRequests, "rate_limited", "too many clients")
		case !allowed:
			respondError(c, http.StatusTooManyRequests, "rate_limited", "rate limit exceeded")
		default:
			c.Next()
		}
	}
}
