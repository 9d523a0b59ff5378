package api

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

type queryRequestLimiter interface {
	Allow() bool
}

// fixedWindowLimiter caps /query requests per wall-clock minute. It is the
// only cross-request state in the server and exists purely as backpressure in
// front of the slow upstream call.
type fixedWindowLimiter struct {
	mu          sync.Mutex
	limit       int
	windowStart time.Time
	count       int
	now         func() time.Time
}

func newFixedWindowLimiter(limit int, now func() time.Time) *fixedWindowLimiter {
	if now == nil {
		now = time.Now
	}
	return &fixedWindowLimiter{
		limit: limit,
		now:   now,
	}
}

func (l *fixedWindowLimiter) Allow() bool {
	currentWindow := l.now().UTC().Truncate(time.Minute)

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.windowStart.IsZero() || !l.windowStart.Equal(currentWindow) {
		l.windowStart = currentWindow
		l.count = 0
	}

	if l.count >= l.limit {
		return false
	}

	l.count++
	return true
}

// newQueryRateLimiter returns nil when the limit is zero or unset, which
// disables limiting entirely.
func newQueryRateLimiter(limit int) queryRequestLimiter {
	if limit <= 0 {
		return nil
	}
	return newFixedWindowLimiter(limit, time.Now)
}

func enforceQueryRateLimit(c *gin.Context, limiter queryRequestLimiter) bool {
	if limiter == nil {
		return true
	}
	if limiter.Allow() {
		return true
	}

	writeError(c, http.StatusTooManyRequests, "rate_limited", "query rate limit exceeded")
	return false
}
