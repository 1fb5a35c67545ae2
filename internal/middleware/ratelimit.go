package middleware

import (
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "fintrack/internal/errors"
)

// slidingWindow counts attempts per key over a trailing window.
type slidingWindow struct {
	mu        sync.Mutex
	limit     int
	window    time.Duration
	attempts  map[string][]time.Time
	lastSweep time.Time
}

func newSlidingWindow(limit int, window time.Duration) *slidingWindow {
	return &slidingWindow{
		limit:    limit,
		window:   window,
		attempts: make(map[string][]time.Time),
	}
}

// allow records an attempt for key at now and reports whether it is
// within the limit. Rejected attempts are not recorded.
func (w *slidingWindow) allow(key string, now time.Time) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	cutoff := now.Add(-w.window)
	if now.Sub(w.lastSweep) >= w.window {
		for k, ts := range w.attempts {
			if kept := prune(ts, cutoff); len(kept) == 0 {
				delete(w.attempts, k)
			} else {
				w.attempts[k] = kept
			}
		}
		w.lastSweep = now
	}

	ts := prune(w.attempts[key], cutoff)
	if len(ts) >= w.limit {
		w.attempts[key] = ts
		return false
	}
	w.attempts[key] = append(ts, now)
	return true
}

func prune(ts []time.Time, cutoff time.Time) []time.Time {
	kept := ts[:0]
	for _, t := range ts {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	return kept
}

// LoginRateLimit allows at most maxAttempts requests per client IP within
// window and answers 429 beyond that.
func LoginRateLimit(maxAttempts int, window time.Duration) gin.HandlerFunc {
	limiter := newSlidingWindow(maxAttempts, window)
	return func(c *gin.Context) {
		if !limiter.allow(c.ClientIP(), time.Now()) {
			c.Header("Retry-After", retryAfter(window))
			abortWithError(c, apperrors.ErrTooManyRequests)
			return
		}
		c.Next()
	}
}

func retryAfter(window time.Duration) string {
	secs := int(window.Seconds())
	if secs < 1 {
		secs = 1
	}
	return strconv.Itoa(secs)
}
