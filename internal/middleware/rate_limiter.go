package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/dSumitabha/multi-tenant/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// windowEntry tracks request counts per client key within a sliding window.
type windowEntry struct {
	count     int
	windowEnd time.Time
	mu        sync.Mutex
}

// limiter is a fixed-window per-key counter. Each middleware instance owns
// its own map, so the login limiter and the general API limiter never share
// state.
type limiter struct {
	limit  int
	window time.Duration
	msg    string

	stop    chan struct{}
	stopped chan struct{}

	mu      sync.Mutex
	entries map[string]*windowEntry
}

func newLimiter(limit int, window time.Duration, msg string) *limiter {
	l := &limiter{
		limit:   limit,
		window:  window,
		msg:     msg,
		stop:    make(chan struct{}),
		stopped: make(chan struct{}),
		entries: make(map[string]*windowEntry),
	}
	go l.purgeLoop()
	return l
}

// close terminates the purge goroutine and waits for it to exit. The two
// process-lifetime limiters never call it; short-lived limiters must.
func (l *limiter) close() {
	close(l.stop)
	<-l.stopped
}

func (l *limiter) allow(key string) (bool, time.Time) {
	l.mu.Lock()
	entry, ok := l.entries[key]
	if !ok {
		entry = &windowEntry{}
		l.entries[key] = entry
	}
	l.mu.Unlock()

	entry.mu.Lock()
	defer entry.mu.Unlock()

	now := time.Now()
	if now.After(entry.windowEnd) {
		entry.count = 0
		entry.windowEnd = now.Add(l.window)
	}
	entry.count++
	return entry.count <= l.limit, entry.windowEnd
}

// purgeLoop removes expired entries so IPs that never return do not
// accumulate forever.
func (l *limiter) purgeLoop() {
	defer close(l.stopped)

	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-l.stop:
			return
		case <-ticker.C:
		}

		now := time.Now()
		purged := 0

		l.mu.Lock()
		for key, entry := range l.entries {
			entry.mu.Lock()
			if now.After(entry.windowEnd) {
				delete(l.entries, key)
				purged++
			}
			entry.mu.Unlock()
		}
		remaining := len(l.entries)
		l.mu.Unlock()

		if purged > 0 {
			log.Debug().
				Int("purged", purged).
				Int("remaining", remaining).
				Msg("rate limiter entries purged")
		}
	}
}

func (l *limiter) handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		ok, windowEnd := l.allow(c.ClientIP())
		if !ok {
			c.Header("Retry-After", windowEnd.Format(time.RFC1123))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, apierror.New(l.msg))
			return
		}
		c.Next()
	}
}

// LoginRateLimiter limits login attempts to 20 per minute per IP.
func LoginRateLimiter() gin.HandlerFunc {
	return newLimiter(20, time.Minute, "too many login attempts, retry in a minute").handler()
}

// RateLimiter returns a general-purpose per-IP limiter for the API surface.
// Default wiring: 200 requests per minute.
func RateLimiter(limit int, window time.Duration) gin.HandlerFunc {
	return newLimiter(limit, window, "too many requests, retry shortly").handler()
}
