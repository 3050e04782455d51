package middleware

import (
	"net/http"
	"sync"
	"time"

	"agartpos/internal/apierror"

	"github.com/gin-gonic/gin"
)

type bucket struct {
	tokens   float64
	lastSeen time.Time
}

// ipBuckets is a per-IP token bucket table. A bucket idle for a full refill
// window is indistinguishable from a fresh one, so stale entries are swept
// instead of letting the table grow without bound under scanning traffic.
type ipBuckets struct {
	mu        sync.Mutex
	buckets   map[string]*bucket
	refill    float64 // tokens per second
	burst     float64
	idle      time.Duration
	lastSweep time.Time
}

func newIPBuckets(ratePerMinute, burst int) *ipBuckets {
	refill := float64(ratePerMinute) / 60.0
	idle := time.Duration(float64(burst) / refill * float64(time.Second))
	if idle < time.Minute {
		idle = time.Minute
	}
	return &ipBuckets{
		buckets: make(map[string]*bucket),
		refill:  refill,
		burst:   float64(burst),
		idle:    idle,
	}
}

func (l *ipBuckets) allow(ip string, now time.Time) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.sweep(now)

	b, ok := l.buckets[ip]
	if !ok {
		b = &bucket{tokens: l.burst, lastSeen: now}
		l.buckets[ip] = b
	}
	b.tokens += now.Sub(b.lastSeen).Seconds() * l.refill
	if b.tokens > l.burst {
		b.tokens = l.burst
	}
	b.lastSeen = now

	if b.tokens < 1 {
		return false
	}
	b.tokens--
	return true
}

// sweep drops buckets not seen for a full refill window. Runs at most once
// per window, under the table lock.
func (l *ipBuckets) sweep(now time.Time) {
	if now.Sub(l.lastSweep) < l.idle {
		return
	}
	for ip, b := range l.buckets {
		if now.Sub(b.lastSeen) >= l.idle {
			delete(l.buckets, ip)
		}
	}
	l.lastSweep = now
}

// RateLimiter is a per-IP token bucket. Meant for the login endpoint, where
// the cost of brute force is the concern, not overall throughput.
func RateLimiter(ratePerMinute int, burst int) gin.HandlerFunc {
	limiter := newIPBuckets(ratePerMinute, burst)

	return func(c *gin.Context) {
		if !limiter.allow(c.ClientIP(), time.Now()) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, apierror.APIError{
				Detail: "too many requests, slow down",
			})
			return
		}
		c.Next()
	}
}
