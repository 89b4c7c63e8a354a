package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// ipLimiter hands out one token bucket per client IP and drops buckets
// that have gone quiet.
type ipLimiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	limit   rate.Limit
	burst   int
}

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func newIPLimiter(limit rate.Limit, burst int) *ipLimiter {
	l := &ipLimiter{
		buckets: make(map[string]*bucket),
		limit:   limit,
		burst:   burst,
	}
	go l.reap()
	return l
}

func (l *ipLimiter) get(ip string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	b, ok := l.buckets[ip]
	if !ok {
		b = &bucket{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.buckets[ip] = b
	}
	b.lastSeen = time.Now()
	return b.limiter
}

func (l *ipLimiter) reap() {
	for {
		time.Sleep(time.Minute)
		l.mu.Lock()
		for ip, b := range l.buckets {
			if time.Since(b.lastSeen) > 3*time.Minute {
				delete(l.buckets, ip)
			}
		}
		l.mu.Unlock()
	}
}

// RateLimit applies a per-IP request budget across the whole site:
// 5 requests per second with a burst of 20, enough headroom for a page
// load pulling chart data.
func RateLimit() gin.HandlerFunc {
	l := newIPLimiter(rate.Every(200*time.Millisecond), 20)

	return func(c *gin.Context) {
		if !l.get(c.ClientIP()).Allow() {
			c.AbortWithStatus(http.StatusTooManyRequests)
			return
		}
		c.Next()
	}
}
