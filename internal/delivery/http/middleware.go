package http

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// CORSMiddleware handles CORS for browser clients
func CORSMiddleware(allowedOrigins []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")

		// Check if origin is allowed
		if isAllowedOrigin(origin, allowedOrigins) {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
			c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
			c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS, PUT, DELETE")
			c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")
			c.Writer.Header().Set("Access-Control-Max-Age", "3600")
		}

		// Handle preflight requests
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// isAllowedOrigin checks if the origin is in the allowed list
func isAllowedOrigin(origin string, allowedOrigins []string) bool {
	for _, allowed := range allowedOrigins {
		// Support wildcard matching, e.g. https://*.pantrybase.dev
		if strings.HasSuffix(allowed, "*") {
			prefix := strings.TrimSuffix(allowed, "*")
			if strings.HasPrefix(origin, prefix) {
				return true
			}
		} else if origin == allowed {
			return true
		}
	}
	return false
}

const (
	// maxClientLimiters caps the per-IP limiter map so a scan of unique
	// source addresses cannot grow it without bound.
	maxClientLimiters = 4096

	// limiterIdleTTL is how long an IP may stay quiet before its limiter is
	// eligible for eviction.
	limiterIdleTTL = 10 * time.Minute
)

// clientLimiters is a bounded pool of per-IP rate limiters. When the pool is
// full, entries idle past limiterIdleTTL are swept; if none qualify,
// arbitrary entries are dropped until the cap holds. A dropped IP simply
// starts over with a fresh burst.
type clientLimiters struct {
	mu        sync.Mutex
	perMinute int
	max       int
	entries   map[string]*clientLimiter
}

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func newClientLimiters(perMinute, max int) *clientLimiters {
	return &clientLimiters{
		perMinute: perMinute,
		max:       max,
		entries:   make(map[string]*clientLimiter),
	}
}

func (p *clientLimiters) get(ip string) *rate.Limiter {
	p.mu.Lock()
	defer p.mu.Unlock()

	now := time.Now()
	if e, ok := p.entries[ip]; ok {
		e.lastSeen = now
		return e.limiter
	}
	if len(p.entries) >= p.max {
		p.evict(now)
	}
	l := rate.NewLimiter(rate.Limit(float64(p.perMinute)/60.0), p.perMinute)
	p.entries[ip] = &clientLimiter{limiter: l, lastSeen: now}
	return l
}

func (p *clientLimiters) evict(now time.Time) {
	for ip, e := range p.entries {
		if now.Sub(e.lastSeen) > limiterIdleTTL {
			delete(p.entries, ip)
		}
	}
	for ip := range p.entries {
		if len(p.entries) < p.max {
			break
		}
		delete(p.entries, ip)
	}
}

func (p *clientLimiters) size() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.entries)
}

// RateLimitMiddleware limits each client IP to perMinute requests per minute
// with a small burst. Disabled when perMinute is zero or negative.
func RateLimitMiddleware(perMinute int) gin.HandlerFunc {
	return rateLimit(perMinute, maxClientLimiters)
}

func rateLimit(perMinute, maxEntries int) gin.HandlerFunc {
	if perMinute <= 0 {
		return func(c *gin.Context) { c.Next() }
	}

	pool := newClientLimiters(perMinute, maxEntries)
	return func(c *gin.Context) {
		if !pool.get(c.ClientIP()).Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "rate limit exceeded",
			})
			return
		}
		c.Next()
	}
}

// LoggerMiddleware logs requests (simple version for now)
func LoggerMiddleware() gin.HandlerFunc {
	return gin.Logger()
}

// RecoveryMiddleware recovers from panics
func RecoveryMiddleware() gin.HandlerFunc {
	return gin.Recovery()
}
