package middleware

import (
	"net/http"
	"sync"
	"time"

	"merchify/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Every chat turn can fan out into model calls, so the per-client budget
// is deliberately modest: 60 requests per minute with a burst of 10.
const (
	requestsPerMinute = 60
	burstSize         = 10
)

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

type limiterRegistry struct {
	mu      sync.Mutex
	clients map[string]*clientLimiter
}

var registry = &limiterRegistry{clients: make(map[string]*clientLimiter)}

func (r *limiterRegistry) limiterFor(ip string) *rate.Limiter {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.clients[ip]
	if !ok {
		entry = &clientLimiter{
			limiter: rate.NewLimiter(rate.Every(time.Minute/requestsPerMinute), burstSize),
		}
		r.clients[ip] = entry
	}
	entry.lastSeen = time.Now()
	return entry.limiter
}

// sweep drops limiters for clients idle longer than maxIdle.
func (r *limiterRegistry) sweep(maxIdle time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cutoff := time.Now().Add(-maxIdle)
	for ip, entry := range r.clients {
		if entry.lastSeen.Before(cutoff) {
			delete(r.clients, ip)
		}
	}
}

// RateLimitMiddleware throttles requests per client IP.
func RateLimitMiddleware() gin.HandlerFunc {
	go func() {
		for range time.Tick(10 * time.Minute) {
			registry.sweep(30 * time.Minute)
		}
	}()

	return func(c *gin.Context) {
		ip := getClientIP(c)
		if !registry.limiterFor(ip).Allow() {
			utils.GetLogger().Warn("Rate limit exceeded", zap.String("ip", ip))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Rate limit exceeded. Try again later."})
			return
		}
		c.Next()
	}
}
