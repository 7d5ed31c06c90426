package middleware

import (
	"net/http"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

type rateLimiter struct {
	requests map[string]*clientWindow
	mu       sync.Mutex
	limit    int
	window   time.Duration
}

type clientWindow struct {
	count     int
	resetTime time.Time
}

var limiter *rateLimiter

func init() {
	limit := 120
	if v, err := strconv.Atoi(os.Getenv("RATE_LIMIT_PER_MINUTE")); err == nil && v > 0 {
		limit = v
	}

	limiter = &rateLimiter{
		requests: make(map[string]*clientWindow),
		limit:    limit,
		window:   time.Minute,
	}

	go func() {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for range ticker.C {
			limiter.cleanup()
		}
	}()
}

// RateLimiter throttles clients per IP over a one-minute window. The counter
// update happens under the lock; the request itself runs outside it so one
// slow handler cannot serialize everything else in flight.
func RateLimiter() gin.HandlerFunc {
	return func(c *gin.Context) {
		allowed, retryAfter := limiter.allow(c.ClientIP())
		if !allowed {
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":       "Rate limit exceeded",
				"retry_after": retryAfter,
			})
			c.Abort()
			return
		}
		c.Next()
	}
}

func (rl *rateLimiter) allow(ip string) (bool, float64) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	client, exists := rl.requests[ip]

	if !exists || now.After(client.resetTime) {
		rl.requests[ip] = &clientWindow{
			count:     1,
			resetTime: now.Add(rl.window),
		}
		return true, 0
	}

	if client.count >= rl.limit {
		return false, client.resetTime.Sub(now).Seconds()
	}

	client.count++
	return true, 0
}

func (rl *rateLimiter) cleanup() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	for ip, client := range rl.requests {
		if now.After(client.resetTime) {
			delete(rl.requests, ip)
		}
	}
}
