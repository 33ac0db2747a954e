package middlewares

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/food-delivery-web/utils"
	"golang.org/x/time/rate"
)

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter keeps a token bucket per client IP.
type RateLimiter struct {
	limit   rate.Limit
	burst   int
	idleTTL time.Duration
	message string

	mu  sync.Mutex
	ips map[string]*visitor
}

func NewRateLimiter(rps, burst int) *RateLimiter {
	if rps <= 0 {
		rps = 20
	}
	if burst < rps {
		burst = rps
	}
	return &RateLimiter{
		limit:   rate.Limit(rps),
		burst:   burst,
		idleTTL: 10 * time.Minute,
		message: "Too many requests, please slow down",
		ips:     make(map[string]*visitor),
	}
}

// NewStrictRateLimiter is for login and registration: 5 attempts per minute per IP.
func NewStrictRateLimiter() *RateLimiter {
	rl := NewRateLimiter(1, 5)
	rl.limit = rate.Every(time.Minute / 5)
	rl.message = "Too many attempts, please wait a moment and try again"
	return rl
}

func (rl *RateLimiter) get(ip string, now time.Time) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	v, ok := rl.ips[ip]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.ips[ip] = v
	}
	v.lastSeen = now
	return v.limiter
}

// cleanup drops visitors idle for longer than idleTTL.
func (rl *RateLimiter) cleanup(now time.Time) int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	dropped := 0
	for ip, v := range rl.ips {
		if now.Sub(v.lastSeen) > rl.idleTTL {
			delete(rl.ips, ip)
			dropped++
		}
	}
	return dropped
}

// StartCleanup sweeps idle visitors every interval for the life of the process.
func (rl *RateLimiter) StartCleanup(interval time.Duration) *RateLimiter {
	ticker := time.NewTicker(interval)
	go func() {
		for now := range ticker.C {
			rl.cleanup(now)
		}
	}()
	return rl
}

func (rl *RateLimiter) RateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rl.get(c.ClientIP(), time.Now()).Allow() {
			utils.RespondJSON(c, http.StatusTooManyRequests, rl.message, nil)
			c.Abort()
			return
		}
		c.Next()
	}
}
