package middleware

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/uro-calc-engine/internal/domain"
)

// RateLimiter keeps one token bucket per client IP.
type RateLimiter struct {
	logger  *logrus.Logger
	config  domain.RateLimitConfig
	clients map[string]*rate.Limiter
	mu      sync.Mutex
}

// NewRateLimiter creates a per-client rate limiter.
func NewRateLimiter(logger *logrus.Logger, config domain.RateLimitConfig) *RateLimiter {
	return &RateLimiter{
		logger:  logger,
		config:  config,
		clients: make(map[string]*rate.Limiter),
	}
}

// Allow reports whether the client may make a request now.
func (rl *RateLimiter) Allow(clientID string) bool {
	if !rl.config.Enabled {
		return true
	}
	return rl.limiter(clientID).Allow()
}

func (rl *RateLimiter) limiter(clientID string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if l, ok := rl.clients[clientID]; ok {
		return l
	}

	// Forget every client once the table is full; buckets refill quickly.
	if rl.config.MaxClients > 0 && len(rl.clients) >= rl.config.MaxClients {
		rl.logger.WithField("clients", len(rl.clients)).Debug("Rate limiter table full, resetting")
		clear(rl.clients)
	}

	l := rate.NewLimiter(rate.Limit(rl.config.RequestsPerSecond), rl.config.Burst)
	rl.clients[clientID] = l
	return l
}

// Clients returns the number of tracked clients.
func (rl *RateLimiter) Clients() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.clients)
}

// Middleware rejects requests over the client's rate with 429.
func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		clientIP := c.ClientIP()
		if !rl.Allow(clientIP) {
			rl.logger.WithFields(logrus.Fields{
				"client_ip":      clientIP,
				"correlation_id": c.GetString(CorrelationIDKey),
			}).Warn("Request denied: rate limit exceeded")

			c.AbortWithStatusJSON(http.StatusTooManyRequests, domain.NewAPIError(
				domain.ErrCodeRateLimit,
				"Rate limit exceeded",
				"",
				c.GetString(CorrelationIDKey),
			))
			return
		}
		c.Next()
	}
}
