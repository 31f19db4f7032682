package middleware

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"mallhub/internal/infrastructure/ratelimit"
	"mallhub/internal/shared/logger"
	"mallhub/internal/shared/utils"
)

// RateLimiter throttles the public webhook receiver per tenant, provider and
// client IP so a flood on one tenant cannot starve the others.
type RateLimiter struct {
	limiter   ratelimit.RateLimiter
	perMinute int
	logger    logger.Interface
}

// NewRateLimiter returns a limiter that lets everything through when
// limiter is nil or perMinute is not positive.
func NewRateLimiter(limiter ratelimit.RateLimiter, perMinute int, logger logger.Interface) *RateLimiter {
	return &RateLimiter{
		limiter:   limiter,
		perMinute: perMinute,
		logger:    logger,
	}
}

func (rl *RateLimiter) Limit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if rl.limiter == nil || rl.perMinute <= 0 {
			c.Next()
			return
		}

		key := fmt.Sprintf("webhook:%s:%s:%s", GetTenant(c), c.Param("provider"), c.ClientIP())
		allowed, err := rl.limiter.Allow(c.Request.Context(), key, ratelimit.RateLimitConfig{
			RequestsPerMinute: rl.perMinute,
		})
		if err != nil {
			// Fail open when Redis is unavailable.
			rl.logger.Warnw("rate limiter unavailable", "error", err, "key", key)
			c.Next()
			return
		}

		if !allowed {
			c.Header("Retry-After", strconv.Itoa(60))
			utils.ErrorResponse(c, http.StatusTooManyRequests, "rate limit exceeded, please try again later")
			c.Abort()
			return
		}

		c.Next()
	}
}
