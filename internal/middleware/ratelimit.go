package middleware

import (
	"github.com/gin-gonic/gin"
	apierrors "github.com/yukikurage/taskboard-api/internal/errors"
	"github.com/yukikurage/taskboard-api/internal/logging"
	"github.com/yukikurage/taskboard-api/internal/ratelimit"
)

// RateLimit rejects clients that exceed the limiter's budget with 429.
// Limiter failures let the request through.
func RateLimit(limiter ratelimit.Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.ClientIP() + ":" + c.FullPath()

		allowed, err := limiter.Allow(c.Request.Context(), key)
		if err != nil {
			logging.FromContext(c.Request.Context()).Warn("rate limit check failed", "key", key, "error", err)
			c.Next()
			return
		}
		if !allowed {
			apierrors.TooManyRequests(c, "")
			return
		}

		c.Next()
	}
}
