package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// Counter increments a windowed counter and returns the new value.
type Counter interface {
	Incr(ctx context.Context, key string, window time.Duration) (int64, error)
}

// RateLimiter allows limit requests per client IP per window. When the counter
// store is unavailable requests are let through.
func RateLimiter(counter Counter, limit int, window time.Duration, log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := "rate-limit:" + c.FullPath() + ":" + c.ClientIP()

		count, err := counter.Incr(c.Request.Context(), key, window)
		if err != nil {
			log.WarnContext(c.Request.Context(), "rate limiter unavailable", "error", err)
			c.Next()
			return
		}

		remaining := int64(limit) - count
		if remaining < 0 {
			c.Header("X-RateLimit-Remaining", "0")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Rate limit exceeded"})
			return
		}

		c.Header("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))
		c.Next()
	}
}
