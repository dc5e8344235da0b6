package middleware

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Juliodvp29/task-management-api/internal/domain/interfaces"
	"github.com/Juliodvp29/task-management-api/internal/utils/metrics"
)

// RateLimit throttles requests per client IP and route using a fixed
// window counter. Counter failures fail open: blocking logins because the
// counter store is down would be worse than letting a burst through.
func RateLimit(counters interfaces.CounterStore, logger *zap.Logger, limit int64, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := fmt.Sprintf("ratelimit:%s:%s", c.ClientIP(), c.FullPath())

		count, err := counters.Increment(c.Request.Context(), key, window)
		if err != nil {
			logger.Warn("rate limit counter unavailable", zap.Error(err))
			c.Next()
			return
		}

		remaining := limit - count
		if remaining < 0 {
			remaining = 0
		}
		c.Header("X-RateLimit-Limit", strconv.FormatInt(limit, 10))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))

		if count > limit {
			metrics.RateLimitExceededTotal.Inc()
			c.Header("Retry-After", strconv.FormatInt(int64(window.Seconds()), 10))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"success": false,
				"message": "too many requests",
				"errors": []gin.H{
					{"code": "RATE_LIMIT_EXCEEDED", "message": "too many requests, try again later"},
				},
			})
			return
		}
		c.Next()
	}
}
