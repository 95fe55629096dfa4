package middleware

import (
	"log/slog"
	"math"
	"net/http"

	"listable/internal/pkg/metrics"
	"listable/internal/pkg/ratelimit"

	"github.com/gin-gonic/gin"
)

// RateLimit 按客户端 IP 限流，超出配额时返回 429 与 retry_after（秒）。
//
// 限流器出错时放行请求。
func RateLimit(limiter ratelimit.Limiter, scope string, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limiter == nil {
			c.Next()
			return
		}
		allowed, wait, err := limiter.Allow(c.Request.Context(), scope+":"+c.ClientIP())
		if err != nil {
			if logger != nil {
				logger.Warn("rate limiter unavailable",
					slog.String("scope", scope),
					slog.String("error", err.Error()))
			}
			c.Next()
			return
		}
		if !allowed {
			metrics.ObserveRateLimited(scope)
			retryAfter := int(math.Ceil(wait.Seconds()))
			if retryAfter < 1 {
				retryAfter = 1
			}
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":       "too many requests",
				"retry_after": retryAfter,
			})
			return
		}
		c.Next()
	}
}
