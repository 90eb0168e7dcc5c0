package router

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// RateLimitConfig is a fixed-window limit per client IP
type RateLimitConfig struct {
	Requests int
	Window   time.Duration
	Prefix   string
}

// RateLimitMiddleware counts requests per IP in fixed windows stored in
// Redis. Redis failures let the request through.
func RateLimitMiddleware(rdb *redis.Client, cfg RateLimitConfig, logger *slog.Logger) gin.HandlerFunc {
	now := time.Now
	return func(c *gin.Context) {
		window := now().UnixNano() / int64(cfg.Window)
		key := fmt.Sprintf("ratelimit:%s:%s:%d", cfg.Prefix, c.ClientIP(), window)
		ctx := c.Request.Context()

		count, err := rdb.Incr(ctx, key).Result()
		if err != nil {
			logger.Warn("Rate limiter unavailable, allowing request", slog.Any("error", err))
			c.Next()
			return
		}
		if count == 1 {
			if err := rdb.Expire(ctx, key, cfg.Window).Err(); err != nil {
				logger.Warn("Failed to set rate limit expiry", slog.Any("error", err))
			}
		}

		remaining := int64(cfg.Requests) - count
		if remaining < 0 {
			remaining = 0
		}
		c.Header("X-RateLimit-Limit", strconv.Itoa(cfg.Requests))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))

		if count > int64(cfg.Requests) {
			reset := time.Duration((window+1)*int64(cfg.Window) - now().UnixNano())
			c.Header("Retry-After", strconv.Itoa(int(reset.Seconds())+1))
			logger.Info("Rate limit exceeded",
				slog.String("ip", c.ClientIP()),
				slog.String("path", c.Request.URL.Path),
			)
			abortJSON(c, http.StatusTooManyRequests, "Too many requests")
			return
		}

		c.Next()
	}
}
