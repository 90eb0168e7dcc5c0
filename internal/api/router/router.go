package router

import (
	"log/slog"

	"github.com/cuongbtq/jobfeed/internal/api/handler"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// Options configures cross-cutting router behaviour
type Options struct {
	Auth           AuthConfig
	RateLimit      RateLimitConfig
	AllowedOrigins []string
	// TrustedProxies lists proxy IPs or CIDRs whose X-Forwarded-For is honoured.
	// Empty means the client IP is always the direct peer.
	TrustedProxies []string
	// Redis backs the rate limiter; nil disables rate limiting.
	Redis *redis.Client
}

// SetupRouter configures and returns the Gin router with all routes
func SetupRouter(deps *handler.Dependencies, opts Options) *gin.Engine {
	r := gin.New()
	if err := r.SetTrustedProxies(opts.TrustedProxies); err != nil {
		deps.Logger.Error("Invalid trusted proxies, trusting none", slog.Any("error", err))
		_ = r.SetTrustedProxies(nil)
	}

	r.Use(gin.Recovery())
	r.Use(LoggerMiddleware(deps.Logger))
	r.Use(CORSMiddleware(opts.AllowedOrigins))

	healthHandler := handler.NewHealthHandler(deps)
	quickPostHandler := handler.NewQuickPostHandler(deps)
	moderationHandler := handler.NewModerationHandler(deps)

	r.GET("/health", healthHandler.Health)

	v1 := r.Group("/api/v1")
	{
		quickPosts := []gin.HandlerFunc{OptionalUserMiddleware(opts.Auth)}
		if opts.Redis != nil {
			limit := opts.RateLimit
			if limit.Prefix == "" {
				limit.Prefix = "quickpost"
			}
			quickPosts = append([]gin.HandlerFunc{RateLimitMiddleware(opts.Redis, limit, deps.Logger)}, quickPosts...)
		} else {
			deps.Logger.Warn("Redis not configured, quick-post rate limiting disabled")
		}
		quickPosts = append(quickPosts, quickPostHandler.Create)

		// POST /api/v1/quick-posts - anonymous or authenticated submission
		v1.POST("/quick-posts", quickPosts...)

		admin := v1.Group("/admin", AdminAuthMiddleware(opts.Auth))
		{
			jobs := admin.Group("/jobs")
			jobs.GET("/pending", moderationHandler.ListPending)
			jobs.POST("/:job_id/approve", moderationHandler.Approve)
			jobs.POST("/:job_id/reject", moderationHandler.Reject)
			jobs.POST("/:job_id/close", moderationHandler.Close)
		}
	}

	return r
}
