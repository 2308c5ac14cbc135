package router

import (
	"context"
	"net/http"
	"sort"
	"time"

	"user-account-service/internal/adapter/gin/handler"
	"user-account-service/internal/adapter/gin/middleware"
	"user-account-service/internal/adapter/ratelimit"

	"github.com/gin-contrib/expvar"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// HealthCheck checks one dependency. A nil error means healthy.
type HealthCheck func(ctx context.Context) error

// Options configures the router
type Options struct {
	ServiceName  string
	Production   bool
	RateLimiter  *ratelimit.Limiter
	HealthChecks map[string]HealthCheck
}

// SetupRouter configures and returns a Gin router with all routes and middleware
func SetupRouter(userHandler *handler.UserHandler, opts Options, log *zap.Logger) *gin.Engine {
	if opts.Production {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Global middleware
	router.Use(middleware.Recovery(log))
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(log))
	router.Use(middleware.SecureHeaders(opts.Production))

	router.GET("/health", healthHandler(opts))
	router.GET("/debug/vars", expvar.Handler())

	users := router.Group("/api/user")
	users.Use(middleware.RateLimiter(opts.RateLimiter))
	{
		users.GET("/all", userHandler.ListUsers)
		users.GET("/:id", userHandler.GetUser)
		users.POST("", userHandler.CreateUser)
		users.DELETE("/:id", userHandler.BlockUser)
	}

	return router
}

func healthHandler(opts Options) gin.HandlerFunc {
	names := make([]string, 0, len(opts.HealthChecks))
	for name := range opts.HealthChecks {
		names = append(names, name)
	}
	sort.Strings(names)

	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		status := http.StatusOK
		checks := gin.H{}
		for _, name := range names {
			if err := opts.HealthChecks[name](ctx); err != nil {
				status = http.StatusServiceUnavailable
				checks[name] = err.Error()
				continue
			}
			checks[name] = "ok"
		}

		state := "healthy"
		if status != http.StatusOK {
			state = "unhealthy"
		}
		c.JSON(status, gin.H{
			"status":  state,
			"service": opts.ServiceName,
			"checks":  checks,
		})
	}
}
