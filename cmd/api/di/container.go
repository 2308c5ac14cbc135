package di

import (
	"context"
	"fmt"
	"time"

	"user-account-service/cmd/api/infrastructure"
	"user-account-service/internal/adapter/cache"
	"user-account-service/internal/adapter/db/postgres"
	ginhandler "user-account-service/internal/adapter/gin/handler"
	ginrouter "user-account-service/internal/adapter/gin/router"
	grpcadapter "user-account-service/internal/adapter/grpc"
	"user-account-service/internal/adapter/ratelimit"
	"user-account-service/internal/adapter/repository/cached"
	"user-account-service/internal/config"
	"user-account-service/internal/usecase/user"
	redisclient "user-account-service/pkg/redis"
	"user-account-service/pkg/security"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Container holds all application dependencies
type Container struct {
	Config       *config.Config
	Logger       *zap.Logger
	DB           *gorm.DB
	RedisClient  *redisclient.Client
	UserUC       user.Usecase
	RateLimiter  *ratelimit.Limiter
	GinHandler   *ginhandler.UserHandler
	GRPCServer   *grpcadapter.UserServer
	HealthChecks map[string]ginrouter.HealthCheck
}

// NewContainer creates and initializes all application dependencies
func NewContainer(ctx context.Context, cfg *config.Config, l *zap.Logger) (*Container, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	db, err := infrastructure.NewDatabase(cfg, l)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	c := &Container{
		Config: cfg,
		Logger: l,
		DB:     db,
		HealthChecks: map[string]ginrouter.HealthCheck{
			"database": infrastructure.PingDatabase(db),
		},
	}

	rdb, err := infrastructure.NewRedisClient(ctx, cfg, l)
	if err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("failed to initialize Redis: %w", err)
	}
	c.RedisClient = rdb

	refs, err := postgres.NewReferenceRepoPG(ctx, db, l)
	if err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("failed to load reference data: %w", err)
	}

	var repo user.Repository = postgres.NewUserRepoPG(db, l)
	var limiterClient *goredis.Client
	if rdb != nil {
		userCache := cache.NewRedisUserCache(rdb.Client, time.Duration(cfg.Redis.CacheTTL)*time.Second, l)
		repo = cached.NewCachedUserRepository(repo, userCache, l)
		limiterClient = rdb.Client
		c.HealthChecks["redis"] = rdb.Healthy
	}

	c.RateLimiter = ratelimit.New(limiterClient, ratelimit.Config{
		RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
		BurstCapacity:     cfg.RateLimit.BurstCapacity,
		Enabled:           cfg.RateLimit.Enabled,
	}, l)

	c.UserUC = user.New(repo, refs, l,
		user.WithMaxPageSize(cfg.Users.MaxPageSize),
		user.WithRecentLoginWindow(time.Duration(cfg.Users.RecentLoginWindowSeconds)*time.Second),
		user.WithPasswordHasher(security.NewBcryptHasher(cfg.Users.BcryptCost)),
	)

	c.GinHandler = ginhandler.NewUserHandler(c.UserUC, l)
	c.GRPCServer = grpcadapter.NewUserServer(c.UserUC, l)

	return c, nil
}

// Close closes all resources held by the container
func (c *Container) Close() error {
	var errs []error

	if c.RedisClient != nil {
		if err := c.RedisClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close Redis: %w", err))
		}
	}

	if c.DB != nil {
		if err := infrastructure.CloseDatabase(c.DB); err != nil {
			errs = append(errs, fmt.Errorf("failed to close database: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("container close errors: %v", errs)
	}

	return nil
}
