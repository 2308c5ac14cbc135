package redis

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Config holds Redis connection configuration.
type Config struct {
	Host        string
	Port        string
	Password    string
	DB          int
	MaxRetries  int
	PoolSize    int
	MinIdleConn int
	ClientName  string
}

const (
	connectTimeout = 5 * time.Second
	ioTimeout      = 3 * time.Second
)

// Addr returns the host:port address of the server.
func (c Config) Addr() string {
	return net.JoinHostPort(c.Host, c.Port)
}

// Client wraps redis.Client with logging and health checks.
type Client struct {
	*redis.Client
	log *zap.Logger
}

// NewClient opens a connection pool and pings the server once, bounded by
// connectTimeout and ctx.
func NewClient(ctx context.Context, cfg Config, log *zap.Logger) (*Client, error) {
	addr := cfg.Addr()
	opts := &redis.Options{
		Addr:         addr,
		ClientName:   cfg.ClientName,
		Password:     cfg.Password,
		DB:           cfg.DB,
		MaxRetries:   cfg.MaxRetries,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConn,
		DialTimeout:  connectTimeout,
		ReadTimeout:  ioTimeout,
		WriteTimeout: ioTimeout,
	}
	rdb := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", addr, err)
	}

	log = log.With(zap.String("redis_addr", addr), zap.Int("redis_db", cfg.DB))
	log.Info("Redis connected", zap.Int("pool_size", opts.PoolSize), zap.Int("min_idle_conns", opts.MinIdleConns))

	return &Client{Client: rdb, log: log}, nil
}

// Healthy reports whether the server answers a ping within the context deadline.
func (c *Client) Healthy(ctx context.Context) error {
	if err := c.Client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}
	return nil
}

// Close gracefully closes the Redis connection.
func (c *Client) Close() error {
	c.log.Info("closing Redis connection")
	return c.Client.Close()
}
