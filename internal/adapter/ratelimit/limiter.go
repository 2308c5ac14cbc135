package ratelimit

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Config holds configuration for the rate limiter.
type Config struct {
	RequestsPerSecond float64
	BurstCapacity     int
	Enabled           bool
}

// tokenBucket refills at rate tokens per second up to capacity and consumes one
// token per call. Timestamps are milliseconds supplied by the caller.
var tokenBucket = redis.NewScript(`
local key = KEYS[1]
local rate = tonumber(ARGV[1])
local capacity = tonumber(ARGV[2])
local now = tonumber(ARGV[3])
local ttl = tonumber(ARGV[4])

local bucket = redis.call('HMGET', key, 'last_refill', 'tokens')
local last_refill = tonumber(bucket[1]) or now
local tokens = tonumber(bucket[2]) or capacity

local elapsed = math.max(0, now - last_refill)
tokens = math.min(capacity, tokens + elapsed * rate / 1000)

local allowed = 0
if tokens >= 1 then
	tokens = tokens - 1
	allowed = 1
end

redis.call('HSET', key, 'last_refill', now, 'tokens', tokens)
redis.call('PEXPIRE', key, ttl)
return allowed
`)

// Limiter is a Redis token bucket shared by the HTTP and gRPC surfaces.
type Limiter struct {
	client *redis.Client
	config Config
	log    *zap.Logger
	now    func() time.Time
}

// New creates a limiter. A nil client or a disabled config allows every request.
func New(client *redis.Client, config Config, log *zap.Logger) *Limiter {
	return &Limiter{
		client: client,
		config: config,
		log:    log,
		now:    time.Now,
	}
}

// Enabled reports whether requests are actually limited.
func (l *Limiter) Enabled() bool {
	return l != nil && l.client != nil && l.config.Enabled
}

// Allow consumes one token from the bucket identified by key.
// Redis failures allow the request.
func (l *Limiter) Allow(ctx context.Context, key string) bool {
	if !l.Enabled() {
		return true
	}

	// Keep an idle bucket around long enough to refill completely.
	ttl := time.Duration(float64(l.config.BurstCapacity)/l.config.RequestsPerSecond*float64(time.Second)) + time.Second

	allowed, err := tokenBucket.Run(ctx, l.client, []string{"ratelimit:tb:" + key},
		l.config.RequestsPerSecond,
		l.config.BurstCapacity,
		l.now().UnixMilli(),
		ttl.Milliseconds(),
	).Int64()
	if err != nil {
		l.log.Warn("rate limiter redis error, allowing request", zap.String("key", key), zap.Error(err))
		return true
	}

	if allowed == 0 {
		l.log.Warn("rate limit exceeded",
			zap.String("key", key),
			zap.Float64("limit", l.config.RequestsPerSecond),
			zap.Int("burst", l.config.BurstCapacity),
		)
		return false
	}
	return true
}

// Config returns the limiter settings.
func (l *Limiter) Config() Config {
	return l.config
}
