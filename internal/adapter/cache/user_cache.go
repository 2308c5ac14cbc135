package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	domain "user-account-service/internal/domain/user"
)

// UserCache defines the interface for user caching operations.
type UserCache interface {
	// Get retrieves a user from cache by ID.
	// Returns nil if user is not found in cache.
	Get(ctx context.Context, id int64) (*domain.User, error)

	// Set stores a user in cache with the configured TTL.
	Set(ctx context.Context, user *domain.User) error

	// Delete removes a user from cache by ID.
	Delete(ctx context.Context, id int64) error

	// DeleteMultiple removes multiple users from cache by IDs.
	DeleteMultiple(ctx context.Context, ids ...int64) error
}

// cachedUser is the JSON document stored per user.
// Group and state are kept whole so a hit needs no catalog lookup.
type cachedUser struct {
	ID          int64     `json:"id"`
	Login       string    `json:"login"`
	Password    string    `json:"password"`
	CreatedDate time.Time `json:"created_date"`
	Group       cachedRef `json:"group"`
	State       cachedRef `json:"state"`
}

type cachedRef struct {
	ID          int64  `json:"id"`
	Code        string `json:"code"`
	Description string `json:"description"`
}

func fromDomain(u *domain.User) cachedUser {
	return cachedUser{
		ID:          u.ID,
		Login:       u.Login,
		Password:    u.Password,
		CreatedDate: u.CreatedDate.UTC(),
		Group:       cachedRef{ID: u.Group.ID, Code: string(u.Group.Code), Description: u.Group.Description},
		State:       cachedRef{ID: u.State.ID, Code: string(u.State.Code), Description: u.State.Description},
	}
}

func (c cachedUser) toDomain() *domain.User {
	return &domain.User{
		ID:          c.ID,
		Login:       c.Login,
		Password:    c.Password,
		CreatedDate: c.CreatedDate.UTC(),
		Group:       domain.Group{ID: c.Group.ID, Code: domain.GroupCode(c.Group.Code), Description: c.Group.Description},
		State:       domain.State{ID: c.State.ID, Code: domain.StateCode(c.State.Code), Description: c.State.Description},
	}
}

// RedisUserCache implements UserCache using Redis as the backing store.
type RedisUserCache struct {
	client *redis.Client
	ttl    time.Duration
	log    *zap.Logger
}

// NewRedisUserCache creates a new Redis-backed user cache.
func NewRedisUserCache(client *redis.Client, ttl time.Duration, log *zap.Logger) *RedisUserCache {
	return &RedisUserCache{
		client: client,
		ttl:    ttl,
		log:    log,
	}
}

// Key returns the Redis key holding the user with the given id.
func Key(id int64) string {
	return fmt.Sprintf("user-account:user:%d", id)
}

// Get retrieves a user from Redis cache.
func (c *RedisUserCache) Get(ctx context.Context, id int64) (*domain.User, error) {
	data, err := c.client.Get(ctx, Key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		c.log.Debug("cache miss", zap.Int64("user_id", id))
		return nil, nil
	}
	if err != nil {
		c.log.Error("failed to get from cache", zap.Int64("user_id", id), zap.Error(err))
		return nil, err
	}

	var entry cachedUser
	if err := json.Unmarshal(data, &entry); err != nil {
		c.log.Error("failed to unmarshal cached user", zap.Int64("user_id", id), zap.Error(err))
		return nil, err
	}

	c.log.Debug("cache hit", zap.Int64("user_id", id))
	return entry.toDomain(), nil
}

// Set stores a user in Redis cache with TTL.
func (c *RedisUserCache) Set(ctx context.Context, user *domain.User) error {
	if user == nil {
		return errors.New("cannot cache nil user")
	}

	data, err := json.Marshal(fromDomain(user))
	if err != nil {
		c.log.Error("failed to marshal user for cache", zap.Int64("user_id", user.ID), zap.Error(err))
		return err
	}

	if err := c.client.Set(ctx, Key(user.ID), data, c.ttl).Err(); err != nil {
		c.log.Error("failed to set cache", zap.Int64("user_id", user.ID), zap.Error(err))
		return err
	}

	c.log.Debug("cached user", zap.Int64("user_id", user.ID), zap.Duration("ttl", c.ttl))
	return nil
}

// Delete removes a user from Redis cache.
func (c *RedisUserCache) Delete(ctx context.Context, id int64) error {
	return c.DeleteMultiple(ctx, id)
}

// DeleteMultiple removes multiple users from Redis cache.
func (c *RedisUserCache) DeleteMultiple(ctx context.Context, ids ...int64) error {
	if len(ids) == 0 {
		return nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = Key(id)
	}

	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		c.log.Error("failed to delete from cache", zap.Int64s("user_ids", ids), zap.Error(err))
		return err
	}

	c.log.Debug("invalidated cached users", zap.Int64s("user_ids", ids))
	return nil
}
