package cached

import (
	"context"
	"strconv"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"user-account-service/internal/adapter/cache"
	domain "user-account-service/internal/domain/user"
	"user-account-service/internal/usecase/user"
)

// DefaultRedeleteDelay is how long after a write the cache entry is dropped a second time.
// It covers readers that loaded the old row before the write and cache it afterwards.
const DefaultRedeleteDelay = 500 * time.Millisecond

const redeleteTimeout = 2 * time.Second

// CachedUserRepository implements user.Repository with caching support.
// It wraps a persistent repository (DB) and a cache implementation.
type CachedUserRepository struct {
	dbRepo        user.Repository
	cache         cache.UserCache
	log           *zap.Logger
	group         singleflight.Group
	redeleteDelay time.Duration
}

// NewCachedUserRepository creates a new instance of CachedUserRepository.
func NewCachedUserRepository(dbRepo user.Repository, cache cache.UserCache, log *zap.Logger) *CachedUserRepository {
	return &CachedUserRepository{
		dbRepo:        dbRepo,
		cache:         cache,
		log:           log,
		redeleteDelay: DefaultRedeleteDelay,
	}
}

// List delegates to the DB repository. Pages are not cached.
func (r *CachedUserRepository) List(ctx context.Context, page domain.Page) ([]domain.User, error) {
	return r.dbRepo.List(ctx, page)
}

// Exists answers from the cache when the user is cached.
func (r *CachedUserRepository) Exists(ctx context.Context, id int64) (bool, error) {
	if r.cache != nil {
		cachedUser, err := r.cache.Get(ctx, id)
		if err != nil {
			r.log.Warn("cache get error, falling back to database", zap.Int64("id", id), zap.Error(err))
		} else if cachedUser != nil {
			return true, nil
		}
	}
	return r.dbRepo.Exists(ctx, id)
}

// GetByID retrieves a user by ID using Cache-Aside pattern.
func (r *CachedUserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	if r.cache != nil {
		cachedUser, err := r.cache.Get(ctx, id)
		if err != nil {
			r.log.Warn("cache get error, falling back to database", zap.Int64("id", id), zap.Error(err))
		} else if cachedUser != nil {
			r.log.Debug("user retrieved from cache", zap.Int64("id", id))
			return cachedUser, nil
		}
	}

	// Concurrent misses for one id share a single database read.
	result, err, shared := r.group.Do(strconv.FormatInt(id, 10), func() (any, error) {
		u, err := r.dbRepo.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}

		if r.cache != nil {
			if err := r.cache.Set(ctx, u); err != nil {
				r.log.Warn("failed to cache user", zap.Int64("id", id), zap.Error(err))
			}
		}
		return u, nil
	})
	if err != nil {
		return nil, err
	}
	if shared {
		r.log.Debug("user read shared across callers", zap.Int64("id", id))
	}

	// Callers may mutate the result, so each gets its own copy.
	u := *result.(*domain.User)
	return &u, nil
}

// ExistsByLoginSince delegates to the DB repository.
func (r *CachedUserRepository) ExistsByLoginSince(ctx context.Context, login string, since time.Time) (bool, error) {
	return r.dbRepo.ExistsByLoginSince(ctx, login, since)
}

// ExistsActiveAdmin delegates to the DB repository.
func (r *CachedUserRepository) ExistsActiveAdmin(ctx context.Context) (bool, error) {
	return r.dbRepo.ExistsActiveAdmin(ctx)
}

// Create delegates to the DB repository.
func (r *CachedUserRepository) Create(ctx context.Context, u *domain.User) (int64, error) {
	return r.dbRepo.Create(ctx, u)
}

// Update updates the user in DB and invalidates the cache.
func (r *CachedUserRepository) Update(ctx context.Context, u *domain.User, from domain.State) error {
	if err := r.dbRepo.Update(ctx, u, from); err != nil {
		return err
	}
	r.invalidate(ctx, u.ID)
	return nil
}

// LockLogin delegates to the DB repository.
func (r *CachedUserRepository) LockLogin(ctx context.Context, login string) error {
	return r.dbRepo.LockLogin(ctx, login)
}

// Transaction runs fn on the DB repository directly, bypassing the cache for
// reads, and invalidates every updated user once the transaction has committed.
func (r *CachedUserRepository) Transaction(ctx context.Context, fn func(repo user.Repository) error) error {
	var dirty []int64
	err := r.dbRepo.Transaction(ctx, func(tx user.Repository) error {
		return fn(&txRepository{Repository: tx, dirty: &dirty})
	})
	if err != nil {
		return err
	}
	r.invalidate(ctx, dirty...)
	return nil
}

// invalidate drops the entries now and once more after redeleteDelay.
func (r *CachedUserRepository) invalidate(ctx context.Context, ids ...int64) {
	if r.cache == nil || len(ids) == 0 {
		return
	}
	r.deleteEntries(ctx, ids)

	if r.redeleteDelay <= 0 {
		return
	}
	base := context.WithoutCancel(ctx)
	time.AfterFunc(r.redeleteDelay, func() {
		ctx, cancel := context.WithTimeout(base, redeleteTimeout)
		defer cancel()
		r.deleteEntries(ctx, ids)
	})
}

func (r *CachedUserRepository) deleteEntries(ctx context.Context, ids []int64) {
	if err := r.cache.DeleteMultiple(ctx, ids...); err != nil {
		r.log.Warn("failed to invalidate cache", zap.Int64s("ids", ids), zap.Error(err))
	}
}

// txRepository records which users were written inside a transaction.
type txRepository struct {
	user.Repository
	dirty *[]int64
}

func (t *txRepository) Update(ctx context.Context, u *domain.User, from domain.State) error {
	if err := t.Repository.Update(ctx, u, from); err != nil {
		return err
	}
	*t.dirty = append(*t.dirty, u.ID)
	return nil
}

func (t *txRepository) Transaction(_ context.Context, fn func(repo user.Repository) error) error {
	return fn(t)
}
