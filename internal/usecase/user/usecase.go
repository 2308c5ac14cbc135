package user

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	domain "user-account-service/internal/domain/user"
	apperrors "user-account-service/pkg/errors"
	"user-account-service/pkg/logger"
	"user-account-service/pkg/security"

	"github.com/go-playground/validator/v10"
)

// DefaultRecentLoginWindow is how long a login stays reserved after a user is created with it.
const DefaultRecentLoginWindow = 5 * time.Second

// Repository defines the interface for user data access operations.
// Absence is reported through the Exists* checks, not through errors.
type Repository interface {
	List(ctx context.Context, page domain.Page) ([]domain.User, error)                   // List users ordered by id
	GetByID(ctx context.Context, id int64) (*domain.User, error)                         // Retrieve user by ID
	Exists(ctx context.Context, id int64) (bool, error)                                  // Check user existence by ID
	ExistsByLoginSince(ctx context.Context, login string, since time.Time) (bool, error) // Check for a login created at or after since
	ExistsActiveAdmin(ctx context.Context) (bool, error)                                 // Check for an active admin
	Create(ctx context.Context, u *domain.User) (int64, error)                           // Create a new user
	Update(ctx context.Context, u *domain.User, from domain.State) error                 // Write u if it is still in state from
	LockLogin(ctx context.Context, login string) error                                   // Serialize creations of one login within a transaction
	Transaction(ctx context.Context, fn func(repo Repository) error) error               // Run fn atomically
}

// ReferenceRepository gives read-only access to the seeded groups and states.
type ReferenceRepository interface {
	GetGroupByCode(ctx context.Context, code domain.GroupCode) (*domain.Group, error)
	GroupExists(ctx context.Context, code domain.GroupCode) (bool, error)
	GetStateByCode(ctx context.Context, code domain.StateCode) (*domain.State, error)
}

// PasswordHasher turns a raw password into the credential that gets stored.
type PasswordHasher interface {
	Hash(password string) (string, error)
}

// UserUsecase implements the business rules for user management operations.
type UserUsecase struct {
	repo              Repository          // Repository for user data access
	refs              ReferenceRepository // Groups and states
	hasher            PasswordHasher      // Credential hashing
	log               *zap.Logger         // Logger for structured logging
	validate          *validator.Validate // Validator for request validation
	now               func() time.Time    // Clock, replaceable in tests
	maxPageSize       int                 // Upper bound for ListUsers page size
	recentLoginWindow time.Duration       // Recency guard window for logins
}

// Option configures a UserUsecase.
type Option func(*UserUsecase)

// WithClock replaces the wall clock used for creation dates and the recency guard.
func WithClock(now func() time.Time) Option {
	return func(uc *UserUsecase) { uc.now = now }
}

// WithMaxPageSize sets the largest page ListUsers returns.
func WithMaxPageSize(n int) Option {
	return func(uc *UserUsecase) {
		if n > 0 {
			uc.maxPageSize = n
		}
	}
}

// WithRecentLoginWindow sets the recency guard window.
func WithRecentLoginWindow(d time.Duration) Option {
	return func(uc *UserUsecase) {
		if d >= 0 {
			uc.recentLoginWindow = d
		}
	}
}

// WithPasswordHasher sets the credential hasher.
func WithPasswordHasher(h PasswordHasher) Option {
	return func(uc *UserUsecase) { uc.hasher = h }
}

// New creates a new instance of UserUsecase.
func New(r Repository, refs ReferenceRepository, log *zap.Logger, opts ...Option) *UserUsecase {
	uc := &UserUsecase{
		repo:              r,
		refs:              refs,
		hasher:            security.NewBcryptHasher(0),
		log:               log,
		validate:          validator.New(),
		now:               time.Now,
		maxPageSize:       domain.DefaultMaxPageSize,
		recentLoginWindow: DefaultRecentLoginWindow,
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// formatValidationError converts validator.ValidationErrors into an aggregated ValidationError.
func formatValidationError(err error) error {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return err
	}

	verr := apperrors.NewValidationErrors()
	for _, e := range validationErrors {
		switch e.Tag() {
		case "required":
			verr.Add(e.Field(), fmt.Sprintf("%s is required", e.Field()))
		case "min":
			verr.Add(e.Field(), fmt.Sprintf("%s must be at least %s characters", e.Field(), e.Param()))
		case "max":
			verr.Add(e.Field(), fmt.Sprintf("%s must be at most %s characters", e.Field(), e.Param()))
		default:
			verr.Add(e.Field(), fmt.Sprintf("%s is invalid", e.Field()))
		}
	}
	return verr
}

// ListUsers returns one page of users ordered by ascending id.
// Page sizes above the configured maximum are clamped, never rejected.
func (uc *UserUsecase) ListUsers(ctx context.Context, in ListUsersRequest) (*ListUsersResponse, error) {
	log := logger.WithContext(ctx, uc.log)

	verr := apperrors.NewValidationErrors()
	if in.Offset < 0 {
		verr.Add("Offset", "Offset can not be negative")
	}
	if in.PageSize <= 0 {
		verr.Add("PageSize", "Page size can not be negative or zero")
	}
	if verr.HasViolations() {
		log.Warn("list users validation failed", zap.Int("offset", in.Offset), zap.Int("page_size", in.PageSize))
		return nil, verr
	}

	page := domain.NewPage(in.Offset, in.PageSize, uc.maxPageSize)
	log.Info("listing users", zap.Int("offset", page.Offset), zap.Int("limit", page.Limit))

	domainUsers, err := uc.repo.List(ctx, page)
	if err != nil {
		log.Error("failed to list users", zap.Int("offset", page.Offset), zap.Int("limit", page.Limit), zap.Error(err))
		return nil, apperrors.NewStorageError("list users", err)
	}

	users := make([]User, len(domainUsers))
	for i := range domainUsers {
		users[i] = toUserDTO(&domainUsers[i])
	}

	return &ListUsersResponse{
		Users:    users,
		Offset:   page.Offset,
		PageSize: page.Limit,
	}, nil
}

// GetUser retrieves a user by ID. Existence is checked before the fetch.
func (uc *UserUsecase) GetUser(ctx context.Context, in GetUserRequest) (*GetUserResponse, error) {
	log := logger.WithContext(ctx, uc.log)

	exists, err := uc.repo.Exists(ctx, in.ID)
	if err != nil {
		log.Error("failed to check user existence", zap.Int64("id", in.ID), zap.Error(err))
		return nil, apperrors.NewStorageError("get user", err)
	}
	if !exists {
		log.Warn("user not found", zap.Int64("id", in.ID))
		return nil, userNotFound(in.ID)
	}

	u, err := uc.repo.GetByID(ctx, in.ID)
	if err != nil {
		log.Error("failed to get user", zap.Int64("id", in.ID), zap.Error(err))
		return nil, toApplicationError("get user", err)
	}

	return &GetUserResponse{User: toUserDTO(u)}, nil
}

// CreateUser validates the request and creates an active user.
// The recency guard, the group lookup and the single-admin check run in the
// same transaction as the insert.
func (uc *UserUsecase) CreateUser(ctx context.Context, in *CreateUserRequest) (*CreateUserResponse, error) {
	log := logger.WithContext(ctx, uc.log)

	if in == nil {
		log.Warn("create user request is empty")
		return nil, apperrors.NewUnprocessableError("user payload is required")
	}

	log.Info("creating user", zap.String("login", in.Login), zap.String("group_code", in.GroupCode))

	if err := uc.validate.Struct(in); err != nil {
		log.Warn("validate failed", zap.Error(err))
		return nil, formatValidationError(err)
	}

	groupCode := domain.GroupCode(in.GroupCode)
	var id int64

	err := uc.repo.Transaction(ctx, func(tx Repository) error {
		if err := tx.LockLogin(ctx, in.Login); err != nil {
			return fmt.Errorf("lock login: %w", err)
		}

		now := uc.now().UTC()

		recent, err := tx.ExistsByLoginSince(ctx, in.Login, now.Add(-uc.recentLoginWindow))
		if err != nil {
			return fmt.Errorf("check recent login: %w", err)
		}
		if recent {
			log.Warn("login was used recently", zap.String("login", in.Login), zap.Duration("window", uc.recentLoginWindow))
			return apperrors.NewConflictError("user", "duplicate recent login")
		}

		groupExists, err := uc.refs.GroupExists(ctx, groupCode)
		if err != nil {
			return fmt.Errorf("check group: %w", err)
		}
		if !groupExists {
			log.Warn("unknown group code", zap.String("group_code", in.GroupCode))
			return apperrors.NewValidationError("GroupCode", "unknown group code")
		}

		if groupCode == domain.GroupAdmin {
			adminExists, err := tx.ExistsActiveAdmin(ctx)
			if err != nil {
				return fmt.Errorf("check active admin: %w", err)
			}
			if adminExists {
				log.Warn("active admin already exists", zap.String("login", in.Login))
				return apperrors.NewConflictError("user", "admin already exists")
			}
		}

		group, err := uc.refs.GetGroupByCode(ctx, groupCode)
		if err != nil {
			return err
		}
		active, err := uc.refs.GetStateByCode(ctx, domain.StateActive)
		if err != nil {
			return err
		}

		hash, err := uc.hasher.Hash(in.Password)
		if err != nil {
			log.Error("failed to hash password", zap.Error(err))
			return apperrors.NewInternalError("hash password", err)
		}

		id, err = tx.Create(ctx, &domain.User{
			Login:       in.Login,
			Password:    hash,
			CreatedDate: now,
			Group:       *group,
			State:       *active,
		})
		if errors.Is(err, domain.ErrActiveAdminExists) {
			log.Warn("store rejected second active admin", zap.String("login", in.Login))
			return apperrors.NewConflictError("user", "admin already exists")
		}
		return err
	})
	if err != nil {
		if !apperrors.IsApplicationError(err) {
			log.Error("failed to create user", zap.String("login", in.Login), zap.Error(err))
		}
		return nil, toApplicationError("create user", err)
	}

	log.Info("user created", zap.Int64("id", id))
	return &CreateUserResponse{ID: id}, nil
}

// BlockUser moves an active user to the Blocked state. Users are never hard-deleted.
func (uc *UserUsecase) BlockUser(ctx context.Context, in BlockUserRequest) (*BlockUserResponse, error) {
	log := logger.WithContext(ctx, uc.log)
	log.Info("blocking user", zap.Int64("id", in.ID))

	err := uc.repo.Transaction(ctx, func(tx Repository) error {
		exists, err := tx.Exists(ctx, in.ID)
		if err != nil {
			return fmt.Errorf("check user existence: %w", err)
		}
		if !exists {
			log.Warn("user not found", zap.Int64("id", in.ID))
			return userNotFound(in.ID)
		}

		blocked, err := uc.refs.GetStateByCode(ctx, domain.StateBlocked)
		if err != nil {
			return err
		}

		u, err := tx.GetByID(ctx, in.ID)
		if err != nil {
			return err
		}

		from := u.State
		if err := u.Block(*blocked); err != nil {
			log.Warn("user already blocked", zap.Int64("id", in.ID))
			return apperrors.NewConflictError("user", "already blocked")
		}

		if err := tx.Update(ctx, u, from); err != nil {
			if errors.Is(err, domain.ErrStateChanged) {
				log.Warn("user blocked concurrently", zap.Int64("id", in.ID))
				return apperrors.NewConflictError("user", "already blocked")
			}
			return err
		}
		return nil
	})
	if err != nil {
		if !apperrors.IsApplicationError(err) {
			log.Error("failed to block user", zap.Int64("id", in.ID), zap.Error(err))
		}
		return nil, toApplicationError("block user", err)
	}

	return &BlockUserResponse{ID: in.ID}, nil
}

func userNotFound(id int64) error {
	return apperrors.NewNotFoundError("user", fmt.Sprintf("user not found: id=%d", id))
}

// toApplicationError passes taxonomy errors through and wraps everything else as a storage fault.
func toApplicationError(op string, err error) error {
	if apperrors.IsApplicationError(err) {
		return err
	}
	return apperrors.NewStorageError(op, err)
}
