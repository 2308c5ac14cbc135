package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"user-account-service/internal/domain/user"
	usecase "user-account-service/internal/usecase/user"
	apperrors "user-account-service/pkg/errors"
)

// UserRepoPG implements the usecase Repository interface with GORM.
// It runs against PostgreSQL in production and SQLite in tests.
type UserRepoPG struct {
	db  *gorm.DB    // GORM database connection, or the open transaction
	log *zap.Logger // Structured logger for database operations
}

// NewUserRepoPG creates a new instance of UserRepoPG.
func NewUserRepoPG(db *gorm.DB, log *zap.Logger) *UserRepoPG {
	return &UserRepoPG{db: db, log: log}
}

// UserSchema represents the database schema for the users table.
type UserSchema struct {
	ID          int64       `gorm:"primaryKey;autoIncrement"`
	Login       string      `gorm:"size:16;not null;index:idx_users_login_created,priority:1"`
	Password    string      `gorm:"not null"`
	CreatedDate time.Time   `gorm:"not null;index:idx_users_login_created,priority:2"`
	GroupID     int64       `gorm:"not null"`
	StateID     int64       `gorm:"not null"`
	Group       GroupSchema `gorm:"foreignKey:GroupID"`
	State       StateSchema `gorm:"foreignKey:StateID"`
}

// TableName specifies the table name for the UserSchema model.
func (UserSchema) TableName() string {
	return "users"
}

func (m *UserSchema) toDomain() *user.User {
	return &user.User{
		ID:          m.ID,
		Login:       m.Login,
		Password:    m.Password,
		CreatedDate: m.CreatedDate.UTC(),
		Group:       m.Group.toDomain(),
		State:       m.State.toDomain(),
	}
}

// List returns one page of users ordered by ascending id.
func (r *UserRepoPG) List(ctx context.Context, page user.Page) ([]user.User, error) {
	var models []UserSchema
	err := r.db.WithContext(ctx).
		Preload("Group").
		Preload("State").
		Order("id ASC").
		Offset(page.Offset).
		Limit(page.Limit).
		Find(&models).Error
	if err != nil {
		r.log.Error("failed to list users from db", zap.Error(err), zap.Int("offset", page.Offset), zap.Int("limit", page.Limit))
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	users := make([]user.User, len(models))
	for i := range models {
		users[i] = *models[i].toDomain()
	}
	return users, nil
}

// GetByID retrieves a user with its group and state.
func (r *UserRepoPG) GetByID(ctx context.Context, id int64) (*user.User, error) {
	var model UserSchema
	err := r.db.WithContext(ctx).
		Preload("Group").
		Preload("State").
		First(&model, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			r.log.Warn("user not found", zap.Int64("id", id))
			return nil, apperrors.NewNotFoundError("user", fmt.Sprintf("user not found: id=%d", id))
		}
		r.log.Error("failed to get user from db", zap.Error(err), zap.Int64("id", id))
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return model.toDomain(), nil
}

// Exists reports whether a user with the given id is stored.
func (r *UserRepoPG) Exists(ctx context.Context, id int64) (bool, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&UserSchema{}).Where("id = ?", id).Count(&n).Error; err != nil {
		r.log.Error("failed to check user existence", zap.Error(err), zap.Int64("id", id))
		return false, fmt.Errorf("failed to check user existence: %w", err)
	}
	return n > 0, nil
}

// ExistsByLoginSince reports whether a user with login was created at or after since.
func (r *UserRepoPG) ExistsByLoginSince(ctx context.Context, login string, since time.Time) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&UserSchema{}).
		Where("login = ? AND created_date >= ?", login, since.UTC()).
		Count(&n).Error
	if err != nil {
		r.log.Error("failed to check recent login", zap.Error(err), zap.String("login", login))
		return false, fmt.Errorf("failed to check recent login: %w", err)
	}
	return n > 0, nil
}

// ExistsActiveAdmin reports whether an Admin user in the Active state is stored.
func (r *UserRepoPG) ExistsActiveAdmin(ctx context.Context) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&UserSchema{}).
		Joins("JOIN user_groups ON user_groups.id = users.group_id").
		Joins("JOIN user_states ON user_states.id = users.state_id").
		Where("user_groups.code = ? AND user_states.code = ?", string(user.GroupAdmin), string(user.StateActive)).
		Count(&n).Error
	if err != nil {
		r.log.Error("failed to check active admin", zap.Error(err))
		return false, fmt.Errorf("failed to check active admin: %w", err)
	}
	return n > 0, nil
}

// Create inserts a new user and returns the assigned id.
// A second active admin is rejected by the store with user.ErrActiveAdminExists.
func (r *UserRepoPG) Create(ctx context.Context, u *user.User) (int64, error) {
	if u == nil {
		return 0, errors.New("user cannot be nil")
	}

	model := UserSchema{
		ID:          u.ID,
		Login:       u.Login,
		Password:    u.Password,
		CreatedDate: u.CreatedDate.UTC(),
		GroupID:     u.Group.ID,
		StateID:     u.State.ID,
	}

	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(&model).Error; err != nil {
		if isUniqueViolation(err) {
			r.log.Warn("unique constraint rejected user", zap.String("login", u.Login), zap.Error(err))
			return 0, user.ErrActiveAdminExists
		}
		r.log.Error("failed to create user in db", zap.Error(err), zap.String("login", u.Login))
		return 0, fmt.Errorf("failed to create user: %w", err)
	}

	r.log.Info("user created in db", zap.Int64("id", model.ID))
	return model.ID, nil
}

// Update writes the mutable columns of an existing user. The write only
// applies while the stored row is still in state from; otherwise it returns
// user.ErrStateChanged, or NotFound when the row is gone.
func (r *UserRepoPG) Update(ctx context.Context, u *user.User, from user.State) error {
	if u == nil {
		return errors.New("user cannot be nil")
	}

	res := r.db.WithContext(ctx).
		Model(&UserSchema{}).
		Where("id = ? AND state_id = ?", u.ID, from.ID).
		Omit(clause.Associations).
		Updates(map[string]any{
			"login":    u.Login,
			"password": u.Password,
			"group_id": u.Group.ID,
			"state_id": u.State.ID,
		})
	if res.Error != nil {
		if isUniqueViolation(res.Error) {
			return user.ErrActiveAdminExists
		}
		r.log.Error("failed to update user in db", zap.Error(res.Error), zap.Int64("id", u.ID))
		return fmt.Errorf("failed to update user: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		exists, err := r.Exists(ctx, u.ID)
		if err != nil {
			return err
		}
		if exists {
			r.log.Warn("user state changed before update", zap.Int64("id", u.ID), zap.String("expected_state", string(from.Code)))
			return user.ErrStateChanged
		}
		return apperrors.NewNotFoundError("user", fmt.Sprintf("user not found: id=%d", u.ID))
	}

	r.log.Info("user updated in db", zap.Int64("id", u.ID), zap.String("state", string(u.State.Code)))
	return nil
}

// LockLogin takes a transaction-scoped advisory lock on login so that
// concurrent creations with the same login are serialized.
// SQLite serializes writers on its own and needs no lock.
func (r *UserRepoPG) LockLogin(ctx context.Context, login string) error {
	if r.db.Dialector.Name() != "postgres" {
		return nil
	}
	if err := r.db.WithContext(ctx).Exec("SELECT pg_advisory_xact_lock(hashtext(?))", login).Error; err != nil {
		return fmt.Errorf("failed to lock login: %w", err)
	}
	return nil
}

// Transaction runs fn against a repository bound to a single database transaction.
func (r *UserRepoPG) Transaction(ctx context.Context, fn func(repo usecase.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&UserRepoPG{db: tx, log: r.log})
	})
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value") ||
		strings.Contains(msg, "SQLSTATE 23505")
}
