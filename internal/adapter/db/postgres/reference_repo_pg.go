package postgres

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"user-account-service/internal/domain/user"
	apperrors "user-account-service/pkg/errors"
)

// GroupSchema represents the database schema for the user_groups table.
type GroupSchema struct {
	ID          int64  `gorm:"primaryKey;autoIncrement:false"`
	Code        string `gorm:"size:16;not null;uniqueIndex"`
	Description string `gorm:"size:64;not null"`
}

// TableName specifies the table name for the GroupSchema model.
func (GroupSchema) TableName() string {
	return "user_groups"
}

func (m GroupSchema) toDomain() user.Group {
	return user.Group{ID: m.ID, Code: user.GroupCode(m.Code), Description: m.Description}
}

// StateSchema represents the database schema for the user_states table.
type StateSchema struct {
	ID          int64  `gorm:"primaryKey;autoIncrement:false"`
	Code        string `gorm:"size:16;not null;uniqueIndex"`
	Description string `gorm:"size:64;not null"`
}

// TableName specifies the table name for the StateSchema model.
func (StateSchema) TableName() string {
	return "user_states"
}

func (m StateSchema) toDomain() user.State {
	return user.State{ID: m.ID, Code: user.StateCode(m.Code), Description: m.Description}
}

// ReferenceRepoPG serves groups and states from a catalog read once at startup.
// The reference tables are seeded by Migrate and never written afterwards.
type ReferenceRepoPG struct {
	groups map[user.GroupCode]user.Group
	states map[user.StateCode]user.State
}

// NewReferenceRepoPG loads the reference tables into memory.
func NewReferenceRepoPG(ctx context.Context, db *gorm.DB, log *zap.Logger) (*ReferenceRepoPG, error) {
	var groups []GroupSchema
	if err := db.WithContext(ctx).Order("id ASC").Find(&groups).Error; err != nil {
		return nil, fmt.Errorf("failed to load user groups: %w", err)
	}
	var states []StateSchema
	if err := db.WithContext(ctx).Order("id ASC").Find(&states).Error; err != nil {
		return nil, fmt.Errorf("failed to load user states: %w", err)
	}

	r := &ReferenceRepoPG{
		groups: make(map[user.GroupCode]user.Group, len(groups)),
		states: make(map[user.StateCode]user.State, len(states)),
	}
	for _, g := range groups {
		r.groups[user.GroupCode(g.Code)] = g.toDomain()
	}
	for _, s := range states {
		r.states[user.StateCode(s.Code)] = s.toDomain()
	}

	log.Info("reference catalog loaded", zap.Int("groups", len(r.groups)), zap.Int("states", len(r.states)))
	return r, nil
}

// GetGroupByCode returns the group registered under code.
func (r *ReferenceRepoPG) GetGroupByCode(_ context.Context, code user.GroupCode) (*user.Group, error) {
	g, ok := r.groups[code]
	if !ok {
		return nil, apperrors.NewValidationError("GroupCode", "unknown group code")
	}
	return &g, nil
}

// GroupExists reports whether code names a known group.
func (r *ReferenceRepoPG) GroupExists(_ context.Context, code user.GroupCode) (bool, error) {
	_, ok := r.groups[code]
	return ok, nil
}

// GetStateByCode returns the state registered under code.
func (r *ReferenceRepoPG) GetStateByCode(_ context.Context, code user.StateCode) (*user.State, error) {
	s, ok := r.states[code]
	if !ok {
		return nil, apperrors.NewNotFoundError("state", fmt.Sprintf("state not found: code=%s", code))
	}
	return &s, nil
}
