package postgres

import (
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"user-account-service/internal/domain/user"
)

// Migrate creates the schema, seeds the reference tables and installs the
// partial unique index that allows at most one active admin.
// It is safe to run on every start.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&GroupSchema{}, &StateSchema{}, &UserSchema{}); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}

	groups := user.Groups()
	groupRows := make([]GroupSchema, len(groups))
	for i, g := range groups {
		groupRows[i] = GroupSchema{ID: g.ID, Code: string(g.Code), Description: g.Description}
	}
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&groupRows).Error; err != nil {
		return fmt.Errorf("failed to seed user groups: %w", err)
	}

	states := user.States()
	stateRows := make([]StateSchema, len(states))
	for i, s := range states {
		stateRows[i] = StateSchema{ID: s.ID, Code: string(s.Code), Description: s.Description}
	}
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&stateRows).Error; err != nil {
		return fmt.Errorf("failed to seed user states: %w", err)
	}

	admin, _ := user.LookupGroup(user.GroupAdmin)
	active, _ := user.LookupState(user.StateActive)
	// DDL does not take bind parameters.
	ddl := fmt.Sprintf(
		"CREATE UNIQUE INDEX IF NOT EXISTS ux_users_single_active_admin ON users (group_id) WHERE group_id = %d AND state_id = %d",
		admin.ID, active.ID,
	)
	if err := db.Exec(ddl).Error; err != nil {
		return fmt.Errorf("failed to create active admin index: %w", err)
	}

	return nil
}
