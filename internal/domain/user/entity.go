package user

import (
	"errors"
	"time"
)

var (
	// ErrAlreadyBlocked is returned when blocking a user that is already blocked.
	ErrAlreadyBlocked = errors.New("user already blocked")
	// ErrActiveAdminExists is returned by stores that reject a second active admin.
	ErrActiveAdminExists = errors.New("active admin already exists")
	// ErrStateChanged is returned by stores when a user left the state an update was based on.
	ErrStateChanged = errors.New("user state changed concurrently")
)

// User represents a user account in the system.
type User struct {
	ID          int64     // ID is assigned by the store
	Login       string    // Login is not unique, see the recent login guard
	Password    string    // Password holds the stored credential (hash)
	CreatedDate time.Time // CreatedDate is set once at creation, always UTC
	Group       Group     // Group is the resolved role of the user
	State       State     // State is the resolved lifecycle state of the user
}

// IsAdmin reports whether the user belongs to the Admin group.
func (u *User) IsAdmin() bool {
	return u.Group.Code == GroupAdmin
}

// IsActive reports whether the user is in the Active state.
func (u *User) IsActive() bool {
	return u.State.Code == StateActive
}

// IsBlocked reports whether the user is in the Blocked state.
func (u *User) IsBlocked() bool {
	return u.State.Code == StateBlocked
}

// Block moves the user to the given blocked state.
// Blocked is terminal: blocking twice returns ErrAlreadyBlocked.
func (u *User) Block(blocked State) error {
	if u.IsBlocked() {
		return ErrAlreadyBlocked
	}
	u.State = blocked
	return nil
}
