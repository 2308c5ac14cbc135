package user

// GroupCode is the closed set of user group codes.
type GroupCode string

const (
	GroupAdmin GroupCode = "Admin"
	GroupUser  GroupCode = "User"
)

// StateCode is the closed set of user state codes.
type StateCode string

const (
	StateActive  StateCode = "Active"
	StateBlocked StateCode = "Blocked"
)

// Group is a role classification of a user.
type Group struct {
	ID          int64
	Code        GroupCode
	Description string
}

// State is a lifecycle classification of a user.
type State struct {
	ID          int64
	Code        StateCode
	Description string
}

// Ids and descriptions are stable: they are seeded into the reference tables
// and referenced by foreign keys.
var (
	groups = []Group{
		{ID: 1, Code: GroupAdmin, Description: "Administration User Group"},
		{ID: 2, Code: GroupUser, Description: "Ordinary User Group"},
	}
	states = []State{
		{ID: 1, Code: StateActive, Description: "Active User State"},
		{ID: 2, Code: StateBlocked, Description: "Deleted User State"},
	}
)

// Groups returns every known group ordered by id.
func Groups() []Group {
	out := make([]Group, len(groups))
	copy(out, groups)
	return out
}

// States returns every known state ordered by id.
func States() []State {
	out := make([]State, len(states))
	copy(out, states)
	return out
}

// LookupGroup returns the group registered under code.
func LookupGroup(code GroupCode) (Group, bool) {
	for _, g := range groups {
		if g.Code == code {
			return g, true
		}
	}
	return Group{}, false
}

// LookupState returns the state registered under code.
func LookupState(code StateCode) (State, bool) {
	for _, s := range states {
		if s.Code == code {
			return s, true
		}
	}
	return State{}, false
}
