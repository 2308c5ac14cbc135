package user

import (
	"time"

	domain "user-account-service/internal/domain/user"
)

// CreateUserRequest represents the request payload for creating a new user.
type CreateUserRequest struct {
	Login     string `validate:"required,min=4,max=16"`
	Password  string `validate:"required,min=8,max=20"`
	GroupCode string `validate:"required"`
}

// CreateUserResponse represents the response payload after creating a user.
type CreateUserResponse struct {
	ID int64
}

// BlockUserRequest represents the request payload for blocking a user.
type BlockUserRequest struct {
	ID int64
}

// BlockUserResponse represents the response payload after blocking a user.
type BlockUserResponse struct {
	ID int64
}

// GetUserRequest represents the request payload for retrieving a user.
type GetUserRequest struct {
	ID int64
}

// GetUserResponse represents the response payload for user details.
type GetUserResponse struct {
	User
}

// ListUsersRequest represents the request payload for listing users.
type ListUsersRequest struct {
	Offset   int
	PageSize int
}

// ListUsersResponse represents the response payload for user listing.
// PageSize is the effective page size after clamping.
type ListUsersResponse struct {
	Users    []User
	Offset   int
	PageSize int
}

// Group represents a user group DTO.
type Group struct {
	ID          int64
	Code        string
	Description string
}

// State represents a user state DTO.
type State struct {
	ID          int64
	Code        string
	Description string
}

// User represents a user DTO (Data Transfer Object) for API responses.
// The stored credential is never part of it.
type User struct {
	ID          int64
	Login       string
	CreatedDate time.Time
	Group       Group
	State       State
}

func toUserDTO(u *domain.User) User {
	return User{
		ID:          u.ID,
		Login:       u.Login,
		CreatedDate: u.CreatedDate,
		Group: Group{
			ID:          u.Group.ID,
			Code:        string(u.Group.Code),
			Description: u.Group.Description,
		},
		State: State{
			ID:          u.State.ID,
			Code:        string(u.State.Code),
			Description: u.State.Description,
		},
	}
}
