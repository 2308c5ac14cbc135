package user

import "context"

// Usecase defines the interface for user business logic operations.
type Usecase interface {
	ListUsers(ctx context.Context, in ListUsersRequest) (*ListUsersResponse, error)
	GetUser(ctx context.Context, in GetUserRequest) (*GetUserResponse, error)
	CreateUser(ctx context.Context, in *CreateUserRequest) (*CreateUserResponse, error)
	BlockUser(ctx context.Context, in BlockUserRequest) (*BlockUserResponse, error)
}
