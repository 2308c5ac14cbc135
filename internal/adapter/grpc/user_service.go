package grpc

import (
	"context"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"

	"user-account-service/internal/usecase/user"
	apperrors "user-account-service/pkg/errors"
	"user-account-service/pkg/logger"
)

const (
	defaultPageSize = 10
	// Largest integer a JSON number holds exactly.
	maxExactInt = 1 << 53
)

// UserServer implements UserServiceServer on top of the user usecase.
// Usecase errors are returned as is; they carry their own gRPC status.
type UserServer struct {
	uc  user.Usecase
	log *zap.Logger
}

// NewUserServer creates a new gRPC user service server
func NewUserServer(uc user.Usecase, log *zap.Logger) *UserServer {
	return &UserServer{uc: uc, log: log}
}

// ListUsers handles {offset, page_size} and answers {users, offset, page_size}.
func (s *UserServer) ListUsers(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	offset, err := intField(in, "offset", 0)
	if err != nil {
		return nil, err
	}
	pageSize, err := intField(in, "page_size", defaultPageSize)
	if err != nil {
		return nil, err
	}

	logger.WithContext(ctx, s.log).Info("gRPC ListUsers request", zap.Int64("offset", offset), zap.Int64("page_size", pageSize))

	resp, err := s.uc.ListUsers(ctx, user.ListUsersRequest{Offset: int(offset), PageSize: int(pageSize)})
	if err != nil {
		return nil, err
	}

	users := make([]any, len(resp.Users))
	for i, u := range resp.Users {
		users[i] = userFields(u)
	}
	return newStruct(map[string]any{
		"users":     users,
		"offset":    resp.Offset,
		"page_size": resp.PageSize,
	})
}

// GetUser handles {id} and answers the user document.
func (s *UserServer) GetUser(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	id, err := requiredID(in)
	if err != nil {
		return nil, err
	}

	logger.WithContext(ctx, s.log).Info("gRPC GetUser request", zap.Int64("id", id))

	resp, err := s.uc.GetUser(ctx, user.GetUserRequest{ID: id})
	if err != nil {
		return nil, err
	}
	return newStruct(userFields(resp.User))
}

// CreateUser handles {login, password, group_code} and answers {id}.
// An empty document is treated like a missing payload.
func (s *UserServer) CreateUser(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req *user.CreateUserRequest
	if len(in.GetFields()) > 0 {
		login, err := stringField(in, "login")
		if err != nil {
			return nil, err
		}
		password, err := stringField(in, "password")
		if err != nil {
			return nil, err
		}
		groupCode, err := stringField(in, "group_code")
		if err != nil {
			return nil, err
		}
		req = &user.CreateUserRequest{Login: login, Password: password, GroupCode: groupCode}
		logger.WithContext(ctx, s.log).Info("gRPC CreateUser request", zap.String("login", login), zap.String("group_code", groupCode))
	}

	resp, err := s.uc.CreateUser(ctx, req)
	if err != nil {
		return nil, err
	}
	return newStruct(map[string]any{"id": resp.ID})
}

// BlockUser handles {id}.
func (s *UserServer) BlockUser(ctx context.Context, in *structpb.Struct) (*emptypb.Empty, error) {
	id, err := requiredID(in)
	if err != nil {
		return nil, err
	}

	logger.WithContext(ctx, s.log).Info("gRPC BlockUser request", zap.Int64("id", id))

	if _, err := s.uc.BlockUser(ctx, user.BlockUserRequest{ID: id}); err != nil {
		return nil, err
	}
	return &emptypb.Empty{}, nil
}

func userFields(u user.User) map[string]any {
	return map[string]any{
		"id":           u.ID,
		"login":        u.Login,
		"created_date": u.CreatedDate.UTC().Format(time.RFC3339Nano),
		"group": map[string]any{
			"id":          u.Group.ID,
			"code":        u.Group.Code,
			"description": u.Group.Description,
		},
		"state": map[string]any{
			"id":          u.State.ID,
			"code":        u.State.Code,
			"description": u.State.Description,
		},
	}
}

func newStruct(fields map[string]any) (*structpb.Struct, error) {
	out, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, fmt.Errorf("encode response: %w", err)
	}
	return out, nil
}

func requiredID(in *structpb.Struct) (int64, error) {
	if _, ok := in.GetFields()["id"]; !ok {
		return 0, apperrors.NewValidationError("id", "id is required")
	}
	return intField(in, "id", 0)
}

// intField reads a whole number, returning def when the field is absent.
func intField(in *structpb.Struct, name string, def int64) (int64, error) {
	v, ok := in.GetFields()[name]
	if !ok {
		return def, nil
	}
	n, isNumber := v.GetKind().(*structpb.Value_NumberValue)
	if !isNumber || n.NumberValue != math.Trunc(n.NumberValue) || math.Abs(n.NumberValue) > maxExactInt {
		return 0, apperrors.NewValidationError(name, name+" must be an integer")
	}
	return int64(n.NumberValue), nil
}

// stringField reads a string, returning "" when the field is absent.
func stringField(in *structpb.Struct, name string) (string, error) {
	v, ok := in.GetFields()[name]
	if !ok {
		return "", nil
	}
	s, isString := v.GetKind().(*structpb.Value_StringValue)
	if !isString {
		return "", apperrors.NewUnprocessableError(name + " must be a string")
	}
	return s.StringValue, nil
}
