package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestValidationError_Aggregates(t *testing.T) {
	err := NewValidationErrors(
		Violation{Field: "Login", Message: "Login is required"},
		Violation{Field: "Password", Message: "Password must be at least 8 characters"},
	)
	err.Add("", "unexpected")

	assert.True(t, err.HasViolations())
	assert.Len(t, err.Violations, 3)
	assert.Equal(t,
		"validation failed: Login - Login is required, Password - Password must be at least 8 characters, unexpected",
		err.Error())
}

func TestValidationError_Empty(t *testing.T) {
	err := NewValidationErrors()
	assert.False(t, err.HasViolations())
}

func TestStorageError_Unwrap(t *testing.T) {
	cause := stderrors.New("connection reset")
	err := NewStorageError("create user", cause)

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "create user")
	assert.Contains(t, err.Error(), "connection reset")
}

func TestGRPCStatus_Codes(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code codes.Code
	}{
		{name: "validation", err: NewValidationError("Offset", "must not be negative"), code: codes.InvalidArgument},
		{name: "unprocessable", err: NewUnprocessableError("empty body"), code: codes.InvalidArgument},
		{name: "not found", err: NewNotFoundError("user", "user not found"), code: codes.NotFound},
		{name: "conflict", err: NewConflictError("user", "already blocked"), code: codes.FailedPrecondition},
		{name: "storage", err: NewStorageError("update user", stderrors.New("boom")), code: codes.Internal},
		{name: "internal", err: NewInternalError("hash password", stderrors.New("boom")), code: codes.Internal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st, ok := status.FromError(tt.err)
			assert.True(t, ok)
			assert.Equal(t, tt.code, st.Code())
		})
	}
}

func TestStorageError_HidesCauseFromClients(t *testing.T) {
	err := NewStorageError("update user", stderrors.New("pq: password authentication failed"))
	st := err.GRPCStatus()
	assert.NotContains(t, st.Message(), "password")
}

func TestInternalError_NotAStorageFault(t *testing.T) {
	cause := stderrors.New("bcrypt: cost out of range")
	err := NewInternalError("hash password", cause)

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "hash password")
	assert.NotContains(t, err.Error(), "storage")
	assert.NotContains(t, err.GRPCStatus().Message(), "bcrypt")

	var serr *StorageError
	assert.False(t, stderrors.As(err, &serr))
	assert.True(t, IsApplicationError(err))
}

func TestIsApplicationError(t *testing.T) {
	assert.True(t, IsApplicationError(NewNotFoundError("user", "")))
	assert.True(t, IsApplicationError(NewConflictError("user", "")))
	assert.False(t, IsApplicationError(stderrors.New("plain")))
	assert.False(t, IsApplicationError(fmt.Errorf("wrapped: %w", NewNotFoundError("user", ""))))
}

func TestNotFoundError_DefaultMessage(t *testing.T) {
	assert.Equal(t, "user not found", NewNotFoundError("user", "").Error())
	assert.Equal(t, "user conflict", NewConflictError("user", "").Error())
}
