package errors

import (
	"fmt"
	"strings"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Violation is a single field-level validation failure
type Violation struct {
	Field   string
	Message string
}

// ValidationError represents one or more field-level validation failures
type ValidationError struct {
	Violations []Violation
}

// NewValidationError creates a validation error for a single field
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Violations: []Violation{{Field: field, Message: message}},
	}
}

// NewValidationErrors aggregates several violations into one error
func NewValidationErrors(violations ...Violation) *ValidationError {
	return &ValidationError{Violations: violations}
}

// Add appends a violation
func (e *ValidationError) Add(field, message string) {
	e.Violations = append(e.Violations, Violation{Field: field, Message: message})
}

// HasViolations reports whether any violation was collected
func (e *ValidationError) HasViolations() bool {
	return len(e.Violations) > 0
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		if v.Field != "" {
			parts = append(parts, fmt.Sprintf("%s - %s", v.Field, v.Message))
		} else {
			parts = append(parts, v.Message)
		}
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(parts, ", "))
}

// GRPCStatus returns the gRPC status for this error
func (e *ValidationError) GRPCStatus() *status.Status {
	return status.New(codes.InvalidArgument, e.Error())
}

// UnprocessableError signals an absent or unparseable request body,
// as opposed to bad field values
type UnprocessableError struct {
	Message string
}

// NewUnprocessableError creates a new unprocessable input error
func NewUnprocessableError(message string) *UnprocessableError {
	return &UnprocessableError{Message: message}
}

// Error implements the error interface
func (e *UnprocessableError) Error() string {
	return fmt.Sprintf("unprocessable input: %s", e.Message)
}

// GRPCStatus returns the gRPC status for this error
func (e *UnprocessableError) GRPCStatus() *status.Status {
	return status.New(codes.InvalidArgument, e.Error())
}

// NotFoundError represents a resource not found error
type NotFoundError struct {
	Resource string
	Message  string
}

// NewNotFoundError creates a new not found error
func NewNotFoundError(resource, message string) *NotFoundError {
	return &NotFoundError{
		Resource: resource,
		Message:  message,
	}
}

// Error implements the error interface
func (e *NotFoundError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

// GRPCStatus returns the gRPC status for this error
func (e *NotFoundError) GRPCStatus() *status.Status {
	return status.New(codes.NotFound, e.Error())
}

// ConflictError represents a business rule violation against current state
type ConflictError struct {
	Resource string
	Message  string
}

// NewConflictError creates a new conflict error
func NewConflictError(resource, message string) *ConflictError {
	return &ConflictError{
		Resource: resource,
		Message:  message,
	}
}

// Error implements the error interface
func (e *ConflictError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("%s conflict", e.Resource)
}

// GRPCStatus returns the gRPC status for this error
func (e *ConflictError) GRPCStatus() *status.Status {
	return status.New(codes.FailedPrecondition, e.Error())
}

// StorageError represents an unexpected failure of the underlying store
type StorageError struct {
	Op  string
	Err error
}

// NewStorageError creates a new storage error
func NewStorageError(op string, err error) *StorageError {
	return &StorageError{
		Op:  op,
		Err: err,
	}
}

// Error implements the error interface
func (e *StorageError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("storage failure during %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("storage failure during %s", e.Op)
}

// Unwrap returns the wrapped error
func (e *StorageError) Unwrap() error {
	return e.Err
}

// GRPCStatus returns the gRPC status for this error.
// The wrapped cause is not exposed to clients.
func (e *StorageError) GRPCStatus() *status.Status {
	return status.New(codes.Internal, "internal server error")
}

// InternalError represents a failure inside the service that is not caused by the store
type InternalError struct {
	Op  string
	Err error
}

// NewInternalError creates a new internal error
func NewInternalError(op string, err error) *InternalError {
	return &InternalError{
		Op:  op,
		Err: err,
	}
}

// Error implements the error interface
func (e *InternalError) Error() string {
	return fmt.Sprintf("internal failure during %s: %v", e.Op, e.Err)
}

// Unwrap returns the wrapped error
func (e *InternalError) Unwrap() error {
	return e.Err
}

// GRPCStatus returns the gRPC status for this error.
// The wrapped cause is not exposed to clients.
func (e *InternalError) GRPCStatus() *status.Status {
	return status.New(codes.Internal, "internal server error")
}

// GRPCStatuser interface for errors that can provide gRPC status
type GRPCStatuser interface {
	GRPCStatus() *status.Status
}

// IsApplicationError reports whether err already belongs to this taxonomy
func IsApplicationError(err error) bool {
	_, ok := err.(GRPCStatuser)
	return ok
}
