package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"user-account-service/internal/usecase/user"
	apperrors "user-account-service/pkg/errors"
	"user-account-service/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// UserHandler handles HTTP requests for user operations
type UserHandler struct {
	uc  user.Usecase
	log *zap.Logger
}

// NewUserHandler creates a new UserHandler instance
func NewUserHandler(uc user.Usecase, log *zap.Logger) *UserHandler {
	return &UserHandler{
		uc:  uc,
		log: log,
	}
}

// CreateUserRequest represents the HTTP request body for creating a user.
// Field rules are enforced by the usecase so both transports report them the same way.
type CreateUserRequest struct {
	Login     string `json:"login"`
	Password  string `json:"password"`
	GroupCode string `json:"groupCode"`
}

// ReferenceResponse represents a group or state in HTTP responses
type ReferenceResponse struct {
	ID          int64  `json:"id"`
	Code        string `json:"code"`
	Description string `json:"description"`
}

// UserResponse represents the HTTP response for user data
type UserResponse struct {
	ID          int64             `json:"id"`
	Login       string            `json:"login"`
	CreatedDate time.Time         `json:"createdDate"`
	Group       ReferenceResponse `json:"group"`
	State       ReferenceResponse `json:"state"`
}

// ListUsersResponse represents the HTTP response for listing users
type ListUsersResponse struct {
	Users    []UserResponse `json:"users"`
	Offset   int            `json:"offset"`
	PageSize int            `json:"pageSize"`
}

// FieldError is a single rejected field
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string       `json:"error"`
	Message string       `json:"message,omitempty"`
	Fields  []FieldError `json:"fields,omitempty"`
}

func toUserResponse(u user.User) UserResponse {
	return UserResponse{
		ID:          u.ID,
		Login:       u.Login,
		CreatedDate: u.CreatedDate,
		Group:       ReferenceResponse{ID: u.Group.ID, Code: u.Group.Code, Description: u.Group.Description},
		State:       ReferenceResponse{ID: u.State.ID, Code: u.State.Code, Description: u.State.Description},
	}
}

// ListUsers handles GET /api/user/all
func (h *UserHandler) ListUsers(c *gin.Context) {
	log := logger.WithContext(c.Request.Context(), h.log)

	offset, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil {
		h.badParam(c, "offset", "Offset must be an integer")
		return
	}
	pageSize, err := strconv.Atoi(c.DefaultQuery("pageSize", "10"))
	if err != nil {
		h.badParam(c, "pageSize", "Page size must be an integer")
		return
	}

	log.Info("Gin ListUsers request", zap.Int("offset", offset), zap.Int("page_size", pageSize))

	resp, err := h.uc.ListUsers(c.Request.Context(), user.ListUsersRequest{Offset: offset, PageSize: pageSize})
	if err != nil {
		h.handleError(c, err)
		return
	}

	users := make([]UserResponse, len(resp.Users))
	for i, u := range resp.Users {
		users[i] = toUserResponse(u)
	}

	c.JSON(http.StatusOK, ListUsersResponse{
		Users:    users,
		Offset:   resp.Offset,
		PageSize: resp.PageSize,
	})
}

// GetUser handles GET /api/user/:id
func (h *UserHandler) GetUser(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	logger.WithContext(c.Request.Context(), h.log).Info("Gin GetUser request", zap.Int64("id", id))

	resp, err := h.uc.GetUser(c.Request.Context(), user.GetUserRequest{ID: id})
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, toUserResponse(resp.User))
}

// CreateUser handles POST /api/user
func (h *UserHandler) CreateUser(c *gin.Context) {
	log := logger.WithContext(c.Request.Context(), h.log)

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		log.Warn("failed to read create user body", zap.Error(err))
		h.handleError(c, apperrors.NewUnprocessableError("request body could not be read"))
		return
	}

	// An absent body and a JSON null both leave the request nil.
	var req *CreateUserRequest
	if trimmed := bytes.TrimSpace(body); len(trimmed) > 0 {
		if err := json.Unmarshal(trimmed, &req); err != nil {
			log.Warn("malformed create user body", zap.Error(err))
			h.handleError(c, apperrors.NewUnprocessableError("request body is not a valid user"))
			return
		}
	}

	var ucReq *user.CreateUserRequest
	if req != nil {
		log.Info("Gin CreateUser request", zap.String("login", req.Login), zap.String("group_code", req.GroupCode))
		ucReq = &user.CreateUserRequest{
			Login:     req.Login,
			Password:  req.Password,
			GroupCode: req.GroupCode,
		}
	}

	resp, err := h.uc.CreateUser(c.Request.Context(), ucReq)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id": resp.ID,
	})
}

// BlockUser handles DELETE /api/user/:id
func (h *UserHandler) BlockUser(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	logger.WithContext(c.Request.Context(), h.log).Info("Gin BlockUser request", zap.Int64("id", id))

	if _, err := h.uc.BlockUser(c.Request.Context(), user.BlockUserRequest{ID: id}); err != nil {
		h.handleError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *UserHandler) parseID(c *gin.Context) (int64, bool) {
	idStr := c.Param("id")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		h.log.Warn("Invalid user ID", zap.String("id", idStr), zap.Error(err))
		h.badParam(c, "id", "User ID must be a valid number")
		return 0, false
	}
	return id, true
}

func (h *UserHandler) badParam(c *gin.Context, field, message string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{
		Error:   "invalid_parameter",
		Message: message,
		Fields:  []FieldError{{Field: field, Message: message}},
	})
}

// handleError converts usecase errors to appropriate HTTP responses
func (h *UserHandler) handleError(c *gin.Context, err error) {
	log := logger.WithContext(c.Request.Context(), h.log)

	var (
		validationErr    *apperrors.ValidationError
		unprocessableErr *apperrors.UnprocessableError
		notFoundErr      *apperrors.NotFoundError
		conflictErr      *apperrors.ConflictError
	)

	switch {
	case errors.As(err, &validationErr):
		fields := make([]FieldError, len(validationErr.Violations))
		for i, v := range validationErr.Violations {
			fields[i] = FieldError{Field: v.Field, Message: v.Message}
		}
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: err.Error(),
			Fields:  fields,
		})
	case errors.As(err, &unprocessableErr):
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "unprocessable_input",
			Message: err.Error(),
		})
	case errors.As(err, &notFoundErr):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error:   "not_found",
			Message: err.Error(),
		})
	case errors.As(err, &conflictErr):
		c.JSON(http.StatusConflict, ErrorResponse{
			Error:   "conflict",
			Message: err.Error(),
		})
	default:
		log.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "An internal error occurred",
		})
	}
}
