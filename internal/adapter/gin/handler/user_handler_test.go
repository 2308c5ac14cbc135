package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	usecase "user-account-service/internal/usecase/user"
	pkgerrors "user-account-service/pkg/errors"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// MockUserUsecase is a mock implementation of user.Usecase
type MockUserUsecase struct {
	mock.Mock
}

func (m *MockUserUsecase) ListUsers(ctx context.Context, req usecase.ListUsersRequest) (*usecase.ListUsersResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usecase.ListUsersResponse), args.Error(1)
}

func (m *MockUserUsecase) GetUser(ctx context.Context, req usecase.GetUserRequest) (*usecase.GetUserResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usecase.GetUserResponse), args.Error(1)
}

func (m *MockUserUsecase) CreateUser(ctx context.Context, req *usecase.CreateUserRequest) (*usecase.CreateUserResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usecase.CreateUserResponse), args.Error(1)
}

func (m *MockUserUsecase) BlockUser(ctx context.Context, req usecase.BlockUserRequest) (*usecase.BlockUserResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usecase.BlockUserResponse), args.Error(1)
}

func setupTest(t *testing.T) (*gin.Engine, *MockUserUsecase) {
	gin.SetMode(gin.TestMode)
	mockUsecase := new(MockUserUsecase)
	handler := NewUserHandler(mockUsecase, zaptest.NewLogger(t))

	r := gin.New()
	r.GET("/api/user/all", handler.ListUsers)
	r.GET("/api/user/:id", handler.GetUser)
	r.POST("/api/user", handler.CreateUser)
	r.DELETE("/api/user/:id", handler.BlockUser)
	return r, mockUsecase
}

func perform(r http.Handler, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

var sampleUser = usecase.User{
	ID:          1,
	Login:       "root",
	CreatedDate: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
	Group:       usecase.Group{ID: 1, Code: "Admin", Description: "Administration User Group"},
	State:       usecase.State{ID: 1, Code: "Active", Description: "Active User State"},
}

func TestListUsers(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		r, mockUsecase := setupTest(t)
		mockUsecase.On("ListUsers", mock.Anything, usecase.ListUsersRequest{Offset: 0, PageSize: 2}).
			Return(&usecase.ListUsersResponse{Users: []usecase.User{sampleUser}, Offset: 0, PageSize: 2}, nil)

		w := perform(r, http.MethodGet, "/api/user/all?offset=0&pageSize=2", "")

		assert.Equal(t, http.StatusOK, w.Code)
		var resp ListUsersResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.Len(t, resp.Users, 1)
		assert.Equal(t, "root", resp.Users[0].Login)
		assert.Equal(t, "Admin", resp.Users[0].Group.Code)
		assert.Equal(t, 2, resp.PageSize)
		assert.NotContains(t, w.Body.String(), "password")
		mockUsecase.AssertExpectations(t)
	})

	t.Run("Defaults", func(t *testing.T) {
		r, mockUsecase := setupTest(t)
		mockUsecase.On("ListUsers", mock.Anything, usecase.ListUsersRequest{Offset: 0, PageSize: 10}).
			Return(&usecase.ListUsersResponse{Users: []usecase.User{}, PageSize: 10}, nil)

		w := perform(r, http.MethodGet, "/api/user/all", "")

		assert.Equal(t, http.StatusOK, w.Code)
		mockUsecase.AssertExpectations(t)
	})

	t.Run("NonIntegerParameter", func(t *testing.T) {
		r, mockUsecase := setupTest(t)

		w := perform(r, http.MethodGet, "/api/user/all?offset=abc", "")

		assert.Equal(t, http.StatusBadRequest, w.Code)
		mockUsecase.AssertNotCalled(t, "ListUsers", mock.Anything, mock.Anything)
	})

	t.Run("ValidationError", func(t *testing.T) {
		r, mockUsecase := setupTest(t)
		mockUsecase.On("ListUsers", mock.Anything, usecase.ListUsersRequest{Offset: -1, PageSize: 0}).
			Return(nil, pkgerrors.NewValidationErrors(
				pkgerrors.Violation{Field: "Offset", Message: "Offset can not be negative"},
				pkgerrors.Violation{Field: "PageSize", Message: "Page size can not be negative or zero"},
			))

		w := perform(r, http.MethodGet, "/api/user/all?offset=-1&pageSize=0", "")

		assert.Equal(t, http.StatusBadRequest, w.Code)
		var resp ErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "validation_error", resp.Error)
		assert.Len(t, resp.Fields, 2)
	})
}

func TestGetUser(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		r, mockUsecase := setupTest(t)
		mockUsecase.On("GetUser", mock.Anything, usecase.GetUserRequest{ID: 1}).
			Return(&usecase.GetUserResponse{User: sampleUser}, nil)

		w := perform(r, http.MethodGet, "/api/user/1", "")

		assert.Equal(t, http.StatusOK, w.Code)
		var resp UserResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, int64(1), resp.ID)
		assert.Equal(t, "Active User State", resp.State.Description)
		assert.True(t, resp.CreatedDate.Equal(sampleUser.CreatedDate))
	})

	t.Run("InvalidID", func(t *testing.T) {
		r, _ := setupTest(t)

		w := perform(r, http.MethodGet, "/api/user/abc", "")

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("NotFound", func(t *testing.T) {
		r, mockUsecase := setupTest(t)
		mockUsecase.On("GetUser", mock.Anything, usecase.GetUserRequest{ID: 99}).
			Return(nil, pkgerrors.NewNotFoundError("user", "user not found: id=99"))

		w := perform(r, http.MethodGet, "/api/user/99", "")

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Contains(t, w.Body.String(), "not_found")
	})

	t.Run("StorageError", func(t *testing.T) {
		r, mockUsecase := setupTest(t)
		mockUsecase.On("GetUser", mock.Anything, usecase.GetUserRequest{ID: 1}).
			Return(nil, pkgerrors.NewStorageError("get user", errors.New("pq: connection refused")))

		w := perform(r, http.MethodGet, "/api/user/1", "")

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.NotContains(t, w.Body.String(), "connection refused")
	})
}

func TestCreateUser(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		r, mockUsecase := setupTest(t)
		mockUsecase.On("CreateUser", mock.Anything, &usecase.CreateUserRequest{
			Login: "alice", Password: "password1", GroupCode: "User",
		}).Return(&usecase.CreateUserResponse{ID: 4}, nil)

		w := perform(r, http.MethodPost, "/api/user", `{"login":"alice","password":"password1","groupCode":"User"}`)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"id":4}`, w.Body.String())
		mockUsecase.AssertExpectations(t)
	})

	t.Run("EmptyBodyReachesUsecaseAsNil", func(t *testing.T) {
		for _, body := range []string{"", "null", "  null  "} {
			r, mockUsecase := setupTest(t)
			mockUsecase.On("CreateUser", mock.Anything, (*usecase.CreateUserRequest)(nil)).
				Return(nil, pkgerrors.NewUnprocessableError("user payload is required"))

			w := perform(r, http.MethodPost, "/api/user", body)

			assert.Equal(t, http.StatusUnprocessableEntity, w.Code, "body %q", body)
			mockUsecase.AssertExpectations(t)
		}
	})

	t.Run("MalformedBody", func(t *testing.T) {
		r, mockUsecase := setupTest(t)

		w := perform(r, http.MethodPost, "/api/user", `{"login":`)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		mockUsecase.AssertNotCalled(t, "CreateUser", mock.Anything, mock.Anything)
	})

	t.Run("Conflict", func(t *testing.T) {
		r, mockUsecase := setupTest(t)
		mockUsecase.On("CreateUser", mock.Anything, mock.Anything).
			Return(nil, pkgerrors.NewConflictError("user", "admin already exists"))

		w := perform(r, http.MethodPost, "/api/user", `{"login":"boss","password":"password1","groupCode":"Admin"}`)

		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Contains(t, w.Body.String(), "admin already exists")
	})

	t.Run("ValidationError", func(t *testing.T) {
		r, mockUsecase := setupTest(t)
		mockUsecase.On("CreateUser", mock.Anything, mock.Anything).
			Return(nil, pkgerrors.NewValidationError("Login", "Login must be at least 4 characters"))

		w := perform(r, http.MethodPost, "/api/user", `{"login":"ab","password":"password1","groupCode":"User"}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		var resp ErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.Len(t, resp.Fields, 1)
		assert.Equal(t, "Login", resp.Fields[0].Field)
	})

	t.Run("InternalError", func(t *testing.T) {
		r, mockUsecase := setupTest(t)
		mockUsecase.On("CreateUser", mock.Anything, mock.Anything).
			Return(nil, pkgerrors.NewInternalError("hash password", errors.New("bcrypt: cost out of range")))

		w := perform(r, http.MethodPost, "/api/user", `{"login":"alice","password":"password1","groupCode":"User"}`)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.NotContains(t, w.Body.String(), "bcrypt")
	})
}

func TestBlockUser(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		r, mockUsecase := setupTest(t)
		mockUsecase.On("BlockUser", mock.Anything, usecase.BlockUserRequest{ID: 2}).
			Return(&usecase.BlockUserResponse{ID: 2}, nil)

		w := perform(r, http.MethodDelete, "/api/user/2", "")

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Empty(t, w.Body.String())
	})

	t.Run("AlreadyBlocked", func(t *testing.T) {
		r, mockUsecase := setupTest(t)
		mockUsecase.On("BlockUser", mock.Anything, usecase.BlockUserRequest{ID: 3}).
			Return(nil, pkgerrors.NewConflictError("user", "already blocked"))

		w := perform(r, http.MethodDelete, "/api/user/3", "")

		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("NotFound", func(t *testing.T) {
		r, mockUsecase := setupTest(t)
		mockUsecase.On("BlockUser", mock.Anything, usecase.BlockUserRequest{ID: 42}).
			Return(nil, pkgerrors.NewNotFoundError("user", "user not found: id=42"))

		w := perform(r, http.MethodDelete, "/api/user/42", "")

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
