package controllers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	apperrors "github.com/doguaydn/microservices-e-commerce/services/common/errors"
	"github.com/doguaydn/microservices-e-commerce/services/user-service/controllers"
	"github.com/doguaydn/microservices-e-commerce/services/user-service/models"
	"github.com/doguaydn/microservices-e-commerce/services/user-service/routes"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockUserService struct {
	mock.Mock
}

func (m *mockUserService) Create(ctx context.Context, req models.UserRequest) (*models.User, error) {
	args := m.Called(ctx, req)
	u, _ := args.Get(0).(*models.User)
	return u, args.Error(1)
}

func (m *mockUserService) Get(ctx context.Context, id uint) (*models.User, error) {
	args := m.Called(ctx, id)
	u, _ := args.Get(0).(*models.User)
	return u, args.Error(1)
}

func (m *mockUserService) GetAll(ctx context.Context) ([]models.User, error) {
	args := m.Called(ctx)
	u, _ := args.Get(0).([]models.User)
	return u, args.Error(1)
}

func (m *mockUserService) Update(ctx context.Context, id uint, req models.UpdateUserRequest) (*models.User, error) {
	args := m.Called(ctx, id, req)
	u, _ := args.Get(0).(*models.User)
	return u, args.Error(1)
}

func (m *mockUserService) Delete(ctx context.Context, id uint) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockUserService) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	args := m.Called(ctx, req)
	r, _ := args.Get(0).(*models.LoginResponse)
	return r, args.Error(1)
}

func (m *mockUserService) Stats(ctx context.Context) (*models.Stats, error) {
	args := m.Called(ctx)
	s, _ := args.Get(0).(*models.Stats)
	return s, args.Error(1)
}

func (m *mockUserService) EnsureAdmin(ctx context.Context, email, password string) error {
	return m.Called(ctx, email, password).Error(0)
}

func passThrough(c *gin.Context) { c.Next() }

func setupRouter(svc *mockUserService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	routes.RegisterUserRoutes(r, controllers.NewUserController(svc), passThrough, passThrough)
	return r
}

func postJSON(r http.Handler, path string, body any) *httptest.ResponseRecorder {
	b, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCreateUser_Success(t *testing.T) {
	svc := &mockUserService{}
	svc.On("Create", mock.Anything, mock.MatchedBy(func(req models.UserRequest) bool {
		return req.Email == "ada@example.com"
	})).Return(&models.User{ID: 7, Name: "Ada", Email: "ada@example.com", Password: "hash"}, nil)

	w := postJSON(setupRouter(svc), "/users", gin.H{"name": "Ada", "email": "ada@example.com", "password": "secret123"})

	require.Equal(t, http.StatusCreated, w.Code)
	assert.NotContains(t, w.Body.String(), "hash")
	assert.Contains(t, w.Body.String(), `"id":7`)
}

func TestCreateUser_Conflict(t *testing.T) {
	svc := &mockUserService{}
	svc.On("Create", mock.Anything, mock.Anything).Return(nil, apperrors.Conflict("Email already exists: ada@example.com"))

	w := postJSON(setupRouter(svc), "/users", gin.H{"name": "Ada", "email": "ada@example.com", "password": "secret123"})

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestCreateUser_Invalid(t *testing.T) {
	svc := &mockUserService{}
	w := postJSON(setupRouter(svc), "/users", gin.H{"name": "Ada", "email": "not-an-email", "password": "secret123"})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestGetUser_NotFound(t *testing.T) {
	svc := &mockUserService{}
	svc.On("Get", mock.Anything, uint(9)).Return(nil, apperrors.NotFound("User not found with id: %d", 9))

	w := httptest.NewRecorder()
	setupRouter(svc).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/users/9", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "User not found with id: 9")
}

func TestLogin_Unauthorized(t *testing.T) {
	svc := &mockUserService{}
	svc.On("Login", mock.Anything, mock.Anything).
		Return(nil, apperrors.New(apperrors.KindUnauthorized, "Invalid email or password", nil))

	w := postJSON(setupRouter(svc), "/users/login", gin.H{"email": "ada@example.com", "password": "nope"})

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
