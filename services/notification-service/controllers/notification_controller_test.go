package controllers_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/doguaydn/microservices-e-commerce/pkg/events"
	"github.com/doguaydn/microservices-e-commerce/services/common/auth"
	"github.com/doguaydn/microservices-e-commerce/services/notification-service/controllers"
	"github.com/doguaydn/microservices-e-commerce/services/notification-service/models"
	"github.com/doguaydn/microservices-e-commerce/services/notification-service/routes"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockNotificationService struct{ mock.Mock }

func (m *mockNotificationService) UserRegistered(ctx context.Context, evt events.UserRegisteredEvent) error {
	return m.Called(ctx, evt).Error(0)
}

func (m *mockNotificationService) OrderCreated(ctx context.Context, evt events.OrderCreatedEvent) error {
	return m.Called(ctx, evt).Error(0)
}

func (m *mockNotificationService) InvoiceCreated(ctx context.Context, evt events.InvoiceCreatedEvent) error {
	return m.Called(ctx, evt).Error(0)
}

func (m *mockNotificationService) GetLogs(ctx context.Context, f models.NotificationFilter) ([]models.NotificationLog, int64, error) {
	args := m.Called(ctx, f)
	logs, _ := args.Get(0).([]models.NotificationLog)
	return logs, args.Get(1).(int64), args.Error(2)
}

const secret = "test-secret"

func setupRouter(svc *mockNotificationService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	tokens := auth.NewTokens(secret, auth.DefaultTTL)
	routes.RegisterRoutes(r, controllers.NewNotificationController(svc), auth.RequireRole(tokens, auth.RoleAdmin))
	return r
}

func get(t *testing.T, r http.Handler, path, role string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if role != "" {
		token, err := auth.NewTokens(secret, auth.DefaultTTL).Issue(1, "admin@example.com", role)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestGetNotificationLogs_FiltersAndPages(t *testing.T) {
	svc := &mockNotificationService{}
	want := models.NotificationFilter{UserID: 7, Status: models.StatusFailed, Type: models.TypeOrderCreated, Page: 2, PageSize: 10}
	svc.On("GetLogs", mock.Anything, want).
		Return([]models.NotificationLog{{ID: 11, UserID: 7, Status: models.StatusFailed}}, int64(21), nil)

	w := get(t, setupRouter(svc), "/admin/notifications?user_id=7&status=failed&type=order_created&page=2&page_size=10", auth.RoleAdmin)
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Data       []models.NotificationLog `json:"data"`
		Total      int64                    `json:"total"`
		Page       int                      `json:"page"`
		PageSize   int                      `json:"page_size"`
		TotalPages int                      `json:"total_pages"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Len(t, body.Data, 1)
	assert.Equal(t, int64(21), body.Total)
	assert.Equal(t, 2, body.Page)
	assert.Equal(t, 3, body.TotalPages)
	svc.AssertExpectations(t)
}

func TestGetNotificationLogs_ClampsPageSize(t *testing.T) {
	svc := &mockNotificationService{}
	svc.On("GetLogs", mock.Anything, models.NotificationFilter{Page: 1, PageSize: models.MaxPageSize}).
		Return([]models.NotificationLog{}, int64(0), nil)

	w := get(t, setupRouter(svc), "/admin/notifications?page_size=5000&page=-3", auth.RoleAdmin)
	assert.Equal(t, http.StatusOK, w.Code)
	svc.AssertExpectations(t)
}

func TestGetNotificationLogs_Errors(t *testing.T) {
	svc := &mockNotificationService{}
	svc.On("GetLogs", mock.Anything, mock.Anything).Return(nil, int64(0), errors.New("db down"))
	r := setupRouter(svc)

	assert.Equal(t, http.StatusUnauthorized, get(t, r, "/admin/notifications", "").Code)
	assert.Equal(t, http.StatusForbidden, get(t, r, "/admin/notifications", auth.RoleUser).Code)
	assert.Equal(t, http.StatusBadRequest, get(t, r, "/admin/notifications?user_id=abc", auth.RoleAdmin).Code)

	w := get(t, r, "/admin/notifications", auth.RoleAdmin)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "db down")
}
