package errors_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	apperrors "github.com/doguaydn/microservices-e-commerce/services/common/errors"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIs_MatchesByKind(t *testing.T) {
	err := fmt.Errorf("checkout: %w", apperrors.Conflict("insufficient stock for product %d", 3))

	assert.True(t, errors.Is(err, apperrors.ErrConflict))
	assert.False(t, errors.Is(err, apperrors.ErrNotFound))
	assert.Equal(t, apperrors.KindConflict, apperrors.KindOf(err))
	assert.Equal(t, apperrors.KindInternal, apperrors.KindOf(errors.New("plain")))
}

func TestRespond_StatusMapping(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		err    error
		status int
		msg    string
	}{
		{apperrors.NotFound("User not found with id: %d", 9), http.StatusNotFound, "User not found with id: 9"},
		{apperrors.Conflict("Empty basket"), http.StatusConflict, "Empty basket"},
		{apperrors.Unavailable("stock service unavailable", errors.New("dial tcp")), http.StatusServiceUnavailable, "stock service unavailable"},
		{apperrors.Serialization("encode line items", errors.New("bad")), http.StatusInternalServerError, "Internal server error"},
		{errors.New("db exploded"), http.StatusInternalServerError, "Internal server error"},
	}

	for _, tc := range cases {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		apperrors.Respond(c, tc.err)

		assert.Equal(t, tc.status, w.Code)
		var body map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, tc.msg, body["error"])
	}
}

func TestErrorMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(apperrors.ErrorMiddleware())
	r.GET("/x", func(c *gin.Context) {
		_ = c.Error(apperrors.NotFound("nothing here"))
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "nothing here")
}
