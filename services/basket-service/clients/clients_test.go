package clients_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/doguaydn/microservices-e-commerce/services/basket-service/clients"
	apperrors "github.com/doguaydn/microservices-e-commerce/services/common/errors"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func stockServer(t *testing.T) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/products/:id", func(c *gin.Context) {
		switch c.Param("id") {
		case "3":
			c.JSON(http.StatusOK, gin.H{"id": 3, "name": "Mug", "price": "10.00", "quantity": 5})
		case "500":
			c.JSON(http.StatusInternalServerError, gin.H{"error": "boom"})
		default:
			c.JSON(http.StatusNotFound, gin.H{"error": "Product not found with id: " + c.Param("id")})
		}
	})
	r.PUT("/products/:id/reduce-stock", func(c *gin.Context) {
		var body struct {
			Quantity int `json:"quantity"`
		}
		_ = json.NewDecoder(c.Request.Body).Decode(&body)
		if body.Quantity > 5 {
			c.JSON(http.StatusConflict, gin.H{"error": "Insufficient stock for product 3: available 5, requested 6"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"id": 3, "quantity": 5 - body.Quantity})
	})
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func TestStockClient_GetProduct(t *testing.T) {
	srv := stockServer(t)
	c := clients.NewStockClient(srv.URL, time.Second, zap.NewNop())

	p, err := c.GetProduct(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, "Mug", p.Name)
	assert.Equal(t, "10", p.Price.String())
	assert.Equal(t, 5, p.Quantity)
}

func TestStockClient_NotFound(t *testing.T) {
	srv := stockServer(t)
	c := clients.NewStockClient(srv.URL, time.Second, zap.NewNop())

	_, err := c.GetProduct(context.Background(), 99)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	ok, err := c.Exists(context.Background(), 99)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStockClient_ServerErrorIsUnavailable(t *testing.T) {
	srv := stockServer(t)
	c := clients.NewStockClient(srv.URL, time.Second, zap.NewNop())

	_, err := c.GetProduct(context.Background(), 500)
	assert.ErrorIs(t, err, apperrors.ErrUnavailable)
}

func TestStockClient_RefusedConnectionIsUnavailable(t *testing.T) {
	srv := stockServer(t)
	url := srv.URL
	srv.Close()

	c := clients.NewStockClient(url, time.Second, zap.NewNop())
	_, err := c.GetProduct(context.Background(), 3)
	assert.ErrorIs(t, err, apperrors.ErrUnavailable)
}

func TestStockClient_TimeoutIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
	}))
	defer srv.Close()

	c := clients.NewStockClient(srv.URL, 50*time.Millisecond, zap.NewNop())
	_, err := c.GetProduct(context.Background(), 3)
	assert.ErrorIs(t, err, apperrors.ErrUnavailable)
}

func TestStockClient_ReduceStock(t *testing.T) {
	srv := stockServer(t)
	c := clients.NewStockClient(srv.URL, time.Second, zap.NewNop())

	require.NoError(t, c.ReduceStock(context.Background(), 3, 2))

	err := c.ReduceStock(context.Background(), 3, 6)
	assert.ErrorIs(t, err, apperrors.ErrConflict)
	assert.Contains(t, err.Error(), "Insufficient stock")
}

func TestIdentityClient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Path == "/users/7" {
			_, _ = w.Write([]byte(`{"id":7,"name":"Ada","email":"ada@example.com"}`))
			return
		}
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"User not found"}`))
	}))
	defer srv.Close()
	c := clients.NewIdentityClient(srv.URL, time.Second, zap.NewNop())

	u, err := c.GetUser(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", u.Email)

	_, err = c.GetUser(context.Background(), 8)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.Equal(t, "User not found with id: 8", apperrors.From(err).Message)

	ok, err := c.Exists(context.Background(), 7)
	require.NoError(t, err)
	assert.True(t, ok)
}
