package clients

import (
	"context"
	"fmt"
	"net/http"
	"time"

	apperrors "github.com/doguaydn/microservices-e-commerce/services/common/errors"
	"go.uber.org/zap"
)

type User struct {
	ID      uint   `json:"id"`
	Name    string `json:"name"`
	Surname string `json:"surname"`
	Email   string `json:"email"`
}

type IdentityClient interface {
	Exists(ctx context.Context, userID uint) (bool, error)
	GetUser(ctx context.Context, userID uint) (*User, error)
}

type HTTPIdentityClient struct {
	httpClient
}

func NewIdentityClient(baseURL string, timeout time.Duration, logger *zap.Logger) *HTTPIdentityClient {
	return &HTTPIdentityClient{httpClient: newHTTPClient("User service", baseURL, timeout, logger)}
}

func (c *HTTPIdentityClient) Exists(ctx context.Context, userID uint) (bool, error) {
	_, err := c.GetUser(ctx, userID)
	if apperrors.KindOf(err) == apperrors.KindNotFound {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (c *HTTPIdentityClient) GetUser(ctx context.Context, userID uint) (*User, error) {
	var u User
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/users/%d", userID), nil, &u); err != nil {
		if apperrors.KindOf(err) == apperrors.KindNotFound {
			return nil, apperrors.NotFound("User not found with id: %d", userID)
		}
		return nil, err
	}
	return &u, nil
}
