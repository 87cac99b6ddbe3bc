package clients

import (
	"context"
	"fmt"
	"net/http"
	"time"

	apperrors "github.com/doguaydn/microservices-e-commerce/services/common/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Product is the stock-service view the basket needs.
type Product struct {
	ID       uint            `json:"id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity"`
}

type StockClient interface {
	Exists(ctx context.Context, productID uint) (bool, error)
	GetProduct(ctx context.Context, productID uint) (*Product, error)
	// ReduceStock fails with Conflict when less than qty is available.
	ReduceStock(ctx context.Context, productID uint, qty int) error
}

type HTTPStockClient struct {
	httpClient
}

func NewStockClient(baseURL string, timeout time.Duration, logger *zap.Logger) *HTTPStockClient {
	return &HTTPStockClient{httpClient: newHTTPClient("Stock service", baseURL, timeout, logger)}
}

func (c *HTTPStockClient) Exists(ctx context.Context, productID uint) (bool, error) {
	_, err := c.GetProduct(ctx, productID)
	if apperrors.KindOf(err) == apperrors.KindNotFound {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (c *HTTPStockClient) GetProduct(ctx context.Context, productID uint) (*Product, error) {
	var p Product
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/products/%d", productID), nil, &p); err != nil {
		if apperrors.KindOf(err) == apperrors.KindNotFound {
			return nil, apperrors.NotFound("Product not found with id: %d", productID)
		}
		return nil, err
	}
	return &p, nil
}

func (c *HTTPStockClient) ReduceStock(ctx context.Context, productID uint, qty int) error {
	body := map[string]int{"quantity": qty}
	return c.do(ctx, http.MethodPut, fmt.Sprintf("/products/%d/reduce-stock", productID), body, nil)
}
