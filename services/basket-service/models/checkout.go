package models

import "github.com/shopspring/decimal"

const CheckoutMessage = "Order created successfully"

// CheckoutLine is a basket line priced at checkout time.
type CheckoutLine struct {
	ID          uint            `json:"id"`
	UserID      uint            `json:"userId"`
	ProductID   uint            `json:"productId"`
	Quantity    int             `json:"quantity"`
	ProductName string          `json:"productName"`
	Price       decimal.Decimal `json:"price"`
	LineTotal   decimal.Decimal `json:"lineTotal"`
}

type CheckoutResult struct {
	OrderID     string          `json:"orderId"`
	UserID      uint            `json:"userId"`
	Items       []CheckoutLine  `json:"items"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
	Message     string          `json:"message"`
}
