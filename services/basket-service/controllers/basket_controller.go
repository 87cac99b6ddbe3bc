package controllers

import (
	"net/http"

	"github.com/doguaydn/microservices-e-commerce/services/basket-service/models"
	"github.com/doguaydn/microservices-e-commerce/services/basket-service/services"
	apperrors "github.com/doguaydn/microservices-e-commerce/services/common/errors"
	"github.com/gin-gonic/gin"
)

type BasketController struct {
	basketService   services.BasketService
	checkoutService services.CheckoutService
}

func NewBasketController(basket services.BasketService, checkout services.CheckoutService) *BasketController {
	return &BasketController{basketService: basket, checkoutService: checkout}
}

// AddItem handles POST /basket-items
func (bc *BasketController) AddItem(c *gin.Context) {
	var req models.BasketItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.Respond(c, apperrors.BadRequest("Invalid request: %v", err))
		return
	}
	item, err := bc.basketService.Add(c.Request.Context(), req)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

// GetItems handles GET /basket-items
func (bc *BasketController) GetItems(c *gin.Context) {
	items, err := bc.basketService.GetAll(c.Request.Context())
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

// GetItem handles GET /basket-items/:id
func (bc *BasketController) GetItem(c *gin.Context) {
	id, ok := parseUint(c, "id", "basket item id")
	if !ok {
		return
	}
	item, err := bc.basketService.Get(c.Request.Context(), id)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

// GetUserBasket handles GET /basket-items/user/:userId
func (bc *BasketController) GetUserBasket(c *gin.Context) {
	userID, ok := parseUint(c, "userId", "user id")
	if !ok {
		return
	}
	items, err := bc.basketService.GetByUserID(c.Request.Context(), userID)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

// UpdateItem handles PUT /basket-items/:id
func (bc *BasketController) UpdateItem(c *gin.Context) {
	id, ok := parseUint(c, "id", "basket item id")
	if !ok {
		return
	}
	var req models.BasketItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.Respond(c, apperrors.BadRequest("Invalid request: %v", err))
		return
	}
	item, err := bc.basketService.Update(c.Request.Context(), id, req)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

// DeleteItem handles DELETE /basket-items/:id
func (bc *BasketController) DeleteItem(c *gin.Context) {
	id, ok := parseUint(c, "id", "basket item id")
	if !ok {
		return
	}
	if err := bc.basketService.Delete(c.Request.Context(), id); err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Checkout handles POST /basket-items/checkout/:userId. When the order was
// written but stock reduction failed, the response also carries orderId.
func (bc *BasketController) Checkout(c *gin.Context) {
	userID, ok := parseUint(c, "userId", "user id")
	if !ok {
		return
	}
	res, err := bc.checkoutService.Checkout(c.Request.Context(), userID)
	if err != nil {
		if orderID, incomplete := services.IncompleteOrderID(err); incomplete {
			appErr := apperrors.From(err)
			_ = c.Error(err)
			c.AbortWithStatusJSON(appErr.Code, gin.H{"error": appErr.Message, "kind": appErr.Kind, "orderId": orderID})
			return
		}
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusCreated, res)
}
