package controllers

import (
	"net/http"

	"github.com/doguaydn/microservices-e-commerce/services/basket-service/models"
	"github.com/doguaydn/microservices-e-commerce/services/basket-service/services"
	apperrors "github.com/doguaydn/microservices-e-commerce/services/common/errors"
	"github.com/gin-gonic/gin"
)

type WishlistController struct {
	wishlistService services.WishlistService
}

func NewWishlistController(svc services.WishlistService) *WishlistController {
	return &WishlistController{wishlistService: svc}
}

// Add handles POST /wishlist
func (wc *WishlistController) Add(c *gin.Context) {
	var req models.WishlistItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.Respond(c, apperrors.BadRequest("Invalid request: %v", err))
		return
	}
	item, err := wc.wishlistService.Add(c.Request.Context(), req.UserID, req.ProductID)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

// GetUserWishlist handles GET /wishlist/user/:userId
func (wc *WishlistController) GetUserWishlist(c *gin.Context) {
	userID, ok := parseUint(c, "userId", "user id")
	if !ok {
		return
	}
	items, err := wc.wishlistService.GetByUserID(c.Request.Context(), userID)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

// Delete handles DELETE /wishlist/:id
func (wc *WishlistController) Delete(c *gin.Context) {
	id, ok := parseUint(c, "id", "wishlist item id")
	if !ok {
		return
	}
	if err := wc.wishlistService.Delete(c.Request.Context(), id); err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
