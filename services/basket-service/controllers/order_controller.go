package controllers

import (
	"net/http"

	"github.com/doguaydn/microservices-e-commerce/services/basket-service/models"
	"github.com/doguaydn/microservices-e-commerce/services/basket-service/services"
	apperrors "github.com/doguaydn/microservices-e-commerce/services/common/errors"
	"github.com/gin-gonic/gin"
)

type OrderController struct {
	orderService services.OrderService
}

func NewOrderController(svc services.OrderService) *OrderController {
	return &OrderController{orderService: svc}
}

// GetOrder handles GET /orders/:orderId
func (oc *OrderController) GetOrder(c *gin.Context) {
	o, err := oc.orderService.GetByOrderID(c.Request.Context(), c.Param("orderId"))
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, o)
}

// GetUserOrders handles GET /orders/user/:userId
func (oc *OrderController) GetUserOrders(c *gin.Context) {
	userID, ok := parseUint(c, "userId", "user id")
	if !ok {
		return
	}
	orders, err := oc.orderService.GetByUserID(c.Request.Context(), userID)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

// UpdateStatus handles PUT /orders/:orderId/status
func (oc *OrderController) UpdateStatus(c *gin.Context) {
	var req models.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.Respond(c, apperrors.BadRequest("status is required"))
		return
	}
	o, err := oc.orderService.UpdateStatus(c.Request.Context(), c.Param("orderId"), req.Status)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, o)
}

// Cancel handles DELETE /orders/:orderId/cancel
func (oc *OrderController) Cancel(c *gin.Context) {
	o, err := oc.orderService.Cancel(c.Request.Context(), c.Param("orderId"))
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, o)
}

// ListOrders handles GET /admin/orders with an optional ?status= filter.
func (oc *OrderController) ListOrders(c *gin.Context) {
	var (
		orders []models.Order
		err    error
	)
	if status := c.Query("status"); status != "" {
		orders, err = oc.orderService.GetByStatus(c.Request.Context(), status)
	} else {
		orders, err = oc.orderService.GetAll(c.Request.Context())
	}
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

// ListByStatus handles GET /admin/orders/status/:status
func (oc *OrderController) ListByStatus(c *gin.Context) {
	orders, err := oc.orderService.GetByStatus(c.Request.Context(), c.Param("status"))
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

// CountByStatus handles GET /admin/orders/status/:status/count
func (oc *OrderController) CountByStatus(c *gin.Context) {
	status := c.Param("status")
	n, err := oc.orderService.CountByStatus(c.Request.Context(), status)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": status, "count": n})
}

// Stats handles GET /admin/orders/stats and GET /admin/stats
func (oc *OrderController) Stats(c *gin.Context) {
	stats, err := oc.orderService.Stats(c.Request.Context())
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}
