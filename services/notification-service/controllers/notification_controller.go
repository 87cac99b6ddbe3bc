package controllers

import (
	"math"
	"net/http"
	"strconv"

	apperrors "github.com/doguaydn/microservices-e-commerce/services/common/errors"
	"github.com/doguaydn/microservices-e-commerce/services/notification-service/models"
	"github.com/doguaydn/microservices-e-commerce/services/notification-service/services"
	"github.com/gin-gonic/gin"
)

type NotificationController struct {
	notificationService services.NotificationService
}

func NewNotificationController(svc services.NotificationService) *NotificationController {
	return &NotificationController{notificationService: svc}
}

func queryInt(c *gin.Context, key string, def int) int {
	if v, err := strconv.Atoi(c.Query(key)); err == nil && v > 0 {
		return v
	}
	return def
}

// GetNotificationLogs handles GET /admin/notifications
func (nc *NotificationController) GetNotificationLogs(c *gin.Context) {
	filter := models.NotificationFilter{
		Status:   c.Query("status"),
		Type:     c.Query("type"),
		Page:     queryInt(c, "page", 1),
		PageSize: queryInt(c, "page_size", models.DefaultPageSize),
	}
	if raw := c.Query("user_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			apperrors.Respond(c, apperrors.BadRequest("invalid user_id"))
			return
		}
		filter.UserID = uint(id)
	}
	filter.Normalize()

	logs, total, err := nc.notificationService.GetLogs(c.Request.Context(), filter)
	if err != nil {
		apperrors.Respond(c, apperrors.Internal("failed to get notification logs", err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":        logs,
		"total":       total,
		"page":        filter.Page,
		"page_size":   filter.PageSize,
		"total_pages": int(math.Ceil(float64(total) / float64(filter.PageSize))),
	})
}
