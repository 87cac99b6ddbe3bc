package controllers

import (
	"strconv"

	apperrors "github.com/doguaydn/microservices-e-commerce/services/common/errors"
	"github.com/gin-gonic/gin"
)

func parseUint(c *gin.Context, param, what string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(param), 10, 64)
	if err != nil || id == 0 {
		apperrors.Respond(c, apperrors.BadRequest("Invalid %s", what))
		return 0, false
	}
	return uint(id), true
}
