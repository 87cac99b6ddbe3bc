package controllers

import (
	"net/http"
	"strconv"

	apperrors "github.com/doguaydn/microservices-e-commerce/services/common/errors"
	"github.com/doguaydn/microservices-e-commerce/services/invoice-service/services"
	"github.com/gin-gonic/gin"
)

type InvoiceController struct {
	invoiceService services.InvoiceService
}

func NewInvoiceController(svc services.InvoiceService) *InvoiceController {
	return &InvoiceController{invoiceService: svc}
}

func parseUint(c *gin.Context, param string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(param), 10, 64)
	if err != nil || id == 0 {
		apperrors.Respond(c, apperrors.BadRequest("Invalid %s", param))
		return 0, false
	}
	return uint(id), true
}

// GetInvoice handles GET /invoices/:id
func (ic *InvoiceController) GetInvoice(c *gin.Context) {
	id, ok := parseUint(c, "id")
	if !ok {
		return
	}
	inv, err := ic.invoiceService.Get(c.Request.Context(), id)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, inv)
}

// GetOrderInvoices handles GET /invoices/order/:orderId
func (ic *InvoiceController) GetOrderInvoices(c *gin.Context) {
	invoices, err := ic.invoiceService.GetByOrderID(c.Request.Context(), c.Param("orderId"))
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, invoices)
}

// GetUserInvoices handles GET /invoices/user/:userId
func (ic *InvoiceController) GetUserInvoices(c *gin.Context) {
	userID, ok := parseUint(c, "userId")
	if !ok {
		return
	}
	invoices, err := ic.invoiceService.GetByUserID(c.Request.Context(), userID)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, invoices)
}

// GetAllInvoices handles GET /admin/invoices
func (ic *InvoiceController) GetAllInvoices(c *gin.Context) {
	invoices, err := ic.invoiceService.GetAll(c.Request.Context())
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, invoices)
}

// Stats handles GET /admin/stats
func (ic *InvoiceController) Stats(c *gin.Context) {
	stats, err := ic.invoiceService.Stats(c.Request.Context())
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}
