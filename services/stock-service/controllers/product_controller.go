package controllers

import (
	"net/http"
	"strconv"

	apperrors "github.com/doguaydn/microservices-e-commerce/services/common/errors"
	"github.com/doguaydn/microservices-e-commerce/services/stock-service/models"
	"github.com/doguaydn/microservices-e-commerce/services/stock-service/services"
	"github.com/gin-gonic/gin"
)

type ProductController struct {
	productService services.ProductService
}

func NewProductController(svc services.ProductService) *ProductController {
	return &ProductController{productService: svc}
}

func parseID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		apperrors.Respond(c, apperrors.BadRequest("Invalid product id"))
		return 0, false
	}
	return uint(id), true
}

// GetProducts handles GET /products
func (pc *ProductController) GetProducts(c *gin.Context) {
	products, err := pc.productService.GetAll(c.Request.Context())
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, products)
}

// GetProduct handles GET /products/:id
func (pc *ProductController) GetProduct(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	p, err := pc.productService.Get(c.Request.Context(), id)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// CreateProduct handles POST /products
func (pc *ProductController) CreateProduct(c *gin.Context) {
	var req models.ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.Respond(c, apperrors.BadRequest("Invalid request: %v", err))
		return
	}
	p, err := pc.productService.Create(c.Request.Context(), req)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

// UpdateProduct handles PUT /products/:id
func (pc *ProductController) UpdateProduct(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req models.ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.Respond(c, apperrors.BadRequest("Invalid request: %v", err))
		return
	}
	p, err := pc.productService.Update(c.Request.Context(), id, req)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// DeleteProduct handles DELETE /products/:id
func (pc *ProductController) DeleteProduct(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := pc.productService.Delete(c.Request.Context(), id); err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ReduceStock handles PUT /products/:id/reduce-stock. The basket service is
// the only caller.
func (pc *ProductController) ReduceStock(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req models.ReduceStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.Respond(c, apperrors.BadRequest("quantity must be positive"))
		return
	}
	p, err := pc.productService.ReduceStock(c.Request.Context(), id, req.Quantity)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// LowStock handles GET /admin/products/low-stock?threshold=N
func (pc *ProductController) LowStock(c *gin.Context) {
	threshold, _ := strconv.Atoi(c.DefaultQuery("threshold", strconv.Itoa(services.DefaultLowStockThreshold)))
	products, err := pc.productService.LowStock(c.Request.Context(), threshold)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, products)
}

// Stats handles GET /admin/stats
func (pc *ProductController) Stats(c *gin.Context) {
	stats, err := pc.productService.Stats(c.Request.Context())
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}
