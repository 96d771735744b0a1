// internal/interfaces/http/handlers/sale.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/your-org/pos-backend/internal/config"
	"github.com/your-org/pos-backend/internal/domain/audit"
	"github.com/your-org/pos-backend/internal/domain/client"
	"github.com/your-org/pos-backend/internal/domain/sale"
	"github.com/your-org/pos-backend/internal/domain/stock"
	"github.com/your-org/pos-backend/internal/interfaces/http/middleware"
	"gorm.io/gorm"
)

// SaleHandler handles sale endpoints
type SaleHandler struct {
	saleService *sale.Service
	config      *config.Config
}

// NewSaleHandler creates a new sale handler
func NewSaleHandler(db *gorm.DB, cfg *config.Config, logger *logrus.Logger) *SaleHandler {
	stockService := stock.NewService(db, cfg, logger)
	clientService := client.NewService(db, cfg)
	auditService := audit.NewService(db, logger)

	return &SaleHandler{
		saleService: sale.NewService(db, cfg, stockService, clientService, auditService, logger),
		config:      cfg,
	}
}

// CreateSale handles POST /sales
func (h *SaleHandler) CreateSale(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "Authentication required",
		})
		return
	}

	var req sale.CreateSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	s, err := h.saleService.CreateSale(userID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Sale created successfully",
		"data":    s,
	})
}

// GetSales handles GET /sales
func (h *SaleHandler) GetSales(c *gin.Context) {
	var req sale.SaleListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid query parameters",
			"details": err.Error(),
		})
		return
	}

	response, err := h.saleService.GetSales(&req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Sales retrieved successfully",
		"data":    response,
	})
}

// GetSale handles GET /sales/:id
func (h *SaleHandler) GetSale(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	s, err := h.saleService.GetSale(id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Sale retrieved successfully",
		"data":    s,
	})
}

// CancelSale handles PUT /sales/:id/cancel
func (h *SaleHandler) CancelSale(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "Authentication required",
		})
		return
	}

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	s, err := h.saleService.CancelSale(id, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Sale cancelled successfully",
		"data":    s,
	})
}

// MarkPaid handles PUT /sales/:id/pay
func (h *SaleHandler) MarkPaid(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "Authentication required",
		})
		return
	}

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	s, err := h.saleService.MarkPaid(id, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Sale marked as paid",
		"data":    s,
	})
}
