// internal/interfaces/http/handlers/purchase.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/your-org/pos-backend/internal/config"
	"github.com/your-org/pos-backend/internal/domain/financial"
	"github.com/your-org/pos-backend/internal/domain/purchase"
	"github.com/your-org/pos-backend/internal/domain/stock"
	"github.com/your-org/pos-backend/internal/interfaces/http/middleware"
	"gorm.io/gorm"
)

// PurchaseHandler handles purchase order endpoints
type PurchaseHandler struct {
	purchaseService *purchase.Service
	config          *config.Config
}

// NewPurchaseHandler creates a new purchase order handler
func NewPurchaseHandler(db *gorm.DB, cfg *config.Config, logger *logrus.Logger) *PurchaseHandler {
	stockService := stock.NewService(db, cfg, logger)
	financialService := financial.NewService(db, cfg)

	return &PurchaseHandler{
		purchaseService: purchase.NewService(db, cfg, stockService, financialService, logger),
		config:          cfg,
	}
}

// CreateOrder handles POST /purchase-orders
func (h *PurchaseHandler) CreateOrder(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "Authentication required",
		})
		return
	}

	var req purchase.OrderCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	order, err := h.purchaseService.CreateOrder(&req, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Purchase order created successfully",
		"data":    order,
	})
}

// GetOrders handles GET /purchase-orders
func (h *PurchaseHandler) GetOrders(c *gin.Context) {
	var req purchase.OrderListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid query parameters",
			"details": err.Error(),
		})
		return
	}

	orders, total, err := h.purchaseService.GetOrders(&req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Purchase orders retrieved successfully",
		"data": gin.H{
			"orders": orders,
			"total":  total,
			"page":   req.Page,
			"limit":  req.Limit,
		},
	})
}

// GetOrder handles GET /purchase-orders/:id
func (h *PurchaseHandler) GetOrder(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	order, err := h.purchaseService.GetOrder(id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Purchase order retrieved successfully",
		"data":    order,
	})
}

// ReceiveOrder handles PUT /purchase-orders/:id/receive
func (h *PurchaseHandler) ReceiveOrder(c *gin.Context) {
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

	order, err := h.purchaseService.ReceiveOrder(id, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Purchase order received successfully",
		"data":    order,
	})
}

// CancelOrder handles PUT /purchase-orders/:id/cancel
func (h *PurchaseHandler) CancelOrder(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	order, err := h.purchaseService.CancelOrder(id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Purchase order cancelled successfully",
		"data":    order,
	})
}
