// internal/interfaces/http/handlers/promotion.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/your-org/pos-backend/internal/config"
	"github.com/your-org/pos-backend/internal/domain/promotion"
	"gorm.io/gorm"
)

// PromotionHandler handles promotion endpoints
type PromotionHandler struct {
	promotionService *promotion.Service
	config           *config.Config
}

// NewPromotionHandler creates a new promotion handler
func NewPromotionHandler(db *gorm.DB, cfg *config.Config) *PromotionHandler {
	return &PromotionHandler{
		promotionService: promotion.NewService(db, cfg),
		config:           cfg,
	}
}

// GetPromotions handles GET /promotions
func (h *PromotionHandler) GetPromotions(c *gin.Context) {
	var req promotion.PromotionListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid query parameters",
			"details": err.Error(),
		})
		return
	}

	promotions, total, err := h.promotionService.GetPromotions(&req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Promotions retrieved successfully",
		"data": gin.H{
			"promotions": promotions,
			"total":      total,
			"page":       req.Page,
			"limit":      req.Limit,
		},
	})
}

// GetPromotion handles GET /promotions/:id
func (h *PromotionHandler) GetPromotion(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	promo, err := h.promotionService.GetPromotion(id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Promotion retrieved successfully",
		"data":    promo,
	})
}

// CreatePromotion handles POST /promotions
func (h *PromotionHandler) CreatePromotion(c *gin.Context) {
	var req promotion.PromotionCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	promo, err := h.promotionService.CreatePromotion(&req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Promotion created successfully",
		"data":    promo,
	})
}

// UpdatePromotion handles PUT /promotions/:id
func (h *PromotionHandler) UpdatePromotion(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req promotion.PromotionUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	promo, err := h.promotionService.UpdatePromotion(id, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Promotion updated successfully",
		"data":    promo,
	})
}

// DeletePromotion handles DELETE /promotions/:id
func (h *PromotionHandler) DeletePromotion(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.promotionService.DeletePromotion(id); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Promotion deleted successfully",
	})
}
