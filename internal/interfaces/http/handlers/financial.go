// internal/interfaces/http/handlers/financial.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/your-org/pos-backend/internal/config"
	"github.com/your-org/pos-backend/internal/domain/financial"
	"gorm.io/gorm"
)

// FinancialHandler handles payable/receivable endpoints
type FinancialHandler struct {
	financialService *financial.Service
	config           *config.Config
}

// NewFinancialHandler creates a new financial handler
func NewFinancialHandler(db *gorm.DB, cfg *config.Config) *FinancialHandler {
	return &FinancialHandler{
		financialService: financial.NewService(db, cfg),
		config:           cfg,
	}
}

// GetAccounts handles GET /financial/accounts
func (h *FinancialHandler) GetAccounts(c *gin.Context) {
	var req financial.AccountListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid query parameters",
			"details": err.Error(),
		})
		return
	}

	accounts, total, err := h.financialService.GetAccounts(&req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Accounts retrieved successfully",
		"data": gin.H{
			"accounts": accounts,
			"total":    total,
			"page":     req.Page,
			"limit":    req.Limit,
		},
	})
}

// GetAccount handles GET /financial/accounts/:id
func (h *FinancialHandler) GetAccount(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	account, err := h.financialService.GetAccount(id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Account retrieved successfully",
		"data":    account,
	})
}

// CreateAccount handles POST /financial/accounts
func (h *FinancialHandler) CreateAccount(c *gin.Context) {
	var req financial.AccountCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	account, err := h.financialService.CreateAccount(&req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Account created successfully",
		"data":    account,
	})
}

// PayAccount handles PUT /financial/accounts/:id/pay
func (h *FinancialHandler) PayAccount(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	account, err := h.financialService.PayAccount(id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Account paid successfully",
		"data":    account,
	})
}

// CancelAccount handles PUT /financial/accounts/:id/cancel
func (h *FinancialHandler) CancelAccount(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	account, err := h.financialService.CancelAccount(id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Account cancelled successfully",
		"data":    account,
	})
}
