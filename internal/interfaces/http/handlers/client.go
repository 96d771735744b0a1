// internal/interfaces/http/handlers/client.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/your-org/pos-backend/internal/config"
	"github.com/your-org/pos-backend/internal/domain/client"
	"gorm.io/gorm"
)

// ClientHandler handles client endpoints
type ClientHandler struct {
	clientService *client.Service
	config        *config.Config
}

// NewClientHandler creates a new client handler
func NewClientHandler(db *gorm.DB, cfg *config.Config) *ClientHandler {
	return &ClientHandler{
		clientService: client.NewService(db, cfg),
		config:        cfg,
	}
}

// SettleDebtRequest represents a manual debt settlement payment
type SettleDebtRequest struct {
	Amount int64 `json:"amount" binding:"required"`
}

// GetClients handles GET /clients
func (h *ClientHandler) GetClients(c *gin.Context) {
	search := c.Query("search")
	includeInactive := c.Query("include_inactive") == "true"

	clients, err := h.clientService.GetClients(search, includeInactive)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Clients retrieved successfully",
		"data":    clients,
	})
}

// GetClient handles GET /clients/:id
func (h *ClientHandler) GetClient(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	cl, err := h.clientService.GetClient(id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Client retrieved successfully",
		"data": gin.H{
			"client":           cl,
			"available_credit": cl.AvailableCredit(),
		},
	})
}

// CreateClient handles POST /clients
func (h *ClientHandler) CreateClient(c *gin.Context) {
	var req client.ClientCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	cl, err := h.clientService.CreateClient(&req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Client created successfully",
		"data":    cl,
	})
}

// UpdateClient handles PUT /clients/:id
func (h *ClientHandler) UpdateClient(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req client.ClientUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	cl, err := h.clientService.UpdateClient(id, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Client updated successfully",
		"data":    cl,
	})
}

// DeleteClient handles DELETE /clients/:id
func (h *ClientHandler) DeleteClient(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.clientService.DeleteClient(id); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Client deleted successfully",
	})
}

// SettleDebt handles POST /clients/:id/settle
func (h *ClientHandler) SettleDebt(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req SettleDebtRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	if err := h.clientService.Settle(id, req.Amount); err != nil {
		respondError(c, err)
		return
	}

	cl, err := h.clientService.GetClient(id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Debt settled successfully",
		"data":    cl,
	})
}
