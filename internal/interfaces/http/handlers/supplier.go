// internal/interfaces/http/handlers/supplier.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/your-org/pos-backend/internal/config"
	"github.com/your-org/pos-backend/internal/domain/supplier"
	"gorm.io/gorm"
)

// SupplierHandler handles supplier endpoints
type SupplierHandler struct {
	supplierService *supplier.Service
	config          *config.Config
}

// NewSupplierHandler creates a new supplier handler
func NewSupplierHandler(db *gorm.DB, cfg *config.Config) *SupplierHandler {
	return &SupplierHandler{
		supplierService: supplier.NewService(db, cfg),
		config:          cfg,
	}
}

// GetSuppliers handles GET /suppliers
func (h *SupplierHandler) GetSuppliers(c *gin.Context) {
	search := c.Query("search")
	includeInactive := c.Query("include_inactive") == "true"

	suppliers, err := h.supplierService.GetSuppliers(search, includeInactive)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Suppliers retrieved successfully",
		"data":    suppliers,
	})
}

// GetSupplier handles GET /suppliers/:id
func (h *SupplierHandler) GetSupplier(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	s, err := h.supplierService.GetSupplier(id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Supplier retrieved successfully",
		"data":    s,
	})
}

// CreateSupplier handles POST /suppliers
func (h *SupplierHandler) CreateSupplier(c *gin.Context) {
	var req supplier.SupplierCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	s, err := h.supplierService.CreateSupplier(&req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Supplier created successfully",
		"data":    s,
	})
}

// UpdateSupplier handles PUT /suppliers/:id
func (h *SupplierHandler) UpdateSupplier(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req supplier.SupplierUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	s, err := h.supplierService.UpdateSupplier(id, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Supplier updated successfully",
		"data":    s,
	})
}

// DeleteSupplier handles DELETE /suppliers/:id
func (h *SupplierHandler) DeleteSupplier(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.supplierService.DeleteSupplier(id); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Supplier deleted successfully",
	})
}
