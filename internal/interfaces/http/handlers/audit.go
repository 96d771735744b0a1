// internal/interfaces/http/handlers/audit.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/your-org/pos-backend/internal/config"
	"github.com/your-org/pos-backend/internal/domain/audit"
	"gorm.io/gorm"
)

// AuditHandler handles audit log endpoints
type AuditHandler struct {
	auditService *audit.Service
	config       *config.Config
}

// NewAuditHandler creates a new audit handler
func NewAuditHandler(db *gorm.DB, cfg *config.Config, logger *logrus.Logger) *AuditHandler {
	return &AuditHandler{
		auditService: audit.NewService(db, logger),
		config:       cfg,
	}
}

// GetLogs handles GET /admin/audit-logs
func (h *AuditHandler) GetLogs(c *gin.Context) {
	var req audit.AuditListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid query parameters",
			"details": err.Error(),
		})
		return
	}

	logs, total, err := h.auditService.GetLogs(&req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Audit logs retrieved successfully",
		"data": gin.H{
			"logs":  logs,
			"total": total,
			"page":  req.Page,
			"limit": req.Limit,
		},
	})
}
