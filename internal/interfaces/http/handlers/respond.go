// internal/interfaces/http/handlers/respond.go
package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/your-org/pos-backend/internal/domain/apperr"
)

// respondError translates a domain error into an HTTP response. Missing
// records map to 404, business conflicts (stock, credit, cancelled state) to
// 409, validation failures to 400, everything else to 500.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, apperr.ErrInsufficientStock),
		errors.Is(err, apperr.ErrCreditLimitExceeded),
		errors.Is(err, apperr.ErrInactiveProduct),
		errors.Is(err, apperr.ErrAlreadyCancelled):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, apperr.ErrValidation),
		errors.Is(err, apperr.ErrCreditSaleRequiresClient):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

// parseIDParam reads a numeric :id style path parameter
func parseIDParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + name + " parameter"})
		return 0, false
	}
	return uint(id), true
}
