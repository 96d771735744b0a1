// internal/domain/stock/service.go
package stock

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/your-org/pos-backend/internal/config"
	"github.com/your-org/pos-backend/internal/domain/apperr"
	"github.com/your-org/pos-backend/internal/domain/product"
	"gorm.io/gorm"
)

// Service keeps Product.Quantity consistent with the append-only movement
// history. Every mutation dual-writes the product row and a movement row;
// Debit and Credit run inside the caller's transaction so both writes commit
// or neither does.
type Service struct {
	db     *gorm.DB
	config *config.Config
	logger *logrus.Logger
}

// NewService creates a new stock ledger service
func NewService(db *gorm.DB, cfg *config.Config, logger *logrus.Logger) *Service {
	if logger == nil {
		logger = logrus.New()
	}
	return &Service{
		db:     db,
		config: cfg,
		logger: logger,
	}
}

// MovementRequest represents a manual stock movement (entry, loss, adjustment)
type MovementRequest struct {
	ProductID  uint         `json:"product_id" binding:"required"`
	Type       MovementType `json:"type" binding:"required"`
	Quantity   int          `json:"quantity" binding:"required"`
	UnitPrice  int64        `json:"unit_price"`
	Reason     string       `json:"reason"`
	NewCount   *int         `json:"new_count"` // Adjustment only: the counted quantity
}

// MovementListRequest represents movement list query parameters
type MovementListRequest struct {
	Page          int          `form:"page,default=1"`
	Limit         int          `form:"limit,default=20"`
	ProductID     uint         `form:"product_id"`
	Type          MovementType `form:"type"`
	ReferenceType string       `form:"reference_type"`
	ReferenceID   uint         `form:"reference_id"`
}

// Debit removes qty units of a product inside the given transaction and
// appends the matching outbound movement. The quantity update is a guarded
// conditional decrement: zero rows affected means the product is missing or
// the stock is insufficient, so two concurrent debits can never oversell.
func (s *Service) Debit(tx *gorm.DB, productID uint, qty int, mtype MovementType, unitPrice int64, reason, refType string, refID, userID uint) error {
	if qty <= 0 {
		return fmt.Errorf("debit quantity must be positive: %w", apperr.ErrValidation)
	}
	if !mtype.IsOutbound() {
		return fmt.Errorf("movement type %s is not outbound: %w", mtype, apperr.ErrValidation)
	}

	result := tx.Model(&product.Product{}).
		Where("id = ? AND quantity >= ?", productID, qty).
		UpdateColumn("quantity", gorm.Expr("quantity - ?", qty))

	if result.Error != nil {
		return fmt.Errorf("failed to debit stock: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		var p product.Product
		if err := tx.Where("id = ?", productID).First(&p).Error; err != nil {
			return fmt.Errorf("product %d: %w", productID, apperr.ErrNotFound)
		}
		return fmt.Errorf("product %d has %d units, requested %d: %w",
			productID, p.Quantity, qty, apperr.ErrInsufficientStock)
	}

	var p product.Product
	if err := tx.Where("id = ?", productID).First(&p).Error; err != nil {
		return fmt.Errorf("failed to reload product: %w", err)
	}

	movement := &StockMovement{
		ProductID:        productID,
		Type:             mtype,
		Quantity:         qty,
		PreviousQuantity: p.Quantity + qty,
		NewQuantity:      p.Quantity,
		UnitPrice:        unitPrice,
		TotalPrice:       unitPrice * int64(qty),
		Reason:           reason,
		ReferenceType:    refType,
		ReferenceID:      refID,
		CreatedBy:        userID,
	}

	if err := tx.Create(movement).Error; err != nil {
		return fmt.Errorf("failed to record stock movement: %w", err)
	}

	// Low-stock observer: log only, never block the workflow
	if s.config.Sales.LowStockLogEnabled && p.IsLowStock() {
		s.logger.WithFields(logrus.Fields{
			"product_id":   p.ID,
			"barcode":      p.Barcode,
			"quantity":     p.Quantity,
			"min_quantity": p.MinQuantity,
		}).Warn("Product stock at or below minimum quantity")
	}

	return nil
}

// Credit adds qty units of a product inside the given transaction and appends
// the matching inbound movement. Stock has no upper bound.
func (s *Service) Credit(tx *gorm.DB, productID uint, qty int, mtype MovementType, unitPrice int64, reason, refType string, refID, userID uint) error {
	if qty <= 0 {
		return fmt.Errorf("credit quantity must be positive: %w", apperr.ErrValidation)
	}
	if !mtype.IsInbound() {
		return fmt.Errorf("movement type %s is not inbound: %w", mtype, apperr.ErrValidation)
	}

	result := tx.Model(&product.Product{}).
		Where("id = ?", productID).
		UpdateColumn("quantity", gorm.Expr("quantity + ?", qty))

	if result.Error != nil {
		return fmt.Errorf("failed to credit stock: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return fmt.Errorf("product %d: %w", productID, apperr.ErrNotFound)
	}

	var p product.Product
	if err := tx.Where("id = ?", productID).First(&p).Error; err != nil {
		return fmt.Errorf("failed to reload product: %w", err)
	}

	movement := &StockMovement{
		ProductID:        productID,
		Type:             mtype,
		Quantity:         qty,
		PreviousQuantity: p.Quantity - qty,
		NewQuantity:      p.Quantity,
		UnitPrice:        unitPrice,
		TotalPrice:       unitPrice * int64(qty),
		Reason:           reason,
		ReferenceType:    refType,
		ReferenceID:      refID,
		CreatedBy:        userID,
	}

	if err := tx.Create(movement).Error; err != nil {
		return fmt.Errorf("failed to record stock movement: %w", err)
	}

	return nil
}

// RecordMovement handles manual movements (entry, loss, adjustment) in their
// own transaction.
func (s *Service) RecordMovement(req *MovementRequest, userID uint) (*StockMovement, error) {
	if !req.Type.Valid() {
		return nil, fmt.Errorf("invalid movement type %q: %w", req.Type, apperr.ErrValidation)
	}
	if req.Type == MovementTypeExit || req.Type == MovementTypeReturn {
		return nil, fmt.Errorf("movement type %s is reserved for the sale workflow: %w", req.Type, apperr.ErrValidation)
	}

	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	var err error
	switch req.Type {
	case MovementTypeEntry:
		err = s.Credit(tx, req.ProductID, req.Quantity, MovementTypeEntry, req.UnitPrice, req.Reason, "manual", 0, userID)
	case MovementTypeLoss:
		err = s.Debit(tx, req.ProductID, req.Quantity, MovementTypeLoss, req.UnitPrice, req.Reason, "manual", 0, userID)
	case MovementTypeAdjustment:
		err = s.adjust(tx, req, userID)
	}

	if err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, fmt.Errorf("failed to commit stock movement: %w", err)
	}

	var movement StockMovement
	if err := s.db.Where("product_id = ?", req.ProductID).Order("id DESC").First(&movement).Error; err != nil {
		return nil, fmt.Errorf("failed to load recorded movement: %w", err)
	}

	return &movement, nil
}

// adjust sets the quantity to an explicitly counted value and records an
// adjustment movement carrying the delta.
func (s *Service) adjust(tx *gorm.DB, req *MovementRequest, userID uint) error {
	if req.NewCount == nil {
		return fmt.Errorf("adjustment requires new_count: %w", apperr.ErrValidation)
	}
	if *req.NewCount < 0 {
		return fmt.Errorf("counted quantity must not be negative: %w", apperr.ErrValidation)
	}

	var p product.Product
	if err := tx.Where("id = ?", req.ProductID).First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("product %d: %w", req.ProductID, apperr.ErrNotFound)
		}
		return fmt.Errorf("failed to retrieve product: %w", err)
	}

	delta := *req.NewCount - p.Quantity
	if delta == 0 {
		return fmt.Errorf("counted quantity equals current quantity: %w", apperr.ErrValidation)
	}

	if err := tx.Model(&product.Product{}).Where("id = ?", p.ID).
		UpdateColumn("quantity", *req.NewCount).Error; err != nil {
		return fmt.Errorf("failed to adjust stock: %w", err)
	}

	qty := delta
	if qty < 0 {
		qty = -qty
	}

	movement := &StockMovement{
		ProductID:        p.ID,
		Type:             MovementTypeAdjustment,
		Quantity:         qty,
		PreviousQuantity: p.Quantity,
		NewQuantity:      *req.NewCount,
		Reason:           req.Reason,
		ReferenceType:    "manual",
		CreatedBy:        userID,
	}

	if err := tx.Create(movement).Error; err != nil {
		return fmt.Errorf("failed to record adjustment movement: %w", err)
	}

	return nil
}

// GetMovements retrieves movements with filtering and pagination
func (s *Service) GetMovements(req *MovementListRequest) ([]StockMovement, int64, error) {
	var movements []StockMovement
	var total int64

	query := s.db.Model(&StockMovement{})

	if req.ProductID > 0 {
		query = query.Where("product_id = ?", req.ProductID)
	}
	if req.Type != "" {
		query = query.Where("type = ?", req.Type)
	}
	if req.ReferenceType != "" {
		query = query.Where("reference_type = ?", req.ReferenceType)
	}
	if req.ReferenceID > 0 {
		query = query.Where("reference_id = ?", req.ReferenceID)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count movements: %w", err)
	}

	offset := (req.Page - 1) * req.Limit
	if err := query.Order("created_at DESC, id DESC").Offset(offset).Limit(req.Limit).Find(&movements).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to retrieve movements: %w", err)
	}

	return movements, total, nil
}

// GetMovementsByReference lists the movements created by a given originating
// record, e.g. all EXIT rows of a sale.
func (s *Service) GetMovementsByReference(refType string, refID uint) ([]StockMovement, error) {
	var movements []StockMovement
	err := s.db.
		Where("reference_type = ? AND reference_id = ?", refType, refID).
		Order("id ASC").
		Find(&movements).Error
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve movements: %w", err)
	}
	return movements, nil
}
