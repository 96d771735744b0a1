// internal/domain/purchase/service.go
package purchase

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/your-org/pos-backend/internal/config"
	"github.com/your-org/pos-backend/internal/domain/apperr"
	"github.com/your-org/pos-backend/internal/domain/financial"
	"github.com/your-org/pos-backend/internal/domain/product"
	"github.com/your-org/pos-backend/internal/domain/stock"
	"github.com/your-org/pos-backend/internal/domain/supplier"
	"gorm.io/gorm"
)

// Service handles purchase order business logic
type Service struct {
	db               *gorm.DB
	config           *config.Config
	stockService     *stock.Service
	financialService *financial.Service
	logger           *logrus.Logger
}

// NewService creates a new purchase order service
func NewService(db *gorm.DB, cfg *config.Config, stockService *stock.Service, financialService *financial.Service, logger *logrus.Logger) *Service {
	if logger == nil {
		logger = logrus.New()
	}
	return &Service{
		db:               db,
		config:           cfg,
		stockService:     stockService,
		financialService: financialService,
		logger:           logger,
	}
}

// OrderItemRequest represents a purchase order line in a create request
type OrderItemRequest struct {
	ProductID uint  `json:"product_id" binding:"required"`
	Quantity  int   `json:"quantity" binding:"required"`
	UnitCost  int64 `json:"unit_cost" binding:"required"`
}

// OrderCreateRequest represents purchase order creation data
type OrderCreateRequest struct {
	SupplierID uint               `json:"supplier_id" binding:"required"`
	Notes      string             `json:"notes"`
	Items      []OrderItemRequest `json:"items" binding:"required,dive"`
}

// OrderListRequest represents purchase order list query parameters
type OrderListRequest struct {
	Page       int         `form:"page,default=1"`
	Limit      int         `form:"limit,default=20"`
	SupplierID uint        `form:"supplier_id"`
	Status     OrderStatus `form:"status"`
}

// CreateOrder registers a pending purchase order. Stock is untouched until
// the order is received.
func (s *Service) CreateOrder(req *OrderCreateRequest, userID uint) (*PurchaseOrder, error) {
	if len(req.Items) == 0 {
		return nil, fmt.Errorf("purchase order requires at least one item: %w", apperr.ErrValidation)
	}

	var sup supplier.Supplier
	if err := s.db.Where("id = ?", req.SupplierID).First(&sup).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("supplier %d: %w", req.SupplierID, apperr.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to retrieve supplier: %w", err)
	}

	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	var total int64
	items := make([]PurchaseOrderItem, 0, len(req.Items))
	for _, item := range req.Items {
		if item.Quantity <= 0 {
			tx.Rollback()
			return nil, fmt.Errorf("item quantity must be positive: %w", apperr.ErrValidation)
		}
		if item.UnitCost < 0 {
			tx.Rollback()
			return nil, fmt.Errorf("item unit cost must not be negative: %w", apperr.ErrValidation)
		}

		var p product.Product
		if err := tx.Where("id = ?", item.ProductID).First(&p).Error; err != nil {
			tx.Rollback()
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("product %d: %w", item.ProductID, apperr.ErrNotFound)
			}
			return nil, fmt.Errorf("failed to retrieve product: %w", err)
		}

		lineTotal := item.UnitCost * int64(item.Quantity)
		total += lineTotal
		items = append(items, PurchaseOrderItem{
			ProductID:   p.ID,
			ProductName: p.Name,
			Quantity:    item.Quantity,
			UnitCost:    item.UnitCost,
			Total:       lineTotal,
		})
	}

	order := &PurchaseOrder{
		// Unique placeholder until the row id exists, see the sale workflow
		OrderNumber: fmt.Sprintf("tmp-%s", uuid.NewString()),
		SupplierID:  req.SupplierID,
		Status:      OrderStatusPending,
		Total:       total,
		Notes:       req.Notes,
		CreatedBy:   userID,
		Items:       items,
	}

	if err := tx.Create(order).Error; err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("failed to create purchase order: %w", err)
	}

	order.OrderNumber = GenerateOrderNumber(order.ID)
	if err := tx.Model(order).UpdateColumn("order_number", order.OrderNumber).Error; err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("failed to set order number: %w", err)
	}

	if err := tx.Commit().Error; err != nil {
		return nil, fmt.Errorf("failed to commit purchase order: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"order_id":     order.ID,
		"order_number": order.OrderNumber,
		"supplier_id":  order.SupplierID,
		"total":        order.Total,
	}).Info("Purchase order created")

	return s.GetOrder(order.ID)
}

// GetOrder retrieves a purchase order with its items
func (s *Service) GetOrder(id uint) (*PurchaseOrder, error) {
	var order PurchaseOrder
	if err := s.db.Preload("Items").Where("id = ?", id).First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("purchase order %d: %w", id, apperr.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to retrieve purchase order: %w", err)
	}
	return &order, nil
}

// GetOrders retrieves purchase orders with filtering and pagination
func (s *Service) GetOrders(req *OrderListRequest) ([]PurchaseOrder, int64, error) {
	var orders []PurchaseOrder
	var total int64

	query := s.db.Model(&PurchaseOrder{})

	if req.SupplierID > 0 {
		query = query.Where("supplier_id = ?", req.SupplierID)
	}
	if req.Status != "" {
		query = query.Where("status = ?", req.Status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count purchase orders: %w", err)
	}

	offset := (req.Page - 1) * req.Limit
	if err := query.Preload("Items").Order("created_at DESC").Offset(offset).Limit(req.Limit).Find(&orders).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to retrieve purchase orders: %w", err)
	}

	return orders, total, nil
}

// ReceiveOrder marks a pending order as received: every item is credited into
// stock as an entry movement and the order total becomes an open payable, all
// within one transaction.
func (s *Service) ReceiveOrder(id uint, userID uint) (*PurchaseOrder, error) {
	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	var order PurchaseOrder
	if err := tx.Preload("Items").Where("id = ?", id).First(&order).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("purchase order %d: %w", id, apperr.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to retrieve purchase order: %w", err)
	}

	if !order.IsPending() {
		tx.Rollback()
		return nil, fmt.Errorf("purchase order %d is %s: %w", id, order.Status, apperr.ErrAlreadyCancelled)
	}

	reason := fmt.Sprintf("Receipt of purchase order %s", order.OrderNumber)
	for _, item := range order.Items {
		if err := s.stockService.Credit(tx, item.ProductID, item.Quantity, stock.MovementTypeEntry,
			item.UnitCost, reason, "purchase_order", order.ID, userID); err != nil {
			tx.Rollback()
			return nil, err
		}
	}

	payable := &financial.FinancialAccount{
		Type:          financial.AccountTypePayable,
		Description:   fmt.Sprintf("Purchase order %s", order.OrderNumber),
		Amount:        order.Total,
		Status:        financial.AccountStatusOpen,
		SupplierID:    &order.SupplierID,
		ReferenceType: "purchase_order",
		ReferenceID:   order.ID,
	}
	if err := s.financialService.CreateAccountTx(tx, payable); err != nil {
		tx.Rollback()
		return nil, err
	}

	now := time.Now().UTC()
	updates := map[string]interface{}{
		"status":      OrderStatusReceived,
		"received_at": now,
	}
	if err := tx.Model(&order).Updates(updates).Error; err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("failed to update purchase order: %w", err)
	}

	if err := tx.Commit().Error; err != nil {
		return nil, fmt.Errorf("failed to commit purchase order receipt: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"order_id":     order.ID,
		"order_number": order.OrderNumber,
		"payable_id":   payable.ID,
	}).Info("Purchase order received")

	return s.GetOrder(id)
}

// CancelOrder cancels a pending order. Received orders cannot be cancelled.
func (s *Service) CancelOrder(id uint) (*PurchaseOrder, error) {
	order, err := s.GetOrder(id)
	if err != nil {
		return nil, err
	}

	if !order.IsPending() {
		return nil, fmt.Errorf("purchase order %d is %s: %w", id, order.Status, apperr.ErrAlreadyCancelled)
	}

	now := time.Now().UTC()
	updates := map[string]interface{}{
		"status":       OrderStatusCancelled,
		"cancelled_at": now,
	}
	if err := s.db.Model(order).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to cancel purchase order: %w", err)
	}

	return s.GetOrder(id)
}
