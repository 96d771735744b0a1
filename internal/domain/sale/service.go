// internal/domain/sale/service.go
package sale

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/your-org/pos-backend/internal/config"
	"github.com/your-org/pos-backend/internal/domain/apperr"
	"github.com/your-org/pos-backend/internal/domain/audit"
	"github.com/your-org/pos-backend/internal/domain/client"
	"github.com/your-org/pos-backend/internal/domain/product"
	"github.com/your-org/pos-backend/internal/domain/stock"
	"gorm.io/gorm"
)

// Service orchestrates the sale workflows. CreateSale and CancelSale run as
// single database transactions: the sale row, the stock debits/credits, the
// movement records and the client debt change all commit together or roll
// back together.
type Service struct {
	db            *gorm.DB
	config        *config.Config
	stockService  *stock.Service
	clientService *client.Service
	auditService  *audit.Service
	logger        *logrus.Logger
}

// NewService creates a new sale service
func NewService(db *gorm.DB, cfg *config.Config, stockService *stock.Service, clientService *client.Service, auditService *audit.Service, logger *logrus.Logger) *Service {
	if logger == nil {
		logger = logrus.New()
	}
	return &Service{
		db:            db,
		config:        cfg,
		stockService:  stockService,
		clientService: clientService,
		auditService:  auditService,
		logger:        logger,
	}
}

// CreateSaleRequest represents sale creation data
type CreateSaleRequest struct {
	ClientID      *uint             `json:"client_id"`
	Items         []SaleItemRequest `json:"items" binding:"required"`
	Discount      int64             `json:"discount"`
	PaymentMethod PaymentMethod     `json:"payment_method" binding:"required"`
	Notes         string            `json:"notes"`
}

// SaleItemRequest represents one requested sale line
type SaleItemRequest struct {
	ProductID uint  `json:"product_id" binding:"required"`
	Quantity  int   `json:"quantity" binding:"required"`
	Discount  int64 `json:"discount"`
}

// SaleListRequest represents sale list query parameters
type SaleListRequest struct {
	Page          int           `form:"page,default=1"`
	Limit         int           `form:"limit,default=20"`
	ClientID      uint          `form:"client_id"`
	UserID        uint          `form:"user_id"`
	PaymentMethod PaymentMethod `form:"payment_method"`
	PaymentStatus PaymentStatus `form:"payment_status"`
	DateFrom      string        `form:"date_from"`
	DateTo        string        `form:"date_to"`
}

// SaleResponse represents sale list response with pagination
type SaleResponse struct {
	Sales      []Sale             `json:"sales"`
	Pagination product.Pagination `json:"pagination"`
}

// CreateSale creates a sale: validates client and products, computes totals,
// persists the sale with its items, debits stock with one EXIT movement per
// line, and extends the client's credit for fiado sales. Any failure rolls
// back every effect.
func (s *Service) CreateSale(userID uint, req *CreateSaleRequest) (*Sale, error) {
	if err := s.validateRequest(req); err != nil {
		return nil, err
	}

	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	// Resolve client first: fiado or not, a dangling reference fails the sale
	if req.ClientID != nil {
		var c client.Client
		if err := tx.Where("id = ?", *req.ClientID).First(&c).Error; err != nil {
			tx.Rollback()
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("client %d: %w", *req.ClientID, apperr.ErrNotFound)
			}
			return nil, fmt.Errorf("failed to retrieve client: %w", err)
		}
	}

	// Resolve products, snapshot prices, accumulate totals
	var subtotal int64
	items := make([]SaleItem, 0, len(req.Items))

	for _, itemReq := range req.Items {
		var p product.Product
		if err := tx.Where("id = ?", itemReq.ProductID).First(&p).Error; err != nil {
			tx.Rollback()
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("product %d: %w", itemReq.ProductID, apperr.ErrNotFound)
			}
			return nil, fmt.Errorf("failed to retrieve product: %w", err)
		}

		if !p.IsActive {
			tx.Rollback()
			return nil, fmt.Errorf("product '%s': %w", p.Name, apperr.ErrInactiveProduct)
		}

		if p.Quantity < itemReq.Quantity {
			tx.Rollback()
			return nil, fmt.Errorf("product '%s' has %d units, requested %d: %w",
				p.Name, p.Quantity, itemReq.Quantity, apperr.ErrInsufficientStock)
		}

		lineTotal := p.SalePrice*int64(itemReq.Quantity) - itemReq.Discount
		if lineTotal < 0 {
			tx.Rollback()
			return nil, fmt.Errorf("item discount exceeds line amount: %w", apperr.ErrValidation)
		}

		items = append(items, SaleItem{
			ProductID:   p.ID,
			ProductName: p.Name,
			Quantity:    itemReq.Quantity,
			UnitPrice:   p.SalePrice,
			Discount:    itemReq.Discount,
			Total:       lineTotal,
		})
		subtotal += lineTotal
	}

	if req.Discount > subtotal {
		tx.Rollback()
		return nil, fmt.Errorf("discount %d exceeds subtotal %d: %w", req.Discount, subtotal, apperr.ErrValidation)
	}
	total := subtotal - req.Discount

	status := PaymentStatusPaid
	if req.PaymentMethod == PaymentMethodFiado {
		status = PaymentStatusPending
	}

	newSale := &Sale{
		// Unique placeholder until the row id exists: an empty sale_number
		// would collide on the unique index under concurrent creates
		SaleNumber:    fmt.Sprintf("tmp-%s", uuid.NewString()),
		ClientID:      req.ClientID,
		UserID:        userID,
		Subtotal:      subtotal,
		Discount:      req.Discount,
		Total:         total,
		PaymentMethod: req.PaymentMethod,
		PaymentStatus: status,
		Notes:         req.Notes,
		Items:         items,
	}

	// Persist sale with its items as one unit
	if err := tx.Create(newSale).Error; err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("failed to create sale: %w", err)
	}

	newSale.SaleNumber = newSale.GenerateSaleNumber(s.config.Sales.SaleNumberPrefix)
	if err := tx.Model(newSale).Update("sale_number", newSale.SaleNumber).Error; err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("failed to update sale number: %w", err)
	}

	// Debit stock in the order the items were supplied
	for _, item := range newSale.Items {
		reason := fmt.Sprintf("Sale #%s", newSale.SaleNumber)
		if err := s.stockService.Debit(tx, item.ProductID, item.Quantity, stock.MovementTypeExit,
			item.UnitPrice, reason, "sale", newSale.ID, userID); err != nil {
			tx.Rollback()
			return nil, err
		}
	}

	// Fiado: extend client credit by the sale total. On failure the whole
	// transaction rolls back, so the stock debits above are undone too.
	if newSale.IsCredit() {
		if err := s.clientService.ExtendCredit(tx, *newSale.ClientID, total); err != nil {
			tx.Rollback()
			return nil, err
		}
	}

	s.auditService.RecordTx(tx, userID, "sale.create", "sale", newSale.ID,
		fmt.Sprintf("total=%d method=%s items=%d", total, req.PaymentMethod, len(items)))

	if err := tx.Commit().Error; err != nil {
		return nil, fmt.Errorf("failed to commit sale transaction: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"sale_id":        newSale.ID,
		"sale_number":    newSale.SaleNumber,
		"total":          total,
		"payment_method": req.PaymentMethod,
		"user_id":        userID,
	}).Info("Sale created")

	return s.GetSale(newSale.ID)
}

// CancelSale reverses a sale: credits stock back with one RETURN movement per
// original line, settles fiado debt floored at zero, and marks the sale
// cancelled. Cancelling twice fails without double-crediting stock.
func (s *Service) CancelSale(saleID, userID uint) (*Sale, error) {
	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	var existing Sale
	if err := tx.Preload("Items").Where("id = ?", saleID).First(&existing).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("sale %d: %w", saleID, apperr.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to retrieve sale: %w", err)
	}

	// The status transition is the gate: a guarded conditional update means
	// two concurrent cancellations cannot both reach the stock credits, the
	// loser sees zero rows affected.
	now := time.Now().UTC()
	result := tx.Model(&Sale{}).
		Where("id = ? AND payment_status <> ?", saleID, PaymentStatusCancelled).
		Updates(map[string]interface{}{
			"payment_status": PaymentStatusCancelled,
			"cancelled_at":   now,
		})
	if result.Error != nil {
		tx.Rollback()
		return nil, fmt.Errorf("failed to cancel sale: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		tx.Rollback()
		return nil, fmt.Errorf("sale %d: %w", saleID, apperr.ErrAlreadyCancelled)
	}

	// Credit each item back, mirroring the original EXIT movements
	for _, item := range existing.Items {
		reason := fmt.Sprintf("Cancellation of sale #%s", existing.SaleNumber)
		if err := s.stockService.Credit(tx, item.ProductID, item.Quantity, stock.MovementTypeReturn,
			item.UnitPrice, reason, "sale", existing.ID, userID); err != nil {
			tx.Rollback()
			return nil, err
		}
	}

	// Fiado: settle the debt downward, floored at zero. A prior partial
	// payment must not make cancellation fail.
	if existing.IsCredit() && existing.ClientID != nil {
		if err := s.clientService.SettleFloored(tx, *existing.ClientID, existing.Total); err != nil {
			tx.Rollback()
			return nil, err
		}
	}

	s.auditService.RecordTx(tx, userID, "sale.cancel", "sale", existing.ID,
		fmt.Sprintf("total=%d method=%s", existing.Total, existing.PaymentMethod))

	if err := tx.Commit().Error; err != nil {
		return nil, fmt.Errorf("failed to commit cancellation: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"sale_id":     existing.ID,
		"sale_number": existing.SaleNumber,
		"user_id":     userID,
	}).Info("Sale cancelled")

	return s.GetSale(existing.ID)
}

// MarkPaid transitions a pending sale to paid and settles the client's fiado
// debt for the sale total, floored at zero.
func (s *Service) MarkPaid(saleID, userID uint) (*Sale, error) {
	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	var existing Sale
	if err := tx.Where("id = ?", saleID).First(&existing).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("sale %d: %w", saleID, apperr.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to retrieve sale: %w", err)
	}

	// Guarded transition: only a pending sale becomes paid. Zero rows affected
	// is disambiguated by a re-read, the same way the stock debit guard is.
	result := tx.Model(&Sale{}).
		Where("id = ? AND payment_status = ?", saleID, PaymentStatusPending).
		Update("payment_status", PaymentStatusPaid)
	if result.Error != nil {
		tx.Rollback()
		return nil, fmt.Errorf("failed to mark sale paid: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		tx.Rollback()
		if err := s.db.Where("id = ?", saleID).First(&existing).Error; err == nil && existing.IsCancelled() {
			return nil, fmt.Errorf("sale %d: %w", saleID, apperr.ErrAlreadyCancelled)
		}
		return nil, fmt.Errorf("sale %d is not pending: %w", saleID, apperr.ErrValidation)
	}

	if existing.IsCredit() && existing.ClientID != nil {
		if err := s.clientService.SettleFloored(tx, *existing.ClientID, existing.Total); err != nil {
			tx.Rollback()
			return nil, err
		}
	}

	s.auditService.RecordTx(tx, userID, "sale.mark_paid", "sale", existing.ID,
		fmt.Sprintf("total=%d", existing.Total))

	if err := tx.Commit().Error; err != nil {
		return nil, fmt.Errorf("failed to commit payment: %w", err)
	}

	return s.GetSale(existing.ID)
}

// GetSale retrieves a single sale by ID
func (s *Service) GetSale(id uint) (*Sale, error) {
	var result Sale
	err := s.db.Preload("Items").Where("id = ?", id).First(&result).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("sale %d: %w", id, apperr.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to retrieve sale: %w", err)
	}
	return &result, nil
}

// GetSales retrieves sales with filtering and pagination
func (s *Service) GetSales(req *SaleListRequest) (*SaleResponse, error) {
	var sales []Sale
	var total int64

	query := s.db.Model(&Sale{}).Preload("Items")

	if req.ClientID > 0 {
		query = query.Where("client_id = ?", req.ClientID)
	}
	if req.UserID > 0 {
		query = query.Where("user_id = ?", req.UserID)
	}
	if req.PaymentMethod != "" {
		query = query.Where("payment_method = ?", req.PaymentMethod)
	}
	if req.PaymentStatus != "" {
		query = query.Where("payment_status = ?", req.PaymentStatus)
	}
	if req.DateFrom != "" {
		query = query.Where("created_at >= ?", req.DateFrom)
	}
	if req.DateTo != "" {
		query = query.Where("created_at <= ?", req.DateTo)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count sales: %w", err)
	}

	offset := (req.Page - 1) * req.Limit
	if err := query.Order("created_at DESC").Offset(offset).Limit(req.Limit).Find(&sales).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve sales: %w", err)
	}

	totalPages := int((total + int64(req.Limit) - 1) / int64(req.Limit))
	return &SaleResponse{
		Sales: sales,
		Pagination: product.Pagination{
			Page:       req.Page,
			Limit:      req.Limit,
			Total:      total,
			TotalPages: totalPages,
			HasNext:    req.Page < totalPages,
			HasPrev:    req.Page > 1,
		},
	}, nil
}

// validateRequest checks the shape of the request before touching storage.
func (s *Service) validateRequest(req *CreateSaleRequest) error {
	if len(req.Items) == 0 {
		return fmt.Errorf("sale must have at least one item: %w", apperr.ErrValidation)
	}

	if !req.PaymentMethod.Valid() {
		return fmt.Errorf("invalid payment method %q: %w", req.PaymentMethod, apperr.ErrValidation)
	}

	if req.PaymentMethod == PaymentMethodFiado && req.ClientID == nil {
		return apperr.ErrCreditSaleRequiresClient
	}

	if req.Discount < 0 {
		return fmt.Errorf("discount must not be negative: %w", apperr.ErrValidation)
	}

	for _, item := range req.Items {
		if item.Quantity <= 0 {
			return fmt.Errorf("item quantity must be positive: %w", apperr.ErrValidation)
		}
		if item.Discount < 0 {
			return fmt.Errorf("item discount must not be negative: %w", apperr.ErrValidation)
		}
	}

	return nil
}
