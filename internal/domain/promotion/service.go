// internal/domain/promotion/service.go
package promotion

import (
	"errors"
	"fmt"
	"time"

	"github.com/your-org/pos-backend/internal/config"
	"github.com/your-org/pos-backend/internal/domain/apperr"
	"github.com/your-org/pos-backend/internal/domain/product"
	"gorm.io/gorm"
)

// Service handles promotion business logic
type Service struct {
	db     *gorm.DB
	config *config.Config
}

// NewService creates a new promotion service
func NewService(db *gorm.DB, cfg *config.Config) *Service {
	return &Service{
		db:     db,
		config: cfg,
	}
}

// PromotionCreateRequest represents promotion creation data
type PromotionCreateRequest struct {
	ProductID        uint      `json:"product_id" binding:"required"`
	Name             string    `json:"name" binding:"required"`
	PromotionalPrice int64     `json:"promotional_price" binding:"required"`
	StartDate        time.Time `json:"start_date" binding:"required"`
	EndDate          time.Time `json:"end_date" binding:"required"`
}

// PromotionUpdateRequest represents promotion update data
type PromotionUpdateRequest struct {
	Name             string     `json:"name"`
	PromotionalPrice *int64     `json:"promotional_price"`
	StartDate        *time.Time `json:"start_date"`
	EndDate          *time.Time `json:"end_date"`
	IsActive         *bool      `json:"is_active"`
}

// PromotionListRequest represents promotion list query parameters
type PromotionListRequest struct {
	Page      int  `form:"page,default=1"`
	Limit     int  `form:"limit,default=20"`
	ProductID uint `form:"product_id"`
	Current   bool `form:"current"`
}

// CreatePromotion creates a new promotion for an existing product
func (s *Service) CreatePromotion(req *PromotionCreateRequest) (*Promotion, error) {
	if req.PromotionalPrice <= 0 {
		return nil, fmt.Errorf("promotional price must be positive: %w", apperr.ErrValidation)
	}
	if req.EndDate.Before(req.StartDate) {
		return nil, fmt.Errorf("end date must not precede start date: %w", apperr.ErrValidation)
	}

	var p product.Product
	if err := s.db.Where("id = ?", req.ProductID).First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("product %d: %w", req.ProductID, apperr.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to retrieve product: %w", err)
	}

	promo := &Promotion{
		ProductID:        req.ProductID,
		Name:             req.Name,
		PromotionalPrice: req.PromotionalPrice,
		StartDate:        req.StartDate,
		EndDate:          req.EndDate,
		IsActive:         true,
	}

	if err := s.db.Create(promo).Error; err != nil {
		return nil, fmt.Errorf("failed to create promotion: %w", err)
	}

	return promo, nil
}

// GetPromotion retrieves a promotion by ID
func (s *Service) GetPromotion(id uint) (*Promotion, error) {
	var promo Promotion
	if err := s.db.Where("id = ?", id).First(&promo).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("promotion %d: %w", id, apperr.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to retrieve promotion: %w", err)
	}
	return &promo, nil
}

// GetPromotions retrieves promotions with filtering and pagination
func (s *Service) GetPromotions(req *PromotionListRequest) ([]Promotion, int64, error) {
	var promos []Promotion
	var total int64

	query := s.db.Model(&Promotion{})

	if req.ProductID > 0 {
		query = query.Where("product_id = ?", req.ProductID)
	}
	if req.Current {
		now := time.Now()
		query = query.Where("is_active = ? AND start_date <= ? AND end_date >= ?", true, now, now)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count promotions: %w", err)
	}

	offset := (req.Page - 1) * req.Limit
	if err := query.Order("start_date DESC").Offset(offset).Limit(req.Limit).Find(&promos).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to retrieve promotions: %w", err)
	}

	return promos, total, nil
}

// UpdatePromotion updates promotion information
func (s *Service) UpdatePromotion(id uint, req *PromotionUpdateRequest) (*Promotion, error) {
	promo, err := s.GetPromotion(id)
	if err != nil {
		return nil, err
	}

	start := promo.StartDate
	end := promo.EndDate
	if req.StartDate != nil {
		start = *req.StartDate
	}
	if req.EndDate != nil {
		end = *req.EndDate
	}
	if end.Before(start) {
		return nil, fmt.Errorf("end date must not precede start date: %w", apperr.ErrValidation)
	}

	updates := make(map[string]interface{})
	if req.Name != "" {
		updates["name"] = req.Name
	}
	if req.PromotionalPrice != nil {
		if *req.PromotionalPrice <= 0 {
			return nil, fmt.Errorf("promotional price must be positive: %w", apperr.ErrValidation)
		}
		updates["promotional_price"] = *req.PromotionalPrice
	}
	if req.StartDate != nil {
		updates["start_date"] = *req.StartDate
	}
	if req.EndDate != nil {
		updates["end_date"] = *req.EndDate
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}

	if len(updates) > 0 {
		if err := s.db.Model(promo).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("failed to update promotion: %w", err)
		}
	}

	return s.GetPromotion(id)
}

// DeletePromotion soft-deletes a promotion
func (s *Service) DeletePromotion(id uint) error {
	promo, err := s.GetPromotion(id)
	if err != nil {
		return err
	}

	if err := s.db.Delete(promo).Error; err != nil {
		return fmt.Errorf("failed to delete promotion: %w", err)
	}

	return nil
}
