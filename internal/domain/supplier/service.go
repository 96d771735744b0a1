// internal/domain/supplier/service.go
package supplier

import (
	"errors"
	"fmt"
	"strings"

	"github.com/your-org/pos-backend/internal/config"
	"github.com/your-org/pos-backend/internal/domain/apperr"
	"gorm.io/gorm"
)

// Service handles supplier business logic
type Service struct {
	db     *gorm.DB
	config *config.Config
}

// NewService creates a new supplier service
func NewService(db *gorm.DB, cfg *config.Config) *Service {
	return &Service{
		db:     db,
		config: cfg,
	}
}

// SupplierCreateRequest represents supplier creation data
type SupplierCreateRequest struct {
	Name      string `json:"name" binding:"required"`
	TradeName string `json:"trade_name"`
	Document  string `json:"document"`
	Phone     string `json:"phone"`
	Email     string `json:"email"`
	Address   string `json:"address"`
	Notes     string `json:"notes"`
	IsActive  bool   `json:"is_active"`
}

// SupplierUpdateRequest represents supplier update data
type SupplierUpdateRequest struct {
	Name      *string `json:"name"`
	TradeName *string `json:"trade_name"`
	Document  *string `json:"document"`
	Phone     *string `json:"phone"`
	Email     *string `json:"email"`
	Address   *string `json:"address"`
	Notes     *string `json:"notes"`
	IsActive  *bool   `json:"is_active"`
}

// GetSuppliers retrieves suppliers with optional search
func (s *Service) GetSuppliers(search string, includeInactive bool) ([]Supplier, error) {
	var suppliers []Supplier

	query := s.db.Model(&Supplier{}).Order("name ASC")
	if !includeInactive {
		query = query.Where("is_active = ?", true)
	}
	if search != "" {
		like := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(trade_name) LIKE ? OR document = ?", like, like, search)
	}

	if err := query.Find(&suppliers).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve suppliers: %w", err)
	}

	return suppliers, nil
}

// GetSupplier retrieves a single supplier by ID
func (s *Service) GetSupplier(id uint) (*Supplier, error) {
	var supplier Supplier
	if err := s.db.Where("id = ?", id).First(&supplier).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("supplier %d: %w", id, apperr.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to retrieve supplier: %w", err)
	}
	return &supplier, nil
}

// CreateSupplier creates a new supplier
func (s *Service) CreateSupplier(req *SupplierCreateRequest) (*Supplier, error) {
	if req.Document != "" {
		var existing Supplier
		if err := s.db.Where("document = ?", req.Document).First(&existing).Error; err == nil {
			return nil, fmt.Errorf("supplier with document '%s' already exists: %w", req.Document, apperr.ErrValidation)
		}
	}

	supplier := &Supplier{
		Name:      req.Name,
		TradeName: req.TradeName,
		Document:  req.Document,
		Phone:     req.Phone,
		Email:     req.Email,
		Address:   req.Address,
		Notes:     req.Notes,
		IsActive:  req.IsActive,
	}

	if err := s.db.Create(supplier).Error; err != nil {
		return nil, fmt.Errorf("failed to create supplier: %w", err)
	}

	return supplier, nil
}

// UpdateSupplier updates an existing supplier
func (s *Service) UpdateSupplier(id uint, req *SupplierUpdateRequest) (*Supplier, error) {
	supplier, err := s.GetSupplier(id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.TradeName != nil {
		updates["trade_name"] = *req.TradeName
	}
	if req.Document != nil {
		updates["document"] = *req.Document
	}
	if req.Phone != nil {
		updates["phone"] = *req.Phone
	}
	if req.Email != nil {
		updates["email"] = *req.Email
	}
	if req.Address != nil {
		updates["address"] = *req.Address
	}
	if req.Notes != nil {
		updates["notes"] = *req.Notes
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}

	if len(updates) == 0 {
		return supplier, nil
	}

	if err := s.db.Model(supplier).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to update supplier: %w", err)
	}

	return s.GetSupplier(id)
}

// DeleteSupplier soft-deletes a supplier
func (s *Service) DeleteSupplier(id uint) error {
	supplier, err := s.GetSupplier(id)
	if err != nil {
		return err
	}

	if err := s.db.Delete(supplier).Error; err != nil {
		return fmt.Errorf("failed to delete supplier: %w", err)
	}

	return nil
}
