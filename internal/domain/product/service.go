// internal/domain/product/service.go
package product

import (
	"errors"
	"fmt"
	"strings"

	"github.com/your-org/pos-backend/internal/config"
	"github.com/your-org/pos-backend/internal/domain/apperr"
	"gorm.io/gorm"
)

// Service handles product business logic
type Service struct {
	db     *gorm.DB
	config *config.Config
}

// NewService creates a new product service
func NewService(db *gorm.DB, cfg *config.Config) *Service {
	return &Service{
		db:     db,
		config: cfg,
	}
}

// ProductListRequest represents product list query parameters
type ProductListRequest struct {
	Page       int    `form:"page,default=1"`
	Limit      int    `form:"limit,default=20"`
	CategoryID uint   `form:"category_id"`
	SupplierID uint   `form:"supplier_id"`
	Search     string `form:"search"`
	SortBy     string `form:"sort_by,default=created_at"`
	SortOrder  string `form:"sort_order,default=desc"`
	IsActive   *bool  `form:"is_active"`
	LowStock   bool   `form:"low_stock"`
}

// ProductCreateRequest represents product creation data
type ProductCreateRequest struct {
	Barcode     string `json:"barcode" binding:"required"`
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	SalePrice   int64  `json:"sale_price" binding:"required"`
	CostPrice   int64  `json:"cost_price"`
	Quantity    int    `json:"quantity"`
	MinQuantity int    `json:"min_quantity"`
	Unit        string `json:"unit"`
	CategoryID  *uint  `json:"category_id"`
	SupplierID  *uint  `json:"supplier_id"`
	IsActive    bool   `json:"is_active"`
}

// ProductUpdateRequest represents product update data. Quantity is absent on
// purpose: stock only moves through the ledger.
type ProductUpdateRequest struct {
	Barcode     *string `json:"barcode"`
	Name        *string `json:"name"`
	Description *string `json:"description"`
	SalePrice   *int64  `json:"sale_price"`
	CostPrice   *int64  `json:"cost_price"`
	MinQuantity *int    `json:"min_quantity"`
	Unit        *string `json:"unit"`
	CategoryID  *uint   `json:"category_id"`
	SupplierID  *uint   `json:"supplier_id"`
	IsActive    *bool   `json:"is_active"`
}

// ProductResponse represents product response with pagination
type ProductResponse struct {
	Products   []Product  `json:"products"`
	Pagination Pagination `json:"pagination"`
}

// Pagination represents pagination information
type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
	HasPrev    bool  `json:"has_prev"`
}

// GetProducts retrieves products with filtering and pagination
func (s *Service) GetProducts(req *ProductListRequest) (*ProductResponse, error) {
	var products []Product
	var total int64

	query := s.db.Model(&Product{}).Preload("Category")

	// Apply filters
	if req.CategoryID > 0 {
		query = query.Where("category_id = ?", req.CategoryID)
	}

	if req.SupplierID > 0 {
		query = query.Where("supplier_id = ?", req.SupplierID)
	}

	if req.Search != "" {
		search := "%" + strings.ToLower(req.Search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ? OR barcode = ?", search, search, req.Search)
	}

	if req.IsActive != nil {
		query = query.Where("is_active = ?", *req.IsActive)
	}

	if req.LowStock {
		query = query.Where("quantity <= min_quantity")
	}

	// Count total records
	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count products: %w", err)
	}

	// Apply sorting
	orderClause := s.buildOrderClause(req.SortBy, req.SortOrder)
	query = query.Order(orderClause)

	// Apply pagination
	offset := (req.Page - 1) * req.Limit
	if err := query.Offset(offset).Limit(req.Limit).Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve products: %w", err)
	}

	totalPages := int((total + int64(req.Limit) - 1) / int64(req.Limit))
	pagination := Pagination{
		Page:       req.Page,
		Limit:      req.Limit,
		Total:      total,
		TotalPages: totalPages,
		HasNext:    req.Page < totalPages,
		HasPrev:    req.Page > 1,
	}

	return &ProductResponse{
		Products:   products,
		Pagination: pagination,
	}, nil
}

// GetProduct retrieves a single product by ID
func (s *Service) GetProduct(id uint) (*Product, error) {
	var product Product
	result := s.db.Preload("Category").Where("id = ?", id).First(&product)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("product %d: %w", id, apperr.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to retrieve product: %w", result.Error)
	}

	return &product, nil
}

// GetProductByBarcode retrieves a single product by barcode
func (s *Service) GetProductByBarcode(barcode string) (*Product, error) {
	var product Product
	result := s.db.Preload("Category").Where("barcode = ?", barcode).First(&product)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("product with barcode %s: %w", barcode, apperr.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to retrieve product: %w", result.Error)
	}

	return &product, nil
}

// CreateProduct creates a new product
func (s *Service) CreateProduct(req *ProductCreateRequest) (*Product, error) {
	if req.SalePrice < 0 || req.CostPrice < 0 {
		return nil, fmt.Errorf("prices must not be negative: %w", apperr.ErrValidation)
	}
	if req.Quantity < 0 || req.MinQuantity < 0 {
		return nil, fmt.Errorf("quantities must not be negative: %w", apperr.ErrValidation)
	}

	// Check if barcode already exists
	var existing Product
	if err := s.db.Where("barcode = ?", req.Barcode).First(&existing).Error; err == nil {
		return nil, fmt.Errorf("product with barcode '%s' already exists: %w", req.Barcode, apperr.ErrValidation)
	}

	product := &Product{
		Barcode:     req.Barcode,
		Name:        req.Name,
		Description: req.Description,
		SalePrice:   req.SalePrice,
		CostPrice:   req.CostPrice,
		Quantity:    req.Quantity,
		MinQuantity: req.MinQuantity,
		Unit:        req.Unit,
		CategoryID:  req.CategoryID,
		SupplierID:  req.SupplierID,
		IsActive:    req.IsActive,
	}

	if err := s.db.Create(product).Error; err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	return product, nil
}

// UpdateProduct updates an existing product
func (s *Service) UpdateProduct(id uint, req *ProductUpdateRequest) (*Product, error) {
	product, err := s.GetProduct(id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}

	if req.Barcode != nil {
		updates["barcode"] = *req.Barcode
	}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.SalePrice != nil {
		if *req.SalePrice < 0 {
			return nil, fmt.Errorf("sale price must not be negative: %w", apperr.ErrValidation)
		}
		updates["sale_price"] = *req.SalePrice
	}
	if req.CostPrice != nil {
		if *req.CostPrice < 0 {
			return nil, fmt.Errorf("cost price must not be negative: %w", apperr.ErrValidation)
		}
		updates["cost_price"] = *req.CostPrice
	}
	if req.MinQuantity != nil {
		updates["min_quantity"] = *req.MinQuantity
	}
	if req.Unit != nil {
		updates["unit"] = *req.Unit
	}
	if req.CategoryID != nil {
		updates["category_id"] = *req.CategoryID
	}
	if req.SupplierID != nil {
		updates["supplier_id"] = *req.SupplierID
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}

	if len(updates) == 0 {
		return product, nil
	}

	if err := s.db.Model(product).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to update product: %w", err)
	}

	return s.GetProduct(id)
}

// DeleteProduct soft-deletes a product
func (s *Service) DeleteProduct(id uint) error {
	product, err := s.GetProduct(id)
	if err != nil {
		return err
	}

	if err := s.db.Delete(product).Error; err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}

	return nil
}

// GetLowStockProducts lists active products at or below their minimum quantity
func (s *Service) GetLowStockProducts() ([]Product, error) {
	var products []Product
	err := s.db.
		Where("is_active = ? AND quantity <= min_quantity", true).
		Order("quantity ASC").
		Find(&products).Error
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve low stock products: %w", err)
	}
	return products, nil
}

func (s *Service) buildOrderClause(sortBy, sortOrder string) string {
	validSortFields := map[string]bool{
		"created_at": true,
		"updated_at": true,
		"name":       true,
		"sale_price": true,
		"quantity":   true,
		"barcode":    true,
	}

	if !validSortFields[sortBy] {
		sortBy = "created_at"
	}

	if sortOrder != "asc" && sortOrder != "desc" {
		sortOrder = "desc"
	}

	return fmt.Sprintf("%s %s", sortBy, sortOrder)
}
