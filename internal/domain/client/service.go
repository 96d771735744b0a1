// internal/domain/client/service.go
package client

import (
	"errors"
	"fmt"
	"strings"

	"github.com/your-org/pos-backend/internal/config"
	"github.com/your-org/pos-backend/internal/domain/apperr"
	"gorm.io/gorm"
)

// Service handles client business logic, including the credit ledger used by
// fiado sales.
type Service struct {
	db     *gorm.DB
	config *config.Config
}

// NewService creates a new client service
func NewService(db *gorm.DB, cfg *config.Config) *Service {
	return &Service{
		db:     db,
		config: cfg,
	}
}

// ClientCreateRequest represents client creation data
type ClientCreateRequest struct {
	Name        string `json:"name" binding:"required"`
	Document    string `json:"document"`
	Phone       string `json:"phone"`
	Email       string `json:"email"`
	Address     string `json:"address"`
	CreditLimit int64  `json:"credit_limit"`
	Notes       string `json:"notes"`
	IsActive    bool   `json:"is_active"`
}

// ClientUpdateRequest represents client update data. CurrentDebt is absent on
// purpose: debt only moves through the credit ledger.
type ClientUpdateRequest struct {
	Name        *string `json:"name"`
	Document    *string `json:"document"`
	Phone       *string `json:"phone"`
	Email       *string `json:"email"`
	Address     *string `json:"address"`
	CreditLimit *int64  `json:"credit_limit"`
	Notes       *string `json:"notes"`
	IsActive    *bool   `json:"is_active"`
}

// GetClients retrieves clients with optional search
func (s *Service) GetClients(search string, includeInactive bool) ([]Client, error) {
	var clients []Client

	query := s.db.Model(&Client{}).Order("name ASC")
	if !includeInactive {
		query = query.Where("is_active = ?", true)
	}
	if search != "" {
		like := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR document = ?", like, search)
	}

	if err := query.Find(&clients).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve clients: %w", err)
	}

	return clients, nil
}

// GetClient retrieves a single client by ID
func (s *Service) GetClient(id uint) (*Client, error) {
	var client Client
	if err := s.db.Where("id = ?", id).First(&client).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("client %d: %w", id, apperr.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to retrieve client: %w", err)
	}
	return &client, nil
}

// CreateClient creates a new client
func (s *Service) CreateClient(req *ClientCreateRequest) (*Client, error) {
	if req.CreditLimit < 0 {
		return nil, fmt.Errorf("credit limit must not be negative: %w", apperr.ErrValidation)
	}

	if req.Document != "" {
		var existing Client
		if err := s.db.Where("document = ?", req.Document).First(&existing).Error; err == nil {
			return nil, fmt.Errorf("client with document '%s' already exists: %w", req.Document, apperr.ErrValidation)
		}
	}

	client := &Client{
		Name:        req.Name,
		Document:    req.Document,
		Phone:       req.Phone,
		Email:       req.Email,
		Address:     req.Address,
		CreditLimit: req.CreditLimit,
		Notes:       req.Notes,
		IsActive:    req.IsActive,
	}

	if err := s.db.Create(client).Error; err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	return client, nil
}

// UpdateClient updates an existing client
func (s *Service) UpdateClient(id uint, req *ClientUpdateRequest) (*Client, error) {
	client, err := s.GetClient(id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = *req.Name
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
	if req.CreditLimit != nil {
		if *req.CreditLimit < 0 {
			return nil, fmt.Errorf("credit limit must not be negative: %w", apperr.ErrValidation)
		}
		updates["credit_limit"] = *req.CreditLimit
	}
	if req.Notes != nil {
		updates["notes"] = *req.Notes
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}

	if len(updates) == 0 {
		return client, nil
	}

	if err := s.db.Model(client).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to update client: %w", err)
	}

	return s.GetClient(id)
}

// DeleteClient soft-deletes a client with no outstanding debt
func (s *Service) DeleteClient(id uint) error {
	client, err := s.GetClient(id)
	if err != nil {
		return err
	}

	if client.CurrentDebt > 0 {
		return fmt.Errorf("client has outstanding debt: %w", apperr.ErrValidation)
	}

	if err := s.db.Delete(client).Error; err != nil {
		return fmt.Errorf("failed to delete client: %w", err)
	}

	return nil
}

// CREDIT LEDGER
//
// Debt moves through guarded conditional updates so two concurrent fiado
// sales can never push a client past their credit limit.

// ExtendCredit increases the client's debt within the given transaction.
// Zero rows affected means either the client is missing or the new debt would
// exceed the credit limit.
func (s *Service) ExtendCredit(tx *gorm.DB, clientID uint, amount int64) error {
	if amount <= 0 {
		return fmt.Errorf("credit amount must be positive: %w", apperr.ErrValidation)
	}

	result := tx.Model(&Client{}).
		Where("id = ? AND current_debt + ? <= credit_limit", clientID, amount).
		UpdateColumn("current_debt", gorm.Expr("current_debt + ?", amount))

	if result.Error != nil {
		return fmt.Errorf("failed to extend credit: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		var client Client
		if err := tx.Where("id = ?", clientID).First(&client).Error; err != nil {
			return fmt.Errorf("client %d: %w", clientID, apperr.ErrNotFound)
		}
		return fmt.Errorf("client %d debt %d + %d exceeds limit %d: %w",
			clientID, client.CurrentDebt, amount, client.CreditLimit, apperr.ErrCreditLimitExceeded)
	}

	return nil
}

// Settle decreases the client's debt by the given amount. Fails when the
// amount exceeds the outstanding debt.
func (s *Service) Settle(clientID uint, amount int64) error {
	if amount <= 0 {
		return fmt.Errorf("settlement amount must be positive: %w", apperr.ErrValidation)
	}

	result := s.db.Model(&Client{}).
		Where("id = ? AND current_debt >= ?", clientID, amount).
		UpdateColumn("current_debt", gorm.Expr("current_debt - ?", amount))

	if result.Error != nil {
		return fmt.Errorf("failed to settle debt: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		var client Client
		if err := s.db.Where("id = ?", clientID).First(&client).Error; err != nil {
			return fmt.Errorf("client %d: %w", clientID, apperr.ErrNotFound)
		}
		return fmt.Errorf("settlement %d exceeds outstanding debt %d: %w",
			amount, client.CurrentDebt, apperr.ErrValidation)
	}

	return nil
}

// SettleFloored decreases the client's debt within the given transaction,
// flooring at zero. Reversal paths use this form: a cancellation after a
// partial payment must not fail, it just clears whatever debt remains.
func (s *Service) SettleFloored(tx *gorm.DB, clientID uint, amount int64) error {
	if amount <= 0 {
		return nil
	}

	// Single atomic statement: computing the floor in Go and writing an
	// absolute value would overwrite a concurrent ExtendCredit.
	result := tx.Model(&Client{}).
		Where("id = ?", clientID).
		UpdateColumn("current_debt",
			gorm.Expr("CASE WHEN current_debt > ? THEN current_debt - ? ELSE 0 END", amount, amount))

	if result.Error != nil {
		return fmt.Errorf("failed to settle debt: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return fmt.Errorf("client %d: %w", clientID, apperr.ErrNotFound)
	}

	return nil
}
