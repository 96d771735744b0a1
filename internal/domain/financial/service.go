// internal/domain/financial/service.go
package financial

import (
	"errors"
	"fmt"
	"time"

	"github.com/your-org/pos-backend/internal/config"
	"github.com/your-org/pos-backend/internal/domain/apperr"
	"gorm.io/gorm"
)

// Service handles payable/receivable business logic
type Service struct {
	db     *gorm.DB
	config *config.Config
}

// NewService creates a new financial service
func NewService(db *gorm.DB, cfg *config.Config) *Service {
	return &Service{
		db:     db,
		config: cfg,
	}
}

// AccountCreateRequest represents account creation data
type AccountCreateRequest struct {
	Type        AccountType `json:"type" binding:"required"`
	Description string      `json:"description" binding:"required"`
	Amount      int64       `json:"amount" binding:"required"`
	DueDate     *time.Time  `json:"due_date"`
	ClientID    *uint       `json:"client_id"`
	SupplierID  *uint       `json:"supplier_id"`
}

// AccountListRequest represents account list query parameters
type AccountListRequest struct {
	Page    int           `form:"page,default=1"`
	Limit   int           `form:"limit,default=20"`
	Type    AccountType   `form:"type"`
	Status  AccountStatus `form:"status"`
	Overdue bool          `form:"overdue"`
}

// GetAccounts retrieves accounts with filtering and pagination
func (s *Service) GetAccounts(req *AccountListRequest) ([]FinancialAccount, int64, error) {
	var accounts []FinancialAccount
	var total int64

	query := s.db.Model(&FinancialAccount{})

	if req.Type != "" {
		query = query.Where("type = ?", req.Type)
	}
	if req.Status != "" {
		query = query.Where("status = ?", req.Status)
	}
	if req.Overdue {
		query = query.Where("status = ? AND due_date < ?", AccountStatusOpen, time.Now())
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count accounts: %w", err)
	}

	offset := (req.Page - 1) * req.Limit
	if err := query.Order("due_date ASC, id ASC").Offset(offset).Limit(req.Limit).Find(&accounts).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to retrieve accounts: %w", err)
	}

	return accounts, total, nil
}

// GetAccount retrieves a single account by ID
func (s *Service) GetAccount(id uint) (*FinancialAccount, error) {
	var account FinancialAccount
	if err := s.db.Where("id = ?", id).First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("financial account %d: %w", id, apperr.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to retrieve account: %w", err)
	}
	return &account, nil
}

// CreateAccount creates a new payable or receivable
func (s *Service) CreateAccount(req *AccountCreateRequest) (*FinancialAccount, error) {
	if !req.Type.Valid() {
		return nil, fmt.Errorf("invalid account type %q: %w", req.Type, apperr.ErrValidation)
	}
	if req.Amount <= 0 {
		return nil, fmt.Errorf("amount must be positive: %w", apperr.ErrValidation)
	}

	account := &FinancialAccount{
		Type:        req.Type,
		Description: req.Description,
		Amount:      req.Amount,
		DueDate:     req.DueDate,
		Status:      AccountStatusOpen,
		ClientID:    req.ClientID,
		SupplierID:  req.SupplierID,
	}

	if err := s.db.Create(account).Error; err != nil {
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	return account, nil
}

// CreateAccountTx creates an account within the given transaction, carrying a
// back-reference to the originating record.
func (s *Service) CreateAccountTx(tx *gorm.DB, account *FinancialAccount) error {
	if err := tx.Create(account).Error; err != nil {
		return fmt.Errorf("failed to create account: %w", err)
	}
	return nil
}

// PayAccount marks an open account as paid
func (s *Service) PayAccount(id uint) (*FinancialAccount, error) {
	account, err := s.GetAccount(id)
	if err != nil {
		return nil, err
	}

	if !account.IsOpen() {
		return nil, fmt.Errorf("account %d is %s: %w", id, account.Status, apperr.ErrValidation)
	}

	now := time.Now().UTC()
	updates := map[string]interface{}{
		"status":  AccountStatusPaid,
		"paid_at": now,
	}
	if err := s.db.Model(account).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to pay account: %w", err)
	}

	return s.GetAccount(id)
}

// CancelAccount marks an open account as cancelled
func (s *Service) CancelAccount(id uint) (*FinancialAccount, error) {
	account, err := s.GetAccount(id)
	if err != nil {
		return nil, err
	}

	if !account.IsOpen() {
		return nil, fmt.Errorf("account %d is %s: %w", id, account.Status, apperr.ErrValidation)
	}

	now := time.Now().UTC()
	updates := map[string]interface{}{
		"status":       AccountStatusCancelled,
		"cancelled_at": now,
	}
	if err := s.db.Model(account).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to cancel account: %w", err)
	}

	return s.GetAccount(id)
}
