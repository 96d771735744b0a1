// internal/domain/financial/entity.go
package financial

import (
	"time"

	"gorm.io/gorm"
)

// AccountType represents the direction of a financial account
type AccountType string

const (
	AccountTypePayable    AccountType = "payable"
	AccountTypeReceivable AccountType = "receivable"
)

// Valid reports whether the account type is one of the known kinds.
func (t AccountType) Valid() bool {
	return t == AccountTypePayable || t == AccountTypeReceivable
}

// AccountStatus represents the account's payment state
type AccountStatus string

const (
	AccountStatusOpen      AccountStatus = "open"
	AccountStatusPaid      AccountStatus = "paid"
	AccountStatusCancelled AccountStatus = "cancelled" // Terminal
)

// FinancialAccount represents a payable or receivable entry. Single-entity
// lifecycle: open, then paid or cancelled.
type FinancialAccount struct {
	ID            uint          `gorm:"primaryKey" json:"id"`
	Type          AccountType   `gorm:"not null;size:20;index" json:"type"`
	Description   string        `gorm:"not null;size:255" json:"description"`
	Amount        int64         `gorm:"not null" json:"amount"` // In cents
	DueDate       *time.Time    `json:"due_date,omitempty"`
	Status        AccountStatus `gorm:"not null;size:20;index;default:'open'" json:"status"`
	ClientID      *uint         `gorm:"index" json:"client_id,omitempty"`
	SupplierID    *uint         `gorm:"index" json:"supplier_id,omitempty"`
	ReferenceType string        `gorm:"size:50" json:"reference_type"` // "sale", "purchase_order", ...
	ReferenceID   uint          `json:"reference_id"`
	PaidAt        *time.Time    `json:"paid_at,omitempty"`
	CancelledAt   *time.Time    `json:"cancelled_at,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName overrides the table name for FinancialAccount
func (FinancialAccount) TableName() string { return "financial_accounts" }

// IsOpen reports whether the account still awaits payment.
func (a *FinancialAccount) IsOpen() bool {
	return a.Status == AccountStatusOpen
}

// IsOverdue reports whether an open account is past its due date.
func (a *FinancialAccount) IsOverdue() bool {
	return a.IsOpen() && a.DueDate != nil && a.DueDate.Before(time.Now())
}
