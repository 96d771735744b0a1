// internal/domain/client/entity.go
package client

import (
	"time"

	"gorm.io/gorm"
)

// Client represents a store customer who may carry a fiado balance.
// Invariant: 0 <= CurrentDebt <= CreditLimit, enforced at the point of
// increase by a guarded update.
type Client struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Name        string         `gorm:"not null;size:255" json:"name"`
	Document    string         `gorm:"uniqueIndex;size:20" json:"document"` // CPF/CNPJ
	Phone       string         `gorm:"size:20" json:"phone"`
	Email       string         `gorm:"size:255" json:"email"`
	Address     string         `gorm:"size:500" json:"address"`
	CreditLimit int64          `gorm:"not null;default:0" json:"credit_limit"` // In cents
	CurrentDebt int64          `gorm:"not null;default:0" json:"current_debt"`
	Notes       string         `gorm:"type:text" json:"notes"`
	IsActive    bool           `gorm:"default:true" json:"is_active"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName overrides the table name for Client
func (Client) TableName() string { return "clients" }

// AvailableCredit returns how much more debt the client may take on.
func (c *Client) AvailableCredit() int64 {
	available := c.CreditLimit - c.CurrentDebt
	if available < 0 {
		return 0
	}
	return available
}

// CanExtendCredit checks whether an additional amount fits under the limit.
func (c *Client) CanExtendCredit(amount int64) bool {
	return c.CurrentDebt+amount <= c.CreditLimit
}
