// internal/domain/promotion/entity.go
package promotion

import (
	"time"

	"gorm.io/gorm"
)

// Promotion represents a promotional price for a product over a date range.
// Purely descriptive: the sale workflow does not apply it automatically.
type Promotion struct {
	ID               uint           `gorm:"primaryKey" json:"id"`
	ProductID        uint           `gorm:"not null;index" json:"product_id"`
	Name             string         `gorm:"not null;size:255" json:"name"`
	PromotionalPrice int64          `gorm:"not null" json:"promotional_price"` // In cents
	StartDate        time.Time      `gorm:"not null;index" json:"start_date"`
	EndDate          time.Time      `gorm:"not null;index" json:"end_date"`
	IsActive         bool           `gorm:"default:true" json:"is_active"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName overrides the table name for Promotion
func (Promotion) TableName() string { return "promotions" }

// IsCurrent reports whether the promotion is active and within its date range.
func (p *Promotion) IsCurrent() bool {
	now := time.Now()
	return p.IsActive && !now.Before(p.StartDate) && !now.After(p.EndDate)
}
