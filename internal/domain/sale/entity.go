// internal/domain/sale/entity.go
package sale

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

// PaymentMethod represents how a sale is paid
type PaymentMethod string

const (
	PaymentMethodCash  PaymentMethod = "cash"
	PaymentMethodCard  PaymentMethod = "card"
	PaymentMethodPix   PaymentMethod = "pix"
	PaymentMethodFiado PaymentMethod = "fiado" // Store credit: increases client debt
)

// Valid reports whether the payment method is one of the known kinds.
func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodCard, PaymentMethodPix, PaymentMethodFiado:
		return true
	}
	return false
}

// PaymentStatus represents the sale's payment state
type PaymentStatus string

const (
	PaymentStatusPaid      PaymentStatus = "paid"
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusCancelled PaymentStatus = "cancelled" // Terminal
)

// Sale is the aggregate root of the sale workflow. Items and amounts are
// immutable after creation; the only mutation is the status transition to
// paid or cancelled.
type Sale struct {
	ID            uint          `gorm:"primaryKey" json:"id"`
	SaleNumber    string        `gorm:"uniqueIndex;not null;size:50" json:"sale_number"`
	ClientID      *uint         `gorm:"index" json:"client_id"` // Required for fiado sales
	UserID        uint          `gorm:"not null;index" json:"user_id"`
	Subtotal      int64         `gorm:"not null" json:"subtotal"` // In cents
	Discount      int64         `gorm:"default:0" json:"discount"`
	Total         int64         `gorm:"not null" json:"total"`
	PaymentMethod PaymentMethod `gorm:"not null;size:20" json:"payment_method"`
	PaymentStatus PaymentStatus `gorm:"not null;size:20;index" json:"payment_status"`
	Notes         string        `gorm:"type:text" json:"notes"`
	CancelledAt   *time.Time    `json:"cancelled_at,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Items []SaleItem `gorm:"foreignKey:SaleID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"items"`
}

// SaleItem represents one line of a sale. Name and unit price are snapshotted
// from the product at sale time.
type SaleItem struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	SaleID      uint      `gorm:"not null;index" json:"sale_id"`
	ProductID   uint      `gorm:"not null;index" json:"product_id"`
	ProductName string    `gorm:"not null;size:255" json:"product_name"`
	Quantity    int       `gorm:"not null" json:"quantity"`
	UnitPrice   int64     `gorm:"not null" json:"unit_price"` // In cents
	Discount    int64     `gorm:"default:0" json:"discount"`
	Total       int64     `gorm:"not null" json:"total"` // Quantity*UnitPrice - Discount
	CreatedAt   time.Time `json:"created_at"`
}

// TableName overrides
func (Sale) TableName() string     { return "sales" }
func (SaleItem) TableName() string { return "sale_items" }

// Business methods for Sale

// GenerateSaleNumber builds the human-facing sale number from the row id.
func (s *Sale) GenerateSaleNumber(prefix string) string {
	// Format: PREFIX-YYYYMMDD-XXXXX
	return fmt.Sprintf("%s-%s-%05d", prefix, time.Now().Format("20060102"), s.ID)
}

// IsCancelled reports whether the sale is in its terminal state.
func (s *Sale) IsCancelled() bool {
	return s.PaymentStatus == PaymentStatusCancelled
}

// IsCredit reports whether the sale increases the client's fiado balance.
func (s *Sale) IsCredit() bool {
	return s.PaymentMethod == PaymentMethodFiado
}

func (s *Sale) GetFormattedTotal() float64 {
	return float64(s.Total) / 100
}
