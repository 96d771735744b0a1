// internal/domain/product/entity.go
package product

import (
	"time"

	"gorm.io/gorm"
)

// Product represents a sellable item with its current stock level.
// Quantity is mutated by the stock ledger only; never set it directly
// outside an explicit count adjustment.
type Product struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Barcode     string         `gorm:"uniqueIndex;not null;size:100" json:"barcode"`
	Name        string         `gorm:"not null;size:255" json:"name"`
	Description string         `gorm:"type:text" json:"description"`
	SalePrice   int64          `gorm:"not null" json:"sale_price"` // In cents
	CostPrice   int64          `gorm:"default:0" json:"cost_price"`
	Quantity    int            `gorm:"not null;default:0" json:"quantity"`
	MinQuantity int            `gorm:"default:0" json:"min_quantity"` // Low-stock threshold
	Unit        string         `gorm:"size:20;default:'un'" json:"unit"`
	CategoryID  *uint          `gorm:"index" json:"category_id"`
	SupplierID  *uint          `gorm:"index" json:"supplier_id"`
	IsActive    bool           `gorm:"default:true" json:"is_active"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Category *Category `gorm:"foreignKey:CategoryID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"category,omitempty"`
}

// Category represents product categories
type Category struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Name        string         `gorm:"uniqueIndex;not null;size:255" json:"name"`
	Description string         `gorm:"size:500" json:"description"`
	IsActive    bool           `gorm:"default:true" json:"is_active"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Products []Product `gorm:"foreignKey:CategoryID" json:"products,omitempty"`
}

// TableName overrides
func (Product) TableName() string  { return "products" }
func (Category) TableName() string { return "categories" }

// Business methods for Product

func (p *Product) IsInStock() bool {
	return p.Quantity > 0
}

// IsLowStock reports whether the stock level is at or below the threshold.
func (p *Product) IsLowStock() bool {
	return p.Quantity <= p.MinQuantity
}

func (p *Product) GetFormattedSalePrice() float64 {
	return float64(p.SalePrice) / 100
}

// ProfitMargin returns the unit margin in cents.
func (p *Product) ProfitMargin() int64 {
	return p.SalePrice - p.CostPrice
}
