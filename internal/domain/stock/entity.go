// internal/domain/stock/entity.go
package stock

import (
	"time"
)

// MovementType represents the kind of stock movement
type MovementType string

const (
	MovementTypeEntry      MovementType = "entry"      // Purchase receipt, manual restock
	MovementTypeExit       MovementType = "exit"       // Sale
	MovementTypeAdjustment MovementType = "adjustment" // Physical count correction
	MovementTypeLoss       MovementType = "loss"       // Breakage, expiry, theft
	MovementTypeReturn     MovementType = "return"     // Sale cancellation
)

// IsInbound reports whether the movement type increases stock.
func (t MovementType) IsInbound() bool {
	return t == MovementTypeEntry || t == MovementTypeReturn
}

// IsOutbound reports whether the movement type decreases stock.
func (t MovementType) IsOutbound() bool {
	return t == MovementTypeExit || t == MovementTypeLoss
}

// Valid reports whether the movement type is one of the known kinds.
func (t MovementType) Valid() bool {
	switch t {
	case MovementTypeEntry, MovementTypeExit, MovementTypeAdjustment,
		MovementTypeLoss, MovementTypeReturn:
		return true
	}
	return false
}

// StockMovement is the append-only record mirroring every change to a
// product's quantity. Rows are never updated or deleted; the ledger is the
// audit trail explaining how each product reached its current level.
type StockMovement struct {
	ID               uint         `gorm:"primaryKey" json:"id"`
	ProductID        uint         `gorm:"not null;index" json:"product_id"`
	Type             MovementType `gorm:"not null;size:20" json:"type"`
	Quantity         int          `gorm:"not null" json:"quantity"` // Always positive
	PreviousQuantity int          `gorm:"not null" json:"previous_quantity"`
	NewQuantity      int          `gorm:"not null" json:"new_quantity"`
	UnitPrice        int64        `gorm:"default:0" json:"unit_price"` // In cents
	TotalPrice       int64        `gorm:"default:0" json:"total_price"`
	Reason           string       `gorm:"size:255" json:"reason"`
	ReferenceType    string       `gorm:"size:50;index:idx_stock_movements_reference" json:"reference_type"` // "sale", "purchase_order", ...
	ReferenceID      uint         `gorm:"index:idx_stock_movements_reference" json:"reference_id"`
	CreatedBy        uint         `gorm:"index" json:"created_by"`
	CreatedAt        time.Time    `json:"created_at"`
}

// TableName overrides the table name for StockMovement
func (StockMovement) TableName() string { return "stock_movements" }
