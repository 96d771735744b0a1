// internal/domain/purchase/entity.go
package purchase

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

// OrderStatus represents the purchase order lifecycle state
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusReceived  OrderStatus = "received"  // Terminal
	OrderStatusCancelled OrderStatus = "cancelled" // Terminal
)

// PurchaseOrder represents an order placed with a supplier. Receiving it is
// what feeds stock back in: every item becomes an entry movement and the
// order total becomes a payable.
type PurchaseOrder struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	OrderNumber string         `gorm:"uniqueIndex;not null;size:50" json:"order_number"`
	SupplierID  uint           `gorm:"not null;index" json:"supplier_id"`
	Status      OrderStatus    `gorm:"not null;size:20;index;default:'pending'" json:"status"`
	Total       int64          `gorm:"not null;default:0" json:"total"` // In cents
	Notes       string         `gorm:"type:text" json:"notes"`
	CreatedBy   uint           `gorm:"index" json:"created_by"`
	ReceivedAt  *time.Time     `json:"received_at,omitempty"`
	CancelledAt *time.Time     `json:"cancelled_at,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Items []PurchaseOrderItem `gorm:"foreignKey:PurchaseOrderID" json:"items,omitempty"`
}

// TableName overrides the table name for PurchaseOrder
func (PurchaseOrder) TableName() string { return "purchase_orders" }

// PurchaseOrderItem represents a line of a purchase order
type PurchaseOrderItem struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	PurchaseOrderID uint      `gorm:"not null;index" json:"purchase_order_id"`
	ProductID       uint      `gorm:"not null;index" json:"product_id"`
	ProductName     string    `gorm:"not null;size:255" json:"product_name"` // Snapshot at order time
	Quantity        int       `gorm:"not null" json:"quantity"`
	UnitCost        int64     `gorm:"not null" json:"unit_cost"` // In cents
	Total           int64     `gorm:"not null" json:"total"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// TableName overrides the table name for PurchaseOrderItem
func (PurchaseOrderItem) TableName() string { return "purchase_order_items" }

// IsPending reports whether the order can still be received or cancelled.
func (o *PurchaseOrder) IsPending() bool {
	return o.Status == OrderStatusPending
}

// GenerateOrderNumber builds a human-readable order number from the order ID.
func GenerateOrderNumber(id uint) string {
	return fmt.Sprintf("OC-%s-%05d", time.Now().Format("20060102"), id)
}
