// internal/domain/audit/entity.go
package audit

import "time"

// AuditLog is an append-only record of who did what. Rows are never updated
// or deleted.
type AuditLog struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"index" json:"user_id"`
	Action    string    `gorm:"not null;size:100;index" json:"action"` // e.g. "sale.create"
	Entity    string    `gorm:"size:50;index:idx_audit_logs_entity" json:"entity"`
	EntityID  uint      `gorm:"index:idx_audit_logs_entity" json:"entity_id"`
	Detail    string    `gorm:"type:text" json:"detail"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName overrides the table name for AuditLog
func (AuditLog) TableName() string { return "audit_logs" }
