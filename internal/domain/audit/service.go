// internal/domain/audit/service.go
package audit

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Service records audit trail entries. Recording never fails the calling
// workflow: a write error is logged and swallowed, except inside a caller's
// transaction where the row simply rides along with the commit.
type Service struct {
	db     *gorm.DB
	logger *logrus.Logger
}

// NewService creates a new audit service
func NewService(db *gorm.DB, logger *logrus.Logger) *Service {
	if logger == nil {
		logger = logrus.New()
	}
	return &Service{
		db:     db,
		logger: logger,
	}
}

// AuditListRequest represents audit log query parameters
type AuditListRequest struct {
	Page     int    `form:"page,default=1"`
	Limit    int    `form:"limit,default=50"`
	UserID   uint   `form:"user_id"`
	Action   string `form:"action"`
	Entity   string `form:"entity"`
	EntityID uint   `form:"entity_id"`
}

// Record appends an audit entry outside any transaction.
func (s *Service) Record(userID uint, action, entity string, entityID uint, detail string) {
	s.RecordTx(s.db, userID, action, entity, entityID, detail)
}

// RecordTx appends an audit entry within the given transaction.
func (s *Service) RecordTx(tx *gorm.DB, userID uint, action, entity string, entityID uint, detail string) {
	entry := &AuditLog{
		UserID:   userID,
		Action:   action,
		Entity:   entity,
		EntityID: entityID,
		Detail:   detail,
	}

	if err := tx.Create(entry).Error; err != nil {
		s.logger.WithFields(logrus.Fields{
			"action": action,
			"entity": entity,
			"error":  err,
		}).Error("Failed to record audit entry")
	}
}

// GetLogs retrieves audit entries with filtering and pagination
func (s *Service) GetLogs(req *AuditListRequest) ([]AuditLog, int64, error) {
	var logs []AuditLog
	var total int64

	query := s.db.Model(&AuditLog{})

	if req.UserID > 0 {
		query = query.Where("user_id = ?", req.UserID)
	}
	if req.Action != "" {
		query = query.Where("action = ?", req.Action)
	}
	if req.Entity != "" {
		query = query.Where("entity = ?", req.Entity)
	}
	if req.EntityID > 0 {
		query = query.Where("entity_id = ?", req.EntityID)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count audit logs: %w", err)
	}

	offset := (req.Page - 1) * req.Limit
	if err := query.Order("created_at DESC, id DESC").Offset(offset).Limit(req.Limit).Find(&logs).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to retrieve audit logs: %w", err)
	}

	return logs, total, nil
}
