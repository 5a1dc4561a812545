package store

import (
	"context"

	"taskdeck/internal/models"
)

// CreateAuditLog inserts an audit trail entry.
func (s *Store) CreateAuditLog(ctx context.Context, entry *models.AuditLog) error {
	return s.db.WithContext(ctx).Create(entry).Error
}

// AuditLogsForUser returns the audit trail recorded for userID's actions.
func (s *Store) AuditLogsForUser(ctx context.Context, userID uint) ([]models.AuditLog, error) {
	logs := []models.AuditLog{}
	err := s.db.WithContext(ctx).Where("actor_id = ?", userID).Order("id").Find(&logs).Error
	return logs, err
}
