package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/securevault/securevault-backend/models"
)

type AuditLogRepository interface {
	Create(ctx context.Context, entry *models.AuditLog) error
	// FindForOwner returns the newest entries where the owner is the actor
	// or the target file belongs to the owner. Deleted files simply stop
	// matching the join; their entries remain reachable by actor.
	FindForOwner(ctx context.Context, ownerID uuid.UUID, limit int) ([]models.AuditLog, error)
}

type gormAuditLogRepository struct {
	db *gorm.DB
}

func NewAuditLogRepository(db *gorm.DB) AuditLogRepository {
	return &gormAuditLogRepository{db: db}
}

func (r *gormAuditLogRepository) Create(ctx context.Context, entry *models.AuditLog) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *gormAuditLogRepository) FindForOwner(ctx context.Context, ownerID uuid.UUID, limit int) ([]models.AuditLog, error) {
	var logs []models.AuditLog
	err := r.db.WithContext(ctx).
		Model(&models.AuditLog{}).
		Joins("LEFT JOIN files ON files.id = audit_logs.file_id").
		Where("audit_logs.user_id = ? OR files.owner_id = ?", ownerID, ownerID).
		Order("audit_logs.created_at DESC").
		Limit(limit).
		Find(&logs).Error
	return logs, err
}
