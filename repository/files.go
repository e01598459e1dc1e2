// Package repository holds the persistence collaborators: one small CRUD
// interface per entity, backed by gorm. Services depend on the interfaces
// only.
package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/securevault/securevault-backend/common"
	"github.com/securevault/securevault-backend/models"
)

type FileRepository interface {
	Create(ctx context.Context, file *models.File) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.File, error)
	// FindByOwner returns the owner's files, newest first.
	FindByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.File, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type gormFileRepository struct {
	db *gorm.DB
}

func NewFileRepository(db *gorm.DB) FileRepository {
	return &gormFileRepository{db: db}
}

func (r *gormFileRepository) Create(ctx context.Context, file *models.File) error {
	return r.db.WithContext(ctx).Create(file).Error
}

func (r *gormFileRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.File, error) {
	var file models.File
	err := r.db.WithContext(ctx).First(&file, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: file", common.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &file, nil
}

func (r *gormFileRepository) FindByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.File, error) {
	var files []models.File
	err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Find(&files).Error
	return files, err
}

func (r *gormFileRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.File{}, "id = ?", id).Error
}
