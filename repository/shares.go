package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/securevault/securevault-backend/common"
	"github.com/securevault/securevault-backend/models"
)

type ShareLinkRepository interface {
	Create(ctx context.Context, link *models.ShareLink) error
	FindByToken(ctx context.Context, token string) (*models.ShareLink, error)
	// SetDownloadToken stores a freshly minted one-time download token and
	// its expiry on the link.
	SetDownloadToken(ctx context.Context, token, downloadToken string, expiresAt time.Time) error
	// ClearDownloadToken clears the one-time token only if it still equals
	// current, and reports how many rows were updated. Zero means another
	// consumer already burned the token.
	ClearDownloadToken(ctx context.Context, token, current string) (int64, error)
	DeleteByFileID(ctx context.Context, fileID uuid.UUID) error
	// DeleteExpired removes links whose expiry is at or before now.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

type gormShareLinkRepository struct {
	db *gorm.DB
}

func NewShareLinkRepository(db *gorm.DB) ShareLinkRepository {
	return &gormShareLinkRepository{db: db}
}

func (r *gormShareLinkRepository) Create(ctx context.Context, link *models.ShareLink) error {
	return r.db.WithContext(ctx).Create(link).Error
}

func (r *gormShareLinkRepository) FindByToken(ctx context.Context, token string) (*models.ShareLink, error) {
	var link models.ShareLink
	err := r.db.WithContext(ctx).First(&link, "token = ?", token).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: share link", common.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &link, nil
}

func (r *gormShareLinkRepository) SetDownloadToken(ctx context.Context, token, downloadToken string, expiresAt time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.ShareLink{}).
		Where("token = ?", token).
		Updates(map[string]any{
			"download_token":   downloadToken,
			"token_expires_at": expiresAt,
		}).Error
}

func (r *gormShareLinkRepository) ClearDownloadToken(ctx context.Context, token, current string) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.ShareLink{}).
		Where("token = ? AND download_token = ?", token, current).
		Updates(map[string]any{
			"download_token":   nil,
			"token_expires_at": nil,
		})
	return res.RowsAffected, res.Error
}

func (r *gormShareLinkRepository) DeleteByFileID(ctx context.Context, fileID uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.ShareLink{}, "file_id = ?", fileID).Error
}

func (r *gormShareLinkRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Delete(&models.ShareLink{}, "expires_at <= ?", now)
	return res.RowsAffected, res.Error
}
