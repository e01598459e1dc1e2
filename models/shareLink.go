package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ShareLink is a token-addressable, time-boxed public grant to one file.
// PasswordHash is nil for open links. DownloadToken/TokenExpiresAt hold the
// one-time token minted by password verification; both are cleared when the
// token is consumed.
type ShareLink struct {
	ID             uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Token          string     `gorm:"uniqueIndex;not null" json:"token"`
	FileID         uuid.UUID  `gorm:"type:uuid;index;not null" json:"file_id"`
	ExpiresAt      time.Time  `gorm:"not null" json:"expires_at"`
	PasswordHash   *string    `json:"-"`
	DownloadToken  *string    `json:"-"`
	TokenExpiresAt *time.Time `json:"-"`
	UnlockMinutes  int        `gorm:"default:2" json:"unlock_minutes"`
	CreatedAt      time.Time  `json:"created_at"`

	File File `gorm:"foreignKey:FileID" json:"-"`
}

func (s *ShareLink) BeforeCreate(_ *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// Expired reports whether the link is past its expiry at the given instant.
func (s *ShareLink) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

func (s *ShareLink) PasswordProtected() bool {
	return s.PasswordHash != nil && *s.PasswordHash != ""
}
