package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// File is the metadata record for one encrypted blob. The blob itself lives
// in remote object storage under StorageKey; a File row only exists once the
// blob upload has succeeded.
type File struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Filename   string    `gorm:"not null" json:"filename"`
	StorageKey string    `gorm:"uniqueIndex;not null" json:"-"`
	OwnerID    uuid.UUID `gorm:"type:uuid;index;not null" json:"owner_id"`
	CreatedAt  time.Time `json:"created_at"`

	Owner User `gorm:"foreignKey:OwnerID" json:"-"`
}

func (f *File) BeforeCreate(_ *gorm.DB) error {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	return nil
}
