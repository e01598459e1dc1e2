package initializers

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/securevault/securevault-backend/models"
)

// ConnectDatabase opens the postgres connection and migrates the schema.
func ConnectDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  dsn,
		PreferSimpleProtocol: true,
	}), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.File{},
		&models.ShareLink{},
		&models.AuditLog{},
	); err != nil {
		return nil, fmt.Errorf("migrate database schema: %w", err)
	}
	return db, nil
}
