package db

import (
	"context"

	"gorm.io/gorm"

	"taskdeck/internal/models"
)

// Migrate performs schema migrations for the persistent models.
func Migrate(ctx context.Context, database *gorm.DB) error {
	return database.WithContext(ctx).AutoMigrate(
		&models.User{},
		&models.Project{},
		&models.Category{},
		&models.Task{},
		&models.AuditLog{},
	)
}
