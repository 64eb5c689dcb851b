package database

import (
	"fmt"

	"berdoz-admin/internal/models"

	"gorm.io/gorm"
)

// AutoMigrate 迁移认证和审计相关的表
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.User{},
		&models.Session{},
		&models.SecurityLog{},
		&models.Backup{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}
