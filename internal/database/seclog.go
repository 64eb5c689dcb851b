package database

import (
	"fmt"

	"berdoz-admin/internal/models"
	"berdoz-admin/internal/util"

	"gorm.io/gorm"
)

// RecordSecurity 用 key 加密路径和操作后写入一条记录
func RecordSecurity(db *gorm.DB, key string, entry models.SecurityLog, path, action string) error {
	var err error
	if entry.PathEnc, err = util.EncryptString(key, path); err != nil {
		return fmt.Errorf("encrypt path: %w", err)
	}
	if entry.ActionEnc, err = util.EncryptString(key, action); err != nil {
		return fmt.Errorf("encrypt action: %w", err)
	}
	if err := db.Create(&entry).Error; err != nil {
		return fmt.Errorf("save security log: %w", err)
	}
	return nil
}
