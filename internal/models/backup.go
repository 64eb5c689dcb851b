package models

import "time"

// Backup 是磁盘上一个加密快照文件的索引记录
type Backup struct {
	ID          uint   `gorm:"primaryKey"`
	UserID      uint   `gorm:"index"`
	FileName    string `gorm:"size:255;not null"`
	FilePath    string `gorm:"size:1024;not null"`
	Size        int64
	Collections int
	Documents   int
	CreatedAt   time.Time
}
