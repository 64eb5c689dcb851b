package models

import "time"

// SecurityLog 记录登录和数据修改。请求体可能带工资和个人信息，
// 所以路径和操作加密存储。
type SecurityLog struct {
	ID        uint   `gorm:"primaryKey"`
	UserID    *uint  `gorm:"index"`
	Username  string `gorm:"size:64;index"`
	Event     string `gorm:"size:32;index"` // 事件类型：login_success、login_failed、logout、mutation
	Method    string `gorm:"size:16"`
	PathEnc   string `gorm:"size:1024"`
	ActionEnc string `gorm:"size:4096"`
	Status    int
	IP        string `gorm:"size:64"`
	UserAgent string `gorm:"size:255"`
	CreatedAt time.Time `gorm:"index"`
}
