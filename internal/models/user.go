package models

import "time"

// 仪表盘用户的角色
const (
	RoleAdmin = "admin"
	RoleStaff = "staff"
)

// User 是仪表盘操作员
type User struct {
	ID           uint      `gorm:"primaryKey"`
	Username     string    `gorm:"size:64;uniqueIndex;not null"`
	PasswordHash string    `gorm:"size:255;not null"`
	DisplayName  string    `gorm:"size:64"`
	Role         string    `gorm:"size:16;not null;default:staff"`
	CreatedAt    time.Time
	UpdatedAt    time.Time

	FailedLoginAttempts int        `gorm:"default:0"` // 连续登录失败次数
	LockedUntil         *time.Time `gorm:"index"`     // 锁定到期时间
	LastLoginAt         *time.Time
	LastLoginIP         string `gorm:"size:64"`
}

// IsAdmin 报告用户能否访问财务模块
func (u *User) IsAdmin() bool { return u != nil && u.Role == RoleAdmin }
