package models

import "time"

// Session 是一次签发的登录令牌。退出登录会吊销它，
// 认证中间件拒绝会话已吊销或已过期的令牌。
type Session struct {
	ID        string    `gorm:"primaryKey;size:64"`
	UserID    uint      `gorm:"index;not null"`
	ExpiresAt time.Time `gorm:"index;not null"`
	Revoked   bool      `gorm:"index;not null"`
	IP        string    `gorm:"size:64"`
	UserAgent string    `gorm:"size:255"`
	CreatedAt time.Time

	User User `gorm:"constraint:OnDelete:CASCADE"`
}

// Active 报告会话是否仍可用于认证
func (s *Session) Active(now time.Time) bool {
	return !s.Revoked && now.Before(s.ExpiresAt)
}
