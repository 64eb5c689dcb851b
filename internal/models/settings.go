package models

import (
	"fmt"
	"strings"
	"time"
)

// EmailSettingsID 是唯一一条提醒设置文档的 id
const EmailSettingsID = "notification"

// EmailSettings 决定每日摘要发给谁、何时发送
type EmailSettings struct {
	Meta             `bson:",inline"`
	Type             string `json:"type" bson:"type"`
	SenderEmail      string `json:"senderEmail" bson:"senderEmail" validate:"omitempty,email"`
	TargetEmail      string `json:"targetEmail" bson:"targetEmail" validate:"omitempty,email"`
	NotificationTime string `json:"notificationTime" bson:"notificationTime" validate:"hhmm"`
	Timezone         string `json:"timezone" bson:"timezone" validate:"required"`
	Enabled          bool   `json:"enabled" bson:"enabled"`
}

// Normalize 固定 id 和 type，空的时间和时区取默认值
func (e *EmailSettings) Normalize() {
	e.ID = EmailSettingsID
	e.Type = EmailSettingsID
	e.SenderEmail = strings.TrimSpace(e.SenderEmail)
	e.TargetEmail = strings.TrimSpace(e.TargetEmail)
	e.NotificationTime = strings.TrimSpace(e.NotificationTime)
	if e.NotificationTime == "" {
		e.NotificationTime = "06:00"
	}
	e.Timezone = strings.TrimSpace(e.Timezone)
	if e.Timezone == "" {
		e.Timezone = "Asia/Baghdad"
	}
}

// CronSpec 把 NotificationTime（"06:30"）转成每日 cron 表达式
func (e *EmailSettings) CronSpec() (string, error) {
	t, err := time.Parse("15:04", e.NotificationTime)
	if err != nil {
		return "", fmt.Errorf("notification time %q: want HH:MM", e.NotificationTime)
	}
	return fmt.Sprintf("%d %d * * *", t.Minute(), t.Hour()), nil
}

// TimeFromCron 是 CronSpec 的逆运算，只支持 "M H * * *"，
// 其他表达式返回 ""。
func TimeFromCron(spec string) string {
	f := strings.Fields(spec)
	if len(f) != 5 || f[2] != "*" || f[3] != "*" || f[4] != "*" {
		return ""
	}
	t, err := time.Parse("4 15", f[0]+" "+f[1])
	if err != nil {
		return ""
	}
	return t.Format("15:04")
}
