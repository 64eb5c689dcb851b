package notify

import (
	"context"
	"errors"
	"fmt"

	"berdoz-admin/internal/config"
	"berdoz-admin/internal/models"
	"berdoz-admin/internal/store"

	// 默认时区 Asia/Baghdad 不依赖系统 tzdata
	_ "time/tzdata"
)

// DefaultSettings 是数据库里还没有设置时使用的配置值
func DefaultSettings(cfg config.NotifyConfig) *models.EmailSettings {
	set := &models.EmailSettings{
		SenderEmail:      cfg.Sender,
		TargetEmail:      cfg.Recipient,
		NotificationTime: models.TimeFromCron(cfg.Cron),
		Timezone:         cfg.Timezone,
		Enabled:          cfg.Enabled,
	}
	set.Normalize()
	return set
}

// LoadSettings 读取保存的设置；stored 为 false 时返回默认值
func LoadSettings(ctx context.Context, st store.Collection[*models.EmailSettings], cfg config.NotifyConfig) (set *models.EmailSettings, stored bool, err error) {
	set, err = st.Get(ctx, models.EmailSettingsID)
	if errors.Is(err, store.ErrNotFound) {
		return DefaultSettings(cfg), false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("load email settings: %w", err)
	}
	return set, true, nil
}

// Apply 按设置重排调度，并根据 Enabled 启停
func (s *Scheduler) Apply(set *models.EmailSettings) error {
	spec, err := set.CronSpec()
	if err != nil {
		return err
	}
	if err := s.Reconfigure(spec, set.Timezone, set.TargetEmail); err != nil {
		return err
	}
	if !set.Enabled {
		s.Stop()
		return nil
	}
	return s.Start()
}
