package handler

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"berdoz-admin/internal/calendar"
	"berdoz-admin/internal/models"
	"berdoz-admin/internal/store"
)

const legendRetries = 3

// LegendBook 维护代码说明表：保存日历或邮件任务时登记用到的代码
type LegendBook struct {
	Store store.Collection[*models.LegendEntry]
	Now   func() time.Time
}

// NewLegendBook 构造函数
func NewLegendBook(st store.Collection[*models.LegendEntry]) *LegendBook {
	return &LegendBook{Store: st, Now: time.Now}
}

func (b *LegendBook) now() time.Time {
	if b.Now == nil {
		return time.Now()
	}
	return b.Now()
}

// Touch 对每个不同的缩写计一次使用；不存在的新建一条待补充说明的记录
func (b *LegendBook) Touch(ctx context.Context, abbrs []string) error {
	codes := make([]string, 0, len(abbrs))
	for _, a := range abbrs {
		if a = strings.ToUpper(strings.TrimSpace(a)); a != "" {
			codes = append(codes, a)
		}
	}
	codes = calendar.SortedUnique(codes)
	if len(codes) == 0 {
		return nil
	}

	byAbbr, err := b.index(ctx)
	if err != nil {
		return err
	}

	var errs []error
	for _, code := range codes {
		if err := b.touchOne(ctx, byAbbr[code], code); err != nil {
			errs = append(errs, fmt.Errorf("legend %s: %w", code, err))
		}
	}
	return errors.Join(errs...)
}

func (b *LegendBook) index(ctx context.Context) (map[string]*models.LegendEntry, error) {
	rows, err := b.Store.List(ctx, store.ListOptions{})
	if err != nil {
		return nil, fmt.Errorf("load legend: %w", err)
	}
	out := make(map[string]*models.LegendEntry, len(rows))
	for _, r := range rows {
		out[strings.ToUpper(r.Abbreviation)] = r
	}
	return out, nil
}

// touchOne 版本冲突时重新读取再试
func (b *LegendBook) touchOne(ctx context.Context, cur *models.LegendEntry, code string) error {
	now := b.now()
	if cur == nil {
		return b.Store.Insert(ctx, &models.LegendEntry{
			Abbreviation:    code,
			FullDescription: code + " - Please update description",
			Category:        "General",
			UsageCount:      1,
			LastUsed:        &now,
		})
	}

	for i := 0; ; i++ {
		cur.UsageCount++
		cur.LastUsed = &now
		err := b.Store.Replace(ctx, cur)
		if !errors.Is(err, store.ErrConflict) || i+1 >= legendRetries {
			return err
		}
		if cur, err = b.Store.Get(ctx, cur.ID); err != nil {
			return err
		}
	}
}

// Descriptions 返回 缩写 -> 说明，缺省用内置字典
func (b *LegendBook) Descriptions(ctx context.Context) (map[string]string, error) {
	out := make(map[string]string, len(calendar.DefaultCodes))
	for k, v := range calendar.DefaultCodes {
		out[k] = v
	}
	rows, err := b.Store.List(ctx, store.ListOptions{})
	if err != nil {
		return nil, fmt.Errorf("load legend: %w", err)
	}
	for _, r := range rows {
		if r.FullDescription != "" {
			out[strings.ToUpper(r.Abbreviation)] = r.FullDescription
		}
	}
	return out, nil
}

// CalendarSaved 是日历模块的 AfterSave 钩子
func (b *LegendBook) CalendarSaved(ctx context.Context, e *models.CalendarEntry) error {
	return b.Touch(ctx, calendar.ExtractAbbreviations(e.Cells()))
}

// EmailTaskSaved 是邮件任务模块的 AfterSave 钩子
func (b *LegendBook) EmailTaskSaved(ctx context.Context, t *models.EmailTask) error {
	return b.Touch(ctx, t.Codes)
}
