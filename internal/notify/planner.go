// Package notify 计算某天有哪些日历任务，并发送每日摘要邮件。
package notify

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"berdoz-admin/internal/calendar"
	"berdoz-admin/internal/models"
	"berdoz-admin/internal/store"

	"go.uber.org/zap"
)

// DayTasks.Method 中报告的查找方式
const (
	MethodEnhanced = "enhanced"
	MethodLegacy   = "legacy"
)

const displayLayout = "Monday, January 2, 2006"

// Task 是某天到期的一个代码及其说明
type Task struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

// Match 是落在目标日期上的日历单元格
type Match struct {
	EntryID string `json:"entryId"`
	Month   string `json:"month"`
	Year    int    `json:"year"`
	WeekKey string `json:"weekKey"`
	DayName string `json:"dayName"`
	Cell    string `json:"cell"`
}

// DayTasks 是某一天到期的全部内容
type DayTasks struct {
	Date       string              `json:"date"`
	Display    string              `json:"displayDate"`
	HasTasks   bool                `json:"hasTasksToday"`
	Codes      []string            `json:"codes"`
	Tasks      []Task              `json:"tasks"`
	EmailTasks []*models.EmailTask `json:"emailTasks,omitempty"`
	Matches    []Match             `json:"matchingEntries,omitempty"`
	Method     string              `json:"method"`
	Warnings   []string            `json:"warnings,omitempty"`
}

// Planner 读取排期相关的集合
type Planner struct {
	Tasks    store.Collection[*models.EmailTask]
	Calendar store.Collection[*models.CalendarEntry]
	Legend   store.Collection[*models.LegendEntry]
	Log      *zap.Logger
}

// snapshot 是排期集合的一次一致读取，多日预览不必逐日重新查询
type snapshot struct {
	tasks   []*models.EmailTask
	entries []*models.CalendarEntry
	legend  map[string]string
}

func (p *Planner) load(ctx context.Context) (*snapshot, error) {
	tasks, err := p.Tasks.List(ctx, store.ListOptions{})
	if err != nil {
		return nil, fmt.Errorf("load email tasks: %w", err)
	}
	entries, err := p.Calendar.List(ctx, store.ListOptions{})
	if err != nil {
		return nil, fmt.Errorf("load calendar: %w", err)
	}
	snap := &snapshot{tasks: tasks, entries: entries, legend: map[string]string{}}
	if p.Legend != nil {
		legend, err := p.Legend.List(ctx, store.ListOptions{})
		if err != nil {
			return nil, fmt.Errorf("load legend: %w", err)
		}
		for _, l := range legend {
			if l.FullDescription != "" {
				snap.legend[l.Abbreviation] = l.FullDescription
			}
		}
	}
	return snap, nil
}

// TasksForDate 返回 day 所在日期（按 day 的时区）到期的任务。
// 显式的邮件任务优先，没有时再查日历网格。
func (p *Planner) TasksForDate(ctx context.Context, day time.Time) (DayTasks, error) {
	snap, err := p.load(ctx)
	if err != nil {
		return DayTasks{}, err
	}
	return p.forDate(snap, day), nil
}

func (p *Planner) forDate(snap *snapshot, day time.Time) DayTasks {
	out := DayTasks{
		Date:    day.Format("2006-01-02"),
		Display: day.Format(displayLayout),
		Method:  MethodEnhanced,
	}

	var codes []string
	for _, t := range snap.tasks {
		if len(t.Date) >= 10 && t.Date[:10] == out.Date {
			out.EmailTasks = append(out.EmailTasks, t)
			codes = append(codes, t.Codes...)
		}
	}

	if len(out.EmailTasks) == 0 {
		out.Method = MethodLegacy
		codes = p.legacyCodes(snap, day, &out)
	}

	out.Codes = calendar.SortedUnique(codes)
	out.HasTasks = len(out.Codes) > 0
	out.Tasks = make([]Task, 0, len(out.Codes))
	for _, c := range out.Codes {
		out.Tasks = append(out.Tasks, Task{Code: c, Description: snap.describe(c)})
	}
	return out
}

func (p *Planner) legacyCodes(snap *snapshot, day time.Time, out *DayTasks) []string {
	known := func(code string) bool {
		_, ok := snap.legend[code]
		return ok || calendar.DefaultKnown(code)
	}

	var codes []string
	for _, e := range snap.entries {
		if e.Year != 0 && e.Year != day.Year() {
			continue
		}
		year := e.Year
		if year == 0 {
			year = day.Year()
		}
		grid, err := calendar.Predict(e.Month, year)
		if err != nil {
			out.Warnings = append(out.Warnings, fmt.Sprintf("%s: %v", e.ID, err))
			if p.Log != nil {
				p.Log.Warn("calendar month label fell back to January",
					zap.String("entry", e.ID), zap.String("month", e.Month))
			}
		}
		w, d, ok := grid.Locate(day)
		if !ok {
			continue
		}
		week := e.Weeks()[w]
		if d >= len(week) || strings.TrimSpace(week[d]) == "" {
			continue
		}
		out.Matches = append(out.Matches, Match{
			EntryID: e.ID,
			Month:   e.Month,
			Year:    e.Year,
			WeekKey: calendar.WeekKey(w),
			DayName: calendar.DayName(d),
			Cell:    week[d],
		})
		codes = append(codes, calendar.ExtractCodes(week[d], known)...)
	}
	return codes
}

func (s *snapshot) describe(code string) string {
	if d, ok := s.legend[code]; ok {
		return d
	}
	if d, ok := calendar.DefaultCodes[code]; ok {
		return d
	}
	return code
}

// PreviewDay 是排期预览中的一行
type PreviewDay struct {
	DayTasks
	IsToday       bool `json:"isToday"`
	IsTomorrow    bool `json:"isTomorrow"`
	IsYesterday   bool `json:"isYesterday"`
	IsHistorical  bool `json:"isHistorical"`
	DaysFromToday int  `json:"daysFromToday"`
}

// Preview 从最早的一天开始，先列出 history 个过去的日子，
// 再从今天起列出 days-history 天。
func (p *Planner) Preview(ctx context.Context, today time.Time, days, history int) ([]PreviewDay, error) {
	if days <= 0 {
		days = 14
	}
	if history < 0 {
		history = 0
	}
	if history > days {
		history = days
	}
	snap, err := p.load(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]PreviewDay, 0, days)
	for offset := -history; offset < days-history; offset++ {
		day := today.AddDate(0, 0, offset)
		out = append(out, PreviewDay{
			DayTasks:      p.forDate(snap, day),
			IsToday:       offset == 0,
			IsTomorrow:    offset == 1,
			IsYesterday:   offset == -1,
			IsHistorical:  offset < 0,
			DaysFromToday: offset,
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out, nil
}
