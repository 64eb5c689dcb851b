package models

import (
	"strings"
	"time"
)

// WeekSlots 是每个日历周记录的上课日数（周日..周三）
const WeekSlots = 4

// CalendarEntry 是任务日历中的一个月。每周保存周日到周三的任务代码，
// 空位表示没有任务。
type CalendarEntry struct {
	Meta  `bson:",inline"`
	Month string   `json:"month" bson:"month" validate:"required,max=64"`
	Year  int      `json:"year" bson:"year" validate:"gte=0,lte=9999"`
	Week1 []string `json:"week1" bson:"week1"`
	Week2 []string `json:"week2" bson:"week2"`
	Week3 []string `json:"week3" bson:"week3"`
	Week4 []string `json:"week4" bson:"week4"`
}

// Weeks 按顺序返回四周
func (e *CalendarEntry) Weeks() [4][]string {
	return [4][]string{e.Week1, e.Week2, e.Week3, e.Week4}
}

// Cells 返回条目中所有非空单元格的文本
func (e *CalendarEntry) Cells() []string {
	var out []string
	for _, w := range e.Weeks() {
		for _, c := range w {
			if strings.TrimSpace(c) != "" {
				out = append(out, c)
			}
		}
	}
	return out
}

// Normalize 把每周补齐或截断到 WeekSlots 个，
// 年份为空时取当前年份。
func (e *CalendarEntry) Normalize() {
	e.Month = strings.TrimSpace(e.Month)
	if e.Year == 0 {
		e.Year = time.Now().Year()
	}
	e.Week1 = fixWeek(e.Week1)
	e.Week2 = fixWeek(e.Week2)
	e.Week3 = fixWeek(e.Week3)
	e.Week4 = fixWeek(e.Week4)
}

func fixWeek(w []string) []string {
	out := make([]string, WeekSlots)
	for i := 0; i < WeekSlots && i < len(w); i++ {
		out[i] = strings.TrimSpace(w[i])
	}
	return out
}

// LegendEntry 说明出现在日历单元格中的任务代码
type LegendEntry struct {
	Meta            `bson:",inline"`
	Abbreviation    string     `json:"abbreviation" bson:"abbreviation" validate:"required,max=16"`
	FullDescription string     `json:"full_description" bson:"full_description" validate:"max=512"`
	Category        string     `json:"category" bson:"category" validate:"max=64"`
	UsageCount      int        `json:"usage_count" bson:"usage_count"`
	LastUsed        *time.Time `json:"last_used,omitempty" bson:"last_used,omitempty"`
}

func (l *LegendEntry) Normalize() {
	l.Abbreviation = strings.ToUpper(strings.TrimSpace(l.Abbreviation))
	l.FullDescription = strings.TrimSpace(l.FullDescription)
	if strings.TrimSpace(l.Category) == "" {
		l.Category = "General"
	}
}

// EmailTask 是明确安排在某一天的任务
type EmailTask struct {
	Meta            `bson:",inline"`
	CalendarEntryID string   `json:"calendarEntryId" bson:"calendarEntryId"`
	Date            string   `json:"date" bson:"date" validate:"required,yyyymmdd"`
	Codes           []string `json:"codes" bson:"codes"`
	Description     string   `json:"description" bson:"description"`
	MonthContext    string   `json:"monthContext" bson:"monthContext"`
	Status          string   `json:"status" bson:"status"`
}

func (t *EmailTask) Normalize() {
	t.Date = strings.TrimSpace(t.Date)
	if len(t.Date) > 10 {
		t.Date = t.Date[:10]
	}
	seen := make(map[string]bool, len(t.Codes))
	codes := t.Codes[:0]
	for _, c := range t.Codes {
		c = strings.ToUpper(strings.TrimSpace(c))
		if c == "" || seen[c] {
			continue
		}
		seen[c] = true
		codes = append(codes, c)
	}
	t.Codes = codes
	if t.Status == "" {
		t.Status = "scheduled"
	}
}
