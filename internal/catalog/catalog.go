// Package catalog 集中描述每个仪表盘模块：存储位置、访问权限、
// 搜索和合计方式，以及导出的列。
package catalog

import (
	"sort"
	"strconv"
	"strings"

	"berdoz-admin/internal/calendar"
	"berdoz-admin/internal/models"
	"berdoz-admin/internal/search"
	"berdoz-admin/internal/store"
	"berdoz-admin/internal/view"
)

// Column 是 CSV/XLSX 导出中的一列
type Column[T any] struct {
	Header string
	Width  float64
	Value  func(T) interface{}
}

// Def 是一个模块的结构定义
type Def[T models.Document] struct {
	// Collection 是 MongoDB 集合名
	Collection string
	// Path 是 /api 下的 URL 路径段
	Path  string
	Title string
	// AdminOnly 的模块涉及金额，需要管理员角色
	AdminOnly bool
	Sort      store.SortOrder
	// Arrange 原地重排取出的行；nil 保持取出顺序
	Arrange func([]T)
	View    view.Config[T]
	Columns []Column[T]
}

// Headers 返回导出的表头
func (d Def[T]) Headers() []string {
	out := make([]string, len(d.Columns))
	for i, c := range d.Columns {
		out[i] = c.Header
	}
	return out
}

// Row 返回导出的一行
func (d Def[T]) Row(item T) []interface{} {
	out := make([]interface{}, len(d.Columns))
	for i, c := range d.Columns {
		out[i] = c.Value(item)
	}
	return out
}

// WithSearch 返回使用给定匹配选项的 d 的副本
func (d Def[T]) WithSearch(opts search.Options) Def[T] {
	d.View.Options = opts
	return d
}

func num(n models.Number) string {
	if n == 0 {
		return ""
	}
	return strconv.FormatFloat(n.Float(), 'f', -1, 64)
}

// monthWords 让月份能用月份表里的任一语言搜到
func monthWords(v string) string {
	m, ok := calendar.MonthFromValue(v)
	if !ok {
		return v
	}
	return search.Join(append([]string{v}, calendar.MonthNames(m)...)...)
}

func mediaCount(m []models.Media) interface{} { return len(m) }

// ---------- 日历 ----------

func Calendar() Def[*models.CalendarEntry] {
	return Def[*models.CalendarEntry]{
		Collection: "calendar_entries",
		Path:       "calendar",
		Title:      "Calendar",
		Sort:       store.SortCreatedDesc,
		View: view.Config[*models.CalendarEntry]{
			Keys: []search.Key[*models.CalendarEntry]{
				{Name: "month", Weight: 0.35, Get: func(e *models.CalendarEntry) string { return e.Month }},
				{Name: "year", Weight: 0.1, Get: func(e *models.CalendarEntry) string { return yearText(e.Year) }},
				{Name: "codes", Weight: 0.35, Get: func(e *models.CalendarEntry) string { return search.Join(e.Cells()...) }},
				{Name: "monthNames", Weight: 0.2, Get: func(e *models.CalendarEntry) string { return monthWords(e.Month) }},
			},
			Period: func(e *models.CalendarEntry) models.Period {
				return models.Period{Year: yearText(e.Year), Month: e.Month}
			},
		},
		Columns: []Column[*models.CalendarEntry]{
			{Header: "Month", Width: 18, Value: func(e *models.CalendarEntry) interface{} { return e.Month }},
			{Header: "Year", Width: 8, Value: func(e *models.CalendarEntry) interface{} { return e.Year }},
			{Header: "Week 1", Width: 30, Value: func(e *models.CalendarEntry) interface{} { return strings.Join(e.Week1, " | ") }},
			{Header: "Week 2", Width: 30, Value: func(e *models.CalendarEntry) interface{} { return strings.Join(e.Week2, " | ") }},
			{Header: "Week 3", Width: 30, Value: func(e *models.CalendarEntry) interface{} { return strings.Join(e.Week3, " | ") }},
			{Header: "Week 4", Width: 30, Value: func(e *models.CalendarEntry) interface{} { return strings.Join(e.Week4, " | ") }},
		},
	}
}

func yearText(y int) string {
	if y == 0 {
		return ""
	}
	return strconv.Itoa(y)
}

func Legend() Def[*models.LegendEntry] {
	return Def[*models.LegendEntry]{
		Collection: "legend_entries",
		Path:       "legend",
		Title:      "Legend",
		Arrange: func(rows []*models.LegendEntry) {
			sort.SliceStable(rows, func(i, j int) bool {
				if rows[i].UsageCount != rows[j].UsageCount {
					return rows[i].UsageCount > rows[j].UsageCount
				}
				return rows[i].Abbreviation < rows[j].Abbreviation
			})
		},
		View: view.Config[*models.LegendEntry]{
			Keys: []search.Key[*models.LegendEntry]{
				{Name: "abbreviation", Weight: 0.4, Get: func(l *models.LegendEntry) string { return l.Abbreviation }},
				{Name: "full_description", Weight: 0.4, Get: func(l *models.LegendEntry) string { return l.FullDescription }},
				{Name: "category", Weight: 0.2, Get: func(l *models.LegendEntry) string { return l.Category }},
			},
		},
		Columns: []Column[*models.LegendEntry]{
			{Header: "Code", Width: 8, Value: func(l *models.LegendEntry) interface{} { return l.Abbreviation }},
			{Header: "Description", Width: 36, Value: func(l *models.LegendEntry) interface{} { return l.FullDescription }},
			{Header: "Category", Width: 14, Value: func(l *models.LegendEntry) interface{} { return l.Category }},
			{Header: "Usage", Width: 8, Value: func(l *models.LegendEntry) interface{} { return l.UsageCount }},
		},
	}
}

func EmailTasks() Def[*models.EmailTask] {
	return Def[*models.EmailTask]{
		Collection: "email_tasks",
		Path:       "email-tasks",
		Title:      "Email Tasks",
		View: view.Config[*models.EmailTask]{
			Keys: []search.Key[*models.EmailTask]{
				{Name: "date", Weight: 0.2, Get: func(t *models.EmailTask) string { return t.Date }},
				{Name: "codes", Weight: 0.3, Get: func(t *models.EmailTask) string { return search.Join(t.Codes...) }},
				{Name: "description", Weight: 0.3, Get: func(t *models.EmailTask) string { return t.Description }},
				{Name: "monthContext", Weight: 0.1, Get: func(t *models.EmailTask) string { return t.MonthContext }},
				{Name: "status", Weight: 0.1, Get: func(t *models.EmailTask) string { return t.Status }},
			},
		},
		Columns: []Column[*models.EmailTask]{
			{Header: "Date", Width: 12, Value: func(t *models.EmailTask) interface{} { return t.Date }},
			{Header: "Codes", Width: 20, Value: func(t *models.EmailTask) interface{} { return strings.Join(t.Codes, ", ") }},
			{Header: "Description", Width: 36, Value: func(t *models.EmailTask) interface{} { return t.Description }},
			{Header: "Month", Width: 14, Value: func(t *models.EmailTask) interface{} { return t.MonthContext }},
			{Header: "Status", Width: 10, Value: func(t *models.EmailTask) interface{} { return t.Status }},
		},
	}
}

// Widths 返回导出的列宽
func (d Def[T]) Widths() []float64 {
	out := make([]float64, len(d.Columns))
	for i, c := range d.Columns {
		out[i] = c.Width
	}
	return out
}
