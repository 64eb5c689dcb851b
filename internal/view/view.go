// Package view 组合模块页面展示的内容：表格行及其合计（Scope A），
// 以及独立过滤的汇总合计（Scope B）。
package view

import (
	"strings"

	"berdoz-admin/internal/calendar"
	"berdoz-admin/internal/models"
	"berdoz-admin/internal/search"

	"github.com/shopspring/decimal"
)

// wildcards 是表示“不过滤”的取值
var wildcards = map[string]bool{
	"":           true,
	"all":        true,
	"all-years":  true,
	"all-months": true,
	"all_years":  true,
	"all_months": true,
}

// Filter 是按年、月的相等过滤
type Filter struct {
	Year  string
	Month string
}

func isWildcard(v string) bool { return wildcards[strings.ToLower(strings.TrimSpace(v))] }

// Empty 报告过滤器是否放行所有行
func (f Filter) Empty() bool { return isWildcard(f.Year) && isWildcard(f.Month) }

// Match 报告 p 是否通过过滤。两边都能读成月份时按月份比较
// （"6"、"June"、"حوزەیران - June"），否则按去空白、忽略大小写的文本比较。
func (f Filter) Match(p models.Period) bool {
	if !isWildcard(f.Year) && strings.TrimSpace(f.Year) != strings.TrimSpace(p.Year) {
		return false
	}
	if !isWildcard(f.Month) && !sameMonth(f.Month, p.Month) {
		return false
	}
	return true
}

func sameMonth(a, b string) bool {
	ma, okA := calendar.MonthFromValue(a)
	mb, okB := calendar.MonthFromValue(b)
	if okA && okB {
		return ma == mb
	}
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

// Query 是页面用来缩小数据范围的全部参数
type Query struct {
	// Table 和 Search 一起过滤 Scope A
	Table  Filter
	Search string
	// Pinned 过滤 Scope B，Search 不作用于它
	Pinned Filter
}

// Config 描述模块的行。没有期间或金额的模块 Period、Amount 可为 nil
type Config[T any] struct {
	Keys    []search.Key[T]
	Options search.Options
	Period  func(T) models.Period
	Amount  func(T) float64
}

// Result 是组合后的页面状态
type Result[T any] struct {
	Rows           []T
	DisplayedTotal decimal.Decimal
	PinnedTotal    decimal.Decimal
	PinnedCount    int
}

// Compose 从同一批行推导两个范围。rows 须保持读取顺序；
// 没有搜索词时 Scope A 保持该顺序，有搜索词时按得分排序。
func Compose[T any](rows []T, q Query, cfg Config[T]) Result[T] {
	scopeA := filterRows(rows, q.Table, cfg.Period)
	if term := strings.TrimSpace(q.Search); term != "" && len(cfg.Keys) > 0 {
		scopeA = search.NewIndex(scopeA, cfg.Keys, cfg.Options).Filter(term)
	}
	scopeB := filterRows(rows, q.Pinned, cfg.Period)

	res := Result[T]{Rows: scopeA, PinnedCount: len(scopeB)}
	if cfg.Amount != nil {
		res.DisplayedTotal = Sum(scopeA, cfg.Amount)
		res.PinnedTotal = Sum(scopeB, cfg.Amount)
	}
	return res
}

func filterRows[T any](rows []T, f Filter, period func(T) models.Period) []T {
	if period == nil || f.Empty() {
		out := make([]T, len(rows))
		copy(out, rows)
		return out
	}
	out := make([]T, 0, len(rows))
	for _, r := range rows {
		if f.Match(period(r)) {
			out = append(out, r)
		}
	}
	return out
}

// Sum 用 decimal 累加 rows 的金额
func Sum[T any](rows []T, amount func(T) float64) decimal.Decimal {
	total := decimal.Zero
	for _, r := range rows {
		total = total.Add(decimal.NewFromFloat(amount(r)))
	}
	return total
}

// Page 是 Scope A 的一页
type Page[T any] struct {
	Items []T
	Page  int
	Size  int
	Total int
}

// Paginate 切分 rows；size <= 0 时整体作为一页返回
func Paginate[T any](rows []T, page, size int) Page[T] {
	if page <= 0 {
		page = 1
	}
	if size <= 0 {
		return Page[T]{Items: rows, Page: 1, Size: len(rows), Total: len(rows)}
	}
	// 先比较再相乘，超大的 page 不会溢出
	start := len(rows)
	if page-1 <= len(rows)/size {
		start = (page - 1) * size
	}
	if start > len(rows) {
		start = len(rows)
	}
	end := start + size
	if end > len(rows) {
		end = len(rows)
	}
	return Page[T]{Items: rows[start:end], Page: page, Size: size, Total: len(rows)}
}
