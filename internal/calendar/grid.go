package calendar

import (
	"fmt"
	"time"
)

const (
	// 每个日历条目的周数
	Weeks = 4
	// 每周的上课日：周日到周三
	Days = 4
)

var dayNames = [Days]string{"Sunday", "Monday", "Tuesday", "Wednesday"}

// DayName 返回第 d 列的星期名
func DayName(d int) string {
	if d < 0 || d >= Days {
		return ""
	}
	return dayNames[d]
}

// WeekKey 返回第 w 周对应的文档字段（week1..week4）
func WeekKey(w int) string { return fmt.Sprintf("week%d", w+1) }

// Grid 是按月份标签推算出的 4x4 上课日
type Grid struct {
	Resolved    Resolved
	FirstSunday time.Time
	Dates       [Weeks][Days]time.Time
}

// FirstSunday 返回当月 1 日当天或之前的周日
func FirstSunday(year int, month time.Month) time.Time {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	return first.AddDate(0, 0, -int(first.Weekday()))
}

// NewGrid 从 r 所在月的第一个周日开始排布
func NewGrid(r Resolved) Grid {
	g := Grid{Resolved: r, FirstSunday: FirstSunday(r.Year, r.Month)}
	for w := 0; w < Weeks; w++ {
		for d := 0; d < Days; d++ {
			g.Dates[w][d] = g.FirstSunday.AddDate(0, 0, 7*w+d)
		}
	}
	return g
}

// Predict 按 year 解析 label 并返回网格。网格总是完整的；
// 非 nil 的 error 是 *LabelError，表示退回到了 1 月 1 日，应作为警告展示。
func Predict(label string, year int) (Grid, error) {
	r, err := ParseMonthLabel(label, year)
	return NewGrid(r), err
}

// Target 是标签本身解析到的日期
func (g Grid) Target() time.Time { return g.Resolved.Target() }

// Locate 找到 t 那一天所在的单元格
func (g Grid) Locate(t time.Time) (week, day int, ok bool) {
	y, m, dd := t.Date()
	for w := 0; w < Weeks; w++ {
		for d := 0; d < Days; d++ {
			cy, cm, cd := g.Dates[w][d].Date()
			if cy == y && cm == m && cd == dd {
				return w, d, true
			}
		}
	}
	return 0, 0, false
}

// Cell 是展开后的一个网格位置
type Cell struct {
	Week    int       `json:"week"`
	Day     int       `json:"day"`
	WeekKey string    `json:"weekKey"`
	DayName string    `json:"dayName"`
	Date    time.Time `json:"date"`
}

// Cells 按周展开网格
func (g Grid) Cells() []Cell {
	out := make([]Cell, 0, Weeks*Days)
	for w := 0; w < Weeks; w++ {
		for d := 0; d < Days; d++ {
			out = append(out, Cell{
				Week:    w,
				Day:     d,
				WeekKey: WeekKey(w),
				DayName: dayNames[d],
				Date:    g.Dates[w][d],
			})
		}
	}
	return out
}
