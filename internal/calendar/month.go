// Package calendar 按月份标签推算周日到周三的上课日网格，并从单元格中提取任务代码。
package calendar

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

// ErrUnknownMonth 在标签中读不出月份时由 LabelError 包装
var ErrUnknownMonth = errors.New("calendar: unrecognized month label")

// LabelError 表示标签退回到了 1 月 1 日
type LabelError struct {
	Label string
}

func (e *LabelError) Error() string {
	return fmt.Sprintf("calendar: no month found in %q, using January 1", e.Label)
}

func (e *LabelError) Unwrap() error { return ErrUnknownMonth }

var englishMonths = [12]string{
	"january", "february", "march", "april", "may", "june",
	"july", "august", "september", "october", "november", "december",
}

// 学校日历上使用的索拉尼库尔德语月份名，包含实际数据中出现的拼写变体
var kurdishMonths = [12][]string{
	{"کانونی دووەم", "کانوونی دووەم", "کانونی دووهم"},
	{"شوبات"},
	{"ئازار"},
	{"نیسان"},
	{"ئایار"},
	{"حوزەیران", "حوزەیڕان", "حوزیران"},
	{"تەمووز", "تەموز"},
	{"ئاب"},
	{"ئەیلوول", "ئەیلول"},
	{"تشرینی یەکەم"},
	{"تشرینی دووەم"},
	{"کانونی یەکەم", "کانوونی یەکەم"},
}

type monthKey struct {
	key   string
	month time.Month
}

// lookup 按键长从长到短排序，子串匹配时优先最具体的名字
// （"کانونی دووەم" 先于更短的重叠）。
var lookup = buildLookup()

func buildLookup() []monthKey {
	var keys []monthKey
	for i, name := range englishMonths {
		m := time.Month(i + 1)
		keys = append(keys,
			monthKey{name, m},
			monthKey{name[:3], m},
			monthKey{"1-" + name[:3], m},
		)
		if name == "september" {
			keys = append(keys, monthKey{"sept", m})
		}
	}
	for i, names := range kurdishMonths {
		for _, n := range names {
			keys = append(keys, monthKey{strings.ToLower(n), time.Month(i + 1)})
		}
	}
	sort.SliceStable(keys, func(i, j int) bool {
		return len([]rune(keys[i].key)) > len([]rune(keys[j].key))
	})
	return keys
}

// lookupExact 解析整个 token（"Jun"、"june"、"1-Jun"、"حوزەیران"）
func lookupExact(token string) (time.Month, bool) {
	token = strings.ToLower(strings.TrimSpace(token))
	if token == "" {
		return 0, false
	}
	for _, k := range lookup {
		if k.key == token {
			return k.month, true
		}
	}
	return 0, false
}

// lookupWithin 在 s 中找最长的已知月份名。拉丁字母的名字必须是独立的词，
// 否则 "Summary" 会被当成 March。
func lookupWithin(s string) (time.Month, bool) {
	s = strings.ToLower(s)
	for _, k := range lookup {
		if isLatin(k.key) {
			if containsWord(s, k.key) {
				return k.month, true
			}
			continue
		}
		if strings.Contains(s, k.key) {
			return k.month, true
		}
	}
	return 0, false
}

func isLatin(key string) bool {
	for _, r := range key {
		if r > unicode.MaxASCII {
			return false
		}
	}
	return true
}

// containsWord 报告 word 是否出现在 s 中且两侧都不是字母。
func containsWord(s, word string) bool {
	for from := 0; from <= len(s)-len(word); {
		i := strings.Index(s[from:], word)
		if i < 0 {
			return false
		}
		i += from
		end := i + len(word)
		before, _ := utf8.DecodeLastRuneInString(s[:i])
		after, _ := utf8.DecodeRuneInString(s[end:])
		if (i == 0 || !unicode.IsLetter(before)) && (end == len(s) || !unicode.IsLetter(after)) {
			return true
		}
		from = i + 1
	}
	return false
}

// Resolved 是月份标签指向的日期
type Resolved struct {
	Label string
	Year  int
	Month time.Month
	Day   int
	// 标签退回到 1 月 1 日时 Matched 为 false
	Matched bool
}

// Target 是解析结果当天 UTC 零点
func (r Resolved) Target() time.Time {
	return time.Date(r.Year, r.Month, r.Day, 0, 0, 0, 0, time.UTC)
}

func isNumeric(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	_, err := strconv.Atoi(s)
	return err == nil
}

// ParseMonthLabel 按 year 解析自由格式的月份标签，如 "1-Apr"、"June"、
// "Jun-2024" 或 "حوزەیران"，year 为 0 时取当前年份。
//
// 读不出月份时结果仍然可用，指向当年 1 月 1 日；返回的 error 是 *LabelError，
// 调用方应提示警告，而不是默默显示 1 月的日期。
func ParseMonthLabel(label string, year int) (Resolved, error) {
	if year <= 0 {
		year = time.Now().Year()
	}
	r := Resolved{Label: label, Year: year, Month: time.January, Day: 1}
	trimmed := strings.TrimSpace(label)

	var (
		month   time.Month
		matched bool
	)
	parts := strings.Split(trimmed, "-")
	switch {
	case len(parts) == 2 && isNumeric(parts[0]) && !isNumeric(parts[1]):
		// "D-Mon"
		if m, ok := lookupExact(parts[1]); ok {
			month, matched = m, true
		} else {
			month, matched = lookupWithin(parts[1])
		}
		if matched {
			day, _ := strconv.Atoi(strings.TrimSpace(parts[0]))
			if day >= 1 && day <= 31 {
				r.Day = day
			}
		}
	case len(parts) == 2 && !isNumeric(parts[0]) && isNumeric(parts[1]):
		// "Mon-YYYY"
		if m, ok := lookupExact(parts[0]); ok {
			month, matched = m, true
		} else {
			month, matched = lookupWithin(parts[0])
		}
		if matched {
			if y, _ := strconv.Atoi(strings.TrimSpace(parts[1])); y > 0 {
				r.Year = y
			}
		}
	default:
		if m, ok := lookupExact(trimmed); ok {
			month, matched = m, true
		} else {
			month, matched = lookupWithin(trimmed)
		}
	}

	if !matched {
		return r, &LabelError{Label: label}
	}
	r.Month = month
	r.Matched = true
	return r, nil
}

// MonthIndex 返回标签对应的月份下标（1 月为 0），无法匹配时返回 0 和 ok=false
func MonthIndex(label string) (idx int, ok bool) {
	r, err := ParseMonthLabel(label, 0)
	return int(r.Month) - 1, err == nil
}

// MonthNames 返回 m 的英文和库尔德语名称，用于搜索
func MonthNames(m time.Month) []string {
	if m < time.January || m > time.December {
		return nil
	}
	names := []string{englishMonths[m-1], englishMonths[m-1][:3]}
	return append(names, kurdishMonths[m-1]...)
}

// MonthFromValue 解析存储的月份值，可以是数字（1-12）
// 或 ParseMonthLabel 能识别的任何标签
func MonthFromValue(v string) (time.Month, bool) {
	v = strings.TrimSpace(v)
	if n, err := strconv.Atoi(v); err == nil {
		if n >= 1 && n <= 12 {
			return time.Month(n), true
		}
		return 0, false
	}
	r, err := ParseMonthLabel(v, 0)
	if err != nil {
		return 0, false
	}
	return r.Month, true
}
