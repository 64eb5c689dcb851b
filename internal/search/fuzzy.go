// Package search 在内存中的行上做容错、带权重、不限位置的模糊搜索。
package search

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const (
	DefaultThreshold   = 0.3
	DefaultMinMatchLen = 2
)

// Fold 用 Unicode case folding 转小写并去掉组合符号，
// 使 "Éva" 能匹配 "eva"，阿拉伯字母文本有无 harakat 都能匹配。
func Fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	// caser 有状态，每次调用各建一个
	return strings.TrimSpace(cases.Fold().String(out))
}

// distance 返回 pattern 与 text 任一子串之间的最小编辑距离（Sellers 算法），
// 参数都是 rune 切片。
func distance(pattern, text []rune) int {
	m := len(pattern)
	if m == 0 {
		return 0
	}
	// col[i] 是 pattern[:i] 匹配到当前文本位置为止的代价
	col := make([]int, m+1)
	for i := range col {
		col[i] = i
	}
	best := col[m]
	for _, tc := range text {
		diag := col[0] // 可以从 text 任意位置开始
		col[0] = 0
		for i := 1; i <= m; i++ {
			cost := 1
			if pattern[i-1] == tc {
				cost = 0
			}
			next := min(col[i]+1, col[i-1]+1, diag+cost)
			diag = col[i]
			col[i] = next
		}
		if col[m] < best {
			best = col[m]
		}
	}
	return best
}

// Score 返回 pattern 对 text 的归一化得分（0 完全匹配，1 毫无关系）
// 以及是否在阈值以内。短于 minLen 的 pattern 不匹配。
func Score(pattern, text string, threshold float64, minLen int) (float64, bool) {
	p := []rune(pattern)
	if len(p) == 0 || len(p) < minLen {
		return 1, false
	}
	t := []rune(text)
	if len(t) == 0 {
		return 1, false
	}
	d := distance(p, t)
	s := float64(d) / float64(len(p))
	if s > 1 {
		s = 1
	}
	return s, s <= threshold
}
