package search

import (
	"math"
	"strconv"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// FormatAmount 按用户输入的习惯输出金额：纯数字和带千分位两种
// （"1250000 1,250,000"）。
func FormatAmount(v float64) string {
	if v == 0 {
		return ""
	}
	p := message.NewPrinter(language.English)
	if v == math.Trunc(v) {
		return strconv.FormatFloat(v, 'f', 0, 64) + " " + p.Sprintf("%d", int64(v))
	}
	return strconv.FormatFloat(v, 'f', 2, 64) + " " + p.Sprintf("%.2f", v)
}

// Tier 给金额分档，用户可以搜 "high" 或 "low"
type Tier struct {
	Below float64
	Label string
}

// ExpenseTiers 是单笔采购的默认分档
var ExpenseTiers = []Tier{
	{Below: 100_000, Label: "low"},
	{Below: 1_000_000, Label: "medium"},
	{Below: math.Inf(1), Label: "high"},
}

// Bucket 返回 v 落入的第一个档位的标签
func Bucket(v float64, tiers []Tier) string {
	for _, t := range tiers {
		if v < t.Below {
			return t.Label
		}
	}
	return ""
}
