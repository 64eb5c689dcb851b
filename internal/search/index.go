package search

import (
	"math"
	"sort"
	"strings"
)

// Key 从一行中取出一个可搜索字段
type Key[T any] struct {
	Name   string
	Weight float64
	Get    func(T) string
}

// Options 调整匹配参数，零值取默认值
type Options struct {
	Threshold   float64
	MinMatchLen int
}

func (o Options) withDefaults() Options {
	if o.Threshold <= 0 {
		o.Threshold = DefaultThreshold
	}
	if o.MinMatchLen <= 0 {
		o.MinMatchLen = DefaultMinMatchLen
	}
	return o
}

// Hit 是一条命中的行
type Hit[T any] struct {
	Item T
	// Ref 是该行在被索引切片中的位置
	Ref   int
	Score float64
	// Keys 是命中的 key 名
	Keys []string
}

// Index 保存一组固定行折叠后的字段值，行变化后需重建
type Index[T any] struct {
	keys    []Key[T]
	weights []float64
	opts    Options
	rows    []T
	fields  [][]string
}

const epsilon = 0.001

func NewIndex[T any](rows []T, keys []Key[T], opts Options) *Index[T] {
	ix := &Index[T]{keys: keys, opts: opts.withDefaults(), rows: rows}

	var total float64
	for _, k := range keys {
		w := k.Weight
		if w <= 0 {
			w = 1
		}
		ix.weights = append(ix.weights, w)
		total += w
	}
	for i := range ix.weights {
		ix.weights[i] /= total
	}

	ix.fields = make([][]string, len(rows))
	for r, row := range rows {
		vals := make([]string, len(keys))
		for k, key := range keys {
			vals[k] = Fold(key.Get(row))
		}
		ix.fields[r] = vals
	}
	return ix
}

func (ix *Index[T]) Len() int { return len(ix.rows) }

// Search 按得分从好到差返回匹配 term 的行，同分保持原顺序。
// term 为空时没有结果。
func (ix *Index[T]) Search(term string) []Hit[T] {
	pattern := Fold(term)
	if pattern == "" {
		return nil
	}

	var hits []Hit[T]
	for r, vals := range ix.fields {
		score := 1.0
		var matched []string
		for k, v := range vals {
			s, ok := Score(pattern, v, ix.opts.Threshold, ix.opts.MinMatchLen)
			if !ok {
				continue
			}
			if s == 0 {
				s = epsilon
			}
			score *= math.Pow(s, ix.weights[k])
			matched = append(matched, ix.keys[k].Name)
		}
		if len(matched) == 0 {
			continue
		}
		hits = append(hits, Hit[T]{Item: ix.rows[r], Ref: r, Score: score, Keys: matched})
	}

	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Score < hits[j].Score })
	return hits
}

// Filter 只返回排好序的命中行
func (ix *Index[T]) Filter(term string) []T {
	hits := ix.Search(term)
	out := make([]T, len(hits))
	for i, h := range hits {
		out[i] = h.Item
	}
	return out
}

// Join 把非空部分拼成一个小写的可搜索字符串，
// 组合 key（"searchable content"）就是这样构造的。
func Join(parts ...string) string {
	var b strings.Builder
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(p)
	}
	return strings.ToLower(b.String())
}
