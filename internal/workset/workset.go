// Package workset 在保存和删除后让客户端的记录列表与服务端保持一致，无需重新拉取。
//
// 行通过 Ref 定位，要么是 Draft（从未保存，本地临时 id），
// 要么是 Persisted（服务端分配的 id）。两者分开，正在编辑的行不会和新行混淆。
package workset

import (
	"fmt"

	"github.com/google/uuid"
)

// Ref 标识 Set 中的一行
type Ref struct {
	id        string
	persisted bool
}

// Draft 为只存在于本地的行生成新引用
func Draft() Ref { return Ref{id: "draft-" + uuid.NewString()} }

// Persisted 返回服务端记录的引用
func Persisted(id string) Ref { return Ref{id: id, persisted: true} }

func (r Ref) IsDraft() bool { return !r.persisted }
func (r Ref) ID() string    { return r.id }

func (r Ref) String() string {
	if r.persisted {
		return r.id
	}
	return "(" + r.id + ")"
}

// Entry 是一行及其引用
type Entry[T any] struct {
	Ref  Ref
	Item T
}

// Set 是按新到旧排列的行列表，IDOf 从已保存的条目中取出服务端 id
type Set[T any] struct {
	entries []Entry[T]
	idOf    func(T) string
}

func NewSet[T any](idOf func(T) string) *Set[T] {
	return &Set[T]{idOf: idOf}
}

// Load 用拉取的记录替换内容，保持原顺序
func (s *Set[T]) Load(items []T) {
	s.entries = make([]Entry[T], 0, len(items))
	for _, it := range items {
		s.entries = append(s.entries, Entry[T]{Ref: Persisted(s.idOf(it)), Item: it})
	}
}

// AddDraft 在顶部插入一条未保存的行并返回其引用
func (s *Set[T]) AddDraft(item T) Ref {
	ref := Draft()
	s.entries = append([]Entry[T]{{Ref: ref, Item: item}}, s.entries...)
	return ref
}

// Update 原地修改一行的条目
func (s *Set[T]) Update(ref Ref, item T) error {
	i := s.index(ref)
	if i < 0 {
		return fmt.Errorf("workset: no row %s", ref)
	}
	s.entries[i].Item = item
	return nil
}

// Reconcile 合并服务端对 ref 保存的响应：ref 仍在时由保存结果替换该行；
// 否则原地更新具有相同服务端 id 的行；再否则只在顶部插入一次。
// 返回的 Ref 总是 Persisted。
func (s *Set[T]) Reconcile(ref Ref, saved T) Ref {
	persisted := Persisted(s.idOf(saved))
	entry := Entry[T]{Ref: persisted, Item: saved}

	if i := s.index(ref); i >= 0 {
		s.entries[i] = entry
		s.dropDuplicates(i, persisted)
		return persisted
	}
	if i := s.index(persisted); i >= 0 {
		s.entries[i] = entry
		return persisted
	}
	s.entries = append([]Entry[T]{entry}, s.entries...)
	return persisted
}

// Remove 删除该行，并报告是否有行被删除
func (s *Set[T]) Remove(ref Ref) bool {
	i := s.index(ref)
	if i < 0 {
		return false
	}
	s.entries = append(s.entries[:i], s.entries[i+1:]...)
	return true
}

// Get 返回 ref 对应的条目
func (s *Set[T]) Get(ref Ref) (T, bool) {
	if i := s.index(ref); i >= 0 {
		return s.entries[i].Item, true
	}
	var zero T
	return zero, false
}

func (s *Set[T]) Len() int { return len(s.entries) }

// Entries 按顺序返回行的副本
func (s *Set[T]) Entries() []Entry[T] {
	out := make([]Entry[T], len(s.entries))
	copy(out, s.entries)
	return out
}

// Items 按顺序返回行的条目
func (s *Set[T]) Items() []T {
	out := make([]T, len(s.entries))
	for i, e := range s.entries {
		out[i] = e.Item
	}
	return out
}

func (s *Set[T]) index(ref Ref) int {
	for i, e := range s.entries {
		if e.Ref == ref {
			return i
		}
	}
	return -1
}

// dropDuplicates 删除其他持有 ref 的行，
// 草稿保存和重新加载并发、重新加载先带回了该记录时会出现这种情况。
func (s *Set[T]) dropDuplicates(keep int, ref Ref) {
	out := s.entries[:0]
	for i, e := range s.entries {
		if i != keep && e.Ref == ref {
			continue
		}
		out = append(out, e)
	}
	s.entries = out
}
