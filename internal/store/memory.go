package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"berdoz-admin/internal/models"

	"go.mongodb.org/mongo-driver/bson"
)

type memDoc struct {
	meta models.Meta
	raw  []byte
}

// Memory 是进程内的 Collection。文档经 BSON 往返，
// 调用方和存储之间不共享内存，与 MongoDB 一致。
type Memory[T models.Document] struct {
	name string
	now  func() time.Time

	mu   sync.RWMutex
	docs map[string]*memDoc
}

func NewMemory[T models.Document](name string) *Memory[T] {
	return &Memory[T]{name: name, now: time.Now, docs: make(map[string]*memDoc)}
}

// WithClock 替换时间来源，测试用它得到不同的时间戳
func (m *Memory[T]) WithClock(now func() time.Time) *Memory[T] {
	m.now = now
	return m
}

func (m *Memory[T]) Name() string { return m.name }

func (m *Memory[T]) List(_ context.Context, opts ListOptions) ([]T, error) {
	m.mu.RLock()
	entries := make([]*memDoc, 0, len(m.docs))
	for _, d := range m.docs {
		entries = append(entries, d)
	}
	m.mu.RUnlock()

	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i].meta, entries[j].meta
		if opts.Sort == SortCreatedDesc {
			if !a.CreatedAt.Equal(b.CreatedAt) {
				return a.CreatedAt.After(b.CreatedAt)
			}
		} else if !a.UpdatedAt.Equal(b.UpdatedAt) {
			return a.UpdatedAt.After(b.UpdatedAt)
		}
		return a.ID < b.ID
	})
	if limit := listLimit(opts); int64(len(entries)) > limit {
		entries = entries[:limit]
	}

	out := make([]T, 0, len(entries))
	for _, e := range entries {
		doc, err := m.decode(e.raw)
		if err != nil {
			return nil, err
		}
		out = append(out, doc)
	}
	return out, nil
}

func (m *Memory[T]) Get(_ context.Context, id string) (T, error) {
	m.mu.RLock()
	d, ok := m.docs[id]
	m.mu.RUnlock()
	if !ok {
		var zero T
		return zero, ErrNotFound
	}
	return m.decode(d.raw)
}

func (m *Memory[T]) Insert(_ context.Context, doc T) error {
	meta := doc.GetMeta()
	stampNew(meta, m.now().UTC())
	raw, err := bson.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode %s: %w", m.name, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.docs[meta.ID]; exists {
		return fmt.Errorf("insert %s/%s: duplicate id", m.name, meta.ID)
	}
	m.docs[meta.ID] = &memDoc{meta: *meta, raw: raw}
	return nil
}

func (m *Memory[T]) Replace(_ context.Context, doc T) error {
	meta := doc.GetMeta()

	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.docs[meta.ID]
	if !ok {
		return ErrNotFound
	}
	if cur.meta.Version != meta.Version {
		return ErrConflict
	}

	prev := *meta
	meta.Version++
	meta.CreatedAt = cur.meta.CreatedAt
	meta.UpdatedAt = m.now().UTC()
	raw, err := bson.Marshal(doc)
	if err != nil {
		*meta = prev
		return fmt.Errorf("encode %s: %w", m.name, err)
	}
	m.docs[meta.ID] = &memDoc{meta: *meta, raw: raw}
	return nil
}

func (m *Memory[T]) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.docs[id]; !ok {
		return ErrNotFound
	}
	delete(m.docs, id)
	return nil
}

func (m *Memory[T]) Dump(_ context.Context) ([]bson.M, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]bson.M, 0, len(m.docs))
	for _, d := range m.docs {
		var doc bson.M
		if err := bson.Unmarshal(d.raw, &doc); err != nil {
			return nil, fmt.Errorf("decode %s: %w", m.name, err)
		}
		out = append(out, doc)
	}
	return out, nil
}

func (m *Memory[T]) Restore(_ context.Context, docs []bson.M) error {
	next := make(map[string]*memDoc, len(docs))
	for _, d := range docs {
		delete(d, "_id")
		raw, err := bson.Marshal(d)
		if err != nil {
			return fmt.Errorf("encode %s: %w", m.name, err)
		}
		doc, err := m.decode(raw)
		if err != nil {
			return err
		}
		meta := *doc.GetMeta()
		if meta.ID == "" {
			return fmt.Errorf("restore %s: document without id", m.name)
		}
		next[meta.ID] = &memDoc{meta: meta, raw: raw}
	}

	m.mu.Lock()
	m.docs = next
	m.mu.Unlock()
	return nil
}

func (m *Memory[T]) decode(raw []byte) (T, error) {
	var doc T
	if err := bson.Unmarshal(raw, &doc); err != nil {
		return doc, fmt.Errorf("decode %s: %w", m.name, err)
	}
	return doc, nil
}
