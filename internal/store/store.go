// Package store 持久化仪表盘文档。每个模块一个集合，
// 生产环境用 MongoDB，测试和离线 CLI 用 Memory。
package store

import (
	"context"
	"errors"
	"time"

	"berdoz-admin/internal/models"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
)

var (
	ErrNotFound = errors.New("store: document not found")
	// ErrConflict 表示存储的版本和写入方读到的不一致
	ErrConflict = errors.New("store: version conflict")
)

// DefaultListLimit 是列表条数上限，沿用仪表盘一直以来的值
const DefaultListLimit = 1000

// SortOrder 选择列表排序
type SortOrder int

const (
	SortUpdatedDesc SortOrder = iota
	SortCreatedDesc
)

// ListOptions 调整 Collection.List
type ListOptions struct {
	Limit int64
	Sort  SortOrder
}

// Collection 是单个文档集合的类型化视图，T 是指针类型，如 *models.Bus
type Collection[T models.Document] interface {
	Name() string
	List(ctx context.Context, opts ListOptions) ([]T, error)
	Get(ctx context.Context, id string) (T, error)
	// Insert 分配 id、版本号和时间戳后写入 doc
	Insert(ctx context.Context, doc T) error
	// Replace 在存储的版本仍等于 doc.Version 时覆盖 doc.ID 对应的文档，
	// 并递增 doc 上的版本号。
	Replace(ctx context.Context, doc T) error
	Delete(ctx context.Context, id string) error
	Archive
}

// Archive 是集合的无类型一面，供备份和恢复使用
type Archive interface {
	Name() string
	Dump(ctx context.Context) ([]bson.M, error)
	// Restore 用 docs 替换整个集合
	Restore(ctx context.Context, docs []bson.M) error
}

func stampNew(m *models.Meta, now time.Time) {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	m.Version = 1
	m.CreatedAt = now
	m.UpdatedAt = now
}

func listLimit(opts ListOptions) int64 {
	if opts.Limit <= 0 {
		return DefaultListLimit
	}
	return opts.Limit
}
