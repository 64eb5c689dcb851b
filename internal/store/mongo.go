package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"berdoz-admin/internal/config"
	"berdoz-admin/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// Connect 创建 MongoDB 客户端并 ping 验证
func Connect(ctx context.Context, cfg config.MongoConfig, log *zap.Logger) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	log.Info("mongo connected", zap.String("database", cfg.Database))
	return client, nil
}

// Mongo 是基于 MongoDB 集合的 Collection
type Mongo[T models.Document] struct {
	coll    *mongo.Collection
	timeout time.Duration
	now     func() time.Time
}

func NewMongo[T models.Document](db *mongo.Database, name string, timeout time.Duration) *Mongo[T] {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Mongo[T]{coll: db.Collection(name), timeout: timeout, now: time.Now}
}

func (m *Mongo[T]) Name() string { return m.coll.Name() }

// EnsureIndexes 创建唯一 id 索引和列表排序索引
func (m *Mongo[T]) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()
	_, err := m.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "updated_at", Value: -1}}},
		{Keys: bson.D{{Key: "created_at", Value: -1}}},
	})
	if err != nil {
		return fmt.Errorf("create indexes on %s: %w", m.Name(), err)
	}
	return nil
}

func (m *Mongo[T]) List(ctx context.Context, opts ListOptions) ([]T, error) {
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	sortKey := "updated_at"
	if opts.Sort == SortCreatedDesc {
		sortKey = "created_at"
	}
	findOpts := options.Find().
		SetSort(bson.D{{Key: sortKey, Value: -1}}).
		SetLimit(listLimit(opts)).
		SetProjection(bson.M{"_id": 0})

	cur, err := m.coll.Find(ctx, bson.M{}, findOpts)
	if err != nil {
		return nil, fmt.Errorf("find %s: %w", m.Name(), err)
	}
	defer cur.Close(ctx)

	out := make([]T, 0)
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode %s: %w", m.Name(), err)
	}
	return out, nil
}

func (m *Mongo[T]) Get(ctx context.Context, id string) (T, error) {
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	var doc T
	err := m.coll.FindOne(ctx, bson.M{"id": id}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return doc, ErrNotFound
	}
	if err != nil {
		return doc, fmt.Errorf("find %s/%s: %w", m.Name(), id, err)
	}
	return doc, nil
}

func (m *Mongo[T]) Insert(ctx context.Context, doc T) error {
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	stampNew(doc.GetMeta(), m.now().UTC())
	if _, err := m.coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert %s: %w", m.Name(), err)
	}
	return nil
}

func (m *Mongo[T]) Replace(ctx context.Context, doc T) error {
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	meta := doc.GetMeta()
	expected := meta.Version
	filter := bson.M{"id": meta.ID, "version": expected}
	if expected == 0 {
		// 引入版本号之前写入的文档没有 version 字段
		filter = bson.M{"id": meta.ID, "$or": bson.A{
			bson.M{"version": 0},
			bson.M{"version": bson.M{"$exists": false}},
		}}
	}

	prev := *meta
	meta.Version = expected + 1
	meta.UpdatedAt = m.now().UTC()

	res, err := m.coll.ReplaceOne(ctx, filter, doc)
	if err != nil {
		*meta = prev
		return fmt.Errorf("replace %s/%s: %w", m.Name(), meta.ID, err)
	}
	if res.MatchedCount == 1 {
		return nil
	}
	*meta = prev

	n, err := m.coll.CountDocuments(ctx, bson.M{"id": meta.ID})
	if err != nil {
		return fmt.Errorf("count %s/%s: %w", m.Name(), meta.ID, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return ErrConflict
}

func (m *Mongo[T]) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	res, err := m.coll.DeleteOne(ctx, bson.M{"id": id})
	if err != nil {
		return fmt.Errorf("delete %s/%s: %w", m.Name(), id, err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (m *Mongo[T]) Dump(ctx context.Context) ([]bson.M, error) {
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	cur, err := m.coll.Find(ctx, bson.M{}, options.Find().SetProjection(bson.M{"_id": 0}))
	if err != nil {
		return nil, fmt.Errorf("dump %s: %w", m.Name(), err)
	}
	defer cur.Close(ctx)

	out := make([]bson.M, 0)
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode dump %s: %w", m.Name(), err)
	}
	return out, nil
}

func (m *Mongo[T]) Restore(ctx context.Context, docs []bson.M) error {
	ctx, cancel := context.WithTimeout(ctx, m.timeout*3)
	defer cancel()

	if _, err := m.coll.DeleteMany(ctx, bson.M{}); err != nil {
		return fmt.Errorf("clear %s: %w", m.Name(), err)
	}
	if len(docs) == 0 {
		return nil
	}
	batch := make([]interface{}, 0, len(docs))
	for _, d := range docs {
		delete(d, "_id")
		batch = append(batch, d)
	}
	if _, err := m.coll.InsertMany(ctx, batch); err != nil {
		return fmt.Errorf("restore %s: %w", m.Name(), err)
	}
	return nil
}
