package client

import (
	"context"
	"net/http"
	"net/url"

	"berdoz-admin/internal/models"
	"berdoz-admin/internal/workset"
)

// Resource 是一个模块的客户端：一组工作行，
// 以及让它与服务端保持一致的调用。
type Resource[T models.Document] struct {
	c    *Client
	path string
	set  *workset.Set[T]
}

// NewResource 绑定 /api 下的 path（例如 "bus"）
func NewResource[T models.Document](c *Client, path string) *Resource[T] {
	return &Resource[T]{
		c:    c,
		path: "/api/" + path,
		set:  workset.NewSet(func(doc T) string { return doc.GetMeta().ID }),
	}
}

// Set 返回工作集
func (r *Resource[T]) Set() *workset.Set[T] { return r.set }

// Load 用服务端列表替换工作集
func (r *Resource[T]) Load(ctx context.Context) error {
	var out struct {
		Items []T `json:"items"`
	}
	q := url.Values{"page_size": {"1000"}}
	if err := r.c.do(ctx, http.MethodGet, r.path+"?"+q.Encode(), nil, &out); err != nil {
		return err
	}
	r.set.Load(out.Items)
	return nil
}

// Add 把一条未保存的行放入工作集
func (r *Resource[T]) Add(doc T) workset.Ref { return r.set.AddDraft(doc) }

// Save 新建草稿或替换已保存的行，再把服务端的结果合并回工作集。
// 返回的 ref 一定已持久化。
func (r *Resource[T]) Save(ctx context.Context, ref workset.Ref, doc T) (workset.Ref, error) {
	method, path := http.MethodPut, r.path+"/"+url.PathEscape(ref.ID())
	if ref.IsDraft() {
		method, path = http.MethodPost, r.path
	}
	var out struct {
		Item T `json:"item"`
	}
	if err := r.c.do(ctx, method, path, doc, &out); err != nil {
		return ref, err
	}
	return r.set.Reconcile(ref, out.Item), nil
}

// Delete 删除一行，草稿不会发到服务端
func (r *Resource[T]) Delete(ctx context.Context, ref workset.Ref) error {
	if !ref.IsDraft() {
		if err := r.c.do(ctx, http.MethodDelete, r.path+"/"+url.PathEscape(ref.ID()), nil, nil); err != nil {
			return err
		}
	}
	r.set.Remove(ref)
	return nil
}
