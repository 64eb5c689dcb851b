package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"berdoz-admin/internal/catalog"
	"berdoz-admin/internal/models"
	"berdoz-admin/internal/search"
	"berdoz-admin/internal/store"
	"berdoz-admin/internal/util"
	"berdoz-admin/internal/view"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Resource 是一个模块的通用 CRUD 接口，各模块只在 catalog 里描述差异
type Resource[T models.Document] struct {
	Def       catalog.Def[T]
	Store     store.Collection[T]
	ListLimit int64
	PageSize  int
	Log       *zap.Logger
	// AfterSave 在新增或修改成功后调用，失败只记日志
	AfterSave func(ctx context.Context, doc T) error
}

// NewResource 构造函数
func NewResource[T models.Document](def catalog.Def[T], st store.Collection[T], listLimit int64, pageSize int, log *zap.Logger) *Resource[T] {
	return &Resource[T]{
		Def:       def,
		Store:     st,
		ListLimit: listLimit,
		PageSize:  pageSize,
		Log:       log,
	}
}

// Register 挂载 /<path> 下的全部路由
func (h *Resource[T]) Register(rg *gin.RouterGroup) {
	g := rg.Group("/" + h.Def.Path)
	g.GET("", h.List)
	g.GET("/export", h.Export)
	g.POST("", h.Create)
	g.GET("/:id", h.Get)
	g.PUT("/:id", h.Update)
	g.DELETE("/:id", h.Delete)
}

// Rows 读取列表（最多 ListLimit 条），按模块规则排好序
func (h *Resource[T]) Rows(ctx context.Context) ([]T, error) {
	rows, err := h.Store.List(ctx, store.ListOptions{Limit: h.ListLimit, Sort: h.Def.Sort})
	if err != nil {
		return nil, err
	}
	if h.Def.Arrange != nil {
		h.Def.Arrange(rows)
	}
	return rows, nil
}

func queryFromRequest(c *gin.Context) view.Query {
	return view.Query{
		Table:  view.Filter{Year: c.Query("year"), Month: c.Query("month")},
		Search: strings.TrimSpace(c.Query("q")),
		Pinned: view.Filter{Year: c.Query("summary_year"), Month: c.Query("summary_month")},
	}
}

// compose 取数据并计算表格范围和汇总范围
func (h *Resource[T]) compose(c *gin.Context) (view.Result[T], bool) {
	rows, err := h.Rows(c.Request.Context())
	if err != nil {
		util.StoreError(c, err, h.Def.Title)
		return view.Result[T]{}, false
	}
	return view.Compose(rows, queryFromRequest(c), h.Def.View), true
}

// List 列表：q 搜索 + year/month 过滤表格；summary_year/summary_month 只影响汇总
func (h *Resource[T]) List(c *gin.Context) {
	res, ok := h.compose(c)
	if !ok {
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size := h.PageSize
	if s := c.Query("page_size"); s != "" {
		size, _ = strconv.Atoi(s)
	}
	if size > int(store.DefaultListLimit) {
		size = int(store.DefaultListLimit)
	}
	p := view.Paginate(res.Rows, page, size)

	summary := gin.H{"pinned_count": res.PinnedCount}
	if h.Def.View.Amount != nil {
		summary["displayed_total"] = res.DisplayedTotal
		summary["pinned_total"] = res.PinnedTotal
	}

	util.Success(c, util.Response{
		"items":   p.Items,
		"total":   p.Total,
		"page":    p.Page,
		"size":    p.Size,
		"summary": summary,
	})
}

// Get 按 id 查询单条
func (h *Resource[T]) Get(c *gin.Context) {
	doc, err := h.Store.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		util.StoreError(c, err, h.Def.Title)
		return
	}
	util.Success(c, util.Response{"item": doc})
}

// bind 解析请求体，重算派生字段并校验
func (h *Resource[T]) bind(c *gin.Context) (T, bool) {
	var doc T
	raw, err := c.GetRawData()
	if err == nil {
		err = json.Unmarshal(raw, &doc)
	}
	if err != nil || isNil(doc) {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request body")
		return doc, false
	}
	if n, ok := any(doc).(models.Normalizer); ok {
		n.Normalize()
	}
	if err := util.ValidateStruct(doc); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, err.Error())
		return doc, false
	}
	return doc, true
}

func isNil(v interface{}) bool {
	rv := reflect.ValueOf(v)
	return !rv.IsValid() || (rv.Kind() == reflect.Ptr && rv.IsNil())
}

// Create 新增，id 和版本由服务端生成
func (h *Resource[T]) Create(c *gin.Context) {
	doc, ok := h.bind(c)
	if !ok {
		return
	}
	*doc.GetMeta() = models.Meta{}

	if err := h.Store.Insert(c.Request.Context(), doc); err != nil {
		util.StoreError(c, err, h.Def.Title)
		return
	}
	h.afterSave(c.Request.Context(), doc)
	util.Success(c, util.Response{"item": doc})
}

// Update 整条替换，body 必须带上读取时的 version，过期返回 409
func (h *Resource[T]) Update(c *gin.Context) {
	doc, ok := h.bind(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	id := c.Param("id")

	cur, err := h.Store.Get(ctx, id)
	if err != nil {
		util.StoreError(c, err, h.Def.Title)
		return
	}
	meta := doc.GetMeta()
	meta.ID = id
	meta.CreatedAt = cur.GetMeta().CreatedAt

	if err := h.Store.Replace(ctx, doc); err != nil {
		util.StoreError(c, err, h.Def.Title)
		return
	}
	h.afterSave(ctx, doc)
	util.Success(c, util.Response{"item": doc})
}

// Delete 删除单条
func (h *Resource[T]) Delete(c *gin.Context) {
	if err := h.Store.Delete(c.Request.Context(), c.Param("id")); err != nil {
		util.StoreError(c, err, h.Def.Title)
		return
	}
	util.Success(c, util.Response{"message": "deleted"})
}

func (h *Resource[T]) afterSave(ctx context.Context, doc T) {
	if h.AfterSave == nil {
		return
	}
	if err := h.AfterSave(ctx, doc); err != nil {
		h.Log.Warn("after-save hook failed",
			zap.String("collection", h.Def.Collection),
			zap.String("id", doc.GetMeta().ID),
			zap.Error(err))
	}
}

// Export 导出当前表格范围（过滤 + 搜索后的结果）
func (h *Resource[T]) Export(c *gin.Context) {
	res, ok := h.compose(c)
	if !ok {
		return
	}
	rows := make([][]interface{}, 0, len(res.Rows))
	for _, r := range res.Rows {
		rows = append(rows, h.Def.Row(r))
	}
	sheet := exportSheet{
		Name:    h.Def.Title,
		File:    strings.ReplaceAll(h.Def.Collection, "_", "-"),
		Headers: h.Def.Headers(),
		Widths:  h.Def.Widths(),
		Rows:    rows,
	}
	switch c.DefaultQuery("format", "csv") {
	case "csv":
		writeCSV(c, sheet)
	case "xlsx":
		writeXLSX(c, sheet)
	default:
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "format must be csv or xlsx")
	}
}

// Searcher 是通用搜索用到的部分
type Searcher interface {
	Collection() string
	AdminOnly() bool
	Search(ctx context.Context, term string, limit int) ([]interface{}, error)
}

func (h *Resource[T]) Collection() string { return h.Def.Collection }
func (h *Resource[T]) AdminOnly() bool    { return h.Def.AdminOnly }

// Search 在本模块内做模糊搜索，最多返回 limit 条
func (h *Resource[T]) Search(ctx context.Context, term string, limit int) ([]interface{}, error) {
	rows, err := h.Rows(ctx)
	if err != nil {
		return nil, err
	}
	hits := search.NewIndex(rows, h.Def.View.Keys, h.Def.View.Options).Search(term)
	if limit > 0 && len(hits) > limit {
		hits = hits[:limit]
	}
	out := make([]interface{}, len(hits))
	for i, hit := range hits {
		out[i] = hit.Item
	}
	return out, nil
}
