package handler

import (
	"net/http"
	"strings"

	"berdoz-admin/internal/util"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const searchLimit = 50

// SearchHandler 跨模块的通用搜索
type SearchHandler struct {
	Sources []Searcher
	Log     *zap.Logger
}

func NewSearchHandler(log *zap.Logger, sources ...Searcher) *SearchHandler {
	return &SearchHandler{Sources: sources, Log: log}
}

// Search GET /search?q=，按集合名分组返回，没有命中的集合不出现；财务模块只对管理员可见
func (h *SearchHandler) Search(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	q := strings.TrimSpace(c.Query("q"))
	if q == "" {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "search query is required")
		return
	}

	results := util.Response{}
	total := 0
	for _, src := range h.Sources {
		if src.AdminOnly() && !user.IsAdmin() {
			continue
		}
		hits, err := src.Search(c.Request.Context(), q, searchLimit)
		if err != nil {
			// 单个集合失败不影响其他结果
			h.Log.Warn("search collection failed", zap.String("collection", src.Collection()), zap.Error(err))
			continue
		}
		if len(hits) == 0 {
			continue
		}
		results[src.Collection()] = hits
		total += len(hits)
	}

	util.Success(c, util.Response{
		"query":   q,
		"results": results,
		"total":   total,
	})
}
