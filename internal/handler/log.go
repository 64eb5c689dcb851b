package handler

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"berdoz-admin/internal/models"
	"berdoz-admin/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// LogHandler 负责安全日志查询接口
type LogHandler struct {
	DB         *gorm.DB
	EncryptKey string
}

func NewLogHandler(db *gorm.DB, encryptKey string) *LogHandler {
	return &LogHandler{
		DB:         db,
		EncryptKey: encryptKey,
	}
}

type logResp struct {
	ID        uint      `json:"id"`
	UserID    *uint     `json:"user_id"`
	Username  string    `json:"username"`
	Event     string    `json:"event"`
	Method    string    `json:"method"`
	Path      string    `json:"path"`
	Action    string    `json:"action"`
	Status    int       `json:"status"`
	IP        string    `json:"ip"`
	UserAgent string    `json:"user_agent"`
	CreatedAt time.Time `json:"created_at"`
}

// ListLogs 分页列出安全日志（管理员），支持 start/end 日期、event、username 和关键字 q
func (h *LogHandler) ListLogs(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page <= 0 {
		page = 1
	}
	size, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	if size <= 0 || size > 100 {
		size = 20
	}

	base := h.DB.Model(&models.SecurityLog{})

	// 时间筛选：start / end（格式 YYYY-MM-DD）
	if s := c.Query("start"); s != "" {
		t, err := time.Parse("2006-01-02", s)
		if err != nil {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid start date")
			return
		}
		base = base.Where("created_at >= ?", t)
	}
	if s := c.Query("end"); s != "" {
		t, err := time.Parse("2006-01-02", s)
		if err != nil {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid end date")
			return
		}
		base = base.Where("created_at < ?", t.Add(24*time.Hour))
	}
	if ev := c.Query("event"); ev != "" {
		base = base.Where("event = ?", ev)
	}
	if u := strings.TrimSpace(c.Query("username")); u != "" {
		base = base.Where("LOWER(username) = LOWER(?)", u)
	}

	var logs []models.SecurityLog
	if err := base.Order("created_at DESC, id DESC").Find(&logs).Error; err != nil {
		_ = c.Error(err)
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to query logs")
		return
	}

	// path/action 是密文，关键字只能解密后在内存里匹配
	q := strings.ToLower(strings.TrimSpace(c.Query("q")))
	items := make([]logResp, 0, len(logs))
	for i := range logs {
		l := &logs[i]
		item := logResp{
			ID:        l.ID,
			UserID:    l.UserID,
			Username:  l.Username,
			Event:     l.Event,
			Method:    l.Method,
			Path:      util.DecryptString(h.EncryptKey, l.PathEnc),
			Action:    util.DecryptString(h.EncryptKey, l.ActionEnc),
			Status:    l.Status,
			IP:        l.IP,
			UserAgent: l.UserAgent,
			CreatedAt: l.CreatedAt,
		}
		if q != "" && !strings.Contains(strings.ToLower(item.Path+" "+item.Action), q) {
			continue
		}
		items = append(items, item)
	}

	total := len(items)
	start := (page - 1) * size
	if start > total {
		start = total
	}
	end := start + size
	if end > total {
		end = total
	}

	util.Success(c, util.Response{
		"items": items[start:end],
		"total": total,
		"page":  page,
		"size":  size,
	})
}
