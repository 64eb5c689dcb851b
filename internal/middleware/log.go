package middleware

import (
	"bytes"
	"io"
	"net/http"
	"strings"

	"berdoz-admin/internal/database"
	"berdoz-admin/internal/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// 请求体超过这个长度只记方法和路径
const maxAuditBody = 2000

func isMutation(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}

// Audit 记录登录用户的写操作，path 和 action 加密存储
func Audit(db *gorm.DB, encryptKey string, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !isMutation(c.Request.Method) {
			c.Next()
			return
		}

		// 上传的文件不进日志
		var body []byte
		if c.Request.Body != nil && !strings.HasPrefix(c.ContentType(), "multipart/") {
			body, _ = io.ReadAll(io.LimitReader(c.Request.Body, maxAuditBody+1))
			c.Request.Body = io.NopCloser(io.MultiReader(bytes.NewReader(body), c.Request.Body))
		}

		c.Next()

		v, _ := c.Get("currentUser")
		user, _ := v.(*models.User)
		if user == nil {
			return
		}

		path := c.Request.URL.Path
		action := c.Request.Method + " " + path
		if len(body) > 0 && len(body) <= maxAuditBody {
			action += " " + string(body)
		}

		userID := user.ID
		entry := models.SecurityLog{
			UserID:    &userID,
			Username:  user.Username,
			Event:     "mutation",
			Method:    c.Request.Method,
			Status:    c.Writer.Status(),
			IP:        c.ClientIP(),
			UserAgent: c.Request.UserAgent(),
		}
		if len(entry.UserAgent) > 255 {
			entry.UserAgent = entry.UserAgent[:255]
		}
		if err := database.RecordSecurity(db, encryptKey, entry, path, action); err != nil {
			log.Warn("audit log failed", zap.String("path", c.FullPath()), zap.Error(err))
		}
	}
}
