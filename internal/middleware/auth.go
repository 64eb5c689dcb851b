package middleware

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"berdoz-admin/internal/models"
	"berdoz-admin/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// TokenCookie 是浏览器下载文件时携带 token 的 cookie 名
const TokenCookie = "berdoz_token"

func tokenFrom(c *gin.Context) string {
	// 1) Header: Authorization: Bearer xxx
	if h := c.GetHeader("Authorization"); h != "" {
		parts := strings.SplitN(h, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
	}
	// 2) ?token=xxx（导出、备份下载等无法自定义 Header 的场景）
	if t := c.Query("token"); t != "" {
		return t
	}
	// 3) Cookie
	if t, err := c.Cookie(TokenCookie); err == nil {
		return t
	}
	return ""
}

// Auth 校验 JWT 和对应会话，在 context 里放入当前用户和会话 id
func Auth(tokens util.TokenIssuer, db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr := tokenFrom(c)
		if tokenStr == "" {
			util.Error(c, http.StatusUnauthorized, util.CodeAuth, "not logged in")
			return
		}

		claims, err := tokens.Parse(tokenStr)
		if err != nil {
			util.Error(c, http.StatusUnauthorized, util.CodeAuth, "session expired, please log in again")
			return
		}

		var session models.Session
		if err := db.Preload("User").First(&session, "id = ?", claims.SessionID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				util.Error(c, http.StatusUnauthorized, util.CodeAuth, "session expired, please log in again")
			} else {
				_ = c.Error(err)
				util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to load session")
			}
			return
		}
		if !session.Active(time.Now()) || session.UserID != claims.UserID || session.User.ID == 0 {
			util.Error(c, http.StatusUnauthorized, util.CodeAuth, "session expired, please log in again")
			return
		}

		user := session.User
		c.Set("currentUser", &user)
		c.Set("sessionID", session.ID)
		c.Next()
	}
}

// RequireRole 只允许指定角色访问，必须放在 Auth 之后
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		v, _ := c.Get("currentUser")
		user, _ := v.(*models.User)
		if user == nil {
			util.Error(c, http.StatusUnauthorized, util.CodeAuth, "not logged in")
			return
		}
		for _, r := range roles {
			if user.Role == r {
				c.Next()
				return
			}
		}
		util.Error(c, http.StatusForbidden, util.CodeForbidden, "permission denied")
	}
}
