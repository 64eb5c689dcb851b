package handler

import (
	"net/http"

	"berdoz-admin/internal/models"
	"berdoz-admin/internal/util"

	"github.com/gin-gonic/gin"
)

// currentUser 取出 AuthMiddleware 放入的用户，没有则直接返回 401
func currentUser(c *gin.Context) (*models.User, bool) {
	v, ok := c.Get("currentUser")
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "not logged in")
		return nil, false
	}
	user, ok := v.(*models.User)
	if !ok || user == nil {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "not logged in")
		return nil, false
	}
	return user, true
}

func userResp(u *models.User) gin.H {
	return gin.H{
		"id":            u.ID,
		"username":      u.Username,
		"display_name":  u.DisplayName,
		"role":          u.Role,
		"created_at":    u.CreatedAt,
		"last_login_at": u.LastLoginAt,
	}
}
