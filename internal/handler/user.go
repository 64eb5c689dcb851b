package handler

import (
	"net/http"
	"strings"

	"berdoz-admin/internal/models"
	"berdoz-admin/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// GetMe 返回当前登录用户信息（需要经过 Auth 中间件）
func GetMe(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	util.Success(c, util.Response{"user": userResp(user)})
}

type createUserReq struct {
	Username    string `json:"username" binding:"required"`
	Password    string `json:"password" binding:"required"`
	DisplayName string `json:"display_name" binding:"max=64"`
	Role        string `json:"role" binding:"omitempty,oneof=admin staff"`
}

// CreateUser 管理员创建账号；没有公开注册
func CreateUser(db *gorm.DB, bcryptCost int) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req createUserReq
		if err := c.ShouldBindJSON(&req); err != nil {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request body")
			return
		}
		req.Username = strings.TrimSpace(req.Username)
		if err := util.ValidateUsername(req.Username); err != nil {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, err.Error())
			return
		}
		if err := util.ValidatePassword(req.Password); err != nil {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, err.Error())
			return
		}
		if req.Role == "" {
			req.Role = models.RoleStaff
		}

		// 不区分大小写唯一
		var count int64
		if err := db.Model(&models.User{}).
			Where("LOWER(username) = LOWER(?)", req.Username).
			Count(&count).Error; err != nil {
			_ = c.Error(err)
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to look up user")
			return
		}
		if count > 0 {
			util.Error(c, http.StatusConflict, util.CodeConflict, "username already exists")
			return
		}

		hash, err := util.HashPassword(req.Password, bcryptCost)
		if err != nil {
			_ = c.Error(err)
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to hash password")
			return
		}
		user := models.User{
			Username:     req.Username,
			PasswordHash: hash,
			DisplayName:  strings.TrimSpace(req.DisplayName),
			Role:         req.Role,
		}
		if err := db.Create(&user).Error; err != nil {
			_ = c.Error(err)
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to create user")
			return
		}
		util.Success(c, util.Response{"user": userResp(&user)})
	}
}
