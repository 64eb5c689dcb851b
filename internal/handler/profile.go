package handler

import (
	"net/http"
	"strings"

	"berdoz-admin/internal/models"
	"berdoz-admin/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// UpdateProfileReq 更新基本资料请求
type UpdateProfileReq struct {
	DisplayName string `json:"display_name" binding:"max=64"`
}

// ChangePasswordReq 修改密码请求
type ChangePasswordReq struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required"`
}

// UpdateProfile 更新当前用户的显示名
func UpdateProfile(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := currentUser(c)
		if !ok {
			return
		}

		var req UpdateProfileReq
		if err := c.ShouldBindJSON(&req); err != nil {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request body")
			return
		}
		req.DisplayName = strings.TrimSpace(req.DisplayName)

		if err := db.Model(user).Update("display_name", req.DisplayName).Error; err != nil {
			_ = c.Error(err)
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to update profile")
			return
		}
		user.DisplayName = req.DisplayName

		util.Success(c, util.Response{"user": userResp(user)})
	}
}

// ChangePassword 修改当前用户密码，并注销该用户的其他会话
func ChangePassword(db *gorm.DB, bcryptCost int) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := currentUser(c)
		if !ok {
			return
		}

		var req ChangePasswordReq
		if err := c.ShouldBindJSON(&req); err != nil {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request body")
			return
		}
		if !util.CheckPassword(req.OldPassword, user.PasswordHash) {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "current password is incorrect")
			return
		}
		if err := util.ValidatePassword(req.NewPassword); err != nil {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, err.Error())
			return
		}

		hash, err := util.HashPassword(req.NewPassword, bcryptCost)
		if err != nil {
			_ = c.Error(err)
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to hash password")
			return
		}

		sid := c.GetString("sessionID")
		err = db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Model(user).Update("password_hash", hash).Error; err != nil {
				return err
			}
			return tx.Model(&models.Session{}).
				Where("user_id = ? AND id <> ?", user.ID, sid).
				Update("revoked", true).Error
		})
		if err != nil {
			_ = c.Error(err)
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to update password")
			return
		}
		user.PasswordHash = hash

		util.Success(c, util.Response{
			"message": "password changed, other sessions have been signed out",
		})
	}
}
