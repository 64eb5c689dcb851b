package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"berdoz-admin/internal/database"
	"berdoz-admin/internal/models"
	"berdoz-admin/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	maxFailedLogins = 5
	lockoutDuration = 10 * time.Minute
)

// AuthHandler 负责登录/注销
type AuthHandler struct {
	DB         *gorm.DB
	Tokens     util.TokenIssuer
	EncryptKey string
	Log        *zap.Logger
	Now        func() time.Time
}

// NewAuthHandler 构造函数
func NewAuthHandler(db *gorm.DB, tokens util.TokenIssuer, encryptKey string, log *zap.Logger) *AuthHandler {
	return &AuthHandler{
		DB:         db,
		Tokens:     tokens,
		EncryptKey: encryptKey,
		Log:        log,
		Now:        time.Now,
	}
}

// ---------- 登录 ----------

type loginReq struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req loginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "username and password are required")
		return
	}
	req.Username = strings.TrimSpace(req.Username)

	var user models.User
	// 用户名不区分大小写匹配
	if err := h.DB.Where("LOWER(username) = LOWER(?)", req.Username).
		First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			h.record(c, nil, req.Username, "login_failed", "unknown user")
			util.Error(c, http.StatusUnauthorized, util.CodeAuth, "invalid username or password")
		} else {
			_ = c.Error(err)
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to look up user")
		}
		return
	}

	now := h.Now()

	// 检查是否被锁定
	if user.LockedUntil != nil && now.Before(*user.LockedUntil) {
		h.record(c, &user, user.Username, "login_failed", "account locked")
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "account locked, try again later")
		return
	}

	if !util.CheckPassword(req.Password, user.PasswordHash) {
		// 连续失败 5 次锁定 10 分钟，锁定后计数清零
		user.FailedLoginAttempts++
		if user.FailedLoginAttempts >= maxFailedLogins {
			lockUntil := now.Add(lockoutDuration)
			user.LockedUntil = &lockUntil
			user.FailedLoginAttempts = 0
		}
		if err := h.DB.Save(&user).Error; err != nil {
			h.Log.Warn("save failed login counter", zap.Uint("user_id", user.ID), zap.Error(err))
		}
		h.record(c, &user, user.Username, "login_failed", "bad password")
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "invalid username or password")
		return
	}

	user.FailedLoginAttempts = 0
	user.LockedUntil = nil
	user.LastLoginIP = c.ClientIP()
	user.LastLoginAt = &now

	session := models.Session{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		IP:        c.ClientIP(),
		UserAgent: truncate(c.Request.UserAgent(), 255),
	}
	token, expires, err := h.Tokens.Generate(user.ID, session.ID, user.Role, now)
	if err != nil {
		_ = c.Error(err)
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to issue token")
		return
	}
	session.ExpiresAt = expires

	err = h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(&user).Error; err != nil {
			return err
		}
		return tx.Omit("User").Create(&session).Error
	})
	if err != nil {
		_ = c.Error(err)
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to create session")
		return
	}
	h.record(c, &user, user.Username, "login_success", "")

	util.Success(c, util.Response{
		"token":      token,
		"expires_at": expires,
		"user":       userResp(&user),
	})
}

// Logout 撤销当前会话，旧 token 立即失效
func (h *AuthHandler) Logout(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	sid := c.GetString("sessionID")
	if sid == "" {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "not logged in")
		return
	}
	if err := h.DB.Model(&models.Session{}).
		Where("id = ? AND user_id = ?", sid, user.ID).
		Update("revoked", true).Error; err != nil {
		_ = c.Error(err)
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to revoke session")
		return
	}
	h.record(c, user, user.Username, "logout", "")
	util.Success(c, util.Response{"message": "logged out"})
}

// record 写安全日志，失败只记日志不影响登录结果
func (h *AuthHandler) record(c *gin.Context, user *models.User, username, event, detail string) {
	entry := models.SecurityLog{
		Username:  username,
		Event:     event,
		Method:    c.Request.Method,
		Status:    http.StatusOK,
		IP:        c.ClientIP(),
		UserAgent: truncate(c.Request.UserAgent(), 255),
	}
	if event == "login_failed" {
		entry.Status = http.StatusUnauthorized
	}
	if user != nil {
		id := user.ID
		entry.UserID = &id
	}
	action := event
	if detail != "" {
		action += ": " + detail
	}
	if err := database.RecordSecurity(h.DB, h.EncryptKey, entry, c.Request.URL.Path, action); err != nil {
		h.Log.Warn("security log failed", zap.String("event", event), zap.Error(err))
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
