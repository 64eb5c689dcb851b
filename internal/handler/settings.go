package handler

import (
	"errors"
	"net/http"

	"berdoz-admin/internal/config"
	"berdoz-admin/internal/models"
	"berdoz-admin/internal/notify"
	"berdoz-admin/internal/store"
	"berdoz-admin/internal/util"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// EmailSettingsHandler 读写每日提醒的收件人和发送时间
type EmailSettingsHandler struct {
	Store     store.Collection[*models.EmailSettings]
	Scheduler *notify.Scheduler
	Defaults  config.NotifyConfig
	Log       *zap.Logger
}

func NewEmailSettingsHandler(st store.Collection[*models.EmailSettings], s *notify.Scheduler, defaults config.NotifyConfig, log *zap.Logger) *EmailSettingsHandler {
	return &EmailSettingsHandler{Store: st, Scheduler: s, Defaults: defaults, Log: log}
}

// Get GET /email-settings，没有保存过时返回配置文件里的默认值
func (h *EmailSettingsHandler) Get(c *gin.Context) {
	set, stored, err := notify.LoadSettings(c.Request.Context(), h.Store, h.Defaults)
	if err != nil {
		_ = c.Error(err)
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to load email settings")
		return
	}
	util.Success(c, util.Response{"settings": set, "stored": stored})
}

type emailSettingsReq struct {
	SenderEmail      string `json:"senderEmail"`
	TargetEmail      string `json:"targetEmail"`
	NotificationTime string `json:"notificationTime"`
	Timezone         string `json:"timezone"`
	// 省略时视为开启
	Enabled *bool `json:"enabled"`
}

// Save POST/PUT /email-settings，整体覆盖后立即按新时间重排调度
func (h *EmailSettingsHandler) Save(c *gin.Context) {
	var req emailSettingsReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request body")
		return
	}
	set := &models.EmailSettings{
		SenderEmail:      req.SenderEmail,
		TargetEmail:      req.TargetEmail,
		NotificationTime: req.NotificationTime,
		Timezone:         req.Timezone,
		Enabled:          req.Enabled == nil || *req.Enabled,
	}
	set.Normalize()
	if err := util.ValidateStruct(set); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, err.Error())
		return
	}
	// 先让调度器校验时区，失败时不落库
	if err := h.Scheduler.Apply(set); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, err.Error())
		return
	}

	ctx := c.Request.Context()
	cur, err := h.Store.Get(ctx, models.EmailSettingsID)
	switch {
	case err == nil:
		set.Version = cur.Version
		set.CreatedAt = cur.CreatedAt
		err = h.Store.Replace(ctx, set)
	case errors.Is(err, store.ErrNotFound):
		err = h.Store.Insert(ctx, set)
	}
	if err != nil {
		util.StoreError(c, err, "email settings")
		return
	}

	h.Log.Info("email settings updated",
		zap.String("time", set.NotificationTime), zap.String("timezone", set.Timezone), zap.Bool("enabled", set.Enabled))
	util.Success(c, util.Response{
		"settings":  set,
		"scheduler": h.Scheduler.Status(),
		"message":   "Email settings updated successfully",
	})
}
