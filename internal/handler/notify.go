package handler

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"berdoz-admin/internal/notify"
	"berdoz-admin/internal/util"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// NotifyHandler 负责每日任务提醒相关接口
type NotifyHandler struct {
	Scheduler *notify.Scheduler
	Log       *zap.Logger
}

func NewNotifyHandler(s *notify.Scheduler, log *zap.Logger) *NotifyHandler {
	return &NotifyHandler{Scheduler: s, Log: log}
}

// day 解析 YYYY-MM-DD，按调度时区取当天；为空时是今天
func (h *NotifyHandler) day(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return h.Scheduler.Today(), true
	}
	if len(raw) > 10 {
		raw = raw[:10]
	}
	t, err := time.ParseInLocation("2006-01-02", raw, h.Scheduler.Location())
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func tasksMessage(d notify.DayTasks) string {
	if !d.HasTasks {
		return "No tasks scheduled for " + d.Date
	}
	return "Found " + strconv.Itoa(len(d.Codes)) + " task codes for " + d.Date
}

// EmailPreview GET /calendar/email-preview?date=，返回任务和渲染好的邮件
func (h *NotifyHandler) EmailPreview(c *gin.Context) {
	day, ok := h.day(c.Query("date"))
	if !ok {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "date must be YYYY-MM-DD")
		return
	}
	tasks, err := h.Scheduler.Planner().TasksForDate(c.Request.Context(), day)
	if err != nil {
		_ = c.Error(err)
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to generate email preview")
		return
	}
	msg, err := h.Scheduler.Digest(tasks)
	if err != nil {
		_ = c.Error(err)
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to render email")
		return
	}
	util.Success(c, util.Response{
		"tasksData": tasks,
		"subject":   msg.Subject,
		"html":      msg.HTML,
		"preview":   true,
		"message":   tasksMessage(tasks),
	})
}

type sendDigestReq struct {
	Date        string `json:"date"`
	TargetEmail string `json:"targetEmail" binding:"omitempty,email"`
}

// SendDigest POST /calendar/email-preview，把指定日期的任务发给 targetEmail（默认收件人）
func (h *NotifyHandler) SendDigest(c *gin.Context) {
	var req sendDigestReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request body")
		return
	}
	day, ok := h.day(req.Date)
	if !ok {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "date must be YYYY-MM-DD")
		return
	}
	ctx := c.Request.Context()
	tasks, err := h.Scheduler.Planner().TasksForDate(ctx, day)
	if err != nil {
		_ = c.Error(err)
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to load tasks")
		return
	}
	if !tasks.HasTasks {
		util.Success(c, util.Response{
			"tasksData": tasks,
			"sent":      false,
			"message":   "No tasks to send for the specified date",
		})
		return
	}
	if err := h.Scheduler.Send(ctx, tasks, req.TargetEmail); err != nil {
		h.Log.Warn("send digest failed", zap.String("date", tasks.Date), zap.Error(err))
		util.Error(c, http.StatusBadGateway, util.CodeServerErr, "failed to send email: "+err.Error())
		return
	}
	util.Success(c, util.Response{
		"tasksData": tasks,
		"sent":      true,
		"message":   "Email sent successfully with " + strconv.Itoa(len(tasks.Codes)) + " task codes",
	})
}

// SchedulePreview GET /schedule-preview?days=14&history=0
func (h *NotifyHandler) SchedulePreview(c *gin.Context) {
	days, err := strconv.Atoi(c.DefaultQuery("days", "14"))
	if err != nil || days <= 0 || days > 366 {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "days must be 1-366")
		return
	}
	history, err := strconv.Atoi(c.DefaultQuery("history", "0"))
	if err != nil || history < 0 {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "history must not be negative")
		return
	}

	today := h.Scheduler.Today()
	preview, err := h.Scheduler.Planner().Preview(c.Request.Context(), today, days, history)
	if err != nil {
		_ = c.Error(err)
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to build schedule preview")
		return
	}

	withTasks := 0
	for _, d := range preview {
		if d.HasTasks {
			withTasks++
		}
	}
	util.Success(c, util.Response{
		"today":         today.Format("2006-01-02"),
		"days":          preview,
		"daysWithTasks": withTasks,
		"scheduler":     h.Scheduler.Status(),
	})
}

// SchedulerStatus GET /scheduler
func (h *NotifyHandler) SchedulerStatus(c *gin.Context) {
	st := h.Scheduler.Status()
	msg := "Scheduler is not running"
	if st.Running {
		msg = "Scheduler is running"
	}
	util.Success(c, util.Response{"scheduler": st, "message": msg})
}

type schedulerReq struct {
	Action string `json:"action" binding:"omitempty,oneof=start stop"`
}

// SchedulerControl POST /scheduler，body 为空时等同 start
func (h *NotifyHandler) SchedulerControl(c *gin.Context) {
	var req schedulerReq
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "action must be start or stop")
			return
		}
	}

	msg := "Daily notification scheduler started"
	if req.Action == "stop" {
		<-h.Scheduler.Stop().Done()
		msg = "Daily notification scheduler stopped"
	} else if err := h.Scheduler.Start(); err != nil {
		_ = c.Error(err)
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to start scheduler")
		return
	}
	util.Success(c, util.Response{"scheduler": h.Scheduler.Status(), "message": msg})
}

// DailyNotifications GET /daily-notifications，?send=true 时按每日一次的规则发送
func (h *NotifyHandler) DailyNotifications(c *gin.Context) {
	ctx := c.Request.Context()
	if c.Query("send") != "true" {
		tasks, err := h.Scheduler.Planner().TasksForDate(ctx, h.Scheduler.Today())
		if err != nil {
			_ = c.Error(err)
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to load tasks")
			return
		}
		util.Success(c, util.Response{"tasksData": tasks, "message": tasksMessage(tasks)})
		return
	}
	h.run(c, false)
}

// TriggerNotification POST /daily-notifications，手动发送，不检查当天是否已发
func (h *NotifyHandler) TriggerNotification(c *gin.Context) {
	h.run(c, true)
}

func (h *NotifyHandler) run(c *gin.Context, force bool) {
	res, err := h.Scheduler.Run(c.Request.Context(), force)
	if err != nil {
		h.Log.Warn("daily notification failed", zap.Bool("force", force), zap.Error(err))
		util.Error(c, http.StatusBadGateway, util.CodeServerErr, "notification failed: "+err.Error())
		return
	}
	util.Success(c, util.Response{"result": res})
}
