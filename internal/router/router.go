package router

import (
	"net/http"
	"time"

	"berdoz-admin/internal/catalog"
	"berdoz-admin/internal/config"
	"berdoz-admin/internal/handler"
	"berdoz-admin/internal/logging"
	"berdoz-admin/internal/middleware"
	"berdoz-admin/internal/models"
	"berdoz-admin/internal/notify"
	"berdoz-admin/internal/search"
	"berdoz-admin/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Deps 是 HTTP 层需要的全部依赖
type Deps struct {
	Config    *config.Config
	DB        *gorm.DB
	Stores    *catalog.Stores
	Scheduler *notify.Scheduler
	Log       *zap.Logger
	// Registry 为 nil 时使用新的 registry
	Registry *prometheus.Registry
}

// mount 注册一个模块，涉及金额的模块要求管理员角色
func mount[T models.Document](rg *gin.RouterGroup, adminOnly gin.HandlerFunc, r *handler.Resource[T]) handler.Searcher {
	g := rg
	if r.Def.AdminOnly {
		g = rg.Group("", adminOnly)
	}
	r.Register(g)
	return r
}

// SetupRouter 配置 Gin 引擎和全部 API 路由
func SetupRouter(d Deps) *gin.Engine {
	cfg := d.Config
	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}
	reg := d.Registry
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	metrics := middleware.NewHTTPMetrics(reg)

	r := gin.New()
	r.Use(logging.GinLogger(d.Log), logging.Recovery(d.Log), metrics.Handler())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	// ====== API ======
	api := r.Group("/api")

	tokens := util.TokenIssuer{
		Secret: cfg.JWT.Secret,
		Issuer: cfg.JWT.Issuer,
		TTL:    time.Duration(cfg.JWT.ExpireHours) * time.Hour,
	}
	key := cfg.Security.EncryptionKey

	authHandler := handler.NewAuthHandler(d.DB, tokens, key, d.Log)
	api.POST("/auth/login", authHandler.Login)

	uploads := handler.NewUploadHandler(cfg.Upload.Dir, cfg.Upload.MaxBytes, d.Log)
	// 文件名是随机 uuid，页面里的 <img> 带不上 token
	api.GET("/files/*path", uploads.Serve)

	protected := api.Group("")
	protected.Use(
		middleware.Auth(tokens, d.DB),
		middleware.Audit(d.DB, key, d.Log),
	)
	adminOnly := middleware.RequireRole(models.RoleAdmin)

	protected.POST("/auth/logout", authHandler.Logout)
	protected.GET("/me", handler.GetMe)
	protected.POST("/profile", handler.UpdateProfile(d.DB))
	protected.POST("/profile/password", handler.ChangePassword(d.DB, cfg.Security.BcryptCost))
	protected.POST("/users", adminOnly, handler.CreateUser(d.DB, cfg.Security.BcryptCost))
	protected.POST("/upload", uploads.Upload)

	// ---- 模块 CRUD ----
	st := d.Stores
	legend := handler.NewLegendBook(st.Legend)
	opts := search.Options{Threshold: cfg.Search.Threshold, MinMatchLen: cfg.Search.MinMatchLen}
	limit, size := cfg.Mongo.ListLimit, cfg.App.PageSize

	calendarRes := handler.NewResource(catalog.Calendar().WithSearch(opts), st.Calendar, limit, size, d.Log)
	calendarRes.AfterSave = legend.CalendarSaved
	tasksRes := handler.NewResource(catalog.EmailTasks().WithSearch(opts), st.EmailTasks, limit, size, d.Log)
	tasksRes.AfterSave = legend.EmailTaskSaved

	// 日历网格和邮件预览的静态路径要和 /calendar/:id 共存
	cal := handler.NewCalendarHandler(st.Calendar, legend)
	protected.GET("/calendar/grid", cal.GridByLabel)
	protected.GET("/calendar/:id/grid", cal.GridByEntry)

	notifyHandler := handler.NewNotifyHandler(d.Scheduler, d.Log)
	protected.GET("/calendar/email-preview", notifyHandler.EmailPreview)
	protected.POST("/calendar/email-preview", notifyHandler.SendDigest)
	protected.GET("/schedule-preview", notifyHandler.SchedulePreview)
	protected.GET("/scheduler", notifyHandler.SchedulerStatus)
	protected.POST("/scheduler", adminOnly, notifyHandler.SchedulerControl)
	protected.GET("/daily-notifications", notifyHandler.DailyNotifications)
	protected.POST("/daily-notifications", notifyHandler.TriggerNotification)

	settings := handler.NewEmailSettingsHandler(st.EmailSettings, d.Scheduler, cfg.Notify, d.Log)
	protected.GET("/email-settings", settings.Get)
	protected.POST("/email-settings", adminOnly, settings.Save)
	protected.PUT("/email-settings", adminOnly, settings.Save)

	sources := []handler.Searcher{
		mount(protected, adminOnly, calendarRes),
		mount(protected, adminOnly, handler.NewResource(catalog.Legend().WithSearch(opts), st.Legend, limit, size, d.Log)),
		mount(protected, adminOnly, tasksRes),

		mount(protected, adminOnly, handler.NewResource(catalog.Buses().WithSearch(opts), st.Buses, limit, size, d.Log)),
		mount(protected, adminOnly, handler.NewResource(catalog.Staff().WithSearch(opts), st.Staff, limit, size, d.Log)),
		mount(protected, adminOnly, handler.NewResource(catalog.Teachers().WithSearch(opts), st.Teachers, limit, size, d.Log)),
		mount(protected, adminOnly, handler.NewResource(catalog.ExamSupervision().WithSearch(opts), st.ExamSupervision, limit, size, d.Log)),

		mount(protected, adminOnly, handler.NewResource(catalog.Activities().WithSearch(opts), st.Activities, limit, size, d.Log)),
		mount(protected, adminOnly, handler.NewResource(catalog.EmployeeLeaves().WithSearch(opts), st.EmployeeLeaves, limit, size, d.Log)),
		mount(protected, adminOnly, handler.NewResource(catalog.OfficerLeaves().WithSearch(opts), st.OfficerLeaves, limit, size, d.Log)),
		mount(protected, adminOnly, handler.NewResource(catalog.StudentPermissions().WithSearch(opts), st.StudentPermissions, limit, size, d.Log)),
		mount(protected, adminOnly, handler.NewResource(catalog.SupervisedStudents().WithSearch(opts), st.SupervisedStudents, limit, size, d.Log)),
		mount(protected, adminOnly, handler.NewResource(catalog.Supervision().WithSearch(opts), st.Supervision, limit, size, d.Log)),
		mount(protected, adminOnly, handler.NewResource(catalog.TeacherInfo().WithSearch(opts), st.TeacherInfo, limit, size, d.Log)),

		mount(protected, adminOnly, handler.NewResource(catalog.MonthlyExpenses().WithSearch(opts), st.MonthlyExpenses, limit, size, d.Log)),
		mount(protected, adminOnly, handler.NewResource(catalog.KitchenExpenses().WithSearch(opts), st.KitchenExpenses, limit, size, d.Log)),
		mount(protected, adminOnly, handler.NewResource(catalog.BuildingExpenses().WithSearch(opts), st.BuildingExpenses, limit, size, d.Log)),
		mount(protected, adminOnly, handler.NewResource(catalog.Installments().WithSearch(opts), st.Installments, limit, size, d.Log)),
		mount(protected, adminOnly, handler.NewResource(catalog.Payroll().WithSearch(opts), st.Payroll, limit, size, d.Log)),
		mount(protected, adminOnly, handler.NewResource(catalog.DailyAccounts().WithSearch(opts), st.DailyAccounts, limit, size, d.Log)),
	}

	searchHandler := handler.NewSearchHandler(d.Log, sources...)
	protected.GET("/search", searchHandler.Search)

	// ---- 管理员 ----
	admin := protected.Group("", adminOnly)

	logHandler := handler.NewLogHandler(d.DB, key)
	admin.GET("/logs", logHandler.ListLogs)

	backupHandler := handler.NewBackupHandler(d.DB, key, cfg.Backup.Dir, d.Log, st.Archives()...)
	admin.POST("/backups", backupHandler.CreateBackup)
	admin.POST("/backups/import", backupHandler.ImportBackup)
	admin.GET("/backups", backupHandler.ListBackups)
	admin.GET("/backups/:id/download", backupHandler.DownloadBackup)
	admin.POST("/backups/:id/restore", backupHandler.RestoreBackup)
	admin.DELETE("/backups/:id", backupHandler.DeleteBackup)

	return r
}
