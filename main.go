package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"berdoz-admin/internal/catalog"
	"berdoz-admin/internal/config"
	"berdoz-admin/internal/database"
	"berdoz-admin/internal/logging"
	"berdoz-admin/internal/notify"
	"berdoz-admin/internal/router"
	"berdoz-admin/internal/store"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	// load configuration
	cfg, err := config.Load(os.Getenv("BERDOZ_CONFIG"))
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	for _, dir := range []string{cfg.Backup.Dir, cfg.Upload.Dir} {
		if err := ensureDir(dir); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}

	// sqlite：用户、会话、安全日志、备份
	db, err := database.Init(cfg.Database)
	if err != nil {
		return fmt.Errorf("init database: %w", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}

	// mongo：学校记录
	client, err := store.Connect(ctx, cfg.Mongo, logger)
	if err != nil {
		return err
	}
	defer func() {
		dctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = client.Disconnect(dctx)
	}()
	stores := catalog.MongoStores(client.Database(cfg.Mongo.Database), cfg.Mongo.Timeout)
	if err := stores.EnsureIndexes(ctx); err != nil {
		return err
	}

	scheduler, err := newScheduler(ctx, cfg, stores, logger)
	if err != nil {
		return err
	}
	// 数据库里保存的提醒设置优先于配置文件
	settings, stored, err := notify.LoadSettings(ctx, stores.EmailSettings, cfg.Notify)
	if err != nil {
		return err
	}
	switch {
	case stored:
		err = scheduler.Apply(settings)
	case cfg.Notify.Enabled:
		err = scheduler.Start()
	}
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	r := router.SetupRouter(router.Deps{
		Config:    cfg,
		DB:        db,
		Stores:    stores,
		Scheduler: scheduler,
		Log:       logger,
		Registry:  reg,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Address, cfg.Server.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		logger.Warn("http shutdown", zap.Error(err))
	}
	select {
	case <-scheduler.Stop().Done():
	case <-sctx.Done():
		logger.Warn("scheduler did not stop in time")
	}
	return nil
}

// newScheduler 根据配置选择发信方式和每日一次的去重
func newScheduler(ctx context.Context, cfg *config.Config, st *catalog.Stores, logger *zap.Logger) (*notify.Scheduler, error) {
	var mailer notify.Mailer = notify.ConsoleMailer{Log: logger.Named("mail")}
	if cfg.Notify.SendgridAPIKey != "" {
		mailer = notify.NewSendgridMailer(cfg.Notify.SendgridAPIKey, cfg.Notify.SenderName, cfg.Notify.Sender)
	} else {
		logger.Warn("no sendgrid key configured, digests go to the log")
	}

	var dedupe notify.Deduper
	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		pctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := rdb.Ping(pctx).Err(); err != nil {
			return nil, fmt.Errorf("ping redis: %w", err)
		}
		dedupe = notify.RedisDeduper{Client: rdb, Prefix: "berdoz:"}
	}

	planner := &notify.Planner{
		Tasks:    st.EmailTasks,
		Calendar: st.Calendar,
		Legend:   st.Legend,
		Log:      logger.Named("planner"),
	}
	return notify.NewScheduler(planner, mailer, dedupe, cfg.Notify, logger.Named("notify"))
}

func ensureDir(dir string) error {
	if dir == "" || dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
