package notify

import (
	"context"
	"fmt"
	"sync"
	"time"

	"berdoz-admin/internal/config"

	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Deduper 让唯一一个调用方在 ttl 到期前占有某个 key。
// 调度器按天占用，多副本之间只发一封摘要。
type Deduper interface {
	Claim(ctx context.Context, key string, ttl time.Duration) (bool, error)
}

// MemoryDeduper 是单进程的 Deduper
type MemoryDeduper struct {
	mu   sync.Mutex
	keys map[string]time.Time
	now  func() time.Time
}

func NewMemoryDeduper() *MemoryDeduper {
	return &MemoryDeduper{keys: make(map[string]time.Time), now: time.Now}
}

func (d *MemoryDeduper) Claim(_ context.Context, key string, ttl time.Duration) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	now := d.now()
	if exp, ok := d.keys[key]; ok && now.Before(exp) {
		return false, nil
	}
	d.keys[key] = now.Add(ttl)
	return true, nil
}

// RedisDeduper 用 SETNX 占用 key
type RedisDeduper struct {
	Client *redis.Client
	Prefix string
}

func (d RedisDeduper) Claim(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	ok, err := d.Client.SetNX(ctx, d.Prefix+key, time.Now().Unix(), ttl).Result()
	if err != nil {
		return false, fmt.Errorf("redis setnx: %w", err)
	}
	return ok, nil
}

const claimTTL = 36 * time.Hour

// RunResult 描述一次摘要发送
type RunResult struct {
	Date      string    `json:"date"`
	Codes     []string  `json:"codes"`
	Method    string    `json:"method"`
	Sent      bool      `json:"sent"`
	Recipient string    `json:"recipient,omitempty"`
	Reason    string    `json:"reason,omitempty"`
	At        time.Time `json:"at"`
}

// Status 是 /api/scheduler 返回的内容
type Status struct {
	Running   bool       `json:"running"`
	Spec      string     `json:"spec"`
	Timezone  string     `json:"timezone"`
	Recipient string     `json:"recipient,omitempty"`
	NextRun   *time.Time `json:"nextRun,omitempty"`
	LastRun   *RunResult `json:"lastRun,omitempty"`
}

// Scheduler 按 cron 计划发送每日摘要
type Scheduler struct {
	planner *Planner
	mailer  Mailer
	dedupe  Deduper
	log     *zap.Logger
	sender  string
	now     func() time.Time

	// mu 保护以下字段，spec、loc、recipient 可在运行时被 Reconfigure 修改
	mu        sync.Mutex
	spec      string
	loc       *time.Location
	recipient string
	cron      *cron.Cron
	entry     cron.EntryID
	lastRun   *RunResult
}

func NewScheduler(p *Planner, m Mailer, d Deduper, cfg config.NotifyConfig, log *zap.Logger) (*Scheduler, error) {
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("notify timezone %q: %w", cfg.Timezone, err)
	}
	if _, err := cron.ParseStandard(cfg.Cron); err != nil {
		return nil, fmt.Errorf("notify cron %q: %w", cfg.Cron, err)
	}
	if d == nil {
		d = NewMemoryDeduper()
	}
	return &Scheduler{
		planner:   p,
		mailer:    m,
		dedupe:    d,
		log:       log,
		spec:      cfg.Cron,
		loc:       loc,
		recipient: cfg.Recipient,
		sender:    cfg.SenderName,
		now:       time.Now,
	}, nil
}

// Location 是计算“今天”所用的时区
func (s *Scheduler) Location() *time.Location {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loc
}

// Today 返回调度时区的当前时间
func (s *Scheduler) Today() time.Time { return s.now().In(s.Location()) }

// Recipient 是未指定地址时的收件人
func (s *Scheduler) Recipient() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.recipient
}

// Reconfigure 换用新的 cron、时区和收件人，运行中的调度按新时间重排
func (s *Scheduler) Reconfigure(spec, timezone, recipient string) error {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return fmt.Errorf("notify timezone %q: %w", timezone, err)
	}
	if _, err := cron.ParseStandard(spec); err != nil {
		return fmt.Errorf("notify cron %q: %w", spec, err)
	}

	s.mu.Lock()
	running := s.cron != nil
	if running {
		// 正在执行的任务自行结束，不在锁内等待
		s.cron.Stop()
		s.cron = nil
	}
	s.spec, s.loc, s.recipient = spec, loc, recipient
	s.mu.Unlock()

	s.log.Info("daily notification rescheduled",
		zap.String("spec", spec), zap.String("timezone", timezone), zap.Bool("running", running))
	if running {
		return s.Start()
	}
	return nil
}

// Start 安排每日任务，已在运行时不做任何事
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cron != nil {
		return nil
	}
	c := cron.New(cron.WithLocation(s.loc))
	id, err := c.AddFunc(s.spec, func() {
		if _, err := s.Run(context.Background(), false); err != nil {
			s.log.Error("daily notification failed", zap.Error(err))
		}
	})
	if err != nil {
		return fmt.Errorf("schedule daily notification: %w", err)
	}
	c.Start()
	s.cron, s.entry = c, id
	s.log.Info("daily notification scheduler started",
		zap.String("spec", s.spec), zap.String("timezone", s.loc.String()))
	return nil
}

// Stop 停止 cron，返回的 context 在正在执行的任务结束后完成
func (s *Scheduler) Stop() context.Context {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cron == nil {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		return ctx
	}
	ctx := s.cron.Stop()
	s.cron = nil
	return ctx
}

func (s *Scheduler) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := Status{
		Running:   s.cron != nil,
		Spec:      s.spec,
		Timezone:  s.loc.String(),
		Recipient: s.recipient,
		LastRun:   s.lastRun,
	}
	if s.cron != nil {
		if next := s.cron.Entry(s.entry).Next; !next.IsZero() {
			st.NextRun = &next
		} else if sched, err := cron.ParseStandard(s.spec); err == nil {
			n := sched.Next(s.now().In(s.loc))
			st.NextRun = &n
		}
	}
	return st
}

// Run 在有到期任务且当天尚未被占用时发送今天的摘要，
// force 跳过占用检查。
func (s *Scheduler) Run(ctx context.Context, force bool) (RunResult, error) {
	today := s.Today()
	day, err := s.planner.TasksForDate(ctx, today)
	if err != nil {
		return RunResult{}, err
	}
	res := RunResult{Date: day.Date, Codes: day.Codes, Method: day.Method, At: s.now()}
	defer s.remember(&res)

	if !day.HasTasks {
		res.Reason = "no tasks today"
		s.log.Info("no tasks today, digest skipped", zap.String("date", day.Date))
		return res, nil
	}
	if !force {
		claimed, err := s.dedupe.Claim(ctx, "notify:daily:"+day.Date, claimTTL)
		if err != nil {
			return res, err
		}
		if !claimed {
			res.Reason = "already sent"
			return res, nil
		}
	}

	if err := s.Send(ctx, day, ""); err != nil {
		res.Reason = err.Error()
		return res, err
	}
	res.Sent = true
	res.Recipient = s.Recipient()
	return res, nil
}

func (s *Scheduler) remember(res *RunResult) {
	s.mu.Lock()
	r := *res
	s.lastRun = &r
	s.mu.Unlock()
}

// Send 渲染 day 并发给 to，to 为空时发给配置的收件人
func (s *Scheduler) Send(ctx context.Context, day DayTasks, to string) error {
	if to == "" {
		to = s.Recipient()
	}
	if to == "" {
		return fmt.Errorf("notify: no recipient configured")
	}
	msg, err := s.Digest(day)
	if err != nil {
		return err
	}
	msg.To = to
	if err := s.mailer.Send(ctx, msg); err != nil {
		return fmt.Errorf("send digest: %w", err)
	}
	s.log.Info("daily digest sent",
		zap.String("date", day.Date), zap.Strings("codes", day.Codes), zap.String("to", to))
	return nil
}

// Digest 渲染 day 但不发送
func (s *Scheduler) Digest(day DayTasks) (Message, error) {
	return Render(day, s.sender, s.Today())
}

// Planner 返回调度器读取的 planner
func (s *Scheduler) Planner() *Planner { return s.planner }
