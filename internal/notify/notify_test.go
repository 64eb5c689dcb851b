package notify

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"berdoz-admin/internal/config"
	"berdoz-admin/internal/models"
	"berdoz-admin/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newPlanner(t *testing.T) *Planner {
	t.Helper()
	return &Planner{
		Tasks:    store.NewMemory[*models.EmailTask]("email_tasks"),
		Calendar: store.NewMemory[*models.CalendarEntry]("calendar_entries"),
		Legend:   store.NewMemory[*models.LegendEntry]("legend_entries"),
		Log:      zap.NewNop(),
	}
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 6, 0, 0, 0, time.UTC)
}

func TestTasksForDateLegacyGrid(t *testing.T) {
	ctx := context.Background()
	p := newPlanner(t)

	// 2025 年 4 月的网格从 3 月 30 日周日开始，4 月 1 日周二是 week1[2]
	entry := &models.CalendarEntry{
		Month: "1-Apr",
		Year:  2025,
		Week1: []string{"A", "", "E, J zz", ""},
	}
	entry.Normalize()
	require.NoError(t, p.Calendar.Insert(ctx, entry))

	got, err := p.TasksForDate(ctx, day(2025, time.April, 1))
	require.NoError(t, err)
	assert.Equal(t, MethodLegacy, got.Method)
	assert.True(t, got.HasTasks)
	assert.Equal(t, []string{"E", "J"}, got.Codes)
	assert.Equal(t, "Bus Records", got.Tasks[0].Description)
	require.Len(t, got.Matches, 1)
	assert.Equal(t, "week1", got.Matches[0].WeekKey)
	assert.Equal(t, "Tuesday", got.Matches[0].DayName)
	assert.Equal(t, "Tuesday, April 1, 2025", got.Display)

	// 其他年份忽略
	got, err = p.TasksForDate(ctx, day(2026, time.March, 31))
	require.NoError(t, err)
	assert.False(t, got.HasTasks)
}

func TestTasksForDatePrefersEmailTasks(t *testing.T) {
	ctx := context.Background()
	p := newPlanner(t)

	entry := &models.CalendarEntry{Month: "April", Year: 2025, Week1: []string{"", "", "E", ""}}
	entry.Normalize()
	require.NoError(t, p.Calendar.Insert(ctx, entry))
	require.NoError(t, p.Tasks.Insert(ctx, &models.EmailTask{Date: "2025-04-01", Codes: []string{"Z", "B"}, Description: "timetable"}))
	require.NoError(t, p.Legend.Insert(ctx, &models.LegendEntry{Abbreviation: "Z", FullDescription: "Weekly timetable"}))

	got, err := p.TasksForDate(ctx, day(2025, time.April, 1))
	require.NoError(t, err)
	assert.Equal(t, MethodEnhanced, got.Method)
	assert.Equal(t, []string{"B", "Z"}, got.Codes)
	assert.Equal(t, "Weekly timetable", got.Tasks[1].Description, "legend wins over the default dictionary")
	assert.Len(t, got.EmailTasks, 1)
}

func TestTasksForDateWarnsOnUnknownMonth(t *testing.T) {
	ctx := context.Background()
	p := newPlanner(t)
	entry := &models.CalendarEntry{Month: "Someday", Year: 2025, Week1: []string{"A", "", "", ""}}
	entry.Normalize()
	require.NoError(t, p.Calendar.Insert(ctx, entry))

	// 退回的网格从 2025 年 1 月 1 日之前的周日（12 月 29 日）开始
	got, err := p.TasksForDate(ctx, day(2024, time.December, 29))
	require.NoError(t, err)
	assert.False(t, got.HasTasks, "entry is filed under 2025")

	got, err = p.TasksForDate(ctx, day(2025, time.January, 5))
	require.NoError(t, err)
	assert.NotEmpty(t, got.Warnings)
}

func TestPreview(t *testing.T) {
	p := newPlanner(t)
	today := day(2025, time.April, 10)

	got, err := p.Preview(context.Background(), today, 5, 2)
	require.NoError(t, err)
	require.Len(t, got, 5)
	assert.Equal(t, "2025-04-08", got[0].Date)
	assert.True(t, got[0].IsHistorical)
	assert.True(t, got[1].IsYesterday)
	assert.True(t, got[2].IsToday)
	assert.True(t, got[3].IsTomorrow)
	assert.Equal(t, 2, got[4].DaysFromToday)
}

func TestRender(t *testing.T) {
	d := DayTasks{
		Display:  "Tuesday, April 1, 2025",
		HasTasks: true,
		Codes:    []string{"E"},
		Tasks:    []Task{{Code: "E", Description: "Bus <Records>"}},
		EmailTasks: []*models.EmailTask{
			{Description: "check buses", Codes: []string{"E"}},
		},
	}
	msg, err := Render(d, "", time.Date(2025, 4, 1, 6, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, "Daily Task Notification - Tuesday, April 1, 2025", msg.Subject)
	assert.Contains(t, msg.HTML, "Bus &lt;Records&gt;")
	assert.Contains(t, msg.HTML, "check buses")
	assert.Contains(t, msg.Text, "E  Bus <Records>")
}

type recordingMailer struct {
	mu   sync.Mutex
	sent []Message
}

func (m *recordingMailer) Send(_ context.Context, msg Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, msg)
	return nil
}

func newScheduler(t *testing.T, p *Planner, m Mailer, now time.Time) *Scheduler {
	t.Helper()
	s, err := NewScheduler(p, m, nil, config.NotifyConfig{
		Cron:      "0 6 * * *",
		Timezone:  "UTC",
		Recipient: "office@example.com",
	}, zap.NewNop())
	require.NoError(t, err)
	s.now = func() time.Time { return now }
	return s
}

func TestSchedulerSendsOncePerDay(t *testing.T) {
	ctx := context.Background()
	p := newPlanner(t)
	require.NoError(t, p.Tasks.Insert(ctx, &models.EmailTask{Date: "2025-04-01", Codes: []string{"A"}}))
	mailer := &recordingMailer{}
	s := newScheduler(t, p, mailer, day(2025, time.April, 1))

	res, err := s.Run(ctx, false)
	require.NoError(t, err)
	assert.True(t, res.Sent)

	res, err = s.Run(ctx, false)
	require.NoError(t, err)
	assert.False(t, res.Sent)
	assert.Equal(t, "already sent", res.Reason)

	_, err = s.Run(ctx, true)
	require.NoError(t, err)

	require.Len(t, mailer.sent, 2)
	assert.Equal(t, "office@example.com", mailer.sent[0].To)
	assert.True(t, s.Status().LastRun.Sent)
}

func TestSchedulerSkipsEmptyDays(t *testing.T) {
	mailer := &recordingMailer{}
	s := newScheduler(t, newPlanner(t), mailer, day(2025, time.April, 1))
	res, err := s.Run(context.Background(), false)
	require.NoError(t, err)
	assert.False(t, res.Sent)
	assert.Empty(t, mailer.sent)
}

func TestSchedulerStartStop(t *testing.T) {
	s := newScheduler(t, newPlanner(t), &recordingMailer{}, time.Now())
	assert.False(t, s.Status().Running)

	require.NoError(t, s.Start())
	require.NoError(t, s.Start())
	st := s.Status()
	assert.True(t, st.Running)
	require.NotNil(t, st.NextRun)
	assert.Equal(t, 6, st.NextRun.Hour())

	<-s.Stop().Done()
	assert.False(t, s.Status().Running)
}

func TestSchedulerReconfigureReschedules(t *testing.T) {
	s := newScheduler(t, newPlanner(t), &recordingMailer{}, time.Now())
	require.NoError(t, s.Start())
	t.Cleanup(func() { <-s.Stop().Done() })

	require.NoError(t, s.Reconfigure("45 7 * * *", "Asia/Baghdad", "head@example.com"))
	st := s.Status()
	assert.True(t, st.Running)
	assert.Equal(t, "45 7 * * *", st.Spec)
	assert.Equal(t, "Asia/Baghdad", st.Timezone)
	assert.Equal(t, "head@example.com", s.Recipient())
	require.NotNil(t, st.NextRun)
	next := st.NextRun.In(s.Location())
	assert.Equal(t, 7, next.Hour())
	assert.Equal(t, 45, next.Minute())

	assert.Error(t, s.Reconfigure("nope", "UTC", ""))
	assert.Error(t, s.Reconfigure("0 6 * * *", "Mars/Olympus", ""))
	assert.Equal(t, "45 7 * * *", s.Status().Spec, "a rejected change keeps the old schedule")
}

func TestSchedulerApplySettings(t *testing.T) {
	ctx := context.Background()
	p := newPlanner(t)
	require.NoError(t, p.Tasks.Insert(ctx, &models.EmailTask{Date: "2025-04-01", Codes: []string{"A"}}))
	mailer := &recordingMailer{}
	s := newScheduler(t, p, mailer, day(2025, time.April, 1))

	set := &models.EmailSettings{TargetEmail: "head@example.com", NotificationTime: "06:30", Enabled: false}
	set.Normalize()
	require.NoError(t, s.Apply(set))
	assert.False(t, s.Status().Running)
	assert.Equal(t, "30 6 * * *", s.Status().Spec)

	_, err := s.Run(ctx, true)
	require.NoError(t, err)
	require.Len(t, mailer.sent, 1)
	assert.Equal(t, "head@example.com", mailer.sent[0].To)

	set.Enabled = true
	require.NoError(t, s.Apply(set))
	assert.True(t, s.Status().Running)
	<-s.Stop().Done()

	set.NotificationTime = "6pm"
	assert.Error(t, s.Apply(set))
}

func TestLoadSettingsFallsBackToConfig(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory[*models.EmailSettings]("email_settings")
	cfg := config.NotifyConfig{Cron: "15 5 * * *", Timezone: "UTC", Recipient: "office@example.com", Enabled: true}

	set, stored, err := LoadSettings(ctx, st, cfg)
	require.NoError(t, err)
	assert.False(t, stored)
	assert.Equal(t, "05:15", set.NotificationTime)
	assert.Equal(t, "office@example.com", set.TargetEmail)
	assert.True(t, set.Enabled)

	// 非每日格式的 cron 用默认时间
	set, _, err = LoadSettings(ctx, st, config.NotifyConfig{Cron: "*/5 * * * *"})
	require.NoError(t, err)
	assert.Equal(t, "06:00", set.NotificationTime)
	assert.Equal(t, "Asia/Baghdad", set.Timezone)

	saved := &models.EmailSettings{TargetEmail: "head@example.com", NotificationTime: "08:00"}
	saved.Normalize()
	require.NoError(t, st.Insert(ctx, saved))
	set, stored, err = LoadSettings(ctx, st, cfg)
	require.NoError(t, err)
	assert.True(t, stored)
	assert.Equal(t, "head@example.com", set.TargetEmail)
	assert.Equal(t, models.EmailSettingsID, set.ID)
}

func TestNewSchedulerRejectsBadConfig(t *testing.T) {
	_, err := NewScheduler(newPlanner(t), &recordingMailer{}, nil, config.NotifyConfig{Cron: "nope", Timezone: "UTC"}, zap.NewNop())
	assert.Error(t, err)
	_, err = NewScheduler(newPlanner(t), &recordingMailer{}, nil, config.NotifyConfig{Cron: "0 6 * * *", Timezone: "Mars/Olympus"}, zap.NewNop())
	assert.Error(t, err)
}

func TestMemoryDeduper(t *testing.T) {
	d := NewMemoryDeduper()
	now := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)
	d.now = func() time.Time { return now }

	ok, _ := d.Claim(context.Background(), "k", time.Hour)
	assert.True(t, ok)
	ok, _ = d.Claim(context.Background(), "k", time.Hour)
	assert.False(t, ok)

	now = now.Add(2 * time.Hour)
	ok, _ = d.Claim(context.Background(), "k", time.Hour)
	assert.True(t, ok)
}

func TestSendgridMailer(t *testing.T) {
	var got struct {
		auth string
		path string
		body map[string]interface{}
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got.auth = r.Header.Get("Authorization")
		got.path = r.URL.Path
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &got.body)
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	m := NewSendgridMailer("SG.key", "Berdoz School", "noreply@example.com")
	m.Host = srv.URL
	err := m.Send(context.Background(), Message{To: "office@example.com", Subject: "hi", HTML: "<p>x</p>", Text: "x"})
	require.NoError(t, err)
	assert.Equal(t, "Bearer SG.key", got.auth)
	assert.Equal(t, "/v3/mail/send", got.path)
	from, _ := got.body["from"].(map[string]interface{})
	assert.Equal(t, "noreply@example.com", from["email"])

	assert.Error(t, m.Send(context.Background(), Message{Subject: "no recipient"}))
}

func TestSendgridMailerReportsAPIErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"errors":[{"message":"bad key"}]}`))
	}))
	defer srv.Close()

	m := NewSendgridMailer("bad", "Berdoz", "noreply@example.com")
	m.Host = srv.URL
	err := m.Send(context.Background(), Message{To: "a@example.com"})
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "401"))
}
