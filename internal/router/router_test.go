package router

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"berdoz-admin/internal/catalog"
	"berdoz-admin/internal/config"
	"berdoz-admin/internal/database"
	"berdoz-admin/internal/models"
	"berdoz-admin/internal/notify"
	"berdoz-admin/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const testPassword = "secret123"

type testServer struct {
	t      *testing.T
	engine *gin.Engine
	db     *gorm.DB
	stores *catalog.Stores
	cfg    *config.Config
}

func testConfig(t *testing.T) *config.Config {
	return &config.Config{
		Server:   config.ServerConfig{Mode: gin.TestMode},
		JWT:      config.JWTConfig{Secret: "test-secret", Issuer: "berdoz", ExpireHours: 1},
		Security: config.SecurityConfig{BcryptCost: 4, EncryptionKey: "test-key"},
		Mongo:    config.MongoConfig{ListLimit: 1000},
		Backup:   config.BackupConfig{Dir: t.TempDir()},
		Upload:   config.UploadConfig{Dir: t.TempDir(), MaxBytes: 1 << 20},
		Notify: config.NotifyConfig{
			Cron:       "0 6 * * *",
			Timezone:   "UTC",
			Recipient:  "office@example.com",
			SenderName: "Berdoz School",
		},
		Search: config.SearchConfig{Threshold: 0.3, MinMatchLen: 2},
		App:    config.AppSubConfig{PageSize: 20},
	}
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	cfg := testConfig(t)

	db, err := database.Init(config.DatabaseConfig{Path: filepath.Join(t.TempDir(), "router.db")})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	log := zap.NewNop()
	st := catalog.MemoryStores()
	planner := &notify.Planner{Tasks: st.EmailTasks, Calendar: st.Calendar, Legend: st.Legend, Log: log}
	sched, err := notify.NewScheduler(planner, notify.ConsoleMailer{Log: log}, nil, cfg.Notify, log)
	require.NoError(t, err)
	t.Cleanup(func() { <-sched.Stop().Done() })

	engine := SetupRouter(Deps{Config: cfg, DB: db, Stores: st, Scheduler: sched, Log: log})
	return &testServer{t: t, engine: engine, db: db, stores: st, cfg: cfg}
}

func (s *testServer) addUser(username, role string) models.User {
	s.t.Helper()
	hash, err := util.HashPassword(testPassword, 4)
	require.NoError(s.t, err)
	u := models.User{Username: username, DisplayName: username, Role: role, PasswordHash: hash}
	require.NoError(s.t, s.db.Create(&u).Error)
	return u
}

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (s *testServer) request(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	s.t.Helper()
	var rd io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(s.t, err)
		rd = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	return w
}

// call 断言返回 200，并把 data 解码到 out
func (s *testServer) call(method, path, token string, body, out interface{}) {
	s.t.Helper()
	w := s.request(method, path, token, body)
	require.Equal(s.t, http.StatusOK, w.Code, w.Body.String())
	var env envelope
	require.NoError(s.t, json.Unmarshal(w.Body.Bytes(), &env))
	require.Equal(s.t, 0, env.Code)
	if out != nil {
		require.NoError(s.t, json.Unmarshal(env.Data, out))
	}
}

func (s *testServer) login(username string) string {
	s.t.Helper()
	var data struct {
		Token string `json:"token"`
	}
	s.call(http.MethodPost, "/api/auth/login", "", gin.H{"username": username, "password": testPassword}, &data)
	require.NotEmpty(s.t, data.Token)
	return data.Token
}

func errCode(t *testing.T, w *httptest.ResponseRecorder) int {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env.Code
}

type busList struct {
	Items []models.Bus `json:"items"`
	Total int          `json:"total"`
}

func TestHealthAndMetrics(t *testing.T) {
	s := newTestServer(t)

	w := s.request(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = s.request(http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `berdoz_http_requests_total{method="GET",route="/health",status="200"} 1`)
}

func TestLoginLockout(t *testing.T) {
	s := newTestServer(t)
	s.addUser("office", models.RoleStaff)

	for i := 0; i < 5; i++ {
		w := s.request(http.MethodPost, "/api/auth/login", "", gin.H{"username": "office", "password": "wrong-pass1"})
		require.Equal(t, http.StatusUnauthorized, w.Code)
	}

	// 锁定期间正确的密码也会被拒绝
	w := s.request(http.MethodPost, "/api/auth/login", "", gin.H{"username": "OFFICE", "password": testPassword})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, util.CodeAuth, errCode(t, w))

	var u models.User
	require.NoError(t, s.db.Where("username = ?", "office").First(&u).Error)
	require.NotNil(t, u.LockedUntil)
	assert.True(t, u.LockedUntil.After(time.Now()))
	assert.Zero(t, u.FailedLoginAttempts)

	var failed int64
	s.db.Model(&models.SecurityLog{}).Where("event = ?", "login_failed").Count(&failed)
	assert.Equal(t, int64(6), failed)
}

func TestLogoutRevokesToken(t *testing.T) {
	s := newTestServer(t)
	s.addUser("office", models.RoleStaff)

	w := s.request(http.MethodGet, "/api/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, util.CodeAuth, errCode(t, w))

	token := s.login("office")
	var me struct {
		User struct {
			Username string `json:"username"`
			Role     string `json:"role"`
		} `json:"user"`
	}
	s.call(http.MethodGet, "/api/me", token, nil, &me)
	assert.Equal(t, "office", me.User.Username)

	s.call(http.MethodPost, "/api/auth/logout", token, nil, nil)
	w = s.request(http.MethodGet, "/api/me", token, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestFinancialModulesAreAdminOnly(t *testing.T) {
	s := newTestServer(t)
	s.addUser("office", models.RoleStaff)
	s.addUser("principal", models.RoleAdmin)
	staff := s.login("office")
	admin := s.login("principal")

	for _, path := range []string{"/api/payroll", "/api/monthly-expenses", "/api/daily-accounts", "/api/logs", "/api/backups"} {
		w := s.request(http.MethodGet, path, staff, nil)
		assert.Equal(t, http.StatusForbidden, w.Code, path)
		assert.Equal(t, util.CodeForbidden, errCode(t, w), path)
	}
	s.call(http.MethodGet, "/api/payroll", admin, nil, nil)
	s.call(http.MethodGet, "/api/bus", staff, nil, nil)
	s.call(http.MethodGet, "/api/officer-leaves", staff, nil, nil)

	w := s.request(http.MethodPost, "/api/users", staff, gin.H{"username": "intruder", "password": "password99"})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestResourceCRUDWithVersionConflict(t *testing.T) {
	s := newTestServer(t)
	s.addUser("office", models.RoleStaff)
	token := s.login("office")

	var created struct {
		Item models.Bus `json:"item"`
	}
	s.call(http.MethodPost, "/api/bus", token, gin.H{"busNumber": "B-12", "route": "Ankawa", "driverName": "Karwan"}, &created)
	bus := created.Item
	require.NotEmpty(t, bus.ID)
	assert.Equal(t, int64(1), bus.Version)

	var list busList
	s.call(http.MethodGet, "/api/bus?q=ankawa", token, nil, &list)
	require.Equal(t, 1, list.Total)
	assert.Equal(t, bus.ID, list.Items[0].ID)

	stale := bus
	bus.Route = "Bakhtiari"
	var updated struct {
		Item models.Bus `json:"item"`
	}
	s.call(http.MethodPut, "/api/bus/"+bus.ID, token, bus, &updated)
	assert.Equal(t, int64(2), updated.Item.Version)

	stale.Route = "Dream City"
	w := s.request(http.MethodPut, "/api/bus/"+bus.ID, token, stale)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, util.CodeConflict, errCode(t, w))

	s.call(http.MethodDelete, "/api/bus/"+bus.ID, token, nil, nil)
	w = s.request(http.MethodGet, "/api/bus/"+bus.ID, token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSchoolRecordModules(t *testing.T) {
	s := newTestServer(t)
	s.addUser("office", models.RoleStaff)
	token := s.login("office")

	var perm struct {
		Item models.StudentPermission `json:"item"`
	}
	s.call(http.MethodPost, "/api/student-permissions", token, gin.H{"studentName": " Rozh ", "reason": "doctor", "startDate": "2025-04-02"}, &perm)
	assert.Equal(t, "Rozh", perm.Item.StudentName)
	assert.Equal(t, models.PermissionPending, perm.Item.Status)

	w := s.request(http.MethodPost, "/api/student-permissions", token, gin.H{"studentName": "Rozh", "startDate": "02/04/2025"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	for _, name := range []string{"Karwan Ali", "Shilan Omer"} {
		s.call(http.MethodPost, "/api/officer-leaves", token, gin.H{"teacherName": name, "leaveType": "sick", "leaveDate": "2025-03-01"}, nil)
	}
	var leaves struct {
		Items []models.OfficerLeave `json:"items"`
		Total int                   `json:"total"`
	}
	s.call(http.MethodGet, "/api/officer-leaves?q=shilan", token, nil, &leaves)
	require.Equal(t, 1, leaves.Total)
	assert.Equal(t, "Shilan Omer", leaves.Items[0].TeacherName)
	assert.Equal(t, "sick", leaves.Items[0].LeaveType)

	var info struct {
		Item models.TeacherInfo `json:"item"`
	}
	s.call(http.MethodPost, "/api/teacher-info", token, gin.H{"politicalName": "Hana", "grade1": "2", "grade9": 1, "totalHours": 18}, &info)
	assert.Equal(t, models.Number(2), info.Item.Grade1)
	assert.Equal(t, models.Text("18"), info.Item.TotalHours)

	var hits struct {
		Results map[string][]json.RawMessage `json:"results"`
	}
	s.call(http.MethodGet, "/api/search?q=rozh", token, nil, &hits)
	assert.Len(t, hits.Results["student_permissions"], 1)
}

func TestEmailSettings(t *testing.T) {
	s := newTestServer(t)
	s.addUser("office", models.RoleStaff)
	s.addUser("principal", models.RoleAdmin)
	staff := s.login("office")
	admin := s.login("principal")

	var got struct {
		Settings models.EmailSettings `json:"settings"`
		Stored   bool                 `json:"stored"`
	}
	s.call(http.MethodGet, "/api/email-settings", staff, nil, &got)
	assert.False(t, got.Stored)
	assert.Equal(t, "office@example.com", got.Settings.TargetEmail)
	assert.Equal(t, "06:00", got.Settings.NotificationTime)
	assert.Equal(t, "UTC", got.Settings.Timezone)

	body := gin.H{"targetEmail": "principal@example.com", "notificationTime": "07:30", "timezone": "Asia/Baghdad", "enabled": false}
	w := s.request(http.MethodPost, "/api/email-settings", staff, body)
	assert.Equal(t, http.StatusForbidden, w.Code)

	for _, bad := range []gin.H{
		{"targetEmail": "not-an-address"},
		{"notificationTime": "25:00"},
		{"timezone": "Mars/Olympus"},
	} {
		w = s.request(http.MethodPost, "/api/email-settings", admin, bad)
		assert.Equal(t, http.StatusBadRequest, w.Code, bad)
	}

	s.call(http.MethodPost, "/api/email-settings", admin, body, nil)
	s.call(http.MethodPut, "/api/email-settings", admin, body, nil)

	s.call(http.MethodGet, "/api/email-settings", staff, nil, &got)
	assert.True(t, got.Stored)
	assert.Equal(t, "principal@example.com", got.Settings.TargetEmail)
	assert.False(t, got.Settings.Enabled)
	assert.Equal(t, int64(2), got.Settings.Version)

	var status struct {
		Scheduler notify.Status `json:"scheduler"`
	}
	s.call(http.MethodGet, "/api/scheduler", staff, nil, &status)
	assert.False(t, status.Scheduler.Running)
	assert.Equal(t, "30 7 * * *", status.Scheduler.Spec)
	assert.Equal(t, "Asia/Baghdad", status.Scheduler.Timezone)
	assert.Equal(t, "principal@example.com", status.Scheduler.Recipient)

	// enabled 省略时视为开启
	s.call(http.MethodPost, "/api/email-settings", admin, gin.H{"notificationTime": "05:15"}, &status)
	assert.True(t, status.Scheduler.Running)
	assert.Equal(t, "15 5 * * *", status.Scheduler.Spec)
}

func TestMonthlyExpenseSummaryIgnoresSearch(t *testing.T) {
	s := newTestServer(t)
	s.addUser("principal", models.RoleAdmin)
	token := s.login("principal")

	for _, row := range []gin.H{
		{"year": "2024", "month": "October", "staffSalary": "1,000", "electricity": 250, "requirement": "generator fuel"},
		{"year": "2024", "month": "November", "staffSalary": 1000, "books": 500},
		{"year": "2023", "month": "October", "travel": 75},
	} {
		s.call(http.MethodPost, "/api/monthly-expenses", token, row, nil)
	}

	var list struct {
		Items   []models.MonthlyExpense `json:"items"`
		Summary struct {
			DisplayedTotal string `json:"displayed_total"`
			PinnedTotal    string `json:"pinned_total"`
			PinnedCount    int    `json:"pinned_count"`
		} `json:"summary"`
	}
	s.call(http.MethodGet, "/api/monthly-expenses?q=generator&summary_year=2024", token, nil, &list)
	require.Len(t, list.Items, 1)
	assert.Equal(t, models.Number(1250), list.Items[0].Total)
	assert.Equal(t, "1250", list.Summary.DisplayedTotal)
	assert.Equal(t, "2750", list.Summary.PinnedTotal)
	assert.Equal(t, 2, list.Summary.PinnedCount)
}

func TestExport(t *testing.T) {
	s := newTestServer(t)
	s.addUser("office", models.RoleStaff)
	token := s.login("office")
	s.call(http.MethodPost, "/api/bus", token, gin.H{"busNumber": "B-3", "route": "Shaqlawa"}, nil)

	w := s.request(http.MethodGet, "/api/bus/export?format=csv", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "bus-records_")
	body := w.Body.Bytes()
	require.True(t, bytes.HasPrefix(body, []byte{0xEF, 0xBB, 0xBF}))
	assert.Contains(t, string(body), "B-3")

	w = s.request(http.MethodGet, "/api/bus/export?format=xlsx&token="+token, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", w.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("PK")))

	w = s.request(http.MethodGet, "/api/bus/export?format=pdf", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSearchSkipsEmptyAndFinancialForStaff(t *testing.T) {
	s := newTestServer(t)
	s.addUser("office", models.RoleStaff)
	s.addUser("principal", models.RoleAdmin)
	staff := s.login("office")
	admin := s.login("principal")

	s.call(http.MethodPost, "/api/bus", staff, gin.H{"busNumber": "B-9", "driverName": "Rebwar"}, nil)
	s.call(http.MethodPost, "/api/payroll", admin, gin.H{"employeeName": "Rebwar Aziz", "salary": 900}, nil)

	type searchResp struct {
		Results map[string][]json.RawMessage `json:"results"`
		Total   int                          `json:"total"`
	}
	var got searchResp
	s.call(http.MethodGet, "/api/search?q=rebwar", admin, nil, &got)
	assert.Len(t, got.Results["bus_records"], 1)
	assert.Len(t, got.Results["payroll"], 1)
	assert.NotContains(t, got.Results, "teachers")
	assert.Equal(t, 2, got.Total)

	got = searchResp{}
	s.call(http.MethodGet, "/api/search?q=rebwar", staff, nil, &got)
	assert.Len(t, got.Results["bus_records"], 1)
	assert.NotContains(t, got.Results, "payroll")

	w := s.request(http.MethodGet, "/api/search?q=", staff, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCalendarSaveTouchesLegend(t *testing.T) {
	s := newTestServer(t)
	s.addUser("office", models.RoleStaff)
	token := s.login("office")

	var created struct {
		Item models.CalendarEntry `json:"item"`
	}
	s.call(http.MethodPost, "/api/calendar", token, gin.H{
		"month": "Nisan-April", "year": 2025,
		"week1": []string{"", "", "A, ZQ", ""},
	}, &created)
	s.call(http.MethodPost, "/api/calendar", token, gin.H{
		"month": "Gulan-May", "year": 2025,
		"week2": []string{"A"},
	}, nil)

	var legend struct {
		Items []models.LegendEntry `json:"items"`
	}
	s.call(http.MethodGet, "/api/legend", token, nil, &legend)
	require.Len(t, legend.Items, 2)
	assert.Equal(t, "A", legend.Items[0].Abbreviation)
	assert.Equal(t, 2, legend.Items[0].UsageCount)
	assert.Equal(t, "ZQ", legend.Items[1].Abbreviation)
	assert.Equal(t, "ZQ - Please update description", legend.Items[1].FullDescription)

	var grid struct {
		ID          string `json:"id"`
		Target      string `json:"target"`
		FirstSunday string `json:"first_sunday"`
		Cells       []struct {
			WeekKey string `json:"weekKey"`
			DayName string `json:"dayName"`
			Date    string `json:"date"`
			Text    string `json:"text"`
			Codes   []struct {
				Code        string `json:"code"`
				Description string `json:"description"`
			} `json:"codes"`
		} `json:"cells"`
		Warnings []string `json:"warnings"`
	}
	s.call(http.MethodGet, "/api/calendar/"+created.Item.ID+"/grid", token, nil, &grid)
	assert.Equal(t, created.Item.ID, grid.ID)
	assert.Equal(t, "2025-04-01", grid.Target)
	assert.Equal(t, "2025-03-30", grid.FirstSunday)
	assert.Empty(t, grid.Warnings)
	require.Len(t, grid.Cells, 16)
	cell := grid.Cells[2]
	assert.Equal(t, "2025-04-01", cell.Date)
	assert.Equal(t, "A, ZQ", cell.Text)
	require.Len(t, cell.Codes, 2)
	assert.Equal(t, "ZQ - Please update description", cell.Codes[1].Description)

	w := s.request(http.MethodGet, "/api/calendar/grid?month=zzz&year=2025", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "no month found")

	w = s.request(http.MethodGet, "/api/calendar/grid", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestEmailPreviewAndSchedulerAccess(t *testing.T) {
	s := newTestServer(t)
	s.addUser("office", models.RoleStaff)
	s.addUser("principal", models.RoleAdmin)
	staff := s.login("office")

	s.call(http.MethodPost, "/api/email-tasks", staff, gin.H{
		"date": "2025-04-02", "codes": []string{"E"}, "description": "bus check",
	}, nil)

	var preview struct {
		TasksData struct {
			HasTasks bool     `json:"hasTasksToday"`
			Codes    []string `json:"codes"`
			Method   string   `json:"method"`
		} `json:"tasksData"`
		Subject string `json:"subject"`
		HTML    string `json:"html"`
	}
	s.call(http.MethodGet, "/api/calendar/email-preview?date=2025-04-02", staff, nil, &preview)
	assert.True(t, preview.TasksData.HasTasks)
	assert.Equal(t, []string{"E"}, preview.TasksData.Codes)
	assert.Equal(t, notify.MethodEnhanced, preview.TasksData.Method)
	assert.Contains(t, preview.HTML, "bus check")

	w := s.request(http.MethodGet, "/api/calendar/email-preview?date=02/04/2025", staff, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.request(http.MethodPost, "/api/scheduler", staff, gin.H{"action": "stop"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	var status struct {
		Scheduler notify.Status `json:"scheduler"`
	}
	s.call(http.MethodGet, "/api/scheduler", staff, nil, &status)
	assert.False(t, status.Scheduler.Running)
	assert.Equal(t, "0 6 * * *", status.Scheduler.Spec)
	assert.Equal(t, "UTC", status.Scheduler.Timezone)
}

func TestMutationsAreAudited(t *testing.T) {
	s := newTestServer(t)
	s.addUser("principal", models.RoleAdmin)
	token := s.login("principal")

	s.call(http.MethodPost, "/api/payroll", token, gin.H{"employeeName": "Shilan", "salary": 850000}, nil)

	var raw models.SecurityLog
	require.NoError(t, s.db.Where("event = ?", "mutation").First(&raw).Error)
	assert.NotContains(t, raw.ActionEnc, "Shilan")

	var logs struct {
		Items []struct {
			Event  string `json:"event"`
			Path   string `json:"path"`
			Action string `json:"action"`
			Status int    `json:"status"`
		} `json:"items"`
		Total int `json:"total"`
	}
	s.call(http.MethodGet, "/api/logs?event=mutation&q=shilan", token, nil, &logs)
	require.Equal(t, 1, logs.Total)
	assert.Equal(t, "/api/payroll", logs.Items[0].Path)
	assert.Contains(t, logs.Items[0].Action, "Shilan")
	assert.Equal(t, http.StatusOK, logs.Items[0].Status)
}

func TestBackupRestore(t *testing.T) {
	s := newTestServer(t)
	s.addUser("principal", models.RoleAdmin)
	token := s.login("principal")

	var created struct {
		Item models.Bus `json:"item"`
	}
	s.call(http.MethodPost, "/api/bus", token, gin.H{"busNumber": "B-1"}, &created)

	var backup struct {
		Backup struct {
			ID        uint `json:"id"`
			Documents int  `json:"documents"`
		} `json:"backup"`
	}
	s.call(http.MethodPost, "/api/backups", token, nil, &backup)
	assert.Equal(t, 1, backup.Backup.Documents)

	s.call(http.MethodDelete, "/api/bus/"+created.Item.ID, token, nil, nil)
	s.call(http.MethodPost, "/api/bus", token, gin.H{"busNumber": "B-2"}, nil)

	s.call(http.MethodPost, fmt.Sprintf("/api/backups/%d/restore", backup.Backup.ID), token, nil, nil)

	var list busList
	s.call(http.MethodGet, "/api/bus", token, nil, &list)
	require.Equal(t, 1, list.Total)
	assert.Equal(t, "B-1", list.Items[0].BusNumber)
	assert.Equal(t, created.Item.ID, list.Items[0].ID)

	w := s.request(http.MethodGet, fmt.Sprintf("/api/backups/%d/download", backup.Backup.ID), token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "B-1")
}

func multipartFile(t *testing.T, name string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	buf := &bytes.Buffer{}
	mw := multipart.NewWriter(buf)
	fw, err := mw.CreateFormFile("file", name)
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return buf, mw.FormDataContentType()
}

func TestUploadAcceptsOnlyMedia(t *testing.T) {
	s := newTestServer(t)
	s.addUser("office", models.RoleStaff)
	token := s.login("office")

	upload := func(name string, content []byte) *httptest.ResponseRecorder {
		body, ct := multipartFile(t, name, content)
		req := httptest.NewRequest(http.MethodPost, "/api/upload", body)
		req.Header.Set("Content-Type", ct)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		s.engine.ServeHTTP(w, req)
		return w
	}

	png := append([]byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"), make([]byte, 32)...)
	w := upload("receipt.png", png)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	var data struct {
		URL  string `json:"url"`
		Mime string `json:"mime"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Equal(t, "image/png", data.Mime)
	require.True(t, strings.HasPrefix(data.URL, "/api/files/upload/"))

	// 不需要令牌即可访问
	w = s.request(http.MethodGet, data.URL, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))

	// 改名为 .png 的脚本仍被拒绝
	w = upload("evil.png", []byte("#!/bin/sh\necho hi\n"))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.request(http.MethodGet, "/api/files/backups/x.bin", "", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}
