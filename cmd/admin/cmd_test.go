package main

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"berdoz-admin/internal/catalog"
	"berdoz-admin/internal/config"
	"berdoz-admin/internal/database"
	"berdoz-admin/internal/handler"
	"berdoz-admin/internal/models"
	"berdoz-admin/internal/store"
	"berdoz-admin/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setup(t *testing.T) (*commandLine, *gorm.DB, *bytes.Buffer) {
	t.Helper()
	db, err := database.Init(config.DatabaseConfig{Path: filepath.Join(t.TempDir(), "admin.db")})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	out := &bytes.Buffer{}
	cli := &commandLine{
		openDB:     func() (*gorm.DB, error) { return db, nil },
		bcryptCost: 4,
		out:        out,
	}
	return cli, db, out
}

func mockPassword(t *testing.T, pwd string) {
	t.Helper()
	orig := readPasswordFunc
	readPasswordFunc = func(int) ([]byte, error) { return []byte(pwd), nil }
	t.Cleanup(func() { readPasswordFunc = orig })
}

type cliTest struct {
	name       string
	args       []string // 不含程序名
	wantErr    error
	wantErrStr string
}

func runTests(t *testing.T, cli *commandLine, tests []cliTest) {
	t.Helper()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := cli.run(append([]string{"admin"}, tt.args...))
			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
			case tt.wantErrStr != "":
				assert.EqualError(t, err, tt.wantErrStr)
			default:
				assert.NoError(t, err)
			}
		})
	}
}

func Test_commandLine_usage(t *testing.T) {
	cli, _, _ := setup(t)
	runTests(t, cli, []cliTest{
		{name: "no command", args: nil, wantErr: errHelp},
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp},
		{name: "adduser without username", args: []string{"adduser"}, wantErr: errHelp},
		{name: "resetpassword without username", args: []string{"resetpassword"}, wantErr: errHelp},
		{name: "grid without month", args: []string{"grid"}, wantErr: errHelp},
		{name: "import without file", args: []string{"import", "-user", "a", "-resource", "bus"}, wantErr: errHelp},
	})
}

func Test_commandLine_adduser(t *testing.T) {
	cli, db, _ := setup(t)
	mockPassword(t, "secret123")

	runTests(t, cli, []cliTest{
		{name: "bad username", args: []string{"adduser", "-username", "a!"}, wantErrStr: "username must be 3-32 characters"},
		{name: "admin", args: []string{"adduser", "-username", "principal", "-admin", "-name", "Principal"}},
		{name: "duplicate ignores case", args: []string{"adduser", "-username", "PRINCIPAL"}, wantErrStr: `user "PRINCIPAL" already exists`},
		{name: "staff", args: []string{"adduser", "-username", "clerk"}},
	})

	var u models.User
	require.NoError(t, db.Where("username = ?", "principal").First(&u).Error)
	assert.Equal(t, models.RoleAdmin, u.Role)
	assert.Equal(t, "Principal", u.DisplayName)
	assert.True(t, util.CheckPassword("secret123", u.PasswordHash))

	var clerk models.User
	require.NoError(t, db.Where("username = ?", "clerk").First(&clerk).Error)
	assert.Equal(t, models.RoleStaff, clerk.Role)
}

func Test_commandLine_adduser_emptyPassword(t *testing.T) {
	cli, _, _ := setup(t)
	mockPassword(t, "")
	err := cli.run([]string{"admin", "adduser", "-username", "clerk"})
	assert.ErrorIs(t, err, errHelp)
}

func Test_commandLine_resetpassword(t *testing.T) {
	cli, db, _ := setup(t)
	hash, err := util.HashPassword("oldpass123", 4)
	require.NoError(t, err)
	locked := time.Now().Add(time.Hour)
	user := models.User{Username: "clerk", PasswordHash: hash, FailedLoginAttempts: 3, LockedUntil: &locked}
	require.NoError(t, db.Create(&user).Error)
	require.NoError(t, db.Create(&models.Session{ID: "s1", UserID: user.ID, ExpiresAt: time.Now().Add(time.Hour)}).Error)

	mockPassword(t, "newpass456")
	runTests(t, cli, []cliTest{
		{name: "unknown user", args: []string{"resetpassword", "-username", "ghost"}, wantErrStr: `user "ghost" not found`},
		{name: "ok", args: []string{"resetpassword", "-username", "Clerk"}},
	})

	var got models.User
	require.NoError(t, db.First(&got, user.ID).Error)
	assert.True(t, util.CheckPassword("newpass456", got.PasswordHash))
	assert.Nil(t, got.LockedUntil)
	assert.Zero(t, got.FailedLoginAttempts)

	var s models.Session
	require.NoError(t, db.First(&s, "id = ?", "s1").Error)
	assert.True(t, s.Revoked)
}

func Test_commandLine_grid(t *testing.T) {
	cli, _, out := setup(t)

	require.NoError(t, cli.run([]string{"admin", "grid", "-month", "April", "-year", "2025"}))
	assert.Contains(t, out.String(), "April -> 2025-04-01 (first Sunday 2025-03-30)")
	assert.Contains(t, out.String(), "week4")
	assert.NotContains(t, out.String(), "warning")

	out.Reset()
	require.NoError(t, cli.run([]string{"admin", "grid", "-month", "zzz", "-year", "2025"}))
	assert.Contains(t, out.String(), "warning:")
	assert.Contains(t, out.String(), "2025-01-01")
}

func Test_commandLine_import(t *testing.T) {
	cli, _, out := setup(t)
	gin.SetMode(gin.TestMode)

	buses := store.NewMemory[*models.Bus]("bus_records")
	existing := &models.Bus{BusNumber: "B-1"}
	require.NoError(t, buses.Insert(context.Background(), existing))

	r := gin.New()
	r.POST("/api/auth/login", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"code": 0, "data": gin.H{"token": "t"}})
	})
	handler.NewResource(catalog.Buses(), buses, 1000, 20, zap.NewNop()).Register(r.Group("/api"))
	srv := httptest.NewServer(r)
	defer srv.Close()

	file := filepath.Join(t.TempDir(), "rows.json")
	rows := `[
		{"busNumber": "B-2", "route": "East"},
		{"id": "` + existing.ID + `", "version": 1, "busNumber": "B-1", "route": "West"},
		{"id": "` + existing.ID + `", "version": 1, "busNumber": "B-1", "route": "stale"}
	]`
	require.NoError(t, os.WriteFile(file, []byte(rows), 0o600))

	mockPassword(t, "whatever1")
	err := cli.run([]string{"admin", "import", "-server", srv.URL, "-user", "admin", "-resource", "bus", "-file", file})
	require.NoError(t, err)
	assert.Contains(t, out.String(), "bus: 1 created, 1 updated, 1 conflicts, 0 failed (2 rows now)")

	got, err := buses.Get(context.Background(), existing.ID)
	require.NoError(t, err)
	assert.Equal(t, "West", got.Route)
}

func Test_commandLine_import_badFile(t *testing.T) {
	cli, _, _ := setup(t)
	mockPassword(t, "whatever1")
	err := cli.run([]string{"admin", "import", "-user", "a", "-resource", "bus", "-file", filepath.Join(t.TempDir(), "missing.json")})
	assert.True(t, errors.Is(err, os.ErrNotExist))
}
