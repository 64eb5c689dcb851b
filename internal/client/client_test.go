package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"berdoz-admin/internal/catalog"
	"berdoz-admin/internal/handler"
	"berdoz-admin/internal/models"
	"berdoz-admin/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testToken = "tok-123"

type fixture struct {
	srv      *httptest.Server
	store    *store.Memory[*models.Bus]
	requests atomic.Int32
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)
	f := &fixture{store: store.NewMemory[*models.Bus]("bus_records")}

	r := gin.New()
	r.Use(func(c *gin.Context) {
		f.requests.Add(1)
		c.Next()
	})
	r.POST("/api/auth/login", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"code": 0, "data": gin.H{"token": testToken}})
	})
	api := r.Group("/api", func(c *gin.Context) {
		if c.GetHeader("Authorization") != "Bearer "+testToken {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"code": 40101, "message": "not logged in"})
			return
		}
		c.Next()
	})
	handler.NewResource(catalog.Buses(), f.store, 1000, 20, zap.NewNop()).Register(api)

	f.srv = httptest.NewServer(r)
	t.Cleanup(f.srv.Close)
	return f
}

func (f *fixture) login(t *testing.T) *Client {
	t.Helper()
	c := New(f.srv.URL)
	require.NoError(t, c.Login(context.Background(), "admin", "secret123"))
	assert.Equal(t, testToken, c.Token())
	return c
}

func TestUnauthenticatedRequestFails(t *testing.T) {
	f := newFixture(t)
	buses := NewResource[*models.Bus](New(f.srv.URL), "bus")

	err := buses.Load(context.Background())
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
	assert.Equal(t, 40101, apiErr.Code)
}

func TestDraftSavePostsThenPersistedSavePuts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	buses := NewResource[*models.Bus](f.login(t), "bus")
	require.NoError(t, buses.Load(ctx))
	assert.Equal(t, 0, buses.Set().Len())

	draft := buses.Add(&models.Bus{BusNumber: "B-7", Route: "North"})
	ref, err := buses.Save(ctx, draft, &models.Bus{BusNumber: "B-7", Route: "North"})
	require.NoError(t, err)
	assert.False(t, ref.IsDraft())
	require.Equal(t, 1, buses.Set().Len(), "the draft row is replaced, not duplicated")

	saved, ok := buses.Set().Get(ref)
	require.True(t, ok)
	assert.Equal(t, int64(1), saved.Version)

	saved.Route = "South"
	ref2, err := buses.Save(ctx, ref, saved)
	require.NoError(t, err)
	assert.Equal(t, ref, ref2)

	got, err := f.store.Get(ctx, ref.ID())
	require.NoError(t, err)
	assert.Equal(t, "South", got.Route)
	assert.Equal(t, int64(2), got.Version)
	assert.Equal(t, 1, buses.Set().Len())
}

func TestStaleSaveIsConflict(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	buses := NewResource[*models.Bus](f.login(t), "bus")

	ref, err := buses.Save(ctx, buses.Add(&models.Bus{}), &models.Bus{BusNumber: "B-1"})
	require.NoError(t, err)
	stale, _ := buses.Set().Get(ref)
	staleCopy := *stale

	stale.Notes = "first writer"
	_, err = buses.Save(ctx, ref, stale)
	require.NoError(t, err)

	staleCopy.Notes = "second writer"
	_, err = buses.Save(ctx, ref, &staleCopy)
	assert.True(t, errors.Is(err, ErrConflict))
}

func TestDeleteDraftStaysLocal(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	buses := NewResource[*models.Bus](f.login(t), "bus")

	draft := buses.Add(&models.Bus{BusNumber: "tmp"})
	before := f.requests.Load()
	require.NoError(t, buses.Delete(ctx, draft))
	assert.Equal(t, before, f.requests.Load())
	assert.Equal(t, 0, buses.Set().Len())

	ref, err := buses.Save(ctx, buses.Add(&models.Bus{}), &models.Bus{BusNumber: "keep"})
	require.NoError(t, err)
	require.NoError(t, buses.Delete(ctx, ref))
	_, err = f.store.Get(ctx, ref.ID())
	assert.ErrorIs(t, err, store.ErrNotFound)
}
