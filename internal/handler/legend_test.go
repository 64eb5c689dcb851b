package handler

import (
	"context"
	"testing"
	"time"

	"berdoz-admin/internal/models"
	"berdoz-admin/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// racingStore 在第一次 Replace 之前让另一个写入方先更新条目，
// 所以第一次尝试的版本已过期。
type racingStore struct {
	*store.Memory[*models.LegendEntry]
	raced bool
}

func (s *racingStore) Replace(ctx context.Context, doc *models.LegendEntry) error {
	if !s.raced {
		s.raced = true
		other, err := s.Memory.Get(ctx, doc.ID)
		if err != nil {
			return err
		}
		other.UsageCount += 10
		if err := s.Memory.Replace(ctx, other); err != nil {
			return err
		}
	}
	return s.Memory.Replace(ctx, doc)
}

func legendByCode(t *testing.T, st store.Collection[*models.LegendEntry]) map[string]*models.LegendEntry {
	t.Helper()
	rows, err := st.List(context.Background(), store.ListOptions{})
	require.NoError(t, err)
	out := map[string]*models.LegendEntry{}
	for _, r := range rows {
		out[r.Abbreviation] = r
	}
	return out
}

func TestLegendTouch(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory[*models.LegendEntry]("legend_entries")
	now := time.Date(2025, 4, 1, 8, 0, 0, 0, time.UTC)
	book := NewLegendBook(st)
	book.Now = func() time.Time { return now }

	require.NoError(t, st.Insert(ctx, &models.LegendEntry{Abbreviation: "e", FullDescription: "Bus Records", UsageCount: 4}))

	// 同一次保存中重复项和大小写变体只计一次
	require.NoError(t, book.Touch(ctx, []string{"E", " e ", "K", "K", ""}))

	got := legendByCode(t, st)
	require.Len(t, got, 2)
	assert.Equal(t, 5, got["e"].UsageCount)
	assert.Equal(t, "Bus Records", got["e"].FullDescription)
	assert.Equal(t, now, got["e"].LastUsed.UTC())

	k := got["K"]
	require.NotNil(t, k)
	assert.Equal(t, 1, k.UsageCount)
	assert.Equal(t, "K - Please update description", k.FullDescription)
	assert.Equal(t, "General", k.Category)

	assert.NoError(t, book.Touch(ctx, nil))
}

func TestLegendTouchRetriesOnConflict(t *testing.T) {
	ctx := context.Background()
	st := &racingStore{Memory: store.NewMemory[*models.LegendEntry]("legend_entries")}
	require.NoError(t, st.Insert(ctx, &models.LegendEntry{Abbreviation: "A", UsageCount: 1}))

	require.NoError(t, NewLegendBook(st).Touch(ctx, []string{"A"}))
	assert.True(t, st.raced)
	assert.Equal(t, 12, legendByCode(t, st)["A"].UsageCount)
}

func TestLegendDescriptions(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory[*models.LegendEntry]("legend_entries")
	require.NoError(t, st.Insert(ctx, &models.LegendEntry{Abbreviation: "b", FullDescription: "Media archive"}))
	require.NoError(t, st.Insert(ctx, &models.LegendEntry{Abbreviation: "C"}))

	desc, err := NewLegendBook(st).Descriptions(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Media archive", desc["B"])
	assert.Equal(t, "HR Staff Records", desc["C"], "empty descriptions keep the default")
	assert.Equal(t, "Regis Name", desc["A"])
}

func TestCalendarSavedTouchesCellCodes(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory[*models.LegendEntry]("legend_entries")
	entry := &models.CalendarEntry{Month: "Nisan-April", Week1: []string{"A, E"}, Week3: []string{"", "E", "QX"}}
	entry.Normalize()

	require.NoError(t, NewLegendBook(st).CalendarSaved(ctx, entry))
	got := legendByCode(t, st)
	assert.Len(t, got, 3)
	assert.Equal(t, 1, got["E"].UsageCount)
}
