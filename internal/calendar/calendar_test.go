package calendar

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestPredictFirstOfApril2025(t *testing.T) {
	g, err := Predict("1-Apr", 2025)
	require.NoError(t, err)

	assert.Equal(t, date(2025, time.March, 30), g.FirstSunday)
	assert.Equal(t, date(2025, time.March, 30), g.Dates[0][0])
	assert.Equal(t, date(2025, time.April, 1), g.Dates[0][2])
	assert.Equal(t, date(2025, time.April, 1), g.Target())
	assert.Equal(t, date(2025, time.April, 23), g.Dates[3][3])
}

func TestMonthSpellingsAgree(t *testing.T) {
	for _, label := range []string{"1-Jun", "June", "Jun", "june", "JUN", "حوزەیران", "June - حوزەیران", "حوزەیران - June"} {
		idx, ok := MonthIndex(label)
		assert.True(t, ok, label)
		assert.Equal(t, 5, idx, label)
	}
}

func TestKurdishMonths(t *testing.T) {
	cases := map[string]time.Month{
		"کانونی دووەم":          time.January,
		"کانوونی دووەم - January": time.January,
		"شوبات":                 time.February,
		"ئازار":                 time.March,
		"نیسان":                 time.April,
		"ئایار":                 time.May,
		"تەمووز":                time.July,
		"ئاب":                   time.August,
		"ئەیلوول":               time.September,
		"تشرینی یەکەم":          time.October,
		"تشرینی دووەم":          time.November,
		"کانونی یەکەم":          time.December,
		"کانونی دووەم ٢٠٢٤":     time.January,
	}
	for label, want := range cases {
		r, err := ParseMonthLabel(label, 2024)
		require.NoError(t, err, label)
		assert.Equal(t, want, r.Month, label)
	}
}

func TestUnknownLabelFallsBackToJanuaryFirst(t *testing.T) {
	r, err := ParseMonthLabel("Xyz", 2025)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownMonth))

	var le *LabelError
	require.True(t, errors.As(err, &le))
	assert.Equal(t, "Xyz", le.Label)

	assert.False(t, r.Matched)
	assert.Equal(t, time.January, r.Month)
	assert.Equal(t, 1, r.Day)

	idx, ok := MonthIndex("Xyz")
	assert.False(t, ok)
	assert.Equal(t, 0, idx)

	g, err := Predict("", 2025)
	assert.Error(t, err)
	assert.Equal(t, date(2024, time.December, 29), g.FirstSunday)
}

func TestMonthNamesInsideWordsDoNotMatch(t *testing.T) {
	for _, label := range []string{"Summary", "Decorations", "Mayor visit", "Junk"} {
		r, err := ParseMonthLabel(label, 2025)
		var le *LabelError
		require.True(t, errors.As(err, &le), label)
		assert.False(t, r.Matched, label)
		assert.Equal(t, time.January, r.Month, label)
		assert.Equal(t, 1, r.Day, label)
	}

	for label, want := range map[string]time.Month{
		"Nisan-April":     time.April,
		"Term 2 (Mar)":    time.March,
		"Dec holiday":     time.December,
		"1-Apr":           time.April,
	} {
		r, err := ParseMonthLabel(label, 2025)
		require.NoError(t, err, label)
		assert.Equal(t, want, r.Month, label)
	}
}

func TestHyphenForms(t *testing.T) {
	r, err := ParseMonthLabel("15-Mar", 2025)
	require.NoError(t, err)
	assert.Equal(t, time.March, r.Month)
	assert.Equal(t, 15, r.Day)

	r, err = ParseMonthLabel("Sep-2023", 2025)
	require.NoError(t, err)
	assert.Equal(t, time.September, r.Month)
	assert.Equal(t, 2023, r.Year)
	assert.Equal(t, 1, r.Day)

	r, err = ParseMonthLabel("15-Xyz", 2025)
	require.Error(t, err)
	assert.Equal(t, 1, r.Day)
}

func TestYearDefaultsToCurrent(t *testing.T) {
	r, err := ParseMonthLabel("May", 0)
	require.NoError(t, err)
	assert.Equal(t, time.Now().Year(), r.Year)
}

func TestGridAlwaysFourByFourSundayToWednesday(t *testing.T) {
	labels := []string{"1-Jan", "Feb", "ئازار", "1-Aug", "December", "nonsense", ""}
	for year := 2019; year <= 2030; year++ {
		for _, label := range labels {
			g, _ := Predict(label, year)
			assert.Equal(t, time.Sunday, g.FirstSunday.Weekday())
			assert.Len(t, g.Cells(), Weeks*Days)
			for w := 0; w < Weeks; w++ {
				for d := 0; d < Days; d++ {
					got := g.Dates[w][d]
					assert.Equal(t, time.Weekday(d), got.Weekday(), "%s %d w%d d%d", label, year, w, d)
					assert.Equal(t, g.FirstSunday.AddDate(0, 0, 7*w+d), got)
				}
			}
			first := date(g.Resolved.Year, g.Resolved.Month, 1)
			assert.False(t, g.FirstSunday.After(first))
			assert.True(t, first.Sub(g.FirstSunday) < 7*24*time.Hour)
		}
	}
}

func TestLocate(t *testing.T) {
	g, _ := Predict("1-Apr", 2025)
	w, d, ok := g.Locate(time.Date(2025, time.April, 8, 15, 30, 0, 0, time.Local))
	require.True(t, ok)
	assert.Equal(t, 1, w)
	assert.Equal(t, 2, d)

	_, _, ok = g.Locate(date(2025, time.April, 3)) // 周四
	assert.False(t, ok)
}

func TestExtractCodes(t *testing.T) {
	assert.Equal(t, []string{"A", "TB", "J"}, ExtractCodes("a, TB  j,a", DefaultKnown))
	assert.Empty(t, ExtractCodes("hello world", DefaultKnown))
	assert.Equal(t, []string{"FOO", "BAR"}, ExtractCodes("foo bar", nil))
}

func TestExtractAbbreviations(t *testing.T) {
	got := ExtractAbbreviations([]string{"A, B1", "TB and A", "lower only", ""})
	assert.Equal(t, []string{"A", "B1", "TB"}, got)
}

func TestMonthFromValue(t *testing.T) {
	m, ok := MonthFromValue("6")
	assert.True(t, ok)
	assert.Equal(t, time.June, m)

	m, ok = MonthFromValue("حوزەیران - June")
	assert.True(t, ok)
	assert.Equal(t, time.June, m)

	_, ok = MonthFromValue("13")
	assert.False(t, ok)
}
