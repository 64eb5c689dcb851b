package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type person struct {
	Name  string
	Notes string
}

var personKeys = []Key[person]{
	{Name: "name", Weight: 3, Get: func(p person) string { return p.Name }},
	{Name: "notes", Weight: 1, Get: func(p person) string { return p.Notes }},
}

func TestDistance(t *testing.T) {
	cases := []struct {
		pattern, text string
		want          int
	}{
		{"ahmed", "ahmed", 0},
		{"ahmed", "mr ahmed karim", 0},
		{"ahmed", "ahmad", 1},
		{"ahmed", "ahmd", 1},
		{"abc", "xyz", 3},
		{"abc", "", 3},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, distance([]rune(tc.pattern), []rune(tc.text)), "%s in %s", tc.pattern, tc.text)
	}
}

func TestScoreThresholdAndMinLength(t *testing.T) {
	s, ok := Score("ahmed", "ahmad", DefaultThreshold, DefaultMinMatchLen)
	assert.True(t, ok)
	assert.InDelta(t, 0.2, s, 1e-9)

	_, ok = Score("abc", "abd", DefaultThreshold, DefaultMinMatchLen)
	assert.False(t, ok, "one error in three runes exceeds 0.3")

	_, ok = Score("a", "a", DefaultThreshold, DefaultMinMatchLen)
	assert.False(t, ok, "single rune is below the minimum match length")
}

func TestFold(t *testing.T) {
	assert.Equal(t, "eva", Fold("  Éva "))
	assert.Equal(t, Fold("ئازار"), Fold("ئازار"))
	assert.Equal(t, "bus", Fold("BUS"))
}

func TestSearchRanksByScore(t *testing.T) {
	rows := []person{
		{Name: "Ahmad Karim", Notes: ""},
		{Name: "Sara", Notes: "sister of ahmed"},
		{Name: "Ahmed Ali", Notes: "ahmed's file"},
		{Name: "Dara", Notes: "driver"},
	}
	ix := NewIndex(rows, personKeys, Options{})
	require.Equal(t, 4, ix.Len())

	hits := ix.Search("ahmed")
	require.Len(t, hits, 3)
	assert.Equal(t, "Ahmed Ali", hits[0].Item.Name, "exact match in two keys ranks first")
	assert.ElementsMatch(t, []string{"name", "notes"}, hits[0].Keys)
	for i := 1; i < len(hits); i++ {
		assert.LessOrEqual(t, hits[i-1].Score, hits[i].Score)
	}
	assert.Equal(t, 2, hits[0].Ref)
}

func TestSearchNoMatchAndEmptyTerm(t *testing.T) {
	ix := NewIndex([]person{{Name: "Sara"}}, personKeys, Options{})
	assert.Empty(t, ix.Search("zzzzzz"))
	assert.Nil(t, ix.Search("   "))
	assert.Empty(t, ix.Filter("q"))
}

func TestSearchKurdish(t *testing.T) {
	rows := []person{{Name: "کاروان"}, {Name: "هانا"}}
	ix := NewIndex(rows, personKeys, Options{})
	got := ix.Filter("کاروان")
	require.Len(t, got, 1)
	assert.Equal(t, "کاروان", got[0].Name)
}

func TestSynthesizedKeys(t *testing.T) {
	assert.Equal(t, "1250000 1,250,000", FormatAmount(1250000))
	assert.Equal(t, "", FormatAmount(0))
	assert.Equal(t, "low", Bucket(5000, ExpenseTiers))
	assert.Equal(t, "medium", Bucket(250000, ExpenseTiers))
	assert.Equal(t, "high", Bucket(2_000_000, ExpenseTiers))
	assert.Equal(t, "bus 12 route a", Join("Bus 12", "", " Route A"))

	type expense struct{ Cost float64 }
	keys := []Key[expense]{{Name: "cost", Get: func(e expense) string {
		return Join(FormatAmount(e.Cost), Bucket(e.Cost, ExpenseTiers))
	}}}
	ix := NewIndex([]expense{{Cost: 1250000}, {Cost: 300}}, keys, Options{})
	got := ix.Filter("1,250,000")
	require.Len(t, got, 1)
	assert.Equal(t, 1250000.0, got[0].Cost)
	assert.Len(t, ix.Filter("high"), 1)
}
