package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiff_AppearedAndResolved(t *testing.T) {
	a := IncidentKey{Lat: 55.7, Lon: 37.6}
	b := IncidentKey{Lat: 55.8, Lon: 37.5}

	changes := Diff(IncidentSet{a: "x"}, IncidentSet{b: "y"})

	require.Len(t, changes.Appeared, 1)
	require.Len(t, changes.Resolved, 1)
	assert.Equal(t, Incident{IncidentKey: b, Description: "y"}, changes.Appeared[0])
	assert.Equal(t, Incident{IncidentKey: a, Description: "x"}, changes.Resolved[0])
}

func TestDiff_UnchangedIncidentIsNotReported(t *testing.T) {
	a := IncidentKey{Lat: 1, Lon: 2}

	changes := Diff(IncidentSet{a: "old text"}, IncidentSet{a: "new text"})

	assert.True(t, changes.Empty())
}

func TestDiff_ExactCoordinateIdentity(t *testing.T) {
	// Сдвиг координат - это новое ДТП, а не продолжение старого
	old := IncidentKey{Lat: 55.750000, Lon: 37.610000}
	moved := IncidentKey{Lat: 55.750001, Lon: 37.610000}

	changes := Diff(IncidentSet{old: "a"}, IncidentSet{moved: "a"})

	assert.Len(t, changes.Appeared, 1)
	assert.Len(t, changes.Resolved, 1)
}

func TestDiff_SortedOutput(t *testing.T) {
	current := IncidentSet{
		{Lat: 3, Lon: 1}: "c",
		{Lat: 1, Lon: 2}: "b",
		{Lat: 1, Lon: 1}: "a",
	}

	changes := Diff(IncidentSet{}, current)

	require.Len(t, changes.Appeared, 3)
	assert.Equal(t, "a", changes.Appeared[0].Description)
	assert.Equal(t, "b", changes.Appeared[1].Description)
	assert.Equal(t, "c", changes.Appeared[2].Description)
}

func TestIncidentKey_StringRoundTrip(t *testing.T) {
	key := IncidentKey{Lat: 55.123456, Lon: -37.5}

	parsed, err := ParseIncidentKey(key.String())

	require.NoError(t, err)
	assert.Equal(t, key, parsed)
}

func TestParseIncidentKey_Invalid(t *testing.T) {
	for _, s := range []string{"", "55.1", "abc,1", "1,abc"} {
		_, err := ParseIncidentKey(s)
		assert.Error(t, err, s)
	}
}

func TestIncidentSet_MergeLastWriteWins(t *testing.T) {
	k := IncidentKey{Lat: 1, Lon: 1}
	set := IncidentSet{k: "first"}

	set.Merge(IncidentSet{k: "second"})

	assert.Equal(t, "second", set[k])
}

func TestNormalizeHandle(t *testing.T) {
	assert.Equal(t, "ivan", NormalizeHandle("@Ivan"))
	assert.Equal(t, "ivan", NormalizeHandle("  IVAN "))
	assert.Equal(t, "", NormalizeHandle("@"))
	assert.Equal(t, "user_42", HandleOrFallback("", 42))
	assert.Equal(t, "petr", HandleOrFallback("@Petr", 42))
}

func TestSubscribers_HandleFor(t *testing.T) {
	s := NewSubscribers()
	s.Known["zeta"] = 5
	s.Known["alpha"] = 5
	s.Known["other"] = 6

	h, ok := s.HandleFor(5)
	assert.True(t, ok)
	assert.Equal(t, "alpha", h)

	_, ok = s.HandleFor(7)
	assert.False(t, ok)
}
