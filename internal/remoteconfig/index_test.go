package remoteconfig

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func metaItems() []Item {
	return []Item{
		{Key: "open-web", Type: "theme", Value: "Open Web"},
		{Key: "open-web", Type: "description", Value: "Keeping the web open"},
		{Key: "privacy", Type: "theme", Value: "Privacy & Security"},
		{Key: "privacy", Type: "description", Value: "Staying safe online"},
		{Key: "banner", Type: "copy", Value: "Welcome"},
	}
}

func TestGet(t *testing.T) {
	ix := NewIndex()
	ix.Merge(metaItems())

	value, ok := ix.Get("open-web:theme")
	require.True(t, ok)
	assert.Equal(t, "Open Web", value)

	value, ok = ix.Get("open-web:description")
	require.True(t, ok)
	assert.Equal(t, "Keeping the web open", value)
}

func TestGetAbsent(t *testing.T) {
	ix := NewIndex()
	ix.Merge(metaItems())

	_, ok := ix.Get("no-such-key:theme")
	assert.False(t, ok)

	_, ok = ix.Get("open-web:no-such-type")
	assert.False(t, ok)

	// No colon means the whole handle is the key with an empty type.
	_, ok = ix.Get("open-web")
	assert.False(t, ok)
}

func TestKeyReturnsCopy(t *testing.T) {
	ix := NewIndex()
	ix.Merge(metaItems())

	types, ok := ix.Key("open-web")
	require.True(t, ok)
	assert.Equal(t, map[string]string{
		"theme":       "Open Web",
		"description": "Keeping the web open",
	}, types)

	// Mutating the returned map must not leak into the index.
	types["theme"] = "mutated"
	value, _ := ix.Get("open-web:theme")
	assert.Equal(t, "Open Web", value)
}

func TestKeyAbsent(t *testing.T) {
	ix := NewIndex()
	_, ok := ix.Key("open-web")
	assert.False(t, ok)
}

func TestByType(t *testing.T) {
	ix := NewIndex()
	ix.Merge(metaItems())

	themes := ix.ByType("theme")
	assert.Equal(t, map[string]string{
		"open-web": "Open Web",
		"privacy":  "Privacy & Security",
	}, themes)

	assert.Nil(t, ix.ByType("no-such-type"))
}

func TestReverseLookup(t *testing.T) {
	ix := NewIndex()
	ix.Merge(metaItems())

	match, ok := ix.ReverseLookup("Privacy & Security")
	require.True(t, ok)
	assert.Equal(t, Match{Key: "privacy", Type: "theme"}, match)

	_, ok = ix.ReverseLookup("No Such Theme")
	assert.False(t, ok)
}

func TestReverseLookupDeterministic(t *testing.T) {
	ix := NewIndex()
	ix.Merge([]Item{
		{Key: "zz", Type: "theme", Value: "Duplicate"},
		{Key: "aa", Type: "theme", Value: "Duplicate"},
		{Key: "aa", Type: "copy", Value: "Duplicate"},
	})

	first, ok := ix.ReverseLookup("Duplicate")
	require.True(t, ok)
	assert.Equal(t, Match{Key: "aa", Type: "copy"}, first)

	for i := 0; i < 20; i++ {
		match, ok := ix.ReverseLookup("Duplicate")
		require.True(t, ok)
		assert.Equal(t, first, match)
	}
}

func TestMergeDisjointBatchesCommute(t *testing.T) {
	b1 := []Item{
		{Key: "open-web", Type: "theme", Value: "Open Web"},
		{Key: "open-web", Type: "description", Value: "Keeping the web open"},
	}
	b2 := []Item{
		{Key: "privacy", Type: "theme", Value: "Privacy & Security"},
	}

	forward := NewIndex()
	forward.Merge(b1)
	forward.Merge(b2)

	backward := NewIndex()
	backward.Merge(b2)
	backward.Merge(b1)

	for _, handle := range []string{"open-web:theme", "open-web:description", "privacy:theme"} {
		fv, fok := forward.Get(handle)
		bv, bok := backward.Get(handle)
		assert.Equal(t, fok, bok, handle)
		assert.Equal(t, fv, bv, handle)
	}
}

func TestMergeLastWriteWins(t *testing.T) {
	ix := NewIndex()
	ix.Merge([]Item{{Key: "banner", Type: "copy", Value: "old"}})
	ix.Merge([]Item{{Key: "banner", Type: "copy", Value: "new"}})

	value, ok := ix.Get("banner:copy")
	require.True(t, ok)
	assert.Equal(t, "new", value)
}

func TestMergeRetainsMissingEntries(t *testing.T) {
	ix := NewIndex()
	ix.Merge(metaItems())
	ix.Merge([]Item{{Key: "banner", Type: "copy", Value: "Updated"}})

	// A shrunken payload never removes previously synced entries.
	value, ok := ix.Get("open-web:theme")
	require.True(t, ok)
	assert.Equal(t, "Open Web", value)
}
