package dedup

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLedger_AddAndContains(t *testing.T) {
	l := NewLedger(10)

	assert.False(t, l.Contains("https://example.com/a"))
	l.Add("https://example.com/a")
	assert.True(t, l.Contains("https://example.com/a"))
	assert.Equal(t, 1, l.Len())
}

func TestLedger_AddIsIdempotent(t *testing.T) {
	l := NewLedger(10)

	l.Add("https://example.com/a")
	l.Add("https://example.com/a")
	l.Add("https://example.com/a")

	assert.Equal(t, 1, l.Len())
	assert.Equal(t, []string{"https://example.com/a"}, l.Snapshot())
}

func TestLedger_IgnoresEmptyID(t *testing.T) {
	l := NewLedger(10)
	l.Add("")
	assert.Equal(t, 0, l.Len())
}

func TestLedger_EvictsOldestBeyondLimit(t *testing.T) {
	l := NewLedger(3)
	for i := 1; i <= 5; i++ {
		l.Add(fmt.Sprintf("link-%d", i))
	}

	assert.Equal(t, 3, l.Len())
	assert.Equal(t, []string{"link-3", "link-4", "link-5"}, l.Snapshot())
	assert.False(t, l.Contains("link-1"))
	assert.False(t, l.Contains("link-2"))
	assert.True(t, l.Contains("link-5"))
}

func TestLedger_FromEntriesCollapsesDuplicates(t *testing.T) {
	l := FromEntries([]string{"a", "b", "a", "c", "b"}, 10)
	assert.Equal(t, []string{"a", "b", "c"}, l.Snapshot())
}

func TestLedger_FromEntriesTruncatesOversizedHistory(t *testing.T) {
	entries := make([]string, 0, 2100)
	for i := 0; i < 2100; i++ {
		entries = append(entries, fmt.Sprintf("link-%04d", i))
	}

	l := FromEntries(entries, 2000)
	assert.Equal(t, 2000, l.Len())
	// The most recent entries survive.
	assert.False(t, l.Contains("link-0099"))
	assert.True(t, l.Contains("link-0100"))
	assert.True(t, l.Contains("link-2099"))
}

func TestLedger_SnapshotIsACopy(t *testing.T) {
	l := NewLedger(10)
	l.Add("a")

	snap := l.Snapshot()
	snap[0] = "mutated"
	assert.True(t, l.Contains("a"))
	assert.Equal(t, []string{"a"}, l.Snapshot())
}
