package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRecent_MarkAndSeen(t *testing.T) {
	r := NewRecent(4, time.Minute)

	assert.False(t, r.Seen("run-1"))
	r.Mark("run-1")
	assert.True(t, r.Seen("run-1"))
	assert.False(t, r.Seen("run-2"))
}

func TestRecent_Expiry(t *testing.T) {
	now := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	r := NewRecent(4, time.Minute)
	r.now = func() time.Time { return now }

	r.Mark("run-1")
	now = now.Add(2 * time.Minute)

	assert.False(t, r.Seen("run-1"))
	assert.Zero(t, r.Len())
}

func TestRecent_EvictsLeastRecentlyMarked(t *testing.T) {
	r := NewRecent(2, time.Hour)

	r.Mark("a")
	r.Mark("b")
	r.Mark("a") // refresh
	r.Mark("c")

	assert.True(t, r.Seen("a"))
	assert.False(t, r.Seen("b"))
	assert.True(t, r.Seen("c"))
	assert.Equal(t, 2, r.Len())
}
