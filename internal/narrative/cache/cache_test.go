package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bigfive/internal/narrative/models"
	"bigfive/pkg/platform/sentinel"
)

func TestMemoryCacheEntries(t *testing.T) {
	ctx := context.Background()
	c := NewMemory()

	_, err := c.Get(ctx, "h")
	assert.ErrorIs(t, err, sentinel.ErrNotFound)

	lines := []string{"one line", "two line"}
	require.NoError(t, c.Put(ctx, "h", models.Entry{Lines: lines, Source: models.SourceLLM}))
	lines[0] = "mutated"

	got, err := c.Get(ctx, "h")
	require.NoError(t, err)
	assert.Equal(t, []string{"one line", "two line"}, got.Lines)
	assert.Equal(t, models.SourceLLM, got.Source)
}

func TestMemoryCacheLock(t *testing.T) {
	ctx := context.Background()
	now := time.Unix(100, 0)
	c := NewMemory(WithClock(func() time.Time { return now }))

	ok, err := c.AcquireLock(ctx, "h", "a", 2*time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = c.AcquireLock(ctx, "h", "b", 2*time.Minute)
	require.NoError(t, err)
	assert.False(t, ok, "held lock")

	require.NoError(t, c.ReleaseLock(ctx, "h", "b"))
	ok, _ = c.AcquireLock(ctx, "h", "b", 2*time.Minute)
	assert.False(t, ok, "release by a non-owner is ignored")

	now = now.Add(2 * time.Minute)
	ok, _ = c.AcquireLock(ctx, "h", "b", 2*time.Minute)
	assert.True(t, ok, "stale lock is taken over")

	require.NoError(t, c.ReleaseLock(ctx, "h", "b"))
	ok, _ = c.AcquireLock(ctx, "h", "c", time.Minute)
	assert.True(t, ok)
}

func TestKeys(t *testing.T) {
	assert.Equal(t, "gz_psych_profile_abc", EntryKey("abc"))
	assert.Equal(t, "gz_psych_profile_lock_abc", LockKey("abc"))
}
