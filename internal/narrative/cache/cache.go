// Package cache stores generated narratives per suite hash together with the
// lock record that keeps generation single-flight across processes.
package cache

import (
	"context"
	"sync"
	"time"

	"bigfive/internal/narrative/models"
	"bigfive/pkg/platform/sentinel"
)

const (
	entryKeyPrefix = "gz_psych_profile_"
	lockKeyPrefix  = "gz_psych_profile_lock_"
)

// EntryKey is the cache key of a narrative.
func EntryKey(hash string) string { return entryKeyPrefix + hash }

// LockKey is the key of the generation lock for a narrative.
func LockKey(hash string) string { return lockKeyPrefix + hash }

type lock struct {
	owner   string
	expires time.Time
}

// MemoryCache is a process-local cache. Entries never expire; locks expire
// after their TTL.
type MemoryCache struct {
	mu      sync.Mutex
	entries map[string]models.Entry
	locks   map[string]lock
	now     func() time.Time
}

// MemoryOption configures a MemoryCache.
type MemoryOption func(*MemoryCache)

// WithClock overrides the time source used for lock expiry.
func WithClock(now func() time.Time) MemoryOption {
	return func(c *MemoryCache) {
		c.now = now
	}
}

// NewMemory creates an empty cache.
func NewMemory(opts ...MemoryOption) *MemoryCache {
	c := &MemoryCache{
		entries: make(map[string]models.Entry),
		locks:   make(map[string]lock),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns sentinel.ErrNotFound on a miss.
func (c *MemoryCache) Get(_ context.Context, hash string) (models.Entry, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[hash]
	if !ok {
		return models.Entry{}, sentinel.ErrNotFound
	}
	e.Lines = append([]string(nil), e.Lines...)
	return e, nil
}

func (c *MemoryCache) Put(_ context.Context, hash string, e models.Entry) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	e.Lines = append([]string(nil), e.Lines...)
	c.entries[hash] = e
	return nil
}

// AcquireLock takes the lock when it is free or its holder's TTL lapsed.
func (c *MemoryCache) AcquireLock(_ context.Context, hash, owner string, ttl time.Duration) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	if l, ok := c.locks[hash]; ok && now.Before(l.expires) {
		return false, nil
	}
	c.locks[hash] = lock{owner: owner, expires: now.Add(ttl)}
	return true, nil
}

// ReleaseLock removes the lock only when owner still holds it.
func (c *MemoryCache) ReleaseLock(_ context.Context, hash, owner string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if l, ok := c.locks[hash]; ok && l.owner == owner {
		delete(c.locks, hash)
	}
	return nil
}
