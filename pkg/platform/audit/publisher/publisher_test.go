package publisher

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	audit "bigfive/pkg/platform/audit"
	"bigfive/pkg/platform/audit/store/memory"
)

const suiteHash = "9f2c4e1a7b3d5f608192a3b4c5d6e7f8091a2b3c4d5e6f708192a3b4c5d6e7f8"

func TestPublisher_SyncMode(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := NewPublisher(store)
	defer pub.Close()

	err := pub.Emit(context.Background(), audit.Event{
		Subject: suiteHash,
		Action:  string(audit.EventSuiteSealed),
	})
	require.NoError(t, err)

	events, err := pub.List(context.Background(), suiteHash)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, string(audit.EventSuiteSealed), events[0].Action)
	assert.Equal(t, audit.CategoryIntegrity, events[0].Category)
}

func TestPublisher_AsyncDrainsOnClose(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := NewPublisher(store, WithAsyncBuffer(100))

	for range 10 {
		err := pub.Emit(context.Background(), audit.Event{
			Subject: suiteHash,
			Action:  string(audit.EventNarrativeGenerated),
		})
		require.NoError(t, err)
	}

	pub.Close()

	events, err := store.ListBySubject(context.Background(), suiteHash)
	require.NoError(t, err)
	assert.Len(t, events, 10, "all events should be drained on close")
	assert.Equal(t, audit.CategoryOperations, events[0].Category)
}

func TestPublisher_BufferFull(t *testing.T) {
	block := make(chan struct{})
	store := &blockingStore{release: block}
	pub := NewPublisher(store, WithAsyncBuffer(1))

	ctx := context.Background()
	// first event is picked up by the drain goroutine and blocks there
	require.NoError(t, pub.Emit(ctx, audit.Event{Subject: "a", Action: "x"}))
	require.Eventually(t, store.started, time.Second, 5*time.Millisecond)
	// second fills the buffer
	require.NoError(t, pub.Emit(ctx, audit.Event{Subject: "b", Action: "x"}))

	err := pub.Emit(ctx, audit.Event{Subject: "c", Action: "x"})
	assert.ErrorIs(t, err, ErrBufferFull)

	close(block)
	pub.Close()
	assert.Equal(t, 2, store.count())
}

func TestPublisher_SetsTimestamp(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := NewPublisher(store)
	defer pub.Close()

	before := time.Now()
	require.NoError(t, pub.Emit(context.Background(), audit.Event{Subject: suiteHash, Action: "x"}))
	after := time.Now()

	events, err := pub.List(context.Background(), suiteHash)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.False(t, events[0].Timestamp.Before(before))
	assert.False(t, events[0].Timestamp.After(after))
}

func TestPublisher_PreservesExistingTimestamp(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := NewPublisher(store)
	defer pub.Close()

	customTime := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, pub.Emit(context.Background(), audit.Event{
		Subject:   suiteHash,
		Action:    string(audit.EventSuiteSealed),
		Timestamp: customTime,
	}))

	events, err := pub.List(context.Background(), suiteHash)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, customTime, events[0].Timestamp)
}

func TestPublisher_SyncReturnsStoreError(t *testing.T) {
	pub := NewPublisher(failingStore{})
	defer pub.Close()

	err := pub.Emit(context.Background(), audit.Event{Subject: suiteHash, Action: "x"})
	assert.ErrorContains(t, err, "disk full")

	_, err = pub.List(context.Background(), suiteHash)
	assert.ErrorIs(t, err, ErrListUnsupported)
}

type failingStore struct{}

func (failingStore) Append(context.Context, audit.Event) error { return errors.New("disk full") }

type blockingStore struct {
	mu      sync.Mutex
	release chan struct{}
	events  []audit.Event
	began   bool
}

func (s *blockingStore) Append(_ context.Context, e audit.Event) error {
	s.mu.Lock()
	s.began = true
	s.mu.Unlock()
	<-s.release
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, e)
	return nil
}

func (s *blockingStore) started() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.began
}

func (s *blockingStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.events)
}
