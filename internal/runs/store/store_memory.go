// Package store persists sealed suites keyed by their suite hash. Every
// backend is write-once: saving a stored hash again is a no-op.
package store

import (
	"context"
	"sync"

	"bigfive/internal/assessment"
	"bigfive/pkg/platform/sentinel"
)

// ErrNotFound is returned when no suite is stored under a hash.
var ErrNotFound = sentinel.ErrNotFound

// InMemoryStore keeps suites in a map. Suitable for tests and single
// instance deployments.
type InMemoryStore struct {
	mu   sync.RWMutex
	runs map[string]assessment.SuiteResult
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{runs: make(map[string]assessment.SuiteResult)}
}

func (s *InMemoryStore) Save(_ context.Context, hash string, suite assessment.SuiteResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.runs[hash]; ok {
		return nil
	}
	s.runs[hash] = clone(suite)
	return nil
}

func (s *InMemoryStore) Get(_ context.Context, hash string) (*assessment.SuiteResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	suite, ok := s.runs[hash]
	if !ok {
		return nil, ErrNotFound
	}
	out := clone(suite)
	return &out, nil
}

// Len reports the number of stored suites.
func (s *InMemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.runs)
}

// clone copies the entry slice so callers cannot reorder stored results.
// Payload maps are shared and treated as immutable.
func clone(s assessment.SuiteResult) assessment.SuiteResult {
	s.Results = append([]assessment.SuiteEntry(nil), s.Results...)
	return s
}
