// Package store persists result records by id with a secondary lookup from
// suite hash to the first record stored for it.
package store

import (
	"context"
	"sync"

	"bigfive/internal/assessment"
	"bigfive/internal/results/models"
	"bigfive/pkg/platform/sentinel"
)

var (
	ErrNotFound = sentinel.ErrNotFound
	ErrConflict = sentinel.ErrConflict
)

type InMemoryStore struct {
	mu      sync.RWMutex
	records map[string]models.Record
	byHash  map[string]string
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		records: make(map[string]models.Record),
		byHash:  make(map[string]string),
	}
}

func (s *InMemoryStore) Create(_ context.Context, r models.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[r.ID]; ok {
		return ErrConflict
	}
	s.records[r.ID] = clone(r)
	if r.SuiteHash != "" {
		if _, ok := s.byHash[r.SuiteHash]; !ok {
			s.byHash[r.SuiteHash] = r.ID
		}
	}
	return nil
}

func (s *InMemoryStore) Get(_ context.Context, id string) (*models.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.records[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := clone(r)
	return &out, nil
}

// FindByHash returns the id of the earliest record with hash.
func (s *InMemoryStore) FindByHash(_ context.Context, hash string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byHash[hash]
	if !ok {
		return "", ErrNotFound
	}
	return id, nil
}

// Len reports the number of stored records.
func (s *InMemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// clone copies the answer slice. Payload maps and the who export are shared
// and treated as immutable.
func clone(r models.Record) models.Record {
	r.Answers = append([]assessment.SuiteEntry(nil), r.Answers...)
	return r
}
