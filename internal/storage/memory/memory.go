// Package memory is an in-process proxy store for tests and local runs.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/R3E-Network/nft_layer/internal/storage"
)

// Store is a thread-safe in-memory storage.Store. Records are copied on the
// way in and out so callers never share state bytes with the store.
type Store struct {
	mu      sync.RWMutex
	records map[string]storage.Record
}

var _ storage.Store = (*Store)(nil)

// New creates an empty store.
func New() *Store {
	return &Store{records: make(map[string]storage.Record)}
}

func (s *Store) Load(_ context.Context, address string) (storage.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[address]
	if !ok {
		return storage.Record{}, storage.ErrNotFound
	}
	return rec.Clone(), nil
}

func (s *Store) Save(_ context.Context, rec storage.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	if existing, ok := s.records[rec.Address]; ok {
		rec.CreatedAt = existing.CreatedAt
	} else if rec.CreatedAt.IsZero() {
		rec.CreatedAt = now
	}
	rec.UpdatedAt = now

	s.records[rec.Address] = rec.Clone()
	return nil
}

func (s *Store) List(_ context.Context) ([]storage.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]storage.Record, 0, len(s.records))
	for _, rec := range s.records {
		out = append(out, rec.Clone())
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].Address < out[j].Address
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}
