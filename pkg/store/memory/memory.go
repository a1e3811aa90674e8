// Package memory provides an in-memory expense Store for tests and local
// development.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/belanjabot/belanjabot/pkg/api"
)

// Store keeps records in a per-owner map. Safe for concurrent use.
type Store struct {
	mu      sync.RWMutex
	records map[int64][]api.Record
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{records: make(map[int64][]api.Record)}
}

// Append adds a record to the owner's history.
func (s *Store) Append(_ context.Context, rec api.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[rec.OwnerID] = append(s.records[rec.OwnerID], rec)
	return nil
}

// ListFor returns a copy of every record for the owner.
func (s *Store) ListFor(_ context.Context, ownerID int64) ([]api.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	records := make([]api.Record, len(s.records[ownerID]))
	copy(records, s.records[ownerID])
	return records, nil
}

// Owners returns the ids of every owner with at least one record.
func (s *Store) Owners(_ context.Context) ([]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	owners := make([]int64, 0, len(s.records))
	for id := range s.records {
		owners = append(owners, id)
	}
	sort.Slice(owners, func(i, j int) bool { return owners[i] < owners[j] })
	return owners, nil
}
