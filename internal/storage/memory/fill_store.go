package memory

import (
	"context"
	"sort"
	"sync"

	"curve-lab/internal/domain"
	"curve-lab/internal/storage"
)

// fillKey identifies a fill within a run.
type fillKey struct {
	runID string
	seq   int
}

// MintFillStore is an in-memory implementation of storage.MintFillStore.
type MintFillStore struct {
	mu   sync.RWMutex
	data map[fillKey]*domain.MintFill
}

// NewMintFillStore creates a new in-memory mint fill store.
func NewMintFillStore() *MintFillStore {
	return &MintFillStore{
		data: make(map[fillKey]*domain.MintFill),
	}
}

// InsertBulk adds multiple fills atomically. Fails entire batch on any duplicate.
func (s *MintFillStore) InsertBulk(_ context.Context, fills []*domain.MintFill) error {
	if len(fills) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Track keys in this batch to detect intra-batch duplicates
	batchKeys := make(map[fillKey]struct{}, len(fills))

	// First pass: check for duplicates (existing + intra-batch)
	for _, f := range fills {
		if f == nil || f.RunID == "" {
			return storage.ErrInvalidInput
		}

		k := fillKey{f.RunID, f.Seq}
		if _, exists := s.data[k]; exists {
			return storage.ErrDuplicateKey
		}
		if _, exists := batchKeys[k]; exists {
			return storage.ErrDuplicateKey
		}
		batchKeys[k] = struct{}{}
	}

	// Second pass: insert all
	for _, f := range fills {
		copy := *f
		s.data[fillKey{f.RunID, f.Seq}] = &copy
	}

	return nil
}

// GetByRunID retrieves all fills for a run, ordered by seq ASC.
func (s *MintFillStore) GetByRunID(_ context.Context, runID string) ([]*domain.MintFill, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.MintFill
	for _, f := range s.data {
		if f.RunID == runID {
			copy := *f
			result = append(result, &copy)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Seq < result[j].Seq
	})

	return result, nil
}

var _ storage.MintFillStore = (*MintFillStore)(nil)
