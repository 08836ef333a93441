package memory

import (
	"context"
	"sort"
	"sync"

	"curve-lab/internal/domain"
	"curve-lab/internal/storage"
)

// CurveStore is an in-memory implementation of storage.CurveStore.
type CurveStore struct {
	mu   sync.RWMutex
	data map[string]*domain.CurveRecord // keyed by curve_id
}

// NewCurveStore creates a new in-memory curve store.
func NewCurveStore() *CurveStore {
	return &CurveStore{
		data: make(map[string]*domain.CurveRecord),
	}
}

// Insert adds a new curve. Returns ErrDuplicateKey if curve_id exists.
func (s *CurveStore) Insert(_ context.Context, c *domain.CurveRecord) error {
	if c == nil || c.CurveID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[c.CurveID]; exists {
		return storage.ErrDuplicateKey
	}

	copy := *c
	s.data[c.CurveID] = &copy
	return nil
}

// GetByID retrieves a curve by its ID. Returns ErrNotFound if not exists.
func (s *CurveStore) GetByID(_ context.Context, curveID string) (*domain.CurveRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, exists := s.data[curveID]
	if !exists {
		return nil, storage.ErrNotFound
	}

	copy := *c
	return &copy, nil
}

// List retrieves all curves, ordered by created_at ASC, curve_id ASC.
func (s *CurveStore) List(_ context.Context) ([]*domain.CurveRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.CurveRecord, 0, len(s.data))
	for _, c := range s.data {
		copy := *c
		result = append(result, &copy)
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt != result[j].CreatedAt {
			return result[i].CreatedAt < result[j].CreatedAt
		}
		return result[i].CurveID < result[j].CurveID
	})

	return result, nil
}

var _ storage.CurveStore = (*CurveStore)(nil)
