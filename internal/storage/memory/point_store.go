package memory

import (
	"context"
	"math/big"
	"sort"
	"sync"

	"curve-lab/internal/domain"
	"curve-lab/internal/storage"
)

// pointKey identifies a point within a run.
type pointKey struct {
	runID string
	seq   int
}

// CurvePointStore is an in-memory implementation of storage.CurvePointStore.
type CurvePointStore struct {
	mu   sync.RWMutex
	data map[pointKey]*domain.CurvePoint
}

// NewCurvePointStore creates a new in-memory curve point store.
func NewCurvePointStore() *CurvePointStore {
	return &CurvePointStore{
		data: make(map[pointKey]*domain.CurvePoint),
	}
}

// copyPoint deep-copies a point; the big.Int fields must not alias
// store-held data.
func copyPoint(p *domain.CurvePoint) *domain.CurvePoint {
	return &domain.CurvePoint{
		RunID:           p.RunID,
		Seq:             p.Seq,
		Step:            copyBig(p.Step),
		X:               copyBig(p.X),
		Y:               copyBig(p.Y),
		MCSats:          copyBig(p.MCSats),
		CumulativeQuote: copyBig(p.CumulativeQuote),
		ProgressPct:     copyBig(p.ProgressPct),
	}
}

func copyBig(v *big.Int) *big.Int {
	if v == nil {
		return nil
	}
	return new(big.Int).Set(v)
}

// InsertBulk adds multiple points atomically. Fails entire batch on any duplicate.
func (s *CurvePointStore) InsertBulk(_ context.Context, points []*domain.CurvePoint) error {
	if len(points) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	batchKeys := make(map[pointKey]struct{}, len(points))

	for _, p := range points {
		if p == nil || p.RunID == "" {
			return storage.ErrInvalidInput
		}

		k := pointKey{p.RunID, p.Seq}
		if _, exists := s.data[k]; exists {
			return storage.ErrDuplicateKey
		}
		if _, exists := batchKeys[k]; exists {
			return storage.ErrDuplicateKey
		}
		batchKeys[k] = struct{}{}
	}

	for _, p := range points {
		s.data[pointKey{p.RunID, p.Seq}] = copyPoint(p)
	}

	return nil
}

// GetByRunID retrieves all points for a run, ordered by seq ASC.
func (s *CurvePointStore) GetByRunID(_ context.Context, runID string) ([]*domain.CurvePoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.CurvePoint
	for _, p := range s.data {
		if p.RunID == runID {
			result = append(result, copyPoint(p))
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Seq < result[j].Seq
	})

	return result, nil
}

// GetBySeqRange retrieves points for a run within [start, end] (inclusive).
func (s *CurvePointStore) GetBySeqRange(_ context.Context, runID string, start, end int) ([]*domain.CurvePoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.CurvePoint
	for _, p := range s.data {
		if p.RunID == runID && p.Seq >= start && p.Seq <= end {
			result = append(result, copyPoint(p))
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Seq < result[j].Seq
	})

	return result, nil
}

var _ storage.CurvePointStore = (*CurvePointStore)(nil)
