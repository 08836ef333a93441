// Package storage defines the store interfaces of the curve lab.
//
// All stores are append-only: curves, runs and fills are immutable facts,
// so there are no update or delete operations. Implementations live in the
// memory, postgres and clickhouse subpackages.
package storage

import (
	"context"

	"curve-lab/internal/domain"
)

// CurveStore persists registered curves.
type CurveStore interface {
	// Insert adds a new curve. Returns ErrDuplicateKey if curve_id exists.
	Insert(ctx context.Context, c *domain.CurveRecord) error

	// GetByID retrieves a curve by its ID. Returns ErrNotFound if not exists.
	GetByID(ctx context.Context, curveID string) (*domain.CurveRecord, error)

	// List retrieves all curves, ordered by created_at ASC, curve_id ASC.
	List(ctx context.Context) ([]*domain.CurveRecord, error)
}

// SimulationRunStore persists simulation run headers.
type SimulationRunStore interface {
	// Insert adds a new run. Returns ErrDuplicateKey if run_id exists.
	Insert(ctx context.Context, r *domain.SimulationRun) error

	// GetByID retrieves a run by its ID. Returns ErrNotFound if not exists.
	GetByID(ctx context.Context, runID string) (*domain.SimulationRun, error)

	// GetByCurveID retrieves all runs for a curve, ordered by created_at ASC,
	// run_id ASC.
	GetByCurveID(ctx context.Context, curveID string) ([]*domain.SimulationRun, error)
}

// MintFillStore persists the per-fill detail of simulation runs.
type MintFillStore interface {
	// InsertBulk adds all fills of a run atomically. Fails the entire batch
	// on any duplicate (run_id, seq).
	InsertBulk(ctx context.Context, fills []*domain.MintFill) error

	// GetByRunID retrieves all fills for a run, ordered by seq ASC.
	GetByRunID(ctx context.Context, runID string) ([]*domain.MintFill, error)
}

// CurvePointStore persists per-fill analytics samples.
type CurvePointStore interface {
	// InsertBulk adds multiple points. Fails the entire batch on any
	// duplicate (run_id, seq).
	InsertBulk(ctx context.Context, points []*domain.CurvePoint) error

	// GetByRunID retrieves all points for a run, ordered by seq ASC.
	GetByRunID(ctx context.Context, runID string) ([]*domain.CurvePoint, error)

	// GetBySeqRange retrieves points for a run within [start, end] (inclusive).
	GetBySeqRange(ctx context.Context, runID string, start, end int) ([]*domain.CurvePoint, error)
}
