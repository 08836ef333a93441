package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"curve-lab/internal/domain"
	"curve-lab/internal/storage"
)

// SimulationRunStore implements storage.SimulationRunStore using PostgreSQL.
type SimulationRunStore struct {
	pool *Pool
}

// NewSimulationRunStore creates a new SimulationRunStore.
func NewSimulationRunStore(pool *Pool) *SimulationRunStore {
	return &SimulationRunStore{pool: pool}
}

// Compile-time interface check.
var _ storage.SimulationRunStore = (*SimulationRunStore)(nil)

// Insert adds a new run. Returns ErrDuplicateKey if run_id exists.
func (s *SimulationRunStore) Insert(ctx context.Context, r *domain.SimulationRun) error {
	if r == nil || r.RunID == "" {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO simulation_runs (
			run_id, curve_id, schedule_id, num_mints,
			final_step, total_asset_out, total_quote_in, created_at
		) VALUES (
			$1, $2, $3, $4,
			$5, $6, $7, $8
		)
	`

	_, err := s.pool.Exec(ctx, query,
		r.RunID, r.CurveID, r.ScheduleID, r.NumMints,
		r.FinalStep, r.TotalAssetOut, r.TotalQuoteIn, r.CreatedAt,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert simulation run: %w", err)
	}
	return nil
}

// GetByID retrieves a run by its ID. Returns ErrNotFound if not exists.
func (s *SimulationRunStore) GetByID(ctx context.Context, runID string) (*domain.SimulationRun, error) {
	query := `
		SELECT
			run_id, curve_id, schedule_id, num_mints,
			final_step, total_asset_out, total_quote_in, created_at
		FROM simulation_runs
		WHERE run_id = $1
	`

	row := s.pool.QueryRow(ctx, query, runID)
	r, err := scanSimulationRun(row)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get simulation run by id: %w", err)
	}
	return r, nil
}

// GetByCurveID retrieves all runs for a curve, ordered by created_at ASC, run_id ASC.
func (s *SimulationRunStore) GetByCurveID(ctx context.Context, curveID string) ([]*domain.SimulationRun, error) {
	query := `
		SELECT
			run_id, curve_id, schedule_id, num_mints,
			final_step, total_asset_out, total_quote_in, created_at
		FROM simulation_runs
		WHERE curve_id = $1
		ORDER BY created_at ASC, run_id ASC
	`

	rows, err := s.pool.Query(ctx, query, curveID)
	if err != nil {
		return nil, fmt.Errorf("get simulation runs by curve id: %w", err)
	}
	defer rows.Close()

	var runs []*domain.SimulationRun
	for rows.Next() {
		r, err := scanSimulationRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan simulation run row: %w", err)
		}
		runs = append(runs, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate simulation run rows: %w", err)
	}

	return runs, nil
}

// scanSimulationRun scans a single row into a SimulationRun.
func scanSimulationRun(row pgx.Row) (*domain.SimulationRun, error) {
	var r domain.SimulationRun

	err := row.Scan(
		&r.RunID, &r.CurveID, &r.ScheduleID, &r.NumMints,
		&r.FinalStep, &r.TotalAssetOut, &r.TotalQuoteIn, &r.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &r, nil
}
