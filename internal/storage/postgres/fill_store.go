package postgres

import (
	"context"
	"fmt"

	"curve-lab/internal/domain"
	"curve-lab/internal/storage"
)

// MintFillStore implements storage.MintFillStore using PostgreSQL.
type MintFillStore struct {
	pool *Pool
}

// NewMintFillStore creates a new MintFillStore.
func NewMintFillStore(pool *Pool) *MintFillStore {
	return &MintFillStore{pool: pool}
}

// Compile-time interface check.
var _ storage.MintFillStore = (*MintFillStore)(nil)

// InsertBulk adds multiple fills atomically. Fails entire batch on any duplicate.
func (s *MintFillStore) InsertBulk(ctx context.Context, fills []*domain.MintFill) error {
	if len(fills) == 0 {
		return nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO mint_fills (
			run_id, seq, step, quote_in, asset_out, new_step
		) VALUES (
			$1, $2, $3, $4, $5, $6
		)
	`

	for _, f := range fills {
		if f == nil || f.RunID == "" {
			return storage.ErrInvalidInput
		}

		_, err := tx.Exec(ctx, query,
			f.RunID, f.Seq, f.Step, f.QuoteIn, f.AssetOut, f.NewStep,
		)
		if err != nil {
			if isDuplicateKeyError(err) {
				return storage.ErrDuplicateKey
			}
			return fmt.Errorf("insert mint fill in bulk: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}

	return nil
}

// GetByRunID retrieves all fills for a run, ordered by seq ASC.
func (s *MintFillStore) GetByRunID(ctx context.Context, runID string) ([]*domain.MintFill, error) {
	query := `
		SELECT run_id, seq, step, quote_in, asset_out, new_step
		FROM mint_fills
		WHERE run_id = $1
		ORDER BY seq ASC
	`

	rows, err := s.pool.Query(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("get mint fills by run id: %w", err)
	}
	defer rows.Close()

	var fills []*domain.MintFill
	for rows.Next() {
		var f domain.MintFill
		err := rows.Scan(&f.RunID, &f.Seq, &f.Step, &f.QuoteIn, &f.AssetOut, &f.NewStep)
		if err != nil {
			return nil, fmt.Errorf("scan mint fill row: %w", err)
		}
		fills = append(fills, &f)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate mint fill rows: %w", err)
	}

	return fills, nil
}
