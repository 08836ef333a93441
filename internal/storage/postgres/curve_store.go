package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"curve-lab/internal/domain"
	"curve-lab/internal/storage"
)

// CurveStore implements storage.CurveStore using PostgreSQL.
// Amounts are stored as decimal text so 128-bit values survive the
// round trip without precision loss.
type CurveStore struct {
	pool *Pool
}

// NewCurveStore creates a new CurveStore.
func NewCurveStore(pool *Pool) *CurveStore {
	return &CurveStore{pool: pool}
}

// Compile-time interface check.
var _ storage.CurveStore = (*CurveStore)(nil)

// Insert adds a new curve. Returns ErrDuplicateKey if curve_id exists.
func (s *CurveStore) Insert(ctx context.Context, c *domain.CurveRecord) error {
	if c == nil || c.CurveID == "" {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO curves (
			curve_id, total_supply, sell_amount, virtual_tokens, mc_target_sats,
			y0, x0, k, created_at
		) VALUES (
			$1, $2, $3, $4, $5,
			$6, $7, $8, $9
		)
	`

	_, err := s.pool.Exec(ctx, query,
		c.CurveID, c.TotalSupply, c.SellAmount, c.VirtualTokens, c.MCTargetSats,
		c.Y0, c.X0, c.K, c.CreatedAt,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert curve: %w", err)
	}
	return nil
}

// GetByID retrieves a curve by its ID. Returns ErrNotFound if not exists.
func (s *CurveStore) GetByID(ctx context.Context, curveID string) (*domain.CurveRecord, error) {
	query := `
		SELECT
			curve_id, total_supply, sell_amount, virtual_tokens, mc_target_sats,
			y0, x0, k, created_at
		FROM curves
		WHERE curve_id = $1
	`

	row := s.pool.QueryRow(ctx, query, curveID)
	c, err := scanCurveRecord(row)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get curve by id: %w", err)
	}
	return c, nil
}

// List retrieves all curves, ordered by created_at ASC, curve_id ASC.
func (s *CurveStore) List(ctx context.Context) ([]*domain.CurveRecord, error) {
	query := `
		SELECT
			curve_id, total_supply, sell_amount, virtual_tokens, mc_target_sats,
			y0, x0, k, created_at
		FROM curves
		ORDER BY created_at ASC, curve_id ASC
	`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list curves: %w", err)
	}
	defer rows.Close()

	var curves []*domain.CurveRecord
	for rows.Next() {
		c, err := scanCurveRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan curve row: %w", err)
		}
		curves = append(curves, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate curve rows: %w", err)
	}

	return curves, nil
}

// scanCurveRecord scans a single row into a CurveRecord.
func scanCurveRecord(row pgx.Row) (*domain.CurveRecord, error) {
	var c domain.CurveRecord

	err := row.Scan(
		&c.CurveID, &c.TotalSupply, &c.SellAmount, &c.VirtualTokens, &c.MCTargetSats,
		&c.Y0, &c.X0, &c.K, &c.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &c, nil
}
