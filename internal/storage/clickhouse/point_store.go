package clickhouse

import (
	"context"
	"fmt"
	"math/big"

	"curve-lab/internal/domain"
	"curve-lab/internal/storage"
)

// CurvePointStore implements storage.CurvePointStore using ClickHouse.
// Amount columns are UInt128; the driver maps them to *big.Int.
type CurvePointStore struct {
	conn *Conn
}

// NewCurvePointStore creates a new CurvePointStore.
func NewCurvePointStore(conn *Conn) *CurvePointStore {
	return &CurvePointStore{conn: conn}
}

// Compile-time interface check.
var _ storage.CurvePointStore = (*CurvePointStore)(nil)

// InsertBulk adds multiple points. Fails entire batch on duplicate (run_id, seq).
func (s *CurvePointStore) InsertBulk(ctx context.Context, points []*domain.CurvePoint) error {
	if len(points) == 0 {
		return nil
	}

	// Check for intra-batch duplicates
	type key struct {
		runID string
		seq   int
	}
	seen := make(map[key]struct{})
	for _, p := range points {
		if p == nil || p.RunID == "" {
			return storage.ErrInvalidInput
		}
		k := key{p.RunID, p.Seq}
		if _, exists := seen[k]; exists {
			return storage.ErrDuplicateKey
		}
		seen[k] = struct{}{}
	}

	// Check for duplicates against existing DB rows.
	// MergeTree doesn't enforce uniqueness at insert time.
	for _, p := range points {
		exists, err := s.exists(ctx, p.RunID, p.Seq)
		if err != nil {
			return fmt.Errorf("check exists: %w", err)
		}
		if exists {
			return storage.ErrDuplicateKey
		}
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO curve_points (
			run_id, seq, step, x, y, mc_sats, cumulative_quote, progress_pct
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, p := range points {
		err = batch.Append(
			p.RunID, uint32(p.Seq),
			p.Step, p.X, p.Y, p.MCSats, p.CumulativeQuote, p.ProgressPct,
		)
		if err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}

	return nil
}

// GetByRunID retrieves all points for a run, ordered by seq ASC.
func (s *CurvePointStore) GetByRunID(ctx context.Context, runID string) ([]*domain.CurvePoint, error) {
	query := `
		SELECT run_id, seq, step, x, y, mc_sats, cumulative_quote, progress_pct
		FROM curve_points
		WHERE run_id = ?
		ORDER BY seq ASC
	`

	rows, err := s.conn.Query(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("query by run id: %w", err)
	}
	defer rows.Close()

	return scanCurvePoints(rows)
}

// GetBySeqRange retrieves points for a run within [start, end] (inclusive).
func (s *CurvePointStore) GetBySeqRange(ctx context.Context, runID string, start, end int) ([]*domain.CurvePoint, error) {
	query := `
		SELECT run_id, seq, step, x, y, mc_sats, cumulative_quote, progress_pct
		FROM curve_points
		WHERE run_id = ? AND seq >= ? AND seq <= ?
		ORDER BY seq ASC
	`

	rows, err := s.conn.Query(ctx, query, runID, uint32(start), uint32(end))
	if err != nil {
		return nil, fmt.Errorf("query by seq range: %w", err)
	}
	defer rows.Close()

	return scanCurvePoints(rows)
}

// exists checks if a point with the given key exists.
func (s *CurvePointStore) exists(ctx context.Context, runID string, seq int) (bool, error) {
	query := `
		SELECT count(*) FROM curve_points
		WHERE run_id = ? AND seq = ?
	`

	var count uint64
	err := s.conn.QueryRow(ctx, query, runID, uint32(seq)).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Rows interface for scanning
type chRows interface {
	Next() bool
	Scan(dest ...interface{}) error
	Err() error
}

// scanCurvePoints scans multiple rows into a slice.
func scanCurvePoints(rows chRows) ([]*domain.CurvePoint, error) {
	var points []*domain.CurvePoint

	for rows.Next() {
		var p domain.CurvePoint
		var seq uint32

		p.Step = new(big.Int)
		p.X = new(big.Int)
		p.Y = new(big.Int)
		p.MCSats = new(big.Int)
		p.CumulativeQuote = new(big.Int)
		p.ProgressPct = new(big.Int)

		err := rows.Scan(
			&p.RunID, &seq,
			&p.Step, &p.X, &p.Y, &p.MCSats, &p.CumulativeQuote, &p.ProgressPct,
		)
		if err != nil {
			return nil, fmt.Errorf("scan curve point row: %w", err)
		}

		p.Seq = int(seq)
		points = append(points, &p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate curve point rows: %w", err)
	}

	return points, nil
}
