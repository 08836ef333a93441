package memory

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"curve-lab/internal/domain"
	"curve-lab/internal/storage"
)

func testPoint(runID string, seq int, step int64) *domain.CurvePoint {
	return &domain.CurvePoint{
		RunID:           runID,
		Seq:             seq,
		Step:            big.NewInt(step),
		X:               big.NewInt(40000000),
		Y:               big.NewInt(1000000000),
		MCSats:          big.NewInt(40000000),
		CumulativeQuote: big.NewInt(0),
		ProgressPct:     big.NewInt(0),
	}
}

func TestCurvePointStore_InsertBulkAndGet(t *testing.T) {
	s := NewCurvePointStore()
	ctx := context.Background()

	points := []*domain.CurvePoint{
		testPoint("r1", 1, 100),
		testPoint("r1", 0, 0),
		testPoint("r2", 0, 0),
	}
	if err := s.InsertBulk(ctx, points); err != nil {
		t.Fatalf("InsertBulk: %v", err)
	}

	got, err := s.GetByRunID(ctx, "r1")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d points, want 2", len(got))
	}
	if got[0].Seq != 0 || got[1].Seq != 1 {
		t.Errorf("order = [%d, %d], want [0, 1]", got[0].Seq, got[1].Seq)
	}
}

func TestCurvePointStore_CopiesBigInts(t *testing.T) {
	s := NewCurvePointStore()
	ctx := context.Background()

	p := testPoint("r1", 0, 42)
	if err := s.InsertBulk(ctx, []*domain.CurvePoint{p}); err != nil {
		t.Fatal(err)
	}

	// Mutating the caller's big.Int must not leak into the store.
	p.Step.SetInt64(999)

	got, err := s.GetByRunID(ctx, "r1")
	if err != nil {
		t.Fatal(err)
	}
	if got[0].Step.Int64() != 42 {
		t.Errorf("Step = %s, want 42", got[0].Step)
	}

	// And the reverse: mutating a returned point must not affect the store.
	got[0].X.SetInt64(1)
	again, err := s.GetByRunID(ctx, "r1")
	if err != nil {
		t.Fatal(err)
	}
	if again[0].X.Int64() != 40000000 {
		t.Errorf("X = %s, want 40000000", again[0].X)
	}
}

func TestCurvePointStore_GetBySeqRange(t *testing.T) {
	s := NewCurvePointStore()
	ctx := context.Background()

	var points []*domain.CurvePoint
	for i := 0; i < 10; i++ {
		points = append(points, testPoint("r1", i, int64(i*100)))
	}
	if err := s.InsertBulk(ctx, points); err != nil {
		t.Fatal(err)
	}

	got, err := s.GetBySeqRange(ctx, "r1", 3, 6)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 4 {
		t.Fatalf("got %d points, want 4", len(got))
	}
	if got[0].Seq != 3 || got[3].Seq != 6 {
		t.Errorf("range = [%d..%d], want [3..6]", got[0].Seq, got[3].Seq)
	}
}

func TestCurvePointStore_Duplicate(t *testing.T) {
	s := NewCurvePointStore()
	ctx := context.Background()

	if err := s.InsertBulk(ctx, []*domain.CurvePoint{testPoint("r1", 0, 0)}); err != nil {
		t.Fatal(err)
	}
	err := s.InsertBulk(ctx, []*domain.CurvePoint{testPoint("r1", 0, 0)})
	if !errors.Is(err, storage.ErrDuplicateKey) {
		t.Errorf("err = %v, want ErrDuplicateKey", err)
	}
}
