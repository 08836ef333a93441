package postgres

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"curve-lab/internal/domain"
	"curve-lab/internal/storage"
)

// createTestCurve inserts a test curve and returns its ID.
func createTestCurve(t *testing.T, ctx context.Context, pool *Pool, id string) string {
	t.Helper()

	store := NewCurveStore(pool)
	curve := &domain.CurveRecord{
		CurveID:       id,
		TotalSupply:   "1000000000",
		SellAmount:    "800000000",
		VirtualTokens: "200000000",
		MCTargetSats:  "1000000000",
		Y0:            "1000000000",
		X0:            "40000000",
		K:             "40000000000000000",
		CreatedAt:     1700000000000,
	}

	err := store.Insert(ctx, curve)
	require.NoError(t, err)
	return id
}

func TestCurveStore_InsertAndGetByID(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewCurveStore(pool)

	curve := &domain.CurveRecord{
		CurveID:       "curve-1",
		TotalSupply:   "1000000000",
		SellAmount:    "800000000",
		VirtualTokens: "200000000",
		MCTargetSats:  "1000000000",
		Y0:            "1000000000",
		X0:            "40000000",
		K:             "40000000000000000",
		CreatedAt:     1700000000000,
	}

	err := store.Insert(ctx, curve)
	require.NoError(t, err)

	got, err := store.GetByID(ctx, "curve-1")
	require.NoError(t, err)

	assert.Equal(t, curve.CurveID, got.CurveID)
	assert.Equal(t, curve.TotalSupply, got.TotalSupply)
	assert.Equal(t, curve.SellAmount, got.SellAmount)
	assert.Equal(t, curve.VirtualTokens, got.VirtualTokens)
	assert.Equal(t, curve.MCTargetSats, got.MCTargetSats)
	assert.Equal(t, curve.Y0, got.Y0)
	assert.Equal(t, curve.X0, got.X0)
	assert.Equal(t, curve.K, got.K)
	assert.Equal(t, curve.CreatedAt, got.CreatedAt)
}

func TestCurveStore_FullWidthAmountsRoundTrip(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewCurveStore(pool)

	// 2^128 - 1, the largest representable amount.
	max128 := "340282366920938463463374607431768211455"
	curve := &domain.CurveRecord{
		CurveID:       "curve-max",
		TotalSupply:   max128,
		SellAmount:    max128,
		VirtualTokens: max128,
		MCTargetSats:  max128,
		Y0:            max128,
		X0:            max128,
		K:             max128,
		CreatedAt:     1700000000000,
	}

	require.NoError(t, store.Insert(ctx, curve))

	got, err := store.GetByID(ctx, "curve-max")
	require.NoError(t, err)
	assert.Equal(t, max128, got.TotalSupply)
	assert.Equal(t, max128, got.K)
}

func TestCurveStore_InsertDuplicate(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	createTestCurve(t, ctx, pool, "curve-dup")

	store := NewCurveStore(pool)
	err := store.Insert(ctx, &domain.CurveRecord{
		CurveID:       "curve-dup",
		TotalSupply:   "1",
		SellAmount:    "1",
		VirtualTokens: "1",
		MCTargetSats:  "1",
		Y0:            "1",
		X0:            "1",
		K:             "1",
		CreatedAt:     1,
	})
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)
}

func TestCurveStore_GetByIDNotFound(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewCurveStore(pool)
	_, err := store.GetByID(context.Background(), "missing")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestCurveStore_ListOrdering(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewCurveStore(pool)

	for _, c := range []struct {
		id        string
		createdAt int64
	}{
		{"curve-b", 2000},
		{"curve-c", 1000},
		{"curve-a", 2000},
	} {
		err := store.Insert(ctx, &domain.CurveRecord{
			CurveID:       c.id,
			TotalSupply:   "1000000000",
			SellAmount:    "800000000",
			VirtualTokens: "200000000",
			MCTargetSats:  "1000000000",
			Y0:            "1000000000",
			X0:            "40000000",
			K:             "40000000000000000",
			CreatedAt:     c.createdAt,
		})
		require.NoError(t, err)
	}

	curves, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, curves, 3)
	assert.Equal(t, "curve-c", curves[0].CurveID)
	assert.Equal(t, "curve-a", curves[1].CurveID)
	assert.Equal(t, "curve-b", curves[2].CurveID)
}
