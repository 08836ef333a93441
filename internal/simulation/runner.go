package simulation

import (
	"context"
	"fmt"
	"time"

	"github.com/holiman/uint256"

	"curve-lab/internal/domain"
	"curve-lab/internal/idhash"
	"curve-lab/internal/storage"
	"curve-lab/pkg/curve"
)

// Runner executes mint schedules against stored curves.
type Runner struct {
	curveStore storage.CurveStore
	runStore   storage.SimulationRunStore
	fillStore  storage.MintFillStore
	pointStore storage.CurvePointStore
	onFill     func(*domain.MintFill)
	now        func() time.Time
}

// RunnerOptions contains configuration for creating a Runner. The fill and
// point stores and the OnFill callback are optional; a nil store skips that
// persistence step.
type RunnerOptions struct {
	CurveStore storage.CurveStore
	RunStore   storage.SimulationRunStore
	FillStore  storage.MintFillStore
	PointStore storage.CurvePointStore

	// OnFill is invoked once per fill, in order, after the run persists.
	// Used by the websocket stream to relay fills to the client.
	OnFill func(*domain.MintFill)

	// Now overrides the clock; nil means time.Now.
	Now func() time.Time
}

// NewRunner creates a simulation runner.
func NewRunner(opts RunnerOptions) *Runner {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Runner{
		curveStore: opts.CurveStore,
		runStore:   opts.RunStore,
		fillStore:  opts.FillStore,
		pointStore: opts.PointStore,
		onFill:     opts.OnFill,
		now:        now,
	}
}

// Run executes a mint schedule against a stored curve.
// Steps:
//  1. Load the curve record and rebuild the engine from its config
//  2. Expand the schedule into per-fill quote amounts
//  3. Apply the fills sequentially from step 0
//  4. Derive per-fill records and curve state points
//  5. Persist the run, its fills, and its points
func (r *Runner) Run(ctx context.Context, curveID string, sched domain.ScheduleConfig) (*domain.SimulationRun, error) {
	// 1. Load curve and rebuild engine
	record, err := r.curveStore.GetByID(ctx, curveID)
	if err != nil {
		return nil, err // propagates storage.ErrNotFound
	}

	eng, err := EngineFromRecord(record)
	if err != nil {
		return nil, err
	}

	// 2. Expand schedule
	mints, err := BuildMints(sched)
	if err != nil {
		return nil, err
	}

	// 3. Apply fills. Fails atomically on the first mint error.
	fills, err := eng.SimulateMints(mints)
	if err != nil {
		return nil, err
	}

	runID := idhash.ComputeRunID(curveID, sched.ScheduleID, sched.NumMints,
		sched.BaseQuoteIn, sched.GrowthNum, sched.GrowthDen)

	// 4. Derive fill records and points
	maxStep := eng.MaxStep()
	totalAssetOut := new(uint256.Int)
	totalQuoteIn := new(uint256.Int)
	finalStep := new(uint256.Int)

	mintFills := make([]*domain.MintFill, 0, len(fills))
	points := make([]*domain.CurvePoint, 0, len(fills))

	for i := range fills {
		f := &fills[i]

		newStep := new(uint256.Int).Add(&f.Step, &f.AssetOut)
		if newStep.Gt(maxStep) {
			newStep.Set(maxStep)
		}
		finalStep.Set(newStep)

		totalAssetOut.Add(totalAssetOut, &f.AssetOut)
		totalQuoteIn.Add(totalQuoteIn, mints[i])

		mintFills = append(mintFills, &domain.MintFill{
			RunID:    runID,
			Seq:      i,
			Step:     curve.FormatAmount(&f.Step),
			QuoteIn:  curve.FormatAmount(mints[i]),
			AssetOut: curve.FormatAmount(&f.AssetOut),
			NewStep:  curve.FormatAmount(newStep),
		})

		point, err := buildPoint(eng, runID, i, newStep)
		if err != nil {
			return nil, err
		}
		points = append(points, point)
	}

	run := &domain.SimulationRun{
		RunID:         runID,
		CurveID:       curveID,
		ScheduleID:    sched.ScheduleID,
		NumMints:      sched.NumMints,
		FinalStep:     curve.FormatAmount(finalStep),
		TotalAssetOut: curve.FormatAmount(totalAssetOut),
		TotalQuoteIn:  curve.FormatAmount(totalQuoteIn),
		CreatedAt:     r.now().UnixMilli(),
	}

	// 5. Persist
	if r.runStore != nil {
		if err := r.runStore.Insert(ctx, run); err != nil {
			return nil, err
		}
	}
	if r.fillStore != nil {
		if err := r.fillStore.InsertBulk(ctx, mintFills); err != nil {
			return nil, err
		}
	}
	if r.pointStore != nil {
		if err := r.pointStore.InsertBulk(ctx, points); err != nil {
			return nil, err
		}
	}

	if r.onFill != nil {
		for _, f := range mintFills {
			r.onFill(f)
		}
	}

	return run, nil
}

// buildPoint captures the curve state after a fill landed at newStep.
func buildPoint(eng *curve.Curve, runID string, seq int, newStep *uint256.Int) (*domain.CurvePoint, error) {
	snap, err := eng.Snapshot(newStep)
	if err != nil {
		return nil, err
	}
	mc, err := eng.MCSatsAtStep(newStep)
	if err != nil {
		return nil, err
	}
	cum, err := eng.CumulativeQuoteToStep(newStep)
	if err != nil {
		return nil, err
	}
	progress := eng.ProgressAtStep(newStep)

	return &domain.CurvePoint{
		RunID:           runID,
		Seq:             seq,
		Step:            snap.Step.ToBig(),
		X:               snap.X.ToBig(),
		Y:               snap.Y.ToBig(),
		MCSats:          mc.ToBig(),
		CumulativeQuote: cum.ToBig(),
		ProgressPct:     progress.ToBig(),
	}, nil
}

// EngineFromRecord rebuilds the pure engine from a stored curve record.
func EngineFromRecord(record *domain.CurveRecord) (*curve.Curve, error) {
	totalSupply, err := curve.ParseAmount(record.TotalSupply)
	if err != nil {
		return nil, fmt.Errorf("parse total_supply: %w", err)
	}
	sellAmount, err := curve.ParseAmount(record.SellAmount)
	if err != nil {
		return nil, fmt.Errorf("parse sell_amount: %w", err)
	}
	virtualTokens, err := curve.ParseAmount(record.VirtualTokens)
	if err != nil {
		return nil, fmt.Errorf("parse virtual_tokens: %w", err)
	}
	mcTargetSats, err := curve.ParseAmount(record.MCTargetSats)
	if err != nil {
		return nil, fmt.Errorf("parse mc_target_sats: %w", err)
	}

	return curve.New(curve.Config{
		TotalSupply:   totalSupply,
		SellAmount:    sellAmount,
		VirtualTokens: virtualTokens,
		MCTargetSats:  mcTargetSats,
	})
}
