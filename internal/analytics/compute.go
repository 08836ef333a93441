// Package analytics derives pure summaries from the curve engine and
// stored simulation data. Nothing here touches storage or mutates state.
package analytics

import (
	"errors"
	"fmt"

	"github.com/holiman/uint256"

	"curve-lab/internal/domain"
	"curve-lab/pkg/curve"
)

// Analytics errors
var (
	ErrFillMismatch = errors.New("fills do not match run totals")
)

// StepAnalytics is the curve state viewed at a single step. Amounts are
// decimal strings; price is an exact fraction.
type StepAnalytics struct {
	Step            string `json:"step"`
	PriceNum        string `json:"price_num"`
	PriceDen        string `json:"price_den"`
	MCSats          string `json:"mc_sats"`
	CumulativeQuote string `json:"cumulative_quote"`
	TotalRaiseSats  string `json:"total_raise_sats"`
	ProgressPct     string `json:"progress_pct"`
}

// RunSummary aggregates a completed simulation run.
type RunSummary struct {
	RunID      string `json:"run_id"`
	CurveID    string `json:"curve_id"`
	ScheduleID string `json:"schedule_id"`
	NumMints   int    `json:"num_mints"`

	FinalStep     string `json:"final_step"`
	TotalQuoteIn  string `json:"total_quote_in"`
	TotalAssetOut string `json:"total_asset_out"`

	MCSats          string `json:"mc_sats"`           // market cap at the final step
	CumulativeQuote string `json:"cumulative_quote"`  // sats absorbed up to the final step
	TotalRaiseSats  string `json:"total_raise_sats"`  // sats raised if the full window sells
	FinalMCSats     string `json:"final_mc_sats"`     // market cap at curve completion
	ProgressPct     string `json:"progress_pct"`      // final step over total supply
	SoldOut         bool   `json:"sold_out"`          // final step reached the sellable window
}

// ComputeStepAnalytics evaluates the curve at a step.
func ComputeStepAnalytics(eng *curve.Curve, step *uint256.Int) (*StepAnalytics, error) {
	snap, err := eng.Snapshot(step)
	if err != nil {
		return nil, err
	}
	mc, err := eng.MCSatsAtStep(step)
	if err != nil {
		return nil, err
	}
	cum, err := eng.CumulativeQuoteToStep(step)
	if err != nil {
		return nil, err
	}

	return &StepAnalytics{
		Step:            curve.FormatAmount(step),
		PriceNum:        curve.FormatAmount(snap.PriceNum()),
		PriceDen:        curve.FormatAmount(snap.PriceDen()),
		MCSats:          curve.FormatAmount(mc),
		CumulativeQuote: curve.FormatAmount(cum),
		TotalRaiseSats:  curve.FormatAmount(eng.TotalRaiseSats()),
		ProgressPct:     curve.FormatAmount(eng.ProgressAtStep(step)),
	}, nil
}

// ComputeRunSummary derives the summary of a run from the engine, the run
// record, and its fills. Totals are recomputed from the fills and must
// match the record; a mismatch means the stored data is inconsistent.
func ComputeRunSummary(eng *curve.Curve, run *domain.SimulationRun, fills []*domain.MintFill) (*RunSummary, error) {
	totalQuoteIn := new(uint256.Int)
	totalAssetOut := new(uint256.Int)
	for _, f := range fills {
		q, err := curve.ParseAmount(f.QuoteIn)
		if err != nil {
			return nil, fmt.Errorf("parse fill quote_in: %w", err)
		}
		a, err := curve.ParseAmount(f.AssetOut)
		if err != nil {
			return nil, fmt.Errorf("parse fill asset_out: %w", err)
		}
		totalQuoteIn.Add(totalQuoteIn, q)
		totalAssetOut.Add(totalAssetOut, a)
	}

	if curve.FormatAmount(totalQuoteIn) != run.TotalQuoteIn ||
		curve.FormatAmount(totalAssetOut) != run.TotalAssetOut {
		return nil, ErrFillMismatch
	}

	finalStep, err := curve.ParseAmount(run.FinalStep)
	if err != nil {
		return nil, fmt.Errorf("parse final_step: %w", err)
	}

	mc, err := eng.MCSatsAtStep(finalStep)
	if err != nil {
		return nil, err
	}
	cum, err := eng.CumulativeQuoteToStep(finalStep)
	if err != nil {
		return nil, err
	}
	finalMC, err := eng.FinalMCSats()
	if err != nil {
		return nil, err
	}

	return &RunSummary{
		RunID:      run.RunID,
		CurveID:    run.CurveID,
		ScheduleID: run.ScheduleID,
		NumMints:   run.NumMints,

		FinalStep:     run.FinalStep,
		TotalQuoteIn:  run.TotalQuoteIn,
		TotalAssetOut: run.TotalAssetOut,

		MCSats:          curve.FormatAmount(mc),
		CumulativeQuote: curve.FormatAmount(cum),
		TotalRaiseSats:  curve.FormatAmount(eng.TotalRaiseSats()),
		FinalMCSats:     curve.FormatAmount(finalMC),
		ProgressPct:     curve.FormatAmount(eng.ProgressAtStep(finalStep)),
		SoldOut:         finalStep.Eq(eng.MaxStep()),
	}, nil
}
