package domain

import "math/big"

// CurvePoint is a per-fill analytics sample for a simulation run.
// Corresponds to curve_points table in ClickHouse; the amount fields map to
// UInt128 columns, which the driver carries as big.Int.
type CurvePoint struct {
	RunID string
	Seq   int

	Step            *big.Int // step after the fill
	X               *big.Int // sats-side reserve
	Y               *big.Int // token-side reserve
	MCSats          *big.Int // fully diluted valuation at this step
	CumulativeQuote *big.Int // sats raised from step 0
	ProgressPct     *big.Int // progress percentage (total-supply denominator)
}
