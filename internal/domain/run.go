package domain

// SimulationRun is one execution of a mint schedule against a curve.
// Corresponds to simulation_runs table in PostgreSQL.
type SimulationRun struct {
	RunID      string // PRIMARY KEY, deterministic hash
	CurveID    string // FK to curves
	ScheduleID string // schedule identifier
	NumMints   int    // number of fills executed

	FinalStep     string // step after the last fill
	TotalAssetOut string // sum of tokens filled
	TotalQuoteIn  string // sum of sats paid

	CreatedAt int64 // record creation timestamp (ms)
}

// MintFill is a single fill within a simulation run.
// Corresponds to mint_fills table in PostgreSQL.
type MintFill struct {
	RunID    string // FK to simulation_runs
	Seq      int    // position within the run, 0-based
	Step     string // step before this fill
	QuoteIn  string // sats paid
	AssetOut string // tokens received
	NewStep  string // step after this fill
}
