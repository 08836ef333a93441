package domain

// CurveRecord is a registered bonding curve.
// Corresponds to curves table in PostgreSQL.
//
// All amounts are decimal strings: they are 128-bit quantities and must
// cross storage and API boundaries without precision loss.
type CurveRecord struct {
	CurveID       string // PRIMARY KEY, deterministic hash
	TotalSupply   string // total token supply
	SellAmount    string // tokens sold over the curve
	VirtualTokens string // virtual token reserve
	MCTargetSats  string // FDV target at completion, in sats

	// Derived invariants, stored for inspection and reporting.
	Y0 string // token-side reserve at step 0
	X0 string // sats-side reserve at step 0
	K  string // constant-product invariant

	CreatedAt int64 // record creation timestamp (ms)
}
