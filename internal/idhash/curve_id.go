// Package idhash derives deterministic identifiers for curves and
// simulation runs. The same inputs always reproduce the same ID, so a
// replayed registration or run surfaces as a duplicate-key insert instead
// of a second row.
package idhash

import (
	"crypto/sha256"
	"fmt"

	"github.com/mr-tron/base58"
)

// ComputeCurveID computes a deterministic curve_id.
// Formula: base58(SHA256(total_supply|sell_amount|virtual_tokens|mc_target_sats))
// over the decimal-string amounts.
func ComputeCurveID(totalSupply, sellAmount, virtualTokens, mcTargetSats string) string {
	data := fmt.Sprintf("%s|%s|%s|%s", totalSupply, sellAmount, virtualTokens, mcTargetSats)
	hash := sha256.Sum256([]byte(data))
	return base58.Encode(hash[:])
}

// ComputeRunID computes a deterministic run_id for a schedule executed
// against a curve.
// Formula: base58(SHA256(curve_id|schedule_id|num_mints|base_quote_in|growth_num|growth_den))
func ComputeRunID(curveID, scheduleID string, numMints int, baseQuoteIn string, growthNum, growthDen int64) string {
	data := fmt.Sprintf("%s|%s|%d|%s|%d|%d",
		curveID,
		scheduleID,
		numMints,
		baseQuoteIn,
		growthNum,
		growthDen,
	)
	hash := sha256.Sum256([]byte(data))
	return base58.Encode(hash[:])
}
