// Package simulation executes mint schedules against stored curves and
// persists the resulting runs, fills, and per-fill curve points.
package simulation

import (
	"errors"
	"fmt"

	"github.com/holiman/uint256"

	"curve-lab/internal/domain"
	"curve-lab/pkg/curve"
)

// Schedule errors
var (
	ErrInvalidSchedule = errors.New("invalid mint schedule")
)

// BuildMints expands a schedule config into the per-fill quote amounts.
// Fill i+1 pays floor(fill_i * GrowthNum / GrowthDen) sats, so the
// expansion is exact integer arithmetic and identical configs always
// produce identical schedules.
func BuildMints(cfg domain.ScheduleConfig) ([]*uint256.Int, error) {
	if cfg.NumMints <= 0 {
		return nil, fmt.Errorf("%w: num_mints must be positive", ErrInvalidSchedule)
	}
	if cfg.GrowthNum <= 0 || cfg.GrowthDen <= 0 {
		return nil, fmt.Errorf("%w: growth ratio must be positive", ErrInvalidSchedule)
	}

	base, err := curve.ParseAmount(cfg.BaseQuoteIn)
	if err != nil {
		return nil, fmt.Errorf("%w: base_quote_in: %v", ErrInvalidSchedule, err)
	}
	if base.IsZero() {
		return nil, fmt.Errorf("%w: base_quote_in must be positive", ErrInvalidSchedule)
	}

	num := uint256.NewInt(uint64(cfg.GrowthNum))
	den := uint256.NewInt(uint64(cfg.GrowthDen))

	mints := make([]*uint256.Int, 0, cfg.NumMints)
	q := new(uint256.Int).Set(base)
	for i := 0; i < cfg.NumMints; i++ {
		if q.IsZero() {
			// A decaying ratio reached zero before the schedule was
			// exhausted. The engine rejects zero-sats mints, so the
			// schedule itself is invalid.
			return nil, fmt.Errorf("%w: quote decayed to zero at fill %d", ErrInvalidSchedule, i)
		}
		mints = append(mints, new(uint256.Int).Set(q))

		scaled := new(uint256.Int)
		if _, overflow := scaled.MulOverflow(q, num); overflow {
			return nil, fmt.Errorf("%w: quote overflow at fill %d", ErrInvalidSchedule, i)
		}
		if scaled.BitLen() > curve.AmountBits {
			return nil, fmt.Errorf("%w: quote overflow at fill %d", ErrInvalidSchedule, i)
		}
		q.Div(scaled, den)
	}

	return mints, nil
}
