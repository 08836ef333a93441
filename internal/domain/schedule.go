package domain

// ScheduleConfig describes a deterministic mint schedule: NumMints fills
// where fill i pays BaseQuoteIn * (GrowthNum/GrowthDen)^i sats, evaluated
// in exact integer arithmetic. Identical configs always expand to
// identical schedules.
type ScheduleConfig struct {
	ScheduleID  string // "uniform" | "ramp" | "whale" | "dust" | custom
	NumMints    int    // number of fills, > 0
	BaseQuoteIn string // sats paid by the first fill, decimal string
	GrowthNum   int64  // per-fill growth ratio numerator
	GrowthDen   int64  // per-fill growth ratio denominator
}

// Schedule ID constants
const (
	ScheduleUniform = "uniform"
	ScheduleRamp    = "ramp"
	ScheduleWhale   = "whale"
	ScheduleDust    = "dust"
)

// Predefined schedule configurations.
var (
	// ScheduleConfigUniform: steady identical buys.
	ScheduleConfigUniform = ScheduleConfig{
		ScheduleID:  ScheduleUniform,
		NumMints:    50,
		BaseQuoteIn: "1000000",
		GrowthNum:   1,
		GrowthDen:   1,
	}

	// ScheduleConfigRamp: buys growing 10% per fill, momentum-style.
	ScheduleConfigRamp = ScheduleConfig{
		ScheduleID:  ScheduleRamp,
		NumMints:    40,
		BaseQuoteIn: "500000",
		GrowthNum:   11,
		GrowthDen:   10,
	}

	// ScheduleConfigWhale: a handful of very large buys.
	ScheduleConfigWhale = ScheduleConfig{
		ScheduleID:  ScheduleWhale,
		NumMints:    4,
		BaseQuoteIn: "25000000",
		GrowthNum:   1,
		GrowthDen:   1,
	}

	// ScheduleConfigDust: many tiny buys probing rounding behavior.
	ScheduleConfigDust = ScheduleConfig{
		ScheduleID:  ScheduleDust,
		NumMints:    200,
		BaseQuoteIn: "1000",
		GrowthNum:   1,
		GrowthDen:   1,
	}
)

// PredefinedSchedule returns the built-in schedule for an ID.
func PredefinedSchedule(id string) (ScheduleConfig, bool) {
	switch id {
	case ScheduleUniform:
		return ScheduleConfigUniform, true
	case ScheduleRamp:
		return ScheduleConfigRamp, true
	case ScheduleWhale:
		return ScheduleConfigWhale, true
	case ScheduleDust:
		return ScheduleConfigDust, true
	default:
		return ScheduleConfig{}, false
	}
}
