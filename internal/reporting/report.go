// Package reporting renders simulation runs as markdown reports and CSV
// fill exports.
package reporting

import (
	"time"

	"curve-lab/internal/analytics"
	"curve-lab/internal/domain"
)

// Report is the renderable view of one simulation run.
type Report struct {
	GeneratedAt time.Time

	Curve   *domain.CurveRecord
	Summary *analytics.RunSummary

	// Fills in seq order.
	Fills []*domain.MintFill
}
