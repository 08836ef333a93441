package reporting

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"curve-lab/internal/analytics"
	"curve-lab/internal/simulation"
	"curve-lab/internal/storage"
)

// Generator produces run reports from stored data.
type Generator struct {
	curveStore storage.CurveStore
	runStore   storage.SimulationRunStore
	fillStore  storage.MintFillStore
	now        func() time.Time // Injectable clock for deterministic output
}

// NewGenerator creates a new report generator.
func NewGenerator(
	curveStore storage.CurveStore,
	runStore storage.SimulationRunStore,
	fillStore storage.MintFillStore,
) *Generator {
	return &Generator{
		curveStore: curveStore,
		runStore:   runStore,
		fillStore:  fillStore,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// WithClock sets a custom clock function for deterministic output.
func (g *Generator) WithClock(now func() time.Time) *Generator {
	g.now = now
	return g
}

// Generate builds the report for a run.
func (g *Generator) Generate(ctx context.Context, runID string) (*Report, error) {
	run, err := g.runStore.GetByID(ctx, runID)
	if err != nil {
		return nil, err // propagates storage.ErrNotFound
	}

	record, err := g.curveStore.GetByID(ctx, run.CurveID)
	if err != nil {
		return nil, err
	}

	fills, err := g.fillStore.GetByRunID(ctx, runID)
	if err != nil {
		return nil, err
	}

	eng, err := simulation.EngineFromRecord(record)
	if err != nil {
		return nil, err
	}

	summary, err := analytics.ComputeRunSummary(eng, run, fills)
	if err != nil {
		return nil, err
	}

	return &Report{
		GeneratedAt: g.now(),
		Curve:       record,
		Summary:     summary,
		Fills:       fills,
	}, nil
}

// WriteFiles renders the report and writes run_<id>.md and fills_<id>.csv
// into outputDir, creating the directory if needed. Returns the written
// paths.
func (g *Generator) WriteFiles(report *Report, outputDir string) (mdPath, csvPath string, err error) {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return "", "", fmt.Errorf("create output dir: %w", err)
	}

	mdPath = filepath.Join(outputDir, fmt.Sprintf("run_%s.md", report.Summary.RunID))
	if err := os.WriteFile(mdPath, []byte(RenderMarkdown(report)), 0o644); err != nil {
		return "", "", fmt.Errorf("write markdown report: %w", err)
	}

	csvPath = filepath.Join(outputDir, fmt.Sprintf("fills_%s.csv", report.Summary.RunID))
	if err := os.WriteFile(csvPath, []byte(RenderCSV(report.Fills)), 0o644); err != nil {
		return "", "", fmt.Errorf("write fills csv: %w", err)
	}

	return mdPath, csvPath, nil
}
