// Package main runs a one-shot simulation: it builds a curve from the
// given parameters, executes a mint schedule against it in memory, prints
// the run summary, and optionally writes the report files.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"curve-lab/internal/analytics"
	"curve-lab/internal/domain"
	"curve-lab/internal/idhash"
	"curve-lab/internal/observability"
	"curve-lab/internal/reporting"
	"curve-lab/internal/simulation"
	"curve-lab/internal/storage/memory"
	"curve-lab/pkg/curve"
)

func main() {
	// Curve parameters (base units, decimal strings)
	totalSupply := flag.String("total-supply", "1000000000", "Token total supply in base units")
	sellAmount := flag.String("sell-amount", "800000000", "Sellable window in base units")
	virtualTokens := flag.String("virtual-tokens", "200000000", "Virtual token reserve in base units")
	mcTargetSats := flag.String("mc-target-sats", "1000000000", "Market cap target in sats")

	// Schedule parameters
	scheduleID := flag.String("schedule", "uniform", "Predefined schedule ID (uniform, ramp, whale, dust) or custom label")
	numMints := flag.Int("num-mints", 0, "Number of mints (custom schedule)")
	baseQuoteIn := flag.String("base-quote-in", "", "First mint quote in sats (custom schedule)")
	growthNum := flag.Int64("growth-num", 1, "Growth ratio numerator (custom schedule)")
	growthDen := flag.Int64("growth-den", 1, "Growth ratio denominator (custom schedule)")

	outputDir := flag.String("output-dir", "", "Write run_<id>.md and fills_<id>.csv here (optional)")
	printFills := flag.Bool("print-fills", false, "Print every fill as it executes")
	flag.Parse()

	ctx := context.Background()

	sched, err := resolveSchedule(*scheduleID, *numMints, *baseQuoteIn, *growthNum, *growthDen)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	// Validate the config through the engine before storing anything.
	eng, err := buildEngine(*totalSupply, *sellAmount, *virtualTokens, *mcTargetSats)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: invalid curve config: %v\n", err)
		os.Exit(1)
	}

	curves := memory.NewCurveStore()
	runs := memory.NewSimulationRunStore()
	fills := memory.NewMintFillStore()

	record := &domain.CurveRecord{
		CurveID:       idhash.ComputeCurveID(*totalSupply, *sellAmount, *virtualTokens, *mcTargetSats),
		TotalSupply:   *totalSupply,
		SellAmount:    *sellAmount,
		VirtualTokens: *virtualTokens,
		MCTargetSats:  *mcTargetSats,
		Y0:            curve.FormatAmount(eng.Y0()),
		X0:            curve.FormatAmount(eng.X0()),
		K:             curve.FormatAmount(eng.K()),
		CreatedAt:     time.Now().UnixMilli(),
	}
	if err := curves.Insert(ctx, record); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	var onFill func(*domain.MintFill)
	if *printFills {
		onFill = func(f *domain.MintFill) {
			fmt.Printf("fill %d: step=%s quote_in=%s asset_out=%s new_step=%s\n",
				f.Seq, f.Step, f.QuoteIn, f.AssetOut, f.NewStep)
		}
	}

	runner := simulation.NewRunner(simulation.RunnerOptions{
		CurveStore: curves,
		RunStore:   runs,
		FillStore:  fills,
		OnFill:     onFill,
	})

	run, err := runner.Run(ctx, record.CurveID, sched)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: simulation failed: %v\n", err)
		os.Exit(1)
	}

	runFills, err := fills.GetByRunID(ctx, run.RunID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	summary, err := analytics.ComputeRunSummary(eng, run, runFills)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	out, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(string(out))

	if *outputDir != "" {
		g := reporting.NewGenerator(curves, runs, fills)
		report, err := g.Generate(ctx, run.RunID)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error generating report: %v\n", err)
			os.Exit(1)
		}
		mdPath, csvPath, err := g.WriteFiles(report, *outputDir)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error writing report: %v\n", err)
			os.Exit(1)
		}
		observability.RecordReportGenerated()
		fmt.Printf("Report written:\n  - %s\n  - %s\n", mdPath, csvPath)
	}
}

// resolveSchedule picks a predefined schedule unless custom parameters are
// given.
func resolveSchedule(scheduleID string, numMints int, baseQuoteIn string, growthNum, growthDen int64) (domain.ScheduleConfig, error) {
	if numMints == 0 && baseQuoteIn == "" {
		cfg, ok := domain.PredefinedSchedule(scheduleID)
		if !ok {
			return domain.ScheduleConfig{}, fmt.Errorf("unknown schedule %q (set --num-mints and --base-quote-in for a custom one)", scheduleID)
		}
		return cfg, nil
	}
	return domain.ScheduleConfig{
		ScheduleID:  scheduleID,
		NumMints:    numMints,
		BaseQuoteIn: baseQuoteIn,
		GrowthNum:   growthNum,
		GrowthDen:   growthDen,
	}, nil
}

func buildEngine(totalSupply, sellAmount, virtualTokens, mcTargetSats string) (*curve.Curve, error) {
	ts, err := curve.ParseAmount(totalSupply)
	if err != nil {
		return nil, err
	}
	sa, err := curve.ParseAmount(sellAmount)
	if err != nil {
		return nil, err
	}
	vt, err := curve.ParseAmount(virtualTokens)
	if err != nil {
		return nil, err
	}
	mc, err := curve.ParseAmount(mcTargetSats)
	if err != nil {
		return nil, err
	}
	return curve.New(curve.Config{
		TotalSupply:   ts,
		SellAmount:    sa,
		VirtualTokens: vt,
		MCTargetSats:  mc,
	})
}
