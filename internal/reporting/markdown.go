package reporting

import (
	"fmt"
	"strings"
	"time"
)

// RenderMarkdown renders a run report as a Markdown string.
func RenderMarkdown(r *Report) string {
	var sb strings.Builder

	// Header
	sb.WriteString(fmt.Sprintf("# Simulation Run %s\n\n", r.Summary.RunID))
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", r.GeneratedAt.Format(time.RFC3339)))
	sb.WriteString(fmt.Sprintf("Curve: %s | Schedule: %s | Mints: %d\n\n",
		r.Summary.CurveID, r.Summary.ScheduleID, r.Summary.NumMints))

	// Curve Config
	sb.WriteString("## Curve Config\n\n")
	sb.WriteString("| Parameter | Value |\n")
	sb.WriteString("|-----------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Total Supply | %s |\n", r.Curve.TotalSupply))
	sb.WriteString(fmt.Sprintf("| Sell Amount | %s |\n", r.Curve.SellAmount))
	sb.WriteString(fmt.Sprintf("| Virtual Tokens | %s |\n", r.Curve.VirtualTokens))
	sb.WriteString(fmt.Sprintf("| MC Target (sats) | %s |\n", r.Curve.MCTargetSats))
	sb.WriteString(fmt.Sprintf("| Y0 | %s |\n", r.Curve.Y0))
	sb.WriteString(fmt.Sprintf("| X0 | %s |\n", r.Curve.X0))
	sb.WriteString(fmt.Sprintf("| K | %s |\n", r.Curve.K))
	sb.WriteString("\n")

	// Run Summary
	sb.WriteString("## Run Summary\n\n")
	sb.WriteString("| Metric | Value |\n")
	sb.WriteString("|--------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Final Step | %s |\n", r.Summary.FinalStep))
	sb.WriteString(fmt.Sprintf("| Total Quote In (sats) | %s |\n", r.Summary.TotalQuoteIn))
	sb.WriteString(fmt.Sprintf("| Total Asset Out | %s |\n", r.Summary.TotalAssetOut))
	sb.WriteString(fmt.Sprintf("| Market Cap (sats) | %s |\n", r.Summary.MCSats))
	sb.WriteString(fmt.Sprintf("| Cumulative Quote (sats) | %s |\n", r.Summary.CumulativeQuote))
	sb.WriteString(fmt.Sprintf("| Total Raise Capacity (sats) | %s |\n", r.Summary.TotalRaiseSats))
	sb.WriteString(fmt.Sprintf("| Final Market Cap (sats) | %s |\n", r.Summary.FinalMCSats))
	sb.WriteString(fmt.Sprintf("| Progress (%%) | %s |\n", r.Summary.ProgressPct))
	soldOut := "no"
	if r.Summary.SoldOut {
		soldOut = "yes"
	}
	sb.WriteString(fmt.Sprintf("| Sold Out | %s |\n", soldOut))
	sb.WriteString("\n")

	// Fills
	sb.WriteString("## Fills\n\n")
	if len(r.Fills) > 0 {
		sb.WriteString("| Seq | Step | Quote In | Asset Out | New Step |\n")
		sb.WriteString("|-----|------|----------|-----------|----------|\n")
		for _, f := range r.Fills {
			sb.WriteString(fmt.Sprintf("| %d | %s | %s | %s | %s |\n",
				f.Seq, f.Step, f.QuoteIn, f.AssetOut, f.NewStep))
		}
	} else {
		sb.WriteString("No fills recorded.\n")
	}
	sb.WriteString("\n")

	return sb.String()
}
