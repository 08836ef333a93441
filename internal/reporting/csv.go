package reporting

import (
	"fmt"
	"strings"

	"curve-lab/internal/domain"
)

// RenderCSV renders run fills as a CSV string.
func RenderCSV(fills []*domain.MintFill) string {
	var sb strings.Builder

	// Header
	sb.WriteString("run_id,seq,step,quote_in,asset_out,new_step\n")

	// Rows
	for _, f := range fills {
		sb.WriteString(fmt.Sprintf("%s,%d,%s,%s,%s,%s\n",
			f.RunID,
			f.Seq,
			f.Step,
			f.QuoteIn,
			f.AssetOut,
			f.NewStep,
		))
	}

	return sb.String()
}
