// Package outwriter has output and writer logic.
package outwriter

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/huangsam/trendgate/internal/contract"
	"github.com/huangsam/trendgate/schema"
)

// LogAnalysisHeader prints a concise, 2-line header before an analyze run.
func LogAnalysisHeader(cfg *contract.Config, rowCount int) {
	writeAnalysisHeader(os.Stdout, cfg, rowCount)
}

func writeAnalysisHeader(w io.Writer, cfg *contract.Config, rowCount int) {
	inputs := "stdin"
	if len(cfg.InputFiles) > 0 {
		inputs = strings.Join(cfg.InputFiles, ", ")
	}
	rowsPrefix, monthPrefix := "", ""
	if cfg.UseEmojis {
		rowsPrefix, monthPrefix = "🔎 ", "📅 "
	}

	// Line 1: The input summary
	_, _ = fmt.Fprintf(w, "%sRows: %d (Inputs: %s)\n", rowsPrefix, rowCount, inputs)

	// Line 2: The month the analysis is evaluated at
	_, _ = fmt.Fprintf(w, "%sMonth: %s (Lead time: %d months)\n", monthPrefix, cfg.Now.Format(contract.MonthFormat), cfg.LeadMonths)
}

// verdictLabel returns the colored or plain verdict label for tables.
func verdictLabel(v schema.Verdict, cfg *contract.Config) string {
	if cfg.UseColors {
		return contract.GetColorLabel(v)
	}
	return contract.GetPlainLabel(v)
}

// limitResults returns at most cfg.ResultLimit results. A zero limit keeps all of them.
func limitResults(results []schema.RowResult, cfg *contract.Config) []schema.RowResult {
	if cfg.ResultLimit > 0 && len(results) > cfg.ResultLimit {
		return results[:cfg.ResultLimit]
	}
	return results
}

// formatCounts renders verdict counts in display order.
func formatCounts(counts map[schema.Verdict]int) string {
	parts := make([]string, 0, len(schema.AllVerdicts))
	for _, v := range schema.AllVerdicts {
		parts = append(parts, fmt.Sprintf("%s: %d", string(v), counts[v]))
	}
	return strings.Join(parts, ", ")
}
