package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/huangsam/trendgate/internal/contract"
	"github.com/huangsam/trendgate/schema"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// PrintCycleReports writes the cycle reports to the configured output file, or stdout.
func PrintCycleReports(reports []schema.CycleReport, cfg *contract.Config, duration time.Duration) error {
	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		return WriteCycleReports(w, reports, cfg, duration)
	}, "Wrote "+string(cfg.Output))
}

// WriteCycleReports outputs the per-keyword seasonality breakdown of every row.
func WriteCycleReports(w io.Writer, reports []schema.CycleReport, cfg *contract.Config, duration time.Duration) error {
	fmtFloat, _ := createFormatters(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		if err := writeJSON(w, reports); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := writeCSVWithHeader(w, cycleCSVHeader, func(cw *csv.Writer) error {
			return writeCSVResultsForCycles(cw, reports, fmtFloat)
		}); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	case schema.TextOut:
		return writeCycleTables(w, reports, fmtFloat, duration)
	default:
		return fmt.Errorf("output format %s is not supported for cycle reports", cfg.Output)
	}
	return nil
}

// writeCycleTables writes one keyword table and the cycle text per row.
func writeCycleTables(w io.Writer, reports []schema.CycleReport, fmtFloat func(float64) string, duration time.Duration) error {
	for _, r := range reports {
		if _, err := fmt.Fprintf(w, "Row %s\n", r.ID); err != nil {
			return err
		}

		table := tablewriter.NewWriter(w)
		table.Header([]string{"Keyword", "Flow", "Main Peak", "Score", "Strength", "Stability", "Secondary"})
		table.Configure(func(cfg *tablewriter.Config) {
			cfg.Row.Alignment.Global = tw.AlignLeft
		})
		data := make([][]string, 0, len(r.Keywords))
		for _, k := range r.Keywords {
			data = append(data, []string{
				k.Keyword,
				k.FlowType.Label(),
				formatMonths(k.MainPeak.Months),
				fmtFloat(k.MainPeak.Score),
				fmtFloat(k.Strength),
				fmtFloat(k.Stability),
				formatPeaks(k.SecondaryPeaks),
			})
		}
		if err := table.Bulk(data); err != nil {
			return err
		}
		if err := table.Render(); err != nil {
			return err
		}

		if _, err := fmt.Fprintf(w, "%s\n", r.Text); err != nil {
			return err
		}
		if r.LowFlow.Reason != "" {
			if _, err := fmt.Fprintf(w, "low flow: %s\n", r.LowFlow.Reason); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintln(w); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "Detected cycles for %d rows in %v\n", len(reports), duration)
	return err
}

var cycleCSVHeader = []string{
	"id",
	"keyword",
	"flow_type",
	"main_peak",
	"main_peak_score",
	"strength",
	"stability",
	"secondary_peaks",
	"consensus_flow_type",
	"consensus_cycle",
	"low_months",
}

// writeCSVResultsForCycles writes one CSV record per keyword.
func writeCSVResultsForCycles(w *csv.Writer, reports []schema.CycleReport, fmtFloat func(float64) string) error {
	for _, r := range reports {
		for _, k := range r.Keywords {
			rec := []string{
				r.ID,
				k.Keyword,
				string(k.FlowType),
				formatMonths(k.MainPeak.Months),
				fmtFloat(k.MainPeak.Score),
				fmtFloat(k.Strength),
				fmtFloat(k.Stability),
				formatPeaks(k.SecondaryPeaks),
				string(r.Consensus.FlowType),
				formatCycle(r.Consensus.Groups),
				formatMonths(r.LowFlow.Months),
			}
			if err := w.Write(rec); err != nil {
				return err
			}
		}
	}
	return nil
}

// formatPeaks renders secondary peaks as "3,4 | 9,10".
func formatPeaks(peaks []schema.PeakWindow) string {
	parts := make([]string, len(peaks))
	for i, p := range peaks {
		parts[i] = formatMonths(p.Months)
	}
	return strings.Join(parts, " | ")
}
