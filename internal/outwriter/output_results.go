package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/huangsam/trendgate/internal/contract"
	"github.com/huangsam/trendgate/internal/parquet"
	"github.com/huangsam/trendgate/schema"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// PrintRowResults writes the analysis results to the configured output file, or stdout.
func PrintRowResults(output *schema.AnalyzeOutput, cfg *contract.Config) error {
	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		return WriteRowResults(w, output, cfg)
	}, "Wrote "+string(cfg.Output))
}

// WriteRowResults outputs the analysis results, dispatching based on the output format configured.
func WriteRowResults(w io.Writer, output *schema.AnalyzeOutput, cfg *contract.Config) error {
	results := limitResults(output.Results, cfg)

	switch cfg.Output {
	case schema.JSONOut:
		if err := writeJSONResultsForRows(w, output, results); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := writeCSVWithHeader(w, rowCSVHeader, func(cw *csv.Writer) error {
			return writeCSVResultsForRows(cw, results)
		}); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	case schema.ParquetOut:
		if err := parquet.WriteResults(w, results); err != nil {
			return fmt.Errorf("error writing Parquet output: %w", err)
		}
	case schema.XLSXOut:
		if err := writeXLSXResults(w, output, results); err != nil {
			return fmt.Errorf("error writing XLSX output: %w", err)
		}
	default:
		// Default to human-readable table
		return writeRowTable(w, output, results, cfg)
	}
	return nil
}

// writeRowTable generates and writes the human-readable table.
func writeRowTable(w io.Writer, output *schema.AnalyzeOutput, results []schema.RowResult, cfg *contract.Config) error {
	table := tablewriter.NewWriter(w)

	// 1. Define Headers
	headers := []string{"Rank", "ID", "Title", "Flow", "Cycle", "Price", "Timing", "Verdict"}
	if cfg.Detail {
		headers = append(headers, "Low", "Sales", "Seasons", "Rule")
	}
	table.Header(headers)

	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignLeft
	})

	// 2. Populate Rows
	titleWidth := getMaxTableTitleWidth(cfg)
	data := make([][]string, 0, len(results))
	for i, r := range results {
		row := []string{
			strconv.Itoa(i + 1),
			r.ID,
			contract.TruncateText(r.Title, titleWidth),
			r.FlowType.Label(),
			formatCycle(r.Cycle),
			r.PriceTrend.Label.Label(),
			formatYesNo(r.Timing.Overall),
			verdictLabel(r.Decision.Verdict, cfg),
		}
		if cfg.Detail {
			row = append(
				row,
				formatMonths(r.LowMonths),
				formatOptionalInt(r.LastMonthSales),
				r.Seasons.Text,
				r.Decision.Rule,
			)
		}
		data = append(data, row)
	}

	// 3. Render the table
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	if cfg.Detail {
		for _, r := range results {
			if _, err := fmt.Fprintf(w, "[%s] %s: %s\n", r.ID, r.Decision.Verdict.Label(), r.Decision.Reason); err != nil {
				return err
			}
		}
	}
	if _, err := fmt.Fprintf(w, "Showing %d of %d rows (%s)\n", len(results), len(output.Results), formatCounts(output.Counts)); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Analysis completed in %v with %d workers. Cache backend: %s\n", output.Duration, cfg.Workers, cfg.CacheBackend); err != nil {
		return err
	}
	return nil
}

var rowCSVHeader = []string{
	"rank",
	"id",
	"title",
	"main_category",
	"sub_category",
	"flow_type",
	"cycle",
	"low_months",
	"price_trend",
	"price_reason",
	"timing_ok",
	"timing_reason",
	"verdict",
	"reason",
	"rule",
	"unit_count",
	"last_month_sales",
	"seasons",
}

// writeCSVResultsForRows writes one CSV record per row result.
func writeCSVResultsForRows(w *csv.Writer, results []schema.RowResult) error {
	for i, r := range results {
		rec := []string{
			strconv.Itoa(i + 1),
			r.ID,
			r.Title,
			r.MainCategory,
			r.SubCategory,
			string(r.FlowType),
			formatCycle(r.Cycle),
			formatMonths(r.LowMonths),
			string(r.PriceTrend.Label),
			r.PriceTrend.Reason,
			strconv.FormatBool(r.Timing.Overall),
			r.Timing.Reason,
			contract.GetPlainLabel(r.Decision.Verdict),
			r.Decision.Reason,
			r.Decision.Rule,
			formatOptionalInt(r.Decision.UnitCount),
			formatOptionalInt(r.LastMonthSales),
			r.Seasons.Text,
		}
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	return nil
}

// writeJSONResultsForRows writes the run summary and the row results in JSON format.
func writeJSONResultsForRows(w io.Writer, output *schema.AnalyzeOutput, results []schema.RowResult) error {
	type JSONRowResult struct {
		Rank  int    `json:"rank"`
		Label string `json:"label"`
		schema.RowResult
	}
	type JSONOutput struct {
		RunID      string                 `json:"run_id"`
		TotalRows  int                    `json:"total_rows"`
		Counts     map[schema.Verdict]int `json:"counts"`
		DurationMs int64                  `json:"duration_ms"`
		Results    []JSONRowResult        `json:"results"`
	}

	rows := make([]JSONRowResult, len(results))
	for i, r := range results {
		rows[i] = JSONRowResult{
			Rank:      i + 1,
			Label:     contract.GetPlainLabel(r.Decision.Verdict),
			RowResult: r,
		}
	}
	return writeJSON(w, JSONOutput{
		RunID:      output.RunID,
		TotalRows:  len(output.Results),
		Counts:     output.Counts,
		DurationMs: output.Duration.Milliseconds(),
		Results:    rows,
	})
}
