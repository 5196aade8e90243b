package outwriter

import (
	"fmt"
	"io"

	"github.com/huangsam/trendgate/internal/contract"
	"github.com/huangsam/trendgate/schema"
	"github.com/xuri/excelize/v2"
)

// Workbook sheet names.
const (
	resultsSheet = "Results"
	summarySheet = "Summary"
)

// writeXLSXResults writes the results and a verdict summary as an xlsx workbook.
func writeXLSXResults(w io.Writer, output *schema.AnalyzeOutput, results []schema.RowResult) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	// The default sheet becomes the results sheet
	if err := f.SetSheetName("Sheet1", resultsSheet); err != nil {
		return err
	}
	if err := setRow(f, resultsSheet, 1, toAny(rowCSVHeader)); err != nil {
		return err
	}
	for i, r := range results {
		values := []any{
			i + 1,
			r.ID,
			r.Title,
			r.MainCategory,
			r.SubCategory,
			string(r.FlowType),
			formatCycle(r.Cycle),
			formatMonths(r.LowMonths),
			string(r.PriceTrend.Label),
			r.PriceTrend.Reason,
			r.Timing.Overall,
			r.Timing.Reason,
			contract.GetPlainLabel(r.Decision.Verdict),
			r.Decision.Reason,
			r.Decision.Rule,
			optionalCell(r.Decision.UnitCount),
			optionalCell(r.LastMonthSales),
			r.Seasons.Text,
		}
		if err := setRow(f, resultsSheet, i+2, values); err != nil {
			return err
		}
	}

	if _, err := f.NewSheet(summarySheet); err != nil {
		return err
	}
	if err := setRow(f, summarySheet, 1, []any{"run_id", output.RunID}); err != nil {
		return err
	}
	if err := setRow(f, summarySheet, 2, []any{"total_rows", len(output.Results)}); err != nil {
		return err
	}
	for i, v := range schema.AllVerdicts {
		if err := setRow(f, summarySheet, i+3, []any{string(v), output.Counts[v]}); err != nil {
			return err
		}
	}

	_, err := f.WriteTo(w)
	return err
}

// setRow writes values into one sheet row starting at column A.
func setRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("sheet %s row %d: %w", sheet, row, err)
	}
	return nil
}

func optionalCell(v *int) any {
	if v == nil {
		return ""
	}
	return *v
}

func toAny(values []string) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}
