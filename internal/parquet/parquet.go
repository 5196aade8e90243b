// Package parquet provides data structures and functions for exporting trendgate
// results and run history to Parquet files using github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/huangsam/trendgate/schema"
	"github.com/parquet-go/parquet-go"
)

// Run represents a single analyze run with metadata.
// This struct maps to the trendgate_runs database table.
type Run struct {
	// RunID is the numeric identifier of the run
	RunID int64 `parquet:"run_id,snappy"`

	// RunUUID is the globally unique identifier of the run
	RunUUID string `parquet:"run_uuid,snappy"`

	// StartTime is when the run began
	StartTime time.Time `parquet:"start_time,snappy"`

	// EndTime is when the run completed (nullable)
	EndTime *time.Time `parquet:"end_time,optional,snappy"`

	// RunDurationMs is the duration of the run in milliseconds (nullable)
	RunDurationMs *int64 `parquet:"run_duration_ms,optional,snappy"`

	// TotalRows is the number of product rows analyzed (nullable)
	TotalRows *int64 `parquet:"total_rows,optional,snappy"`

	// ConfigParams contains the JSON-encoded configuration parameters (nullable)
	ConfigParams *string `parquet:"config_params,optional,snappy"`
}

// Decision represents the stored decision for one product row in a run.
// This struct maps to the trendgate_decisions database table.
type Decision struct {
	RunID        int64     `parquet:"run_id,snappy"`
	RowID        string    `parquet:"row_id,snappy"`
	AnalysisTime time.Time `parquet:"analysis_time,snappy"`
	MainCategory string    `parquet:"main_category,snappy"`
	SubCategory  string    `parquet:"sub_category,snappy"`
	FlowType     string    `parquet:"flow_type,snappy"`
	Cycle        string    `parquet:"cycle,snappy"`
	LowMonths    string    `parquet:"low_months,snappy"`
	PriceLabel   string    `parquet:"price_label,snappy"`
	TimingOK     bool      `parquet:"timing_ok,snappy"`
	Verdict      string    `parquet:"verdict,snappy"`
	Reason       string    `parquet:"reason,snappy"`
	UnitCount    *int64    `parquet:"unit_count,optional,snappy"`
}

// ResultRow is the flattened analysis result of one product row, used by --output parquet.
type ResultRow struct {
	ID             string  `parquet:"id,snappy"`
	Title          string  `parquet:"title,snappy"`
	MainCategory   string  `parquet:"main_category,snappy"`
	SubCategory    string  `parquet:"sub_category,snappy"`
	FlowType       string  `parquet:"flow_type,snappy"`
	CycleText      string  `parquet:"cycle_text,snappy"`
	LowMonths      string  `parquet:"low_months,snappy"`
	PriceTrend     string  `parquet:"price_trend,snappy"`
	PriceReason    *string `parquet:"price_reason,optional,snappy"`
	PValue         float64 `parquet:"p_value,snappy"`
	Volatility     float64 `parquet:"volatility,snappy"`
	TimingOK       bool    `parquet:"timing_ok,snappy"`
	TimingReason   string  `parquet:"timing_reason,snappy"`
	Verdict        string  `parquet:"verdict,snappy"`
	Reason         string  `parquet:"reason,snappy"`
	Rule           string  `parquet:"rule,snappy"`
	UnitCount      *int64  `parquet:"unit_count,optional,snappy"`
	LastMonthSales *int64  `parquet:"last_month_sales,optional,snappy"`
	Seasons        string  `parquet:"seasons,snappy"`
}

// write encodes rows with a schema derived from the struct tags of T.
func write[T any](w io.Writer, data []T) error {
	writer := parquet.NewGenericWriter[T](w)
	if _, err := writer.Write(data); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	return nil
}

// writeFile creates outputPath and writes rows to it.
func writeFile[T any](data []T, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	if err := write(file, data); err != nil {
		_ = file.Close()
		return err
	}
	return file.Close()
}

// WriteRunsParquet writes a slice of Run structs to a Parquet file.
func WriteRunsParquet(data []Run, outputPath string) error {
	return writeFile(data, outputPath)
}

// WriteDecisionsParquet writes a slice of Decision structs to a Parquet file.
func WriteDecisionsParquet(data []Decision, outputPath string) error {
	return writeFile(data, outputPath)
}

// WriteResults writes analysis results to w.
func WriteResults(w io.Writer, results []schema.RowResult) error {
	return write(w, ConvertRowResults(results))
}

// ConvertRunRecords converts stored runs to Parquet rows.
func ConvertRunRecords(records []schema.RunRecord) []Run {
	out := make([]Run, len(records))
	for i, r := range records {
		out[i] = Run{
			RunID:         r.RunID,
			RunUUID:       r.RunUUID,
			StartTime:     r.StartTime,
			EndTime:       r.EndTime,
			RunDurationMs: r.RunDurationMs,
			TotalRows:     r.TotalRows,
			ConfigParams:  r.ConfigParams,
		}
	}
	return out
}

// ConvertDecisionRecords converts stored decisions to Parquet rows.
func ConvertDecisionRecords(records []schema.DecisionRecord) []Decision {
	out := make([]Decision, len(records))
	for i, r := range records {
		out[i] = Decision{
			RunID:        r.RunID,
			RowID:        r.RowID,
			AnalysisTime: r.AnalysisTime,
			MainCategory: r.MainCategory,
			SubCategory:  r.SubCategory,
			FlowType:     r.FlowType,
			Cycle:        r.Cycle,
			LowMonths:    r.LowMonths,
			PriceLabel:   r.PriceLabel,
			TimingOK:     r.TimingOK,
			Verdict:      r.Verdict,
			Reason:       r.Reason,
			UnitCount:    r.UnitCount,
		}
	}
	return out
}

// ConvertRowResults flattens analysis results to Parquet rows.
func ConvertRowResults(results []schema.RowResult) []ResultRow {
	out := make([]ResultRow, len(results))
	for i, r := range results {
		row := ResultRow{
			ID:           r.ID,
			Title:        r.Title,
			MainCategory: r.MainCategory,
			SubCategory:  r.SubCategory,
			FlowType:     string(r.FlowType),
			CycleText:    r.CycleText,
			LowMonths:    joinMonths(r.LowMonths),
			PriceTrend:   string(r.PriceTrend.Label),
			PValue:       r.PriceTrend.Diagnostics.PValue,
			Volatility:   r.PriceTrend.Diagnostics.Volatility,
			TimingOK:     r.Timing.Overall,
			TimingReason: r.Timing.Reason,
			Verdict:      string(r.Decision.Verdict),
			Reason:       r.Decision.Reason,
			Rule:         r.Decision.Rule,
			Seasons:      r.Seasons.Text,
		}
		if r.PriceTrend.Reason != "" {
			reason := r.PriceTrend.Reason
			row.PriceReason = &reason
		}
		if r.Decision.UnitCount != nil {
			n := int64(*r.Decision.UnitCount)
			row.UnitCount = &n
		}
		if r.LastMonthSales != nil {
			n := int64(*r.LastMonthSales)
			row.LastMonthSales = &n
		}
		out[i] = row
	}
	return out
}

func joinMonths(months []int) string {
	parts := make([]string, len(months))
	for i, m := range months {
		parts[i] = fmt.Sprint(m)
	}
	return strings.Join(parts, ",")
}
