// Package core runs the per-row decision pipeline: seasonality, price trend,
// launch timing and the category rule gate.
package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/huangsam/trendgate/core/pricing"
	"github.com/huangsam/trendgate/core/season"
	"github.com/huangsam/trendgate/core/timing"
	"github.com/huangsam/trendgate/internal/contract"
	"github.com/huangsam/trendgate/internal/input"
	"github.com/huangsam/trendgate/internal/outwriter"
	"github.com/huangsam/trendgate/schema"
)

// ExecuteAnalyze runs the analysis over the input files and prints the results.
// It serves as the main entry point for the 'analyze' command.
func ExecuteAnalyze(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error {
	output, err := GetAnalyzeResults(ctx, cfg, mgr)
	if err != nil {
		return err
	}
	if cfg.MetricsFile != "" {
		if err := WriteMetricsFile(cfg.MetricsFile); err != nil {
			contract.LogWarn("Failed to write metrics file", err)
		}
	}
	return outwriter.PrintRowResults(output, cfg)
}

// GetAnalyzeResults loads the input files and analyzes every row.
func GetAnalyzeResults(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) (*schema.AnalyzeOutput, error) {
	rows, err := input.Load(ctx, cfg.InputFiles, cfg.Workers)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, errors.New("no product rows found")
	}
	return AnalyzeRows(ctx, cfg, mgr, rows), nil
}

// AnalyzeRows analyzes rows that are already in memory. Invalid rows yield an
// undetermined decision instead of an error.
func AnalyzeRows(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager, rows []schema.ProductRow) *schema.AnalyzeOutput {
	return runAnalysisCore(ctx, cfg, rows, mgr)
}

// ExecuteCycle prints the seasonality breakdown of every input row.
// It serves as the main entry point for the 'cycle' command.
func ExecuteCycle(ctx context.Context, cfg *contract.Config) error {
	reports, duration, err := GetCycleReports(ctx, cfg)
	if err != nil {
		return err
	}
	return outwriter.PrintCycleReports(reports, cfg, duration)
}

// GetCycleReports loads the input files and detects the cycle of every row.
// Rows whose keyword data cannot be read are skipped with a warning.
func GetCycleReports(ctx context.Context, cfg *contract.Config) ([]schema.CycleReport, time.Duration, error) {
	start := time.Now()
	rows, err := input.Load(ctx, cfg.InputFiles, cfg.Workers)
	if err != nil {
		return nil, 0, err
	}

	reports := make([]schema.CycleReport, 0, len(rows))
	for _, row := range rows {
		report, err := DetectCycle(row.Keywords, cfg.Tuning)
		if err != nil {
			contract.LogWarn(fmt.Sprintf("Skipping cycle detection for row %s", row.ID), err)
			continue
		}
		report.ID = row.ID
		reports = append(reports, report)
	}
	if len(reports) == 0 {
		return nil, 0, errors.New("no rows with readable keyword data")
	}
	return reports, time.Since(start), nil
}

// DetectCycle runs seasonality detection, consensus and low-flow detection on
// one keyword set.
func DetectCycle(set schema.KeywordSet, tuning contract.Tuning) (schema.CycleReport, error) {
	series, err := season.BuildSeries(set)
	if err != nil {
		return schema.CycleReport{}, err
	}

	opts := detectorOptions(tuning)
	keywords := make([]schema.SeasonalityResult, 0, len(series))
	for _, s := range series {
		keywords = append(keywords, season.Detect(s, opts))
	}
	consensus := season.Aggregate(keywords, series)
	low := season.DetectLowFlow(series, consensus.Groups, tuning.LowFlowMaxRatio)

	return schema.CycleReport{
		Keywords:  keywords,
		Consensus: consensus,
		LowFlow:   low,
		Text:      season.FormatCycleText(consensus.FlowType, consensus.Groups, low.Months),
	}, nil
}

// ExecuteRules prints the configured decision tables and price thresholds.
// It serves as the main entry point for the 'rules' command.
func ExecuteRules(_ context.Context, cfg *contract.Config) error {
	return outwriter.PrintRules(newRegistry(cfg), cfg)
}

// ClassifyPriceTrend labels a price history with the configured tuning.
func ClassifyPriceTrend(history schema.PriceHistory, sales []schema.SalesRecord, tuning contract.Tuning) schema.PriceTrendResult {
	return pricing.Classify(history, sales, pricingOptions(tuning))
}

// EvaluateTiming checks whether the peak windows of a cycle can be caught.
func EvaluateTiming(cycle [][]int, leadMonths, currentMonth int) (schema.TimingFeasibility, error) {
	if currentMonth < 1 || currentMonth > 12 {
		return schema.TimingFeasibility{}, fmt.Errorf("current month must be between 1 and 12 (received %d)", currentMonth)
	}
	if leadMonths < 0 || leadMonths > contract.MaxLeadMonths {
		return schema.TimingFeasibility{}, fmt.Errorf("lead months must be between 0 and %d (received %d)", contract.MaxLeadMonths, leadMonths)
	}
	for _, window := range cycle {
		for _, m := range window {
			if m < 1 || m > 12 {
				return schema.TimingFeasibility{}, fmt.Errorf("cycle month %d is out of range", m)
			}
		}
	}
	return timing.Evaluate(cycle, leadMonths, currentMonth), nil
}
