package core

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/huangsam/trendgate/core/rules"
	"github.com/huangsam/trendgate/internal/contract"
	"github.com/huangsam/trendgate/internal/outwriter"
	"github.com/huangsam/trendgate/schema"
)

// runAnalysisCore performs run tracking around the per-row analysis.
func runAnalysisCore(ctx context.Context, cfg *contract.Config, rows []schema.ProductRow, mgr contract.CacheManager) *schema.AnalyzeOutput {
	if !shouldSuppressHeader(ctx) {
		outwriter.LogAnalysisHeader(cfg, len(rows))
	}
	start := time.Now()
	runUUID := uuid.NewString()

	// Add cache manager to context for use in worker goroutines
	ctx = contextWithCacheManager(ctx, mgr)

	// --- 0. Begin Run Tracking (if configured) ---
	var runID int64
	history := historyStore(mgr)
	if history != nil {
		var err error
		runID, err = history.BeginRun(runUUID, start, cfg.RunParams())
		if err != nil {
			contract.LogWarn("Run tracking initialization failed", err)
		} else if runID > 0 {
			ctx = withRunID(ctx, runID)
		}
	}

	// --- 1. Core Analysis ---
	results := analyzeRows(ctx, cfg, rows)

	// --- 2. End Run Tracking ---
	if history != nil && runID > 0 {
		if err := history.EndRun(runID, time.Now(), len(results)); err != nil {
			contract.LogWarn("Failed to finalize run tracking", err)
		}
	}

	output := &schema.AnalyzeOutput{
		RunID:    runUUID,
		Results:  results,
		Counts:   schema.CountVerdicts(results),
		Duration: time.Since(start),
	}
	observeRun(output)
	return output
}

// analyzeRows processes all rows in parallel using a worker pool.
// It spawns cfg.Workers goroutines and returns the results in input order.
func analyzeRows(ctx context.Context, cfg *contract.Config, rows []schema.ProductRow) []schema.RowResult {
	results := make([]schema.RowResult, len(rows))
	if len(rows) == 0 {
		return results
	}
	registry := newRegistry(cfg)

	rowCh := make(chan int, len(rows))
	var wg sync.WaitGroup

	// Start worker pool
	for range max(1, min(cfg.Workers, len(rows))) {
		wg.Go(func() {
			for i := range rowCh {
				// Each worker writes to a unique index, so no lock is needed
				results[i] = analyzeRowCommon(ctx, cfg, registry, rows[i])
			}
		})
	}

	for i := range rows {
		rowCh <- i
	}
	close(rowCh)

	wg.Wait()
	return results
}

// analyzeRowCommon computes the result of a single row and records it in the
// run history when tracking is enabled.
func analyzeRowCommon(ctx context.Context, cfg *contract.Config, registry *rules.Registry, row schema.ProductRow) schema.RowResult {
	if err := ctx.Err(); err != nil {
		return cancelledResult(row, err)
	}

	result := cachedRowResult(ctx, cfg, registry, row)
	observeRow(result)

	if runID, ok := getRunID(ctx); ok && runID > 0 {
		recordRowDecision(ctx, runID, &result)
	}
	return result
}

// cancelledResult is the result of a row the run never got to.
func cancelledResult(row schema.ProductRow, err error) schema.RowResult {
	return schema.RowResult{
		ID:           row.ID,
		Title:        row.Title,
		MainCategory: row.MainCategory,
		SubCategory:  row.SubCategory,
		FlowType:     schema.UnknownFlow,
		PriceTrend:   schema.PriceTrendResult{Label: schema.UnknownPrice},
		Decision: schema.DevelopmentDecision{
			Verdict: schema.UndeterminedVerdict,
			Reason:  fmt.Sprintf("analysis cancelled: %v", err),
		},
	}
}

// recordRowDecision stores the decision of one row in the run history.
func recordRowDecision(ctx context.Context, runID int64, result *schema.RowResult) {
	history := historyStore(cacheManagerFromContext(ctx))
	if history == nil {
		return
	}

	record := schema.DecisionRecord{
		RowID:        result.ID,
		AnalysisTime: time.Now(),
		MainCategory: result.MainCategory,
		SubCategory:  result.SubCategory,
		FlowType:     string(result.FlowType),
		Cycle:        encodeCycle(result.Cycle),
		LowMonths:    joinMonths(result.LowMonths),
		PriceLabel:   string(result.PriceTrend.Label),
		TimingOK:     result.Timing.Overall,
		Verdict:      string(result.Decision.Verdict),
		Reason:       result.Decision.Reason,
	}
	if result.Decision.UnitCount != nil {
		units := int64(*result.Decision.UnitCount)
		record.UnitCount = &units
	}

	if err := history.RecordDecision(runID, record); err != nil {
		logTrackingError("RecordDecision", result.ID, err)
	}
}

// historyStore returns the history store of mgr, or nil when tracking is off.
func historyStore(mgr contract.CacheManager) contract.HistoryStore {
	if mgr == nil {
		return nil
	}
	return mgr.GetHistoryStore()
}

// logTrackingError logs database tracking errors to stderr without disrupting analysis.
func logTrackingError(operation, rowID string, err error) {
	contract.LogWarn(fmt.Sprintf("Run tracking failed for %s on row %s", operation, rowID), err)
}

// encodeCycle renders the peak windows as a JSON array such as [[11,12]].
func encodeCycle(cycle [][]int) string {
	if len(cycle) == 0 {
		return "[]"
	}
	data, err := json.Marshal(cycle)
	if err != nil {
		return "[]"
	}
	return string(data)
}

// joinMonths renders months as a comma-separated list such as 5,6,7.
func joinMonths(months []int) string {
	parts := make([]string, len(months))
	for i, m := range months {
		parts[i] = strconv.Itoa(m)
	}
	return strings.Join(parts, ",")
}
