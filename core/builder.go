package core

import (
	"fmt"

	"github.com/huangsam/trendgate/core/pricing"
	"github.com/huangsam/trendgate/core/rules"
	"github.com/huangsam/trendgate/core/season"
	"github.com/huangsam/trendgate/core/timing"
	"github.com/huangsam/trendgate/internal/contract"
	"github.com/huangsam/trendgate/internal/input"
	"github.com/huangsam/trendgate/schema"
)

// invalidInputRule names the decision of rows that never reached the rule gate.
const invalidInputRule = "invalid-input"

// RowResultBuilder builds the analysis result of one product row.
// Every step is a no-op once the row has been found invalid.
type RowResultBuilder struct {
	cfg      *contract.Config
	registry *rules.Registry
	row      schema.ProductRow
	result   *schema.RowResult

	// Internal data collected during the build process
	series  []schema.MonthlySeries
	invalid error
}

// NewRowResultBuilder is the starting point for building a row result.
func NewRowResultBuilder(cfg *contract.Config, registry *rules.Registry, row schema.ProductRow) *RowResultBuilder {
	return &RowResultBuilder{
		cfg:      cfg,
		registry: registry,
		row:      row,
		result: &schema.RowResult{
			ID:           row.ID,
			Title:        row.Title,
			MainCategory: row.MainCategory,
			SubCategory:  row.SubCategory,
			FlowType:     schema.UnknownFlow,
			PriceTrend:   schema.PriceTrendResult{Label: schema.UnknownPrice},
		},
	}
}

// Validate checks the row against the input constraints.
func (b *RowResultBuilder) Validate() *RowResultBuilder {
	if err := input.Validate(b.row); err != nil {
		b.invalid = err
	}
	return b
}

// BuildSeries anchors the keyword values on the calendar.
func (b *RowResultBuilder) BuildSeries() *RowResultBuilder {
	if b.invalid != nil {
		return b
	}
	series, err := season.BuildSeries(b.row.Keywords)
	if err != nil {
		b.invalid = err
		return b
	}
	b.series = series
	return b
}

// DetectSeasonality runs the detector on every keyword and merges the votes.
func (b *RowResultBuilder) DetectSeasonality() *RowResultBuilder {
	if b.invalid != nil {
		return b
	}
	opts := detectorOptions(b.cfg.Tuning)
	keywords := make([]schema.SeasonalityResult, 0, len(b.series))
	for _, s := range b.series {
		keywords = append(keywords, season.Detect(s, opts))
	}
	consensus := season.Aggregate(keywords, b.series)

	b.result.Keywords = keywords
	b.result.FlowType = consensus.FlowType
	b.result.Cycle = consensus.Groups
	return b
}

// DetectLowFlow finds the trough months outside the consensus cycle.
func (b *RowResultBuilder) DetectLowFlow() *RowResultBuilder {
	if b.invalid != nil {
		return b
	}
	low := season.DetectLowFlow(b.series, b.result.Cycle, b.cfg.Tuning.LowFlowMaxRatio)
	b.result.LowMonths = low.Months
	b.result.LowFlowReason = low.Reason
	return b
}

// FormatCycle renders the cycle text.
func (b *RowResultBuilder) FormatCycle() *RowResultBuilder {
	b.result.CycleText = season.FormatCycleText(b.result.FlowType, b.result.Cycle, b.result.LowMonths)
	return b
}

// ClassifyPrice labels the price trend.
func (b *RowResultBuilder) ClassifyPrice() *RowResultBuilder {
	if b.invalid != nil {
		return b
	}
	b.result.PriceTrend = pricing.Classify(b.row.PriceHistory, b.row.Sales, pricingOptions(b.cfg.Tuning))
	return b
}

// EvaluateTiming checks whether a launch started now can catch a peak.
func (b *RowResultBuilder) EvaluateTiming() *RowResultBuilder {
	if b.invalid != nil {
		return b
	}
	b.result.Timing = timing.Evaluate(b.result.Cycle, b.cfg.LeadMonths, b.cfg.CurrentMonth())
	return b
}

// SummarizeSales computes last-month sales and the per-season sales summary.
func (b *RowResultBuilder) SummarizeSales() *RowResultBuilder {
	if b.invalid != nil {
		return b
	}
	if sales, ok := pricing.LastMonthSales(b.row.Sales, b.cfg.Now); ok {
		b.result.LastMonthSales = &sales
	}
	b.result.Seasons = season.SummarizeSeasons(b.row.Sales, b.result.Cycle)
	return b
}

// Decide applies the category policy to the collected signals.
func (b *RowResultBuilder) Decide() *RowResultBuilder {
	if b.invalid != nil {
		b.result.Decision = schema.DevelopmentDecision{
			Verdict: schema.UndeterminedVerdict,
			Reason:  fmt.Sprintf("invalid input: %v", b.invalid),
			Rule:    invalidInputRule,
		}
		return b
	}
	b.result.Decision = b.registry.Decide(rules.Facts{
		MainCategory:   b.row.MainCategory,
		SubCategory:    b.row.SubCategory,
		Title:          b.row.Title,
		Price:          b.row.Price,
		LastMonthSales: b.result.LastMonthSales,
		HasSeries:      len(b.series) > 0,
		FlowType:       b.result.FlowType,
		Cycle:          b.result.Cycle,
		Timing:         b.result.Timing,
		PriceTrend:     b.result.PriceTrend.Label,
	})
	return b
}

// Build returns the final row result.
func (b *RowResultBuilder) Build() schema.RowResult {
	return *b.result
}

// buildRowResult runs the full per-row pipeline.
func buildRowResult(cfg *contract.Config, registry *rules.Registry, row schema.ProductRow) schema.RowResult {
	return NewRowResultBuilder(cfg, registry, row).
		Validate().          // Rejects malformed rows
		BuildSeries().       // Anchors keyword values on the calendar
		DetectSeasonality(). // Per-keyword detection plus consensus
		DetectLowFlow().     // Trough months outside the cycle
		FormatCycle().       // Cycle text
		ClassifyPrice().     // Price trend label
		EvaluateTiming().    // Launch timing feasibility
		SummarizeSales().    // Last-month sales and season summary
		Decide().            // Category rule gate
		Build()
}

// newRegistry builds the policy registry for the configured tuning.
func newRegistry(cfg *contract.Config) *rules.Registry {
	return rules.NewRegistry(rules.Options{SalesThreshold: cfg.Tuning.SalesThreshold})
}

func detectorOptions(t contract.Tuning) season.DetectorOptions {
	return season.DetectorOptions{
		MinWindowScore:     t.MinWindowScore,
		YearRoundStability: t.YearRoundStability,
		StrongStability:    t.StrongStability,
		StrongScore:        t.StrongScore,
	}
}

func pricingOptions(t contract.Tuning) pricing.Options {
	return pricing.Options{
		WindowDays:          t.PriceWindowDays,
		Alpha:               t.TrendAlpha,
		VolatilityThreshold: t.VolatilityThreshold,
		QuantileLevel:       t.QuantileLevel,
	}
}
