package core

import (
	"testing"

	"github.com/huangsam/trendgate/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRowResultBuilder_BasicChaining(t *testing.T) {
	cfg := testConfig()
	builder := NewRowResultBuilder(cfg, newRegistry(cfg), holidayRow("p-1"))

	// Test that builder returns itself for chaining
	assert.Equal(t, builder, builder.Validate())
	assert.Equal(t, builder, builder.BuildSeries())
	assert.Equal(t, builder, builder.DetectSeasonality())
	assert.Equal(t, builder, builder.DetectLowFlow())
	assert.Equal(t, builder, builder.FormatCycle())
	assert.Equal(t, builder, builder.ClassifyPrice())
	assert.Equal(t, builder, builder.EvaluateTiming())
	assert.Equal(t, builder, builder.SummarizeSales())
	assert.Equal(t, builder, builder.Decide())

	result := builder.Build()
	assert.Equal(t, "p-1", result.ID)
	assert.Equal(t, "toys&games", result.MainCategory)
	assert.Equal(t, schema.StrongCyclicalFlow, result.FlowType)
	assert.Equal(t, [][]int{{11, 12}}, result.Cycle)
	assert.Len(t, result.Keywords, 2)
	assert.Contains(t, result.CycleText, "cycle window:")
	require.Len(t, result.Timing.PerWindow, 1)
	assert.Nil(t, result.LastMonthSales, "no sales records were supplied")
	assert.Equal(t, schema.UnknownPrice, result.PriceTrend.Label)
	assert.NotEmpty(t, result.Decision.Verdict)
	assert.NotEmpty(t, result.Decision.Reason)
}

func TestRowResultBuilder_LastMonthSales(t *testing.T) {
	cfg := testConfig()
	row := holidayRow("p-2")
	row.Sales = []schema.SalesRecord{
		{MonthKey: "202508", Sales: 40},
		{MonthKey: "202509", Sales: 75},
	}

	result := buildRowResult(cfg, newRegistry(cfg), row)
	require.NotNil(t, result.LastMonthSales)
	assert.Equal(t, 75, *result.LastMonthSales)
	assert.NotEmpty(t, result.Seasons.Text)
}

func TestRowResultBuilder_InvalidRowSkipsSteps(t *testing.T) {
	cfg := testConfig()
	row := holidayRow("")
	row.Sales = []schema.SalesRecord{{MonthKey: "202509", Sales: 75}}

	result := buildRowResult(cfg, newRegistry(cfg), row)
	assert.Equal(t, schema.UndeterminedVerdict, result.Decision.Verdict)
	assert.Contains(t, result.Decision.Reason, "invalid input: ")
	assert.Nil(t, result.LastMonthSales)
	assert.Empty(t, result.Keywords)
	assert.Equal(t, schema.UnknownPrice, result.PriceTrend.Label)
	assert.Contains(t, result.CycleText, "no clear cycle identified")
}

func TestRowResultBuilder_NoKeywords(t *testing.T) {
	cfg := testConfig()
	row := holidayRow("p-3")
	row.Keywords = schema.KeywordSet{}

	result := buildRowResult(cfg, newRegistry(cfg), row)
	assert.Equal(t, schema.RecentListingFlow, result.FlowType)
	assert.Empty(t, result.Cycle)
	assert.False(t, result.Timing.Overall)
}

func TestTuningOptions(t *testing.T) {
	tuning := testConfig().Tuning
	tuning.StrongScore = 0.8
	tuning.PriceWindowDays = 30

	assert.Equal(t, 0.8, detectorOptions(tuning).StrongScore)
	assert.Equal(t, tuning.MinWindowScore, detectorOptions(tuning).MinWindowScore)
	assert.Equal(t, 30, pricingOptions(tuning).WindowDays)
	assert.Equal(t, tuning.QuantileLevel, pricingOptions(tuning).QuantileLevel)
}
