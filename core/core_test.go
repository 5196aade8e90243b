package core

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/huangsam/trendgate/internal/contract"
	"github.com/huangsam/trendgate/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testConfig returns a validated configuration evaluated in October 2025.
func testConfig() *contract.Config {
	return &contract.Config{
		Workers:    4,
		Precision:  2,
		Output:     schema.TextOut,
		Now:        time.Date(2025, time.October, 1, 0, 0, 0, 0, time.UTC),
		LeadMonths: 3,
		Tuning:     contract.DefaultTuning(),
	}
}

// yearly repeats a 12-month profile for the given number of years.
func yearly(base, peak float64, years int, peakMonths ...int) []float64 {
	var profile [12]float64
	for i := range profile {
		profile[i] = base
	}
	for _, m := range peakMonths {
		profile[m-1] = peak
	}
	out := make([]float64, 0, 12*years)
	for range years {
		out = append(out, profile[:]...)
	}
	return out
}

// holidayRow is a plates product with a November to December demand peak.
func holidayRow(id string) schema.ProductRow {
	return schema.ProductRow{
		ID:           id,
		Title:        "96pcs christmas paper plates",
		MainCategory: "toys&games",
		SubCategory:  "plates",
		Price:        "$20.00",
		Keywords: schema.KeywordSet{
			Start: "2022-01",
			Series: []schema.KeywordSeries{
				{Keyword: "christmas plates", Values: yearly(10, 100, 3, 11, 12)},
				{Keyword: "holiday plates", Values: yearly(5, 60, 3, 11, 12)},
			},
		},
	}
}

func TestAnalyzeRowsPreservesOrder(t *testing.T) {
	cfg := testConfig()
	rows := make([]schema.ProductRow, 25)
	for i := range rows {
		rows[i] = holidayRow("p-" + strings.Repeat("x", i))
	}

	output := AnalyzeRows(WithSuppressHeader(context.Background()), cfg, nil, rows)
	require.Len(t, output.Results, len(rows))
	for i, r := range output.Results {
		assert.Equal(t, rows[i].ID, r.ID, "result %d out of order", i)
	}
	assert.NotEmpty(t, output.RunID)
	assert.Equal(t, len(rows), output.Counts[schema.UndeterminedVerdict])
}

func TestAnalyzeRowsSingleWorker(t *testing.T) {
	cfg := testConfig()
	cfg.Workers = 0
	output := AnalyzeRows(WithSuppressHeader(context.Background()), cfg, nil, []schema.ProductRow{holidayRow("a"), holidayRow("b")})
	require.Len(t, output.Results, 2)
	assert.Equal(t, "b", output.Results[1].ID)
}

func TestAnalyzeRowsEmpty(t *testing.T) {
	output := AnalyzeRows(WithSuppressHeader(context.Background()), testConfig(), nil, nil)
	assert.Empty(t, output.Results)
	for _, v := range schema.AllVerdicts {
		assert.Zero(t, output.Counts[v])
	}
}

func TestAnalyzeRowsInvalidInput(t *testing.T) {
	cfg := testConfig()
	missingID := holidayRow("")
	badAnchor := holidayRow("bad-anchor")
	badAnchor.Keywords.Start = "sometime"

	output := AnalyzeRows(WithSuppressHeader(context.Background()), cfg, nil, []schema.ProductRow{missingID, holidayRow("ok"), badAnchor})
	require.Len(t, output.Results, 3)

	for _, idx := range []int{0, 2} {
		d := output.Results[idx].Decision
		assert.Equal(t, schema.UndeterminedVerdict, d.Verdict)
		assert.True(t, strings.HasPrefix(d.Reason, "invalid input: "), d.Reason)
		assert.Equal(t, invalidInputRule, d.Rule)
		assert.Equal(t, schema.UnknownFlow, output.Results[idx].FlowType)
	}
	assert.NotEqual(t, invalidInputRule, output.Results[1].Decision.Rule, "one bad row must not affect the batch")
}

func TestAnalyzeRowsCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(WithSuppressHeader(context.Background()))
	cancel()

	output := AnalyzeRows(ctx, testConfig(), nil, []schema.ProductRow{holidayRow("a")})
	require.Len(t, output.Results, 1)
	assert.Equal(t, schema.UndeterminedVerdict, output.Results[0].Decision.Verdict)
	assert.Contains(t, output.Results[0].Decision.Reason, "analysis cancelled")
}

func TestDetectCycle(t *testing.T) {
	t.Run("holiday peak", func(t *testing.T) {
		report, err := DetectCycle(holidayRow("p").Keywords, contract.DefaultTuning())
		require.NoError(t, err)
		assert.Len(t, report.Keywords, 2)
		assert.Equal(t, schema.StrongCyclicalFlow, report.Consensus.FlowType)
		assert.Equal(t, [][]int{{11, 12}}, report.Consensus.Groups)
		assert.Contains(t, report.Text, "flow type: ")
		for _, m := range report.LowFlow.Months {
			assert.NotContains(t, []int{11, 12}, m, "low months never overlap the cycle")
		}
	})

	t.Run("no keywords is a recent listing", func(t *testing.T) {
		report, err := DetectCycle(schema.KeywordSet{}, contract.DefaultTuning())
		require.NoError(t, err)
		assert.Equal(t, schema.RecentListingFlow, report.Consensus.FlowType)
	})

	t.Run("bad anchor", func(t *testing.T) {
		set := holidayRow("p").Keywords
		set.Start = "13/2022"
		_, err := DetectCycle(set, contract.DefaultTuning())
		assert.Error(t, err)
	})
}

func writeRows(t *testing.T, rows []schema.ProductRow) string {
	t.Helper()
	data, err := json.Marshal(rows)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "rows.json")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestGetAnalyzeResults(t *testing.T) {
	t.Run("loads and analyzes", func(t *testing.T) {
		cfg := testConfig()
		cfg.InputFiles = []string{writeRows(t, []schema.ProductRow{holidayRow("a"), holidayRow("b")})}

		output, err := GetAnalyzeResults(WithSuppressHeader(context.Background()), cfg, nil)
		require.NoError(t, err)
		require.Len(t, output.Results, 2)
		assert.Equal(t, "a", output.Results[0].ID)
		assert.Equal(t, schema.StrongCyclicalFlow, output.Results[0].FlowType)
	})

	t.Run("no input files", func(t *testing.T) {
		_, err := GetAnalyzeResults(context.Background(), testConfig(), nil)
		assert.Error(t, err)
	})

	t.Run("empty file", func(t *testing.T) {
		cfg := testConfig()
		cfg.InputFiles = []string{writeRows(t, []schema.ProductRow{})}
		_, err := GetAnalyzeResults(WithSuppressHeader(context.Background()), cfg, nil)
		assert.Error(t, err)
	})
}

func TestGetCycleReports(t *testing.T) {
	cfg := testConfig()
	bad := holidayRow("bad")
	bad.Keywords.Start = "never"
	cfg.InputFiles = []string{writeRows(t, []schema.ProductRow{holidayRow("a"), bad})}

	reports, _, err := GetCycleReports(context.Background(), cfg)
	require.NoError(t, err)
	require.Len(t, reports, 1, "rows with unreadable keyword data are skipped")
	assert.Equal(t, "a", reports[0].ID)
}

func TestWriteMetricsFile(t *testing.T) {
	AnalyzeRows(WithSuppressHeader(context.Background()), testConfig(), nil, []schema.ProductRow{holidayRow("m")})

	path := filepath.Join(t.TempDir(), "trendgate.prom")
	require.NoError(t, WriteMetricsFile(path))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "trendgate_rows_analyzed_total")
	assert.Contains(t, string(data), "trendgate_run_duration_seconds")
}
