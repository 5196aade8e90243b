package pricing

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/huangsam/trendgate/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// dailyHistory builds a history with one price per day starting at start.
func dailyHistory(start time.Time, values ...float64) schema.PriceHistory {
	h := schema.PriceHistory{}
	for i, v := range values {
		h.Times = append(h.Times, start.AddDate(0, 0, i).Format("2006-01-02 15:04"))
		h.Prices = append(h.Prices, v)
	}
	return h
}

var march2024 = time.Date(2024, time.March, 1, 9, 30, 0, 0, time.UTC)

func TestNormalizePrice(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want float64
		ok   bool
	}{
		{"nil", nil, 0, false},
		{"float", 12.5, 12.5, true},
		{"int", 7, 7, true},
		{"numeric string", " 19.99 ", 19.99, true},
		{"bad string", "n/a", 0, false},
		{"json number", json.Number("3.25"), 3.25, true},
		{"list takes last valid", []any{1.0, 2.0, nil, "bad"}, 2.0, true},
		{"list of nothing", []any{nil, "x"}, 0, false},
		{"unsupported", struct{}{}, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := NormalizePrice(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestParseTime(t *testing.T) {
	for _, s := range []string{"2024-03-01 09:30", "2024-03-01 09:30:00", "2024-03-01T09:30:00Z", "2024-03-01"} {
		_, ok := ParseTime(s)
		assert.True(t, ok, s)
	}
	_, ok := ParseTime("03/01/2024")
	assert.False(t, ok)
}

func TestCleanSortsAndDrops(t *testing.T) {
	h := schema.PriceHistory{
		Times:  []string{"2024-03-03 00:00", "bad", "2024-03-01 00:00", "2024-03-02 00:00", "2024-03-04 00:00"},
		Prices: []any{3.0, 9.0, 1.0, nil, "4"},
	}
	obs := Clean(h)
	require.Len(t, obs, 3)
	assert.Equal(t, []float64{1, 3, 4}, prices(obs))
}

func TestPercentile(t *testing.T) {
	x := []float64{4, 1, 3, 2}
	assert.InDelta(t, 3.7, Percentile(x, 0.9), 1e-9)
	assert.InDelta(t, 1.3, Percentile(x, 0.1), 1e-9)
	assert.InDelta(t, 2.5, Median(x), 1e-9)
	assert.Equal(t, 4.0, Percentile(x, 1))
	assert.True(t, math.IsNaN(Percentile(nil, 0.5)))
}

func TestMannKendall(t *testing.T) {
	t.Run("increasing", func(t *testing.T) {
		r := MannKendall([]float64{1, 2, 3, 4, 5}, 0.05)
		assert.Equal(t, schema.IncreasingTrend, r.Trend)
		assert.True(t, r.H)
		assert.Equal(t, 10.0, r.S)
		assert.InDelta(t, 16.6667, r.VarS, 1e-3)
		assert.InDelta(t, 2.2045, r.Z, 1e-3)
		assert.InDelta(t, 0.0275, r.P, 1e-3)
		assert.InDelta(t, 1.0, r.Tau, 1e-9)
		assert.InDelta(t, 1.0, r.Slope, 1e-9)
		assert.InDelta(t, 1.0, r.Intercept, 1e-9)
	})

	t.Run("decreasing", func(t *testing.T) {
		r := MannKendall([]float64{9, 8, 7, 6, 5, 4}, 0.05)
		assert.Equal(t, schema.DecreasingTrend, r.Trend)
		assert.Less(t, r.Z, 0.0)
	})

	t.Run("all ties", func(t *testing.T) {
		r := MannKendall([]float64{5, 5, 5, 5}, 0.05)
		assert.Equal(t, schema.NoTrend, r.Trend)
		assert.Equal(t, 0.0, r.VarS)
		assert.InDelta(t, 1.0, r.P, 1e-9)
	})

	t.Run("alternating", func(t *testing.T) {
		r := MannKendall([]float64{10, 20, 10, 20, 10, 20, 10, 20}, 0.05)
		assert.Equal(t, schema.NoTrend, r.Trend)
		assert.Equal(t, 4.0, r.S)
		assert.InDelta(t, 48.0, r.VarS, 1e-9)
	})

	t.Run("too short", func(t *testing.T) {
		r := MannKendall([]float64{1}, 0.05)
		assert.Equal(t, schema.NoTrend, r.Trend)
	})
}

func TestClassify(t *testing.T) {
	opts := DefaultOptions()

	t.Run("two points are insufficient", func(t *testing.T) {
		r := Classify(dailyHistory(march2024, 10, 20), nil, opts)
		assert.Equal(t, schema.UnknownPrice, r.Label)
		assert.Equal(t, "insufficient data", r.Reason)
	})

	t.Run("rising", func(t *testing.T) {
		r := Classify(dailyHistory(march2024, 10, 11, 12, 13, 14, 15, 16, 17, 18, 19), nil, opts)
		assert.Equal(t, schema.RisingPrice, r.Label)
		assert.Equal(t, schema.IncreasingTrend, r.Diagnostics.TrendDirection)
		assert.True(t, r.Diagnostics.TrendSignificant)
		assert.True(t, r.Diagnostics.NearHigh)
		assert.InDelta(t, 18.1, r.Diagnostics.HighQuantile, 1e-9)
		assert.Equal(t, 10, r.Diagnostics.WindowSize)
	})

	t.Run("falling", func(t *testing.T) {
		r := Classify(dailyHistory(march2024, 19, 18, 17, 16, 15, 14, 13, 12, 11, 10), nil, opts)
		assert.Equal(t, schema.FallingPrice, r.Label)
		assert.True(t, r.Diagnostics.NearLow)
	})

	t.Run("stable", func(t *testing.T) {
		r := Classify(dailyHistory(march2024, 10, 10, 10, 10, 10, 10), nil, opts)
		assert.Equal(t, schema.StablePrice, r.Label)
		assert.Equal(t, schema.NoTrend, r.Diagnostics.TrendDirection)
		assert.InDelta(t, 0, r.Diagnostics.Volatility, 1e-9)
	})

	t.Run("volatile", func(t *testing.T) {
		r := Classify(dailyHistory(march2024, 10, 20, 10, 20, 10, 20, 10, 20), nil, opts)
		assert.Equal(t, schema.VolatilePrice, r.Label)
		assert.InDelta(t, 1.0/3.0, r.Diagnostics.Volatility, 1e-6)
	})

	t.Run("old points fall outside the window", func(t *testing.T) {
		h := dailyHistory(march2024.AddDate(-1, 0, 0), 10, 11, 12, 13, 14)
		recent := dailyHistory(march2024, 15, 16, 17)
		h.Times = append(h.Times, recent.Times...)
		h.Prices = append(h.Prices, recent.Prices...)
		r := Classify(h, nil, opts)
		assert.Equal(t, schema.UnknownPrice, r.Label)
		assert.Contains(t, r.Reason, "last 60 days")
	})

	t.Run("sales filter keeps selling months only", func(t *testing.T) {
		h := dailyHistory(time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC), 10, 10, 10)
		feb := dailyHistory(time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC), 30, 31, 32, 33)
		h.Times = append(h.Times, feb.Times...)
		h.Prices = append(h.Prices, feb.Prices...)
		sales := []schema.SalesRecord{{MonthKey: "202401", Sales: 0}, {MonthKey: "202402", Sales: 12}}

		r := Classify(h, sales, opts)
		assert.True(t, r.Diagnostics.SalesFiltered)
		assert.Equal(t, 4, r.Diagnostics.WindowSize)
		assert.InDelta(t, 30.3, r.Diagnostics.LowQuantile, 1e-9)
	})

	t.Run("sales filter leaves too few prices", func(t *testing.T) {
		h := dailyHistory(time.Date(2024, time.January, 30, 0, 0, 0, 0, time.UTC), 10, 11, 12, 13)
		sales := []schema.SalesRecord{{MonthKey: "202401", Sales: 5}}
		r := Classify(h, sales, opts)
		assert.Equal(t, schema.UnknownPrice, r.Label)
	})
}

func TestLastMonthSales(t *testing.T) {
	sales := []schema.SalesRecord{
		{MonthKey: "202311", Sales: 40},
		{MonthKey: "202312", Sales: 75},
		{MonthKey: "bad", Sales: 99},
	}

	got, ok := LastMonthSales(sales, time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC))
	assert.True(t, ok)
	assert.Equal(t, 75, got)

	_, ok = LastMonthSales(sales, time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC))
	assert.False(t, ok)

	months := SalesMonths(append(sales, schema.SalesRecord{MonthKey: "202310", Sales: 0}))
	assert.Len(t, months, 2)
	assert.Contains(t, months, "202312")
}

// BenchmarkMannKendall benchmarks the trend test on a noisy rising series.
func BenchmarkMannKendall(b *testing.B) {
	x := make([]float64, 120)
	for i := range x {
		x[i] = float64(i) + math.Sin(float64(i))*5
	}

	for b.Loop() {
		MannKendall(x, 0.05)
	}
}
