// Package schema has the data model shared by every trendgate package.
package schema

import (
	"slices"
	"time"
)

// MonthPoint is one calendar-anchored observation of a monthly series.
type MonthPoint struct {
	Year  int
	Month int // 1..12
	Value float64
}

// MonthlySeries is a contiguous monthly series anchored at a start month.
type MonthlySeries struct {
	Keyword string    `json:"keyword"`
	Start   time.Time `json:"start"`
	Values  []float64 `json:"values"`
}

// Points returns the series as calendar-anchored points.
func (s MonthlySeries) Points() []MonthPoint {
	points := make([]MonthPoint, len(s.Values))
	for i, v := range s.Values {
		t := s.Start.AddDate(0, i, 0)
		points[i] = MonthPoint{Year: t.Year(), Month: int(t.Month()), Value: v}
	}
	return points
}

// IsZero reports whether the series has no positive value.
func (s MonthlySeries) IsZero() bool {
	for _, v := range s.Values {
		if v > 0 {
			return false
		}
	}
	return true
}

// PeakWindow is a contiguous, possibly year-wrapping set of calendar months.
type PeakWindow struct {
	Months []int   `json:"months"` // generation order, may wrap (e.g. 11, 12, 1)
	Score  float64 `json:"score"`
	Length int     `json:"length"`
}

// IsEmpty reports whether the window holds no months.
func (w PeakWindow) IsEmpty() bool {
	return len(w.Months) == 0
}

// Sorted returns the window months in ascending order.
func (w PeakWindow) Sorted() []int {
	out := slices.Clone(w.Months)
	slices.Sort(out)
	return out
}

// SeasonalityResult is the classification of one demand series.
type SeasonalityResult struct {
	Keyword        string       `json:"keyword,omitempty"`
	FlowType       FlowType     `json:"flow_type"`
	MainPeak       PeakWindow   `json:"main_peak"`
	SecondaryPeaks []PeakWindow `json:"secondary_peaks"`
	Strength       float64      `json:"strength"`
	Stability      float64      `json:"stability"`
}

// ConsensusCycle is the agreed set of peak month-groups for one product.
type ConsensusCycle struct {
	Groups   [][]int  `json:"groups"`
	FlowType FlowType `json:"flow_type"`
}

// LowFlowResult holds the low-demand months outside the peak windows.
type LowFlowResult struct {
	Months []int  `json:"months"`
	Reason string `json:"reason,omitempty"`
}

// PriceDiagnostics carries the intermediate values of the price classification.
type PriceDiagnostics struct {
	Latest           float64        `json:"latest"`
	HighQuantile     float64        `json:"high_quantile"`
	LowQuantile      float64        `json:"low_quantile"`
	WindowMean       float64        `json:"window_mean"`
	Volatility       float64        `json:"volatility"`
	TrendDirection   TrendDirection `json:"trend_direction"`
	TrendSignificant bool           `json:"trend_significant"`
	PValue           float64        `json:"p_value"`
	Tau              float64        `json:"tau"`
	SenSlope         float64        `json:"sen_slope"`
	NearHigh         bool           `json:"near_high"`
	NearLow          bool           `json:"near_low"`
	SalesFiltered    bool           `json:"sales_filtered"`
	WindowSize       int            `json:"window_size"`
}

// PriceTrendResult is the classified price trend of a product.
type PriceTrendResult struct {
	Label       PriceLabel       `json:"label"`
	Reason      string           `json:"reason,omitempty"`
	Diagnostics PriceDiagnostics `json:"diagnostics"`
}

// WindowTiming is the launch feasibility for a single peak window.
type WindowTiming struct {
	Window      []int       `json:"window"`
	CanHit      bool        `json:"can_hit"`
	GapMonths   int         `json:"gap_months"`
	YearContext YearContext `json:"year_context"`
	Reason      string      `json:"reason"`
}

// TimingFeasibility is the launch feasibility across all peak windows.
type TimingFeasibility struct {
	Overall   bool           `json:"overall"`
	Reason    string         `json:"reason"`
	PerWindow []WindowTiming `json:"per_window"`
}

// DevelopmentDecision is the final verdict for a product.
type DevelopmentDecision struct {
	Verdict   Verdict `json:"verdict"`
	Reason    string  `json:"reason"`
	UnitCount *int    `json:"unit_count,omitempty"`
	Rule      string  `json:"rule,omitempty"` // name of the decision table entry that matched
}

// SeasonSummary describes which seasons the cycle covers and their recent sales.
type SeasonSummary struct {
	Seasons []string       `json:"seasons"`
	AllYear bool           `json:"all_year"`
	Sales   map[string]int `json:"sales"`
	Text    string         `json:"text"`
}
