package schema

import "time"

// RowResult is the full analysis output for one product row.
type RowResult struct {
	ID             string              `json:"id"`
	Title          string              `json:"title"`
	MainCategory   string              `json:"main_category"`
	SubCategory    string              `json:"sub_category"`
	FlowType       FlowType            `json:"flow_type"`
	Cycle          [][]int             `json:"cycle"`
	LowMonths      []int               `json:"low_months"`
	LowFlowReason  string              `json:"low_flow_reason,omitempty"`
	CycleText      string              `json:"cycle_text"`
	PriceTrend     PriceTrendResult    `json:"price_trend"`
	Timing         TimingFeasibility   `json:"timing"`
	Decision       DevelopmentDecision `json:"decision"`
	LastMonthSales *int                `json:"last_month_sales,omitempty"`
	Seasons        SeasonSummary       `json:"seasons"`
	Keywords       []SeasonalityResult `json:"keywords,omitempty"`
	Cached         bool                `json:"-"`
}

// CycleReport is the seasonality breakdown of one product row.
type CycleReport struct {
	ID        string              `json:"id"`
	Keywords  []SeasonalityResult `json:"keywords"`
	Consensus ConsensusCycle      `json:"consensus"`
	LowFlow   LowFlowResult       `json:"low_flow"`
	Text      string              `json:"text"`
}

// AnalyzeOutput is the output of one analyze run.
type AnalyzeOutput struct {
	RunID    string          `json:"run_id"`
	Results  []RowResult     `json:"results"`
	Counts   map[Verdict]int `json:"counts"`
	Duration time.Duration   `json:"duration"`
}

// CountVerdicts tallies the verdicts of the given results.
func CountVerdicts(results []RowResult) map[Verdict]int {
	counts := make(map[Verdict]int, len(AllVerdicts))
	for _, v := range AllVerdicts {
		counts[v] = 0
	}
	for _, r := range results {
		counts[r.Decision.Verdict]++
	}
	return counts
}
