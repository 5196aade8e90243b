package season

import (
	"slices"
	"sort"

	"github.com/huangsam/trendgate/schema"
)

// DefaultLowFlowMaxRatio is the default cumulative share accepted as low flow.
const DefaultLowFlowMaxRatio = 0.2

// Low-flow failure reasons.
const (
	ReasonNoTrafficData     = "no traffic data"
	ReasonZeroVolume        = "annual traffic volume is zero"
	ReasonNoCandidates      = "no low-month candidates outside peak windows"
	ReasonNoGlobalCandidate = "no global low-month candidates outside peak windows"
	ReasonNoConsensus       = "no consensus between keyword votes and global low months"
)

// monthShare is a calendar month with its share of annual demand.
type monthShare struct {
	month int
	ratio float64
}

// DetectLowFlow finds low-demand months outside the peak windows by per-keyword voting
// confirmed against a global candidate set.
func DetectLowFlow(series []schema.MonthlySeries, cycle [][]int, maxRatio float64) schema.LowFlowResult {
	if len(series) == 0 {
		return schema.LowFlowResult{Reason: ReasonNoTrafficData}
	}
	peak := UnionMonths(cycle)

	averages := make([]map[int]float64, len(series))
	for i, s := range series {
		averages[i] = monthlyAverages(s)
	}

	global := globalAverages(averages)
	if sumValues(global) == 0 {
		return schema.LowFlowResult{Reason: ReasonZeroVolume}
	}

	var votes [13]int
	voted := false
	for _, avg := range averages {
		for _, m := range lowCandidates(avg, peak, maxRatio) {
			votes[m]++
			voted = true
		}
	}
	if !voted {
		return schema.LowFlowResult{Reason: ReasonNoCandidates}
	}

	globalLow := lowCandidates(global, peak, maxRatio)
	if len(globalLow) == 0 {
		return schema.LowFlowResult{Reason: ReasonNoGlobalCandidate}
	}

	// Only votes confirmed by the global profile compete for the top count
	top := 0
	for m := 1; m <= 12; m++ {
		if !slices.Contains(globalLow, m) {
			votes[m] = 0
		}
		top = max(top, votes[m])
	}
	if top == 0 {
		return schema.LowFlowResult{Reason: ReasonNoConsensus}
	}
	var months []int
	for m := 1; m <= 12; m++ {
		if votes[m] == top {
			months = append(months, m)
		}
	}
	return schema.LowFlowResult{Months: months}
}

// monthlyAverages returns the multi-year mean per calendar month present in the series.
func monthlyAverages(s schema.MonthlySeries) map[int]float64 {
	sums := make(map[int]float64)
	counts := make(map[int]int)
	for _, p := range s.Points() {
		sums[p.Month] += p.Value
		counts[p.Month]++
	}
	avg := make(map[int]float64, len(sums))
	for m, sum := range sums {
		avg[m] = sum / float64(counts[m])
	}
	return avg
}

// globalAverages averages the per-keyword monthly means of every keyword carrying the month.
func globalAverages(averages []map[int]float64) map[int]float64 {
	sums := make(map[int]float64)
	counts := make(map[int]int)
	for _, avg := range averages {
		for m, v := range avg {
			sums[m] += v
			counts[m]++
		}
	}
	out := make(map[int]float64, len(sums))
	for m, sum := range sums {
		out[m] = sum / float64(counts[m])
	}
	return out
}

// lowCandidates greedily accepts the lowest-share non-peak months while the cumulative
// share stays within maxRatio. A zero-volume profile yields no candidates.
func lowCandidates(avg map[int]float64, peak []int, maxRatio float64) []int {
	total := sumValues(avg)
	if total == 0 {
		return nil
	}

	shares := make([]monthShare, 0, len(avg))
	for m, v := range avg {
		shares = append(shares, monthShare{month: m, ratio: v / total})
	}
	sort.SliceStable(shares, func(i, j int) bool {
		if shares[i].ratio != shares[j].ratio {
			return shares[i].ratio < shares[j].ratio
		}
		return shares[i].month < shares[j].month
	})

	var out []int
	var cumulative float64
	for _, s := range shares {
		if slices.Contains(peak, s.month) {
			continue
		}
		if cumulative+s.ratio > maxRatio {
			break
		}
		cumulative += s.ratio
		out = append(out, s.month)
	}
	slices.Sort(out)
	return out
}

// sumValues adds the monthly values in calendar order.
func sumValues(values map[int]float64) float64 {
	var total float64
	for m := 1; m <= 12; m++ {
		total += values[m]
	}
	return total
}
