package season

import (
	"math"
	"slices"
	"sort"

	"github.com/huangsam/trendgate/schema"
)

// Window search bounds.
const (
	minWindowLength = 2
	maxWindowLength = 11
)

// DetectorOptions holds the tunable thresholds of the seasonality detector.
type DetectorOptions struct {
	MinWindowScore     float64 // minimum summed contribution for a candidate window
	YearRoundStability float64 // stability below this is year-round
	StrongStability    float64 // stability at or above this may be strong cyclical
	StrongScore        float64 // main peak score at or above this may be strong cyclical
}

// DefaultDetectorOptions returns the default detector thresholds.
func DefaultDetectorOptions() DetectorOptions {
	return DetectorOptions{
		MinWindowScore:     0.05,
		YearRoundStability: 1.15,
		StrongStability:    1.3,
		StrongScore:        0.65,
	}
}

// yearNormalized is a point divided by the mean of its calendar year.
type yearNormalized struct {
	month int
	value float64
}

// Detect classifies one demand series into a flow type with its peak windows.
func Detect(series schema.MonthlySeries, opts DetectorOptions) schema.SeasonalityResult {
	result := schema.SeasonalityResult{
		Keyword:   series.Keyword,
		FlowType:  schema.UnknownFlow,
		Stability: 1.0,
	}

	points := series.Points()
	contrib := monthlyContribution(points)

	windows := candidateWindows(contrib, opts.MinWindowScore)
	windows = dropContained(windows)
	if len(windows) == 0 {
		return result
	}

	result.MainPeak = windows[0]
	result.SecondaryPeaks = windows[1:]
	result.Strength = windows[0].Score
	result.Stability = peakStability(points, windows[0].Months)
	result.FlowType = classify(result.Strength, result.Stability, opts)

	if result.FlowType == schema.UnknownFlow {
		result.MainPeak = schema.PeakWindow{}
	}
	return result
}

// classify maps main peak strength and stability to a flow type.
func classify(strength, stability float64, opts DetectorOptions) schema.FlowType {
	switch {
	case stability == 0:
		return schema.UnknownFlow
	case stability < opts.YearRoundStability:
		return schema.YearRoundFlow
	case strength >= opts.StrongScore && stability >= opts.StrongStability:
		return schema.StrongCyclicalFlow
	default:
		return schema.MixedSeasonalFlow
	}
}

// normalizeByYear divides each value by its calendar year mean. Years averaging zero are dropped.
func normalizeByYear(points []schema.MonthPoint) []yearNormalized {
	sums := make(map[int]float64)
	counts := make(map[int]int)
	for _, p := range points {
		sums[p.Year] += p.Value
		counts[p.Year]++
	}

	out := make([]yearNormalized, 0, len(points))
	for _, p := range points {
		mean := sums[p.Year] / float64(counts[p.Year])
		if mean == 0 || math.IsNaN(mean) {
			continue
		}
		out = append(out, yearNormalized{month: p.Month, value: p.Value / mean})
	}
	return out
}

// monthlyContribution returns the share of above-average excess per calendar month.
// Index 0 is January. All zeros when the series carries no excess.
func monthlyContribution(points []schema.MonthPoint) [12]float64 {
	var contrib [12]float64

	normalized := normalizeByYear(points)
	if len(normalized) == 0 {
		return contrib
	}

	var mean float64
	for _, n := range normalized {
		mean += n.value
	}
	mean /= float64(len(normalized))

	var total float64
	for _, n := range normalized {
		excess := math.Max(0, n.value-mean)
		contrib[n.month-1] += excess
		total += excess
	}
	if total == 0 {
		return [12]float64{}
	}
	for i := range contrib {
		contrib[i] /= total
	}
	return contrib
}

// candidateWindows scores every contiguous window and keeps those above minScore.
// The result is ordered by score descending, then length ascending, then generation order.
func candidateWindows(contrib [12]float64, minScore float64) []schema.PeakWindow {
	var windows []schema.PeakWindow
	for length := minWindowLength; length <= maxWindowLength; length++ {
		for start := 1; start <= 12; start++ {
			months := windowMonths(start, length)
			score, ok := windowScore(contrib, months)
			if !ok || score < minScore {
				continue
			}
			windows = append(windows, schema.PeakWindow{Months: months, Score: score, Length: length})
		}
	}
	sort.SliceStable(windows, func(i, j int) bool {
		if windows[i].Score != windows[j].Score {
			return windows[i].Score > windows[j].Score
		}
		return windows[i].Length < windows[j].Length
	})
	return windows
}

// windowScore sums the contribution of the months. A month without contribution rejects the window.
func windowScore(contrib [12]float64, months []int) (float64, bool) {
	var score float64
	for _, m := range months {
		ratio := contrib[m-1]
		if ratio <= 0 {
			return 0, false
		}
		score += ratio
	}
	return score, true
}

// dropContained removes windows whose months are all inside an already retained window.
func dropContained(windows []schema.PeakWindow) []schema.PeakWindow {
	var kept []schema.PeakWindow
	for _, w := range windows {
		contained := slices.ContainsFunc(kept, func(k schema.PeakWindow) bool {
			return isSubset(w.Months, k.Months)
		})
		if !contained {
			kept = append(kept, w)
		}
	}
	return kept
}

// isSubset reports whether every month of a is in b.
func isSubset(a, b []int) bool {
	for _, m := range a {
		if !slices.Contains(b, m) {
			return false
		}
	}
	return true
}

// peakStability returns the minimum over years of the peak months mean divided by the year mean.
// A year averaging zero yields 0. Years without peak months are ignored; none at all yields 1.
func peakStability(points []schema.MonthPoint, peak []int) float64 {
	type yearAcc struct {
		sum, peakSum     float64
		count, peakCount int
	}
	years := make(map[int]*yearAcc)
	var order []int
	for _, p := range points {
		acc, ok := years[p.Year]
		if !ok {
			acc = &yearAcc{}
			years[p.Year] = acc
			order = append(order, p.Year)
		}
		acc.sum += p.Value
		acc.count++
		if slices.Contains(peak, p.Month) {
			acc.peakSum += p.Value
			acc.peakCount++
		}
	}

	stability := math.Inf(1)
	for _, year := range order {
		acc := years[year]
		mean := acc.sum / float64(acc.count)
		if mean == 0 {
			return 0
		}
		if acc.peakCount == 0 {
			continue
		}
		ratio := (acc.peakSum / float64(acc.peakCount)) / mean
		stability = math.Min(stability, ratio)
	}
	if math.IsInf(stability, 1) {
		return 1.0
	}
	return stability
}
