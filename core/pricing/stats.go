package pricing

import (
	"math"
	"slices"

	"gonum.org/v1/gonum/stat"
)

// Percentile returns the q-quantile of x with linear interpolation between the
// closest ranks, q in [0, 1]. It returns NaN for an empty slice.
func Percentile(x []float64, q float64) float64 {
	if len(x) == 0 {
		return math.NaN()
	}
	sorted := slices.Clone(x)
	slices.Sort(sorted)

	q = math.Min(math.Max(q, 0), 1)
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo] + (sorted[hi]-sorted[lo])*frac
}

// Median is the 0.5 percentile.
func Median(x []float64) float64 {
	return Percentile(x, 0.5)
}

// CoefficientOfVariation returns the population standard deviation divided by the mean.
// A small epsilon keeps a zero mean from dividing by zero.
func CoefficientOfVariation(x []float64) float64 {
	if len(x) == 0 {
		return 0
	}
	mean, variance := stat.PopMeanVariance(x, nil)
	return math.Sqrt(variance) / (mean + 1e-9)
}
