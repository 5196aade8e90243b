package pricing

import (
	"math"

	"github.com/huangsam/trendgate/schema"
	"gonum.org/v1/gonum/stat/distuv"
)

// MKResult is the outcome of a Mann-Kendall trend test.
type MKResult struct {
	Trend     schema.TrendDirection
	H         bool    // trend is significant at the given alpha
	P         float64 // two-sided p-value
	Z         float64
	Tau       float64
	S         float64
	VarS      float64
	Slope     float64 // Sen's slope
	Intercept float64
}

// MannKendall runs the original Mann-Kendall test with tie correction.
// Fewer than two values yield no trend with p = 1.
func MannKendall(x []float64, alpha float64) MKResult {
	n := len(x)
	if n < 2 {
		return MKResult{Trend: schema.NoTrend, P: 1}
	}

	s := mkScore(x)
	varS := mkVariance(x)

	var z float64
	switch {
	case varS == 0:
		z = 0
	case s > 0:
		z = (s - 1) / math.Sqrt(varS)
	case s < 0:
		z = (s + 1) / math.Sqrt(varS)
	}

	p := 2 * (1 - distuv.UnitNormal.CDF(math.Abs(z)))
	h := math.Abs(z) > distuv.UnitNormal.Quantile(1-alpha/2)

	trend := schema.NoTrend
	switch {
	case z < 0 && h:
		trend = schema.DecreasingTrend
	case z > 0 && h:
		trend = schema.IncreasingTrend
	}

	slope, intercept := sensSlope(x)
	return MKResult{
		Trend:     trend,
		H:         h,
		P:         p,
		Z:         z,
		Tau:       s / (0.5 * float64(n) * float64(n-1)),
		S:         s,
		VarS:      varS,
		Slope:     slope,
		Intercept: intercept,
	}
}

// mkScore sums the signs of all forward differences.
func mkScore(x []float64) float64 {
	var s float64
	for k := 0; k < len(x)-1; k++ {
		for j := k + 1; j < len(x); j++ {
			switch d := x[j] - x[k]; {
			case d > 0:
				s++
			case d < 0:
				s--
			}
		}
	}
	return s
}

// mkVariance is the variance of S, corrected for tied groups.
func mkVariance(x []float64) float64 {
	n := float64(len(x))
	ties := make(map[float64]int)
	for _, v := range x {
		ties[v]++
	}
	variance := n * (n - 1) * (2*n + 5)
	for _, tp := range ties {
		t := float64(tp)
		variance -= t * (t - 1) * (2*t + 5)
	}
	return variance / 18
}

// sensSlope returns the median of pairwise slopes and the matching intercept.
func sensSlope(x []float64) (float64, float64) {
	n := len(x)
	slopes := make([]float64, 0, n*(n-1)/2)
	for i := 0; i < n-1; i++ {
		for j := i + 1; j < n; j++ {
			slopes = append(slopes, (x[j]-x[i])/float64(j-i))
		}
	}
	slope := Median(slopes)

	idx := make([]float64, n)
	for i := range idx {
		idx[i] = float64(i)
	}
	return slope, Median(x) - Median(idx)*slope
}
