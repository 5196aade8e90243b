package pricing

import (
	"fmt"

	"github.com/huangsam/trendgate/schema"
	"gonum.org/v1/gonum/stat"
)

// Minimum observation counts.
const (
	minObservations = 3
	minWindowSize   = 4
)

// Position bands around the quantiles.
const (
	nearHighFactor = 0.8
	nearLowFactor  = 1.2
)

// Options holds the tunable parameters of the price trend classifier.
type Options struct {
	WindowDays          int     // analysis window when no sales records are supplied
	Alpha               float64 // significance level of the trend test
	VolatilityThreshold float64 // coefficient of variation at or above which prices are volatile
	QuantileLevel       float64 // upper quantile; the lower one is 1 - QuantileLevel
}

// DefaultOptions returns the default classifier parameters.
func DefaultOptions() Options {
	return Options{
		WindowDays:          60,
		Alpha:               0.05,
		VolatilityThreshold: 0.05,
		QuantileLevel:       0.9,
	}
}

// Classify labels the price trend of a price history.
//
// When sales records are supplied, only prices from months with positive sales are
// used and the whole filtered series is the analysis window. Otherwise the window is
// the last WindowDays days before the latest observation.
func Classify(history schema.PriceHistory, sales []schema.SalesRecord, opts Options) schema.PriceTrendResult {
	obs := Clean(history)
	if len(obs) < minObservations {
		return unknown("insufficient data")
	}

	salesSupplied := len(sales) > 0
	var window []Observation
	if salesSupplied {
		obs = filterBySalesMonths(obs, sales)
		if len(obs) < minObservations {
			return unknown("insufficient prices in months with sales")
		}
		window = obs
	} else {
		window = lastNDays(obs, opts.WindowDays)
		if len(window) < minWindowSize {
			return unknown(fmt.Sprintf("insufficient data in the last %d days", opts.WindowDays))
		}
	}
	if len(window) < minWindowSize {
		return unknown("insufficient analysis window")
	}

	all := prices(obs)
	recent := prices(window)
	latest := recent[len(recent)-1]

	d := schema.PriceDiagnostics{
		Latest:        latest,
		HighQuantile:  Percentile(all, opts.QuantileLevel),
		LowQuantile:   Percentile(all, 1-opts.QuantileLevel),
		WindowMean:    stat.Mean(recent, nil),
		Volatility:    CoefficientOfVariation(recent),
		SalesFiltered: salesSupplied,
		WindowSize:    len(recent),
	}
	d.NearHigh = latest >= nearHighFactor*d.HighQuantile
	d.NearLow = latest <= nearLowFactor*d.LowQuantile

	mk := MannKendall(recent, opts.Alpha)
	d.TrendDirection = mk.Trend
	d.TrendSignificant = mk.P < opts.Alpha
	d.PValue = mk.P
	d.Tau = mk.Tau
	d.SenSlope = mk.Slope

	result := schema.PriceTrendResult{Diagnostics: d}
	switch {
	case d.TrendSignificant && d.TrendDirection == schema.IncreasingTrend && latest > d.WindowMean && d.NearHigh:
		result.Label = schema.RisingPrice
		result.Reason = fmt.Sprintf("significant upward trend (p=%.3f), latest price near the high quantile", d.PValue)
	case d.TrendSignificant && d.TrendDirection == schema.DecreasingTrend && latest < d.WindowMean && d.NearLow:
		result.Label = schema.FallingPrice
		result.Reason = fmt.Sprintf("significant downward trend (p=%.3f), latest price near the low quantile", d.PValue)
	case d.Volatility >= opts.VolatilityThreshold:
		result.Label = schema.VolatilePrice
		result.Reason = fmt.Sprintf("volatility %.3f at or above %.3f", d.Volatility, opts.VolatilityThreshold)
	default:
		result.Label = schema.StablePrice
		result.Reason = "no confirmed trend and low volatility"
	}
	return result
}

func unknown(reason string) schema.PriceTrendResult {
	return schema.PriceTrendResult{
		Label:       schema.UnknownPrice,
		Reason:      reason,
		Diagnostics: schema.PriceDiagnostics{TrendDirection: schema.NoTrend},
	}
}
