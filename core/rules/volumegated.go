package rules

import (
	"fmt"

	"github.com/huangsam/trendgate/schema"
)

// VolumeGated decides by last-month sales volume, price trend and cycle timing.
type VolumeGated struct {
	name      string
	threshold int
	rows      []Entry
}

// NewVolumeGated builds a volume-gated policy with the given sales threshold.
func NewVolumeGated(name string, threshold int) *VolumeGated {
	if threshold <= 0 {
		threshold = DefaultSalesThreshold
	}
	p := &VolumeGated{name: name, threshold: threshold}
	p.rows = p.buildRows()
	return p
}

// Name implements Policy.
func (p *VolumeGated) Name() string { return p.name }

// Table implements Policy.
func (p *VolumeGated) Table() []Entry { return p.rows }

// Threshold returns the sales threshold.
func (p *VolumeGated) Threshold() int { return p.threshold }

// Decide implements Policy.
func (p *VolumeGated) Decide(f Facts) schema.DevelopmentDecision {
	return evaluate(p.rows, Signals{Facts: f})
}

func (p *VolumeGated) buildRows() []Entry {
	known := func(s Signals) bool {
		return s.LastMonthSales != nil && s.PriceTrend != "" && s.PriceTrend != schema.UnknownPrice
	}
	strong := func(s Signals) bool { return known(s) && *s.LastMonthSales >= p.threshold }
	weak := func(s Signals) bool { return known(s) && *s.LastMonthSales < p.threshold }
	stable := func(s Signals) bool { return s.PriceTrend == schema.StablePrice }
	volume := func(s Signals) string {
		return fmt.Sprintf("last month sales %d, threshold %d", *s.LastMonthSales, p.threshold)
	}

	return []Entry{
		{
			Name:    "missing-sales",
			Verdict: schema.UndeterminedVerdict,
			Reason:  "insufficient data: last month sales is missing",
			When:    func(s Signals) bool { return s.LastMonthSales == nil },
		},
		{
			Name:    "missing-trend",
			Verdict: schema.UndeterminedVerdict,
			Reason:  "insufficient data: price trend is unknown",
			When:    func(s Signals) bool { return !known(s) },
		},
		{
			Name:    "strong/rising-catchable",
			Verdict: schema.DevelopVerdict,
			Reason:  "strong sales with rising price and a catchable demand window, develop",
			When:    func(s Signals) bool { return strong(s) && s.Rising() && s.Catchable() },
			Detail:  volume,
		},
		{
			Name:    "strong/rising",
			Verdict: schema.TrackVerdict,
			Reason:  "strong sales with rising price but the demand window cannot be caught, keep tracking",
			When:    func(s Signals) bool { return strong(s) && s.Rising() },
			Detail:  volume,
		},
		{
			Name:    "strong/stable-catchable",
			Verdict: schema.DevelopVerdict,
			Reason:  "strong sales with stable price and a catchable demand window, develop",
			When:    func(s Signals) bool { return strong(s) && stable(s) && s.Catchable() },
			Detail:  volume,
		},
		{
			Name:    "strong/stable-or-volatile",
			Verdict: schema.TrackVerdict,
			Reason:  "strong sales without a confirmed price trend, keep tracking",
			When: func(s Signals) bool {
				return strong(s) && (stable(s) || s.PriceTrend == schema.VolatilePrice)
			},
			Detail: volume,
		},
		{
			Name:    "strong/falling",
			Verdict: schema.TrackVerdict,
			Reason:  "strong sales but falling price, keep tracking",
			When:    func(s Signals) bool { return strong(s) && s.Falling() },
			Detail:  volume,
		},
		{
			Name:    "weak/falling",
			Verdict: schema.RejectVerdict,
			Reason:  "weak sales and falling price, demand is soft, do not develop",
			When:    func(s Signals) bool { return weak(s) && s.Falling() },
			Detail:  volume,
		},
		{
			Name:    "weak/rising-catchable",
			Verdict: schema.TrackVerdict,
			Reason:  "weak sales but rising price and a catchable demand window, keep tracking",
			When:    func(s Signals) bool { return weak(s) && s.Rising() && s.Catchable() },
			Detail:  volume,
		},
		{
			Name:    "weak/other",
			Verdict: schema.RejectVerdict,
			Reason:  "weak sales, do not develop",
			When:    weak,
			Detail:  volume,
		},
	}
}
