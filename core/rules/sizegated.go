package rules

import (
	"fmt"

	"github.com/huangsam/trendgate/schema"
)

// SizeGated decides by a unit-count price table, then cycle timing, then price trend.
type SizeGated struct {
	name  string
	table PriceTable
	rows  []Entry
}

// NewSizeGated builds a size-gated policy. A nil table behaves as an unconfigured category.
func NewSizeGated(name string, table PriceTable) *SizeGated {
	return &SizeGated{name: name, table: table, rows: sizeGatedRows()}
}

// Name implements Policy.
func (p *SizeGated) Name() string { return p.name }

// Table implements Policy.
func (p *SizeGated) Table() []Entry { return p.rows }

// Thresholds returns the price table.
func (p *SizeGated) Thresholds() PriceTable { return p.table }

// Decide implements Policy.
func (p *SizeGated) Decide(f Facts) schema.DevelopmentDecision {
	s := Signals{Facts: f}
	if f.LastMonthSales != nil && f.Price != nil {
		s.Check = Check(p.table, f.Title, f.Price)
	}
	return evaluate(p.rows, s)
}

func missingSalesOrPrice(s Signals) bool {
	return s.LastMonthSales == nil || s.Price == nil
}

func ruleIs(status RuleStatus) func(Signals) bool {
	return func(s Signals) bool {
		return !missingSalesOrPrice(s) && s.Check.Status == status
	}
}

func ruleReason(s Signals) string { return s.Check.Reason }

// noFixedRuleRows decide when no configured rule applies, using flow type and price trend only.
func noFixedRuleRows(prefix string, gate func(Signals) bool) []Entry {
	return []Entry{
		{
			Name:    prefix + "/year-round-rising",
			Verdict: schema.TrackVerdict,
			Reason:  "no fixed rule, year-round demand with rising price, keep tracking",
			When:    func(s Signals) bool { return gate(s) && s.YearRound() && s.Rising() },
			Detail:  ruleReason,
		},
		{
			Name:    prefix + "/year-round-falling",
			Verdict: schema.RejectVerdict,
			Reason:  "no fixed rule, year-round demand but falling price, do not develop",
			When:    func(s Signals) bool { return gate(s) && s.YearRound() && s.Falling() },
			Detail:  ruleReason,
		},
		{
			Name:    prefix + "/rising",
			Verdict: schema.TrackVerdict,
			Reason:  "no fixed rule, rising price, keep tracking",
			When:    func(s Signals) bool { return gate(s) && s.Rising() },
			Detail:  ruleReason,
		},
		{
			Name:    prefix + "/not-rising",
			Verdict: schema.RejectVerdict,
			Reason:  "no fixed rule, price is not rising, do not develop",
			When: func(s Signals) bool {
				return gate(s) && (s.Falling() || s.PriceTrend == schema.VolatilePrice)
			},
			Detail: ruleReason,
		},
		{
			Name:    prefix + "/insufficient",
			Verdict: schema.UndeterminedVerdict,
			Reason:  "no fixed rule, insufficient information",
			When:    gate,
			Detail:  ruleReason,
		},
	}
}

// sizeGatedRows is the ordered decision table of the size-gated policy.
func sizeGatedRows() []Entry {
	var rows []Entry
	rows = append(rows, Entry{
		Name:    "missing-sales-or-price",
		Verdict: schema.UndeterminedVerdict,
		Reason:  "insufficient data: sales or price is missing",
		When:    missingSalesOrPrice,
	})
	rows = append(rows, noFixedRuleRows("unit-unparsed", ruleIs(RuleUnitUnparsed))...)
	rows = append(rows,
		Entry{
			Name:    "price-unparsed",
			Verdict: schema.UndeterminedVerdict,
			Reason:  "insufficient data: " + ReasonPriceUnparsed,
			When:    ruleIs(RulePriceUnparsed),
		},
		Entry{
			Name:    "no-demand-data",
			Verdict: schema.UndeterminedVerdict,
			Reason:  "insufficient data: no keyword demand data",
			When:    func(s Signals) bool { return !s.HasSeries },
		},
	)
	rows = append(rows, noFixedRuleRows("no-rule", func(s Signals) bool {
		return !missingSalesOrPrice(s) && (s.Check.Status == RuleNotConfigured || s.Check.Status == RuleMissingEntry)
	})...)
	rows = append(rows, Entry{
		Name:    "price-too-low",
		Verdict: schema.RejectVerdict,
		Reason:  ReasonPriceTooLow,
		When:    ruleIs(RuleFailed),
		Detail: func(s Signals) string {
			return fmt.Sprintf("%.2f below %.2f", s.Check.Price, s.Check.Threshold)
		},
	})

	passed := ruleIs(RulePassed)
	noCycle := func(s Signals) bool { return passed(s) && len(s.Cycle) == 0 }
	missed := func(s Signals) bool { return passed(s) && len(s.Cycle) > 0 && !s.Catchable() }
	caught := func(s Signals) bool { return passed(s) && s.Catchable() }

	rows = append(rows,
		Entry{
			Name:    "no-cycle/rising",
			Verdict: schema.TrackVerdict,
			Reason:  "no cycle identified, cannot tell whether to develop now, keep tracking",
			When:    func(s Signals) bool { return noCycle(s) && s.Rising() },
		},
		Entry{
			Name:    "no-cycle/falling",
			Verdict: schema.RejectVerdict,
			Reason:  "no cycle identified and falling price leaves a thin margin, do not develop",
			When:    func(s Signals) bool { return noCycle(s) && s.Falling() },
		},
		Entry{
			Name:    "no-cycle/insufficient",
			Verdict: schema.UndeterminedVerdict,
			Reason:  "no cycle identified, insufficient information",
			When:    noCycle,
		},
		Entry{
			Name:    "cannot-catch/rising",
			Verdict: schema.TrackVerdict,
			Reason:  "price is rising but the demand window cannot be caught, keep tracking",
			When:    func(s Signals) bool { return missed(s) && s.Rising() },
		},
		Entry{
			Name:    "cannot-catch/falling",
			Verdict: schema.RejectVerdict,
			Reason:  "falling price and the demand window cannot be caught, do not develop",
			When:    func(s Signals) bool { return missed(s) && s.Falling() },
		},
		Entry{
			Name:    "cannot-catch/other",
			Verdict: schema.RejectVerdict,
			Reason:  "price may drop below the profit threshold and the demand window cannot be caught, do not develop",
			When:    missed,
		},
		Entry{
			Name:    "catchable/year-round-rising",
			Verdict: schema.DevelopVerdict,
			Reason:  "year-round demand with rising price, develop first",
			When:    func(s Signals) bool { return caught(s) && s.YearRound() && s.Rising() },
		},
		Entry{
			Name:    "catchable/year-round-falling",
			Verdict: schema.TrackVerdict,
			Reason:  "year-round demand but falling price, keep tracking",
			When:    func(s Signals) bool { return caught(s) && s.YearRound() && s.Falling() },
		},
		Entry{
			Name:    "catchable/rising",
			Verdict: schema.DevelopVerdict,
			Reason:  "rising price, develop",
			When:    func(s Signals) bool { return caught(s) && s.Rising() },
		},
		Entry{
			Name:    "catchable/not-rising",
			Verdict: schema.TrackVerdict,
			Reason:  "price is not rising but still carries a thin margin, keep tracking",
			When: func(s Signals) bool {
				return caught(s) && (s.Falling() || s.PriceTrend == schema.VolatilePrice)
			},
		},
		Entry{
			Name:    "catchable/insufficient",
			Verdict: schema.UndeterminedVerdict,
			Reason:  fallbackReason,
			When:    caught,
		},
	)
	return rows
}
