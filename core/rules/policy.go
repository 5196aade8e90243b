// Package rules maps the signals of a product to a development verdict through
// ordered, category-specific decision tables.
package rules

import (
	"strings"

	"github.com/huangsam/trendgate/schema"
)

// DefaultSalesThreshold is the last-month sales volume the volume-gated policy treats as strong.
const DefaultSalesThreshold = 50

// Facts are the inputs a policy decides on.
type Facts struct {
	MainCategory   string
	SubCategory    string
	Title          string
	Price          any  // raw price, a number or a string such as "$14.99"
	LastMonthSales *int // nil when no sales record covers the previous month
	HasSeries      bool // keyword demand data was collected
	FlowType       schema.FlowType
	Cycle          [][]int
	Timing         schema.TimingFeasibility
	PriceTrend     schema.PriceLabel
}

// Signals are the facts plus everything derived from them before the table is evaluated.
type Signals struct {
	Facts
	Check RuleCheck
}

// YearRound reports whether demand is flat across the year.
func (s Signals) YearRound() bool { return s.FlowType == schema.YearRoundFlow }

// Rising reports whether the price trend is rising.
func (s Signals) Rising() bool { return s.PriceTrend == schema.RisingPrice }

// Falling reports whether the price trend is falling.
func (s Signals) Falling() bool { return s.PriceTrend == schema.FallingPrice }

// Catchable reports whether at least one peak window can be caught.
func (s Signals) Catchable() bool { return s.Timing.Overall }

// Entry is one row of a decision table. Rows are evaluated in order and the first
// row whose predicate holds decides.
type Entry struct {
	Name    string
	Verdict schema.Verdict
	Reason  string
	When    func(s Signals) bool
	Detail  func(s Signals) string // optional context appended to the reason
}

// Policy decides the verdict for one category variant.
type Policy interface {
	Name() string
	Table() []Entry
	Decide(f Facts) schema.DevelopmentDecision
}

// fallbackReason is used when no table row matches.
const fallbackReason = "insufficient information"

// evaluate walks the table and returns the first matching row as a decision.
func evaluate(table []Entry, s Signals) schema.DevelopmentDecision {
	decision := schema.DevelopmentDecision{
		Verdict:   schema.UndeterminedVerdict,
		Reason:    fallbackReason,
		UnitCount: s.Check.UnitCount,
	}
	for _, e := range table {
		if !e.When(s) {
			continue
		}
		decision.Verdict = e.Verdict
		decision.Reason = e.Reason
		decision.Rule = e.Name
		if e.Detail != nil {
			if detail := e.Detail(s); detail != "" {
				decision.Reason += " (" + detail + ")"
			}
		}
		return decision
	}
	return decision
}

// categoryKey identifies a (main category, sub category) pair.
type categoryKey struct {
	main, sub string
}

func newCategoryKey(main, sub string) categoryKey {
	return categoryKey{
		main: strings.ToLower(strings.TrimSpace(main)),
		sub:  strings.ToLower(strings.TrimSpace(sub)),
	}
}

// Options tune the registered policies.
type Options struct {
	SalesThreshold int
}

// DefaultOptions returns the default policy options.
func DefaultOptions() Options {
	return Options{SalesThreshold: DefaultSalesThreshold}
}

// Registration pairs a category with its policy.
type Registration struct {
	MainCategory string
	SubCategory  string
	Policy       Policy
}

// Registry selects a policy by category. Unknown categories use the fallback.
type Registry struct {
	policies map[categoryKey]Policy
	order    []Registration
	fallback Policy
}

// NewRegistry builds the registry of configured categories.
func NewRegistry(opts Options) *Registry {
	r := &Registry{
		policies: make(map[categoryKey]Policy),
		fallback: NewSizeGated("unconfigured", nil),
	}
	r.register("toys&games", "plates", NewSizeGated("plates", PlatesPriceTable))
	r.register("toys&games", "banners", NewVolumeGated("banners", opts.SalesThreshold))
	return r
}

func (r *Registry) register(main, sub string, p Policy) {
	r.policies[newCategoryKey(main, sub)] = p
	r.order = append(r.order, Registration{MainCategory: main, SubCategory: sub, Policy: p})
}

// Lookup returns the policy configured for a category.
func (r *Registry) Lookup(mainCategory, subCategory string) (Policy, bool) {
	p, ok := r.policies[newCategoryKey(mainCategory, subCategory)]
	return p, ok
}

// Decide selects the policy for the facts' category and applies it.
func (r *Registry) Decide(f Facts) schema.DevelopmentDecision {
	p, ok := r.Lookup(f.MainCategory, f.SubCategory)
	if !ok {
		p = r.fallback
	}
	return p.Decide(f)
}

// Registrations returns the configured categories in registration order.
func (r *Registry) Registrations() []Registration {
	return r.order
}

// Fallback returns the policy used for unconfigured categories.
func (r *Registry) Fallback() Policy {
	return r.fallback
}

// defaultRegistry is read-only after initialization.
var defaultRegistry = NewRegistry(DefaultOptions())

// Lookup returns the default policy configured for a category.
func Lookup(mainCategory, subCategory string) (Policy, bool) {
	return defaultRegistry.Lookup(mainCategory, subCategory)
}

// Decide applies the default registry.
func Decide(f Facts) schema.DevelopmentDecision {
	return defaultRegistry.Decide(f)
}
