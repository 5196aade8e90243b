package rules

import (
	"cmp"
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"
)

// Threshold is the minimum price for one unit count. A non-empty BySize table
// replaces Flat and is keyed by a diameter token such as "9inch".
type Threshold struct {
	Flat   float64            `json:"flat,omitempty"`
	BySize map[string]float64 `json:"by_size,omitempty"`
}

// SizeKeys returns the diameter tokens of BySize from the largest diameter down.
func (t Threshold) SizeKeys() []string {
	keys := slices.Collect(maps.Keys(t.BySize))
	slices.SortFunc(keys, func(a, b string) int {
		if c := cmp.Compare(sizeInches(b), sizeInches(a)); c != 0 {
			return c
		}
		return strings.Compare(a, b)
	})
	return keys
}

// sizeInches reads the leading diameter of a token such as "9inch".
func sizeInches(token string) int {
	n, _ := strconv.Atoi(strings.TrimSuffix(token, "inch"))
	return n
}

// PriceTable maps a unit count to its threshold.
type PriceTable map[int]Threshold

// UnitCounts returns the configured unit counts in ascending order.
func (t PriceTable) UnitCounts() []int {
	return slices.Sorted(maps.Keys(t))
}

// PlatesPriceTable is the price table of disposable party plates.
var PlatesPriceTable = PriceTable{
	40:  {Flat: 16.99},
	48:  {Flat: 11.99},
	60:  {BySize: map[string]float64{"9inch": 14.99, "7inch": 11.99}},
	96:  {Flat: 15.99},
	100: {Flat: 16.99},
	150: {Flat: 18.99},
	162: {Flat: 18.99},
	168: {Flat: 25.99},
	200: {Flat: 21.99},
	300: {Flat: 24.99},
	350: {Flat: 26.99},
}

// RuleStatus is the outcome of a price rule check.
type RuleStatus int

// Rule check outcomes.
const (
	RuleUnitUnparsed RuleStatus = iota
	RulePriceUnparsed
	RuleNotConfigured
	RuleMissingEntry
	RulePassed
	RuleFailed
)

// Rule check reasons.
const (
	ReasonUnitUnparsed  = "unit count parse failed"
	ReasonPriceUnparsed = "price parse failed"
	ReasonNotConfigured = "no rule configured for category"
	ReasonPassed        = "rule check passed"
	ReasonPriceTooLow   = "price too low"
)

// RuleCheck is the result of checking a title and price against a price table.
type RuleCheck struct {
	Status    RuleStatus
	UnitCount *int
	Price     float64
	Threshold float64
	Reason    string
}

// NoFixedRule reports whether the check could not be decided by a configured rule.
func (c RuleCheck) NoFixedRule() bool {
	return c.Status == RuleUnitUnparsed || c.Status == RuleNotConfigured || c.Status == RuleMissingEntry
}

// Check parses the unit count and price and compares the price with the table threshold.
// A nil table means the category has no configured rule.
func Check(table PriceTable, title string, price any) RuleCheck {
	normalized := NormalizeTitle(title)
	units, ok := ExtractUnitCount(normalized)
	if !ok {
		return RuleCheck{Status: RuleUnitUnparsed, Reason: ReasonUnitUnparsed}
	}
	check := RuleCheck{UnitCount: &units}

	value, ok := ParsePrice(price)
	if !ok {
		check.Status, check.Reason = RulePriceUnparsed, ReasonPriceUnparsed
		return check
	}
	check.Price = value

	if len(table) == 0 {
		check.Status, check.Reason = RuleNotConfigured, ReasonNotConfigured
		return check
	}
	threshold, ok := table.lookup(units, normalized)
	if !ok {
		check.Status, check.Reason = RuleMissingEntry, fmt.Sprintf("no rule for %d pcs", units)
		return check
	}
	check.Threshold = threshold

	if value >= threshold {
		check.Status, check.Reason = RulePassed, ReasonPassed
	} else {
		check.Status, check.Reason = RuleFailed, ReasonPriceTooLow
	}
	return check
}

// lookup resolves the threshold for a unit count. Size tables are tried from the
// largest diameter down, so a title naming 9inch and 7inch uses the 9inch entry.
func (t PriceTable) lookup(units int, normalized string) (float64, bool) {
	entry, ok := t[units]
	if !ok {
		return 0, false
	}
	if len(entry.BySize) == 0 {
		return entry.Flat, true
	}
	tokens := ExtractSizeTokens(normalized)
	for _, key := range entry.SizeKeys() {
		if slices.Contains(tokens, key) {
			return entry.BySize[key], true
		}
	}
	return 0, false
}
