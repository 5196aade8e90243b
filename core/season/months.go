// Package season detects seasonal demand cycles in keyword search series.
package season

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/huangsam/trendgate/schema"
)

// AddMonths returns the calendar month n months after m, wrapping around the year.
// Both m and the result are 1-based.
func AddMonths(m, n int) int {
	return ((m-1+n)%12+12)%12 + 1
}

// Adjacent reports whether b directly follows a on the calendar, so 12 is followed by 1.
func Adjacent(a, b int) bool {
	return AddMonths(a, 1) == b
}

// ValidMonth reports whether m is a calendar month.
func ValidMonth(m int) bool {
	return m >= 1 && m <= 12
}

// windowMonths returns length consecutive months starting at start, wrapping past December.
func windowMonths(start, length int) []int {
	months := make([]int, length)
	for i := range length {
		months[i] = AddMonths(start, i)
	}
	return months
}

// monthKey is the canonical key of a month set.
func monthKey(months []int) string {
	sorted := slices.Clone(months)
	slices.Sort(sorted)
	parts := make([]string, len(sorted))
	for i, m := range sorted {
		parts[i] = strconv.Itoa(m)
	}
	return strings.Join(parts, ",")
}

// monthAnchorLayouts are the accepted layouts for a series start anchor.
var monthAnchorLayouts = []string{"2006-01", "2006-01-02", "200601", "2006/01", time.RFC3339}

// ParseMonthAnchor parses a series start anchor and truncates it to the first day of the month.
func ParseMonthAnchor(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range monthAnchorLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid month anchor %q: expected YYYY-MM", s)
}

// NewMonthlySeries builds a calendar-anchored series from raw values.
func NewMonthlySeries(keyword string, values []float64, start time.Time) schema.MonthlySeries {
	return schema.MonthlySeries{
		Keyword: keyword,
		Start:   time.Date(start.Year(), start.Month(), 1, 0, 0, 0, 0, time.UTC),
		Values:  slices.Clone(values),
	}
}

// BuildSeries converts a product's keyword set into monthly series.
func BuildSeries(set schema.KeywordSet) ([]schema.MonthlySeries, error) {
	if len(set.Series) == 0 {
		return nil, nil
	}
	start, err := ParseMonthAnchor(set.Start)
	if err != nil {
		return nil, err
	}
	out := make([]schema.MonthlySeries, 0, len(set.Series))
	for _, ks := range set.Series {
		out = append(out, NewMonthlySeries(ks.Keyword, ks.Values, start))
	}
	return out, nil
}

// UnionMonths returns the sorted, de-duplicated months of all groups.
func UnionMonths(groups [][]int) []int {
	seen := make(map[int]struct{})
	var out []int
	for _, g := range groups {
		for _, m := range g {
			if _, ok := seen[m]; ok {
				continue
			}
			seen[m] = struct{}{}
			out = append(out, m)
		}
	}
	slices.Sort(out)
	return out
}
