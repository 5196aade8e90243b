package pricing

import (
	"time"

	"github.com/huangsam/trendgate/schema"
)

// SalesMonths returns the YYYYMM keys of months with positive sales.
func SalesMonths(sales []schema.SalesRecord) map[string]struct{} {
	months := make(map[string]struct{})
	for _, r := range sales {
		if r.Sales <= 0 {
			continue
		}
		year, month, ok := r.YearMonth()
		if !ok {
			continue
		}
		months[schema.FormatMonthKey(year, month)] = struct{}{}
	}
	return months
}

// LastMonthSales returns the sales of the first record for the calendar month before now.
// It reports false when no record covers that month.
func LastMonthSales(sales []schema.SalesRecord, now time.Time) (int, bool) {
	prev := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -1, 0)
	for _, r := range sales {
		year, month, ok := r.YearMonth()
		if ok && year == prev.Year() && month == int(prev.Month()) {
			return r.Sales, true
		}
	}
	return 0, false
}
