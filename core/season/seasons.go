package season

import (
	"fmt"
	"strings"

	"github.com/huangsam/trendgate/schema"
)

// allYearMonths is the distinct cycle month count above which a cycle covers all year.
const allYearMonths = 8

// seasonOrder is the display order of seasons.
var seasonOrder = []string{"spring", "summer", "autumn", "winter"}

// SeasonOf returns the season of a calendar month.
func SeasonOf(month int) string {
	switch month {
	case 3, 4, 5:
		return "spring"
	case 6, 7, 8:
		return "summer"
	case 9, 10, 11:
		return "autumn"
	default:
		return "winter"
	}
}

// SummarizeSeasons maps the cycle to seasons and sums the last twelve months of sales
// that fall in cycle months, per season.
func SummarizeSeasons(sales []schema.SalesRecord, cycle [][]int) schema.SeasonSummary {
	summary := schema.SeasonSummary{Sales: make(map[string]int, len(seasonOrder))}
	for _, s := range seasonOrder {
		summary.Sales[s] = 0
	}

	months := UnionMonths(cycle)
	if len(months) == 0 {
		summary.Text = "insufficient traffic data|" + formatSeasonSales(summary.Sales)
		return summary
	}

	inCycle := make(map[int]bool, len(months))
	seen := make(map[string]bool)
	for _, m := range months {
		inCycle[m] = true
		seen[SeasonOf(m)] = true
	}
	for _, s := range seasonOrder {
		if seen[s] {
			summary.Seasons = append(summary.Seasons, s)
		}
	}
	summary.AllYear = len(months) > allYearMonths

	latest, ok := latestMonthIndex(sales)
	if ok {
		for _, r := range sales {
			year, month, valid := r.YearMonth()
			if !valid || !inCycle[month] {
				continue
			}
			idx := year*12 + month - 1
			if idx > latest-12 && idx <= latest {
				summary.Sales[SeasonOf(month)] += r.Sales
			}
		}
	}

	label := strings.Join(summary.Seasons, "/")
	if summary.AllYear {
		label = "all-year"
	}
	summary.Text = label + "|" + formatSeasonSales(summary.Sales)
	return summary
}

// latestMonthIndex returns the absolute month index of the newest sales record.
func latestMonthIndex(sales []schema.SalesRecord) (int, bool) {
	latest, found := 0, false
	for _, r := range sales {
		year, month, ok := r.YearMonth()
		if !ok {
			continue
		}
		idx := year*12 + month - 1
		if !found || idx > latest {
			latest, found = idx, true
		}
	}
	return latest, found
}

func formatSeasonSales(sales map[string]int) string {
	parts := make([]string, len(seasonOrder))
	for i, s := range seasonOrder {
		parts[i] = fmt.Sprintf("%s:%d", s, sales[s])
	}
	return strings.Join(parts, ", ")
}
