// Package pricing classifies the price trend of a product from its price history.
package pricing

import (
	"encoding/json"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/huangsam/trendgate/schema"
)

// Observation is one valid, timestamped price.
type Observation struct {
	Time  time.Time
	Price float64
}

// timeLayouts are tried in order when parsing price timestamps.
var timeLayouts = []string{
	"2006-01-02 15:04",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006-01-02",
}

// ParseTime parses a price timestamp in any accepted layout.
func ParseTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// NormalizePrice converts a raw price entry into a float.
// Lists resolve to their last valid element; nil and unparseable values are invalid.
func NormalizePrice(v any) (float64, bool) {
	switch p := v.(type) {
	case nil:
		return 0, false
	case float64:
		return p, true
	case float32:
		return float64(p), true
	case int:
		return float64(p), true
	case int64:
		return float64(p), true
	case json.Number:
		f, err := p.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		return f, err == nil
	case []float64:
		if len(p) == 0 {
			return 0, false
		}
		return p[len(p)-1], true
	case []any:
		for i := len(p) - 1; i >= 0; i-- {
			if f, ok := NormalizePrice(p[i]); ok {
				return f, true
			}
		}
		return 0, false
	default:
		return 0, false
	}
}

// Clean drops entries with an invalid timestamp or price and sorts the rest chronologically.
// Extra entries of the longer array are ignored.
func Clean(history schema.PriceHistory) []Observation {
	n := min(len(history.Times), len(history.Prices))
	out := make([]Observation, 0, n)
	for i := range n {
		t, ok := ParseTime(history.Times[i])
		if !ok {
			continue
		}
		p, ok := NormalizePrice(history.Prices[i])
		if !ok {
			continue
		}
		out = append(out, Observation{Time: t, Price: p})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Time.Before(out[j].Time)
	})
	return out
}

// filterBySalesMonths keeps observations whose month had positive sales.
// Without any such month the observations are returned unchanged.
func filterBySalesMonths(obs []Observation, sales []schema.SalesRecord) []Observation {
	months := SalesMonths(sales)
	if len(months) == 0 {
		return obs
	}
	var out []Observation
	for _, o := range obs {
		key := schema.FormatMonthKey(o.Time.Year(), int(o.Time.Month()))
		if _, ok := months[key]; ok {
			out = append(out, o)
		}
	}
	return out
}

// lastNDays keeps the observations within days of the latest one. obs must be sorted.
func lastNDays(obs []Observation, days int) []Observation {
	if len(obs) == 0 {
		return nil
	}
	cutoff := obs[len(obs)-1].Time.AddDate(0, 0, -days)
	var out []Observation
	for _, o := range obs {
		if !o.Time.Before(cutoff) {
			out = append(out, o)
		}
	}
	return out
}

func prices(obs []Observation) []float64 {
	out := make([]float64, len(obs))
	for i, o := range obs {
		out[i] = o.Price
	}
	return out
}
