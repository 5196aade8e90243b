package schema

import (
	"strconv"
	"strings"
)

// ProductRow is one candidate product as read from an input file.
type ProductRow struct {
	ID           string         `json:"id" yaml:"id" validate:"required"`
	Title        string         `json:"title" yaml:"title"`
	MainCategory string         `json:"main_category" yaml:"main_category"`
	SubCategory  string         `json:"sub_category" yaml:"sub_category"`
	Price        any            `json:"price" yaml:"price"`
	Keywords     KeywordSet     `json:"keywords" yaml:"keywords"`
	PriceHistory PriceHistory   `json:"price_history" yaml:"price_history"`
	Sales        []SalesRecord  `json:"sales" yaml:"sales" validate:"dive"`
	Extra        map[string]any `json:"extra,omitempty" yaml:"extra,omitempty"`
}

// KeywordSet holds the demand series of all keywords related to a product.
type KeywordSet struct {
	Start  string          `json:"start" yaml:"start" validate:"required_with=Series"`
	Series []KeywordSeries `json:"series" yaml:"series" validate:"dive"`
}

// KeywordSeries is the raw monthly demand of one keyword.
type KeywordSeries struct {
	Keyword string    `json:"keyword" yaml:"keyword" validate:"required"`
	Values  []float64 `json:"values" yaml:"values" validate:"dive,gte=0"`
}

// PriceHistory holds parallel timestamp and price arrays. Prices may be null.
type PriceHistory struct {
	Times  []string `json:"times" yaml:"times"`
	Prices []any    `json:"prices" yaml:"prices"`
}

// SalesRecord is the sales count of one month, keyed by YYYYMM.
type SalesRecord struct {
	MonthKey string `json:"dk" yaml:"dk" validate:"required"`
	Sales    int    `json:"sales" yaml:"sales" validate:"gte=0"`
}

// YearMonth parses the month key. It accepts YYYYMM and YYYY-MM.
func (r SalesRecord) YearMonth() (int, int, bool) {
	key := strings.ReplaceAll(strings.TrimSpace(r.MonthKey), "-", "")
	if len(key) != 6 {
		return 0, 0, false
	}
	year, err := strconv.Atoi(key[:4])
	if err != nil {
		return 0, 0, false
	}
	month, err := strconv.Atoi(key[4:])
	if err != nil || month < 1 || month > 12 {
		return 0, 0, false
	}
	return year, month, true
}

// FormatMonthKey renders a year and month as a YYYYMM key.
func FormatMonthKey(year, month int) string {
	return strconv.Itoa(year*100 + month)
}
