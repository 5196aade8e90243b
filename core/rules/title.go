package rules

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"
)

var (
	nonAlnumPattern = regexp.MustCompile(`[^a-z0-9\s]`)
	spacePattern    = regexp.MustCompile(`\s+`)
	unitPattern     = regexp.MustCompile(`(\d+)\s*(pcs|pc|pieces|piece)`)
	sizePattern     = regexp.MustCompile(`\b(\d+)\s*(inch(?:es)?|in)\b`)
	pricePattern    = regexp.MustCompile(`(\d+(?:\.\d+)?)`)
)

// NormalizeTitle lowercases a title, turns symbols into spaces and collapses whitespace.
func NormalizeTitle(title string) string {
	t := strings.ToLower(title)
	t = nonAlnumPattern.ReplaceAllString(t, " ")
	t = spacePattern.ReplaceAllString(t, " ")
	return strings.TrimSpace(t)
}

// ExtractUnitCount finds a piece count such as "96pcs" or "96 pieces" in a normalized title.
func ExtractUnitCount(normalized string) (int, bool) {
	m := unitPattern.FindStringSubmatch(normalized)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return n, true
}

// ExtractSizeTokens returns the diameter tokens of a normalized title in order of
// appearance, canonicalized as "<n>inch".
func ExtractSizeTokens(normalized string) []string {
	var out []string
	for _, m := range sizePattern.FindAllStringSubmatch(normalized, -1) {
		out = append(out, m[1]+"inch")
	}
	return out
}

// ParsePrice reads a price from a number or from the first number in a string
// such as "$19.75" or "USD 19.75 - 29.99".
func ParsePrice(v any) (float64, bool) {
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
		m := pricePattern.FindString(p)
		if m == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(m, 64)
		return f, err == nil
	default:
		return 0, false
	}
}
