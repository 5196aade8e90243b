package season

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/huangsam/trendgate/schema"
)

// Cycle text line prefixes. Downstream report rendering depends on them byte for byte.
const (
	flowPrefix   = "flow type: "
	cyclePrefix  = "cycle window:"
	lowPrefix    = "low month: "
	notePrefix   = "note: "
	bulletPrefix = "• cycle "
	noCycleText  = "no clear cycle identified"
	noLowText    = "no clear trough identified"
	recentNote   = "core keywords only gained search volume recently, cycle cannot be determined"
)

// FormatCycleText renders the flow type, peak windows and low months as a report fragment.
func FormatCycleText(flow schema.FlowType, cycle [][]int, low []int) string {
	var b strings.Builder
	if flow == schema.RecentListingFlow {
		b.WriteString(flowPrefix + flow.Label() + "\n")
		b.WriteString(notePrefix + recentNote)
		return b.String()
	}

	// Empty groups carry no months and are left out of the numbering
	groups := make([][]int, 0, len(cycle))
	for _, group := range cycle {
		if len(group) > 0 {
			groups = append(groups, group)
		}
	}

	b.WriteString(flowPrefix + flow.Label() + "\n")
	if len(groups) == 0 {
		b.WriteString(cyclePrefix + " " + noCycleText + "\n")
	} else {
		b.WriteString(cyclePrefix + "\n")
		for i, group := range groups {
			fmt.Fprintf(&b, "%s%d: %s\n", bulletPrefix, i+1, formatGroup(group))
		}
	}
	if len(low) == 0 {
		b.WriteString(lowPrefix + noLowText)
	} else {
		b.WriteString(lowPrefix + joinInts(low, ", "))
	}
	return b.String()
}

// formatGroup renders one month-group; a single month reads as "month N".
func formatGroup(group []int) string {
	if len(group) == 1 {
		return "month " + strconv.Itoa(group[0])
	}
	return "[" + joinInts(group, ", ") + "]"
}

func joinInts(values []int, sep string) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, sep)
}

// ParseCycleText recovers the flow type, month-groups and low months from a report fragment.
func ParseCycleText(text string) (schema.FlowType, [][]int, []int, error) {
	var (
		flow    schema.FlowType
		cycle   [][]int
		low     []int
		sawFlow bool
	)
	for line := range strings.SplitSeq(text, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case line == "":
			continue
		case strings.HasPrefix(line, flowPrefix):
			label := strings.TrimPrefix(line, flowPrefix)
			f, ok := schema.ParseFlowLabel(label)
			if !ok {
				return "", nil, nil, fmt.Errorf("unknown flow type %q", label)
			}
			flow, sawFlow = f, true
		case strings.HasPrefix(line, cyclePrefix), strings.HasPrefix(line, notePrefix):
			continue
		case strings.HasPrefix(line, bulletPrefix):
			_, body, ok := strings.Cut(strings.TrimPrefix(line, bulletPrefix), ": ")
			if !ok {
				return "", nil, nil, fmt.Errorf("malformed cycle line %q", line)
			}
			group, err := parseGroup(body)
			if err != nil {
				return "", nil, nil, err
			}
			cycle = append(cycle, group)
		case strings.HasPrefix(line, lowPrefix):
			body := strings.TrimPrefix(line, lowPrefix)
			if body == noLowText {
				continue
			}
			months, err := parseMonthList(body)
			if err != nil {
				return "", nil, nil, err
			}
			low = months
		default:
			return "", nil, nil, fmt.Errorf("unexpected line %q", line)
		}
	}
	if !sawFlow {
		return "", nil, nil, errors.New("missing flow type line")
	}
	return flow, cycle, low, nil
}

// parseGroup parses "[1, 2]" or "month 5".
func parseGroup(body string) ([]int, error) {
	if rest, ok := strings.CutPrefix(body, "month "); ok {
		return parseMonthList(rest)
	}
	if !strings.HasPrefix(body, "[") || !strings.HasSuffix(body, "]") {
		return nil, fmt.Errorf("malformed month group %q", body)
	}
	return parseMonthList(body[1 : len(body)-1])
}

// parseMonthList parses a comma-separated month list.
func parseMonthList(body string) ([]int, error) {
	var months []int
	for part := range strings.SplitSeq(body, ",") {
		m, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, fmt.Errorf("invalid month %q: %w", part, err)
		}
		if !ValidMonth(m) {
			return nil, fmt.Errorf("month %d out of range", m)
		}
		months = append(months, m)
	}
	return months, nil
}
