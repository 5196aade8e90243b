// Package timing decides whether a product launch can be ready before a demand peak.
package timing

import (
	"fmt"
	"slices"
	"strings"

	"github.com/huangsam/trendgate/schema"
)

// DefaultLeadMonths is the default development lead time.
const DefaultLeadMonths = 3

// Overall verdict headers.
const (
	feasibleHeader   = "can develop."
	infeasibleHeader = "not recommended."
	alsoNoteHeader   = "also note:"
	noCycleReason    = "no cycle identified"
)

// Evaluate checks every peak window against the month development would complete.
// currentMonth is 1..12. Each window targets the nearer of this year's and next year's
// occurrence, preferring this year on a tie.
func Evaluate(cycle [][]int, leadMonths int, currentMonth int) schema.TimingFeasibility {
	if len(cycle) == 0 {
		return schema.TimingFeasibility{Overall: false, Reason: noCycleReason}
	}

	ready := currentMonth + leadMonths
	var hits, misses []string
	perWindow := make([]schema.WindowTiming, 0, len(cycle))

	for _, group := range cycle {
		if len(group) == 0 {
			continue
		}
		window := slices.Clone(group)
		slices.Sort(window)
		start, end := window[0], window[len(window)-1]

		target, ctx := start, schema.ThisYear
		if abs(ready-start) > abs(start+12-ready) {
			target, ctx = start+12, schema.NextYear
		}

		wt := schema.WindowTiming{Window: window, YearContext: ctx}
		if ready <= target {
			wt.CanHit = true
			wt.GapMonths = target - ready
			wt.Reason = fmt.Sprintf("can catch %s year's %d-%d window, %d months early", ctx, start, end, wt.GapMonths)
			hits = append(hits, wt.Reason)
		} else {
			wt.Reason = fmt.Sprintf("cannot catch %s year's %d-%d window, development would complete too late", ctx, start, end)
			misses = append(misses, wt.Reason)
		}
		perWindow = append(perWindow, wt)
	}

	if len(perWindow) == 0 {
		return schema.TimingFeasibility{Overall: false, Reason: noCycleReason}
	}

	if len(hits) == 0 {
		return schema.TimingFeasibility{
			Overall:   false,
			Reason:    infeasibleHeader + "\n" + strings.Join(misses, "; "),
			PerWindow: perWindow,
		}
	}
	reason := feasibleHeader + "\n" + strings.Join(hits, "; ")
	if len(misses) > 0 {
		reason += "\n" + alsoNoteHeader + "\n" + strings.Join(misses, "; ")
	}
	return schema.TimingFeasibility{Overall: true, Reason: reason, PerWindow: perWindow}
}

// CanCatch reports whether any peak window is catchable.
func CanCatch(cycle [][]int, leadMonths, currentMonth int) bool {
	return Evaluate(cycle, leadMonths, currentMonth).Overall
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
