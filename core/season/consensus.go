package season

import (
	"slices"

	"github.com/huangsam/trendgate/schema"
)

// maxResolvePasses bounds the all-pairs intersection passes before falling back to pairwise merging.
const maxResolvePasses = 12

// windowTally counts how often a month set was proposed. Order is first-seen.
type windowTally struct {
	months []int
	count  int
}

// flowTally counts how often a flow type was proposed. Order is first-seen.
type flowTally struct {
	flow  schema.FlowType
	count int
}

// Aggregate merges per-keyword seasonality results into one consensus cycle.
// The series are the inputs the results were computed from; when all of them are
// empty or zero the product is treated as a recent listing without history.
func Aggregate(results []schema.SeasonalityResult, series []schema.MonthlySeries) schema.ConsensusCycle {
	if allZero(series) {
		return schema.ConsensusCycle{FlowType: schema.RecentListingFlow}
	}

	windows := tallyWindows(results)
	flows := tallyFlows(results)
	if len(windows) == 0 {
		if len(flows) > 0 {
			return schema.ConsensusCycle{FlowType: schema.RecentListingFlow}
		}
		return schema.ConsensusCycle{FlowType: schema.UnknownFlow}
	}

	flow := flows[0].flow
	best := flows[0].count
	for _, f := range flows[1:] {
		if f.count > best {
			flow, best = f.flow, f.count
		}
	}
	if flow == schema.UnknownFlow {
		flow = mostCommonKnownFlow(flows, flow)
	}

	maxCount := 0
	for _, w := range windows {
		maxCount = max(maxCount, w.count)
	}

	var groups [][]int
	if maxCount == 1 {
		groups = longestFrequentRuns(windows)
	} else {
		groups = windowsWithCount(windows, maxCount)
	}
	if len(groups) == 0 {
		groups = windowsWithCount(windows, maxCount)
	}

	return schema.ConsensusCycle{Groups: resolveOverlaps(groups), FlowType: flow}
}

// allZero reports whether every series is empty or entirely zero.
func allZero(series []schema.MonthlySeries) bool {
	for _, s := range series {
		if !s.IsZero() {
			return false
		}
	}
	return true
}

// tallyWindows counts the sorted main and secondary peaks of every result.
func tallyWindows(results []schema.SeasonalityResult) []windowTally {
	var tallies []windowTally
	index := make(map[string]int)
	add := func(w schema.PeakWindow) {
		if w.IsEmpty() {
			return
		}
		key := monthKey(w.Months)
		if i, ok := index[key]; ok {
			tallies[i].count++
			return
		}
		index[key] = len(tallies)
		tallies = append(tallies, windowTally{months: w.Sorted(), count: 1})
	}
	for _, r := range results {
		add(r.MainPeak)
		for _, w := range r.SecondaryPeaks {
			add(w)
		}
	}
	return tallies
}

// tallyFlows counts the flow type of every result.
func tallyFlows(results []schema.SeasonalityResult) []flowTally {
	var tallies []flowTally
	for _, r := range results {
		i := slices.IndexFunc(tallies, func(t flowTally) bool { return t.flow == r.FlowType })
		if i >= 0 {
			tallies[i].count++
			continue
		}
		tallies = append(tallies, flowTally{flow: r.FlowType, count: 1})
	}
	return tallies
}

// mostCommonKnownFlow returns the most frequent flow other than Unknown, or fallback when there is none.
func mostCommonKnownFlow(flows []flowTally, fallback schema.FlowType) schema.FlowType {
	best := 0
	for _, f := range flows {
		if f.flow == schema.UnknownFlow {
			continue
		}
		if f.count > best {
			fallback, best = f.flow, f.count
		}
	}
	return fallback
}

// windowsWithCount returns the month sets tallied exactly count times.
func windowsWithCount(windows []windowTally, count int) [][]int {
	var out [][]int
	for _, w := range windows {
		if w.count == count && len(w.months) > 0 {
			out = append(out, slices.Clone(w.months))
		}
	}
	return out
}

// longestFrequentRuns finds months shared by at least two windows and keeps the longest
// consecutive runs of them. December to January counts as consecutive.
func longestFrequentRuns(windows []windowTally) [][]int {
	var freq [13]int
	for _, w := range windows {
		for _, m := range w.months {
			freq[m]++
		}
	}
	var frequent []int
	for m := 1; m <= 12; m++ {
		if freq[m] >= 2 {
			frequent = append(frequent, m)
		}
	}
	if len(frequent) == 0 {
		return nil
	}

	var runs [][]int
	current := []int{frequent[0]}
	for _, m := range frequent[1:] {
		if Adjacent(current[len(current)-1], m) {
			current = append(current, m)
			continue
		}
		runs = append(runs, current)
		current = []int{m}
	}
	runs = append(runs, current)

	// Merge a run ending in December with one starting in January.
	if len(runs) > 1 && runs[0][0] == 1 && runs[len(runs)-1][len(runs[len(runs)-1])-1] == 12 {
		merged := append(slices.Clone(runs[len(runs)-1]), runs[0]...)
		runs = append([][]int{merged}, runs[1:len(runs)-1]...)
	}

	longest := 0
	for _, r := range runs {
		longest = max(longest, len(r))
	}
	var out [][]int
	for _, r := range runs {
		if len(r) == longest {
			sorted := slices.Clone(r)
			slices.Sort(sorted)
			out = append(out, sorted)
		}
	}
	return out
}

// resolveOverlaps replaces overlapping groups by their intersections until no two groups share a month.
func resolveOverlaps(groups [][]int) [][]int {
	groups = dedupeGroups(groups)
	for range maxResolvePasses {
		if !hasOverlap(groups) {
			return groups
		}
		groups = dedupeGroups(intersectPass(groups))
	}
	// Pairwise merging always terminates: each step removes one group.
	for hasOverlap(groups) {
		groups = mergeFirstOverlap(groups)
	}
	return groups
}

// intersectPass computes all pairwise intersections. Groups overlapping nothing pass through.
func intersectPass(groups [][]int) [][]int {
	used := make([]bool, len(groups))
	var out [][]int
	for i := range groups {
		for j := i + 1; j < len(groups); j++ {
			inter := intersect(groups[i], groups[j])
			if len(inter) == 0 {
				continue
			}
			out = append(out, inter)
			used[i], used[j] = true, true
		}
	}
	for i, g := range groups {
		if !used[i] {
			out = append(out, g)
		}
	}
	return out
}

// mergeFirstOverlap replaces the first overlapping pair by its intersection.
func mergeFirstOverlap(groups [][]int) [][]int {
	for i := range groups {
		for j := i + 1; j < len(groups); j++ {
			inter := intersect(groups[i], groups[j])
			if len(inter) == 0 {
				continue
			}
			out := slices.Clone(groups)
			out[i] = inter
			out = slices.Delete(out, j, j+1)
			return dedupeGroups(out)
		}
	}
	return groups
}

// hasOverlap reports whether any two groups share a month.
func hasOverlap(groups [][]int) bool {
	for i := range groups {
		for j := i + 1; j < len(groups); j++ {
			if len(intersect(groups[i], groups[j])) > 0 {
				return true
			}
		}
	}
	return false
}

// intersect returns the sorted months present in both groups.
func intersect(a, b []int) []int {
	var out []int
	for _, m := range a {
		if slices.Contains(b, m) && !slices.Contains(out, m) {
			out = append(out, m)
		}
	}
	slices.Sort(out)
	return out
}

// dedupeGroups drops repeated month sets, preserving first occurrence order.
func dedupeGroups(groups [][]int) [][]int {
	seen := make(map[string]struct{}, len(groups))
	out := make([][]int, 0, len(groups))
	for _, g := range groups {
		key := monthKey(g)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, g)
	}
	return out
}
