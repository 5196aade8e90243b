package timing

import (
	"testing"

	"github.com/huangsam/trendgate/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluate(t *testing.T) {
	t.Run("no cycle", func(t *testing.T) {
		r := Evaluate(nil, DefaultLeadMonths, 4)
		assert.False(t, r.Overall)
		assert.Equal(t, "no cycle identified", r.Reason)
		assert.Empty(t, r.PerWindow)
	})

	t.Run("only empty groups", func(t *testing.T) {
		r := Evaluate([][]int{{}}, DefaultLeadMonths, 4)
		assert.False(t, r.Overall)
		assert.Equal(t, "no cycle identified", r.Reason)
	})

	t.Run("october targets next year's may window", func(t *testing.T) {
		r := Evaluate([][]int{{5, 6}}, 3, 10)
		require.Len(t, r.PerWindow, 1)
		w := r.PerWindow[0]
		assert.True(t, r.Overall)
		assert.True(t, w.CanHit)
		assert.Equal(t, schema.NextYear, w.YearContext)
		assert.Equal(t, 4, w.GapMonths)
		assert.Equal(t, "can catch next year's 5-6 window, 4 months early", w.Reason)
		assert.Equal(t, "can develop.\ncan catch next year's 5-6 window, 4 months early", r.Reason)
	})

	t.Run("this year window already started", func(t *testing.T) {
		r := Evaluate([][]int{{5, 6}}, 3, 5)
		require.Len(t, r.PerWindow, 1)
		w := r.PerWindow[0]
		assert.False(t, r.Overall)
		assert.Equal(t, schema.ThisYear, w.YearContext)
		assert.False(t, w.CanHit)
		assert.Equal(t, "not recommended.\ncannot catch this year's 5-6 window, development would complete too late", r.Reason)
	})

	t.Run("mixed windows list hits first", func(t *testing.T) {
		r := Evaluate([][]int{{1, 2}, {5, 6}}, 3, 5)
		require.Len(t, r.PerWindow, 2)
		assert.True(t, r.Overall)

		assert.Equal(t, schema.NextYear, r.PerWindow[0].YearContext)
		assert.True(t, r.PerWindow[0].CanHit)
		assert.Equal(t, 5, r.PerWindow[0].GapMonths)

		assert.Equal(t, schema.ThisYear, r.PerWindow[1].YearContext)
		assert.False(t, r.PerWindow[1].CanHit)

		assert.Equal(t,
			"can develop.\ncan catch next year's 1-2 window, 5 months early\nalso note:\ncannot catch this year's 5-6 window, development would complete too late",
			r.Reason)
	})

	t.Run("nearer occurrence wins and ties favor this year", func(t *testing.T) {
		r := Evaluate([][]int{{9, 10}}, 2, 1)
		require.Len(t, r.PerWindow, 1)
		assert.Equal(t, schema.ThisYear, r.PerWindow[0].YearContext)
		assert.Equal(t, 6, r.PerWindow[0].GapMonths)

		// ready = 12, start 6: |12-6| = 6 and |18-12| = 6.
		r = Evaluate([][]int{{6, 7}}, 3, 9)
		assert.Equal(t, schema.ThisYear, r.PerWindow[0].YearContext)
		assert.False(t, r.PerWindow[0].CanHit)
	})

	t.Run("unsorted wrapping group", func(t *testing.T) {
		r := Evaluate([][]int{{12, 1}}, 3, 8)
		require.Len(t, r.PerWindow, 1)
		assert.Equal(t, []int{1, 12}, r.PerWindow[0].Window)
		assert.Equal(t, schema.NextYear, r.PerWindow[0].YearContext)
		assert.Equal(t, 2, r.PerWindow[0].GapMonths)
	})
}

func TestCanCatch(t *testing.T) {
	assert.True(t, CanCatch([][]int{{11, 12}}, 3, 6))
	assert.False(t, CanCatch(nil, 3, 6))
}
