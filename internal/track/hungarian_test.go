package track

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHungarianPrefersGlobalOptimum(t *testing.T) {
	t.Parallel()

	// Greedy row-order claiming would pick (0,0)+(1,1) = 101; the
	// optimal assignment is the swap.
	cost := [][]float64{
		{1, 2},
		{2, 100},
	}
	assert.Equal(t, []int{1, 0}, hungarianAssign(cost))
}

func TestHungarianLeavesForbiddenUnassigned(t *testing.T) {
	t.Parallel()

	cost := [][]float64{
		{forbiddenCost, forbiddenCost},
		{0.5, forbiddenCost},
	}
	assert.Equal(t, []int{-1, 0}, hungarianAssign(cost))
}

func TestHungarianRectangular(t *testing.T) {
	t.Parallel()

	// Three rows, one column: exactly one row can win.
	cost := [][]float64{
		{3},
		{1},
		{2},
	}
	assert.Equal(t, []int{-1, 0, -1}, hungarianAssign(cost))

	// One row, three columns.
	assert.Equal(t, []int{2}, hungarianAssign([][]float64{{5, 4, 1}}))
}

func TestHungarianEmpty(t *testing.T) {
	t.Parallel()

	assert.Nil(t, hungarianAssign(nil))
	assert.Equal(t, []int{-1}, hungarianAssign([][]float64{{}}))
}
