package track

import "math"

// hungarian solves the detection-to-track assignment optimally in
// O(n³) via the Kuhn–Munkres algorithm (Jonker–Volgenant potentials
// variant), replacing greedy nearest-neighbour claiming, which splits
// tracks when two detections compete for the same one.
//
// Cost entry C[i][j] is the squared Mahalanobis distance from
// detection i to track j. Entries at or above forbiddenCost are never
// selected.

// forbiddenCost marks a detection/track pair outside the gate. Real
// costs are bounded by the gate (squared sigma, single digits), so 1e6
// dominates every admissible entry while keeping unit-scale cost
// differences above float64 rounding in the potential updates; a huge
// sentinel would swallow them.
const forbiddenCost = 1e6

// hungarianAssign solves the rectangular assignment problem for an
// n×m cost matrix. It returns assign[i] = column assigned to row i, or
// -1 when row i is unassigned (every column forbidden or taken by a
// cheaper row).
func hungarianAssign(cost [][]float64) []int {
	n := len(cost)
	if n == 0 {
		return nil
	}
	m := len(cost[0])
	if m == 0 {
		assign := make([]int, n)
		for i := range assign {
			assign[i] = -1
		}
		return assign
	}

	// Pad to a square matrix; padded entries are forbidden so excess
	// rows stay unassigned.
	dim := n
	if m > dim {
		dim = m
	}
	c := make([][]float64, dim)
	for i := 0; i < dim; i++ {
		c[i] = make([]float64, dim)
		for j := 0; j < dim; j++ {
			if i < n && j < m {
				c[i][j] = cost[i][j]
			} else {
				c[i][j] = forbiddenCost
			}
		}
	}

	// 1-indexed internally for cleaner index arithmetic.
	const inf = math.MaxFloat64 / 2

	u := make([]float64, dim+1) // row potentials
	v := make([]float64, dim+1) // column potentials
	p := make([]int, dim+1)     // p[j] = row assigned to column j
	way := make([]int, dim+1)   // previous column in the augmenting path
	minv := make([]float64, dim+1)
	used := make([]bool, dim+1)

	for i := 1; i <= dim; i++ {
		p[0] = i
		j0 := 0

		for j := 1; j <= dim; j++ {
			minv[j] = inf
			used[j] = false
		}

		for {
			used[j0] = true
			i0 := p[j0]
			delta := inf
			j1 := -1

			for j := 1; j <= dim; j++ {
				if used[j] {
					continue
				}
				cur := c[i0-1][j-1] - u[i0] - v[j]
				if cur < minv[j] {
					minv[j] = cur
					way[j] = j0
				}
				if minv[j] < delta {
					delta = minv[j]
					j1 = j
				}
			}

			if j1 < 0 {
				break
			}

			for j := 0; j <= dim; j++ {
				if used[j] {
					u[p[j]] += delta
					v[j] -= delta
				} else {
					minv[j] -= delta
				}
			}

			j0 = j1
			if p[j0] == 0 {
				break
			}
		}

		for j0 != 0 {
			p[j0] = p[way[j0]]
			j0 = way[j0]
		}
	}

	rowAssign := make([]int, dim)
	for i := range rowAssign {
		rowAssign[i] = -1
	}
	for j := 1; j <= dim; j++ {
		if p[j] > 0 && p[j] <= dim {
			rowAssign[p[j]-1] = j - 1
		}
	}

	// Trim to the original shape and reject forbidden assignments.
	assign := make([]int, n)
	for i := 0; i < n; i++ {
		col := rowAssign[i]
		if col < 0 || col >= m || cost[i][col] >= forbiddenCost {
			assign[i] = -1
		} else {
			assign[i] = col
		}
	}
	return assign
}
