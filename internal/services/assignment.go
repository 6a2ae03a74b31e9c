package services

import (
	"fmt"
	"math"
)

// OptimizationError reports a distance matrix the optimizer cannot consume.
type OptimizationError struct {
	Reason string
}

func (e *OptimizationError) Error() string { return "optimize order: " + e.Reason }

// OptimizeOrder derives a visiting order from a distance matrix by solving
// the minimum-weight assignment problem: a bijection between row and column
// indices minimizing total assigned distance, read out as the column assigned
// to each row, in row order.
//
// This approximates the true objective (a shortest tour through all points).
// An optimal assignment does not in general describe one connected tour; for
// a zero-diagonal matrix the identity assignment is already optimal. The
// behavior is kept deliberately; see DESIGN.md before substituting a tour
// heuristic. NearestNeighborOrder is the opt-in alternative.
//
// The solver is the Jonker-Volgenant shortest-augmenting-path formulation of
// the Hungarian method, O(n³). Output is deterministic for a given matrix:
// all comparisons are strict, so ties resolve to the lowest column index
// reached first.
func OptimizeOrder(matrix [][]float64) ([]int, error) {
	if err := validateMatrix(matrix); err != nil {
		return nil, err
	}

	n := len(matrix)

	// Dual potentials and matching state, 1-indexed with column 0 as the
	// virtual root of each augmenting path.
	u := make([]float64, n+1)
	v := make([]float64, n+1)
	rowOf := make([]int, n+1) // rowOf[j]: row currently assigned to column j (0 = free)
	way := make([]int, n+1)   // way[j]: previous column on the alternating path

	minSlack := make([]float64, n+1)
	used := make([]bool, n+1)

	for i := 1; i <= n; i++ {
		rowOf[0] = i
		j0 := 0
		for j := 0; j <= n; j++ {
			minSlack[j] = math.Inf(1)
			used[j] = false
		}

		// Grow the alternating tree until a free column is reached.
		for {
			used[j0] = true
			i0 := rowOf[j0]
			delta := math.Inf(1)
			j1 := 0

			for j := 1; j <= n; j++ {
				if used[j] {
					continue
				}
				slack := matrix[i0-1][j-1] - u[i0] - v[j]
				if slack < minSlack[j] {
					minSlack[j] = slack
					way[j] = j0
				}
				if minSlack[j] < delta {
					delta = minSlack[j]
					j1 = j
				}
			}

			for j := 0; j <= n; j++ {
				if used[j] {
					u[rowOf[j]] += delta
					v[j] -= delta
				} else {
					minSlack[j] -= delta
				}
			}

			j0 = j1
			if rowOf[j0] == 0 {
				break
			}
		}

		// Augment: flip assignments along the path back to the root.
		for j0 != 0 {
			j1 := way[j0]
			rowOf[j0] = rowOf[j1]
			j0 = j1
		}
	}

	order := make([]int, n)
	for j := 1; j <= n; j++ {
		order[rowOf[j]-1] = j - 1
	}
	return order, nil
}

// validateMatrix rejects anything other than a square matrix of finite values.
func validateMatrix(matrix [][]float64) error {
	n := len(matrix)
	if n == 0 {
		return &OptimizationError{Reason: "matrix is empty"}
	}

	for i, row := range matrix {
		if len(row) != n {
			return &OptimizationError{
				Reason: fmt.Sprintf("matrix is not square: row %d has %d columns for %d rows", i, len(row), n),
			}
		}
		for j, d := range row {
			if math.IsNaN(d) || math.IsInf(d, 0) {
				return &OptimizationError{
					Reason: fmt.Sprintf("matrix entry (%d, %d) is not finite", i, j),
				}
			}
		}
	}
	return nil
}
