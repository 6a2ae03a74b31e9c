package services

// NearestNeighborOrder derives a visiting order greedily: start at index 0
// (the first inserted location) and repeatedly hop to the closest unvisited
// index. Unlike OptimizeOrder this always yields one connected walk, at the
// cost of no optimality guarantee.
//
// The algorithm minimizes immediate travel distance at each step.
// It does not attempt global route optimization. The design prioritizes
// determinism and simplicity over optimality: ties break toward the lowest
// index.
func NearestNeighborOrder(matrix [][]float64) ([]int, error) {
	if err := validateMatrix(matrix); err != nil {
		return nil, err
	}

	n := len(matrix)
	order := make([]int, 0, n)
	visited := make([]bool, n)

	current := 0
	order = append(order, current)
	visited[current] = true

	for len(order) < n {
		next := -1
		for j := 0; j < n; j++ {
			if visited[j] {
				continue
			}
			// Strict < keeps the lowest-index tie-break deterministic.
			if next == -1 || matrix[current][j] < matrix[current][next] {
				next = j
			}
		}

		order = append(order, next)
		visited[next] = true
		current = next
	}

	return order, nil
}
