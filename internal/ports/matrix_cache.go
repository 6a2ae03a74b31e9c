package ports

import "context"

// Port: a persistent cache for whole distance matrices, keyed by the
// canonical coordinate string of a build's location set.
type MatrixCache interface {
	// Get returns the cached matrix, or (nil, nil) on a miss.
	Get(ctx context.Context, key string) ([][]float64, error)
	// Put stores the matrix under the key, replacing any previous value.
	Put(ctx context.Context, key string, distances [][]float64) error
}
