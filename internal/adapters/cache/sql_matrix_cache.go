package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ai-fn/route-builder/internal/platform/obs"
)

// SQLMatrixCache is a Postgres-backed cache for whole distance matrices,
// keyed by the canonical coordinate string of a location set. Keys are
// expected to be consistent (already normalized) by the caller.
type SQLMatrixCache struct {
	DB *sql.DB
}

func NewSQLMatrixCache(db *sql.DB) *SQLMatrixCache {
	return &SQLMatrixCache{DB: db}
}

// InitSchema creates the cache table when it does not exist yet.
func InitSchema(db *sql.DB) error {
	_, err := db.Exec(`
	CREATE TABLE IF NOT EXISTS matrix_cache (
		cache_key TEXT PRIMARY KEY,
		distances JSONB NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);
	`)
	if err != nil {
		return fmt.Errorf("init matrix cache schema: %w", err)
	}
	return nil
}

// Fetch a cached matrix; (nil, nil) signals a miss.
func (s *SQLMatrixCache) Get(ctx context.Context, key string) (_ [][]float64, err error) {
	defer obs.Time(ctx, "matrix.cache.Get")(&err)

	if s.DB == nil {
		return nil, errors.New("matrix cache: db is nil")
	}
	if key == "" {
		return nil, errors.New("get matrix cache: key must not be empty")
	}

	var payload []byte
	q := `SELECT distances FROM matrix_cache WHERE cache_key = $1;`
	if err := s.DB.QueryRowContext(ctx, q, key).Scan(&payload); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get matrix cache: query matrix_cache table: %w", err)
	}

	var distances [][]float64
	if err := json.Unmarshal(payload, &distances); err != nil {
		return nil, fmt.Errorf("get matrix cache: decode stored matrix: %w", err)
	}

	return distances, nil
}

// Store a matrix under the key, replacing any previous value.
func (s *SQLMatrixCache) Put(ctx context.Context, key string, distances [][]float64) error {
	if s.DB == nil {
		return errors.New("matrix cache: db is nil")
	}
	if key == "" {
		return errors.New("insert matrix cache: key must not be empty")
	}

	payload, err := json.Marshal(distances)
	if err != nil {
		return fmt.Errorf("insert matrix cache: encode matrix: %w", err)
	}

	q := `
	INSERT INTO matrix_cache (cache_key, distances, updated_at)
	VALUES ($1, $2, now())
	ON CONFLICT (cache_key) DO UPDATE
	SET distances = EXCLUDED.distances,
		updated_at = EXCLUDED.updated_at;
	`
	if _, err := s.DB.ExecContext(ctx, q, key, payload); err != nil {
		return fmt.Errorf("insert matrix cache key=%q: %w", key, err)
	}

	return nil
}
