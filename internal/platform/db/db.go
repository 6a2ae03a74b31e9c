package db

import (
	"database/sql"
	"fmt"
	"time"
)

// Open dials Postgres through the registered pgx stdlib driver and verifies
// the connection before handing the pool out. The pool is sized for the
// matrix cache's short single-statement reads and writes.
func Open(databaseURL string) (*sql.DB, error) {
	pool, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	pool.SetMaxOpenConns(8)
	pool.SetMaxIdleConns(4)
	pool.SetConnMaxLifetime(time.Hour)

	if err := pool.Ping(); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	return pool, nil
}
