package main

import (
	"log"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/ai-fn/route-builder/internal/adapters/cache"
	"github.com/ai-fn/route-builder/internal/adapters/osrm"
	"github.com/ai-fn/route-builder/internal/api"
	"github.com/ai-fn/route-builder/internal/config"
	"github.com/ai-fn/route-builder/internal/platform/db"
	"github.com/ai-fn/route-builder/internal/ports"
)

// main is the application composition root.
// It wires concrete adapters (OSRM, Postgres/Redis caches) behind ports and
// starts the HTTP server.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	port := config.Get("PORT", "8080")
	outputDir := config.Get("OUTPUT_DIR", "data/maps")
	osrmURL := config.Get("OSRM_BASE_URL", "https://router.project-osrm.org")
	profile := config.Get("OSRM_PROFILE", "driving")

	rps := 1.0
	if v := os.Getenv("OSRM_RPS"); v != "" {
		parsed, err := strconv.ParseFloat(v, 64)
		if err != nil {
			log.Fatalf("invalid OSRM_RPS %q: %v", v, err)
		}
		rps = parsed
	}

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		log.Fatal(err)
	}

	matrixCache, closeCache := openMatrixCache()
	defer closeCache()

	provider, err := osrm.NewClient(osrm.Config{
		BaseURL:           osrmURL,
		Profile:           profile,
		RequestsPerSecond: rps,
		Cache:             matrixCache,
	})
	if err != nil {
		log.Fatal(err)
	}

	router := api.NewRouter(provider, outputDir)

	// Timeouts are tuned for cold-cache builds (two external API round-trips).
	log.Printf("Server listening addr=:%s", port)
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	log.Fatal(srv.ListenAndServe())
}

// openMatrixCache selects a cache backend from the environment: Redis when
// REDIS_ADDR is set, Postgres when DATABASE_URL is set, otherwise none.
func openMatrixCache() (ports.MatrixCache, func()) {
	if addr := strings.TrimSpace(os.Getenv("REDIS_ADDR")); addr != "" {
		client := redis.NewClient(&redis.Options{Addr: addr})
		log.Printf("matrix cache backend=redis addr=%s", addr)
		return cache.NewRedisMatrixCache(client, 0), func() { client.Close() }
	}

	if databaseURL := strings.TrimSpace(os.Getenv("DATABASE_URL")); databaseURL != "" {
		sqlDB, err := db.Open(databaseURL)
		if err != nil {
			log.Fatal(err)
		}
		if err := cache.InitSchema(sqlDB); err != nil {
			log.Fatal(err)
		}
		log.Println("matrix cache backend=postgres")
		return cache.NewSQLMatrixCache(sqlDB), func() { sqlDB.Close() }
	}

	log.Println("matrix cache disabled (set REDIS_ADDR or DATABASE_URL to enable)")
	return nil, func() {}
}
