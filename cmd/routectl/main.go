package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/ai-fn/route-builder/internal/adapters/osrm"
	"github.com/ai-fn/route-builder/internal/locfile"
	"github.com/ai-fn/route-builder/internal/services"
)

var (
	locationsPath string
	outPath       string
	strategyName  string
	osrmURL       string
	profile       string
	rps           float64
	timeout       time.Duration
)

var rootCmd = &cobra.Command{
	Use:   "routectl",
	Short: "Build optimized delivery route maps from a locations file",
}

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Compute a route over the locations and save it as an HTML map",
	RunE: func(cmd *cobra.Command, args []string) error {
		locations, err := locfile.Load(locationsPath)
		if err != nil {
			return err
		}

		strategy, err := services.ParseStrategy(strategyName)
		if err != nil {
			return err
		}

		provider, err := osrm.NewClient(osrm.Config{
			BaseURL:           osrmURL,
			Profile:           profile,
			RequestsPerSecond: rps,
		})
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
		defer cancel()

		builder := &services.Builder{Provider: provider, Strategy: strategy}
		result, err := builder.Build(ctx, locations, outPath)
		if err != nil {
			return err
		}

		fmt.Printf("saved %s (order %v, %.0f m)\n", result.OutputPath, result.Order, result.DistanceMeters)
		return nil
	},
}

func init() {
	buildCmd.Flags().StringVar(&locationsPath, "locations", "", "path to a JSON or YAML locations file (required)")
	buildCmd.Flags().StringVar(&outPath, "out", services.DefaultFilename, "output map file")
	buildCmd.Flags().StringVar(&strategyName, "strategy", string(services.StrategyAssignment), "ordering strategy: assignment or nearest")
	buildCmd.Flags().StringVar(&osrmURL, "osrm-url", "https://router.project-osrm.org", "OSRM-compatible service base URL")
	buildCmd.Flags().StringVar(&profile, "profile", "driving", "routing profile")
	buildCmd.Flags().Float64Var(&rps, "rps", 1, "max requests per second against the routing service")
	buildCmd.Flags().DurationVar(&timeout, "timeout", 60*time.Second, "overall build timeout")
	_ = buildCmd.MarkFlagRequired("locations")

	rootCmd.AddCommand(buildCmd)
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
