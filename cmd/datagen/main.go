package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/fuyalasmit/money-map/internal/generator"
)

func main() {
	cfg := generator.DefaultConfig()
	var (
		total         = flag.Int("transactions", cfg.TotalTransactions, "target batch size used to derive pattern counts")
		cleanFraction = flag.Float64("clean-fraction", cfg.CleanFraction, "share of the batch emitted as clean traffic")
		accounts      = flag.Int("accounts", cfg.Accounts, "size of the account pool used by clean traffic")
		cycles        = flag.Int("cycles", 0, "cycle instances to plant (0 derives from -transactions, negative disables)")
		structuring   = flag.Int("structuring", 0, "structuring instances to plant")
		velocity      = flag.Int("velocity", 0, "pass-through instances to plant")
		large         = flag.Int("large", 0, "large-amount instances to plant")
		reciprocal    = flag.Int("reciprocal", 0, "reciprocal instances to plant")
		seed          = flag.Int64("seed", cfg.Seed, "random seed for deterministic generation")
		outputDir     = flag.String("output-dir", "data", "directory to write transactions.json")
		writeTruth    = flag.Bool("truth", false, "also write truth.json with the planted instances")
		writeStdout   = flag.Bool("stdout", false, "write the dataset to stdout instead of files")
	)
	flag.Parse()

	genCfg := generator.Config{
		TotalTransactions: *total,
		CleanFraction:     clampProbability(*cleanFraction),
		Cycles:            *cycles,
		Structuring:       *structuring,
		Velocity:          *velocity,
		LargeAmount:       *large,
		Reciprocal:        *reciprocal,
		Accounts:          *accounts,
		Seed:              *seed,
		Start:             cfg.Start,
		Span:              cfg.Span,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	dataset, err := generator.New(genCfg).Generate(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "generation failed: %v\n", err)
		os.Exit(1)
	}

	if *writeStdout {
		if err := json.NewEncoder(os.Stdout).Encode(dataset); err != nil {
			fmt.Fprintf(os.Stderr, "failed to write dataset to stdout: %v\n", err)
			os.Exit(1)
		}
		return
	}

	path, err := generator.WriteDataset(dataset, *outputDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to write dataset: %v\n", err)
		os.Exit(1)
	}
	if *writeTruth {
		if _, err := generator.WriteTruth(dataset, *outputDir); err != nil {
			fmt.Fprintf(os.Stderr, "failed to write truth: %v\n", err)
			os.Exit(1)
		}
	}

	fmt.Fprintf(os.Stdout, "Generated %d transactions (%d planted instances) into %s\n", len(dataset.Records), len(dataset.Instances), path)
}

func clampProbability(value float64) float64 {
	if value < 0 {
		return 0
	}
	if value > 1 {
		return 1
	}
	return value
}
