package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fuyalasmit/money-map/internal/config"
	"github.com/fuyalasmit/money-map/internal/generator"
	"github.com/fuyalasmit/money-map/internal/graphdb"
	"github.com/fuyalasmit/money-map/internal/logging"
	"github.com/fuyalasmit/money-map/internal/repository"
	"github.com/fuyalasmit/money-map/internal/service"
)

var (
	errMissingDataset = errors.New("dataset not found")
)

func main() {
	var (
		configPath   = flag.String("config", "", "optional config file (yaml, json or toml)")
		datasetDir   = flag.String("dataset-dir", "./data", "Directory containing transactions.json")
		transactions = flag.String("transactions", "", "Path to transactions.json (overrides dataset-dir)")
		workers      = flag.Int("workers", 0, "Number of concurrent export workers (0 uses analysis.workers)")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	if *workers > 0 {
		cfg.Analysis.Workers = *workers
	}

	logger := logging.New(cfg.Logging).With("component", "ingest")

	txFile, err := resolveDatasetPath(*datasetDir, *transactions)
	if err != nil {
		logger.Error("dataset resolution failed", "error", err)
		os.Exit(1)
	}

	records, err := generator.ReadRecords(txFile)
	if err != nil {
		logger.Error("failed to load transactions", "error", err, "path", txFile)
		os.Exit(1)
	}
	if len(records) == 0 {
		logger.Error("transactions dataset empty", "path", txFile)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	analyzer, err := service.NewAnalyzer(service.AnalyzerConfig{
		Detection:    cfg.Detection,
		Workers:      cfg.Analysis.Workers,
		ExploreDepth: cfg.Analysis.ExploreDepth,
	}, logger)
	if err != nil {
		logger.Error("invalid detection config", "error", err)
		os.Exit(1)
	}
	res, err := analyzer.Analyze(ctx, records)
	if err != nil {
		logger.Error("analysis failed", "error", err)
		os.Exit(1)
	}

	graphClient, err := buildGraphClient(ctx, logger, cfg)
	if err != nil {
		logger.Error("failed to create graph client", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := graphClient.Close(context.Background()); err != nil {
			logger.Warn("closing graph client failed", "error", err)
		}
	}()

	repo := repository.New(graphClient)
	exporter := service.NewBulkExporter(repo, cfg.Analysis.Workers, logger)

	start := time.Now()
	logger.Info("exporting batch", "transactions", res.Store.Len(), "flags", len(res.Report.Flags), "workers", cfg.Analysis.Workers)
	stats, err := exporter.Export(ctx, res)
	if err != nil {
		logger.Error("export failed", "error", err)
		os.Exit(1)
	}

	counts, err := repo.FlagCounts(ctx)
	if err != nil {
		logger.Warn("flag count query failed", "error", err)
	}
	for kind, n := range counts {
		logger.Info("stored flags", "kind", string(kind), "count", n)
	}

	logger.Info("export complete",
		"duration", time.Since(start).String(),
		"accounts", stats.Accounts,
		"transactions", stats.Transactions,
		"flags", stats.Flags,
	)
}

func resolveDatasetPath(baseDir, transactionsPath string) (string, error) {
	if transactionsPath != "" {
		if _, err := os.Stat(transactionsPath); err != nil {
			return "", fmt.Errorf("stat %s: %w", transactionsPath, err)
		}
		return transactionsPath, nil
	}
	path := filepath.Join(baseDir, generator.TransactionsFile)
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("%w: %s", errMissingDataset, path)
	}
	return path, nil
}

func buildGraphClient(ctx context.Context, logger *slog.Logger, cfg config.Config) (graphdb.Client, error) {
	if cfg.Graph.URI == "" {
		return nil, fmt.Errorf("GRAPH_URI is required for export: %w", graphdb.ErrMissingURI)
	}
	opts := graphdb.Options{
		URI:            cfg.Graph.URI,
		Database:       cfg.Graph.Database,
		Username:       cfg.Graph.Username,
		Password:       cfg.Graph.Password,
		MaxConnections: cfg.Graph.MaxConnections,
	}
	client, err := graphdb.NewNeo4jClient(ctx, opts)
	if err != nil {
		return nil, err
	}
	logger.Info("connected to graph", "uri", cfg.Graph.URI, "database", cfg.Graph.Database)
	return client, nil
}
