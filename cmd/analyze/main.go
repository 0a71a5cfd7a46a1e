package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/fuyalasmit/money-map/internal/config"
	"github.com/fuyalasmit/money-map/internal/domain"
	"github.com/fuyalasmit/money-map/internal/generator"
	"github.com/fuyalasmit/money-map/internal/logging"
	"github.com/fuyalasmit/money-map/internal/report"
	"github.com/fuyalasmit/money-map/internal/service"
)

func main() {
	var (
		configPath   = flag.String("config", "", "optional config file (yaml, json or toml)")
		input        = flag.String("input", "data/"+generator.TransactionsFile, "path to the transaction batch")
		format       = flag.String("format", "table", "report format: table or json")
		showSummary  = flag.Bool("summary", false, "print per-kind and per-month totals")
		annotatePath = flag.String("annotate", "", "write every transaction with its derived label to this path")
		exploreFrom  = flag.String("explore", "", "print the accounts reachable from this account")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger := logging.New(cfg.Logging).With("component", "analyze")

	records, err := generator.ReadRecords(*input)
	if err != nil {
		logger.Error("failed to read batch", "error", err, "path", *input)
		os.Exit(1)
	}

	analyzer, err := service.NewAnalyzer(service.AnalyzerConfig{
		Detection:    cfg.Detection,
		Workers:      cfg.Analysis.Workers,
		ExploreDepth: cfg.Analysis.ExploreDepth,
	}, logger)
	if err != nil {
		logger.Error("invalid detection config", "error", err)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	res, err := analyzer.Analyze(ctx, records)
	if err != nil {
		logger.Error("analysis failed", "error", err)
		os.Exit(1)
	}
	if len(res.Warnings) > 0 {
		fmt.Fprintf(os.Stderr, "warning: %d detector(s) abandoned, report is partial\n", len(res.Warnings))
	}

	if err := printReport(os.Stdout, *format, res); err != nil {
		logger.Error("failed to print report", "error", err)
		os.Exit(1)
	}
	if *showSummary {
		report.WriteSummaryTable(os.Stdout, res.Summary)
	}

	if *annotatePath != "" {
		if err := writeAnnotated(*annotatePath, res); err != nil {
			logger.Error("failed to write annotated batch", "error", err, "path", *annotatePath)
			os.Exit(1)
		}
		logger.Info("annotated batch written", "path", *annotatePath)
	}

	if *exploreFrom != "" {
		n, err := analyzer.Investigate(res, *exploreFrom)
		switch {
		case errors.Is(err, domain.ErrAccountNotFound):
			logger.Warn("explore seed not in batch", "account", *exploreFrom)
		case err != nil:
			logger.Error("explore failed", "error", err, "account", *exploreFrom)
			os.Exit(1)
		}
		writeNeighborhood(os.Stdout, n)
	}
}

func writeNeighborhood(w io.Writer, n domain.Neighborhood) {
	fmt.Fprintf(w, "\nReachable from %s within %d hops:\n", n.Seed, n.MaxDepth)
	if n.Len() == 0 {
		fmt.Fprintln(w, "  (account not found)")
		return
	}
	for _, acct := range n.Accounts() {
		fmt.Fprintf(w, "  %d  %s\n", n.Depths[acct], acct)
	}
}

func printReport(w io.Writer, format string, res service.Result) error {
	switch strings.ToLower(format) {
	case "json":
		return report.Write(w, res.Report)
	case "table", "":
		report.WriteTable(w, res.Report)
		fmt.Fprintf(w, "%d flags over %d of %d transactions\n",
			len(res.Report.Flags), res.Summary.FlaggedTransactions, res.Summary.TotalTransactions)
		return nil
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}

func writeAnnotated(path string, res service.Result) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(report.Annotate(res.Store, res.Report)); err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return nil
}
