// Package service wires the store, graph, detectors, explorer and report into
// a single analysis run, and exports its result.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/fuyalasmit/money-map/internal/detect"
	"github.com/fuyalasmit/money-map/internal/domain"
	"github.com/fuyalasmit/money-map/internal/explore"
	"github.com/fuyalasmit/money-map/internal/graph"
	"github.com/fuyalasmit/money-map/internal/report"
	"github.com/fuyalasmit/money-map/internal/store"
)

// AnalyzerConfig carries the detector thresholds and run knobs.
type AnalyzerConfig struct {
	Detection    detect.Config
	Workers      int
	ExploreDepth int
}

// Analyzer runs the full detection pipeline over one batch at a time.
type Analyzer struct {
	cfg       AnalyzerConfig
	detectors []detect.Detector
	logger    *slog.Logger
}

// Result is everything one run produced. Store and Graph are read-only.
type Result struct {
	Report       domain.Report
	RecordErrors []domain.RecordError
	Warnings     []*domain.DetectorTimeout
	Summary      report.Summary
	Store        *store.Store
	Graph        *graph.Graph
}

// NewAnalyzer validates the configuration and prepares one detector per kind.
func NewAnalyzer(cfg AnalyzerConfig, logger *slog.Logger) (*Analyzer, error) {
	if err := cfg.Detection.Validate(); err != nil {
		return nil, err
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 4
	}
	if cfg.ExploreDepth < 0 {
		cfg.ExploreDepth = 0
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Analyzer{
		cfg:       cfg,
		detectors: detect.All(cfg.Detection),
		logger:    logger.With("component", "analyzer"),
	}, nil
}

// Analyze validates the records, builds the graph, runs every detector and
// aggregates their flags. Invalid records and abandoned detectors are reported
// in the result; only context cancellation or an unexpected detector failure
// returns an error.
func (a *Analyzer) Analyze(ctx context.Context, records []domain.Record) (Result, error) {
	start := time.Now()

	s, recordErrs := store.Load(records)
	for i := range recordErrs {
		a.logger.Debug("record rejected", "error", recordErrs[i].Error())
	}
	if len(recordErrs) > 0 {
		a.logger.Warn("records rejected", "rejected", len(recordErrs), "accepted", s.Len())
	}

	g := graph.Build(s)
	a.logger.Debug("graph built", "accounts", g.NodeCount(), "transactions", g.EdgeCount())

	outcome, err := detect.Run(ctx, a.logger, s, g, a.detectors...)
	if err != nil {
		return Result{}, fmt.Errorf("run detectors: %w", err)
	}

	rep := report.Aggregate(outcome.Flags...)
	res := Result{
		Report:       rep,
		RecordErrors: recordErrs,
		Warnings:     outcome.Warnings,
		Summary:      report.Summarize(s, rep),
		Store:        s,
		Graph:        g,
	}

	a.logger.Info("analysis complete",
		"transactions", s.Len(),
		"flags", len(rep.Flags),
		"flagged_transactions", res.Summary.FlaggedTransactions,
		"warnings", len(res.Warnings),
		"duration", time.Since(start).String(),
	)
	return res, nil
}

// Investigate returns the neighborhood of account within the configured depth.
func (a *Analyzer) Investigate(res Result, account string) (domain.Neighborhood, error) {
	return explore.Explore(res.Graph, account, a.cfg.ExploreDepth)
}

// InvestigateFlagged explores around every account named in the report,
// running up to Workers queries at once.
func (a *Analyzer) InvestigateFlagged(ctx context.Context, res Result) (map[string]domain.Neighborhood, error) {
	seen := make(map[string]struct{})
	var accounts []string
	for _, f := range res.Report.Flags {
		for _, acct := range f.Accounts {
			if _, ok := seen[acct]; ok {
				continue
			}
			seen[acct] = struct{}{}
			accounts = append(accounts, acct)
		}
	}

	out := make(map[string]domain.Neighborhood, len(accounts))
	var mu sync.Mutex

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(a.cfg.Workers)
	for _, acct := range accounts {
		eg.Go(func() error {
			if err := egCtx.Err(); err != nil {
				return err
			}
			n, err := a.Investigate(res, acct)
			if err != nil {
				return fmt.Errorf("investigate %s: %w", acct, err)
			}
			mu.Lock()
			out[acct] = n
			mu.Unlock()
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
