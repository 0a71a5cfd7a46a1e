// Package detect implements the structural pattern detectors. Every detector
// is a read-only pass over a store and its graph, so any number of them can
// run concurrently against the same snapshot.
package detect

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/fuyalasmit/money-map/internal/domain"
	"github.com/fuyalasmit/money-map/internal/graph"
	"github.com/fuyalasmit/money-map/internal/store"
)

// Detector finds one kind of pattern.
type Detector interface {
	Kind() domain.FlagKind
	Detect(ctx context.Context, s *store.Store, g *graph.Graph) ([]domain.Flag, error)
}

// All returns one detector per flag kind, in canonical order.
func All(cfg Config) []Detector {
	return []Detector{
		NewCycleDetector(cfg),
		NewStructuringDetector(cfg),
		NewVelocityDetector(cfg),
		NewLargeAmountDetector(cfg),
		NewReciprocalDetector(cfg),
	}
}

// Outcome is what a run produced. Flags has one entry per detector, in the
// order the detectors were supplied; a timed-out detector contributes nil.
type Outcome struct {
	Flags    [][]domain.Flag
	Warnings []*domain.DetectorTimeout
}

// Run executes the detectors concurrently and waits for all of them.
// A DetectorTimeout is downgraded to a warning; any other error aborts the run.
func Run(ctx context.Context, logger *slog.Logger, s *store.Store, g *graph.Graph, detectors ...Detector) (Outcome, error) {
	if logger == nil {
		logger = slog.Default()
	}

	outcome := Outcome{Flags: make([][]domain.Flag, len(detectors))}
	var mu sync.Mutex

	eg, egCtx := errgroup.WithContext(ctx)
	for i, d := range detectors {
		eg.Go(func() error {
			start := time.Now()
			flags, err := d.Detect(egCtx, s, g)
			if err != nil {
				var timeout *domain.DetectorTimeout
				if errors.As(err, &timeout) {
					logger.Warn("detector abandoned", "detector", d.Kind(), "budget", timeout.Budget)
					mu.Lock()
					outcome.Warnings = append(outcome.Warnings, timeout)
					mu.Unlock()
					return nil
				}
				return err
			}
			outcome.Flags[i] = flags
			logger.Debug("detector completed",
				"detector", d.Kind(),
				"flags", len(flags),
				"duration_ms", time.Since(start).Milliseconds(),
			)
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return Outcome{}, err
	}

	slices.SortFunc(outcome.Warnings, func(a, b *domain.DetectorTimeout) int {
		return a.Detector.Rank() - b.Detector.Rank()
	})
	return outcome, nil
}
