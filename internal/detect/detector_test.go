package detect

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"slices"
	"testing"
	"time"

	"github.com/fuyalasmit/money-map/internal/domain"
	"github.com/fuyalasmit/money-map/internal/graph"
	"github.com/fuyalasmit/money-map/internal/store"
)

var base = time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

func tx(id, from, to string, amount int64, offset time.Duration) domain.Transaction {
	return domain.Transaction{ID: id, Sender: from, Receiver: to, Amount: amount, Timestamp: base.Add(offset)}
}

func build(t *testing.T, txs ...domain.Transaction) (*store.Store, *graph.Graph) {
	t.Helper()
	s, errs := store.FromTransactions(txs)
	if len(errs) != 0 {
		t.Fatalf("unexpected record errors: %v", errs)
	}
	return s, graph.Build(s)
}

func detect(t *testing.T, d Detector, txs ...domain.Transaction) []domain.Flag {
	t.Helper()
	s, g := build(t, txs...)
	flags, err := d.Detect(context.Background(), s, g)
	if err != nil {
		t.Fatalf("detect %s: %v", d.Kind(), err)
	}
	return flags
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestDefaultConfig_Valid(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
}

func TestConfig_ValidateRejects(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"cycle length", func(c *Config) { c.MaxCycleLength = 1 }},
		{"cycle window", func(c *Config) { c.MaxCycleWindow = 0 }},
		{"budget", func(c *Config) { c.CycleSearchBudget = 0 }},
		{"ratio above one", func(c *Config) { c.PassThroughRatio = 1.2 }},
		{"ratio zero", func(c *Config) { c.PassThroughRatio = 0 }},
		{"threshold", func(c *Config) { c.ReportingThreshold = -1 }},
		{"tolerance", func(c *Config) { c.ReciprocalTolerance = -0.1 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(&cfg)
			if err := cfg.Validate(); !errors.Is(err, ErrInvalidConfig) {
				t.Fatalf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}

func TestRun_CollectsEveryDetector(t *testing.T) {
	s, g := build(t,
		tx("L1", "A", "B", 60000, 0),
		tx("R1", "B", "A", 59000, 10*time.Minute),
	)
	detectors := All(DefaultConfig())
	outcome, err := Run(context.Background(), discardLogger(), s, g, detectors...)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(outcome.Flags) != len(detectors) {
		t.Fatalf("expected one slot per detector, got %d", len(outcome.Flags))
	}
	if len(outcome.Warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", outcome.Warnings)
	}

	kinds := make(map[domain.FlagKind]int)
	for i, flags := range outcome.Flags {
		for _, f := range flags {
			if f.Kind != detectors[i].Kind() {
				t.Fatalf("slot %d holds %s flag", i, f.Kind)
			}
			kinds[f.Kind]++
		}
	}
	if kinds[domain.FlagLargeAmount] != 2 || kinds[domain.FlagReciprocal] != 1 || kinds[domain.FlagCycleLaundering] != 1 {
		t.Fatalf("unexpected flag counts %v", kinds)
	}
}

func TestRun_TimeoutBecomesWarning(t *testing.T) {
	cfg := DefaultConfig()
	cfg.CycleSearchBudget = 1
	s, g := build(t,
		tx("T1", "A", "B", 100, 0),
		tx("T2", "B", "C", 100, time.Hour),
		tx("T3", "C", "A", 100, 2*time.Hour),
	)
	outcome, err := Run(context.Background(), discardLogger(), s, g,
		NewCycleDetector(cfg), NewLargeAmountDetector(cfg))
	if err != nil {
		t.Fatalf("timeout must not fail the run: %v", err)
	}
	if len(outcome.Warnings) != 1 || outcome.Warnings[0].Detector != domain.FlagCycleLaundering {
		t.Fatalf("expected one cycle warning, got %v", outcome.Warnings)
	}
	if outcome.Flags[0] != nil {
		t.Fatalf("timed-out detector output must be dropped")
	}
}

type failingDetector struct{ err error }

func (f failingDetector) Kind() domain.FlagKind { return domain.FlagLargeAmount }

func (f failingDetector) Detect(context.Context, *store.Store, *graph.Graph) ([]domain.Flag, error) {
	return nil, f.err
}

func TestRun_PropagatesOtherErrors(t *testing.T) {
	boom := errors.New("boom")
	s, g := build(t)
	_, err := Run(context.Background(), discardLogger(), s, g, failingDetector{err: boom})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
}

func TestLargeAmount_Boundary(t *testing.T) {
	flags := detect(t, NewLargeAmountDetector(DefaultConfig()),
		tx("AT", "A", "B", 50000, 0),
		tx("BELOW", "A", "B", 49999, time.Minute),
	)
	if len(flags) != 1 || flags[0].TransactionIDs[0] != "AT" {
		t.Fatalf("expected only the at-threshold transfer, got %+v", flags)
	}
	if flags[0].Score != 1 {
		t.Fatalf("expected score 1, got %v", flags[0].Score)
	}
	if !slices.Equal(flags[0].Accounts, []string{"A", "B"}) {
		t.Fatalf("unexpected accounts %v", flags[0].Accounts)
	}
}
