package generator

import (
	"math"
	"time"
)

// Config drives the synthetic data generator.
//
// Pattern counts follow one rule: zero means "derive from TotalTransactions",
// a negative value disables the pattern.
type Config struct {
	TotalTransactions int
	// CleanFraction is the share of TotalTransactions emitted as random clean traffic.
	CleanFraction float64
	Cycles        int
	Structuring   int
	Velocity      int
	LargeAmount   int
	Reciprocal    int
	// Accounts is the size of the account pool used by clean traffic.
	Accounts int
	Seed     int64
	Start    time.Time
	Span     time.Duration
}

// Pattern shares of TotalTransactions used when a count is left at zero.
const (
	cycleShare       = 0.02
	structuringShare = 0.02
	velocityShare    = 0.02
	largeShare       = 0.03
	reciprocalShare  = 0.03
)

// DefaultConfig returns a small, fully populated batch.
func DefaultConfig() Config {
	return Config{
		TotalTransactions: 200,
		CleanFraction:     0.8,
		Accounts:          50,
		Seed:              42,
		Start:             time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		Span:              365 * 24 * time.Hour,
	}
}

func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.TotalTransactions <= 0 {
		c.TotalTransactions = def.TotalTransactions
	}
	if c.CleanFraction <= 0 {
		c.CleanFraction = def.CleanFraction
	}
	if c.CleanFraction > 1 {
		c.CleanFraction = 1
	}
	if c.Accounts < 2 {
		c.Accounts = def.Accounts
	}
	if c.Seed == 0 {
		c.Seed = time.Now().UnixNano()
	}
	if c.Start.IsZero() {
		c.Start = def.Start
	}
	if c.Span < patternSpan {
		c.Span = def.Span
	}
	c.Cycles = instanceCount(c.Cycles, cycleShare, c.TotalTransactions)
	c.Structuring = instanceCount(c.Structuring, structuringShare, c.TotalTransactions)
	c.Velocity = instanceCount(c.Velocity, velocityShare, c.TotalTransactions)
	c.LargeAmount = instanceCount(c.LargeAmount, largeShare, c.TotalTransactions)
	c.Reciprocal = instanceCount(c.Reciprocal, reciprocalShare, c.TotalTransactions)
	return c
}

func instanceCount(configured int, share float64, total int) int {
	switch {
	case configured < 0:
		return 0
	case configured > 0:
		return configured
	}
	n := int(math.Round(share * float64(total)))
	if n < 1 {
		n = 1
	}
	return n
}
