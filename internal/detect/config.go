package detect

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidConfig wraps every validation failure returned by Config.Validate.
var ErrInvalidConfig = errors.New("invalid detection config")

// Config holds the thresholds for all detectors.
type Config struct {
	MaxCycleLength int
	MaxCycleWindow time.Duration
	// CycleSearchBudget caps the edge expansions one cycle search may perform.
	CycleSearchBudget int

	StructuringWindow   time.Duration
	ReportingThreshold  int64
	StructuringMinCount int

	VelocityWindow   time.Duration
	PassThroughRatio float64

	LargeAmountThreshold int64

	ReciprocalWindow time.Duration
	// ReciprocalTolerance is a fraction of the first transfer's amount.
	ReciprocalTolerance float64
	// ReciprocalEpsilon is a fixed tolerance in minor units; the larger of the two applies.
	ReciprocalEpsilon int64
}

const (
	defaultMaxCycleLength       = 6
	defaultMaxCycleWindow       = 30 * 24 * time.Hour
	defaultCycleSearchBudget    = 1_000_000
	defaultStructuringWindow    = 24 * time.Hour
	defaultReportingThreshold   = 1000
	defaultStructuringMinCount  = 4
	defaultVelocityWindow       = time.Hour
	defaultPassThroughRatio     = 0.7
	defaultLargeAmountThreshold = 50000
	defaultReciprocalWindow     = 30 * time.Minute
	defaultReciprocalTolerance  = 0.05
	defaultReciprocalEpsilon    = 1
)

// DefaultConfig returns the baseline thresholds.
func DefaultConfig() Config {
	return Config{
		MaxCycleLength:       defaultMaxCycleLength,
		MaxCycleWindow:       defaultMaxCycleWindow,
		CycleSearchBudget:    defaultCycleSearchBudget,
		StructuringWindow:    defaultStructuringWindow,
		ReportingThreshold:   defaultReportingThreshold,
		StructuringMinCount:  defaultStructuringMinCount,
		VelocityWindow:       defaultVelocityWindow,
		PassThroughRatio:     defaultPassThroughRatio,
		LargeAmountThreshold: defaultLargeAmountThreshold,
		ReciprocalWindow:     defaultReciprocalWindow,
		ReciprocalTolerance:  defaultReciprocalTolerance,
		ReciprocalEpsilon:    defaultReciprocalEpsilon,
	}
}

// Validate checks that every threshold is usable.
func (c Config) Validate() error {
	var problems []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			problems = append(problems, fmt.Errorf(format, args...))
		}
	}

	check(c.MaxCycleLength >= 2, "max cycle length %d is below 2", c.MaxCycleLength)
	check(c.MaxCycleWindow > 0, "max cycle window must be positive")
	check(c.CycleSearchBudget > 0, "cycle search budget must be positive")
	check(c.StructuringWindow > 0, "structuring window must be positive")
	check(c.ReportingThreshold > 0, "reporting threshold must be positive")
	check(c.StructuringMinCount >= 1, "structuring min count must be at least 1")
	check(c.VelocityWindow > 0, "velocity window must be positive")
	check(c.PassThroughRatio > 0 && c.PassThroughRatio <= 1, "pass-through ratio %v outside (0,1]", c.PassThroughRatio)
	check(c.LargeAmountThreshold > 0, "large amount threshold must be positive")
	check(c.ReciprocalWindow > 0, "reciprocal window must be positive")
	check(c.ReciprocalTolerance >= 0, "reciprocal tolerance must not be negative")
	check(c.ReciprocalEpsilon >= 0, "reciprocal epsilon must not be negative")

	if len(problems) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(problems...))
}
