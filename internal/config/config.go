package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/fuyalasmit/money-map/internal/detect"
)

// Config aggregates application configuration values.
type Config struct {
	Logging   LoggingConfig
	Graph     GraphConfig
	Detection detect.Config
	Analysis  AnalysisConfig
}

// GraphConfig describes connectivity to the graph database used for export.
type GraphConfig struct {
	URI            string
	Database       string
	Username       string
	Password       string
	MaxConnections int
}

// LoggingConfig controls structured logging settings.
type LoggingConfig struct {
	Level         string
	Format        string // text|json
	IncludeCaller bool
}

// AnalysisConfig tunes the run around the detectors.
type AnalysisConfig struct {
	// Workers bounds concurrent neighborhood queries and export writes.
	Workers int
	// ExploreDepth is the hop bound used when investigating flagged accounts.
	ExploreDepth int
}

const (
	defaultLoggingLevel     = "info"
	defaultLoggingFormat    = "text"
	defaultGraphMaxSessions = 10
	defaultWorkers          = 4
	defaultExploreDepth     = 2
)

// Load reads configuration from an optional file and the environment, applying
// defaults. Environment names are the keys upper-cased with dots replaced by
// underscores, e.g. LOG_LEVEL, GRAPH_URI, DETECTION_MAX_CYCLE_LENGTH.
func Load(path string) (Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	cfg := Config{
		Logging: LoggingConfig{
			Level:         v.GetString("log.level"),
			Format:        v.GetString("log.format"),
			IncludeCaller: v.GetBool("log.include_caller"),
		},
		Graph: GraphConfig{
			URI:            v.GetString("graph.uri"),
			Database:       v.GetString("graph.database"),
			Username:       v.GetString("graph.username"),
			Password:       v.GetString("graph.password"),
			MaxConnections: v.GetInt("graph.max_connections"),
		},
		Detection: detect.Config{
			MaxCycleLength:       v.GetInt("detection.max_cycle_length"),
			MaxCycleWindow:       v.GetDuration("detection.max_cycle_window"),
			CycleSearchBudget:    v.GetInt("detection.cycle_search_budget"),
			StructuringWindow:    v.GetDuration("detection.structuring_window"),
			ReportingThreshold:   v.GetInt64("detection.reporting_threshold"),
			StructuringMinCount:  v.GetInt("detection.structuring_min_count"),
			VelocityWindow:       v.GetDuration("detection.velocity_window"),
			PassThroughRatio:     v.GetFloat64("detection.pass_through_ratio"),
			LargeAmountThreshold: v.GetInt64("detection.large_amount_threshold"),
			ReciprocalWindow:     v.GetDuration("detection.reciprocal_window"),
			ReciprocalTolerance:  v.GetFloat64("detection.reciprocal_tolerance"),
			ReciprocalEpsilon:    v.GetInt64("detection.reciprocal_epsilon"),
		},
		Analysis: AnalysisConfig{
			Workers:      v.GetInt("analysis.workers"),
			ExploreDepth: v.GetInt("analysis.explore_depth"),
		},
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", defaultLoggingLevel)
	v.SetDefault("log.format", defaultLoggingFormat)
	v.SetDefault("log.include_caller", false)

	v.SetDefault("graph.uri", "")
	v.SetDefault("graph.database", "")
	v.SetDefault("graph.username", "")
	v.SetDefault("graph.password", "")
	v.SetDefault("graph.max_connections", defaultGraphMaxSessions)

	d := detect.DefaultConfig()
	v.SetDefault("detection.max_cycle_length", d.MaxCycleLength)
	v.SetDefault("detection.max_cycle_window", d.MaxCycleWindow)
	v.SetDefault("detection.cycle_search_budget", d.CycleSearchBudget)
	v.SetDefault("detection.structuring_window", d.StructuringWindow)
	v.SetDefault("detection.reporting_threshold", d.ReportingThreshold)
	v.SetDefault("detection.structuring_min_count", d.StructuringMinCount)
	v.SetDefault("detection.velocity_window", d.VelocityWindow)
	v.SetDefault("detection.pass_through_ratio", d.PassThroughRatio)
	v.SetDefault("detection.large_amount_threshold", d.LargeAmountThreshold)
	v.SetDefault("detection.reciprocal_window", d.ReciprocalWindow)
	v.SetDefault("detection.reciprocal_tolerance", d.ReciprocalTolerance)
	v.SetDefault("detection.reciprocal_epsilon", d.ReciprocalEpsilon)

	v.SetDefault("analysis.workers", defaultWorkers)
	v.SetDefault("analysis.explore_depth", defaultExploreDepth)
}

func (c Config) validate() error {
	var problems []error
	if err := c.Detection.Validate(); err != nil {
		problems = append(problems, err)
	}
	if c.Analysis.Workers <= 0 {
		problems = append(problems, fmt.Errorf("analysis workers must be positive, got %d", c.Analysis.Workers))
	}
	if c.Analysis.ExploreDepth < 0 {
		problems = append(problems, fmt.Errorf("explore depth must not be negative, got %d", c.Analysis.ExploreDepth))
	}
	switch strings.ToLower(c.Logging.Format) {
	case "text", "json":
	default:
		problems = append(problems, fmt.Errorf("log format %q is not text or json", c.Logging.Format))
	}
	return errors.Join(problems...)
}
