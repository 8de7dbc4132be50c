// Package config loads the engine's runtime-settable parameters
// (spec.md §6), following bobmcallan-vire's LoadConfig pattern: defaults
// built in Go, overlaid by an optional TOML file, overlaid by
// environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
)

// Config holds every spec.md §6 configuration parameter.
type Config struct {
	// HProduct is the same-part cap in hours (default 4.0h).
	HProduct float64 `toml:"h_product"`
	// HRequired is the crew-size pivot in hours (default 3.0h).
	HRequired float64 `toml:"h_required"`
	// Epsilon is the work-hour slack in hours (default 0.05h).
	Epsilon float64 `toml:"epsilon"`
	// ImbalanceThresholdRatio triggers Phase 3 rebalance (default 0.15).
	ImbalanceThresholdRatio float64 `toml:"imbalance_threshold_ratio"`
	// RepairIterationCap bounds Phase 2 (default 10).
	RepairIterationCap int `toml:"repair_iteration_cap"`
	// RebalanceCap bounds Phase 3 reassignments (default 50).
	RebalanceCap int `toml:"rebalance_cap"`

	// BreakStartMinutes / BreakEndMinutes hold the midday break,
	// expressed as minutes since midnight (default 12:15-13:00). The
	// engine does not read them: Inspector.MaxDailyHours uses the fixed
	// entities.BreakStart / entities.BreakEnd window.
	BreakStartMinutes int `toml:"break_start_minutes"`
	BreakEndMinutes   int `toml:"break_end_minutes"`

	// MasterCacheTTLSeconds is the MasterStore cache TTL (spec.md §4.6,
	// default >= 5 minutes).
	MasterCacheTTLSeconds int `toml:"master_cache_ttl_seconds"`
}

// NewDefault returns a Config with the spec's defaults.
func NewDefault() *Config {
	return &Config{
		HProduct:                4.0,
		HRequired:               3.0,
		Epsilon:                 0.05,
		ImbalanceThresholdRatio: 0.15,
		RepairIterationCap:      10,
		RebalanceCap:            50,
		BreakStartMinutes:       12*60 + 15,
		BreakEndMinutes:         13 * 60,
		MasterCacheTTLSeconds:   300,
	}
}

// Load builds a Config from defaults, overlays each TOML file in order
// (later files win), then applies INSPECTDISPATCH_* environment
// overrides.
func Load(paths ...string) (*Config, error) {
	cfg := NewDefault()

	for _, path := range paths {
		if path == "" {
			continue
		}
		if _, err := os.Stat(path); os.IsNotExist(err) {
			continue // skip missing files, matching the teacher's convention
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(cfg)
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("INSPECTDISPATCH_H_PRODUCT"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.HProduct = f
		}
	}
	if v := os.Getenv("INSPECTDISPATCH_H_REQUIRED"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.HRequired = f
		}
	}
	if v := os.Getenv("INSPECTDISPATCH_EPSILON"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Epsilon = f
		}
	}
	if v := os.Getenv("INSPECTDISPATCH_IMBALANCE_THRESHOLD_RATIO"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.ImbalanceThresholdRatio = f
		}
	}
	if v := strings.TrimSpace(os.Getenv("INSPECTDISPATCH_REPAIR_ITERATION_CAP")); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.RepairIterationCap = n
		}
	}
	if v := strings.TrimSpace(os.Getenv("INSPECTDISPATCH_REBALANCE_CAP")); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.RebalanceCap = n
		}
	}
}
