// Package commands holds the CLI command logic, separate from main.go's
// flag parsing, grounded on the teacher's MRPCommand Config/Execute
// split (pkg/interfaces/cli/commands/mrp_command.go).
package commands

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/kaizen-line/inspector-dispatch/pkg/application/services/orchestration"
	"github.com/kaizen-line/inspector-dispatch/pkg/config"
	"github.com/kaizen-line/inspector-dispatch/pkg/infrastructure/events"
	"github.com/kaizen-line/inspector-dispatch/pkg/infrastructure/mastercache"
	"github.com/kaizen-line/inspector-dispatch/pkg/infrastructure/memory"
	"github.com/kaizen-line/inspector-dispatch/pkg/interfaces/cli/output"
	"github.com/kaizen-line/inspector-dispatch/pkg/logging"
)

// Config holds configuration for the run command.
type Config struct {
	FixturesFile string
	ConfigFile   string
	StartDate    string
	EndDate      string
	Today        string
	OutputDir    string
	Format       string
	Verbose      bool
	Help         bool
	// MasterCacheDB optionally enables the on-disk tier of the
	// MasterStore cache (spec.md §4.6); empty disables tier 2 and runs
	// tier-1-only in-memory caching for the process lifetime.
	MasterCacheDB string
}

// RunCommand drives one dispatch extraction run end to end.
type RunCommand struct {
	config Config
}

// NewRunCommand creates a RunCommand from config.
func NewRunCommand(cfg Config) *RunCommand {
	return &RunCommand{config: cfg}
}

// Execute loads fixtures and configuration, runs the pipeline, and
// writes the result through pkg/interfaces/cli/output.
func (c *RunCommand) Execute(ctx context.Context) error {
	if c.config.Help {
		c.showHelp()
		return nil
	}

	if err := c.validateInputs(); err != nil {
		return fmt.Errorf("validation error: %w", err)
	}

	if c.config.Verbose {
		c.printHeader()
	}

	cfg, err := config.Load(c.config.ConfigFile)
	if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}

	fixtures, err := memory.LoadFixtures(c.config.FixturesFile)
	if err != nil {
		return fmt.Errorf("error loading fixtures: %w", err)
	}
	repos := memory.NewRepositories(fixtures)

	today, err := parseRunDate(c.config.Today)
	if err != nil {
		return fmt.Errorf("error parsing -today: %w", err)
	}

	logger := logging.NewDefaultLogger()
	if !c.config.Verbose {
		logger = logging.NewSilentLogger()
	}

	orch := orchestration.NewOrchestrator(orchestration.Collaborators{
		Shipments:       repos,
		Inventory:       repos,
		Excluded:        repos,
		Keywords:        repos,
		CleaningFeed:    repos,
		AdvanceRegistry: repos,
		Products:        repos,
		Inspectors:      repos,
		Skills:          repos,
		Vacations:       repos,
		FixedPins:       repos,
	}, cfg, events.NewInMemoryEventStore(), logger)

	var disk *mastercache.DiskCache
	if c.config.MasterCacheDB != "" {
		disk, err = mastercache.OpenDiskCache(c.config.MasterCacheDB)
		if err != nil {
			logger.Warn().Err(err).Msg("master cache disk tier unavailable, running tier-1-only")
			disk = nil
		} else {
			defer disk.Close()
		}
	}
	orch.MasterCache = mastercache.NewStore(time.Duration(cfg.MasterCacheTTLSeconds)*time.Second, disk)
	orch.MasterCachePath = c.config.FixturesFile

	startTime := time.Now()
	result, err := orch.RunExtraction(c.config.StartDate, c.config.EndDate, today)
	runTime := time.Since(startTime)
	if err != nil {
		return fmt.Errorf("error running extraction: %w", err)
	}

	if c.config.Verbose {
		fmt.Printf("Run completed in %v\n\n", runTime)
	}

	outputConfig := output.Config{
		Format:    c.config.Format,
		OutputDir: c.config.OutputDir,
		Verbose:   c.config.Verbose,
	}
	if err := output.Generate(result, outputConfig); err != nil {
		return fmt.Errorf("error generating output: %w", err)
	}

	return nil
}

func parseRunDate(s string) (time.Time, error) {
	if s == "" {
		return time.Now(), nil
	}
	return time.Parse("2006-01-02", s)
}

// validateInputs validates the command configuration.
func (c *RunCommand) validateInputs() error {
	if c.config.FixturesFile == "" {
		return fmt.Errorf("must specify -fixtures")
	}
	if _, err := os.Stat(c.config.FixturesFile); os.IsNotExist(err) {
		return fmt.Errorf("fixtures file not found: %s", c.config.FixturesFile)
	}
	if c.config.StartDate == "" || c.config.EndDate == "" {
		return fmt.Errorf("must specify both -start and -end")
	}
	return nil
}

// printHeader prints the command header information.
func (c *RunCommand) printHeader() {
	fmt.Printf("Inspector Dispatch CLI\n")
	fmt.Printf("Fixtures: %s\n", c.config.FixturesFile)
	fmt.Printf("Date window: %s to %s\n", c.config.StartDate, c.config.EndDate)
	fmt.Printf("Output format: %s\n", c.config.Format)
	if c.config.OutputDir != "" {
		fmt.Printf("Output directory: %s\n", c.config.OutputDir)
	}
	fmt.Println()
}

// showHelp displays the help message.
func (c *RunCommand) showHelp() {
	fmt.Printf(`Inspector Dispatch CLI - visual inspection dispatch for a manufacturing line

USAGE:
    inspectdispatch -fixtures <file> -start <date> -end <date>

OPTIONS:
    -fixtures <file>    Path to the JSON fixtures file (master + transactional inputs)
    -config <file>      Path to an optional TOML config file overriding defaults
    -start <date>       Shortage window start date (YYYY-MM-DD)
    -end <date>         Shortage window end date (YYYY-MM-DD)
    -today <date>       Run date for priority ordering (default: today)
    -output <dir>       Output directory for results (optional; defaults to stdout)
    -format <fmt>       Output format: text, json (default: text)
    -master-cache-db <file>  Optional bbolt database for the master-cache disk tier
    -verbose            Enable verbose output
    -help               Show this help message

EXAMPLES:
    inspectdispatch -fixtures testdata/fixtures.json -start 2026-07-25 -end 2026-07-31

    inspectdispatch -fixtures testdata/fixtures.json -start 2026-07-25 -end 2026-07-31 \
        -format json -output results/ -verbose
`)
}
