package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/kaizen-line/inspector-dispatch/pkg/interfaces/cli/commands"
)

func main() {
	var (
		fixturesFile = flag.String("fixtures", "", "Path to the JSON fixtures file")
		configFile   = flag.String("config", "", "Path to an optional TOML config file")
		startDate    = flag.String("start", "", "Shortage window start date (YYYY-MM-DD)")
		endDate      = flag.String("end", "", "Shortage window end date (YYYY-MM-DD)")
		today        = flag.String("today", "", "Run date for priority ordering (default: today)")
		outputDir    = flag.String("output", "", "Output directory for results (optional)")
		format       = flag.String("format", "text", "Output format: text, json")
		masterCache  = flag.String("master-cache-db", "", "Path to an optional bbolt master-cache database (disk tier)")
		verbose      = flag.Bool("verbose", false, "Enable verbose output")
		help         = flag.Bool("help", false, "Show help message")
	)

	flag.Parse()

	cmd := commands.NewRunCommand(commands.Config{
		FixturesFile:  *fixturesFile,
		ConfigFile:    *configFile,
		StartDate:     *startDate,
		EndDate:       *endDate,
		Today:         *today,
		OutputDir:     *outputDir,
		Format:        *format,
		MasterCacheDB: *masterCache,
		Verbose:       *verbose,
		Help:          *help,
	})

	if err := cmd.Execute(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
