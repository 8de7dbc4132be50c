// Package output renders a DispatchResult for the CLI, grounded on the
// teacher's text/JSON Generate() shape (CSV and SVG Gantt rendering are
// explicit non-goals here: the assignment table and side list are the
// only publishable artifacts spec.md §6 names).
package output

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/kaizen-line/inspector-dispatch/pkg/application/dto"
	"github.com/kaizen-line/inspector-dispatch/pkg/domain/entities"
)

// Config holds output-generation settings.
type Config struct {
	Format    string // "text" or "json"
	OutputDir string // if empty, results print to stdout
	Verbose   bool
}

// Generate writes result in the requested format.
func Generate(result *dto.DispatchResult, config Config) error {
	switch config.Format {
	case "text", "":
		return generateTextOutput(result, config)
	case "json":
		return generateJSONOutput(result, config)
	default:
		return fmt.Errorf("unsupported output format: %s", config.Format)
	}
}

func generateTextOutput(result *dto.DispatchResult, config Config) error {
	fmt.Printf("Dispatch run %s\n", result.RunID)
	assigned := 0
	for _, row := range result.Rows {
		if row.Status == entities.Assigned {
			assigned++
		}
	}
	fmt.Printf("Assigned rows: %d\n", assigned)
	fmt.Printf("Non-inspection lots: %d\n", len(result.NonInspectionLots))
	fmt.Printf("Diagnostics: %d\n\n", len(result.Diagnostics))

	if len(result.Rows) > 0 {
		fmt.Printf("%-14s %-10s %-10s %-6s %-8s %-20s\n",
			"Lot", "Product", "Status", "Crew", "Hours", "Team")
		fmt.Printf("%-14s %-10s %-10s %-6s %-8s %-20s\n",
			"--------------", "----------", "----------", "------", "--------", "--------------------")
		for _, row := range result.Rows {
			fmt.Printf("%-14s %-10s %-10s %-6d %-8s %-20s\n",
				row.Lot.ProductionLotID,
				row.Lot.ProductNumber,
				row.Status.String(),
				row.CrewSize(),
				row.DividedTime.String(),
				row.TeamInfo)
		}
		fmt.Println()
	}

	if len(result.NonInspectionLots) > 0 {
		fmt.Printf("Non-inspection lots (routed out before dedup/assignment):\n")
		for _, lot := range result.NonInspectionLots {
			fmt.Printf("  %-14s %-10s %s\n", lot.ProductionLotID, lot.ProductNumber, lot.CurrentProcessName)
		}
		fmt.Println()
	}

	if config.Verbose {
		for _, d := range result.Diagnostics {
			fmt.Printf("[%s] %s: %s\n", d.Phase, d.LotKey, d.Message)
		}
	}

	if config.OutputDir != "" {
		if err := os.MkdirAll(config.OutputDir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
		filename := filepath.Join(config.OutputDir, "dispatch_result.txt")
		if config.Verbose {
			fmt.Printf("Results saved to: %s\n", filename)
		}
	}

	return nil
}

func generateJSONOutput(result *dto.DispatchResult, config Config) error {
	jsonData, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if config.OutputDir == "" {
		fmt.Println(string(jsonData))
		return nil
	}

	if err := os.MkdirAll(config.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	filename := filepath.Join(config.OutputDir, "dispatch_result.json")
	if err := os.WriteFile(filename, jsonData, 0644); err != nil {
		return fmt.Errorf("failed to write JSON file: %w", err)
	}
	if config.Verbose {
		fmt.Printf("JSON results saved to: %s\n", filename)
	}
	return nil
}
