// Package memory implements every domain/repositories source interface
// as in-memory fakes over one flat JSON fixture file, grounded on the
// teacher's pkg/infrastructure/repositories/memory in-memory-fake
// pattern. Master-file parsing remains a non-goal (spec.md §1); this is
// not a spreadsheet reader, only a convenient shape for tests and the
// CLI demo.
package memory

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/kaizen-line/inspector-dispatch/pkg/domain/entities"
	"github.com/kaizen-line/inspector-dispatch/pkg/domain/repositories"
)

// Fixtures bundles every master and transactional input one pipeline
// run needs.
type Fixtures struct {
	ShipmentAggregates       []repositories.ShipmentAggregateRow          `json:"shipment_aggregates"`
	InventoryLots            map[string][]repositories.InventoryLotRow    `json:"inventory_lots"`
	ProductProcessTimes      map[string]map[string]float64                `json:"product_process_times"`
	Inspectors               []entities.Inspector                        `json:"inspectors"`
	SkillCells               []entities.SkillCell                        `json:"skill_cells"`
	Vacations                map[string]string                           `json:"vacations"`
	CleaningFeed             []repositories.CleaningFeedRow              `json:"cleaning_feed"`
	AdvanceLotRegistrations  []repositories.AdvanceLotRegistration        `json:"advance_lot_registrations"`
	ExcludedProducts         []string                                    `json:"excluded_products"`
	InspectionTargetKeywords []string                                    `json:"inspection_target_keywords"`
	FixedPins                []entities.FixedPin                         `json:"fixed_pins"`
}

// LoadFixtures reads and parses a Fixtures JSON file from path.
func LoadFixtures(path string) (*Fixtures, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixtures %s: %w", path, err)
	}
	var f Fixtures
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse fixtures %s: %w", path, err)
	}
	return &f, nil
}

// NewFixtures returns an empty Fixtures with every map initialized, a
// convenient starting point for tests that only care about a handful
// of fields.
func NewFixtures() *Fixtures {
	return &Fixtures{
		InventoryLots:       make(map[string][]repositories.InventoryLotRow),
		ProductProcessTimes: make(map[string]map[string]float64),
		Vacations:           make(map[string]string),
	}
}
