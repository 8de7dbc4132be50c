// Package orchestration composes ShortageResolver, LotDeduper, and
// AssignmentEngine into the one linear pipeline spec.md §2 describes:
// "ShortageResolver -> LotDeduper -> AssignmentEngine -> publishable
// result", run once per extraction run.
package orchestration

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/kaizen-line/inspector-dispatch/pkg/application/dto"
	"github.com/kaizen-line/inspector-dispatch/pkg/application/services/assignment"
	"github.com/kaizen-line/inspector-dispatch/pkg/application/services/dedup"
	"github.com/kaizen-line/inspector-dispatch/pkg/application/services/shortage"
	"github.com/kaizen-line/inspector-dispatch/pkg/config"
	"github.com/kaizen-line/inspector-dispatch/pkg/domain/entities"
	"github.com/kaizen-line/inspector-dispatch/pkg/domain/repositories"
	"github.com/kaizen-line/inspector-dispatch/pkg/infrastructure/events"
	"github.com/kaizen-line/inspector-dispatch/pkg/infrastructure/mastercache"
	"github.com/kaizen-line/inspector-dispatch/pkg/logging"
)

// Collaborators bundles every source interface the pipeline reads from,
// matching §6's external-interface list one-for-one.
type Collaborators struct {
	Shipments       repositories.ShipmentAggregateSource
	Inventory       repositories.InventoryLotSource
	Excluded        repositories.ExcludedProductSource
	Keywords        repositories.InspectionTargetKeywordSource
	CleaningFeed    repositories.CleaningFeedSource
	AdvanceRegistry repositories.AdvanceLotRegistrySource

	Products   repositories.ProductMasterSource
	Inspectors repositories.InspectorMasterSource
	Skills     repositories.SkillMatrixSource
	Vacations  repositories.VacationSource
	FixedPins  repositories.FixedPinSource
}

// Orchestrator runs one extraction run end to end.
type Orchestrator struct {
	Collaborators Collaborators
	Config        *config.Config
	Events        events.EventStore
	Logger        *logging.Logger

	// MasterCache and MasterCachePath wire the four master-input reads
	// (inspectors, skill matrix, vacations, fixed pins) through the
	// fingerprint-based MasterStore (spec.md §4.6) instead of reading
	// them fresh every run. MasterCache nil or MasterCachePath empty
	// disables caching and falls back to a plain parallel/sequential
	// load — the zero value matches every existing caller and test.
	MasterCache     *mastercache.Store
	MasterCachePath string
}

// NewOrchestrator builds an Orchestrator. logger may be nil, in which
// case logging.NewSilentLogger() is used (matching the CLI/test
// convention that nothing reaches stderr unless asked).
func NewOrchestrator(collaborators Collaborators, cfg *config.Config, eventStore events.EventStore, logger *logging.Logger) *Orchestrator {
	if logger == nil {
		logger = logging.NewSilentLogger()
	}
	return &Orchestrator{Collaborators: collaborators, Config: cfg, Events: eventStore, Logger: logger}
}

// RunExtraction executes one full pipeline pass for the date window
// [startDate, endDate], with today as the run date used for priority
// ordering and same-day-cleaning bookkeeping.
func (o *Orchestrator) RunExtraction(startDate, endDate string, today time.Time) (*dto.DispatchResult, error) {
	runID := uuid.NewString()
	log := o.Logger.WithCorrelationID(runID)

	_, inspectors, skills, vacations, fixedPins, err := o.loadMasterData(today)
	if err != nil {
		return nil, fmt.Errorf("orchestration: loading master data: %w", err)
	}

	resolver := shortage.NewResolver(
		o.Collaborators.Shipments,
		o.Collaborators.Inventory,
		o.Collaborators.Excluded,
		o.Collaborators.Keywords,
		o.Collaborators.CleaningFeed,
		o.Collaborators.AdvanceRegistry,
	)
	resolver.Events = o.Events

	shortageResult, err := resolver.Resolve(runID, startDate, endDate)
	if err != nil {
		return nil, fmt.Errorf("orchestration: shortage resolution: %w", err)
	}
	log.Info().Int("lots", len(shortageResult.Lots)).Msg("shortage resolution complete")

	deduper := dedup.NewDeduper(today)
	deduper.Events = o.Events
	dedupeResult := deduper.Dedupe(runID, shortageResult.Lots)
	log.Info().Int("in", len(shortageResult.Lots)).Int("out", len(dedupeResult.Lots)).Msg("dedup complete")

	registrations, err := o.Collaborators.AdvanceRegistry.AdvanceLotRegistrations()
	if err != nil {
		return nil, fmt.Errorf("orchestration: loading advance registrations: %w", err)
	}
	fixedPins = append(fixedPins, advanceRegistrationPins(registrations)...)

	products, err := o.productsForLots(dedupeResult.Lots)
	if err != nil {
		return nil, fmt.Errorf("orchestration: loading product process times: %w", err)
	}

	engine := assignment.NewEngine(o.Config)
	engine.Events = o.Events

	result := engine.Run(runID, assignment.Inputs{
		Lots:       dedupeResult.Lots,
		Products:   products,
		Inspectors: inspectors,
		Skills:     skills,
		Vacations:  vacations,
		FixedPins:  fixedPins,
		Today:      today,
	})

	result.NonInspectionLots = shortageResult.NonInspectionLots
	result.Diagnostics = append(result.Diagnostics, shortageResult.Diagnostics...)
	result.Diagnostics = append(result.Diagnostics, dedupeResult.Diagnostics...)

	log.Info().Int("rows", len(result.Rows)).Msg("run complete")
	return result, nil
}

// advanceRegistrationPins converts a registration's optional
// fixed-inspector set into FixedPin entries, the mandatory-inclusion
// mechanism the AssignmentEngine already understands (spec.md §4.1's
// "optional fixed-inspector set" folds into §4.4's pin rule rather than
// inventing a second mandatory-inclusion path).
func advanceRegistrationPins(registrations []repositories.AdvanceLotRegistration) []entities.FixedPin {
	var pins []entities.FixedPin
	for _, reg := range registrations {
		if len(reg.FixedInspectorIDs) == 0 {
			continue
		}
		pins = append(pins, entities.FixedPin{
			ProductNumber: reg.ProductNumber,
			ProcessName:   "",
			InspectorIDs:  reg.FixedInspectorIDs,
		})
	}
	return pins
}
