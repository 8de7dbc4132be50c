// Package shortage implements the Shortage-and-Lot Resolver (spec.md
// §4.1): it turns shipment shortages, the cleaning-request feed, and
// registered advance-inspection entries into the working set of Lots
// the rest of the pipeline operates on.
package shortage

import (
	"fmt"
	"sort"
	"strings"

	"github.com/kaizen-line/inspector-dispatch/pkg/application/dto"
	"github.com/kaizen-line/inspector-dispatch/pkg/domain/entities"
	"github.com/kaizen-line/inspector-dispatch/pkg/domain/repositories"
	"github.com/kaizen-line/inspector-dispatch/pkg/infrastructure/events"
)

// excludedAdvanceProcesses names process-name substrings that disqualify
// an inventory lot from advance-inspection registration ("excluding
// completion/packaging processes").
var excludedAdvanceProcesses = []string{"completion", "packaging"}

// Resolver wires the six collaborator feeds named in spec.md §4.1.
// Reading a relational store or a master file is explicitly out of
// scope (spec.md §1 Non-goals); callers hand over already-parsed frames
// through these interfaces.
type Resolver struct {
	Shipments       repositories.ShipmentAggregateSource
	Inventory       repositories.InventoryLotSource
	Excluded        repositories.ExcludedProductSource
	Keywords        repositories.InspectionTargetKeywordSource
	CleaningFeed    repositories.CleaningFeedSource
	AdvanceRegistry repositories.AdvanceLotRegistrySource

	// Events receives progress notifications; nil disables publishing.
	Events events.EventStore
}

// NewResolver builds a Resolver from its six collaborator feeds.
func NewResolver(
	shipments repositories.ShipmentAggregateSource,
	inventory repositories.InventoryLotSource,
	excluded repositories.ExcludedProductSource,
	keywords repositories.InspectionTargetKeywordSource,
	cleaningFeed repositories.CleaningFeedSource,
	advanceRegistry repositories.AdvanceLotRegistrySource,
) *Resolver {
	return &Resolver{
		Shipments:       shipments,
		Inventory:       inventory,
		Excluded:        excluded,
		Keywords:        keywords,
		CleaningFeed:    cleaningFeed,
		AdvanceRegistry: advanceRegistry,
	}
}

// Resolve runs the full §4.1 algorithm for the run date window
// [startDate, endDate], both in the collaborator's native date string
// format (passed through unexamined).
func (r *Resolver) Resolve(runID, startDate, endDate string) (*dto.ShortageResult, error) {
	excludedProducts, err := r.Excluded.ExcludedProducts()
	if err != nil {
		return nil, fmt.Errorf("shortage: loading excluded products: %w", err)
	}
	keywords, err := r.Keywords.InspectionTargetKeywords()
	if err != nil {
		return nil, fmt.Errorf("shortage: loading inspection-target keywords: %w", err)
	}

	var diagnostics []dto.Diagnostic

	normalLots, nonInspection, normalDiags, err := r.extractShortageLots(runID, startDate, endDate, excludedProducts, keywords)
	if err != nil {
		return nil, fmt.Errorf("shortage: extracting shortage lots: %w", err)
	}
	diagnostics = append(diagnostics, normalDiags...)

	advanceLots, advanceDiags, err := r.extractAdvanceLots(runID, excludedProducts)
	if err != nil {
		return nil, fmt.Errorf("shortage: extracting advance lots: %w", err)
	}
	diagnostics = append(diagnostics, advanceDiags...)

	cleaningLots, cleaningDiags, err := r.extractCleaningLots(runID, excludedProducts)
	if err != nil {
		return nil, fmt.Errorf("shortage: extracting cleaning lots: %w", err)
	}
	diagnostics = append(diagnostics, cleaningDiags...)

	merged := mergeLots(normalLots, advanceLots, cleaningLots)

	r.publish(events.NewShortageResolvedEvent(runID, len(merged), len(nonInspection)), runID)

	return &dto.ShortageResult{
		Lots:              merged,
		NonInspectionLots: nonInspection,
		Diagnostics:       diagnostics,
	}, nil
}

// extractShortageLots implements §4.1 step 1: for each product with
// negative shortage, walk its inventory lots oldest-first, keeping lots
// whose prior cumulative quantity has not yet covered the shortage.
func (r *Resolver) extractShortageLots(
	runID, startDate, endDate string,
	excludedProducts map[string]bool,
	keywords []string,
) ([]entities.Lot, []dto.NonInspectionLot, []dto.Diagnostic, error) {
	rows, err := r.Shipments.ShipmentAggregates(startDate, endDate)
	if err != nil {
		return nil, nil, nil, err
	}

	var lots []entities.Lot
	var nonInspection []dto.NonInspectionLot
	var diagnostics []dto.Diagnostic

	for _, row := range rows {
		if row.ShortageQuantity >= 0 {
			continue
		}
		if excludedProducts[row.ProductNumber] {
			continue
		}

		required := -row.ShortageQuantity
		invRows, err := r.Inventory.InventoryLotsForProduct(row.ProductNumber)
		if err != nil {
			return nil, nil, nil, err
		}
		sort.SliceStable(invRows, func(i, j int) bool {
			return instructionDateLess(invRows[i].InstructionDate, invRows[j].InstructionDate)
		})

		var priorCum int64
		for _, inv := range invRows {
			if priorCum >= required {
				break
			}
			shortageAfter := row.ShortageQuantity + priorCum
			diagnostics = append(diagnostics, dto.Diagnostic{
				RunID:   runID,
				Phase:   "shortage.extraction",
				LotKey:  inv.ProductionLotID,
				Message: fmt.Sprintf("shortage_after=%d for product %s", shortageAfter, row.ProductNumber),
			})

			lot := entities.Lot{
				ProductionLotID:      inv.ProductionLotID,
				ProductNumber:        inv.ProductNumber,
				ProductName:          firstNonEmpty(inv.ProductName, row.ProductName),
				Customer:             firstNonEmpty(inv.Customer, row.Customer),
				ShippingDate:         row.ShippingDate,
				LotQuantity:          inv.LotQuantity,
				InstructionDate:      inv.InstructionDate,
				Machine:              inv.Machine,
				CurrentProcessNumber: inv.CurrentProcessNumber,
				CurrentProcessName:   inv.CurrentProcessName,
				SecondaryProcess:     inv.SecondaryProcess,
				Provenance:           entities.Normal,
			}

			if matchesKeywords(lot.CurrentProcessName, keywords) {
				lots = append(lots, lot)
			} else {
				nonInspection = append(nonInspection, dto.NonInspectionLot{
					ShippingDate:       lot.ShippingDate,
					ProductNumber:      lot.ProductNumber,
					ProductionLotID:    lot.ProductionLotID,
					InstructionDate:    lot.InstructionDate,
					CurrentProcessName: lot.CurrentProcessName,
				})
			}

			priorCum += inv.LotQuantity
		}
	}

	sort.Slice(nonInspection, func(i, j int) bool {
		a, b := nonInspection[i], nonInspection[j]
		if a.ProductNumber != b.ProductNumber {
			return a.ProductNumber < b.ProductNumber
		}
		return instructionDateLess(a.InstructionDate, b.InstructionDate)
	})

	return lots, nonInspection, diagnostics, nil
}

// extractAdvanceLots implements §4.1 step 2.
func (r *Resolver) extractAdvanceLots(runID string, excludedProducts map[string]bool) ([]entities.Lot, []dto.Diagnostic, error) {
	registrations, err := r.AdvanceRegistry.AdvanceLotRegistrations()
	if err != nil {
		return nil, nil, err
	}

	var lots []entities.Lot
	var diagnostics []dto.Diagnostic

	for _, reg := range registrations {
		if excludedProducts[reg.ProductNumber] {
			continue
		}

		invRows, err := r.Inventory.InventoryLotsForProduct(reg.ProductNumber)
		if err != nil {
			return nil, nil, err
		}

		var candidates []repositories.InventoryLotRow
		for _, inv := range invRows {
			if isCompletionOrPackaging(inv.CurrentProcessName) {
				continue
			}

			columns := []string{inv.CurrentProcessName, inv.SecondaryProcess}
			if reg.ProcessFilter != "" {
				if allBlank(columns) {
					continue
				}
				if !matchesProcessFilter(columns, reg.ProcessFilter) {
					continue
				}
			}
			candidates = append(candidates, inv)
		}

		sort.SliceStable(candidates, func(i, j int) bool {
			return instructionDateLess(candidates[i].InstructionDate, candidates[j].InstructionDate)
		})

		limit := reg.MaxLotsPerDay
		if limit < 0 {
			limit = 0
		}
		if limit < len(candidates) {
			candidates = candidates[:limit]
		}

		for _, inv := range candidates {
			lots = append(lots, entities.Lot{
				ProductionLotID:      inv.ProductionLotID,
				ProductNumber:        inv.ProductNumber,
				ProductName:          inv.ProductName,
				Customer:             inv.Customer,
				ShippingDate:         entities.AdvanceInspectionShippingDate(),
				LotQuantity:          inv.LotQuantity,
				InstructionDate:      inv.InstructionDate,
				Machine:              inv.Machine,
				CurrentProcessNumber: inv.CurrentProcessNumber,
				CurrentProcessName:   inv.CurrentProcessName,
				SecondaryProcess:     inv.SecondaryProcess,
				Provenance:           entities.Advance,
			})
		}

		diagnostics = append(diagnostics, dto.Diagnostic{
			RunID:   runID,
			Phase:   "shortage.advance",
			LotKey:  reg.ProductNumber,
			Message: fmt.Sprintf("registered %d advance lots (cap %d)", len(candidates), reg.MaxLotsPerDay),
		})
	}

	return lots, diagnostics, nil
}

// extractCleaningLots implements §4.1 step 3.
func (r *Resolver) extractCleaningLots(runID string, excludedProducts map[string]bool) ([]entities.Lot, []dto.Diagnostic, error) {
	rows, err := r.CleaningFeed.CleaningRequests()
	if err != nil {
		return nil, nil, err
	}

	var lots []entities.Lot
	for _, row := range rows {
		if excludedProducts[row.ProductNumber] {
			continue
		}
		lots = append(lots, entities.Lot{
			ProductionLotID:        row.ProductionLotID,
			ProductNumber:          row.ProductNumber,
			ProductName:            row.ProductName,
			Customer:               row.Customer,
			ShippingDate:           entities.SameDayCleaningShippingDate(),
			LotQuantity:            row.Quantity,
			InstructionDate:        row.InstructionDate,
			Machine:                row.Machine,
			CurrentProcessNumber:   row.CurrentProcessNumber,
			CurrentProcessName:     row.CurrentProcessName,
			SecondaryProcess:       row.SecondaryProcess,
			CleaningInstructionRow: row.CleaningInstructionRow,
			Provenance:             entities.Cleaning,
		})
	}

	var diagnostics []dto.Diagnostic
	if len(lots) > 0 {
		diagnostics = append(diagnostics, dto.Diagnostic{
			RunID:   runID,
			Phase:   "shortage.cleaning",
			Message: fmt.Sprintf("ingested %d cleaning-feed lots", len(lots)),
		})
	}

	return lots, diagnostics, nil
}

// mergeLots implements §4.1 step 4: union NORMAL, ADVANCE, and CLEANING,
// dropping CLEANING rows that duplicate an existing NORMAL lot.
func mergeLots(normal, advance, cleaning []entities.Lot) []entities.Lot {
	byProductionLotID := make(map[string]bool, len(normal))
	byCleaningInstructionRow := make(map[string]bool)
	for _, l := range normal {
		if l.ProductionLotID != "" {
			byProductionLotID[l.ProductionLotID] = true
		}
		if l.CleaningInstructionRow != "" {
			byCleaningInstructionRow[l.CleaningInstructionRow] = true
		}
	}
	for _, l := range advance {
		if l.ProductionLotID != "" {
			byProductionLotID[l.ProductionLotID] = true
		}
		if l.CleaningInstructionRow != "" {
			byCleaningInstructionRow[l.CleaningInstructionRow] = true
		}
	}

	merged := make([]entities.Lot, 0, len(normal)+len(advance)+len(cleaning))
	merged = append(merged, normal...)
	merged = append(merged, advance...)

	for _, l := range cleaning {
		if l.ProductionLotID != "" && byProductionLotID[l.ProductionLotID] {
			continue
		}
		if l.ProductionLotID == "" && l.CleaningInstructionRow != "" && byCleaningInstructionRow[l.CleaningInstructionRow] {
			continue
		}
		merged = append(merged, l)
	}

	return merged
}

func (r *Resolver) publish(event events.Event, runID string) {
	if r.Events == nil {
		return
	}
	_ = r.Events.AppendEvent(runID, event)
}

func matchesKeywords(processName string, keywords []string) bool {
	if len(keywords) == 0 {
		return true
	}
	lower := strings.ToLower(processName)
	for _, kw := range keywords {
		if kw == "" {
			continue
		}
		if strings.Contains(lower, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}

func isCompletionOrPackaging(processName string) bool {
	lower := strings.ToLower(processName)
	for _, kw := range excludedAdvanceProcesses {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

func allBlank(columns []string) bool {
	for _, c := range columns {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func matchesProcessFilter(columns []string, filter string) bool {
	parts := splitProcessFilter(filter)
	for _, col := range columns {
		lower := strings.ToLower(col)
		for _, p := range parts {
			if p == "" {
				continue
			}
			if strings.Contains(lower, strings.ToLower(p)) {
				return true
			}
		}
	}
	return false
}

// splitProcessFilter splits on both the ASCII and full-width slash, the
// two separators the registration's process filter uses.
func splitProcessFilter(filter string) []string {
	normalized := strings.ReplaceAll(filter, "／", "/")
	parts := strings.Split(normalized, "/")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
