package shortage

import (
	"testing"
	"time"

	"github.com/kaizen-line/inspector-dispatch/pkg/domain/entities"
	"github.com/kaizen-line/inspector-dispatch/pkg/domain/repositories"
)

type fakeShipments struct {
	rows []repositories.ShipmentAggregateRow
}

func (f *fakeShipments) ShipmentAggregates(startDate, endDate string) ([]repositories.ShipmentAggregateRow, error) {
	return f.rows, nil
}

type fakeInventory struct {
	byProduct map[string][]repositories.InventoryLotRow
}

func (f *fakeInventory) InventoryLotsForProduct(productNumber string) ([]repositories.InventoryLotRow, error) {
	return f.byProduct[productNumber], nil
}

type fakeExcluded struct {
	products map[string]bool
}

func (f *fakeExcluded) ExcludedProducts() (map[string]bool, error) {
	return f.products, nil
}

type fakeKeywords struct {
	keywords []string
}

func (f *fakeKeywords) InspectionTargetKeywords() ([]string, error) {
	return f.keywords, nil
}

type fakeCleaningFeed struct {
	rows []repositories.CleaningFeedRow
}

func (f *fakeCleaningFeed) CleaningRequests() ([]repositories.CleaningFeedRow, error) {
	return f.rows, nil
}

type fakeAdvanceRegistry struct {
	regs []repositories.AdvanceLotRegistration
}

func (f *fakeAdvanceRegistry) AdvanceLotRegistrations() ([]repositories.AdvanceLotRegistration, error) {
	return f.regs, nil
}

func newTestResolver() (*Resolver, *fakeShipments, *fakeInventory) {
	shipments := &fakeShipments{}
	inventory := &fakeInventory{byProduct: make(map[string][]repositories.InventoryLotRow)}
	r := NewResolver(
		shipments,
		inventory,
		&fakeExcluded{products: map[string]bool{}},
		&fakeKeywords{},
		&fakeCleaningFeed{},
		&fakeAdvanceRegistry{},
	)
	return r, shipments, inventory
}

func TestExtractShortageLots_KeepsOldestLotsUntilCovered(t *testing.T) {
	r, shipments, inventory := newTestResolver()
	shipments.rows = []repositories.ShipmentAggregateRow{
		{ProductNumber: "P1", ShortageQuantity: -150, ShippingDate: entities.NewDatedShippingDate(time.Date(2026, 8, 3, 0, 0, 0, 0, time.UTC))},
	}
	inventory.byProduct["P1"] = []repositories.InventoryLotRow{
		{ProductionLotID: "L3", ProductNumber: "P1", LotQuantity: 50, InstructionDate: "2026-08-03", CurrentProcessName: "visual inspection"},
		{ProductionLotID: "L1", ProductNumber: "P1", LotQuantity: 100, InstructionDate: "2026-08-01", CurrentProcessName: "visual inspection"},
		{ProductionLotID: "L2", ProductNumber: "P1", LotQuantity: 100, InstructionDate: "2026-08-02", CurrentProcessName: "visual inspection"},
	}

	result, err := r.Resolve("run-1", "2026-08-01", "2026-08-03")
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}

	// required=150: L1 (prior=0<150, keep), L2 (prior=100<150, keep),
	// L3 (prior=200>=150, stop).
	if len(result.Lots) != 2 {
		t.Fatalf("expected 2 lots, got %d: %+v", len(result.Lots), result.Lots)
	}
	if result.Lots[0].ProductionLotID != "L1" || result.Lots[1].ProductionLotID != "L2" {
		t.Fatalf("unexpected lot order: %+v", result.Lots)
	}
}

func TestExtractShortageLots_NonKeywordMatchGoesToSideChannel(t *testing.T) {
	r, shipments, inventory := newTestResolver()
	r.Keywords = &fakeKeywords{keywords: []string{"inspection"}}
	shipments.rows = []repositories.ShipmentAggregateRow{
		{ProductNumber: "P1", ShortageQuantity: -10},
	}
	inventory.byProduct["P1"] = []repositories.InventoryLotRow{
		{ProductionLotID: "L1", ProductNumber: "P1", LotQuantity: 10, InstructionDate: "2026-08-01", CurrentProcessName: "packaging"},
	}

	result, err := r.Resolve("run-1", "2026-08-01", "2026-08-01")
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if len(result.Lots) != 0 {
		t.Fatalf("expected no assignable lots, got %d", len(result.Lots))
	}
	if len(result.NonInspectionLots) != 1 {
		t.Fatalf("expected 1 non-inspection lot, got %d", len(result.NonInspectionLots))
	}
}

func TestExtractShortageLots_ExcludedProductDropped(t *testing.T) {
	r, shipments, inventory := newTestResolver()
	r.Excluded = &fakeExcluded{products: map[string]bool{"P1": true}}
	shipments.rows = []repositories.ShipmentAggregateRow{
		{ProductNumber: "P1", ShortageQuantity: -10},
	}
	inventory.byProduct["P1"] = []repositories.InventoryLotRow{
		{ProductionLotID: "L1", ProductNumber: "P1", LotQuantity: 10, InstructionDate: "2026-08-01", CurrentProcessName: "inspection"},
	}

	result, err := r.Resolve("run-1", "2026-08-01", "2026-08-01")
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if len(result.Lots) != 0 {
		t.Fatalf("expected excluded product to be dropped, got %d lots", len(result.Lots))
	}
}

func TestMergeLots_CleaningDuplicateOfNormalIsDropped(t *testing.T) {
	normal := []entities.Lot{{ProductionLotID: "L1", Provenance: entities.Normal}}
	cleaning := []entities.Lot{{ProductionLotID: "L1", Provenance: entities.Cleaning}}

	merged := mergeLots(normal, nil, cleaning)
	if len(merged) != 1 {
		t.Fatalf("expected the cleaning duplicate to be dropped, got %d lots", len(merged))
	}
	if merged[0].Provenance != entities.Normal {
		t.Fatalf("expected the surviving lot to stay NORMAL, got %v", merged[0].Provenance)
	}
}

func TestMergeLots_CleaningWithoutLotIDDedupesByInstructionRow(t *testing.T) {
	normal := []entities.Lot{{CleaningInstructionRow: "ROW-9", Provenance: entities.Normal}}
	cleaning := []entities.Lot{{CleaningInstructionRow: "ROW-9", Provenance: entities.Cleaning}}

	merged := mergeLots(normal, nil, cleaning)
	if len(merged) != 1 {
		t.Fatalf("expected dedup by cleaning_instruction_row, got %d lots", len(merged))
	}
}

func TestExtractAdvanceLots_RespectsMaxLotsPerDay(t *testing.T) {
	r, _, inventory := newTestResolver()
	r.AdvanceRegistry = &fakeAdvanceRegistry{regs: []repositories.AdvanceLotRegistration{
		{ProductNumber: "P2", MaxLotsPerDay: 1},
	}}
	inventory.byProduct["P2"] = []repositories.InventoryLotRow{
		{ProductionLotID: "A1", ProductNumber: "P2", InstructionDate: "2026-08-01", CurrentProcessName: "inspection"},
		{ProductionLotID: "A2", ProductNumber: "P2", InstructionDate: "2026-08-02", CurrentProcessName: "inspection"},
	}

	result, err := r.Resolve("run-1", "2026-08-01", "2026-08-01")
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if len(result.Lots) != 1 {
		t.Fatalf("expected exactly 1 advance lot (cap), got %d", len(result.Lots))
	}
	if result.Lots[0].ProductionLotID != "A1" {
		t.Fatalf("expected the oldest instruction_date lot to win, got %s", result.Lots[0].ProductionLotID)
	}
	if result.Lots[0].Provenance != entities.Advance {
		t.Fatalf("expected ADVANCE provenance, got %v", result.Lots[0].Provenance)
	}
}

func TestExtractAdvanceLots_ExcludesCompletionAndPackagingProcesses(t *testing.T) {
	r, _, inventory := newTestResolver()
	r.AdvanceRegistry = &fakeAdvanceRegistry{regs: []repositories.AdvanceLotRegistration{
		{ProductNumber: "P3", MaxLotsPerDay: 5},
	}}
	inventory.byProduct["P3"] = []repositories.InventoryLotRow{
		{ProductionLotID: "A1", ProductNumber: "P3", InstructionDate: "2026-08-01", CurrentProcessName: "final packaging"},
		{ProductionLotID: "A2", ProductNumber: "P3", InstructionDate: "2026-08-02", CurrentProcessName: "visual inspection"},
	}

	result, err := r.Resolve("run-1", "2026-08-01", "2026-08-01")
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if len(result.Lots) != 1 || result.Lots[0].ProductionLotID != "A2" {
		t.Fatalf("expected only the non-packaging lot, got %+v", result.Lots)
	}
}
