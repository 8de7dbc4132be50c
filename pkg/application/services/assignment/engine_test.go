package assignment

import (
	"testing"
	"time"

	"github.com/kaizen-line/inspector-dispatch/pkg/config"
	"github.com/kaizen-line/inspector-dispatch/pkg/domain/entities"
)

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		t.Fatalf("bad date %q: %v", s, err)
	}
	return d
}

func baseInspector(id string, shiftHours float64) entities.Inspector {
	return entities.Inspector{
		InspectorID: id,
		Name:        id,
		ShiftStart:  8 * time.Hour,
		ShiftEnd:    time.Duration(8+shiftHours) * time.Hour,
	}
}

func simpleInputs(today time.Time) Inputs {
	return Inputs{
		Products: map[string]entities.Product{
			"P1": {ProductNumber: "P1", ProcessTimes: map[string]float64{"10": 3600}}, // 1h/unit
		},
		Inspectors: []entities.Inspector{
			baseInspector("A", 8),
			baseInspector("B", 8),
		},
		Skills: entities.NewSkillMatrix([]entities.SkillCell{
			{ProductNumber: "P1", ProcessNumber: "10", InspectorID: "A", Level: entities.SkillLevel2},
			{ProductNumber: "P1", ProcessNumber: "10", InspectorID: "B", Level: entities.SkillLevel1},
		}),
		Today: today,
	}
}

func lot(id, product, process string, qty int64, sd entities.ShippingDate) entities.Lot {
	return entities.Lot{
		ProductionLotID:      id,
		ProductNumber:        product,
		CurrentProcessNumber: process,
		CurrentProcessName:   process,
		LotQuantity:          qty,
		ShippingDate:         sd,
	}
}

// Scenario A: Simple split. A lot whose inspection_time exceeds
// h_required splits into a multi-inspector crew.
func TestEngine_SimpleSplit(t *testing.T) {
	today := mustDate(t, "2026-07-31")
	in := simpleInputs(today)
	in.Lots = []entities.Lot{
		lot("L1", "P1", "10", 4, entities.NewDatedShippingDate(today)), // 4h inspection time > 3h h_required
	}
	cfg := config.NewDefault()
	eng := NewEngine(cfg)
	result := eng.Run("run-a", in)

	if len(result.Rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(result.Rows))
	}
	row := result.Rows[0]
	if row.Status != entities.Assigned {
		t.Fatalf("expected Assigned, got %s", row.Status)
	}
	if row.CrewSize() < 2 {
		t.Fatalf("expected split crew, got size %d", row.CrewSize())
	}
}

// Boundary: inspection_time exactly h_required keeps crew_size 1.
func TestEngine_ExactlyHRequiredStaysSoloCrew(t *testing.T) {
	today := mustDate(t, "2026-07-31")
	in := simpleInputs(today)
	in.Lots = []entities.Lot{
		lot("L1", "P1", "10", 3, entities.NewDatedShippingDate(today)), // exactly 3h
	}
	eng := NewEngine(config.NewDefault())
	result := eng.Run("run-boundary", in)
	row := result.Rows[0]
	if row.RequiredCrew != 1 {
		t.Fatalf("expected required crew 1 at boundary, got %d", row.RequiredCrew)
	}
}

// Scenario B: Same-part cap. A second lot on the same product for an
// inspector already near H_product is routed to someone else or
// unassigned, never pushed over the cap.
func TestEngine_SamePartCapNeverExceeded(t *testing.T) {
	today := mustDate(t, "2026-07-31")
	in := simpleInputs(today)
	in.Lots = []entities.Lot{
		lot("L1", "P1", "10", 3, entities.NewDatedShippingDate(today)),
		lot("L2", "P1", "10", 3, entities.NewDatedShippingDate(today)),
		lot("L3", "P1", "10", 3, entities.NewDatedShippingDate(today)),
	}
	cfg := config.NewDefault()
	eng := NewEngine(cfg)
	result := eng.Run("run-b", in)

	state := recomputeDailyState(result.Rows)
	for _, id := range []string{"A", "B"} {
		if state.ProductHoursFor(id, "P1").GreaterThan(entities.NewHoursFromFloat(cfg.HProduct)) {
			t.Fatalf("inspector %s exceeded H_product cap", id)
		}
	}
}

// Empty pool: an unfixable row (no candidate can ever serve the
// product) ends up UnassignedNoCandidate, never silently dropped.
func TestEngine_UnfixableRowMarkedNoCandidate(t *testing.T) {
	today := mustDate(t, "2026-07-31")
	in := simpleInputs(today)
	in.Lots = []entities.Lot{
		lot("L1", "UNKNOWN", "10", 5, entities.NewDatedShippingDate(today)),
	}
	eng := NewEngine(config.NewDefault())
	result := eng.Run("run-e", in)
	if len(result.Rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(result.Rows))
	}
	if result.Rows[0].Status != entities.UnassignedNoCandidate {
		t.Fatalf("expected UnassignedNoCandidate, got %s", result.Rows[0].Status)
	}
}

// Scenario E (spec.md §4.4 Degenerate cases): a lot needs crew_size=2
// but the post-filter candidate pool holds only one eligible inspector.
// The row must be left UnassignedCapacity with no slots rather than
// dispatched short-staffed.
func TestEngine_PartialPoolMarkedUnassignedCapacity(t *testing.T) {
	today := mustDate(t, "2026-07-31")
	in := simpleInputs(today)
	in.Inspectors = []entities.Inspector{baseInspector("A", 8)}
	in.Skills = entities.NewSkillMatrix([]entities.SkillCell{
		{ProductNumber: "P1", ProcessNumber: "10", InspectorID: "A", Level: entities.SkillLevel2},
	})
	in.Lots = []entities.Lot{
		lot("L1", "P1", "10", 4, entities.NewDatedShippingDate(today)), // 4h inspection time, requires crew_size 2
	}
	eng := NewEngine(config.NewDefault())
	result := eng.Run("run-partialpool", in)
	if len(result.Rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(result.Rows))
	}
	row := result.Rows[0]
	if row.RequiredCrew != 2 {
		t.Fatalf("expected required crew 2, got %d", row.RequiredCrew)
	}
	if row.Status != entities.UnassignedCapacity {
		t.Fatalf("expected UnassignedCapacity, got %s", row.Status)
	}
	if row.CrewSize() != 0 {
		t.Fatalf("expected no slots filled, got crew size %d", row.CrewSize())
	}
	if !row.DividedTime.IsZero() {
		t.Fatalf("expected divided_time zero, got %s", row.DividedTime)
	}
}

// Invariant: lot_quantity == 0 rows are preserved but never sized or
// assigned.
func TestEngine_ZeroQuantityRowPreservedUnassigned(t *testing.T) {
	today := mustDate(t, "2026-07-31")
	in := simpleInputs(today)
	in.Lots = []entities.Lot{
		lot("L1", "P1", "10", 0, entities.NewDatedShippingDate(today)),
	}
	eng := NewEngine(config.NewDefault())
	result := eng.Run("run-zero", in)
	if len(result.Rows) != 1 {
		t.Fatalf("expected row kept, got %d", len(result.Rows))
	}
	if result.Rows[0].Status != entities.UnassignedZeroQuantity {
		t.Fatalf("expected UnassignedZeroQuantity, got %s", result.Rows[0].Status)
	}
	if result.Rows[0].CrewSize() != 0 {
		t.Fatalf("zero-quantity row must never carry a crew")
	}
}

// Invariant: an inspector with a non-positive derived daily cap never
// appears in any row's slots.
func TestEngine_ZeroCapInspectorNeverAssigned(t *testing.T) {
	today := mustDate(t, "2026-07-31")
	in := simpleInputs(today)
	in.Inspectors = append(in.Inspectors, entities.Inspector{InspectorID: "Z", ShiftStart: 8 * time.Hour, ShiftEnd: 8 * time.Hour})
	in.Lots = []entities.Lot{
		lot("L1", "P1", "10", 1, entities.NewDatedShippingDate(today)),
	}
	eng := NewEngine(config.NewDefault())
	result := eng.Run("run-zerocap", in)
	for _, row := range result.Rows {
		if row.HasMember("Z") {
			t.Fatalf("zero-cap inspector Z must never be assigned")
		}
	}
}

// Invariant: vacationed inspectors are excluded from assignment that
// day.
func TestEngine_VacationedInspectorExcluded(t *testing.T) {
	today := mustDate(t, "2026-07-31")
	in := simpleInputs(today)
	in.Vacations = map[string]string{"A": "PTO"}
	in.Lots = []entities.Lot{
		lot("L1", "P1", "10", 1, entities.NewDatedShippingDate(today)),
	}
	eng := NewEngine(config.NewDefault())
	result := eng.Run("run-vac", in)
	for _, row := range result.Rows {
		if row.HasMember("A") {
			t.Fatalf("vacationed inspector A must not be assigned")
		}
	}
}

// Mandatory fixed-pin inclusion: a pinned inspector who passes filters
// must occupy a slot even when a lower-loaded candidate exists.
func TestEngine_FixedPinIncludedWhenEligible(t *testing.T) {
	today := mustDate(t, "2026-07-31")
	in := simpleInputs(today)
	in.FixedPins = []entities.FixedPin{
		{ProductNumber: "P1", ProcessName: "", InspectorIDs: []string{"B"}},
	}
	in.Lots = []entities.Lot{
		lot("L1", "P1", "10", 1, entities.NewDatedShippingDate(today)),
	}
	eng := NewEngine(config.NewDefault())
	result := eng.Run("run-pin", in)
	if !result.Rows[0].HasMember("B") {
		t.Fatalf("expected pinned inspector B to hold a slot")
	}
}

// Dropped pinned inspectors are recorded, not silently ignored.
func TestEngine_DroppedPinRecordedWhenVacationed(t *testing.T) {
	today := mustDate(t, "2026-07-31")
	in := simpleInputs(today)
	in.Vacations = map[string]string{"B": "PTO"}
	in.FixedPins = []entities.FixedPin{
		{ProductNumber: "P1", ProcessName: "", InspectorIDs: []string{"B"}},
	}
	in.Lots = []entities.Lot{
		lot("L1", "P1", "10", 1, entities.NewDatedShippingDate(today)),
	}
	eng := NewEngine(config.NewDefault())
	result := eng.Run("run-pindrop", in)
	row := result.Rows[0]
	found := false
	for _, id := range row.DroppedPinnedInspectors {
		if id == "B" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected B recorded as a dropped pinned inspector, got %v", row.DroppedPinnedInspectors)
	}
	if row.HasMember("B") {
		t.Fatalf("vacationed pin must not occupy a slot")
	}
}

// Round-trip law: recomputing DailyState from a finished run's rows
// twice in a row is idempotent.
func TestRecomputeDailyState_Idempotent(t *testing.T) {
	today := mustDate(t, "2026-07-31")
	in := simpleInputs(today)
	in.Lots = []entities.Lot{
		lot("L1", "P1", "10", 2, entities.NewDatedShippingDate(today)),
		lot("L2", "P1", "10", 2, entities.NewDatedShippingDate(today)),
	}
	eng := NewEngine(config.NewDefault())
	result := eng.Run("run-idem", in)

	s1 := recomputeDailyState(result.Rows)
	s2 := recomputeDailyState(result.Rows)
	for _, id := range []string{"A", "B"} {
		if !s1.Hours(id).Decimal().Equal(s2.Hours(id).Decimal()) {
			t.Fatalf("recompute not idempotent for %s: %v vs %v", id, s1.Hours(id), s2.Hours(id))
		}
	}
}

// Crew-size pivot just above H_required produces a multi-person crew.
func TestRequiredCrewSize_JustAboveBoundary(t *testing.T) {
	hReq := 3.0
	inspectionTime := entities.NewHoursFromFloat(3.01)
	size := requiredCrewSize(inspectionTime, hReq)
	if size != 2 {
		t.Fatalf("expected crew size 2 just above H_required, got %d", size)
	}
}

func TestRequiredCrewSize_AtBoundary(t *testing.T) {
	hReq := 3.0
	inspectionTime := entities.NewHoursFromFloat(3.0)
	size := requiredCrewSize(inspectionTime, hReq)
	if size != 1 {
		t.Fatalf("expected crew size 1 at H_required boundary, got %d", size)
	}
}
