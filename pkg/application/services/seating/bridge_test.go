package seating

import (
	"testing"
	"time"

	"github.com/kaizen-line/inspector-dispatch/pkg/domain/entities"
)

func sampleRow() *entities.AssignmentRow {
	shipDate, _ := time.Parse("2006-01-02", "2026-07-31")
	row := &entities.AssignmentRow{
		Lot: entities.Lot{
			ProductionLotID: "L1",
			ProductNumber:   "P1",
			ShippingDate:    entities.NewDatedShippingDate(shipDate),
		},
		InspectionTime: entities.NewHoursFromFloat(2.0),
		RequiredCrew:   1,
		DividedTime:    entities.NewHoursFromFloat(2.0),
		Status:         entities.Assigned,
	}
	row.SetMembers([]string{"A"})
	return row
}

// TestPublish_NoEditRoundTrip verifies the §8 round-trip law: publish
// then re-ingest with no edits leaves the assignment matrix unchanged.
func TestPublish_NoEditRoundTrip(t *testing.T) {
	rows := []*entities.AssignmentRow{sampleRow()}
	inspectors := []entities.Inspector{{InspectorID: "A", Name: "Alice"}}

	bridge := NewBridge()
	chart := bridge.Publish(rows, inspectors)

	data, err := bridge.Marshal(chart)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	reParsed, err := bridge.Unmarshal(data)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	before := rows[0].Members()
	bridge.ReIngest(rows, reParsed)
	after := rows[0].Members()

	if len(before) != len(after) || before[0] != after[0] {
		t.Fatalf("no-edit round trip changed members: before=%v after=%v", before, after)
	}
	if rows[0].CrewSize() != 1 {
		t.Fatalf("expected crew size 1 after round trip, got %d", rows[0].CrewSize())
	}
}

// TestPublish_UnassignedLotsSortedByShippingProductInstruction verifies
// spec.md §6's output contract: the unassigned_lots side list is
// ordered by (shipping_date, product_number, instruction_date).
func TestPublish_UnassignedLotsSortedByShippingProductInstruction(t *testing.T) {
	later, _ := time.Parse("2006-01-02", "2026-08-05")
	earlier, _ := time.Parse("2006-01-02", "2026-07-31")

	row := func(id, product, instruction string, shipDate time.Time) *entities.AssignmentRow {
		return &entities.AssignmentRow{
			Lot: entities.Lot{
				ProductionLotID: id,
				ProductNumber:   product,
				InstructionDate: instruction,
				ShippingDate:    entities.NewDatedShippingDate(shipDate),
			},
			InspectionTime: entities.NewHoursFromFloat(1.0),
			Status:         entities.UnassignedNoCandidate,
		}
	}

	rows := []*entities.AssignmentRow{
		row("L-later", "P2", "2026-07-20", later),
		row("L-earlyB", "P2", "2026-07-10", earlier),
		row("L-earlyA", "P1", "2026-07-15", earlier),
	}

	bridge := NewBridge()
	chart := bridge.Publish(rows, nil)

	if len(chart.UnassignedLots) != 3 {
		t.Fatalf("expected 3 unassigned lots, got %d", len(chart.UnassignedLots))
	}
	got := []string{chart.UnassignedLots[0].LotID, chart.UnassignedLots[1].LotID, chart.UnassignedLots[2].LotID}
	want := []string{"L-earlyA", "L-earlyB", "L-later"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected order %v, got %v", want, got)
		}
	}
}

// TestReIngest_UnassignedClearsSlot verifies moving a lot to
// unassigned_lots clears its slot and marks the row UNASSIGNED_RULE.
func TestReIngest_UnassignedClearsSlot(t *testing.T) {
	row := sampleRow()
	rows := []*entities.AssignmentRow{row}
	bridge := NewBridge()

	chart := &Chart{
		UnassignedLots: []UnassignedLot{
			{SourceRowKey: row.Lot.IdentityKey(), LotKey: row.Lot.IdentityKey()},
		},
	}
	bridge.ReIngest(rows, chart)

	if row.CrewSize() != 0 {
		t.Fatalf("expected empty crew after clearing, got %d", row.CrewSize())
	}
	if row.Status != entities.UnassignedRule {
		t.Fatalf("expected UNASSIGNED_RULE, got %s", row.Status)
	}
}
