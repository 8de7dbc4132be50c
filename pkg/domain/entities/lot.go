package entities

import "strings"

// Lot is the unit of work: a production batch inspected as one unit.
type Lot struct {
	// ProductionLotID uniquely identifies the lot when present; see
	// IdentityKey for the identity fallback when it is absent.
	ProductionLotID       string
	ProductNumber         string
	ProductName           string
	Customer              string
	ShippingDate          ShippingDate
	LotQuantity           int64
	InstructionDate       string
	Machine               string
	CurrentProcessNumber  string
	CurrentProcessName    string
	SecondaryProcess      string
	CleaningInstructionRow string
	Provenance            Provenance

	// SourceRowIndex/SourceRowKey are carried for the seat-chart round
	// trip (spec.md §6). Nothing in this module sets them: the seating
	// bridge derives each row's index and key from the rows it publishes.
	SourceRowIndex int
	SourceRowKey   string
}

const emptySentinel = "__EMPTY__"

// IdentityKey returns the lot's identity per spec.md §3: the
// ProductionLotID when present, else the tuple (product_number, machine,
// instruction_date, cleaning_instruction_row).
func (l Lot) IdentityKey() string {
	if strings.TrimSpace(l.ProductionLotID) != "" {
		return "id:" + l.ProductionLotID
	}
	return strings.Join([]string{
		"tuple", l.ProductNumber, l.Machine, l.InstructionDate, l.CleaningInstructionRow,
	}, "|")
}

// DistinguishingKey returns the Stage-3 dedup partition key (machine,
// instruction_date, production_lot_id), with blank/NaN fields mapped to
// the sentinel __EMPTY__ per spec.md §4.2.
func (l Lot) DistinguishingKey() string {
	machine := l.Machine
	if strings.TrimSpace(machine) == "" {
		machine = emptySentinel
	}
	instructionDate := l.InstructionDate
	if strings.TrimSpace(instructionDate) == "" {
		instructionDate = emptySentinel
	}
	lotID := l.ProductionLotID
	if strings.TrimSpace(lotID) == "" {
		lotID = emptySentinel
	}
	return strings.Join([]string{machine, instructionDate, lotID}, "|")
}

// Stage2Key buckets lots lacking a ProductionLotID by whichever of
// (product_number, machine, instruction_date, cleaning_instruction_row)
// are present, per spec.md §4.2 Stage 2 ("use whichever columns are
// present; minimum two").
func (l Lot) Stage2Key() string {
	parts := make([]string, 0, 4)
	if strings.TrimSpace(l.ProductNumber) != "" {
		parts = append(parts, "p:"+l.ProductNumber)
	}
	if strings.TrimSpace(l.Machine) != "" {
		parts = append(parts, "m:"+l.Machine)
	}
	if strings.TrimSpace(l.InstructionDate) != "" {
		parts = append(parts, "d:"+l.InstructionDate)
	}
	if strings.TrimSpace(l.CleaningInstructionRow) != "" {
		parts = append(parts, "c:"+l.CleaningInstructionRow)
	}
	return strings.Join(parts, "|")
}
