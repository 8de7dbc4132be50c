// Package dto holds the result types returned by the pipeline, kept
// separate from domain entities the way the teacher's
// pkg/application/dto keeps MRPResult separate from pkg/domain/entities.
package dto

import "github.com/kaizen-line/inspector-dispatch/pkg/domain/entities"

// NonInspectionLot is a side-channel row for lots whose process did not
// match the inspection-target keyword list (spec.md §4.1, §6).
type NonInspectionLot struct {
	ShippingDate       entities.ShippingDate
	ProductNumber      string
	ProductionLotID    string
	InstructionDate    string
	CurrentProcessName string
}

// Diagnostic is one structured entry in the run's diagnostic stream
// (spec.md §7): which phase produced it, which lot it concerns (if any),
// and a human-readable message.
type Diagnostic struct {
	RunID   string
	Phase   string
	LotKey  string
	Message string
}

// ShortageResult is the ShortageResolver's output (spec.md §4.1).
type ShortageResult struct {
	Lots              []entities.Lot
	NonInspectionLots []NonInspectionLot
	Diagnostics       []Diagnostic
}

// DedupeResult is the LotDeduper's output (spec.md §4.2).
type DedupeResult struct {
	Lots        []entities.Lot
	Diagnostics []Diagnostic
}

// DispatchResult is the final, publishable output of one extraction run
// (spec.md §2, §6).
type DispatchResult struct {
	RunID             string
	Rows              []*entities.AssignmentRow
	NonInspectionLots []NonInspectionLot
	Diagnostics       []Diagnostic
}
