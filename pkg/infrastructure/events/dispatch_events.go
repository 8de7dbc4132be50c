package events

// Event type constants published during one extraction run (spec.md
// §5's progress callbacks). Subscribers are notified asynchronously and
// never block AppendEvent.
const (
	EventTypeShortageResolved = "shortage.resolved"
	EventTypeLotExcluded      = "lot.excluded"
	EventTypeLotsDeduplicated = "lots.deduplicated"
	EventTypeRowAssigned      = "row.assigned"
	EventTypeRowRepaired      = "row.repaired"
	EventTypeRowRebalanced    = "row.rebalanced"
	EventTypeRunCompleted     = "run.completed"
)

// ShortageResolvedData reports how many lots the ShortageResolver
// carried forward after merging shortage, advance, and cleaning feeds.
type ShortageResolvedData struct {
	RunID            string
	LotCount         int
	NonInspectionLot int
}

// LotExcludedData names a single lot dropped by the excluded-product or
// inspection-target-keyword filter (spec.md §4.1).
type LotExcludedData struct {
	RunID           string
	ProductionLotID string
	Reason          string
}

// LotsDeduplicatedData reports the LotDeduper's lot count before and
// after all three stages (spec.md §4.2); per-stage counts are not kept.
type LotsDeduplicatedData struct {
	RunID       string
	InputCount  int
	OutputCount int
}

// RowAssignedData reports a single AssignmentRow's outcome from Phase 1
// of the AssignmentEngine (spec.md §4.4).
type RowAssignedData struct {
	RunID           string
	ProductionLotID string
	Status          string
	CrewSize        int
}

// RowRepairedData reports a row that Phase 2 repaired (spec.md §4.5).
// Action names the violation that was cleared ("over-cap" or
// "over-part"); the repair move used is not recorded, and a row that
// Phase 2 unassigns publishes no event.
type RowRepairedData struct {
	RunID           string
	ProductionLotID string
	Action          string
}

// RowRebalancedData reports a reassignment made during the Phase 3
// fairness rebalance (spec.md §4.3).
type RowRebalancedData struct {
	RunID           string
	ProductionLotID string
	FromInspectorID string
	ToInspectorID   string
}

// RunCompletedData summarizes one finished extraction run.
type RunCompletedData struct {
	RunID           string
	RowCount        int
	AssignedCount   int
	UnassignedCount int
}

// NewShortageResolvedEvent builds the event published once the
// ShortageResolver finishes merging its feeds.
func NewShortageResolvedEvent(runID string, lotCount, nonInspectionCount int) Event {
	return NewEvent(EventTypeShortageResolved, runID, ShortageResolvedData{
		RunID:            runID,
		LotCount:         lotCount,
		NonInspectionLot: nonInspectionCount,
	})
}

// NewLotExcludedEvent builds the event for one lot dropped by an
// exclusion filter. The ShortageResolver does not publish it.
func NewLotExcludedEvent(runID, productionLotID, reason string) Event {
	return NewEvent(EventTypeLotExcluded, runID, LotExcludedData{
		RunID:           runID,
		ProductionLotID: productionLotID,
		Reason:          reason,
	})
}

// NewLotsDeduplicatedEvent builds the event published once the
// LotDeduper finishes all three stages.
func NewLotsDeduplicatedEvent(runID string, inputCount, outputCount int) Event {
	return NewEvent(EventTypeLotsDeduplicated, runID, LotsDeduplicatedData{
		RunID:       runID,
		InputCount:  inputCount,
		OutputCount: outputCount,
	})
}

// NewRowAssignedEvent builds the event published when Phase 1 produces
// an AssignmentRow.
func NewRowAssignedEvent(runID, productionLotID, status string, crewSize int) Event {
	return NewEvent(EventTypeRowAssigned, runID, RowAssignedData{
		RunID:           runID,
		ProductionLotID: productionLotID,
		Status:          status,
		CrewSize:        crewSize,
	})
}

// NewRowRepairedEvent builds the event published when Phase 2 changes
// a row's crew.
func NewRowRepairedEvent(runID, productionLotID, action string) Event {
	return NewEvent(EventTypeRowRepaired, runID, RowRepairedData{
		RunID:           runID,
		ProductionLotID: productionLotID,
		Action:          action,
	})
}

// NewRowRebalancedEvent builds the event published when Phase 3 moves
// a lot from one inspector to another.
func NewRowRebalancedEvent(runID, productionLotID, fromInspectorID, toInspectorID string) Event {
	return NewEvent(EventTypeRowRebalanced, runID, RowRebalancedData{
		RunID:           runID,
		ProductionLotID: productionLotID,
		FromInspectorID: fromInspectorID,
		ToInspectorID:   toInspectorID,
	})
}

// NewRunCompletedEvent builds the final event published once a run's
// DispatchResult is ready.
func NewRunCompletedEvent(runID string, rowCount, assignedCount, unassignedCount int) Event {
	return NewEvent(EventTypeRunCompleted, runID, RunCompletedData{
		RunID:           runID,
		RowCount:        rowCount,
		AssignedCount:   assignedCount,
		UnassignedCount: unassignedCount,
	})
}
