package entities

// AssignabilityStatus is the result tag applied to every AssignmentRow,
// replacing exception-based flow control (spec.md §9 Design Notes).
type AssignabilityStatus int

const (
	Assigned AssignabilityStatus = iota
	UnassignedRule
	UnassignedCapacity
	UnassignedNoCandidate
	// UnassignedZeroQuantity marks lots with lot_quantity == 0; they are
	// kept in the result but never enter crew selection (spec.md §3).
	UnassignedZeroQuantity
)

func (s AssignabilityStatus) String() string {
	switch s {
	case Assigned:
		return "ASSIGNED"
	case UnassignedRule:
		return "UNASSIGNED_RULE"
	case UnassignedCapacity:
		return "UNASSIGNED_CAPACITY"
	case UnassignedNoCandidate:
		return "UNASSIGNED_NO_CANDIDATE"
	case UnassignedZeroQuantity:
		return "UNASSIGNED_ZERO_QUANTITY"
	default:
		return "UNKNOWN"
	}
}

const MaxCrewSize = 10

// AssignmentRow is the per-lot output row (spec.md §3).
type AssignmentRow struct {
	Lot Lot

	InspectionTime  Hours
	RequiredCrew    int
	DividedTime     Hours
	Slots           [MaxCrewSize]string // inspector IDs; "" = empty slot
	TeamInfo        string
	Status          AssignabilityStatus

	// DroppedPinnedInspectors records pinned inspectors who failed a
	// filter and were therefore dropped (spec.md §4.4 Mandatory
	// inclusions).
	DroppedPinnedInspectors []string
}

// CrewSize returns the count of non-empty slots, used both to populate
// RequiredCrew bookkeeping and to check invariant 1 of spec.md §8.
func (r *AssignmentRow) CrewSize() int {
	n := 0
	for _, s := range r.Slots {
		if s != "" {
			n++
		}
	}
	return n
}

// Members returns the non-empty inspector IDs in slot order.
func (r *AssignmentRow) Members() []string {
	out := make([]string, 0, MaxCrewSize)
	for _, s := range r.Slots {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

// ClearSlots empties every slot (used by repair/rebalance and by
// seat-chart re-ingest when a lot lands in unassigned_lots).
func (r *AssignmentRow) ClearSlots() {
	for i := range r.Slots {
		r.Slots[i] = ""
	}
}

// SetMembers fills slots 0..len(members)-1 with the given inspector IDs.
func (r *AssignmentRow) SetMembers(members []string) {
	r.ClearSlots()
	for i, m := range members {
		if i >= MaxCrewSize {
			break
		}
		r.Slots[i] = m
	}
}

// HasMember reports whether inspectorID currently occupies a slot.
func (r *AssignmentRow) HasMember(inspectorID string) bool {
	for _, s := range r.Slots {
		if s == inspectorID {
			return true
		}
	}
	return false
}
