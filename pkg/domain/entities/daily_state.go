package entities

// DailyState is engine-owned, run-scoped bookkeeping (spec.md §3). It is
// created per run and never persisted, owned by a single engine
// instance with no aliasing (spec.md §5).
type DailyState struct {
	DailyHours             map[string]Hours            // inspector_id -> hours today
	ProductHours           map[string]map[string]Hours // inspector_id -> product_number -> hours
	SameDayCleaningInspectors map[string]map[string]bool // product_number -> inspector_id set
	AssignmentCount        map[string]int              // inspector_id -> fairness tally
	LastAssignmentSeq      map[string]int               // inspector_id -> sequence of last assignment
}

// NewDailyState returns a zeroed DailyState ready for a fresh run.
func NewDailyState() *DailyState {
	return &DailyState{
		DailyHours:                make(map[string]Hours),
		ProductHours:              make(map[string]map[string]Hours),
		SameDayCleaningInspectors: make(map[string]map[string]bool),
		AssignmentCount:           make(map[string]int),
		LastAssignmentSeq:         make(map[string]int),
	}
}

// Hours returns the inspector's accumulated hours today (zero if absent).
func (d *DailyState) Hours(inspectorID string) Hours {
	return d.DailyHours[inspectorID]
}

// ProductHoursFor returns the inspector's accumulated hours on a product
// today (zero if absent).
func (d *DailyState) ProductHoursFor(inspectorID, productNumber string) Hours {
	if m, ok := d.ProductHours[inspectorID]; ok {
		return m[productNumber]
	}
	return ZeroHours
}

// Reserve books divided hours against an inspector for a product,
// updating daily hours, product hours, and fairness tallies.
func (d *DailyState) Reserve(inspectorID, productNumber string, hours Hours, seq int) {
	d.DailyHours[inspectorID] = d.DailyHours[inspectorID].Add(hours)
	if d.ProductHours[inspectorID] == nil {
		d.ProductHours[inspectorID] = make(map[string]Hours)
	}
	d.ProductHours[inspectorID][productNumber] = d.ProductHours[inspectorID][productNumber].Add(hours)
	d.AssignmentCount[inspectorID]++
	d.LastAssignmentSeq[inspectorID] = seq
}

// Release reverses a prior Reserve of the same magnitude, used by repair
// when moving time off an inspector.
func (d *DailyState) Release(inspectorID, productNumber string, hours Hours) {
	d.DailyHours[inspectorID] = d.DailyHours[inspectorID].Sub(hours)
	if m, ok := d.ProductHours[inspectorID]; ok {
		m[productNumber] = m[productNumber].Sub(hours)
	}
	if d.AssignmentCount[inspectorID] > 0 {
		d.AssignmentCount[inspectorID]--
	}
}

// MarkSameDayCleaning records that inspectorID touched today's cleaning
// of productNumber (spec.md §4.4 "Same-day-cleaning bookkeeping").
func (d *DailyState) MarkSameDayCleaning(productNumber, inspectorID string) {
	if d.SameDayCleaningInspectors[productNumber] == nil {
		d.SameDayCleaningInspectors[productNumber] = make(map[string]bool)
	}
	d.SameDayCleaningInspectors[productNumber][inspectorID] = true
}

// TouchedSameDayCleaning reports whether inspectorID is recorded against
// productNumber's same-day cleaning set.
func (d *DailyState) TouchedSameDayCleaning(productNumber, inspectorID string) bool {
	return d.SameDayCleaningInspectors[productNumber][inspectorID]
}
