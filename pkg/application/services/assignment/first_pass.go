package assignment

import (
	"strings"
	"time"

	"github.com/kaizen-line/inspector-dispatch/pkg/domain/entities"
)

// assignFirstPass implements Phase 1 for a single row (spec.md §4.3,
// §4.4): derive candidates, select a crew, and update DailyState.
func (e *Engine) assignFirstPass(rc *runContext, row *entities.AssignmentRow, state *entities.DailyState, seq int) {
	if row.Status == entities.UnassignedNoCandidate || row.Status == entities.UnassignedZeroQuantity {
		return
	}

	members, dropped := rc.selectCrew(row.Lot, row.RequiredCrew, row.DividedTime, state)
	row.DroppedPinnedInspectors = dropped

	if len(members) == 0 {
		row.Status = entities.UnassignedNoCandidate
		row.DividedTime = entities.ZeroHours
		return
	}

	if len(members) < row.RequiredCrew {
		// Candidate pool non-empty but too small to fill the required
		// crew (spec.md §4.4 Degenerate cases, Scenario E): the row is
		// left unassigned rather than short-staffed, so
		// divided_time * crew_size == inspection_time still holds
		// trivially (crew_size 0, divided_time 0).
		row.Status = entities.UnassignedCapacity
		row.ClearSlots()
		row.DividedTime = entities.ZeroHours
		return
	}

	row.SetMembers(members)
	row.Status = entities.Assigned
	row.TeamInfo = formatTeamInfo(members)

	for _, id := range members {
		state.Reserve(id, row.Lot.ProductNumber, row.DividedTime, seq)
	}

	if isSameDayWork(row.Lot.ShippingDate, rc.today) {
		for _, id := range members {
			state.MarkSameDayCleaning(row.Lot.ProductNumber, id)
		}
	}
}

// isSameDayWork reports whether a lot's shipping date falls into one of
// the three classes spec.md §4.4 groups for same-day-cleaning
// bookkeeping: same-day-cleaning, advance-inspection, or today.
func isSameDayWork(sd entities.ShippingDate, today time.Time) bool {
	switch sd.Kind {
	case entities.SameDayCleaning, entities.AdvanceInspection:
		return true
	case entities.Dated:
		ay, am, ad := sd.Date.Date()
		by, bm, bd := today.Date()
		return ay == by && am == bm && ad == bd
	default:
		return false
	}
}

func formatTeamInfo(members []string) string {
	return strings.Join(members, ",")
}
