package assignment

import "github.com/kaizen-line/inspector-dispatch/pkg/domain/entities"

// recomputeDailyState rebuilds DailyState from scratch by walking rows
// in their current slice order, the idempotent reconstruction Phase 2
// and Phase 4 rely on (spec.md §8 round-trip law). The sequence number
// fed to Reserve is each row's position, so LastAssignmentSeq stays a
// deterministic function of row order rather than of repair history.
func recomputeDailyState(rows []*entities.AssignmentRow) *entities.DailyState {
	state := entities.NewDailyState()
	for i, row := range rows {
		if row.Status != entities.Assigned {
			continue
		}
		for _, id := range row.Members() {
			state.Reserve(id, row.Lot.ProductNumber, row.DividedTime, i)
		}
	}
	return state
}
