package assignment

import "github.com/kaizen-line/inspector-dispatch/pkg/domain/entities"

// finalSweep implements Phase 4 (spec.md §4.3): re-verify every
// invariant once more after repair and rebalance, clearing any row that
// still violates a cap, then recompute every row's team_info from its
// final slot contents.
func (e *Engine) finalSweep(rc *runContext, rows []*entities.AssignmentRow) {
	epsilon := entities.NewHoursFromFloat(rc.cfg.Epsilon)
	hProduct := entities.NewHoursFromFloat(rc.cfg.HProduct)

	state := recomputeDailyState(rows)
	changed := false
	for _, row := range rows {
		if row.Status != entities.Assigned {
			continue
		}
		for _, id := range row.Members() {
			inspector, ok := rc.inspectors[id]
			if !ok {
				row.Status = entities.UnassignedRule
				changed = true
				break
			}
			maxDaily := inspector.MaxDailyHours()
			if state.Hours(id).GreaterThan(maxDaily.Sub(epsilon)) {
				row.Status = entities.UnassignedRule
				changed = true
				break
			}
			if state.ProductHoursFor(id, row.Lot.ProductNumber).GreaterThan(hProduct) {
				row.Status = entities.UnassignedRule
				changed = true
				break
			}
		}
		if row.Status == entities.UnassignedRule {
			row.ClearSlots()
			row.DividedTime = entities.ZeroHours
		}
	}

	if changed {
		state = recomputeDailyState(rows)
		_ = state
	}

	for _, row := range rows {
		if row.Status == entities.Assigned {
			row.TeamInfo = formatTeamInfo(row.Members())
		} else {
			row.TeamInfo = ""
		}
	}
}
