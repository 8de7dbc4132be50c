package assignment

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/kaizen-line/inspector-dispatch/pkg/application/dto"
	"github.com/kaizen-line/inspector-dispatch/pkg/domain/entities"
	"github.com/kaizen-line/inspector-dispatch/pkg/infrastructure/events"
)

type violationKind int

const (
	violationOverCap violationKind = iota
	violationOverPart
)

type violation struct {
	rowIndex int
	row      *entities.AssignmentRow
	inspectorID string
	kind     violationKind
	excess   decimal.Decimal
}

// repairLoop implements Phase 2 (spec.md §4.3, §4.5): a bounded,
// recompute-scan-repair fixed point over rows in violation of the daily
// or same-part caps.
func (e *Engine) repairLoop(rc *runContext, rows []*entities.AssignmentRow) []dto.Diagnostic {
	var diagnostics []dto.Diagnostic
	iterationCap := rc.cfg.RepairIterationCap

	for iteration := 0; iteration < iterationCap; iteration++ {
		state := recomputeDailyState(rows)
		violations := findViolations(rc, rows, state)
		if len(violations) == 0 {
			break
		}

		sortViolations(rc, violations)

		progressed := false
		for _, v := range violations {
			if e.repairRow(rc, v, state) {
				progressed = true
				diagnostics = append(diagnostics, dto.Diagnostic{
					RunID:   rc.runID,
					Phase:   "assignment.repair",
					LotKey:  v.row.Lot.ProductionLotID,
					Message: fmt.Sprintf("iteration=%d repaired %s violation on inspector %s", iteration, violationName(v.kind), v.inspectorID),
				})
				e.publish(rc.runID, events.NewRowRepairedEvent(rc.runID, v.row.Lot.ProductionLotID, violationName(v.kind)))
			} else {
				releaseRow(v.row, state)
				v.row.Status = entities.UnassignedRule
				v.row.ClearSlots()
				v.row.DividedTime = entities.ZeroHours
				progressed = true
				diagnostics = append(diagnostics, dto.Diagnostic{
					RunID:   rc.runID,
					Phase:   "assignment.repair",
					LotKey:  v.row.Lot.ProductionLotID,
					Message: "no repair path; marked UNASSIGNED_RULE",
				})
			}
		}

		if !progressed {
			break
		}
	}

	return diagnostics
}

func violationName(k violationKind) string {
	if k == violationOverCap {
		return "over-cap"
	}
	return "over-part"
}

// findViolations scans every assigned row's members for a cap breach,
// collapsing multiple breaches on one row to the single largest-excess
// violation (spec.md §4.3 Phase 2 step 2).
func findViolations(rc *runContext, rows []*entities.AssignmentRow, state *entities.DailyState) []violation {
	epsilon := entities.NewHoursFromFloat(rc.cfg.Epsilon)
	hProduct := entities.NewHoursFromFloat(rc.cfg.HProduct)

	var violations []violation
	for idx, row := range rows {
		if row.Status != entities.Assigned {
			continue
		}
		var worst *violation
		for _, id := range row.Members() {
			inspector, ok := rc.inspectors[id]
			if !ok {
				continue
			}
			maxDaily := inspector.MaxDailyHours()
			dailyHours := state.Hours(id)
			if dailyHours.GreaterThan(maxDaily.Sub(epsilon)) {
				excess := dailyHours.Sub(maxDaily.Sub(epsilon)).Decimal()
				if worst == nil || excess.GreaterThan(worst.excess) {
					worst = &violation{rowIndex: idx, row: row, inspectorID: id, kind: violationOverCap, excess: excess}
				}
			}
			productHours := state.ProductHoursFor(id, row.Lot.ProductNumber)
			if productHours.GreaterThan(hProduct) {
				excess := productHours.Sub(hProduct).Decimal()
				if worst == nil || excess.GreaterThan(worst.excess) {
					worst = &violation{rowIndex: idx, row: row, inspectorID: id, kind: violationOverPart, excess: excess}
				}
			}
		}
		if worst != nil {
			violations = append(violations, *worst)
		}
	}
	return violations
}

// sortViolations orders by (shipping_date ascending, row_index
// ascending), matching Phase 1's ordinal.
func sortViolations(rc *runContext, violations []violation) {
	sort.SliceStable(violations, func(i, j int) bool {
		pi := violations[i].row.Lot.ShippingDate.PriorityClass(rc.today)
		pj := violations[j].row.Lot.ShippingDate.PriorityClass(rc.today)
		if pi != pj {
			return pi < pj
		}
		return violations[i].rowIndex < violations[j].rowIndex
	})
}

// repairRow attempts the three repair actions of spec.md §4.5 in order,
// returning true if one eliminated the violation.
func (e *Engine) repairRow(rc *runContext, v violation, state *entities.DailyState) bool {
	row := v.row
	crewSize := row.CrewSize()

	if crewSize >= 2 {
		if swapMember(rc, row, v.inspectorID, state) {
			return true
		}
	}
	hRequired := entities.NewHoursFromFloat(rc.cfg.HRequired)
	if crewSize == 1 && row.InspectionTime.LessThan(hRequired) {
		if replaceSoleMember(rc, row, state) {
			return true
		}
	}
	if crewSize == 1 && row.InspectionTime.GreaterThanOrEqual(hRequired) && crewSize < entities.MaxCrewSize {
		if augmentCrew(rc, row, state) {
			return true
		}
	}
	return false
}

// swapMember implements §4.5 repair action 1: replace the violating
// inspector X with another candidate Y who passes all filters.
func swapMember(rc *runContext, row *entities.AssignmentRow, x string, state *entities.DailyState) bool {
	exclude := map[string]bool{}
	for _, id := range row.Members() {
		exclude[id] = true
	}
	pool := rc.derivePool(row.Lot.ProductNumber, row.Lot.CurrentProcessNumber)
	candidates := rc.filteredCandidates(row.Lot.ProductNumber, row.Lot.CurrentProcessNumber, row.DividedTime, state, pool, exclude)
	if len(candidates) == 0 {
		return false
	}
	y := candidates[0].id

	state.Release(x, row.Lot.ProductNumber, row.DividedTime)
	members := row.Members()
	for i, id := range members {
		if id == x {
			members[i] = y
			break
		}
	}
	row.SetMembers(members)
	row.TeamInfo = formatTeamInfo(members)
	state.Reserve(y, row.Lot.ProductNumber, row.DividedTime, state.AssignmentCount[y])
	return true
}

// replaceSoleMember implements §4.5 repair action 2.
func replaceSoleMember(rc *runContext, row *entities.AssignmentRow, state *entities.DailyState) bool {
	members := row.Members()
	if len(members) != 1 {
		return false
	}
	x := members[0]
	exclude := map[string]bool{x: true}
	pool := rc.derivePool(row.Lot.ProductNumber, row.Lot.CurrentProcessNumber)
	candidates := rc.filteredCandidates(row.Lot.ProductNumber, row.Lot.CurrentProcessNumber, row.InspectionTime, state, pool, exclude)
	if len(candidates) == 0 {
		return false
	}
	y := candidates[0].id

	state.Release(x, row.Lot.ProductNumber, row.DividedTime)
	row.SetMembers([]string{y})
	row.DividedTime = row.InspectionTime
	row.TeamInfo = formatTeamInfo(row.Members())
	state.Reserve(y, row.Lot.ProductNumber, row.DividedTime, state.AssignmentCount[y]+1)
	return true
}

// augmentCrew implements §4.5 repair action 3: add a second member at
// half the inspection time, halving the original member's share.
func augmentCrew(rc *runContext, row *entities.AssignmentRow, state *entities.DailyState) bool {
	members := row.Members()
	if len(members) != 1 {
		return false
	}
	x := members[0]
	half := row.InspectionTime.Div(decimal.NewFromInt(2))

	exclude := map[string]bool{x: true}
	pool := rc.derivePool(row.Lot.ProductNumber, row.Lot.CurrentProcessNumber)
	candidates := rc.filteredCandidates(row.Lot.ProductNumber, row.Lot.CurrentProcessNumber, half, state, pool, exclude)
	if len(candidates) == 0 {
		return false
	}
	y := candidates[0].id

	state.Release(x, row.Lot.ProductNumber, row.DividedTime)
	state.Reserve(x, row.Lot.ProductNumber, half, state.AssignmentCount[x]+1)
	state.Reserve(y, row.Lot.ProductNumber, half, state.AssignmentCount[y]+1)

	row.DividedTime = half
	row.SetMembers([]string{x, y})
	row.TeamInfo = formatTeamInfo(row.Members())
	return true
}

// releaseRow reverses every reservation a row currently holds, used
// when a violation has no repair path.
func releaseRow(row *entities.AssignmentRow, state *entities.DailyState) {
	for _, id := range row.Members() {
		state.Release(id, row.Lot.ProductNumber, row.DividedTime)
	}
}
