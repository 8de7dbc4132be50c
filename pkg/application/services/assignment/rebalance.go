package assignment

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/kaizen-line/inspector-dispatch/pkg/application/dto"
	"github.com/kaizen-line/inspector-dispatch/pkg/domain/entities"
	"github.com/kaizen-line/inspector-dispatch/pkg/infrastructure/events"
)

// rebalance implements Phase 3 (spec.md §4.3): move work from overloaded
// active inspectors to underloaded ones, bounded at RebalanceCap
// reassignments, stopping as soon as the imbalance ratio falls back
// within threshold or no valid move remains.
func (e *Engine) rebalance(rc *runContext, rows []*entities.AssignmentRow) []dto.Diagnostic {
	var diagnostics []dto.Diagnostic
	moves := 0

	for moves < rc.cfg.RebalanceCap {
		state := recomputeDailyState(rows)
		activeIDs := rc.activeInspectorIDs()
		if len(activeIDs) == 0 {
			break
		}

		totals := make(map[string]entities.Hours, len(activeIDs))
		sum := entities.ZeroHours
		for _, id := range activeIDs {
			totals[id] = state.Hours(id)
			sum = sum.Add(totals[id])
		}
		mean := sum.Div(decimal.NewFromInt(int64(len(activeIDs))))
		maxID, minID := extremeIDs(totals)
		maxTotal, minTotal := totals[maxID], totals[minID]

		imbalance := maxTotal.Sub(minTotal)
		threshold := mean.Mul(decimal.NewFromFloat(rc.cfg.ImbalanceThresholdRatio))
		if !imbalance.GreaterThan(threshold) {
			break
		}
		if !maxTotal.GreaterThan(mean.Mul(decimal.NewFromFloat(1.10))) || !minTotal.LessThanOrEqual(mean.Mul(decimal.NewFromFloat(0.90))) {
			break
		}

		row := findMovableRow(rows, maxID)
		if row == nil {
			break // no movable lot from the overloaded inspector; stop rather than loop forever
		}

		exclude := map[string]bool{}
		for _, id := range row.Members() {
			if id != maxID {
				exclude[id] = true
			}
		}
		exclude[maxID] = true
		pool := rc.derivePool(row.Lot.ProductNumber, row.Lot.CurrentProcessNumber)
		candidates := rc.filteredCandidates(row.Lot.ProductNumber, row.Lot.CurrentProcessNumber, row.DividedTime, state, pool, exclude)

		target := ""
		for _, c := range candidates {
			if c.id == minID {
				target = c.id
				break
			}
		}
		if target == "" && len(candidates) > 0 {
			target = candidates[0].id
		}
		if target == "" {
			break
		}

		members := row.Members()
		for i, id := range members {
			if id == maxID {
				members[i] = target
				break
			}
		}
		row.SetMembers(members)
		row.TeamInfo = formatTeamInfo(members)

		moves++
		diagnostics = append(diagnostics, dto.Diagnostic{
			RunID:   rc.runID,
			Phase:   "assignment.rebalance",
			LotKey:  row.Lot.ProductionLotID,
			Message: "moved from " + maxID + " to " + target + " for fairness",
		})
		e.publish(rc.runID, events.NewRowRebalancedEvent(rc.runID, row.Lot.ProductionLotID, maxID, target))
	}

	return diagnostics
}

// activeInspectorIDs returns the candidate-eligible inspectors the
// fairness computation considers (spec.md §4.3: "active inspectors").
func (rc *runContext) activeInspectorIDs() []string {
	var ids []string
	for id, inspector := range rc.inspectors {
		if inspector.IsCandidate() {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}

// findMovableRow returns the first assigned row where inspectorID holds
// a slot alongside at least one teammate, or is the sole member — moving
// a sole member still leaves the row assigned with a substitute.
func findMovableRow(rows []*entities.AssignmentRow, inspectorID string) *entities.AssignmentRow {
	for _, row := range rows {
		if row.Status != entities.Assigned {
			continue
		}
		if row.HasMember(inspectorID) {
			return row
		}
	}
	return nil
}

// extremeIDs returns the highest-total and lowest-total inspector IDs,
// breaking ties by ID for determinism.
func extremeIDs(totals map[string]entities.Hours) (maxID, minID string) {
	first := true
	for id, h := range totals {
		if first {
			maxID, minID = id, id
			first = false
			continue
		}
		if h.GreaterThan(totals[maxID]) || (h.Decimal().Equal(totals[maxID].Decimal()) && id < maxID) {
			maxID = id
		}
		if totals[minID].GreaterThan(h) || (h.Decimal().Equal(totals[minID].Decimal()) && id < minID) {
			minID = id
		}
	}
	return maxID, minID
}
