package assignment

import (
	"sort"

	"github.com/kaizen-line/inspector-dispatch/pkg/domain/entities"
)

// candidate bundles the ordering fields for the least-loaded rule
// (spec.md §4.4): "(total_hours, assignment_count, last_assignment_time)".
type candidate struct {
	id              string
	hours           entities.Hours
	assignmentCount int
	lastSeq         int
	skill           entities.SkillLevel
}

// derivePool returns the base candidate pool for a lot before any
// filter is applied (spec.md §4.4 "Candidate derivation"): skill-matrix
// inspectors at level >= 1 for a registered product, falling back to
// the new-product team when the product is unregistered or no skilled
// inspector qualifies.
func (rc *runContext) derivePool(productNumber, processNumber string) []string {
	if rc.skills.HasProduct(productNumber) {
		pool := rc.skills.InspectorsAtOrAbove(productNumber, processNumber, entities.SkillLevel1)
		if len(pool) > 0 {
			return pool
		}
	}
	pool := make([]string, 0, len(rc.newProductTeam))
	for id := range rc.newProductTeam {
		pool = append(pool, id)
	}
	sort.Strings(pool) // deterministic order; ranking is by least-loaded anyway
	return pool
}

// passesFilters applies every general filter from spec.md §4.4: not on
// vacation, a positive shift cap, remaining daily-hour headroom, and
// remaining same-part headroom for the given divided_time.
func (rc *runContext) passesFilters(inspectorID, productNumber string, dividedTime entities.Hours, state *entities.DailyState) bool {
	inspector, ok := rc.inspectors[inspectorID]
	if !ok {
		return false
	}
	if code, onVacation := rc.vacations[inspectorID]; onVacation && code != "" {
		return false
	}
	maxDaily := inspector.MaxDailyHours()
	if !maxDaily.IsPositive() {
		return false
	}
	epsilon := entities.NewHoursFromFloat(rc.cfg.Epsilon)
	projectedDaily := state.Hours(inspectorID).Add(dividedTime)
	if !projectedDaily.LessThanOrEqual(maxDaily.Sub(epsilon)) {
		return false
	}
	hProduct := entities.NewHoursFromFloat(rc.cfg.HProduct)
	projectedProduct := state.ProductHoursFor(inspectorID, productNumber).Add(dividedTime)
	if !projectedProduct.LessThanOrEqual(hProduct) {
		return false
	}
	return true
}

// buildCandidate snapshots an inspector's current loading for the
// least-loaded comparator.
func (rc *runContext) buildCandidate(inspectorID, productNumber, processNumber string, state *entities.DailyState) candidate {
	return candidate{
		id:              inspectorID,
		hours:           state.Hours(inspectorID),
		assignmentCount: state.AssignmentCount[inspectorID],
		lastSeq:         state.LastAssignmentSeq[inspectorID],
		skill:           rc.skills.LevelFor(productNumber, processNumber, inspectorID),
	}
}

// leastLoadedLess implements the lexicographic ordering
// (total_hours, assignment_count, last_assignment_time) ascending.
func leastLoadedLess(a, b candidate) bool {
	if !a.hours.Decimal().Equal(b.hours.Decimal()) {
		return a.hours.Decimal().LessThan(b.hours.Decimal())
	}
	if a.assignmentCount != b.assignmentCount {
		return a.assignmentCount < b.assignmentCount
	}
	if a.lastSeq != b.lastSeq {
		return a.lastSeq < b.lastSeq
	}
	return a.id < b.id
}

// filteredCandidates returns every candidate from the base pool (minus
// exclude) passing the general filters, sorted least-loaded first.
func (rc *runContext) filteredCandidates(
	productNumber, processNumber string,
	dividedTime entities.Hours,
	state *entities.DailyState,
	pool []string,
	exclude map[string]bool,
) []candidate {
	var out []candidate
	for _, id := range pool {
		if exclude[id] {
			continue
		}
		if !rc.passesFilters(id, productNumber, dividedTime, state) {
			continue
		}
		out = append(out, rc.buildCandidate(id, productNumber, processNumber, state))
	}
	sort.SliceStable(out, func(i, j int) bool { return leastLoadedLess(out[i], out[j]) })
	return out
}

// selectCrew implements §4.4's crew-size-specific selection rules plus
// mandatory fixed-pin inclusion. It returns the chosen inspector IDs in
// slot order and the pinned inspectors dropped for failing a filter.
func (rc *runContext) selectCrew(
	lot entities.Lot,
	requiredCrew int,
	dividedTime entities.Hours,
	state *entities.DailyState,
) (members []string, dropped []string) {
	product := lot.ProductNumber
	process := lot.CurrentProcessNumber

	exclude := make(map[string]bool)
	var dropped_ []string

	for _, pin := range rc.pins {
		if !pin.Matches(product, lot.CurrentProcessName) {
			continue
		}
		for _, id := range pin.InspectorIDs {
			if exclude[id] {
				continue // already pinned by an earlier rule
			}
			if rc.passesFilters(id, product, dividedTime, state) {
				members = append(members, id)
				exclude[id] = true
			} else {
				dropped_ = append(dropped_, id)
			}
			if len(members) >= requiredCrew {
				break
			}
		}
	}

	pool := rc.derivePool(product, process)
	remaining := requiredCrew - len(members)
	if remaining > 0 {
		picked := rc.pickBySizeRule(product, process, requiredCrew, remaining, dividedTime, state, pool, exclude, len(members) > 0)
		members = append(members, picked...)
	}

	return members, dropped_
}

// pickBySizeRule fills `need` more slots following the crew-size rules
// of spec.md §4.4. `alreadyHasMembers` indicates pinned inspectors
// already occupy part of the crew; when that happens, the remaining
// slots are always filled least-loaded, since the skill-3 pinning rule
// only describes building a crew of exactly 2 or 3 from scratch.
func (rc *runContext) pickBySizeRule(
	product, process string,
	requiredCrew, need int,
	dividedTime entities.Hours,
	state *entities.DailyState,
	pool []string,
	exclude map[string]bool,
	alreadyHasMembers bool,
) []string {
	candidates := rc.filteredCandidates(product, process, dividedTime, state, pool, exclude)
	if len(candidates) == 0 {
		return nil
	}

	pickLeastLoaded := func(n int, from []candidate) []string {
		if n > len(from) {
			n = len(from)
		}
		out := make([]string, 0, n)
		for i := 0; i < n; i++ {
			out = append(out, from[i].id)
		}
		return out
	}

	if !alreadyHasMembers && (requiredCrew == 2 || requiredCrew == 3) {
		return pickWithSkill3Pin(candidates, need, pickLeastLoaded)
	}
	return pickLeastLoaded(need, candidates)
}

// pickWithSkill3Pin pins the least-loaded skill-3 candidate as the
// first pick when one exists, then fills the rest least-loaded.
func pickWithSkill3Pin(candidates []candidate, need int, pickLeastLoaded func(int, []candidate) []string) []string {
	skill3Index := -1
	for i, c := range candidates {
		if c.skill == entities.SkillLevel3 {
			skill3Index = i
			break
		}
	}
	if skill3Index < 0 {
		return pickLeastLoaded(need, candidates)
	}
	pinned := candidates[skill3Index]
	rest := make([]candidate, 0, len(candidates)-1)
	rest = append(rest, candidates[:skill3Index]...)
	rest = append(rest, candidates[skill3Index+1:]...)

	out := []string{pinned.id}
	out = append(out, pickLeastLoaded(need-1, rest)...)
	return out
}

