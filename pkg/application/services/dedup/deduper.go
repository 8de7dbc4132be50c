// Package dedup implements the Duplicate-Lot Reconciler (spec.md §4.2):
// a strict three-stage dedup over the merged lot set, keyed on
// provenance priority rather than any single column.
package dedup

import (
	"fmt"
	"sort"
	"time"

	"github.com/kaizen-line/inspector-dispatch/pkg/application/dto"
	"github.com/kaizen-line/inspector-dispatch/pkg/domain/entities"
	"github.com/kaizen-line/inspector-dispatch/pkg/infrastructure/events"
)

// Deduper runs the three dedup stages against a run date.
type Deduper struct {
	Today time.Time

	// Stage3WildcardBlank toggles the source's inconsistent "blank
	// column = wildcard" behavior in Stage 3 (spec.md §9 Open
	// Questions). false (the default) treats a blank distinguishing-key
	// field as the literal sentinel __EMPTY__, its own bucket. true
	// treats a blank field as matching any value of that field.
	Stage3WildcardBlank bool

	// Events receives progress notifications; nil disables publishing.
	Events events.EventStore
}

// NewDeduper builds a Deduper for the given run date, strict Stage 3
// mode by default.
func NewDeduper(today time.Time) *Deduper {
	return &Deduper{Today: today}
}

// Dedupe runs Stage 1, Stage 2, then Stage 3 in order.
func (d *Deduper) Dedupe(runID string, lots []entities.Lot) *dto.DedupeResult {
	var withID, withoutID []entities.Lot
	for _, l := range lots {
		if l.ProductionLotID != "" {
			withID = append(withID, l)
		} else {
			withoutID = append(withoutID, l)
		}
	}

	stage1Survivors := d.stage1(withID)
	stage2Survivors := d.stage2(withoutID)

	combined := make([]entities.Lot, 0, len(stage1Survivors)+len(stage2Survivors))
	combined = append(combined, stage1Survivors...)
	combined = append(combined, stage2Survivors...)

	stage3Survivors := d.stage3(combined)

	diagnostics := []dto.Diagnostic{{
		RunID: runID,
		Phase: "dedup",
		Message: fmt.Sprintf(
			"input=%d stage1=%d stage2=%d stage3=%d",
			len(lots), len(stage1Survivors), len(stage2Survivors), len(stage3Survivors),
		),
	}}

	if d.Events != nil {
		_ = d.Events.AppendEvent(runID, events.NewLotsDeduplicatedEvent(runID, len(lots), len(stage3Survivors)))
	}

	return &dto.DedupeResult{Lots: stage3Survivors, Diagnostics: diagnostics}
}

// stage1 buckets by production_lot_id and keeps only the
// highest-priority row per bucket.
func (d *Deduper) stage1(lots []entities.Lot) []entities.Lot {
	buckets := make(map[string][]entities.Lot)
	var order []string
	for _, l := range lots {
		key := l.ProductionLotID
		if _, ok := buckets[key]; !ok {
			order = append(order, key)
		}
		buckets[key] = append(buckets[key], l)
	}

	survivors := make([]entities.Lot, 0, len(order))
	for _, key := range order {
		survivors = append(survivors, d.bestPriority(buckets[key]))
	}
	return survivors
}

// stage2 buckets by Stage2Key and applies the mixed-pair rule.
func (d *Deduper) stage2(lots []entities.Lot) []entities.Lot {
	buckets := make(map[string][]entities.Lot)
	var order []string
	for _, l := range lots {
		key := l.Stage2Key()
		if _, ok := buckets[key]; !ok {
			order = append(order, key)
		}
		buckets[key] = append(buckets[key], l)
	}

	var survivors []entities.Lot
	for _, key := range order {
		survivors = append(survivors, d.applyMixedPairRule(buckets[key])...)
	}
	return survivors
}

// stage3 buckets by product_number, partitions each bucket by
// distinguishing key (wildcard-aware when Stage3WildcardBlank is set),
// and applies the mixed-pair rule within each partition.
func (d *Deduper) stage3(lots []entities.Lot) []entities.Lot {
	byProduct := make(map[string][]entities.Lot)
	var order []string
	for _, l := range lots {
		if _, ok := byProduct[l.ProductNumber]; !ok {
			order = append(order, l.ProductNumber)
		}
		byProduct[l.ProductNumber] = append(byProduct[l.ProductNumber], l)
	}

	var survivors []entities.Lot
	for _, product := range order {
		bucket := byProduct[product]
		var partitions [][]entities.Lot
		if d.Stage3WildcardBlank {
			partitions = partitionWithWildcard(bucket)
		} else {
			partitions = partitionStrict(bucket)
		}
		for _, partition := range partitions {
			survivors = append(survivors, d.applyMixedPairRule(partition)...)
		}
	}
	return survivors
}

// partitionStrict groups rows by the literal DistinguishingKey string,
// treating blank fields as the sentinel value __EMPTY__ (its own
// bucket, not a wildcard).
func partitionStrict(lots []entities.Lot) [][]entities.Lot {
	buckets := make(map[string][]entities.Lot)
	var order []string
	for _, l := range lots {
		key := l.DistinguishingKey()
		if _, ok := buckets[key]; !ok {
			order = append(order, key)
		}
		buckets[key] = append(buckets[key], l)
	}
	partitions := make([][]entities.Lot, 0, len(order))
	for _, key := range order {
		partitions = append(partitions, buckets[key])
	}
	return partitions
}

// partitionWithWildcard groups rows into connected components where two
// rows are compatible if, for each distinguishing field (machine,
// instruction_date, production_lot_id), the values are equal or at
// least one is blank. Compatibility is not transitive, so components
// are found with union-find rather than a single hash key.
func partitionWithWildcard(lots []entities.Lot) [][]entities.Lot {
	n := len(lots)
	parent := make([]int, n)
	for i := range parent {
		parent[i] = i
	}
	var find func(int) int
	find = func(i int) int {
		for parent[i] != i {
			parent[i] = parent[parent[i]]
			i = parent[i]
		}
		return i
	}
	union := func(a, b int) {
		ra, rb := find(a), find(b)
		if ra != rb {
			parent[ra] = rb
		}
	}

	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if wildcardCompatible(lots[i], lots[j]) {
				union(i, j)
			}
		}
	}

	groups := make(map[int][]entities.Lot)
	var order []int
	for i := 0; i < n; i++ {
		root := find(i)
		if _, ok := groups[root]; !ok {
			order = append(order, root)
		}
		groups[root] = append(groups[root], lots[i])
	}

	partitions := make([][]entities.Lot, 0, len(order))
	for _, root := range order {
		partitions = append(partitions, groups[root])
	}
	return partitions
}

func wildcardCompatible(a, b entities.Lot) bool {
	return fieldCompatible(a.Machine, b.Machine) &&
		fieldCompatible(a.InstructionDate, b.InstructionDate) &&
		fieldCompatible(a.ProductionLotID, b.ProductionLotID)
}

func fieldCompatible(a, b string) bool {
	if a == "" || b == "" {
		return true
	}
	return a == b
}

// applyMixedPairRule keeps every row if the bucket is not "mixed"
// (fewer than two distinct provenances present), else collapses the
// bucket to its single highest-priority row.
func (d *Deduper) applyMixedPairRule(bucket []entities.Lot) []entities.Lot {
	if len(bucket) <= 1 {
		return bucket
	}
	classes := make(map[entities.Provenance]bool)
	for _, l := range bucket {
		classes[l.Provenance] = true
	}
	if len(classes) < 2 {
		return bucket
	}
	return []entities.Lot{d.bestPriority(bucket)}
}

// bestPriority returns the row with the lowest (best) priority class,
// per spec.md §4.2's 0-5 scale. Ties keep the first row encountered, a
// deterministic tie-break on input order.
func (d *Deduper) bestPriority(bucket []entities.Lot) entities.Lot {
	sorted := make([]entities.Lot, len(bucket))
	copy(sorted, bucket)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].ShippingDate.PriorityClass(d.Today) < sorted[j].ShippingDate.PriorityClass(d.Today)
	})
	return sorted[0]
}
