// Package assignment implements the Lot-to-Inspector Assignment Engine
// (spec.md §4.3-4.5): sizing, first-pass crew selection, iterative
// repair, and fairness rebalance, run as one linear pass per extraction
// run over a pre-loaded MasterStore snapshot.
package assignment

import (
	"sort"
	"time"

	"github.com/kaizen-line/inspector-dispatch/pkg/application/dto"
	"github.com/kaizen-line/inspector-dispatch/pkg/config"
	"github.com/kaizen-line/inspector-dispatch/pkg/domain/entities"
	"github.com/kaizen-line/inspector-dispatch/pkg/infrastructure/events"
)

// Inputs bundles the immutable master data the engine needs for one
// run. Master loading and parsing are a MasterStore/caller concern
// (spec.md §4.6); the engine only ever consumes already-built snapshots
// (spec.md §5).
type Inputs struct {
	Lots       []entities.Lot
	Products   map[string]entities.Product // keyed by ProductNumber
	Inspectors []entities.Inspector
	Skills     *entities.SkillMatrix
	Vacations  map[string]string // inspector_id -> absence code, today only
	FixedPins  []entities.FixedPin
	// Today is the run date, used to decide same-day-cleaning
	// bookkeeping membership for dated shipping dates and to order
	// Phase 1 scheduling.
	Today time.Time
}

// Engine runs the three ordered phases plus the final sweep
// (spec.md §4.3). It is single-threaded cooperative per run: every
// DailyState mutation happens on the goroutine that calls Run
// (spec.md §5).
type Engine struct {
	Config *config.Config
	Events events.EventStore
}

// NewEngine builds an Engine bound to a configuration.
func NewEngine(cfg *config.Config) *Engine {
	return &Engine{Config: cfg}
}

// runContext threads the read-only inputs and per-run indices that the
// phase methods share, so they don't all need Inputs plus three lookup
// maps as separate parameters.
type runContext struct {
	runID      string
	cfg        *config.Config
	inspectors map[string]entities.Inspector
	products   map[string]entities.Product
	skills     *entities.SkillMatrix
	vacations  map[string]string
	pins       []entities.FixedPin
	today      time.Time
	newProductTeam map[string]bool
}

// Run executes Phase 0 through Phase 4 over in.Lots and returns the
// publishable result.
func (e *Engine) Run(runID string, in Inputs) *dto.DispatchResult {
	rc := &runContext{
		runID:          runID,
		cfg:            e.Config,
		inspectors:     indexInspectors(in.Inspectors),
		products:       in.Products,
		skills:         in.Skills,
		vacations:      in.Vacations,
		pins:           in.FixedPins,
		today:          in.Today,
		newProductTeam: newProductTeamIDs(in.Inspectors),
	}

	var diagnostics []dto.Diagnostic

	rows := sizeLots(rc, in.Lots)
	sortRowsForFirstPass(rows, rc)

	state := entities.NewDailyState()
	seq := 0
	for _, row := range rows {
		if row.Status == entities.UnassignedZeroQuantity {
			continue
		}
		seq++
		e.assignFirstPass(rc, row, state, seq)
		e.publish(runID, events.NewRowAssignedEvent(runID, row.Lot.ProductionLotID, row.Status.String(), row.CrewSize()))
	}

	repairDiags := e.repairLoop(rc, rows)
	diagnostics = append(diagnostics, repairDiags...)

	rebalanceDiags := e.rebalance(rc, rows)
	diagnostics = append(diagnostics, rebalanceDiags...)

	e.finalSweep(rc, rows)

	assigned := 0
	for _, row := range rows {
		if row.Status == entities.Assigned {
			assigned++
		}
	}
	e.publish(runID, events.NewRunCompletedEvent(runID, len(rows), assigned, len(rows)-assigned))

	return &dto.DispatchResult{
		RunID:       runID,
		Rows:        rows,
		Diagnostics: diagnostics,
	}
}

func (e *Engine) publish(runID string, event events.Event) {
	if e.Events == nil {
		return
	}
	_ = e.Events.AppendEvent(runID, event)
}

func indexInspectors(inspectors []entities.Inspector) map[string]entities.Inspector {
	m := make(map[string]entities.Inspector, len(inspectors))
	for _, i := range inspectors {
		m[i.InspectorID] = i
	}
	return m
}

func newProductTeamIDs(inspectors []entities.Inspector) map[string]bool {
	m := make(map[string]bool)
	for _, i := range inspectors {
		if i.IsNewProductTeamMember {
			m[i.InspectorID] = true
		}
	}
	return m
}

// sortRowsForFirstPass orders rows by (shipping_date ascending,
// is_new_product descending) per spec.md §4.3 Phase 1. Shipping-date
// ascending is realized through the same priority scale the dedup stage
// uses (today first, then same-day-cleaning, advance, next-business-day,
// other dates, then unparsable last) since CLEANING and ADVANCE rows
// represent same-day work alongside NORMAL lots shipping today.
func sortRowsForFirstPass(rows []*entities.AssignmentRow, rc *runContext) {
	sort.SliceStable(rows, func(i, j int) bool {
		pi := rows[i].Lot.ShippingDate.PriorityClass(rc.today)
		pj := rows[j].Lot.ShippingDate.PriorityClass(rc.today)
		if pi != pj {
			return pi < pj
		}
		ni := rc.isNewProduct(rows[i].Lot.ProductNumber)
		nj := rc.isNewProduct(rows[j].Lot.ProductNumber)
		if ni != nj {
			return ni // new-product first => descending on is_new_product
		}
		return false
	})
}

func (rc *runContext) isNewProduct(productNumber string) bool {
	return !rc.skills.HasProduct(productNumber)
}
