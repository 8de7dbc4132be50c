package assignment

import (
	"math"

	"github.com/shopspring/decimal"

	"github.com/kaizen-line/inspector-dispatch/pkg/domain/entities"
)

// sizeLots implements Phase 0 (spec.md §4.3): for each lot with
// lot_quantity > 0 and a resolvable seconds_per_unit, compute
// inspection_time, required_crew_size, and divided_time. Lots with
// lot_quantity == 0 are kept but never sized for crew selection
// (invariant 6); lots whose product has no resolvable process time are
// marked unassignable up front.
func sizeLots(rc *runContext, lots []entities.Lot) []*entities.AssignmentRow {
	rows := make([]*entities.AssignmentRow, 0, len(lots))
	for _, lot := range lots {
		row := &entities.AssignmentRow{Lot: lot}

		if lot.LotQuantity <= 0 {
			row.Status = entities.UnassignedZeroQuantity
			rows = append(rows, row)
			continue
		}

		product, ok := rc.products[lot.ProductNumber]
		if !ok {
			row.Status = entities.UnassignedNoCandidate
			rows = append(rows, row)
			continue
		}
		secondsPerUnit, ok := product.SecondsPerUnit(lot.CurrentProcessNumber)
		if !ok {
			row.Status = entities.UnassignedNoCandidate
			rows = append(rows, row)
			continue
		}

		inspectionTime := entities.NewHoursFromFloat(secondsPerUnit * float64(lot.LotQuantity) / 3600.0)
		requiredCrew := requiredCrewSize(inspectionTime, rc.cfg.HRequired)
		dividedTime := inspectionTime.Div(decimal.NewFromInt(int64(requiredCrew)))

		row.InspectionTime = inspectionTime
		row.RequiredCrew = requiredCrew
		row.DividedTime = dividedTime
		rows = append(rows, row)
	}
	return rows
}

// requiredCrewSize implements the crew-size pivot rule: 1 at or below
// H_required, else max(2, floor(inspection_time/H_required)+1), capped
// at MaxCrewSize.
func requiredCrewSize(inspectionTime entities.Hours, hRequired float64) int {
	hReq := entities.NewHoursFromFloat(hRequired)
	if inspectionTime.LessThanOrEqual(hReq) {
		return 1
	}
	ratio, _ := inspectionTime.Decimal().Div(hReq.Decimal()).Float64()
	size := int(math.Floor(ratio)) + 1
	if size < 2 {
		size = 2
	}
	if size > entities.MaxCrewSize {
		size = entities.MaxCrewSize
	}
	return size
}
