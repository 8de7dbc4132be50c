package memory

import (
	"strings"
	"time"

	"github.com/kaizen-line/inspector-dispatch/pkg/domain/entities"
	"github.com/kaizen-line/inspector-dispatch/pkg/domain/repositories"
)

// Repositories implements every domain/repositories source interface
// over one Fixtures snapshot.
type Repositories struct {
	Fixtures *Fixtures
}

// NewRepositories builds a Repositories backed by f.
func NewRepositories(f *Fixtures) *Repositories {
	return &Repositories{Fixtures: f}
}

var (
	_ repositories.ShipmentAggregateSource        = (*Repositories)(nil)
	_ repositories.InventoryLotSource             = (*Repositories)(nil)
	_ repositories.ProductMasterSource            = (*Repositories)(nil)
	_ repositories.InspectorMasterSource          = (*Repositories)(nil)
	_ repositories.SkillMatrixSource              = (*Repositories)(nil)
	_ repositories.VacationSource                 = (*Repositories)(nil)
	_ repositories.CleaningFeedSource             = (*Repositories)(nil)
	_ repositories.AdvanceLotRegistrySource        = (*Repositories)(nil)
	_ repositories.ExcludedProductSource          = (*Repositories)(nil)
	_ repositories.InspectionTargetKeywordSource  = (*Repositories)(nil)
	_ repositories.FixedPinSource                 = (*Repositories)(nil)
)

// ShipmentAggregates filters the fixture rows to those with a dated
// shipping_date inside [startDate, endDate]; rows tagged
// same-day-cleaning/advance-inspection/unparsable always pass through,
// since the date window only bounds concrete calendar dates.
func (r *Repositories) ShipmentAggregates(startDate, endDate string) ([]repositories.ShipmentAggregateRow, error) {
	start, startErr := time.Parse("2006-01-02", startDate)
	end, endErr := time.Parse("2006-01-02", endDate)

	var out []repositories.ShipmentAggregateRow
	for _, row := range r.Fixtures.ShipmentAggregates {
		if startErr == nil && endErr == nil && row.ShippingDate.Kind == entities.Dated {
			if row.ShippingDate.Date.Before(start) || row.ShippingDate.Date.After(end) {
				continue
			}
		}
		out = append(out, row)
	}
	return out, nil
}

func (r *Repositories) InventoryLotsForProduct(productNumber string) ([]repositories.InventoryLotRow, error) {
	return append([]repositories.InventoryLotRow(nil), r.Fixtures.InventoryLots[productNumber]...), nil
}

func (r *Repositories) ProductProcessTimes(productNumber string) (map[string]float64, error) {
	times, ok := r.Fixtures.ProductProcessTimes[productNumber]
	if !ok {
		return nil, nil
	}
	out := make(map[string]float64, len(times))
	for k, v := range times {
		out[k] = v
	}
	return out, nil
}

func (r *Repositories) Inspectors() ([]entities.Inspector, error) {
	return append([]entities.Inspector(nil), r.Fixtures.Inspectors...), nil
}

func (r *Repositories) SkillCells() ([]entities.SkillCell, error) {
	return append([]entities.SkillCell(nil), r.Fixtures.SkillCells...), nil
}

// AbsentInspectorIDs returns the fixture's vacation map unfiltered by
// date; callers are expected to supply a Fixtures snapshot already
// scoped to the run date, matching the source vacation sheet's
// per-month-filtered-to-run-date shape (spec.md §6).
func (r *Repositories) AbsentInspectorIDs(date time.Time) (map[string]string, error) {
	out := make(map[string]string, len(r.Fixtures.Vacations))
	for k, v := range r.Fixtures.Vacations {
		out[k] = v
	}
	return out, nil
}

func (r *Repositories) CleaningRequests() ([]repositories.CleaningFeedRow, error) {
	return append([]repositories.CleaningFeedRow(nil), r.Fixtures.CleaningFeed...), nil
}

func (r *Repositories) AdvanceLotRegistrations() ([]repositories.AdvanceLotRegistration, error) {
	return append([]repositories.AdvanceLotRegistration(nil), r.Fixtures.AdvanceLotRegistrations...), nil
}

func (r *Repositories) ExcludedProducts() (map[string]bool, error) {
	out := make(map[string]bool, len(r.Fixtures.ExcludedProducts))
	for _, p := range r.Fixtures.ExcludedProducts {
		out[p] = true
	}
	return out, nil
}

func (r *Repositories) InspectionTargetKeywords() ([]string, error) {
	return append([]string(nil), r.Fixtures.InspectionTargetKeywords...), nil
}

func (r *Repositories) FixedPins() ([]entities.FixedPin, error) {
	var out []entities.FixedPin
	for _, p := range r.Fixtures.FixedPins {
		ids := make([]string, 0, len(p.InspectorIDs))
		for _, id := range p.InspectorIDs {
			ids = append(ids, strings.TrimSpace(id))
		}
		p.InspectorIDs = ids
		out = append(out, p)
	}
	return out, nil
}
