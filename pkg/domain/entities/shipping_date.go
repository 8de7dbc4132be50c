package entities

import "time"

// ShippingDate is the tagged variant of the source's
// `DATE | "advance-inspection" | "same-day-cleaning"` column.
type ShippingDate struct {
	Kind ShippingDateKind
	Date time.Time // only meaningful when Kind == Dated
}

// NewDatedShippingDate builds a concrete calendar-date ShippingDate.
func NewDatedShippingDate(d time.Time) ShippingDate {
	return ShippingDate{Kind: Dated, Date: d}
}

// SameDayCleaningShippingDate is the "same-day-cleaning" sentinel value.
func SameDayCleaningShippingDate() ShippingDate {
	return ShippingDate{Kind: SameDayCleaning}
}

// AdvanceInspectionShippingDate is the "advance-inspection" sentinel value.
func AdvanceInspectionShippingDate() ShippingDate {
	return ShippingDate{Kind: AdvanceInspection}
}

// UnparsableShippingDate marks a missing or unparsable shipping date.
func UnparsableShippingDate() ShippingDate {
	return ShippingDate{Kind: Unparsable}
}

// NextBusinessDay implements spec.md §4.2's rule: Friday -> next Monday,
// any other day -> the next calendar day. Weekends are never a
// "today" run date in this domain, so only Friday gets special handling,
// matching the source exactly.
func NextBusinessDay(today time.Time) time.Time {
	switch today.Weekday() {
	case time.Friday:
		return today.AddDate(0, 0, 3)
	default:
		return today.AddDate(0, 0, 1)
	}
}

// PriorityClass returns the dedup priority class from spec.md §4.2
// (0 = highest priority to keep). `today` is the run date.
func (s ShippingDate) PriorityClass(today time.Time) int {
	switch s.Kind {
	case SameDayCleaning:
		return 1
	case AdvanceInspection:
		return 2
	case Dated:
		if sameCalendarDay(s.Date, today) {
			return 0
		}
		if sameCalendarDay(s.Date, NextBusinessDay(today)) {
			return 3
		}
		if s.Date.After(today) {
			return 4
		}
		return 5
	default:
		return 5
	}
}

func sameCalendarDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
