package repositories

import "time"

// VacationSource reports which inspectors are absent on a given date
// (spec.md §3, §6). Absence codes are opaque; non-empty means
// unavailable.
type VacationSource interface {
	AbsentInspectorIDs(date time.Time) (map[string]string, error)
}
