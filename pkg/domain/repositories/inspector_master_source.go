package repositories

import "github.com/kaizen-line/inspector-dispatch/pkg/domain/entities"

// InspectorMasterSource provides the inspector roster, parsed from the
// inspector master CSV in a real deployment (header on row 2, new
// product team flag on column 8 = "★" per spec.md §6) — parsing itself
// is a non-goal here.
type InspectorMasterSource interface {
	Inspectors() ([]entities.Inspector, error)
}
