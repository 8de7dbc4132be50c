package repositories

import "github.com/kaizen-line/inspector-dispatch/pkg/domain/entities"

// FixedPinSource provides the fixed-inspector pin rules (spec.md §3, §6).
// Inspector names are case-sensitive and trimmed by the implementation
// before they reach this interface.
type FixedPinSource interface {
	FixedPins() ([]entities.FixedPin, error)
}
