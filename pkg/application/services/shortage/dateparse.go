package shortage

import "time"

// instructionDateLayouts are tried in order; instruction_date arrives as
// an opaque string from the collaborator frame (spec.md §6).
var instructionDateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006/01/02",
	"01/02/2006",
}

// instructionDateLess orders two instruction_date strings ascending.
// When either value fails to parse, it falls back to lexicographic
// order, which already sorts correctly for the common YYYY-MM-DD layout.
func instructionDateLess(a, b string) bool {
	at, aok := parseInstructionDate(a)
	bt, bok := parseInstructionDate(b)
	if aok && bok {
		return at.Before(bt)
	}
	return a < b
}

func parseInstructionDate(s string) (time.Time, bool) {
	for _, layout := range instructionDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
