package repositories

import "github.com/kaizen-line/inspector-dispatch/pkg/domain/entities"

// SkillMatrixSource provides the ternary skill matrix (spec.md §3, §6).
type SkillMatrixSource interface {
	SkillCells() ([]entities.SkillCell, error)
}
