package transform

import (
	"context"
	"fmt"

	"chalk/internal/logging"
	"chalk/internal/notebook"
)

// CheckCellMetadata validates grading metadata across the document: every
// graded, solution, or locked cell needs a unique non-empty grade id, scored
// markdown cells must also be solutions, and scored cells need a point
// value. Validation fails fast so a malformed master never reaches students
// and a tampered submission never reaches the gradebook.
type CheckCellMetadata struct{}

func (CheckCellMetadata) Name() string { return "checkmetadata" }

func (CheckCellMetadata) Apply(ctx context.Context, nb *notebook.Notebook, res *Resources) error {
	seen := map[string]bool{}
	for i := range nb.Cells {
		c := &nb.Cells[i]
		graded := c.IsGrade() || c.IsSolution() || c.IsLocked()
		if !graded {
			continue
		}

		id := c.GradeID()
		if id == "" {
			return stageErr("check metadata",
				fmt.Sprintf("%s of %s has no grade id", cellRef(c, i), nb.Name))
		}
		if seen[id] {
			return stageErr("check metadata",
				fmt.Sprintf("duplicate grade id %q in %s", id, nb.Name))
		}
		seen[id] = true

		if c.IsGrade() {
			if c.Kind != notebook.KindCode && !c.IsSolution() {
				return stageErr("check metadata",
					fmt.Sprintf("scored %s cell %q in %s must also be a solution", c.Kind, id, nb.Name))
			}
			if !c.HasPoints() {
				res.Log().Warn("scored cell has no point value, assuming zero",
					logging.String(logging.FieldNotebook, nb.Name),
					logging.String("grade_id", id))
				c.SetPoints(0)
			}
		}
	}
	return nil
}
