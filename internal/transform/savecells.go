package transform

import (
	"context"
	"fmt"

	"chalk/internal/gradebook"
	"chalk/internal/logging"
	"chalk/internal/notebook"
	"chalk/internal/services"
)

// SaveCells records the instructor's master copy of every graded, solution,
// or locked cell into the gradebook, along with the notebook itself and its
// kernelspec. Master cells that vanished from the source are removed, unless
// students have already submitted the assignment, in which case removal
// would orphan grading history and the stage fails instead.
type SaveCells struct{}

func (SaveCells) Name() string { return "savecells" }

func (SaveCells) Apply(ctx context.Context, nb *notebook.Notebook, res *Resources) error {
	return res.Gradebook(func(gb *gradebook.Gradebook) error {
		if _, err := gb.UpdateOrCreateNotebook(ctx, nb.Name, res.AssignmentID, nb.KernelspecJSON()); err != nil {
			return err
		}

		existing, err := gb.GradeCells(ctx, nb.Name, res.AssignmentID)
		if err != nil {
			return err
		}

		seen := map[string]bool{}
		for i := range nb.Cells {
			c := &nb.Cells[i]
			if !c.IsGrade() && !c.IsSolution() && !c.IsLocked() {
				continue
			}
			id := c.GradeID()
			seen[id] = true
			cell := gradebook.GradeCell{
				Name:       id,
				Notebook:   nb.Name,
				Assignment: res.AssignmentID,
				CellType:   c.Kind,
				Grade:      c.IsGrade(),
				Solution:   c.IsSolution(),
				Locked:     c.IsLocked(),
				Source:     string(c.Source),
				Checksum:   c.Checksum(),
				MaxScore:   c.Points(),
			}
			if err := gb.SaveGradeCell(ctx, cell); err != nil {
				return err
			}
		}

		var stale []string
		for id := range existing {
			if !seen[id] {
				stale = append(stale, id)
			}
		}
		if len(stale) == 0 {
			return nil
		}

		count, err := gb.SubmissionCount(ctx, res.AssignmentID)
		if err != nil {
			return err
		}
		if count > 0 {
			return services.Wrap(services.ErrConflictingState, "transform", "save cells",
				fmt.Sprintf("%s dropped graded cells %v but %d submissions exist",
					nb.Name, stale, count), nil)
		}
		for _, id := range stale {
			res.Log().Info("removing stale master cell",
				logging.String(logging.FieldNotebook, nb.Name),
				logging.String("grade_id", id))
			if err := gb.RemoveGradeCell(ctx, id, nb.Name, res.AssignmentID); err != nil {
				return err
			}
		}
		return nil
	})
}
