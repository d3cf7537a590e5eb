package transform

import (
	"context"

	"chalk/internal/gradebook"
	"chalk/internal/logging"
	"chalk/internal/notebook"
)

// OverwriteCells restores the instructor's master over each graded cell of a
// submission: flags, point values, and checksums always; source and cell
// type too for protected cells (tests and locked content), so editing them
// never pays off. Cells whose grade id is unknown to the gradebook are
// demoted to plain cells.
type OverwriteCells struct{}

func (OverwriteCells) Name() string { return "overwritecells" }

func (OverwriteCells) Apply(ctx context.Context, nb *notebook.Notebook, res *Resources) error {
	return res.Gradebook(func(gb *gradebook.Gradebook) error {
		masters, err := gb.GradeCells(ctx, nb.Name, res.AssignmentID)
		if err != nil {
			return err
		}

		for i := range nb.Cells {
			c := &nb.Cells[i]
			id := c.GradeID()
			if id == "" {
				continue
			}
			master, ok := masters[id]
			if !ok {
				res.Log().Warn("demoting cell unknown to the gradebook",
					logging.String(logging.FieldNotebook, nb.Name),
					logging.String("grade_id", id))
				c.ClearGradingMetadata()
				continue
			}

			c.SetGrade(master.Grade)
			c.SetSolution(master.Solution)
			c.SetLocked(master.Locked)
			c.SetChecksum(master.Checksum)
			if master.Grade {
				c.SetPoints(master.MaxScore)
			}
			if master.Protected() {
				c.Kind = master.CellType
				c.Source = notebook.Source(master.Source)
			}
		}
		return nil
	})
}
