package transform

import (
	"context"

	"chalk/internal/gradebook"
	"chalk/internal/notebook"
)

// SaveAutoGrades scores each graded cell of an executed submission and
// writes the results to the gradebook. A scored code cell earns full points
// when none of its outputs records an error; scored solution cells and
// non-code cells are flagged for manual review.
type SaveAutoGrades struct{}

func (SaveAutoGrades) Name() string { return "saveautogrades" }

func (SaveAutoGrades) Apply(ctx context.Context, nb *notebook.Notebook, res *Resources) error {
	return res.Gradebook(func(gb *gradebook.Gradebook) error {
		for i := range nb.Cells {
			c := &nb.Cells[i]
			if !c.IsGrade() || c.GradeID() == "" {
				continue
			}

			grade := gradebook.Grade{
				Cell:       c.GradeID(),
				Notebook:   nb.Name,
				Assignment: res.AssignmentID,
				Student:    res.StudentID,
				MaxScore:   c.Points(),
			}
			switch {
			case c.Kind != notebook.KindCode:
				grade.NeedsManual = true
			case c.IsSolution():
				grade.AutoScore = scoreOutputs(c)
				grade.NeedsManual = true
			default:
				grade.AutoScore = scoreOutputs(c)
			}
			if err := gb.SaveAutoGrade(ctx, grade); err != nil {
				return err
			}
		}
		return nil
	})
}

func scoreOutputs(c *notebook.Cell) float64 {
	for _, out := range c.Outputs {
		if out.IsError() {
			return 0
		}
	}
	return c.Points()
}
