package transform

import (
	"context"
	"time"

	"chalk/internal/gradebook"
	"chalk/internal/logging"
	"chalk/internal/notebook"
)

// AssignLatePenalty measures how late the submission was turned in against
// the assignment's due date and surfaces it at warning level. Penalty policy
// is the instructor's call; the measured lateness stays queryable through
// the stored submission timestamp.
type AssignLatePenalty struct{}

func (AssignLatePenalty) Name() string { return "latepenalty" }

func (AssignLatePenalty) Apply(ctx context.Context, nb *notebook.Notebook, res *Resources) error {
	return res.Gradebook(func(gb *gradebook.Gradebook) error {
		assignment, err := gb.FindAssignment(ctx, res.AssignmentID)
		if err != nil {
			return err
		}
		sub := gradebook.Submission{
			Assignment: res.AssignmentID,
			Student:    res.StudentID,
			Timestamp:  res.Timestamp,
		}
		late := sub.SecondsLate(assignment.DueDate)
		if late <= 0 {
			return nil
		}
		res.Log().Warn("submission is late",
			logging.String(logging.FieldAssignment, res.AssignmentID),
			logging.String(logging.FieldStudent, res.StudentID),
			logging.String(logging.FieldNotebook, nb.Name),
			logging.Int64("seconds_late", late),
			logging.String("late_by", (time.Duration(late)*time.Second).String()))
		return nil
	})
}
