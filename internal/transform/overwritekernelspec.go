package transform

import (
	"context"
	"fmt"

	"chalk/internal/gradebook"
	"chalk/internal/notebook"
	"chalk/internal/services"
)

// OverwriteKernelspec forces the execution environment recorded by the
// instructor over whatever the submission claims, so grading always runs
// against the course kernel.
type OverwriteKernelspec struct{}

func (OverwriteKernelspec) Name() string { return "overwritekernelspec" }

func (OverwriteKernelspec) Apply(ctx context.Context, nb *notebook.Notebook, res *Resources) error {
	return res.Gradebook(func(gb *gradebook.Gradebook) error {
		rec, err := gb.FindNotebook(ctx, nb.Name, res.AssignmentID)
		if err != nil {
			return err
		}
		if rec.Kernelspec == "" {
			return nil
		}
		if err := nb.SetKernelspecJSON(rec.Kernelspec); err != nil {
			return services.Wrap(services.ErrStage, "transform", "overwrite kernelspec",
				fmt.Sprintf("stored kernelspec for %s unreadable", nb.Name), err)
		}
		return nil
	})
}
