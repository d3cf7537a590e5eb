package transform

import (
	"context"

	"chalk/internal/notebook"
)

// ClearOutput strips captured outputs and execution counts from code cells.
type ClearOutput struct{}

func (ClearOutput) Name() string { return "clearoutput" }

func (ClearOutput) Apply(ctx context.Context, nb *notebook.Notebook, res *Resources) error {
	for i := range nb.Cells {
		if nb.Cells[i].Kind != notebook.KindCode {
			continue
		}
		nb.Cells[i].Outputs = nil
		nb.Cells[i].ExecutionCount = nil
	}
	return nil
}
