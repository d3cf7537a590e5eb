package transform

import (
	"context"

	"chalk/internal/checksum"
	"chalk/internal/notebook"
)

// ComputeChecksums stamps a content fingerprint on every graded, solution,
// or locked cell so tampering is detectable after collection.
type ComputeChecksums struct{}

func (ComputeChecksums) Name() string { return "computechecksums" }

func (ComputeChecksums) Apply(ctx context.Context, nb *notebook.Notebook, res *Resources) error {
	for i := range nb.Cells {
		c := &nb.Cells[i]
		if !c.IsGrade() && !c.IsSolution() && !c.IsLocked() {
			continue
		}
		c.SetChecksum(checksum.Compute(c))
	}
	return nil
}
