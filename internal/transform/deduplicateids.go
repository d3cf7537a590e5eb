package transform

import (
	"context"

	"chalk/internal/logging"
	"chalk/internal/notebook"
)

// DeduplicateIDs demotes cells whose grade id duplicates an earlier one to
// plain cells. Duplicates appear when students copy and paste graded cells;
// the first occurrence in document order wins.
type DeduplicateIDs struct{}

func (DeduplicateIDs) Name() string { return "deduplicateids" }

func (DeduplicateIDs) Apply(ctx context.Context, nb *notebook.Notebook, res *Resources) error {
	seen := map[string]bool{}
	for i := range nb.Cells {
		c := &nb.Cells[i]
		id := c.GradeID()
		if id == "" {
			continue
		}
		if seen[id] {
			res.Log().Warn("demoting cell with duplicate grade id",
				logging.String(logging.FieldNotebook, nb.Name),
				logging.String("grade_id", id))
			c.ClearGradingMetadata()
			continue
		}
		seen[id] = true
	}
	return nil
}
