package transform

import (
	"context"

	"chalk/internal/notebook"
)

// LockCells stamps the locked flag on cells students must not edit or
// delete, according to the course's locking policy.
type LockCells struct {
	LockAll      bool
	LockSolution bool
	LockGrade    bool
	LockReadonly bool
}

func (LockCells) Name() string { return "lockcells" }

func (s LockCells) Apply(ctx context.Context, nb *notebook.Notebook, res *Resources) error {
	for i := range nb.Cells {
		c := &nb.Cells[i]
		if !c.HasGradingMetadata() {
			continue
		}
		switch {
		case s.LockAll:
			c.SetLocked(true)
		case c.IsSolution():
			c.SetLocked(s.LockSolution)
		case c.IsGrade():
			c.SetLocked(s.LockGrade)
		case c.IsLocked():
			c.SetLocked(s.LockReadonly)
		}
	}
	return nil
}
