// Package transform holds the individual document transformation stages. A
// stage mutates one notebook in place; the pipeline runs an ordered list of
// stages over each document and writes the result only when every stage
// succeeds. Stage failures wrap services.ErrStage so the runner can record
// them per document without aborting the batch; configuration and gradebook
// consistency failures stay fatal.
package transform

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"chalk/internal/gradebook"
	"chalk/internal/logging"
	"chalk/internal/notebook"
	"chalk/internal/services"
)

// Stage is one transformation applied to a notebook document.
type Stage interface {
	Name() string
	Apply(ctx context.Context, nb *notebook.Notebook, res *Resources) error
}

// Resources carries the per-document identities and shared handles stages
// need beyond the document itself.
type Resources struct {
	AssignmentID string
	StudentID    string

	// DatabasePath locates the gradebook. Empty when database access is
	// disabled for the run; stages that require the gradebook then fail.
	DatabasePath string

	// Timestamp is the submission turn-in time, when one was recovered.
	Timestamp *time.Time

	Logger *slog.Logger
}

// Log returns the run logger, never nil.
func (r *Resources) Log() *slog.Logger {
	if r == nil || r.Logger == nil {
		return logging.NewNop()
	}
	return r.Logger
}

// Gradebook opens the run's gradebook for the duration of fn.
func (r *Resources) Gradebook(fn func(*gradebook.Gradebook) error) error {
	if r == nil || r.DatabasePath == "" {
		return services.Wrap(services.ErrConfiguration, "transform", "open gradebook",
			"database access disabled for a stage that requires it", nil)
	}
	return gradebook.With(r.DatabasePath, fn)
}

// cellRef names a cell in stage error messages, preferring its grade id.
func cellRef(c *notebook.Cell, index int) string {
	if id := c.GradeID(); id != "" {
		return fmt.Sprintf("cell %q", id)
	}
	return fmt.Sprintf("cell #%d", index)
}

func stageErr(operation, message string) error {
	return services.Wrap(services.ErrStage, "transform", operation, message, nil)
}
