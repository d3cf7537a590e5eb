package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"

	"chalk/internal/config"
	"chalk/internal/coursedir"
	"chalk/internal/logging"
	"chalk/internal/notebook"
	"chalk/internal/services"
	"chalk/internal/transform"
)

// Runner executes pipeline passes over a course tree.
type Runner struct {
	cfg    *config.Config
	layout *coursedir.Layout
	logger *slog.Logger
}

// NewRunner builds a runner over the configured course tree.
func NewRunner(cfg *config.Config, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Runner{
		cfg:    cfg,
		layout: coursedir.New(cfg),
		logger: logging.NewComponentLogger(logger, "pipeline"),
	}
}

// AssignOptions configure a distribution run.
type AssignOptions struct {
	// Create registers the assignment in the gradebook when missing.
	Create bool
	// NoDatabase skips every gradebook-backed stage.
	NoDatabase bool
	// NoMetadata skips metadata validation and fence enforcement.
	NoMetadata bool
	// Force overwrites release documents that already exist.
	Force bool
}

// AutogradeOptions configure a grading run.
type AutogradeOptions struct {
	// Create registers unknown students in the gradebook when missing.
	Create bool
	// NoExecute skips kernel execution; scoring sees the submitted outputs.
	NoExecute bool
	// StudentID restricts the run to one student.
	StudentID string
	// NotebookPattern restricts the run to notebook ids matching a glob.
	NotebookPattern string
}

func newRunID() string {
	return strings.SplitN(uuid.NewString(), "-", 2)[0]
}

// runStages applies the ordered stage list to one document, stamping the
// stage name into the context for error wrapping and log correlation.
func runStages(ctx context.Context, stages []transform.Stage, nb *notebook.Notebook, res *transform.Resources) error {
	for _, st := range stages {
		sctx := services.WithStage(ctx, st.Name())
		if err := st.Apply(sctx, nb, res); err != nil {
			return fmt.Errorf("stage %s: %w", st.Name(), err)
		}
	}
	return nil
}

// resultSink collects per-document outcomes from concurrent workers.
type resultSink struct {
	mu     sync.Mutex
	result *Result
}

func (s *resultSink) record(doc DocumentResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.result.Documents = append(s.result.Documents, doc)
}
