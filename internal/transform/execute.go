package transform

import (
	"context"

	"chalk/internal/executor"
	"chalk/internal/notebook"
	"chalk/internal/services"
)

// Execute runs the notebook through the configured kernel so graded cells
// capture fresh outputs.
type Execute struct {
	Runner executor.Executor
}

func (Execute) Name() string { return "execute" }

func (s Execute) Apply(ctx context.Context, nb *notebook.Notebook, res *Resources) error {
	if s.Runner == nil {
		return services.Wrap(services.ErrConfiguration, "transform", "execute",
			"no executor configured", nil)
	}
	return s.Runner.Execute(ctx, nb)
}
