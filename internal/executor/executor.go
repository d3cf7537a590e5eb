// Package executor runs submitted notebooks through an external kernel
// process. The document is written to a scratch directory, executed in place
// by the configured command, and read back so later stages see the captured
// outputs.
package executor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"chalk/internal/logging"
	"chalk/internal/notebook"
	"chalk/internal/services"
)

var commandContext = exec.CommandContext

// Executor runs one notebook and replaces its cells with executed results.
type Executor interface {
	Execute(ctx context.Context, nb *notebook.Notebook) error
}

// Func adapts a function to the Executor interface.
type Func func(ctx context.Context, nb *notebook.Notebook) error

func (f Func) Execute(ctx context.Context, nb *notebook.Notebook) error {
	return f(ctx, nb)
}

// Nop performs no execution and leaves the notebook untouched.
type Nop struct{}

func (Nop) Execute(context.Context, *notebook.Notebook) error { return nil }

// Command shells out to a notebook execution tool. The notebook path is
// appended as the final argument and the tool is expected to rewrite the
// file in place.
type Command struct {
	argv    []string
	timeout time.Duration
	logger  *slog.Logger
}

// NewCommand builds a Command executor. A non-positive timeout disables the
// per-run deadline.
func NewCommand(argv []string, timeout time.Duration, logger *slog.Logger) *Command {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Command{argv: argv, timeout: timeout, logger: logger}
}

func (c *Command) Execute(ctx context.Context, nb *notebook.Notebook) error {
	if len(c.argv) == 0 {
		return services.Wrap(services.ErrConfiguration, "executor", "execute notebook",
			"execute command not configured", nil)
	}

	dir, err := os.MkdirTemp("", "chalk-exec-")
	if err != nil {
		return fmt.Errorf("create scratch directory: %w", err)
	}
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, nb.Name+notebook.Ext)
	if err := nb.Write(path); err != nil {
		return err
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	args := append(append([]string(nil), c.argv[1:]...), path)
	cmd := commandContext(ctx, c.argv[0], args...)
	var output bytes.Buffer
	cmd.Stdout = &output
	cmd.Stderr = &output

	c.logger.Debug("executing notebook",
		logging.String(logging.FieldNotebook, nb.Name),
		logging.String("command", strings.Join(c.argv, " ")))

	if err := cmd.Run(); err != nil {
		detail := tail(output.String(), 2048)
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return services.Wrap(services.ErrStage, "executor", "execute notebook",
				fmt.Sprintf("timed out after %s", c.timeout), err)
		}
		if detail != "" {
			detail = ": " + detail
		}
		return services.Wrap(services.ErrStage, "executor", "execute notebook",
			"execution failed"+detail, err)
	}

	executed, err := notebook.Read(path)
	if err != nil {
		return services.Wrap(services.ErrStage, "executor", "execute notebook",
			"executed document unreadable", err)
	}
	nb.Cells = executed.Cells
	nb.Metadata = executed.Metadata
	nb.NBFormat = executed.NBFormat
	nb.NBFormatMinor = executed.NBFormatMinor
	return nil
}

func tail(s string, limit int) string {
	s = strings.TrimSpace(s)
	if len(s) <= limit {
		return s
	}
	return s[len(s)-limit:]
}

var _ Executor = (*Command)(nil)
var _ Executor = Func(nil)
var _ Executor = Nop{}
