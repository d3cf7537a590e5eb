package transform

import (
	"context"
	"strings"

	"chalk/internal/notebook"
)

const truncationNotice = "... output truncated ..."

// LimitOutput caps captured output size so a runaway print loop in one
// submission cannot bloat the autograded tree or the gradebook.
type LimitOutput struct {
	MaxBytes int
	MaxLines int
}

func (LimitOutput) Name() string { return "limitoutput" }

func (s LimitOutput) Apply(ctx context.Context, nb *notebook.Notebook, res *Resources) error {
	for i := range nb.Cells {
		c := &nb.Cells[i]
		if c.Kind != notebook.KindCode {
			continue
		}
		for j := range c.Outputs {
			out := &c.Outputs[j]
			out.Text = notebook.Source(s.truncate(string(out.Text)))
			if s.MaxLines > 0 && len(out.Traceback) > s.MaxLines {
				out.Traceback = append(out.Traceback[:s.MaxLines], truncationNotice)
			}
		}
	}
	return nil
}

func (s LimitOutput) truncate(text string) string {
	truncated := false
	if s.MaxLines > 0 {
		if lines := strings.SplitAfter(text, "\n"); len(lines) > s.MaxLines {
			text = strings.Join(lines[:s.MaxLines], "")
			truncated = true
		}
	}
	if s.MaxBytes > 0 && len(text) > s.MaxBytes {
		text = text[:s.MaxBytes]
		truncated = true
	}
	if truncated {
		if !strings.HasSuffix(text, "\n") {
			text += "\n"
		}
		text += truncationNotice + "\n"
	}
	return text
}
