package transform

import (
	"context"
	"fmt"
	"strings"

	"chalk/internal/notebook"
)

// ClearSolutions replaces instructor solution regions with language-neutral
// stubs. Regions are fenced by begin/end marker lines; a solution cell with
// no fences has its entire source replaced.
type ClearSolutions struct {
	CodeStub string
	TextStub string
	Begin    string
	End      string

	// EnforceMetadata rejects fenced regions inside cells that are not
	// marked as solutions, which would otherwise leak removal silently.
	EnforceMetadata bool
}

func (ClearSolutions) Name() string { return "clearsolutions" }

func (s ClearSolutions) Apply(ctx context.Context, nb *notebook.Notebook, res *Resources) error {
	for i := range nb.Cells {
		c := &nb.Cells[i]
		stub := s.TextStub
		if c.Kind == notebook.KindCode {
			stub = s.CodeStub
		}

		replaced, out, err := replaceFencedRegions(string(c.Source), s.Begin, s.End, stub)
		if err != nil {
			return stageErr("clear solutions",
				fmt.Sprintf("%s in %s of %s", err, cellRef(c, i), nb.Name))
		}
		if replaced {
			if s.EnforceMetadata && !c.IsSolution() {
				return stageErr("clear solutions",
					fmt.Sprintf("solution region in unmarked %s of %s", cellRef(c, i), nb.Name))
			}
			c.Source = notebook.Source(out)
			continue
		}
		if c.IsSolution() {
			c.Source = notebook.Source(stub)
		}
	}
	return nil
}

// replaceFencedRegions substitutes each begin/end delimited region with the
// stub, preserving the indentation of the begin line. The marker matches as
// a substring so any comment syntax around it works.
func replaceFencedRegions(source, begin, end, stub string) (bool, string, error) {
	lines := strings.Split(source, "\n")
	var out []string
	replaced := false
	inRegion := false
	indent := ""

	for _, line := range lines {
		switch {
		case strings.Contains(line, begin):
			if inRegion {
				return false, "", fmt.Errorf("nested %q fence", begin)
			}
			inRegion = true
			replaced = true
			indent = line[:len(line)-len(strings.TrimLeft(line, " \t"))]
			for _, stubLine := range strings.Split(stub, "\n") {
				out = append(out, indent+stubLine)
			}
		case strings.Contains(line, end):
			if !inRegion {
				return false, "", fmt.Errorf("%q fence without %q", end, begin)
			}
			inRegion = false
		case inRegion:
			// dropped with the region
		default:
			out = append(out, line)
		}
	}
	if inRegion {
		return false, "", fmt.Errorf("%q fence without %q", begin, end)
	}
	if !replaced {
		return false, source, nil
	}
	return true, strings.Join(out, "\n"), nil
}
