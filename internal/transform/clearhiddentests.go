package transform

import (
	"context"
	"fmt"
	"strings"

	"chalk/internal/notebook"
)

// ClearHiddenTests removes fenced hidden-test regions from scored cells
// before release. Unlike solution regions they leave nothing behind; the
// hidden assertions reappear only when sanitization restores the master.
type ClearHiddenTests struct {
	Begin string
	End   string

	EnforceMetadata bool
}

func (ClearHiddenTests) Name() string { return "clearhiddentests" }

func (s ClearHiddenTests) Apply(ctx context.Context, nb *notebook.Notebook, res *Resources) error {
	for i := range nb.Cells {
		c := &nb.Cells[i]
		removed, out, err := removeFencedRegions(string(c.Source), s.Begin, s.End)
		if err != nil {
			return stageErr("clear hidden tests",
				fmt.Sprintf("%s in %s of %s", err, cellRef(c, i), nb.Name))
		}
		if !removed {
			continue
		}
		if s.EnforceMetadata && !c.IsGradedTest() {
			return stageErr("clear hidden tests",
				fmt.Sprintf("hidden test region in unscored %s of %s", cellRef(c, i), nb.Name))
		}
		c.Source = notebook.Source(out)
	}
	return nil
}

func removeFencedRegions(source, begin, end string) (bool, string, error) {
	lines := strings.Split(source, "\n")
	var out []string
	removed := false
	inRegion := false

	for _, line := range lines {
		switch {
		case strings.Contains(line, begin):
			if inRegion {
				return false, "", fmt.Errorf("nested %q fence", begin)
			}
			inRegion = true
			removed = true
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
	if !removed {
		return false, source, nil
	}
	return true, strings.Join(out, "\n"), nil
}
