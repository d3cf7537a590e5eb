package testsupport

import (
	"testing"

	"chalk/internal/notebook"
)

// SolutionCell builds a code cell flagged as a solution region.
func SolutionCell(source, gradeID string) notebook.Cell {
	cell := notebook.NewCodeCell(source)
	cell.SetSolution(true)
	cell.SetGradeID(gradeID)
	return cell
}

// TestCell builds a scored autograder test cell.
func TestCell(source, gradeID string, points float64) notebook.Cell {
	cell := notebook.NewCodeCell(source)
	cell.SetGrade(true)
	cell.SetGradeID(gradeID)
	cell.SetPoints(points)
	return cell
}

// WriteNotebook persists a notebook for tests, failing on error.
func WriteNotebook(t testing.TB, nb *notebook.Notebook, path string) {
	t.Helper()

	if err := nb.Write(path); err != nil {
		t.Fatalf("notebook.Write %s: %v", path, err)
	}
}
