package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"chalk/internal/config"
	"chalk/internal/coursedir"
	"chalk/internal/gradebook"
	"chalk/internal/notebook"
	"chalk/internal/services"
	"chalk/internal/testsupport"
)

func writeMasterNotebook(t *testing.T, cfg *config.Config, assignmentID, notebookID string) {
	t.Helper()
	nb := notebook.New(notebookID)
	nb.SetKernelspec("python3", "Python 3", "python")

	solution := notebook.NewCodeCell(
		"def square(x):\n    ### BEGIN SOLUTION\n    return x * x\n    ### END SOLUTION")
	solution.SetSolution(true)
	solution.SetGradeID("sol_square")

	test := notebook.NewCodeCell(
		"assert square(2) == 4\n### BEGIN HIDDEN TESTS\nassert square(-3) == 9\n### END HIDDEN TESTS")
	test.SetGrade(true)
	test.SetGradeID("test_square")
	test.SetPoints(5)

	nb.Cells = append(nb.Cells, solution, test)

	layout := coursedir.New(cfg)
	path := layout.NotebookPath(coursedir.StageSource, coursedir.AuthorStudent, assignmentID, notebookID)
	if err := nb.Write(path); err != nil {
		t.Fatalf("write master: %v", err)
	}
}

func submitReleased(t *testing.T, cfg *config.Config, assignmentID, notebookID, studentID string, mutate func(*notebook.Notebook)) {
	t.Helper()
	layout := coursedir.New(cfg)
	released, err := notebook.Read(layout.NotebookPath(coursedir.StageRelease, coursedir.AuthorStudent, assignmentID, notebookID))
	if err != nil {
		t.Fatalf("read released: %v", err)
	}
	if mutate != nil {
		mutate(released)
	}
	dir := layout.AssignmentDir(coursedir.StageSubmitted, studentID, assignmentID)
	if err := released.Write(filepath.Join(dir, notebookID+coursedir.NotebookExt)); err != nil {
		t.Fatalf("write submission: %v", err)
	}
	if err := coursedir.WriteTimestamp(dir, time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)); err != nil {
		t.Fatalf("write timestamp: %v", err)
	}
}

func TestAssignProducesRelease(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	writeMasterNotebook(t, cfg, "ps1", "problem1")
	runner := NewRunner(cfg, nil)

	result, err := runner.Assign(context.Background(), "ps1", AssignOptions{Create: true})
	if err != nil {
		t.Fatalf("Assign: %v", err)
	}
	if !result.OK() || len(result.Documents) != 1 {
		t.Fatalf("unexpected result: %+v", result)
	}

	layout := coursedir.New(cfg)
	released, err := notebook.Read(layout.NotebookPath(coursedir.StageRelease, coursedir.AuthorStudent, "ps1", "problem1"))
	if err != nil {
		t.Fatalf("read released: %v", err)
	}

	sol := string(released.Cells[0].Source)
	if strings.Contains(sol, "return x * x") {
		t.Fatalf("solution leaked into release: %q", sol)
	}
	if !strings.Contains(sol, "YOUR CODE HERE") {
		t.Fatalf("stub missing from release: %q", sol)
	}
	test := string(released.Cells[1].Source)
	if strings.Contains(test, "square(-3)") {
		t.Fatalf("hidden test leaked into release: %q", test)
	}
	for i := range released.Cells {
		if released.Cells[i].Checksum() == "" {
			t.Fatalf("cell %d released without checksum", i)
		}
	}

	err = gradebook.With(cfg.DatabasePath(), func(gb *gradebook.Gradebook) error {
		cells, err := gb.GradeCells(context.Background(), "problem1", "ps1")
		if err != nil {
			return err
		}
		master := cells["test_square"]
		if !strings.Contains(master.Source, "square(-3)") {
			t.Fatalf("master cell must keep hidden tests, got %q", master.Source)
		}
		if master.MaxScore != 5 {
			t.Fatalf("master points not recorded: %+v", master)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("verify gradebook: %v", err)
	}
}

func TestAssignRefusesOverwriteWithoutForce(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	writeMasterNotebook(t, cfg, "ps1", "problem1")
	runner := NewRunner(cfg, nil)
	ctx := context.Background()

	if _, err := runner.Assign(ctx, "ps1", AssignOptions{Create: true}); err != nil {
		t.Fatalf("first Assign: %v", err)
	}

	result, err := runner.Assign(ctx, "ps1", AssignOptions{})
	if err != nil {
		t.Fatalf("second Assign must not be fatal: %v", err)
	}
	if failed := result.Failed(); len(failed) != 1 || !strings.Contains(failed[0].Err.Error(), "--force") {
		t.Fatalf("expected per-document overwrite failure, got %+v", result)
	}

	if result, err = runner.Assign(ctx, "ps1", AssignOptions{Force: true}); err != nil || !result.OK() {
		t.Fatalf("forced Assign: %v, %+v", err, result)
	}
}

func TestAssignUnknownAssignmentWithoutCreate(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	writeMasterNotebook(t, cfg, "ps1", "problem1")
	runner := NewRunner(cfg, nil)

	_, err := runner.Assign(context.Background(), "ps1", AssignOptions{})
	if !services.Fatal(err) {
		t.Fatalf("unknown assignment without --create must be fatal, got %v", err)
	}
}

func TestAssignCopiesSupportFiles(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	writeMasterNotebook(t, cfg, "ps1", "problem1")
	layout := coursedir.New(cfg)
	srcDir := layout.AssignmentDir(coursedir.StageSource, coursedir.AuthorStudent, "ps1")
	if err := os.WriteFile(filepath.Join(srcDir, "data.csv"), []byte("a,b\n1,2\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	runner := NewRunner(cfg, nil)
	if _, err := runner.Assign(context.Background(), "ps1", AssignOptions{Create: true}); err != nil {
		t.Fatalf("Assign: %v", err)
	}

	copied := filepath.Join(layout.AssignmentDir(coursedir.StageRelease, coursedir.AuthorStudent, "ps1"), "data.csv")
	if _, err := os.Stat(copied); err != nil {
		t.Fatalf("support file not copied: %v", err)
	}
}

func TestAutogradeRoundTrip(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	writeMasterNotebook(t, cfg, "ps1", "problem1")
	runner := NewRunner(cfg, nil)
	ctx := context.Background()

	if _, err := runner.Assign(ctx, "ps1", AssignOptions{Create: true}); err != nil {
		t.Fatalf("Assign: %v", err)
	}

	// The student fills in the solution and, less honestly, rewrites the
	// test cell to always pass with more points.
	submitReleased(t, cfg, "ps1", "problem1", "hacker", func(nb *notebook.Notebook) {
		nb.Cells[0].Source = "def square(x):\n    return x * x"
		nb.Cells[1].Source = "assert True"
		nb.Cells[1].SetPoints(100)
	})

	result, err := runner.Autograde(ctx, "ps1", AutogradeOptions{Create: true, NoExecute: true})
	if err != nil {
		t.Fatalf("Autograde: %v", err)
	}
	if !result.OK() || len(result.Documents) != 1 {
		t.Fatalf("unexpected result: %+v", result)
	}

	layout := coursedir.New(cfg)
	graded, err := notebook.Read(layout.NotebookPath(coursedir.StageAutograded, "hacker", "ps1", "problem1"))
	if err != nil {
		t.Fatalf("read autograded: %v", err)
	}
	test := string(graded.Cells[1].Source)
	if !strings.Contains(test, "square(-3)") {
		t.Fatalf("master test not restored: %q", test)
	}
	if graded.Cells[1].Points() != 5 {
		t.Fatalf("inflated points survived: %v", graded.Cells[1].Points())
	}

	err = gradebook.With(cfg.DatabasePath(), func(gb *gradebook.Gradebook) error {
		student, err := gb.FindStudent(ctx, "hacker")
		if err != nil {
			return err
		}
		if student.FirstName == "" {
			t.Fatalf("auto-created student has no display name: %+v", student)
		}
		sub, err := gb.FindSubmission(ctx, "ps1", "hacker")
		if err != nil {
			return err
		}
		if sub.Timestamp == nil {
			t.Fatal("submission timestamp not recorded")
		}
		grades, err := gb.Grades(ctx, "problem1", "ps1", "hacker")
		if err != nil {
			return err
		}
		if g := grades["test_square"]; g.MaxScore != 5 {
			t.Fatalf("grade max score: %+v", g)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("verify gradebook: %v", err)
	}
}

func TestAutogradeSkipsUnknownNotebook(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	writeMasterNotebook(t, cfg, "ps1", "problem1")
	runner := NewRunner(cfg, nil)
	ctx := context.Background()

	if _, err := runner.Assign(ctx, "ps1", AssignOptions{Create: true}); err != nil {
		t.Fatalf("Assign: %v", err)
	}
	submitReleased(t, cfg, "ps1", "problem1", "hacker", nil)

	layout := coursedir.New(cfg)
	rogue := notebook.New("extra")
	rogue.Cells = append(rogue.Cells, notebook.NewCodeCell("print('free points')"))
	if err := rogue.Write(layout.NotebookPath(coursedir.StageSubmitted, "hacker", "ps1", "extra")); err != nil {
		t.Fatal(err)
	}

	result, err := runner.Autograde(ctx, "ps1", AutogradeOptions{Create: true, NoExecute: true})
	if err != nil {
		t.Fatalf("Autograde: %v", err)
	}
	if len(result.Documents) != 1 || result.Documents[0].NotebookID != "problem1" {
		t.Fatalf("unknown notebook must be skipped, got %+v", result.Documents)
	}
}

func TestAutogradeUnknownStudentFilter(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	writeMasterNotebook(t, cfg, "ps1", "problem1")
	runner := NewRunner(cfg, nil)
	ctx := context.Background()

	if _, err := runner.Assign(ctx, "ps1", AssignOptions{Create: true}); err != nil {
		t.Fatalf("Assign: %v", err)
	}
	submitReleased(t, cfg, "ps1", "problem1", "hacker", nil)

	_, err := runner.Autograde(ctx, "ps1", AutogradeOptions{Create: true, NoExecute: true, StudentID: "ghost"})
	if !services.Fatal(err) {
		t.Fatalf("unknown student filter must be fatal, got %v", err)
	}
}

func TestDisplayName(t *testing.T) {
	tests := []struct {
		id, first, last string
	}{
		{"jane_doe", "Jane", "Doe"},
		{"jane.van.dyke", "Jane", "Van Dyke"},
		{"hacker", "Hacker", ""},
		{"", "", ""},
	}
	for _, tc := range tests {
		first, last := displayName(tc.id)
		if first != tc.first || last != tc.last {
			t.Errorf("displayName(%q) = %q, %q; want %q, %q", tc.id, first, last, tc.first, tc.last)
		}
	}
}
