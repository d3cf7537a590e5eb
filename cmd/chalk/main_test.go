package main

import (
	"os"
	"path/filepath"
	"testing"

	"chalk/internal/notebook"
	"chalk/internal/testsupport"
)

func TestRootHelp(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, nil, env.configPath)
	if err != nil {
		t.Fatalf("root: %v", err)
	}
	requireContains(t, out, "assign")
	requireContains(t, out, "autograde")
	requireContains(t, out, "zip-collect")
}

func TestAssignCommandEndToEnd(t *testing.T) {
	env := setupCLITestEnv(t)

	nb := notebook.New("problem1")
	nb.SetKernelspec("python3", "Python 3", "python")
	nb.Cells = append(nb.Cells,
		testsupport.SolutionCell(
			"def square(x):\n    ### BEGIN SOLUTION\n    return x * x\n    ### END SOLUTION", "sol1"),
		testsupport.TestCell("assert square(2) == 4", "test1", 5),
	)
	path := filepath.Join(env.courseRoot, "source", ".", "ps1", "problem1.ipynb")
	testsupport.WriteNotebook(t, nb, path)

	out, _, err := runCLI(t, []string{"assign", "ps1", "--create"}, env.configPath)
	if err != nil {
		t.Fatalf("assign: %v", err)
	}
	requireContains(t, out, "all notebooks succeeded")

	released := filepath.Join(env.courseRoot, "release", ".", "ps1", "problem1.ipynb")
	if _, err := os.Stat(released); err != nil {
		t.Fatalf("expected release notebook at %s: %v", released, err)
	}
}

func TestAssignCommandUnknownAssignment(t *testing.T) {
	env := setupCLITestEnv(t)

	if _, _, err := runCLI(t, []string{"assign", "ps1"}, env.configPath); err == nil {
		t.Fatal("expected assign to fail without a source directory")
	}
}
