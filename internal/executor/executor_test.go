package executor

import (
	"context"
	"os"
	"os/exec"
	"strings"
	"testing"
	"time"

	"chalk/internal/notebook"
	"chalk/internal/services"
)

func setHelperCommand(t *testing.T, mode string) {
	t.Helper()
	original := commandContext
	commandContext = func(ctx context.Context, name string, args ...string) *exec.Cmd {
		cmd := exec.CommandContext(ctx, os.Args[0], "-test.run=TestHelperProcess")
		cmd.Env = append(os.Environ(),
			"GO_WANT_HELPER_PROCESS=1",
			"EXEC_HELPER_MODE="+mode,
			"EXEC_HELPER_PATH="+args[len(args)-1])
		return cmd
	}
	t.Cleanup(func() {
		commandContext = original
	})
}

func TestCommandExecuteReadsBackOutputs(t *testing.T) {
	setHelperCommand(t, "success")

	nb := notebook.New("problem1")
	nb.Cells = append(nb.Cells, notebook.NewCodeCell("print(1)"))

	cmd := NewCommand([]string{"runner"}, time.Minute, nil)
	if err := cmd.Execute(context.Background(), nb); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if len(nb.Cells) != 1 {
		t.Fatalf("expected 1 cell, got %d", len(nb.Cells))
	}
	if len(nb.Cells[0].Outputs) != 1 || nb.Cells[0].Outputs[0].Text != "1\n" {
		t.Fatalf("expected captured stream output, got %+v", nb.Cells[0].Outputs)
	}
}

func TestCommandExecuteFailureIsStageError(t *testing.T) {
	setHelperCommand(t, "fail")

	nb := notebook.New("problem1")
	nb.Cells = append(nb.Cells, notebook.NewCodeCell("print(1)"))

	cmd := NewCommand([]string{"runner"}, time.Minute, nil)
	err := cmd.Execute(context.Background(), nb)
	if err == nil {
		t.Fatal("expected error")
	}
	if services.Fatal(err) {
		t.Fatalf("execution failure must stay per-document, got fatal %v", err)
	}
	if !strings.Contains(err.Error(), "kernel died") {
		t.Fatalf("expected command output in error, got %v", err)
	}
}

func TestCommandExecuteWithoutCommand(t *testing.T) {
	nb := notebook.New("problem1")
	err := NewCommand(nil, 0, nil).Execute(context.Background(), nb)
	if !services.Fatal(err) {
		t.Fatalf("missing command must be a configuration error, got %v", err)
	}
}

// TestHelperProcess stands in for the external execution tool.
func TestHelperProcess(t *testing.T) {
	if os.Getenv("GO_WANT_HELPER_PROCESS") != "1" {
		return
	}
	defer os.Exit(0)

	switch os.Getenv("EXEC_HELPER_MODE") {
	case "success":
		path := os.Getenv("EXEC_HELPER_PATH")
		nb, err := notebook.Read(path)
		if err != nil {
			os.Stderr.WriteString(err.Error())
			os.Exit(1)
		}
		count := 1
		for i := range nb.Cells {
			if nb.Cells[i].Kind != notebook.KindCode {
				continue
			}
			nb.Cells[i].Outputs = []notebook.Output{{Type: "stream", Name: "stdout", Text: "1\n"}}
			nb.Cells[i].ExecutionCount = &count
		}
		if err := nb.Write(path); err != nil {
			os.Stderr.WriteString(err.Error())
			os.Exit(1)
		}
	case "fail":
		os.Stderr.WriteString("kernel died")
		os.Exit(1)
	}
}
