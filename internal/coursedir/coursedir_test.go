package coursedir

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"chalk/internal/config"
)

func testLayout(t *testing.T) (*Layout, *config.Config) {
	t.Helper()
	cfg := config.Default()
	cfg.Course.Root = t.TempDir()
	return New(&cfg), &cfg
}

func TestNotebookPath(t *testing.T) {
	layout, cfg := testLayout(t)
	got := layout.NotebookPath(StageSubmitted, "hacker", "ps1", "problem1")
	want := filepath.Join(cfg.Course.Root, "submitted", "hacker", "ps1", "problem1.ipynb")
	if got != want {
		t.Fatalf("path = %q, want %q", got, want)
	}
}

func TestAuthorStagePaths(t *testing.T) {
	layout, cfg := testLayout(t)
	got := layout.NotebookPath(StageSource, AuthorStudent, "ps1", "problem1")
	want := filepath.Join(cfg.Course.Root, "source", "ps1", "problem1.ipynb")
	if filepath.Clean(got) != want {
		t.Fatalf("path = %q, want %q", got, want)
	}
}

func TestListNotebooksFiltersAndSorts(t *testing.T) {
	layout, _ := testLayout(t)
	dir := layout.AssignmentDir(StageSource, AuthorStudent, "ps1")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	for _, name := range []string{"problem2.ipynb", "problem1.ipynb", "notes.txt", "extra.ipynb"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("{}"), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}

	all, err := layout.ListNotebooks(StageSource, AuthorStudent, "ps1", "*")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 3 || all[0] != "extra" || all[1] != "problem1" || all[2] != "problem2" {
		t.Fatalf("all = %v", all)
	}

	matched, err := layout.ListNotebooks(StageSource, AuthorStudent, "ps1", "problem*")
	if err != nil {
		t.Fatalf("list pattern: %v", err)
	}
	if len(matched) != 2 {
		t.Fatalf("matched = %v", matched)
	}
}

func TestListStudents(t *testing.T) {
	layout, cfg := testLayout(t)
	for _, student := range []string{"zed", "amy"} {
		dir := filepath.Join(cfg.SubmittedDir(), student, "ps1")
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
	}
	// Student with a different assignment should not appear.
	if err := os.MkdirAll(filepath.Join(cfg.SubmittedDir(), "bob", "ps2"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	students, err := layout.ListStudents(StageSubmitted, "ps1")
	if err != nil {
		t.Fatalf("list students: %v", err)
	}
	if len(students) != 2 || students[0] != "amy" || students[1] != "zed" {
		t.Fatalf("students = %v", students)
	}
}

func TestSupportFilesHonorsIgnoreGlobs(t *testing.T) {
	layout, _ := testLayout(t)
	dir := t.TempDir()
	files := map[string]string{
		"data.csv":                       "1,2",
		"helpers.py":                     "x = 1",
		"problem1.ipynb":                 "{}",
		"cache.pyc":                      "",
		".ipynb_checkpoints/problem1.ck": "",
		"sub/extra.txt":                  "hi",
	}
	for name, content := range files {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
	}

	got, err := layout.SupportFiles(dir)
	if err != nil {
		t.Fatalf("support files: %v", err)
	}
	want := []string{"data.csv", "helpers.py", filepath.Join("sub", "extra.txt")}
	if len(got) != len(want) {
		t.Fatalf("files = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("files = %v, want %v", got, want)
		}
	}
}

func TestTimestampSidecarRoundTrip(t *testing.T) {
	dir := t.TempDir()
	ts := time.Date(2016, 1, 30, 15, 50, 10, 0, time.UTC)
	if err := WriteTimestamp(dir, ts); err != nil {
		t.Fatalf("write: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, TimestampFile))
	if err != nil {
		t.Fatalf("read raw: %v", err)
	}
	if string(data) != "2016-01-30 15:50:10\n" {
		t.Fatalf("sidecar content = %q", data)
	}

	got, ok, err := ReadTimestamp(dir)
	if err != nil || !ok {
		t.Fatalf("read: ok=%v err=%v", ok, err)
	}
	if !got.Equal(ts) {
		t.Fatalf("timestamp = %v, want %v", got, ts)
	}
}

func TestReadTimestampAbsent(t *testing.T) {
	_, ok, err := ReadTimestamp(t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Fatal("expected ok=false when sidecar absent")
	}
}
