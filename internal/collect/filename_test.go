package collect

import (
	"testing"
	"time"

	"chalk/internal/config"
)

const testPattern = `.+_(?P<student_id>\w+)_attempt_(?P<timestamp>[0-9\-]+)_(?P<file_id>\w+)`

func newTestCollector(t *testing.T) *FilenameCollector {
	t.Helper()
	c, err := NewFilenameCollector(testPattern, "2006-01-02-15-04-05")
	if err != nil {
		t.Fatalf("new collector: %v", err)
	}
	return c
}

func TestCollectExtractsIdentity(t *testing.T) {
	c := newTestCollector(t)
	identity, err := c.Collect("/staging/ps1_hacker_attempt_2016-01-30-15-30-10_problem1.ipynb")
	if err != nil {
		t.Fatalf("collect: %v", err)
	}
	if identity == nil {
		t.Fatal("expected identity")
	}
	if identity.StudentID != "hacker" {
		t.Fatalf("student = %q", identity.StudentID)
	}
	if identity.FileID != "problem1" {
		t.Fatalf("file id = %q", identity.FileID)
	}
	want := time.Date(2016, 1, 30, 15, 30, 10, 0, time.UTC)
	if !identity.Timestamp.Equal(want) {
		t.Fatalf("timestamp = %v, want %v", identity.Timestamp, want)
	}
}

func TestCollectUnrecognizedReturnsNil(t *testing.T) {
	c := newTestCollector(t)
	identity, err := c.Collect("/staging/random-notes.txt")
	if err != nil {
		t.Fatalf("collect: %v", err)
	}
	if identity != nil {
		t.Fatalf("expected nil identity, got %+v", identity)
	}
}

func TestCollectUnparseableTimestampIsZero(t *testing.T) {
	c, err := NewFilenameCollector(testPattern, "2006-01-02 15:04:05")
	if err != nil {
		t.Fatalf("new collector: %v", err)
	}
	identity, err := c.Collect("ps1_hacker_attempt_2016-01-30-15-30-10_problem1.ipynb")
	if err != nil {
		t.Fatalf("collect: %v", err)
	}
	if identity == nil {
		t.Fatal("expected identity despite bad timestamp")
	}
	if !identity.Timestamp.IsZero() {
		t.Fatalf("timestamp = %v, want zero", identity.Timestamp)
	}
}

func TestNewFilenameCollectorRejectsMissingGroups(t *testing.T) {
	if _, err := NewFilenameCollector(`(?P<student_id>\w+)`, ""); err == nil {
		t.Fatal("expected error for pattern without file_id")
	}
}

func TestRegistryResolvesDefault(t *testing.T) {
	cfg := config.Default()
	c, err := New("filename", &cfg)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if c.Name() != "filename" {
		t.Fatalf("name = %q", c.Name())
	}
}

func TestRegistryUnknownName(t *testing.T) {
	cfg := config.Default()
	if _, err := New("lookup-table", &cfg); err == nil {
		t.Fatal("expected error for unregistered collector")
	}
}

func TestRegisterCustomCollector(t *testing.T) {
	Register("static-test", func(cfg *config.Config) (Collector, error) {
		return staticCollector{}, nil
	})
	cfg := config.Default()
	c, err := New("static-test", &cfg)
	if err != nil {
		t.Fatalf("resolve custom: %v", err)
	}
	identity, err := c.Collect("anything")
	if err != nil || identity == nil || identity.StudentID != "fixed" {
		t.Fatalf("custom collector result = %+v, %v", identity, err)
	}
}

type staticCollector struct{}

func (staticCollector) Name() string { return "static-test" }

func (staticCollector) Collect(path string) (*Identity, error) {
	return &Identity{RawPath: path, StudentID: "fixed", FileID: "file"}, nil
}
