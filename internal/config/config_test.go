package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultValidates(t *testing.T) {
	cfg := Default()
	if err := cfg.normalize(); err != nil {
		t.Fatalf("normalize default config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("validate default config: %v", err)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "absent.toml")
	cfg, resolved, exists, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if exists {
		t.Fatal("expected exists=false for absent file")
	}
	if resolved != path {
		t.Fatalf("resolved path = %q, want %q", resolved, path)
	}
	if cfg.Collect.Collector != "filename" {
		t.Fatalf("expected default collector, got %q", cfg.Collect.Collector)
	}
}

func TestLoadOverridesAndExpandsPaths(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "chalk.toml")
	content := `
[course]
id = "phys301"
root = "` + dir + `/course"
submitted_dir = "turned_in"

[logging]
level = "debug"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, _, exists, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !exists {
		t.Fatal("expected config file to be read")
	}
	if cfg.Course.ID != "phys301" {
		t.Fatalf("course id = %q", cfg.Course.ID)
	}
	if got := cfg.SubmittedDir(); got != filepath.Join(dir, "course", "turned_in") {
		t.Fatalf("submitted dir = %q", got)
	}
	if cfg.Logging.Level != "debug" {
		t.Fatalf("log level = %q", cfg.Logging.Level)
	}
	if cfg.Course.SourceDir != "source" {
		t.Fatalf("expected default source dir, got %q", cfg.Course.SourceDir)
	}
}

func TestValidateRejectsDuplicateStageDirs(t *testing.T) {
	cfg := Default()
	cfg.Course.ReleaseDir = "source"
	if err := cfg.normalize(); err != nil {
		t.Fatalf("normalize: %v", err)
	}
	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "resolve to") {
		t.Fatalf("expected duplicate stage dir error, got %v", err)
	}
}

func TestValidateRejectsPatternWithoutRequiredGroups(t *testing.T) {
	cfg := Default()
	cfg.Collect.NamedRegexp = `(?P<student_id>\w+)`
	if err := cfg.normalize(); err != nil {
		t.Fatalf("normalize: %v", err)
	}
	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "file_id") {
		t.Fatalf("expected missing file_id group error, got %v", err)
	}
}

func TestDatabasePathDefaultsUnderRoot(t *testing.T) {
	cfg := Default()
	cfg.Course.Root = "/srv/course"
	if got := cfg.DatabasePath(); got != "/srv/course/gradebook.db" {
		t.Fatalf("db path = %q", got)
	}
	cfg.Course.DBPath = "/var/lib/chalk/grades.db"
	if got := cfg.DatabasePath(); got != "/var/lib/chalk/grades.db" {
		t.Fatalf("db path override = %q", got)
	}
}

func TestCreateSampleRefusesOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := CreateSample(path); err != nil {
		t.Fatalf("create sample: %v", err)
	}
	if err := CreateSample(path); err == nil {
		t.Fatal("expected error when sample already exists")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(data), "[course]") {
		t.Fatal("sample config missing course section")
	}
}
