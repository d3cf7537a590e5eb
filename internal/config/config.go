package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Course contains the course layout: the root directory and the names of the
// per-stage subdirectories beneath it.
type Course struct {
	ID            string   `toml:"id"`
	Root          string   `toml:"root"`
	SourceDir     string   `toml:"source_dir"`
	ReleaseDir    string   `toml:"release_dir"`
	SubmittedDir  string   `toml:"submitted_dir"`
	AutogradedDir string   `toml:"autograded_dir"`
	DBPath        string   `toml:"db_path"`
	LogDirPath    string   `toml:"log_dir"`
	Ignore        []string `toml:"ignore"`
}

// Assign contains knobs for the distribution pass.
type Assign struct {
	HeaderNotebook  string `toml:"header"`
	FooterNotebook  string `toml:"footer"`
	CodeStub        string `toml:"code_stub"`
	TextStub        string `toml:"text_stub"`
	BeginSolution   string `toml:"begin_solution"`
	EndSolution     string `toml:"end_solution"`
	BeginHiddenTest string `toml:"begin_hidden_tests"`
	EndHiddenTest   string `toml:"end_hidden_tests"`
	LockSolution    bool   `toml:"lock_solution_cells"`
	LockGrade       bool   `toml:"lock_grade_cells"`
	LockReadonly    bool   `toml:"lock_readonly_cells"`
	LockAll         bool   `toml:"lock_all_cells"`
}

// Autograde contains knobs for the grading pass.
type Autograde struct {
	ExecuteCommand []string `toml:"execute_command"`
	ExecuteTimeout int      `toml:"execute_timeout"`
	MaxOutputBytes int      `toml:"max_output_bytes"`
	MaxOutputLines int      `toml:"max_output_lines"`
	KernelName     string   `toml:"kernel_name"`
	Workers        int      `toml:"workers"`
}

// Collect contains the submission-collection settings: which collector
// resolves identities from raw filenames and how it parses timestamps.
type Collect struct {
	Collector       string `toml:"collector"`
	NamedRegexp     string `toml:"named_regexp"`
	TimestampLayout string `toml:"timestamp_layout"`
	ArchiveDir      string `toml:"archive_dir"`
	ExtractedDir    string `toml:"extracted_dir"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for chalk.
//
// Configuration sections by subsystem:
//   - Course: directory layout under the course root plus gradebook location
//   - Assign: header/footer notebooks, stub placeholders, lock policy
//   - Autograde: execution command, output caps, worker count
//   - Collect: collector selection, filename pattern, timestamp layout
//   - Logging: log format and level
type Config struct {
	Course    Course    `toml:"course"`
	Assign    Assign    `toml:"assign"`
	Autograde Autograde `toml:"autograde"`
	Collect   Collect   `toml:"collect"`
	Logging   Logging   `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/chalk/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized. The second return is
// the resolved path and the third reports whether a file was actually read.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("chalk.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the directories every command needs. Stage
// directories are created lazily by the pipelines that write to them.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Course.Root, c.LogDir()} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// SourceDir returns the absolute source (instructor-authored) stage directory.
func (c *Config) SourceDir() string {
	return filepath.Join(c.Course.Root, c.Course.SourceDir)
}

// ReleaseDir returns the absolute student-facing release stage directory.
func (c *Config) ReleaseDir() string {
	return filepath.Join(c.Course.Root, c.Course.ReleaseDir)
}

// SubmittedDir returns the absolute canonical submission stage directory.
func (c *Config) SubmittedDir() string {
	return filepath.Join(c.Course.Root, c.Course.SubmittedDir)
}

// AutogradedDir returns the absolute autograded stage directory.
func (c *Config) AutogradedDir() string {
	return filepath.Join(c.Course.Root, c.Course.AutogradedDir)
}

// DatabasePath returns the gradebook SQLite file location.
func (c *Config) DatabasePath() string {
	if strings.TrimSpace(c.Course.DBPath) != "" {
		return c.Course.DBPath
	}
	return filepath.Join(c.Course.Root, "gradebook.db")
}

// LogDir returns the directory for chalk.log output.
func (c *Config) LogDir() string {
	if strings.TrimSpace(c.Course.LogDirPath) != "" {
		return c.Course.LogDirPath
	}
	return filepath.Join(c.Course.Root, "logs")
}

// ArchiveDir returns the staging area scanned by zip-collect for the given
// assignment: {root}/{archive_dir}/{assignment}/archive by default.
func (c *Config) ArchiveDir(assignmentID string) string {
	return filepath.Join(c.Course.Root, c.Collect.ArchiveDir, assignmentID, "archive")
}

// ExtractedDir returns the holding area zip-collect unpacks archives into.
func (c *Config) ExtractedDir(assignmentID string) string {
	return filepath.Join(c.Course.Root, c.Collect.ArchiveDir, assignmentID, c.Collect.ExtractedDir)
}

// HeaderNotebookPath resolves the configured header notebook. Relative paths
// are taken against the course root; empty means no header.
func (c *Config) HeaderNotebookPath() string {
	return c.resolveCoursePath(c.Assign.HeaderNotebook)
}

// FooterNotebookPath resolves the configured footer notebook.
func (c *Config) FooterNotebookPath() string {
	return c.resolveCoursePath(c.Assign.FooterNotebook)
}

func (c *Config) resolveCoursePath(path string) string {
	if strings.TrimSpace(path) == "" {
		return ""
	}
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(c.Course.Root, path)
}

// LogLevel returns the configured log level string.
func (c *Config) LogLevel() string { return c.Logging.Level }

// LogFormat returns the configured log format string.
func (c *Config) LogFormat() string { return c.Logging.Format }

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	expanded, err := expandPath(path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(expanded), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	if _, err := os.Stat(expanded); err == nil {
		return fmt.Errorf("config file already exists at %s", expanded)
	}
	return os.WriteFile(expanded, []byte(sampleConfig), 0o644)
}
