// Package coursedir resolves the canonical on-disk layout
//
//	{stage}/{student_id}/{assignment_id}/{notebook_id}.ipynb
//
// where stage is one of source, release, submitted, or autograded, and reads
// and writes the timestamp sidecar stored next to collected submissions.
package coursedir

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"chalk/internal/config"
)

// Stage identifies one of the four lifecycle directories.
type Stage string

const (
	StageSource     Stage = "source"
	StageRelease    Stage = "release"
	StageSubmitted  Stage = "submitted"
	StageAutograded Stage = "autograded"
)

// AuthorStudent is the synthetic student placeholder used for the
// instructor-authored source and release stages, which have no real student.
const AuthorStudent = "."

// NotebookExt is the document file extension.
const NotebookExt = ".ipynb"

// TimestampFile is the sidecar written next to materialized submissions.
const TimestampFile = "timestamp.txt"

// TimestampLayout is the format stored in the sidecar.
const TimestampLayout = "2006-01-02 15:04:05"

// Layout maps stages to configured directories under the course root.
type Layout struct {
	cfg *config.Config
}

// New builds a layout from configuration.
func New(cfg *config.Config) *Layout {
	return &Layout{cfg: cfg}
}

func (l *Layout) stageRoot(stage Stage) string {
	switch stage {
	case StageSource:
		return l.cfg.SourceDir()
	case StageRelease:
		return l.cfg.ReleaseDir()
	case StageSubmitted:
		return l.cfg.SubmittedDir()
	case StageAutograded:
		return l.cfg.AutogradedDir()
	default:
		return filepath.Join(l.cfg.Course.Root, string(stage))
	}
}

// AssignmentDir returns {stage}/{student}/{assignment}.
func (l *Layout) AssignmentDir(stage Stage, studentID, assignmentID string) string {
	return filepath.Join(l.stageRoot(stage), studentID, assignmentID)
}

// NotebookPath returns {stage}/{student}/{assignment}/{notebook}.ipynb.
func (l *Layout) NotebookPath(stage Stage, studentID, assignmentID, notebookID string) string {
	return filepath.Join(l.AssignmentDir(stage, studentID, assignmentID), notebookID+NotebookExt)
}

// ListNotebooks returns the notebook ids in an assignment directory matching
// the given glob pattern ("*" for all), sorted for deterministic iteration.
func (l *Layout) ListNotebooks(stage Stage, studentID, assignmentID, pattern string) ([]string, error) {
	if pattern == "" {
		pattern = "*"
	}
	dir := l.AssignmentDir(stage, studentID, assignmentID)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("list notebooks in %s: %w", dir, err)
	}
	var ids []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), NotebookExt) {
			continue
		}
		id := strings.TrimSuffix(entry.Name(), NotebookExt)
		ok, err := filepath.Match(pattern, id)
		if err != nil {
			return nil, fmt.Errorf("notebook pattern %q: %w", pattern, err)
		}
		if ok {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

// ListStudents returns the student ids that have a directory for the given
// assignment under a stage, sorted.
func (l *Layout) ListStudents(stage Stage, assignmentID string) ([]string, error) {
	root := l.stageRoot(stage)
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("list students in %s: %w", root, err)
	}
	var ids []string
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		if _, err := os.Stat(filepath.Join(root, entry.Name(), assignmentID)); err == nil {
			ids = append(ids, entry.Name())
		}
	}
	sort.Strings(ids)
	return ids, nil
}

// SupportFiles returns non-notebook files under dir that survive the ignore
// globs, as paths relative to dir. Used when master support files are copied
// next to sanitized submissions.
func (l *Layout) SupportFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		name := d.Name()
		if d.IsDir() {
			if path != dir && l.ignored(name) {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasSuffix(name, NotebookExt) || name == TimestampFile || l.ignored(name) {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		files = append(files, rel)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

func (l *Layout) ignored(name string) bool {
	for _, pattern := range l.cfg.Course.Ignore {
		if ok, _ := filepath.Match(pattern, name); ok {
			return true
		}
	}
	return false
}

// WriteTimestamp writes the sidecar record for a materialized submission.
func WriteTimestamp(dir string, ts time.Time) error {
	path := filepath.Join(dir, TimestampFile)
	return os.WriteFile(path, []byte(ts.Format(TimestampLayout)+"\n"), 0o644)
}

// ReadTimestamp loads the sidecar record if present. The second return is
// false when no sidecar exists.
func ReadTimestamp(dir string) (time.Time, bool, error) {
	data, err := os.ReadFile(filepath.Join(dir, TimestampFile))
	if err != nil {
		if os.IsNotExist(err) {
			return time.Time{}, false, nil
		}
		return time.Time{}, false, err
	}
	raw := strings.TrimSpace(string(data))
	ts, err := time.Parse(TimestampLayout, raw)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("parse %s: %w", TimestampFile, err)
	}
	return ts, true, nil
}
