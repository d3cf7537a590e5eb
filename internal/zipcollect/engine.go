package zipcollect

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"chalk/internal/collect"
	"chalk/internal/config"
	"chalk/internal/coursedir"
	"chalk/internal/fileutil"
	"chalk/internal/gradebook"
	"chalk/internal/logging"
	"chalk/internal/preflight"
	"chalk/internal/services"
)

// Options configure a collection run.
type Options struct {
	// Force re-extracts ledgered archives and overwrites newer submissions.
	Force bool
	// Strict fails the run on unrecognized files or ambiguous attempts.
	Strict bool
	// UpdateDB upserts submission records for every collected student.
	UpdateDB bool
}

// Attempt is one winning (student, file) resolution.
type Attempt struct {
	StudentID  string
	FileID     string
	Timestamp  time.Time
	SourcePath string
	DestPath   string
	// Written reports whether this run changed the materialized file.
	Written bool
}

// ArchiveFailure records one archive that could not be extracted. The
// failure is isolated: sibling archives still extract and collect.
type ArchiveFailure struct {
	Archive string
	Err     error
}

// Result aggregates a collection run.
type Result struct {
	RunID             string
	Assignment        string
	ArchivesExtracted int
	ArchivesSkipped   int
	ArchivesFailed    []ArchiveFailure
	FilesScanned      int
	Unrecognized      []string
	Attempts          []Attempt
}

// Written counts the attempts this run actually materialized.
func (r *Result) Written() int {
	n := 0
	for _, a := range r.Attempts {
		if a.Written {
			n++
		}
	}
	return n
}

// NoOp reports whether the run changed nothing on disk. Re-running over
// unchanged input is expected operator behavior, not a failure.
func (r *Result) NoOp() bool {
	return r.ArchivesExtracted == 0 && r.Written() == 0
}

// Engine drives collection runs for one configured course.
type Engine struct {
	cfg       *config.Config
	layout    *coursedir.Layout
	collector collect.Collector
	logger    *slog.Logger
}

// New resolves the configured collector and builds an engine.
func New(cfg *config.Config, logger *slog.Logger) (*Engine, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	collector, err := collect.New(cfg.Collect.Collector, cfg)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "zipcollect", "resolve collector", "", err)
	}
	return &Engine{
		cfg:       cfg,
		layout:    coursedir.New(cfg),
		collector: collector,
		logger:    logging.NewComponentLogger(logger, "zipcollect"),
	}, nil
}

func newRunID() string {
	return strings.SplitN(uuid.NewString(), "-", 2)[0]
}

// Run collects one assignment's submissions.
func (e *Engine) Run(ctx context.Context, assignmentID string, opts Options) (*Result, error) {
	runID := newRunID()
	ctx = services.WithRunID(services.WithAssignment(ctx, assignmentID), runID)
	log := logging.WithContext(ctx, e.logger)
	result := &Result{RunID: runID, Assignment: assignmentID}

	lock := flock.New(filepath.Join(e.cfg.Course.Root, ".collect.lock"))
	locked, err := lock.TryLock()
	if err != nil {
		return nil, services.Wrap(services.ErrIO, "zipcollect", "acquire lock", lock.Path(), err)
	}
	if !locked {
		return nil, services.Wrap(services.ErrConflictingState, "zipcollect", "acquire lock",
			"another collection run holds the course lock", nil)
	}
	defer func() {
		_ = lock.Unlock()
	}()

	if err := preflight.Failed(preflight.RunCollect(e.cfg, assignmentID)); err != nil {
		return nil, err
	}

	archiveDir := e.cfg.ArchiveDir(assignmentID)
	extractedDir := e.cfg.ExtractedDir(assignmentID)

	archives, loose, err := scanArchiveDir(archiveDir)
	if err != nil {
		return nil, err
	}
	if len(archives) == 0 && len(loose) == 0 {
		if _, err := os.Stat(extractedDir); err != nil {
			return nil, services.Wrap(services.ErrMissingEntry, "zipcollect", "scan",
				fmt.Sprintf("nothing to collect for %q: no archives in %s and no extracted tree", assignmentID, archiveDir), nil)
		}
		log.Info("archive directory empty, collecting from extracted tree only")
	}

	if err := e.extract(archives, extractedDir, opts, result, log); err != nil {
		return nil, err
	}

	candidates, err := listCandidates(extractedDir, loose)
	if err != nil {
		return nil, err
	}
	result.FilesScanned = len(candidates)

	winners, err := e.resolve(candidates, opts, result, log)
	if err != nil {
		return nil, err
	}

	if err := e.materialize(assignmentID, winners, opts, result, log); err != nil {
		return nil, err
	}

	if opts.UpdateDB {
		if err := e.updateDatabase(ctx, assignmentID, result); err != nil {
			return nil, err
		}
	}

	if result.NoOp() && len(result.ArchivesFailed) == 0 {
		log.Info("no changes, submissions already current",
			logging.Int("files_scanned", result.FilesScanned))
	} else {
		log.Info("collection finished",
			logging.Int("archives_extracted", result.ArchivesExtracted),
			logging.Int("archives_failed", len(result.ArchivesFailed)),
			logging.Int("files_scanned", result.FilesScanned),
			logging.Int("written", result.Written()))
	}
	return result, nil
}

// scanArchiveDir partitions the drop directory into zip archives and loose
// submission files. A missing directory is not an error here; the caller
// decides whether an extracted tree can stand in.
func scanArchiveDir(dir string) (archives, loose []string, err error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil, nil
		}
		return nil, nil, services.Wrap(services.ErrIO, "zipcollect", "scan archive directory", dir, err)
	}
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if strings.EqualFold(filepath.Ext(entry.Name()), ".zip") {
			archives = append(archives, path)
		} else {
			loose = append(loose, path)
		}
	}
	sort.Strings(archives)
	sort.Strings(loose)
	return archives, loose, nil
}

// extract unpacks every archive not yet in the ledger. A bad archive
// (corrupt member, traversal entry, read error) is reported on the result
// and left uncommitted; its siblings still extract.
func (e *Engine) extract(archives []string, extractedDir string, opts Options, result *Result, log *slog.Logger) error {
	if len(archives) == 0 {
		return nil
	}
	led := loadLedger(extractedDir, log)
	for _, archive := range archives {
		name := filepath.Base(archive)
		sum, err := fileutil.FileSHA256(archive)
		if err != nil {
			e.failArchive(result, log, name,
				services.Wrap(services.ErrIO, "zipcollect", "checksum archive", archive, err))
			continue
		}
		if !opts.Force && led.seen(name, sum) {
			result.ArchivesSkipped++
			continue
		}

		stem := strings.TrimSuffix(name, filepath.Ext(name))
		destDir := filepath.Join(extractedDir, stem)
		files, err := extractArchive(archive, destDir)
		if err != nil {
			// Partial output must not surface as candidate files.
			_ = os.RemoveAll(destDir)
			e.failArchive(result, log, name, err)
			continue
		}
		if err := led.record(ledgerEntry{
			Archive:     name,
			SHA256:      sum,
			ExtractedAt: time.Now().UTC(),
			Files:       files,
		}); err != nil {
			return err
		}
		result.ArchivesExtracted++
		log.Info("extracted archive",
			logging.String("archive", name),
			logging.Int("files", len(files)))
	}
	return nil
}

func (e *Engine) failArchive(result *Result, log *slog.Logger, name string, err error) {
	log.Warn("archive failed, skipping",
		logging.String("archive", name),
		logging.Error(err))
	result.ArchivesFailed = append(result.ArchivesFailed, ArchiveFailure{Archive: name, Err: err})
}

// listCandidates returns every file eligible for identification, in a
// deterministic order: the extracted tree first, then loose files.
func listCandidates(extractedDir string, loose []string) ([]string, error) {
	var candidates []string
	err := filepath.WalkDir(extractedDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) && path == extractedDir {
				return nil
			}
			return err
		}
		if d.IsDir() || d.Name() == ledgerFile {
			return nil
		}
		candidates = append(candidates, path)
		return nil
	})
	if err != nil {
		return nil, services.Wrap(services.ErrIO, "zipcollect", "walk extracted tree", extractedDir, err)
	}
	sort.Strings(candidates)
	return append(candidates, loose...), nil
}

type attemptKey struct {
	studentID string
	fileID    string
}

type candidate struct {
	identity *collect.Identity
	order    int
}

// resolve identifies every candidate and picks one winner per
// (student, file) pair: the latest parseable timestamp wins, attempts
// without a timestamp lose to any attempt that has one, and exact ties keep
// the first attempt in discovery order.
func (e *Engine) resolve(paths []string, opts Options, result *Result, log *slog.Logger) (map[attemptKey]candidate, error) {
	winners := map[attemptKey]candidate{}
	for order, path := range paths {
		identity, err := e.collector.Collect(path)
		if err != nil {
			return nil, services.Wrap(services.ErrIO, "zipcollect", "identify file", path, err)
		}
		if identity == nil {
			if opts.Strict {
				return nil, services.Wrap(services.ErrIdentityUnresolved, "zipcollect", "identify file",
					fmt.Sprintf("%s not recognized by collector %q", path, e.collector.Name()), nil)
			}
			log.Warn("skipping unrecognized file", logging.String("path", path))
			result.Unrecognized = append(result.Unrecognized, path)
			continue
		}

		key := attemptKey{studentID: identity.StudentID, fileID: identity.FileID}
		next := candidate{identity: identity, order: order}
		current, exists := winners[key]
		if !exists {
			winners[key] = next
			continue
		}
		switch {
		case next.identity.Timestamp.After(current.identity.Timestamp):
			winners[key] = next
		case next.identity.Timestamp.Equal(current.identity.Timestamp) && !next.identity.Timestamp.IsZero():
			if opts.Strict {
				return nil, services.Wrap(services.ErrAttemptAmbiguous, "zipcollect", "resolve attempt",
					fmt.Sprintf("student %q file %q: %s and %s share timestamp %s",
						key.studentID, key.fileID, current.identity.RawPath, next.identity.RawPath,
						next.identity.Timestamp.Format(coursedir.TimestampLayout)), nil)
			}
			log.Warn("ambiguous attempts share a timestamp, keeping the first seen",
				logging.String(logging.FieldStudent, key.studentID),
				logging.String("file_id", key.fileID))
		}
	}
	return winners, nil
}

// materialize writes winning attempts into the canonical submitted tree.
// Content is compared before writing so unchanged attempts cost nothing; a
// student whose existing submission is newer than every incoming attempt is
// left alone unless forced.
func (e *Engine) materialize(assignmentID string, winners map[attemptKey]candidate, opts Options, result *Result, log *slog.Logger) error {
	byStudent := map[string][]candidate{}
	for _, cand := range winners {
		byStudent[cand.identity.StudentID] = append(byStudent[cand.identity.StudentID], cand)
	}
	students := make([]string, 0, len(byStudent))
	for id := range byStudent {
		students = append(students, id)
	}
	sort.Strings(students)

	for _, studentID := range students {
		cands := byStudent[studentID]
		sort.Slice(cands, func(i, j int) bool { return cands[i].order < cands[j].order })

		destDir := e.layout.AssignmentDir(coursedir.StageSubmitted, studentID, assignmentID)
		var incoming time.Time
		for _, cand := range cands {
			if cand.identity.Timestamp.After(incoming) {
				incoming = cand.identity.Timestamp
			}
		}

		existing, hasExisting, err := coursedir.ReadTimestamp(destDir)
		if err != nil {
			return services.Wrap(services.ErrIO, "zipcollect", "read timestamp", destDir, err)
		}
		if hasExisting && !opts.Force && !incoming.IsZero() && incoming.Before(existing) {
			log.Warn("existing submission is newer, skipping student",
				logging.String(logging.FieldStudent, studentID),
				logging.String("existing", existing.Format(coursedir.TimestampLayout)),
				logging.String("incoming", incoming.Format(coursedir.TimestampLayout)))
			for _, cand := range cands {
				result.Attempts = append(result.Attempts, attemptFor(cand, destDir, false))
			}
			continue
		}

		wroteAny := false
		for _, cand := range cands {
			attempt := attemptFor(cand, destDir, false)
			wrote, err := copyIfChanged(cand.identity.RawPath, attempt.DestPath)
			if err != nil {
				return services.Wrap(services.ErrIO, "zipcollect", "materialize attempt", attempt.DestPath, err)
			}
			attempt.Written = wrote
			wroteAny = wroteAny || wrote
			result.Attempts = append(result.Attempts, attempt)
			if wrote {
				log.Info("collected submission",
					logging.String(logging.FieldStudent, studentID),
					logging.String("file_id", cand.identity.FileID))
			}
		}

		if !incoming.IsZero() && (wroteAny || !hasExisting || !incoming.Equal(existing)) {
			if err := coursedir.WriteTimestamp(destDir, incoming); err != nil {
				return services.Wrap(services.ErrIO, "zipcollect", "write timestamp", destDir, err)
			}
		}
	}
	return nil
}

func attemptFor(cand candidate, destDir string, written bool) Attempt {
	ext := filepath.Ext(cand.identity.RawPath)
	return Attempt{
		StudentID:  cand.identity.StudentID,
		FileID:     cand.identity.FileID,
		Timestamp:  cand.identity.Timestamp,
		SourcePath: cand.identity.RawPath,
		DestPath:   filepath.Join(destDir, cand.identity.FileID+ext),
		Written:    written,
	}
}

// copyIfChanged copies src over dst only when content differs.
func copyIfChanged(src, dst string) (bool, error) {
	srcSum, err := fileutil.FileSHA256(src)
	if err != nil {
		return false, err
	}
	if dstSum, err := fileutil.FileSHA256(dst); err == nil && dstSum == srcSum {
		return false, nil
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return false, err
	}
	if err := fileutil.CopyFileVerified(src, dst); err != nil {
		return false, err
	}
	return true, nil
}

// updateDatabase upserts submission records for every student this run
// touched. The assignment must already be registered; students are created
// on the fly since collection is often the first time an id is seen.
func (e *Engine) updateDatabase(ctx context.Context, assignmentID string, result *Result) error {
	students := map[string]time.Time{}
	for _, attempt := range result.Attempts {
		if ts, ok := students[attempt.StudentID]; !ok || attempt.Timestamp.After(ts) {
			students[attempt.StudentID] = attempt.Timestamp
		}
	}
	if len(students) == 0 {
		return nil
	}

	ids := make([]string, 0, len(students))
	for id := range students {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	return gradebook.With(e.cfg.DatabasePath(), func(gb *gradebook.Gradebook) error {
		if _, err := gb.FindAssignment(ctx, assignmentID); err != nil {
			return err
		}
		for _, studentID := range ids {
			if _, err := gb.FindStudent(ctx, studentID); err != nil {
				if !errors.Is(err, services.ErrMissingEntry) {
					return err
				}
				if _, err := gb.UpdateOrCreateStudent(ctx, gradebook.Student{ID: studentID}); err != nil {
					return err
				}
			}
			var ts *time.Time
			if t := students[studentID]; !t.IsZero() {
				ts = &t
			}
			if _, err := gb.UpdateOrCreateSubmission(ctx, assignmentID, studentID, ts); err != nil {
				return err
			}
		}
		return nil
	})
}
