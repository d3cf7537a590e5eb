package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"chalk/internal/coursedir"
	"chalk/internal/executor"
	"chalk/internal/fileutil"
	"chalk/internal/gradebook"
	"chalk/internal/logging"
	"chalk/internal/notebook"
	"chalk/internal/preflight"
	"chalk/internal/services"
	"chalk/internal/transform"
)

type gradeJob struct {
	studentID  string
	notebookID string
	timestamp  *time.Time
}

// Autograde runs the grading pass over every collected submission of an
// assignment: sanitize first, then execute and score. The assignment and its
// master cells must already be in the gradebook from a distribution run.
func (r *Runner) Autograde(ctx context.Context, assignmentID string, opts AutogradeOptions) (*Result, error) {
	runID := newRunID()
	ctx = services.WithRunID(services.WithAssignment(ctx, assignmentID), runID)
	log := logging.WithContext(ctx, r.logger)
	result := &Result{RunID: runID, Operation: "autograde", Assignment: assignmentID}

	willExecute := !opts.NoExecute && len(r.cfg.Autograde.ExecuteCommand) > 0
	if err := preflight.Failed(preflight.RunAutograde(r.cfg, willExecute)); err != nil {
		return nil, err
	}

	students, err := r.students(assignmentID, opts.StudentID)
	if err != nil {
		return nil, err
	}

	known, err := r.knownNotebooks(ctx, assignmentID)
	if err != nil {
		return nil, err
	}

	jobs, err := r.prepareSubmissions(ctx, assignmentID, students, known, opts)
	if err != nil {
		return nil, err
	}
	if len(jobs) == 0 {
		return nil, services.Wrap(services.ErrMissingEntry, "pipeline", "autograde",
			fmt.Sprintf("nothing to grade for assignment %q", assignmentID), nil)
	}

	var run executor.Executor = executor.Nop{}
	if willExecute {
		timeout := time.Duration(r.cfg.Autograde.ExecuteTimeout) * time.Second
		run = executor.NewCommand(r.cfg.Autograde.ExecuteCommand, timeout, r.logger)
	}
	sanitize := sanitizeStages()
	grade := gradeStages(r.cfg, run)

	log.Info("starting grading run",
		logging.Int("students", len(students)),
		logging.Int("documents", len(jobs)),
		logging.Bool("execute", willExecute))

	sink := &resultSink{result: result}
	group, gctx := errgroup.WithContext(ctx)
	group.SetLimit(r.cfg.Autograde.Workers)
	for _, job := range jobs {
		job := job
		group.Go(func() error {
			err := r.gradeDocument(gctx, assignmentID, job, sanitize, grade)
			if err != nil && services.Fatal(err) {
				return err
			}
			sink.record(DocumentResult{StudentID: job.studentID, NotebookID: job.notebookID, Err: err})
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return result, err
	}

	for _, studentID := range students {
		if err := r.copySubmissionFiles(assignmentID, studentID); err != nil {
			return result, err
		}
	}

	log.Info("grading run finished",
		logging.Int("documents", len(result.Documents)),
		logging.Int("failed", len(result.Failed())))
	return result, nil
}

// students lists everyone with a submission directory, optionally narrowed
// to a single id.
func (r *Runner) students(assignmentID, only string) ([]string, error) {
	students, err := r.layout.ListStudents(coursedir.StageSubmitted, assignmentID)
	if err != nil {
		return nil, services.Wrap(services.ErrMissingEntry, "pipeline", "autograde",
			fmt.Sprintf("no submissions for assignment %q", assignmentID), err)
	}
	if only != "" {
		for _, id := range students {
			if id == only {
				return []string{id}, nil
			}
		}
		return nil, services.Wrap(services.ErrMissingEntry, "pipeline", "autograde",
			fmt.Sprintf("student %q has no submission for %q", only, assignmentID), nil)
	}
	if len(students) == 0 {
		return nil, services.Wrap(services.ErrMissingEntry, "pipeline", "autograde",
			fmt.Sprintf("no submissions for assignment %q", assignmentID), nil)
	}
	return students, nil
}

// knownNotebooks returns the notebook ids the distribution run registered.
// A missing assignment is fatal: without master cells there is nothing to
// restore or score against.
func (r *Runner) knownNotebooks(ctx context.Context, assignmentID string) (map[string]bool, error) {
	known := map[string]bool{}
	err := gradebook.With(r.cfg.DatabasePath(), func(gb *gradebook.Gradebook) error {
		if _, err := gb.FindAssignment(ctx, assignmentID); err != nil {
			return err
		}
		names, err := gb.ListNotebooks(ctx, assignmentID)
		if err != nil {
			return err
		}
		for _, name := range names {
			known[name] = true
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return known, nil
}

// prepareSubmissions registers students and submission records, reads the
// timestamp sidecars, and expands the per-document job list. Notebooks the
// gradebook has never seen are skipped with a warning rather than failing
// the student.
func (r *Runner) prepareSubmissions(ctx context.Context, assignmentID string, students []string, known map[string]bool, opts AutogradeOptions) ([]gradeJob, error) {
	var jobs []gradeJob
	err := gradebook.With(r.cfg.DatabasePath(), func(gb *gradebook.Gradebook) error {
		for _, studentID := range students {
			sctx := services.WithStudent(ctx, studentID)
			log := logging.WithContext(sctx, r.logger)

			if err := r.ensureStudent(sctx, gb, studentID, opts.Create); err != nil {
				return err
			}

			subDir := r.layout.AssignmentDir(coursedir.StageSubmitted, studentID, assignmentID)
			var timestamp *time.Time
			if ts, ok, err := coursedir.ReadTimestamp(subDir); err != nil {
				return services.Wrap(services.ErrIO, "pipeline", "read timestamp", subDir, err)
			} else if ok {
				timestamp = &ts
			}
			if _, err := gb.UpdateOrCreateSubmission(sctx, assignmentID, studentID, timestamp); err != nil {
				return err
			}

			ids, err := r.layout.ListNotebooks(coursedir.StageSubmitted, studentID, assignmentID, opts.NotebookPattern)
			if err != nil {
				return services.Wrap(services.ErrIO, "pipeline", "autograde", subDir, err)
			}
			for _, id := range ids {
				if !known[id] {
					log.Warn("skipping unknown notebook",
						logging.String(logging.FieldNotebook, id))
					continue
				}
				jobs = append(jobs, gradeJob{studentID: studentID, notebookID: id, timestamp: timestamp})
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return jobs, nil
}

func (r *Runner) ensureStudent(ctx context.Context, gb *gradebook.Gradebook, studentID string, create bool) error {
	_, err := gb.FindStudent(ctx, studentID)
	if err == nil {
		return nil
	}
	if !errors.Is(err, services.ErrMissingEntry) || !create {
		return err
	}
	first, last := displayName(studentID)
	_, err = gb.UpdateOrCreateStudent(ctx, gradebook.Student{
		ID:        studentID,
		FirstName: first,
		LastName:  last,
	})
	return err
}

// displayName derives a presentable name from ids like "jane_doe" or
// "jane.doe". Best effort only; db commands can set the real name later.
func displayName(studentID string) (first, last string) {
	parts := strings.FieldsFunc(studentID, func(r rune) bool {
		return r == '_' || r == '.' || r == '-'
	})
	titler := cases.Title(language.English)
	for i := range parts {
		parts[i] = titler.String(parts[i])
	}
	switch len(parts) {
	case 0:
		return "", ""
	case 1:
		return parts[0], ""
	default:
		return parts[0], strings.Join(parts[1:], " ")
	}
}

func (r *Runner) gradeDocument(ctx context.Context, assignmentID string, job gradeJob, sanitize, grade []transform.Stage) error {
	ctx = services.WithNotebook(services.WithStudent(ctx, job.studentID), job.notebookID)
	log := logging.WithContext(ctx, r.logger)

	src := r.layout.NotebookPath(coursedir.StageSubmitted, job.studentID, assignmentID, job.notebookID)
	dst := r.layout.NotebookPath(coursedir.StageAutograded, job.studentID, assignmentID, job.notebookID)

	nb, err := notebook.Read(src)
	if err != nil {
		return services.Wrap(services.ErrIO, "pipeline", "autograde", src, err)
	}

	res := &transform.Resources{
		AssignmentID: assignmentID,
		StudentID:    job.studentID,
		DatabasePath: r.cfg.DatabasePath(),
		Timestamp:    job.timestamp,
		Logger:       log,
	}

	if err := runStages(ctx, sanitize, nb, res); err != nil {
		return err
	}
	if err := runStages(ctx, grade, nb, res); err != nil {
		return err
	}
	if err := nb.Write(dst); err != nil {
		return services.Wrap(services.ErrIO, "pipeline", "autograde", dst, err)
	}
	log.Info("autograded notebook")
	return nil
}

// copySubmissionFiles mirrors a student's support files (data, local
// modules) next to their autograded notebooks so graders see the submission
// whole.
func (r *Runner) copySubmissionFiles(assignmentID, studentID string) error {
	srcDir := r.layout.AssignmentDir(coursedir.StageSubmitted, studentID, assignmentID)
	dstDir := r.layout.AssignmentDir(coursedir.StageAutograded, studentID, assignmentID)

	files, err := r.layout.SupportFiles(srcDir)
	if err != nil {
		return services.Wrap(services.ErrIO, "pipeline", "copy submission files", srcDir, err)
	}
	for _, rel := range files {
		dst := filepath.Join(dstDir, rel)
		if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
			return services.Wrap(services.ErrIO, "pipeline", "copy submission files", dst, err)
		}
		if err := fileutil.CopyFile(filepath.Join(srcDir, rel), dst); err != nil {
			return services.Wrap(services.ErrIO, "pipeline", "copy submission files", rel, err)
		}
	}
	return nil
}
