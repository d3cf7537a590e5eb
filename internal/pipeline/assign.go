package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"chalk/internal/coursedir"
	"chalk/internal/fileutil"
	"chalk/internal/gradebook"
	"chalk/internal/logging"
	"chalk/internal/notebook"
	"chalk/internal/preflight"
	"chalk/internal/services"
	"chalk/internal/transform"
)

// Assign runs the distribution pass: every notebook under
// source/./{assignment} is transformed into its released form under
// release/./{assignment}, master cells are recorded in the gradebook, and
// support files are copied alongside.
func (r *Runner) Assign(ctx context.Context, assignmentID string, opts AssignOptions) (*Result, error) {
	runID := newRunID()
	ctx = services.WithRunID(services.WithAssignment(ctx, assignmentID), runID)
	log := logging.WithContext(ctx, r.logger)
	result := &Result{RunID: runID, Operation: "assign", Assignment: assignmentID}

	if err := preflight.Failed(preflight.RunAssign(r.cfg)); err != nil {
		return nil, err
	}

	ids, err := r.layout.ListNotebooks(coursedir.StageSource, coursedir.AuthorStudent, assignmentID, "")
	if err != nil {
		return nil, services.Wrap(services.ErrMissingEntry, "pipeline", "assign",
			fmt.Sprintf("no source tree for assignment %q", assignmentID), err)
	}
	if len(ids) == 0 {
		return nil, services.Wrap(services.ErrMissingEntry, "pipeline", "assign",
			fmt.Sprintf("assignment %q has no notebooks", assignmentID), nil)
	}

	if !opts.NoDatabase {
		if err := r.ensureAssignment(ctx, assignmentID, opts.Create); err != nil {
			return nil, err
		}
	}

	log.Info("starting distribution run",
		logging.Int("notebooks", len(ids)),
		logging.Bool("force", opts.Force))

	stages := distributionStages(r.cfg, opts)
	sink := &resultSink{result: result}

	group, gctx := errgroup.WithContext(ctx)
	group.SetLimit(r.cfg.Autograde.Workers)
	for _, id := range ids {
		id := id
		group.Go(func() error {
			err := r.assignDocument(gctx, assignmentID, id, stages, opts)
			if err != nil && services.Fatal(err) {
				return err
			}
			sink.record(DocumentResult{StudentID: coursedir.AuthorStudent, NotebookID: id, Err: err})
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return result, err
	}

	if err := r.copySupportFiles(assignmentID); err != nil {
		return result, err
	}
	if !opts.NoDatabase {
		if err := r.cleanStaleNotebooks(ctx, assignmentID, ids, log); err != nil {
			return result, err
		}
	}

	log.Info("distribution run finished",
		logging.Int("documents", len(result.Documents)),
		logging.Int("failed", len(result.Failed())))
	return result, nil
}

func (r *Runner) ensureAssignment(ctx context.Context, assignmentID string, create bool) error {
	return gradebook.With(r.cfg.DatabasePath(), func(gb *gradebook.Gradebook) error {
		_, err := gb.FindAssignment(ctx, assignmentID)
		if err == nil {
			return nil
		}
		if !errors.Is(err, services.ErrMissingEntry) || !create {
			return err
		}
		_, err = gb.UpdateOrCreateAssignment(ctx, assignmentID, r.cfg.Course.ID, nil)
		return err
	})
}

func (r *Runner) assignDocument(ctx context.Context, assignmentID, notebookID string, stages []transform.Stage, opts AssignOptions) error {
	ctx = services.WithNotebook(ctx, notebookID)
	log := logging.WithContext(ctx, r.logger)

	src := r.layout.NotebookPath(coursedir.StageSource, coursedir.AuthorStudent, assignmentID, notebookID)
	dst := r.layout.NotebookPath(coursedir.StageRelease, coursedir.AuthorStudent, assignmentID, notebookID)

	if !opts.Force {
		if _, err := os.Stat(dst); err == nil {
			return services.Wrap(services.ErrStage, "pipeline", "assign",
				fmt.Sprintf("%s already exists (use --force to overwrite)", dst), nil)
		}
	}

	nb, err := notebook.Read(src)
	if err != nil {
		return services.Wrap(services.ErrIO, "pipeline", "assign", src, err)
	}

	res := &transform.Resources{
		AssignmentID: assignmentID,
		StudentID:    coursedir.AuthorStudent,
		Logger:       log,
	}
	if !opts.NoDatabase {
		res.DatabasePath = r.cfg.DatabasePath()
	}

	if err := runStages(ctx, stages, nb, res); err != nil {
		return err
	}
	if err := nb.Write(dst); err != nil {
		return services.Wrap(services.ErrIO, "pipeline", "assign", dst, err)
	}
	log.Info("released notebook")
	return nil
}

// copySupportFiles mirrors non-notebook files (data sets, images, local
// modules) from the source assignment directory into the release, honoring
// the configured ignore globs.
func (r *Runner) copySupportFiles(assignmentID string) error {
	srcDir := r.layout.AssignmentDir(coursedir.StageSource, coursedir.AuthorStudent, assignmentID)
	dstDir := r.layout.AssignmentDir(coursedir.StageRelease, coursedir.AuthorStudent, assignmentID)

	files, err := r.layout.SupportFiles(srcDir)
	if err != nil {
		return services.Wrap(services.ErrIO, "pipeline", "copy support files", srcDir, err)
	}
	for _, rel := range files {
		dst := filepath.Join(dstDir, rel)
		if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
			return services.Wrap(services.ErrIO, "pipeline", "copy support files", dst, err)
		}
		if err := fileutil.CopyFile(filepath.Join(srcDir, rel), dst); err != nil {
			return services.Wrap(services.ErrIO, "pipeline", "copy support files", rel, err)
		}
	}
	return nil
}

// cleanStaleNotebooks removes gradebook notebooks that vanished from the
// source set. RemoveNotebook refuses once submissions exist, which keeps a
// shrunken source from silently deleting grading history.
func (r *Runner) cleanStaleNotebooks(ctx context.Context, assignmentID string, sourceIDs []string, log *slog.Logger) error {
	current := make(map[string]bool, len(sourceIDs))
	for _, id := range sourceIDs {
		current[id] = true
	}
	return gradebook.With(r.cfg.DatabasePath(), func(gb *gradebook.Gradebook) error {
		known, err := gb.ListNotebooks(ctx, assignmentID)
		if err != nil {
			return err
		}
		for _, name := range known {
			if current[name] {
				continue
			}
			log.Info("removing stale notebook from gradebook",
				logging.String(logging.FieldNotebook, name))
			if err := gb.RemoveNotebook(ctx, name, assignmentID); err != nil {
				return err
			}
		}
		return nil
	})
}
