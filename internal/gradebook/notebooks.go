package gradebook

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"chalk/internal/services"
)

// FindNotebook fetches one notebook of an assignment, failing with a
// missing-entry error when it is not registered.
func (g *Gradebook) FindNotebook(ctx context.Context, name, assignment string) (*Notebook, error) {
	row := g.db.QueryRowContext(ctx,
		`SELECT name, assignment, kernelspec FROM notebooks WHERE name = ? AND assignment = ?`,
		name, assignment)

	var nb Notebook
	if err := row.Scan(&nb.Name, &nb.Assignment, &nb.Kernelspec); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, services.Wrap(services.ErrMissingEntry, "gradebook", "find notebook",
				fmt.Sprintf("%s/%s", assignment, name), nil)
		}
		return nil, fmt.Errorf("find notebook: %w", err)
	}
	return &nb, nil
}

// UpdateOrCreateNotebook registers a notebook under an assignment and records
// the instructor's kernelspec for later restoration.
func (g *Gradebook) UpdateOrCreateNotebook(ctx context.Context, name, assignment, kernelspec string) (*Notebook, error) {
	if _, err := g.FindAssignment(ctx, assignment); err != nil {
		return nil, err
	}
	_, err := g.db.ExecContext(ctx,
		`INSERT INTO notebooks (name, assignment, kernelspec) VALUES (?, ?, ?)
         ON CONFLICT(name, assignment) DO UPDATE SET kernelspec = excluded.kernelspec`,
		name, assignment, kernelspec)
	if err != nil {
		return nil, fmt.Errorf("upsert notebook: %w", err)
	}
	return g.FindNotebook(ctx, name, assignment)
}

// ListNotebooks returns the notebook names registered for an assignment,
// ordered by name.
func (g *Gradebook) ListNotebooks(ctx context.Context, assignment string) ([]string, error) {
	rows, err := g.db.QueryContext(ctx,
		`SELECT name FROM notebooks WHERE assignment = ? ORDER BY name`, assignment)
	if err != nil {
		return nil, fmt.Errorf("list notebooks: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan notebook: %w", err)
		}
		out = append(out, name)
	}
	return out, rows.Err()
}

// RemoveNotebook deletes a notebook and its grade cells. Assignments that
// already have submissions are protected: removing a notebook then would
// silently delete grading history, so the call fails with a conflict.
func (g *Gradebook) RemoveNotebook(ctx context.Context, name, assignment string) error {
	if _, err := g.FindNotebook(ctx, name, assignment); err != nil {
		return err
	}
	count, err := g.SubmissionCount(ctx, assignment)
	if err != nil {
		return err
	}
	if count > 0 {
		return services.Wrap(services.ErrConflictingState, "gradebook", "remove notebook",
			fmt.Sprintf("assignment %s has %d submissions", assignment, count), nil)
	}

	tx, err := g.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin remove notebook tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM grade_cells WHERE notebook = ? AND assignment = ?`, name, assignment); err != nil {
		return fmt.Errorf("delete grade cells: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM notebooks WHERE name = ? AND assignment = ?`, name, assignment); err != nil {
		return fmt.Errorf("delete notebook: %w", err)
	}
	return tx.Commit()
}

// SaveGradeCell upserts the master copy of a graded, solution, or locked cell.
func (g *Gradebook) SaveGradeCell(ctx context.Context, cell GradeCell) error {
	_, err := g.db.ExecContext(ctx,
		`INSERT INTO grade_cells (name, notebook, assignment, cell_type, grade, solution, locked, source, checksum, max_score)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
         ON CONFLICT(name, notebook, assignment) DO UPDATE SET
            cell_type = excluded.cell_type,
            grade = excluded.grade,
            solution = excluded.solution,
            locked = excluded.locked,
            source = excluded.source,
            checksum = excluded.checksum,
            max_score = excluded.max_score`,
		cell.Name, cell.Notebook, cell.Assignment, cell.CellType,
		boolToInt(cell.Grade), boolToInt(cell.Solution), boolToInt(cell.Locked),
		cell.Source, cell.Checksum, cell.MaxScore)
	if err != nil {
		return fmt.Errorf("upsert grade cell: %w", err)
	}
	return nil
}

// FindGradeCell fetches the master copy of one cell.
func (g *Gradebook) FindGradeCell(ctx context.Context, name, notebook, assignment string) (*GradeCell, error) {
	row := g.db.QueryRowContext(ctx,
		`SELECT name, notebook, assignment, cell_type, grade, solution, locked, source, checksum, max_score
         FROM grade_cells WHERE name = ? AND notebook = ? AND assignment = ?`,
		name, notebook, assignment)
	return scanGradeCell(row)
}

// GradeCells returns the master cells of a notebook keyed by grade id.
func (g *Gradebook) GradeCells(ctx context.Context, notebook, assignment string) (map[string]GradeCell, error) {
	rows, err := g.db.QueryContext(ctx,
		`SELECT name, notebook, assignment, cell_type, grade, solution, locked, source, checksum, max_score
         FROM grade_cells WHERE notebook = ? AND assignment = ?`,
		notebook, assignment)
	if err != nil {
		return nil, fmt.Errorf("list grade cells: %w", err)
	}
	defer rows.Close()

	out := map[string]GradeCell{}
	for rows.Next() {
		cell, err := scanGradeCell(rows)
		if err != nil {
			return nil, err
		}
		out[cell.Name] = *cell
	}
	return out, rows.Err()
}

// RemoveGradeCell deletes the master copy of one cell.
func (g *Gradebook) RemoveGradeCell(ctx context.Context, name, notebook, assignment string) error {
	if _, err := g.db.ExecContext(ctx,
		`DELETE FROM grade_cells WHERE name = ? AND notebook = ? AND assignment = ?`,
		name, notebook, assignment); err != nil {
		return fmt.Errorf("delete grade cell: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanGradeCell(row rowScanner) (*GradeCell, error) {
	var cell GradeCell
	var grade, solution, locked int
	if err := row.Scan(&cell.Name, &cell.Notebook, &cell.Assignment, &cell.CellType,
		&grade, &solution, &locked, &cell.Source, &cell.Checksum, &cell.MaxScore); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, services.Wrap(services.ErrMissingEntry, "gradebook", "find grade cell", cell.Name, nil)
		}
		return nil, fmt.Errorf("find grade cell: %w", err)
	}
	cell.Grade = grade != 0
	cell.Solution = solution != 0
	cell.Locked = locked != 0
	return &cell, nil
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}
