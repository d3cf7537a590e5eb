package gradebook

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"chalk/internal/services"
)

const timestampLayout = time.RFC3339Nano

func encodeTime(ts *time.Time) any {
	if ts == nil {
		return nil
	}
	return ts.UTC().Format(timestampLayout)
}

func decodeTime(raw sql.NullString) (*time.Time, error) {
	if !raw.Valid || raw.String == "" {
		return nil, nil
	}
	ts, err := time.Parse(timestampLayout, raw.String)
	if err != nil {
		return nil, fmt.Errorf("parse stored timestamp %q: %w", raw.String, err)
	}
	return &ts, nil
}

// FindAssignment fetches an assignment by name, failing with a missing-entry
// error when it does not exist.
func (g *Gradebook) FindAssignment(ctx context.Context, name string) (*Assignment, error) {
	row := g.db.QueryRowContext(ctx,
		`SELECT name, course_id, duedate FROM assignments WHERE name = ?`, name)

	var a Assignment
	var due sql.NullString
	if err := row.Scan(&a.Name, &a.CourseID, &due); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, services.Wrap(services.ErrMissingEntry, "gradebook", "find assignment", name, nil)
		}
		return nil, fmt.Errorf("find assignment: %w", err)
	}
	dueDate, err := decodeTime(due)
	if err != nil {
		return nil, err
	}
	a.DueDate = dueDate
	return &a, nil
}

// UpdateOrCreateAssignment upserts an assignment record.
func (g *Gradebook) UpdateOrCreateAssignment(ctx context.Context, name, courseID string, due *time.Time) (*Assignment, error) {
	_, err := g.db.ExecContext(ctx,
		`INSERT INTO assignments (name, course_id, duedate) VALUES (?, ?, ?)
         ON CONFLICT(name) DO UPDATE SET course_id = excluded.course_id, duedate = excluded.duedate`,
		name, courseID, encodeTime(due))
	if err != nil {
		return nil, fmt.Errorf("upsert assignment: %w", err)
	}
	return g.FindAssignment(ctx, name)
}

// ListAssignments returns all assignments ordered by name.
func (g *Gradebook) ListAssignments(ctx context.Context) ([]Assignment, error) {
	rows, err := g.db.QueryContext(ctx,
		`SELECT name, course_id, duedate FROM assignments ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list assignments: %w", err)
	}
	defer rows.Close()

	var out []Assignment
	for rows.Next() {
		var a Assignment
		var due sql.NullString
		if err := rows.Scan(&a.Name, &a.CourseID, &due); err != nil {
			return nil, fmt.Errorf("scan assignment: %w", err)
		}
		dueDate, err := decodeTime(due)
		if err != nil {
			return nil, err
		}
		a.DueDate = dueDate
		out = append(out, a)
	}
	return out, rows.Err()
}

// RemoveAssignment deletes an assignment and its dependent rows. It refuses
// to delete grading history: assignments with submissions are protected.
func (g *Gradebook) RemoveAssignment(ctx context.Context, name string) error {
	if _, err := g.FindAssignment(ctx, name); err != nil {
		return err
	}
	count, err := g.SubmissionCount(ctx, name)
	if err != nil {
		return err
	}
	if count > 0 {
		return services.Wrap(services.ErrConflictingState, "gradebook", "remove assignment",
			fmt.Sprintf("%s has %d submissions", name, count), nil)
	}
	if _, err := g.db.ExecContext(ctx, `DELETE FROM assignments WHERE name = ?`, name); err != nil {
		return fmt.Errorf("delete assignment: %w", err)
	}
	return nil
}
