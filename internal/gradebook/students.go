package gradebook

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"chalk/internal/services"
)

// FindStudent fetches a student by id, failing with a missing-entry error
// when the student is not enrolled.
func (g *Gradebook) FindStudent(ctx context.Context, id string) (*Student, error) {
	row := g.db.QueryRowContext(ctx,
		`SELECT id, first_name, last_name, email FROM students WHERE id = ?`, id)

	var s Student
	if err := row.Scan(&s.ID, &s.FirstName, &s.LastName, &s.Email); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, services.Wrap(services.ErrMissingEntry, "gradebook", "find student", id, nil)
		}
		return nil, fmt.Errorf("find student: %w", err)
	}
	return &s, nil
}

// UpdateOrCreateStudent upserts a student record.
func (g *Gradebook) UpdateOrCreateStudent(ctx context.Context, s Student) (*Student, error) {
	_, err := g.db.ExecContext(ctx,
		`INSERT INTO students (id, first_name, last_name, email) VALUES (?, ?, ?, ?)
         ON CONFLICT(id) DO UPDATE SET
            first_name = excluded.first_name,
            last_name = excluded.last_name,
            email = excluded.email`,
		s.ID, s.FirstName, s.LastName, s.Email)
	if err != nil {
		return nil, fmt.Errorf("upsert student: %w", err)
	}
	return g.FindStudent(ctx, s.ID)
}

// ListStudents returns all students ordered by id.
func (g *Gradebook) ListStudents(ctx context.Context) ([]Student, error) {
	rows, err := g.db.QueryContext(ctx,
		`SELECT id, first_name, last_name, email FROM students ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}
	defer rows.Close()

	var out []Student
	for rows.Next() {
		var s Student
		if err := rows.Scan(&s.ID, &s.FirstName, &s.LastName, &s.Email); err != nil {
			return nil, fmt.Errorf("scan student: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// RemoveStudent deletes a student unless they have submissions on record.
func (g *Gradebook) RemoveStudent(ctx context.Context, id string) error {
	if _, err := g.FindStudent(ctx, id); err != nil {
		return err
	}
	var count int
	row := g.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM submissions WHERE student = ?`, id)
	if err := row.Scan(&count); err != nil {
		return fmt.Errorf("count student submissions: %w", err)
	}
	if count > 0 {
		return services.Wrap(services.ErrConflictingState, "gradebook", "remove student",
			fmt.Sprintf("%s has %d submissions", id, count), nil)
	}
	if _, err := g.db.ExecContext(ctx, `DELETE FROM students WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete student: %w", err)
	}
	return nil
}
