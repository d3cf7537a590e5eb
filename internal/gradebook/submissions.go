package gradebook

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"chalk/internal/services"
)

// FindSubmission fetches one student's submission of an assignment.
func (g *Gradebook) FindSubmission(ctx context.Context, assignment, student string) (*Submission, error) {
	row := g.db.QueryRowContext(ctx,
		`SELECT assignment, student, timestamp FROM submissions
         WHERE assignment = ? AND student = ?`, assignment, student)

	var s Submission
	var ts sql.NullString
	if err := row.Scan(&s.Assignment, &s.Student, &ts); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, services.Wrap(services.ErrMissingEntry, "gradebook", "find submission",
				fmt.Sprintf("%s/%s", assignment, student), nil)
		}
		return nil, fmt.Errorf("find submission: %w", err)
	}
	timestamp, err := decodeTime(ts)
	if err != nil {
		return nil, err
	}
	s.Timestamp = timestamp
	return &s, nil
}

// UpdateOrCreateSubmission upserts a submission record. Both the assignment
// and the student must already exist.
func (g *Gradebook) UpdateOrCreateSubmission(ctx context.Context, assignment, student string, timestamp *time.Time) (*Submission, error) {
	if _, err := g.FindAssignment(ctx, assignment); err != nil {
		return nil, err
	}
	if _, err := g.FindStudent(ctx, student); err != nil {
		return nil, err
	}
	_, err := g.db.ExecContext(ctx,
		`INSERT INTO submissions (assignment, student, timestamp) VALUES (?, ?, ?)
         ON CONFLICT(assignment, student) DO UPDATE SET timestamp = excluded.timestamp`,
		assignment, student, encodeTime(timestamp))
	if err != nil {
		return nil, fmt.Errorf("upsert submission: %w", err)
	}
	return g.FindSubmission(ctx, assignment, student)
}

// SubmissionCount returns how many students have submitted an assignment.
func (g *Gradebook) SubmissionCount(ctx context.Context, assignment string) (int, error) {
	var count int
	row := g.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM submissions WHERE assignment = ?`, assignment)
	if err := row.Scan(&count); err != nil {
		return 0, fmt.Errorf("count submissions: %w", err)
	}
	return count, nil
}

// SaveAutoGrade upserts one autograded cell result for a student.
func (g *Gradebook) SaveAutoGrade(ctx context.Context, grade Grade) error {
	_, err := g.db.ExecContext(ctx,
		`INSERT INTO grades (cell, notebook, assignment, student, auto_score, max_score, needs_manual)
         VALUES (?, ?, ?, ?, ?, ?, ?)
         ON CONFLICT(cell, notebook, assignment, student) DO UPDATE SET
            auto_score = excluded.auto_score,
            max_score = excluded.max_score,
            needs_manual = excluded.needs_manual`,
		grade.Cell, grade.Notebook, grade.Assignment, grade.Student,
		grade.AutoScore, grade.MaxScore, boolToInt(grade.NeedsManual))
	if err != nil {
		return fmt.Errorf("upsert grade: %w", err)
	}
	return nil
}

// Grades returns the autograded results for one student's notebook, keyed by
// cell grade id.
func (g *Gradebook) Grades(ctx context.Context, notebook, assignment, student string) (map[string]Grade, error) {
	rows, err := g.db.QueryContext(ctx,
		`SELECT cell, notebook, assignment, student, auto_score, max_score, needs_manual
         FROM grades WHERE notebook = ? AND assignment = ? AND student = ?`,
		notebook, assignment, student)
	if err != nil {
		return nil, fmt.Errorf("list grades: %w", err)
	}
	defer rows.Close()

	out := map[string]Grade{}
	for rows.Next() {
		var grade Grade
		var needsManual int
		if err := rows.Scan(&grade.Cell, &grade.Notebook, &grade.Assignment, &grade.Student,
			&grade.AutoScore, &grade.MaxScore, &needsManual); err != nil {
			return nil, fmt.Errorf("scan grade: %w", err)
		}
		grade.NeedsManual = needsManual != 0
		out[grade.Cell] = grade
	}
	return out, rows.Err()
}
