package testsupport

import (
	"context"
	"testing"
	"time"

	"chalk/internal/config"
	"chalk/internal/gradebook"
)

// MustOpenGradebook opens the course database for tests and registers cleanup.
func MustOpenGradebook(t testing.TB, cfg *config.Config) *gradebook.Gradebook {
	t.Helper()

	gb, err := gradebook.Open(cfg.DatabasePath())
	if err != nil {
		t.Fatalf("gradebook.Open: %v", err)
	}
	t.Cleanup(func() {
		gb.Close()
	})
	return gb
}

// SeedAssignment registers an assignment with an optional due date.
func SeedAssignment(t testing.TB, gb *gradebook.Gradebook, name, courseID string, due *time.Time) *gradebook.Assignment {
	t.Helper()

	assignment, err := gb.UpdateOrCreateAssignment(context.Background(), name, courseID, due)
	if err != nil {
		t.Fatalf("UpdateOrCreateAssignment: %v", err)
	}
	return assignment
}

// SeedStudent registers a student record.
func SeedStudent(t testing.TB, gb *gradebook.Gradebook, s gradebook.Student) *gradebook.Student {
	t.Helper()

	student, err := gb.UpdateOrCreateStudent(context.Background(), s)
	if err != nil {
		t.Fatalf("UpdateOrCreateStudent: %v", err)
	}
	return student
}
