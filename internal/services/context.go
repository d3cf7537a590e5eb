package services

import "context"

type contextKey string

const (
	assignmentKey contextKey = "assignment"
	studentKey    contextKey = "student"
	notebookKey   contextKey = "notebook"
	stageKey      contextKey = "stage"
	runIDKey      contextKey = "run_id"
)

// WithAssignment annotates context with the assignment identifier.
func WithAssignment(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, assignmentKey, id)
}

// AssignmentFromContext extracts the assignment identifier if present.
func AssignmentFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(assignmentKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithStudent annotates context with the student identifier.
func WithStudent(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, studentKey, id)
}

// StudentFromContext extracts the student identifier if present.
func StudentFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(studentKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithNotebook annotates context with the notebook identifier.
func WithNotebook(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, notebookKey, id)
}

// NotebookFromContext extracts the notebook identifier if present.
func NotebookFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(notebookKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithStage annotates context with the transformation stage name.
func WithStage(ctx context.Context, stage string) context.Context {
	if stage == "" {
		return ctx
	}
	return context.WithValue(ctx, stageKey, stage)
}

// StageFromContext returns the stage name if present.
func StageFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(stageKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithRunID annotates context with a correlation identifier for one batch run.
func WithRunID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, runIDKey, id)
}

// RunIDFromContext extracts the correlation identifier if present.
func RunIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(runIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}
