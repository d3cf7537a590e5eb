package logging

import (
	"context"
	"log/slog"

	"chalk/internal/services"
)

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldAssignment is the standardized structured logging key for assignment identifiers.
	FieldAssignment = "assignment"
	// FieldStudent is the standardized structured logging key for student identifiers.
	FieldStudent = "student"
	// FieldNotebook is the standardized structured logging key for notebook identifiers.
	FieldNotebook = "notebook"
	// FieldStage is the standardized structured logging key for transformation stage names.
	FieldStage = "stage"
	// FieldRunID is the standardized structured logging key for batch run correlation identifiers.
	FieldRunID = "run_id"
)

// ContextFields extracts standardized slog attributes from the provided context.
func ContextFields(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	fields := make([]slog.Attr, 0, 5)
	if id, ok := services.AssignmentFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldAssignment, id))
	}
	if id, ok := services.StudentFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldStudent, id))
	}
	if id, ok := services.NotebookFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldNotebook, id))
	}
	if stage, ok := services.StageFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldStage, stage))
	}
	if rid, ok := services.RunIDFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldRunID, rid))
	}
	return fields
}

// WithContext returns a logger augmented with structured fields derived from the supplied context.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	fields := ContextFields(ctx)
	if len(fields) == 0 {
		return logger
	}
	return logger.With(attrsToArgs(fields)...)
}
