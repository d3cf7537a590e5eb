// Package logging builds the slog loggers used across chalk. It provides a
// console handler for interactive use, a JSON handler for machine-readable
// logs, attribute helpers with standardized field names, and context-derived
// fields so every record carries the assignment, student, notebook, stage,
// and run identifiers of the work being processed.
package logging
