package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrMissingEntry marks lookups for assignments, students, or notebooks
	// that are absent from the gradebook.
	ErrMissingEntry = errors.New("missing entry")
	// ErrStage marks a transformation stage precondition failure.
	ErrStage = errors.New("stage error")
	// ErrIdentityUnresolved marks a submitted file that could not be mapped
	// to a student and notebook.
	ErrIdentityUnresolved = errors.New("identity unresolved")
	// ErrAttemptAmbiguous marks an attempt-resolution invariant violation.
	ErrAttemptAmbiguous = errors.New("attempt ambiguous")
	// ErrConflictingState marks store mutations that would silently destroy
	// grading history.
	ErrConflictingState = errors.New("conflicting state")
	// ErrIO marks archive corruption and filesystem failures.
	ErrIO = errors.New("io failure")
	// ErrConfiguration marks invalid setup detected before any document is
	// processed.
	ErrConfiguration = errors.New("configuration error")
)

// Wrap builds an error message that includes component context while tagging
// it with the provided marker for later classification. The marker should be
// one of the exported sentinel errors above.
func Wrap(marker error, component, operation, message string, err error) error {
	detail := buildDetail(component, operation, message)
	if marker == nil {
		marker = ErrIO
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Fatal reports whether an error should abort a whole run rather than be
// collected as a per-document failure.
func Fatal(err error) bool {
	return errors.Is(err, ErrConfiguration) ||
		errors.Is(err, ErrMissingEntry) ||
		errors.Is(err, ErrConflictingState)
}

// Kind maps an error to the short classification label used in batch reports.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrMissingEntry):
		return "missing entry"
	case errors.Is(err, ErrStage):
		return "stage"
	case errors.Is(err, ErrIdentityUnresolved):
		return "identity"
	case errors.Is(err, ErrAttemptAmbiguous):
		return "ambiguous attempt"
	case errors.Is(err, ErrConflictingState):
		return "conflict"
	case errors.Is(err, ErrConfiguration):
		return "configuration"
	default:
		return "io"
	}
}

func buildDetail(component, operation, message string) string {
	parts := make([]string, 0, 3)
	if component = strings.TrimSpace(component); component != "" {
		parts = append(parts, component)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
