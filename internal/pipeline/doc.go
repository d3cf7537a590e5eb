// Package pipeline drives batches of documents through ordered
// transformation stages. The distribution run turns instructor sources into
// the student-facing release; the grading run sanitizes collected
// submissions and executes them against the course kernel.
//
// Stage order within a run is a hard invariant: checksums are only
// meaningful if they are computed after solutions are cleared, and hidden
// tests must be stripped after the master copy is saved. The ordered lists
// live in passes.go and nowhere else.
//
// Failures split two ways. A fatal condition (bad configuration, missing
// gradebook entries, grading history that would be orphaned) aborts the
// whole run. Anything scoped to one document is recorded in the aggregate
// Result and the batch keeps going.
package pipeline
