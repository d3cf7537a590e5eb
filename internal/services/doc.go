// Package services defines shared utilities consumed by the transformation
// stages, the collection engine, and the gradebook store.
//
// Key responsibilities:
//   - Context helpers that stamp assignment, student, notebook, and run
//     identifiers for logging and tracing.
//   - Structured error markers plus the Wrap helper that classify failures
//     into the fixed taxonomy used by batch reports and exit codes.
//
// Use these helpers when wiring new stage logic so operational behaviour
// (error handling, observability) stays uniform across the pipeline.
package services
