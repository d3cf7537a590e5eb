// Package zipcollect turns a directory of downloaded submission archives
// into canonical submissions under submitted/{student}/{assignment}/.
//
// A run walks four phases: extract new archives into a holding tree,
// identify every extracted file through the configured collector, resolve
// one winning attempt per (student, file) pair, and materialize the winners.
// Every phase is idempotent. Extraction is gated by a JSON ledger keyed on
// archive checksum, materialization compares content and timestamps before
// writing, and a re-run over unchanged input reports a clean no-op. A file
// lock serializes concurrent runs over the same course tree.
package zipcollect
