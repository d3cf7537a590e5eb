// Package preflight provides readiness checks for the filesystem paths and
// external tools a pipeline run depends on.
//
// The pipeline runner and the zip-collect engine run their aggregate check
// before touching any document: failing early beats discovering a read-only
// course tree halfway through a batch. Checks are gated by what the
// operation actually needs; assign never probes the execution tool.
package preflight
