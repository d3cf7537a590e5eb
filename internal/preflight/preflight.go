package preflight

import (
	"fmt"
	"os"
	"strings"

	"chalk/internal/config"
	"chalk/internal/services"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// Failed collapses check results into a single configuration error, or nil
// when every check passed.
func Failed(results []Result) error {
	var failures []string
	for _, r := range results {
		if !r.Passed {
			failures = append(failures, fmt.Sprintf("%s: %s", r.Name, r.Detail))
		}
	}
	if len(failures) == 0 {
		return nil
	}
	return services.Wrap(services.ErrConfiguration, "preflight", "readiness check",
		strings.Join(failures, "; "), nil)
}

// RunAssign checks what the distribution pass needs: a readable source tree
// and a writable course root for the release output.
func RunAssign(cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}
	return []Result{
		CheckDirectoryAccess("Source directory", cfg.SourceDir()),
		CheckParentWritable("Release directory", cfg.ReleaseDir()),
	}
}

// RunAutograde checks the submission tree, the autograded output root, and
// the execution tool when one will be invoked.
func RunAutograde(cfg *config.Config, willExecute bool) []Result {
	if cfg == nil {
		return nil
	}
	results := []Result{
		CheckDirectoryAccess("Submitted directory", cfg.SubmittedDir()),
		CheckParentWritable("Autograded directory", cfg.AutogradedDir()),
	}
	if willExecute {
		results = append(results, CheckExecuteCommand(cfg.Autograde.ExecuteCommand))
	}
	return results
}

// RunCollect checks what a collection run needs. The archive drop directory
// is only checked when it exists: collection may legitimately run against a
// previously extracted tree after the archives were cleaned up.
func RunCollect(cfg *config.Config, assignment string) []Result {
	if cfg == nil {
		return nil
	}
	results := []Result{
		CheckParentWritable("Submitted directory", cfg.SubmittedDir()),
		CheckParentWritable("Extracted directory", cfg.ExtractedDir(assignment)),
	}
	if _, err := os.Stat(cfg.ArchiveDir(assignment)); err == nil {
		results = append(results, CheckDirectoryAccess("Archive directory", cfg.ArchiveDir(assignment)))
	}
	return results
}
