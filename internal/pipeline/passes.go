package pipeline

import (
	"chalk/internal/config"
	"chalk/internal/executor"
	"chalk/internal/transform"
)

// distributionStages builds the source-to-release pass. Checksums run twice:
// once over the cleared solutions so the master copy is fingerprinted before
// hidden tests are stripped, and again so released documents carry checksums
// matching what students actually receive.
func distributionStages(cfg *config.Config, opts AssignOptions) []transform.Stage {
	stages := []transform.Stage{
		transform.IncludeHeaderFooter{
			HeaderPath: cfg.HeaderNotebookPath(),
			FooterPath: cfg.FooterNotebookPath(),
		},
		transform.LockCells{
			LockAll:      cfg.Assign.LockAll,
			LockSolution: cfg.Assign.LockSolution,
			LockGrade:    cfg.Assign.LockGrade,
			LockReadonly: cfg.Assign.LockReadonly,
		},
		transform.ClearSolutions{
			CodeStub:        cfg.Assign.CodeStub,
			TextStub:        cfg.Assign.TextStub,
			Begin:           cfg.Assign.BeginSolution,
			End:             cfg.Assign.EndSolution,
			EnforceMetadata: !opts.NoMetadata,
		},
		transform.ClearOutput{},
	}
	if !opts.NoMetadata {
		stages = append(stages, transform.CheckCellMetadata{})
	}
	stages = append(stages, transform.ComputeChecksums{})
	if !opts.NoDatabase {
		stages = append(stages, transform.SaveCells{})
	}
	stages = append(stages,
		transform.ClearHiddenTests{
			Begin:           cfg.Assign.BeginHiddenTest,
			End:             cfg.Assign.EndHiddenTest,
			EnforceMetadata: !opts.NoMetadata,
		},
		transform.ComputeChecksums{},
	)
	if !opts.NoMetadata {
		stages = append(stages, transform.CheckCellMetadata{})
	}
	return stages
}

// sanitizeStages builds the first grading sub-pass: normalize the submission
// and restore every instructor-owned cell from the gradebook before anything
// is executed or scored.
func sanitizeStages() []transform.Stage {
	return []transform.Stage{
		transform.ClearOutput{},
		transform.DeduplicateIDs{},
		transform.OverwriteKernelspec{},
		transform.OverwriteCells{},
		transform.CheckCellMetadata{},
	}
}

// gradeStages builds the second grading sub-pass over the sanitized document.
func gradeStages(cfg *config.Config, run executor.Executor) []transform.Stage {
	return []transform.Stage{
		transform.Execute{Runner: run},
		transform.LimitOutput{
			MaxBytes: cfg.Autograde.MaxOutputBytes,
			MaxLines: cfg.Autograde.MaxOutputLines,
		},
		transform.SaveAutoGrades{},
		transform.AssignLatePenalty{},
		transform.CheckCellMetadata{},
	}
}
