package config

const (
	defaultCourseRoot    = "~/course"
	defaultSourceDir     = "source"
	defaultReleaseDir    = "release"
	defaultSubmittedDir  = "submitted"
	defaultAutogradedDir = "autograded"
	defaultArchiveDir    = "downloaded"
	defaultExtractedDir  = "extracted"
	defaultLogFormat     = "console"
	defaultLogLevel      = "info"

	defaultCodeStub = "# YOUR CODE HERE\nraise NotImplementedError()"
	defaultTextStub = "YOUR ANSWER HERE"

	defaultBeginSolution   = "BEGIN SOLUTION"
	defaultEndSolution     = "END SOLUTION"
	defaultBeginHiddenTest = "BEGIN HIDDEN TESTS"
	defaultEndHiddenTest   = "END HIDDEN TESTS"

	defaultExecuteTimeout = 300
	defaultMaxOutputBytes = 1 << 20
	defaultMaxOutputLines = 1000
	defaultWorkers        = 1

	// defaultNamedRegexp matches filenames exported by common LMS download
	// bundles, e.g. ps1_hacker_attempt_2016-01-30-15-30-10_problem1.ipynb.
	defaultNamedRegexp = `.+_(?P<student_id>\w+)_attempt_(?P<timestamp>[0-9\-]+)_(?P<file_id>\w+)`

	// defaultTimestampLayout is a Go reference-time layout applied to the
	// timestamp capture group.
	defaultTimestampLayout = "2006-01-02-15-04-05"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Course: Course{
			ID:            "course101",
			Root:          defaultCourseRoot,
			SourceDir:     defaultSourceDir,
			ReleaseDir:    defaultReleaseDir,
			SubmittedDir:  defaultSubmittedDir,
			AutogradedDir: defaultAutogradedDir,
			Ignore:        []string{".ipynb_checkpoints", "__pycache__", "*.pyc"},
		},
		Assign: Assign{
			CodeStub:        defaultCodeStub,
			TextStub:        defaultTextStub,
			BeginSolution:   defaultBeginSolution,
			EndSolution:     defaultEndSolution,
			BeginHiddenTest: defaultBeginHiddenTest,
			EndHiddenTest:   defaultEndHiddenTest,
			LockSolution:    true,
			LockGrade:       true,
			LockReadonly:    true,
		},
		Autograde: Autograde{
			ExecuteTimeout: defaultExecuteTimeout,
			MaxOutputBytes: defaultMaxOutputBytes,
			MaxOutputLines: defaultMaxOutputLines,
			KernelName:     "python3",
			Workers:        defaultWorkers,
		},
		Collect: Collect{
			Collector:       "filename",
			NamedRegexp:     defaultNamedRegexp,
			TimestampLayout: defaultTimestampLayout,
			ArchiveDir:      defaultArchiveDir,
			ExtractedDir:    defaultExtractedDir,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
