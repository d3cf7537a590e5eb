package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizeCourse(); err != nil {
		return err
	}
	c.normalizeAssign()
	c.normalizeAutograde()
	c.normalizeCollect()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizeCourse() error {
	var err error
	if strings.TrimSpace(c.Course.Root) == "" {
		c.Course.Root = defaultCourseRoot
	}
	if c.Course.Root, err = expandPath(c.Course.Root); err != nil {
		return fmt.Errorf("course.root: %w", err)
	}
	if strings.TrimSpace(c.Course.DBPath) != "" {
		if c.Course.DBPath, err = expandPath(c.Course.DBPath); err != nil {
			return fmt.Errorf("course.db_path: %w", err)
		}
	}
	if strings.TrimSpace(c.Course.LogDirPath) != "" {
		if c.Course.LogDirPath, err = expandPath(c.Course.LogDirPath); err != nil {
			return fmt.Errorf("course.log_dir: %w", err)
		}
	}
	if strings.TrimSpace(c.Course.SourceDir) == "" {
		c.Course.SourceDir = defaultSourceDir
	}
	if strings.TrimSpace(c.Course.ReleaseDir) == "" {
		c.Course.ReleaseDir = defaultReleaseDir
	}
	if strings.TrimSpace(c.Course.SubmittedDir) == "" {
		c.Course.SubmittedDir = defaultSubmittedDir
	}
	if strings.TrimSpace(c.Course.AutogradedDir) == "" {
		c.Course.AutogradedDir = defaultAutogradedDir
	}
	return nil
}

func (c *Config) normalizeAssign() {
	if c.Assign.CodeStub == "" {
		c.Assign.CodeStub = defaultCodeStub
	}
	if c.Assign.TextStub == "" {
		c.Assign.TextStub = defaultTextStub
	}
	if strings.TrimSpace(c.Assign.BeginSolution) == "" {
		c.Assign.BeginSolution = defaultBeginSolution
	}
	if strings.TrimSpace(c.Assign.EndSolution) == "" {
		c.Assign.EndSolution = defaultEndSolution
	}
	if strings.TrimSpace(c.Assign.BeginHiddenTest) == "" {
		c.Assign.BeginHiddenTest = defaultBeginHiddenTest
	}
	if strings.TrimSpace(c.Assign.EndHiddenTest) == "" {
		c.Assign.EndHiddenTest = defaultEndHiddenTest
	}
}

func (c *Config) normalizeAutograde() {
	if c.Autograde.ExecuteTimeout <= 0 {
		c.Autograde.ExecuteTimeout = defaultExecuteTimeout
	}
	if c.Autograde.MaxOutputBytes <= 0 {
		c.Autograde.MaxOutputBytes = defaultMaxOutputBytes
	}
	if c.Autograde.MaxOutputLines <= 0 {
		c.Autograde.MaxOutputLines = defaultMaxOutputLines
	}
	if strings.TrimSpace(c.Autograde.KernelName) == "" {
		c.Autograde.KernelName = "python3"
	}
	if c.Autograde.Workers <= 0 {
		c.Autograde.Workers = defaultWorkers
	}
}

func (c *Config) normalizeCollect() {
	if strings.TrimSpace(c.Collect.Collector) == "" {
		c.Collect.Collector = "filename"
	}
	if strings.TrimSpace(c.Collect.NamedRegexp) == "" {
		c.Collect.NamedRegexp = defaultNamedRegexp
	}
	if strings.TrimSpace(c.Collect.TimestampLayout) == "" {
		c.Collect.TimestampLayout = defaultTimestampLayout
	}
	if strings.TrimSpace(c.Collect.ArchiveDir) == "" {
		c.Collect.ArchiveDir = defaultArchiveDir
	}
	if strings.TrimSpace(c.Collect.ExtractedDir) == "" {
		c.Collect.ExtractedDir = defaultExtractedDir
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
