package config

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateCourse(); err != nil {
		return err
	}
	if err := c.validateCollect(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateCourse() error {
	if strings.TrimSpace(c.Course.ID) == "" {
		return errors.New("course.id must be set")
	}
	seen := map[string]string{}
	stages := map[string]string{
		"course.source_dir":     c.Course.SourceDir,
		"course.release_dir":    c.Course.ReleaseDir,
		"course.submitted_dir":  c.Course.SubmittedDir,
		"course.autograded_dir": c.Course.AutogradedDir,
	}
	for key, dir := range stages {
		if strings.ContainsAny(dir, `/\`) {
			return fmt.Errorf("%s must be a bare directory name, got %q", key, dir)
		}
		if prev, ok := seen[dir]; ok {
			return fmt.Errorf("%s and %s both resolve to %q", prev, key, dir)
		}
		seen[dir] = key
	}
	return nil
}

func (c *Config) validateCollect() error {
	pattern, err := regexp.Compile(c.Collect.NamedRegexp)
	if err != nil {
		return fmt.Errorf("collect.named_regexp: %w", err)
	}
	groups := map[string]bool{}
	for _, name := range pattern.SubexpNames() {
		if name != "" {
			groups[name] = true
		}
	}
	for _, required := range []string{"student_id", "file_id"} {
		if !groups[required] {
			return fmt.Errorf("collect.named_regexp must define a (?P<%s>...) capture group", required)
		}
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	return nil
}
