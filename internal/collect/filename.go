package collect

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"chalk/internal/config"
)

func init() {
	Register("filename", func(cfg *config.Config) (Collector, error) {
		return NewFilenameCollector(cfg.Collect.NamedRegexp, cfg.Collect.TimestampLayout)
	})
}

// FilenameCollector matches a named-capture pattern against the basename of
// each submitted file. The pattern must define student_id and file_id groups;
// a timestamp group is optional.
type FilenameCollector struct {
	pattern *regexp.Regexp
	layout  string
	groups  map[string]int
}

// NewFilenameCollector compiles the pattern and validates its capture groups.
func NewFilenameCollector(pattern, timestampLayout string) (*FilenameCollector, error) {
	compiled, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("compile collector pattern: %w", err)
	}
	groups := map[string]int{}
	for i, name := range compiled.SubexpNames() {
		if name != "" {
			groups[name] = i
		}
	}
	for _, required := range []string{"student_id", "file_id"} {
		if _, ok := groups[required]; !ok {
			return nil, fmt.Errorf("collector pattern missing (?P<%s>...) group", required)
		}
	}
	return &FilenameCollector{pattern: compiled, layout: timestampLayout, groups: groups}, nil
}

func (c *FilenameCollector) Name() string { return "filename" }

// Collect matches the basename without extension. Unrecognized names return
// (nil, nil) so the caller decides between skip and strict failure.
func (c *FilenameCollector) Collect(path string) (*Identity, error) {
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, filepath.Ext(base))

	match := c.pattern.FindStringSubmatch(base)
	if match == nil {
		return nil, nil
	}

	identity := &Identity{
		RawPath:   path,
		StudentID: match[c.groups["student_id"]],
		FileID:    match[c.groups["file_id"]],
	}
	if idx, ok := c.groups["timestamp"]; ok && c.layout != "" {
		if ts, err := time.Parse(c.layout, match[idx]); err == nil {
			identity.Timestamp = ts
		}
		// An unparseable timestamp is not an error: the attempt simply
		// carries no recoverable submission time.
	}
	if identity.StudentID == "" || identity.FileID == "" {
		return nil, nil
	}
	return identity, nil
}
