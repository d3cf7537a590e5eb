package testsupport

import (
	"testing"

	"chalk/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t   testing.TB
	cfg *config.Config
}

// NewConfig produces a config rooted in a unique temp course directory per
// test. It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	cfgVal := config.Default()
	cfgVal.Course.Root = t.TempDir()

	builder := &configBuilder{
		t:   t,
		cfg: &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	if err := builder.cfg.Validate(); err != nil {
		t.Fatalf("config.Validate: %v", err)
	}

	return builder.cfg
}

// WithWorkers overrides the autograde worker count on the test config.
func WithWorkers(n int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Autograde.Workers = n
	}
}

// WithExecuteCommand sets the kernel execution argv on the test config.
func WithExecuteCommand(argv ...string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Autograde.ExecuteCommand = argv
	}
}

// WithCollectorPattern overrides the submitted-filename pattern and its
// timestamp layout.
func WithCollectorPattern(pattern, layout string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Collect.NamedRegexp = pattern
		b.cfg.Collect.TimestampLayout = layout
	}
}
