package gen

import (
	"runtime"
)

// Option configures code generation.
type Option func(*Config) error

// Config carries the generator settings shared by every app.
type Config struct {
	// Patterns are the package patterns to load ("./...").
	Patterns []string
	// Dir is the working directory for loading.
	Dir string
	// Header is the comment placed at the top of each generated file.
	Header string
	// Workers bounds parallel per-app generation.
	Workers int
	// Features overrides the per-app feature flags; normally the flags
	// come from the DSL (EnableRepl and friends) and this stays empty.
	Features []Feature
	// DryRun renders everything but writes nothing.
	DryRun bool
	// SnapshotDir stores IR snapshots for change detection; empty
	// disables snapshots.
	SnapshotDir string
	// BuildFlags are passed to the underlying build system when loading.
	BuildFlags []string
}

// NewConfig creates a Config with defaults applied, then the options.
func NewConfig(opts ...Option) (*Config, error) {
	c := &Config{
		Patterns: []string{"./..."},
		Header:   DefaultHeader,
		Workers:  runtime.GOMAXPROCS(0),
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// DefaultHeader is the marker comment generated files carry.
const DefaultHeader = "Code generated by nurugen. DO NOT EDIT."

// WithPatterns sets the package patterns to load.
func WithPatterns(patterns ...string) Option {
	return func(c *Config) error {
		if len(patterns) == 0 {
			return NewConfigError("Patterns", nil, "at least one package pattern is required")
		}
		c.Patterns = patterns
		return nil
	}
}

// WithDir sets the working directory for loading.
func WithDir(dir string) Option {
	return func(c *Config) error {
		c.Dir = dir
		return nil
	}
}

// WithHeader sets the file header comment.
// The header is added at the top of each generated file.
func WithHeader(header string) Option {
	return func(c *Config) error {
		if header == "" {
			return NewConfigError("Header", nil, "header cannot be empty; generated files must be marked")
		}
		c.Header = header
		return nil
	}
}

// WithWorkers sets the number of parallel workers.
func WithWorkers(n int) Option {
	return func(c *Config) error {
		if n < 1 {
			return NewConfigError("Workers", n, "worker count must be positive")
		}
		c.Workers = n
		return nil
	}
}

// WithFeatures forces specific features on for every app.
// Features control optional code generation capabilities.
func WithFeatures(features ...Feature) Option {
	return func(c *Config) error {
		c.Features = append(c.Features, features...)
		return nil
	}
}

// WithDryRun renders all files without writing them.
func WithDryRun() Option {
	return func(c *Config) error {
		c.DryRun = true
		return nil
	}
}

// WithSnapshotDir enables IR snapshots in the given directory.
func WithSnapshotDir(dir string) Option {
	return func(c *Config) error {
		if dir == "" {
			return NewConfigError("SnapshotDir", nil, "snapshot directory cannot be empty")
		}
		c.SnapshotDir = dir
		return nil
	}
}

// WithBuildFlags sets extra build flags for package loading.
func WithBuildFlags(flags ...string) Option {
	return func(c *Config) error {
		c.BuildFlags = flags
		return nil
	}
}
