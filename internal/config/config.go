// Package config loads the orchestrator configuration from YAML, with .env
// loading and environment variable expansion.
package config

import (
	"fmt"
	"os"
	"path"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the application configuration.
type Config struct {
	Source   SourceConfig   `yaml:"source"`
	Output   OutputConfig   `yaml:"output"`
	Compiler CompilerConfig `yaml:"compiler"`
}

// SourceConfig describes where the build command collects input files.
type SourceConfig struct {
	Dir     string   `yaml:"dir"`
	Include []string `yaml:"include,omitempty"` // glob patterns over normalized paths
}

// OutputConfig describes the output sinks.
type OutputConfig struct {
	Dir            string `yaml:"dir"`
	DeclarationDir string `yaml:"declaration_dir,omitempty"` // defaults to Dir
}

// CompilerConfig is the orchestrator-recognized compiler surface. Options
// is forwarded opaquely to the toolchain.
type CompilerConfig struct {
	// NoExternalResolve disables the host adapter's file-system fallback,
	// forcing a closed input set. Faster, but every referenced file must be
	// supplied by the pipeline.
	NoExternalResolve bool `yaml:"no_external_resolve"`
	// SortOutput emits compiled files in reference-dependency order, for
	// targets that concatenate all output into one file.
	SortOutput bool `yaml:"sort_output"`
	// Declarations requests declaration emission.
	Declarations bool `yaml:"declarations"`
	// EmitOnError controls whether error-severity diagnostics suppress
	// artifact writing for the cycle. Defaults to true (partial emission).
	EmitOnError *bool `yaml:"emit_on_error,omitempty"`
	// RootFilter narrows the root file list with glob patterns before the
	// compiler is invoked.
	RootFilter []string `yaml:"root_filter,omitempty"`
	// Options is the opaque pass-through compiler configuration.
	Options map[string]any `yaml:"options,omitempty"`
}

// ShouldEmitOnError resolves the EmitOnError default.
func (c *CompilerConfig) ShouldEmitOnError() bool {
	return c.EmitOnError == nil || *c.EmitOnError
}

// MatchesRootFilter reports whether a normalized path passes the root
// filter. An empty filter admits everything.
func (c *CompilerConfig) MatchesRootFilter(p string) bool {
	if len(c.RootFilter) == 0 {
		return true
	}
	for _, pattern := range c.RootFilter {
		if ok, err := path.Match(pattern, p); err == nil && ok {
			return true
		}
		// Also match against the basename so filters like "*.ts" behave
		// intuitively for nested paths.
		if ok, err := path.Match(pattern, path.Base(p)); err == nil && ok {
			return true
		}
	}
	return false
}

// Load reads configuration from the specified file.
func Load(configPath string) (*Config, error) {
	loadEnvFiles()

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	// Expand environment variables in the YAML content before parsing.
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// loadEnvFiles loads .env/.env.local if present. Existing process
// environment variables are not overwritten.
func loadEnvFiles() {
	for _, envPath := range []string{".env", ".env.local"} {
		if _, err := os.Stat(envPath); err == nil {
			_ = godotenv.Load(envPath)
			return
		}
	}
}

func (c *Config) applyDefaults() {
	if c.Source.Dir == "" {
		c.Source.Dir = "."
	}
	if len(c.Source.Include) == 0 {
		c.Source.Include = []string{"*.ts"}
	}
	if c.Output.Dir == "" {
		c.Output.Dir = "./out"
	}
	if c.Output.DeclarationDir == "" {
		c.Output.DeclarationDir = c.Output.Dir
	}
	if c.Compiler.Options == nil {
		c.Compiler.Options = make(map[string]any)
	}
}

// Validate checks for configuration contradictions.
func (c *Config) Validate() error {
	for _, pattern := range c.Compiler.RootFilter {
		if _, err := path.Match(pattern, "probe"); err != nil {
			return fmt.Errorf("invalid root_filter pattern %q: %w", pattern, err)
		}
	}
	for _, pattern := range c.Source.Include {
		if _, err := path.Match(pattern, "probe"); err != nil {
			return fmt.Errorf("invalid include pattern %q: %w", pattern, err)
		}
	}
	return nil
}
