package commands

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"

	"github.com/alecthomas/kong"
	"github.com/fatih/color"

	"git.home.luguber.info/inful/incrbuild/internal/config"
	errs "git.home.luguber.info/inful/incrbuild/internal/errors"
	"git.home.luguber.info/inful/incrbuild/internal/pipeline"
	"git.home.luguber.info/inful/incrbuild/internal/project"
	"git.home.luguber.info/inful/incrbuild/internal/toolchain/passthru"
	"git.home.luguber.info/inful/incrbuild/internal/vfs"
)

// Global context passed to subcommands.
type Global struct {
	Logger *slog.Logger
}

// CLI definition and global flags.
type CLI struct {
	Config  string           `short:"c" help:"Configuration file path" default:"incrbuild.yaml"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Build BuildCmd `cmd:"" help:"Run one build cycle over the configured sources"`
	Watch WatchCmd `cmd:"" help:"Watch sources and rebuild on change, replaying unchanged cycles"`
}

// AfterApply runs after flag parsing; sets up logging once.
func (c *CLI) AfterApply() error {
	level := slog.LevelInfo
	if c.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return nil
}

// NewProject constructs a project over the built-in passthrough toolchain,
// wired to print diagnostics on stderr.
func NewProject(cfg *config.Config) *project.Project {
	return project.New(cfg, passthru.New()).
		WithErrorFunc(PrintDiagnostic)
}

var (
	errorColor   = color.New(color.FgRed)
	warningColor = color.New(color.FgYellow)
)

// PrintDiagnostic renders one diagnostic or resolution failure on stderr.
// Resolution failures are red; everything else yellow.
func PrintDiagnostic(err error) {
	if errs.IsResolution(err) {
		errorColor.Fprintln(os.Stderr, err.Error())
		return
	}
	warningColor.Fprintln(os.Stderr, err.Error())
}

// CollectFiles walks the source directory and returns the pipeline files
// matching the include globs, with cwd/base metadata set so output paths
// reconstruct relative to the source root.
func CollectFiles(cfg *config.Config) ([]*pipeline.File, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("determine working directory: %w", err)
	}
	base, err := filepath.Abs(cfg.Source.Dir)
	if err != nil {
		return nil, fmt.Errorf("resolve source directory: %w", err)
	}

	var files []*pipeline.File
	walkErr := filepath.WalkDir(base, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(base, p)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if !matchesInclude(cfg.Source.Include, rel) {
			return nil
		}
		data, err := os.ReadFile(p)
		if err != nil {
			return fmt.Errorf("read source file %s: %w", p, err)
		}
		files = append(files, &pipeline.File{
			Path:     vfs.NormalizePath(filepath.ToSlash(p)),
			Contents: string(data),
			Cwd:      cwd,
			Base:     base,
		})
		return nil
	})
	if walkErr != nil {
		return nil, fmt.Errorf("walk source directory: %w", walkErr)
	}
	return files, nil
}

func matchesInclude(patterns []string, rel string) bool {
	for _, pattern := range patterns {
		if ok, err := path.Match(pattern, rel); err == nil && ok {
			return true
		}
		if ok, err := path.Match(pattern, path.Base(rel)); err == nil && ok {
			return true
		}
	}
	return false
}

// Sinks builds the disk sinks from the output configuration.
func Sinks(cfg *config.Config) (code, declarations pipeline.Sink) {
	code = &pipeline.DiskSink{Dir: cfg.Output.Dir}
	declarations = &pipeline.DiskSink{Dir: cfg.Output.DeclarationDir}
	return code, declarations
}
