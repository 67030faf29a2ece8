package commands

import (
	"fmt"
	"log/slog"

	"git.home.luguber.info/inful/incrbuild/internal/config"
)

// BuildCmd implements the 'build' command: one cycle, then exit.
type BuildCmd struct {
	Output string `short:"o" help:"Override output directory"`
}

func (b *BuildCmd) Run(_ *Global, root *CLI) error {
	cfg, err := config.Load(root.Config)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if b.Output != "" {
		cfg.Output.Dir = b.Output
		if cfg.Output.DeclarationDir == "" {
			cfg.Output.DeclarationDir = b.Output
		}
	}

	files, err := CollectFiles(cfg)
	if err != nil {
		return err
	}
	slog.Info("Starting build", "sources", len(files), "output", cfg.Output.Dir)

	prj := NewProject(cfg)
	for _, f := range files {
		prj.AddFile(f)
	}

	sink, declSink := Sinks(cfg)
	if err := prj.Compile(sink, declSink); err != nil {
		return fmt.Errorf("build failed: %w", err)
	}
	return nil
}
