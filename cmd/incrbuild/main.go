package main

import (
	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/incrbuild/cmd/incrbuild/commands"
	"git.home.luguber.info/inful/incrbuild/internal/version"
)

func main() {
	var cli commands.CLI
	ctx := kong.Parse(&cli,
		kong.Name("incrbuild"),
		kong.Description("Incremental compilation orchestrator with dependency-ordered emission."),
		kong.Vars{"version": version.Version},
	)
	ctx.FatalIfErrorf(ctx.Run(&commands.Global{}, &cli))
}
