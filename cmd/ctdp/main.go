package main

import (
	"log"
	"os"

	"github.com/kutbudev/ctdp/internal/cli/commands"
	"github.com/urfave/cli/v2"
)

// Version will be set during build with ldflags
var Version = "0.3.0"

func main() {
	app := &cli.App{
		Name:    "ctdp",
		Usage:   "Chain-of-tasks discipline tracking CLI",
		Version: Version,
		Commands: []*cli.Command{
			// Core commands
			commands.NewContextCommand(),
			commands.NewChainCommand(),
			commands.NewReserveCommand(),

			// Reports & Views
			commands.NewStatsCommand(),

			// Meta
			commands.NewTagCommand(),
			commands.NewSettingsCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
