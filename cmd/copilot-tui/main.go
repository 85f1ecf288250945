// Package main provides the entry point for the copilot-tui CLI tool.
package main

import (
	"context"
	"os"

	"github.com/astrosteveo/copilot-tui/cmd/copilot-tui/app"
	"github.com/astrosteveo/copilot-tui/cmd/copilot-tui/cmd"
)

// Version information populated by goreleaser.
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	application, err := app.New(version, commit, date)
	if err != nil {
		app.ExitOnError(err)
	}

	ctx, cancel := app.ContextWithSignals(context.Background())
	defer cancel()

	rootCmd := cmd.NewRootCommand(application)
	rootCmd.SetArgs(os.Args[1:])

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		application.Logger().Error().Err(err).Msg("Command failed")
		app.ExitOnError(err)
	}
}
