// Package cmd hosts the cobra command tree for the copilot-tui CLI.
package cmd

import (
	"github.com/spf13/cobra"

	"github.com/astrosteveo/copilot-tui/cmd/copilot-tui/app"
)

// flag values bound on the root command.
type rootFlags struct {
	root     string
	verbose  bool
	quiet    bool
	noColor  bool
	noSave   bool
	logLevel string
	config   string
}

// NewRootCommand creates the root command with all subcommands wired to
// the application context.
func NewRootCommand(a *app.App) *cobra.Command {
	flags := &rootFlags{}

	rootCmd := &cobra.Command{
		Use:     "copilot-tui",
		Short:   "Curate upstream Copilot assets in a project",
		Version: a.Version(),
		Long: `copilot-tui keeps a project's .github asset tree reconciled against
the upstream awesome-copilot catalog.

It mirrors the catalog into a local snapshot cache, tracks which
instructions, prompts, and chat modes are enabled, and materializes
those decisions as files under .github/. Locally modified files are
backed up before they are overwritten or removed.`,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			a.Config().UpdateFromFlags(flags.root, flags.verbose, flags.quiet,
				flags.noColor, flags.noSave, flags.logLevel)
			a.SetLogger(app.NewLogger(a.Config()))
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&flags.root, "root", "", "project root directory (default \".\")")
	rootCmd.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "verbose output (shortcut for --log-level=debug)")
	rootCmd.PersistentFlags().BoolVarP(&flags.quiet, "quiet", "q", false, "minimal output (shortcut for --log-level=warn)")
	rootCmd.PersistentFlags().BoolVar(&flags.noColor, "no-color", false, "disable colored output")
	rootCmd.PersistentFlags().BoolVar(&flags.noSave, "no-save", false, "skip the implicit save after mutating commands")
	rootCmd.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "log level: trace, debug, info, warn, error (overrides -v/-q)")
	rootCmd.PersistentFlags().StringVar(&flags.config, "config", "", "config file (flag value is not read; the file comes from COPILOT_TUI_CONFIG, else .copilot-tui.yaml in $HOME or the current directory)")

	rootCmd.SetVersionTemplate("copilot-tui {{.Version}}\n")

	rootCmd.AddCommand(newListCommand(a))
	rootCmd.AddCommand(newEnableCommand(a))
	rootCmd.AddCommand(newDisableCommand(a))
	rootCmd.AddCommand(newToggleCommand(a))
	rootCmd.AddCommand(newCollectionCommand(a))
	rootCmd.AddCommand(newResetCommand(a))
	rootCmd.AddCommand(newSyncCommand(a))
	rootCmd.AddCommand(newStatusCommand(a))

	return rootCmd
}

// saveIfNeeded persists the enablement record after a mutating command
// unless the user opted out.
func saveIfNeeded(a *app.App, session sessionSaver) error {
	if a.Config().NoSave {
		return nil
	}
	return session.Save()
}

// sessionSaver is the slice of the engine session that mutating commands
// need for persistence.
type sessionSaver interface {
	Save() error
}
