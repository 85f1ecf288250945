package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/astrosteveo/copilot-tui/cmd/copilot-tui/app"
)

// newResetCommand creates the reset command.
func newResetCommand(a *app.App) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Remove all installed assets and clear every decision",
		Long: `Reset deletes every installed asset file and empties the enablement
record. No backups are taken. The command refuses to run without --yes.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !yes {
				return fmt.Errorf("reset is destructive; re-run with --yes to confirm")
			}

			session, err := a.Session(cmd.Context())
			if err != nil {
				return err
			}
			if err := session.Reset(); err != nil {
				return err
			}
			printWarnings(cmd, session.Warnings())
			return saveIfNeeded(a, session)
		},
	}

	cmd.Flags().BoolVar(&yes, "yes", false, "confirm the reset")
	return cmd
}
