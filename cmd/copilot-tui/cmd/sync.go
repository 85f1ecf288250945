package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/astrosteveo/copilot-tui/cmd/copilot-tui/app"
)

// newSyncCommand creates the sync command.
func newSyncCommand(a *app.App) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Acquire or refresh the upstream snapshot",
		Long: `Sync ensures a usable snapshot of the upstream catalog. Within the
freshness window the cached snapshot is reused; --force bypasses the
window and contacts the upstream host.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			session, err := a.Session(cmd.Context())
			if err != nil {
				return err
			}

			if force {
				if err := session.Reload(cmd.Context(), true); err != nil {
					return err
				}
			}

			snap := session.Snapshot()
			fmt.Fprintf(cmd.OutOrStdout(), "snapshot %s (fetched %s)\n",
				snap.Commit, snap.FetchedAt.Format("2006-01-02 15:04:05 MST"))
			printWarnings(cmd, session.Warnings())
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "bypass the freshness window")
	return cmd
}
