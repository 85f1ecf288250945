package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/astrosteveo/copilot-tui/cmd/copilot-tui/app"
)

// newStatusCommand creates the status command.
func newStatusCommand(a *app.App) *cobra.Command {
	var cleanup bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show snapshot, dirty flag, warnings, and orphans",
		RunE: func(cmd *cobra.Command, _ []string) error {
			session, err := a.Session(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			snap := session.Snapshot()
			fmt.Fprintf(out, "snapshot: %s (fetched %s)\n",
				snap.Commit, snap.FetchedAt.Format("2006-01-02 15:04:05 MST"))
			fmt.Fprintf(out, "dirty: %v\n", session.Dirty())

			for _, orphan := range session.Orphans() {
				fmt.Fprintf(out, "orphan entry: %s\n", orphan)
			}
			for _, file := range session.OrphanFiles() {
				fmt.Fprintf(out, "orphan file: .github/%s\n", file)
			}

			if cleanup {
				removed := session.CleanupOrphans()
				if removed > 0 {
					fmt.Fprintf(out, "removed %d orphan entries\n", removed)
					if err := saveIfNeeded(a, session); err != nil {
						return err
					}
				}
			}

			printWarnings(cmd, session.Warnings())
			return nil
		},
	}

	cmd.Flags().BoolVar(&cleanup, "cleanup-orphans", false, "remove orphaned enablement entries")
	return cmd
}
