package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	copilottui "github.com/astrosteveo/copilot-tui"
	"github.com/astrosteveo/copilot-tui/cmd/copilot-tui/app"
	"github.com/astrosteveo/copilot-tui/pkg/assets"
)

// newEnableCommand creates the enable command.
func newEnableCommand(a *app.App) *cobra.Command {
	return &cobra.Command{
		Use:   "enable <kind:path>",
		Short: "Enable an asset and install its file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMutation(a, cmd, args[0], func(s copilottui.Session, key assets.Key) error {
				view, ok := s.View(key)
				if ok && view.Effective {
					fmt.Fprintf(cmd.OutOrStdout(), "%s already enabled\n", key)
					return nil
				}
				return s.Toggle(key)
			})
		},
	}
}

// newDisableCommand creates the disable command.
func newDisableCommand(a *app.App) *cobra.Command {
	return &cobra.Command{
		Use:   "disable <kind:path>",
		Short: "Disable an asset and remove its file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMutation(a, cmd, args[0], func(s copilottui.Session, key assets.Key) error {
				view, ok := s.View(key)
				if ok && !view.Effective {
					fmt.Fprintf(cmd.OutOrStdout(), "%s already disabled\n", key)
					return nil
				}
				return s.Toggle(key)
			})
		},
	}
}

// newToggleCommand creates the toggle command.
func newToggleCommand(a *app.App) *cobra.Command {
	return &cobra.Command{
		Use:   "toggle <kind:path>",
		Short: "Flip an asset's effective enablement",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMutation(a, cmd, args[0], func(s copilottui.Session, key assets.Key) error {
				return s.Toggle(key)
			})
		},
	}
}

// newCollectionCommand creates the collection command.
func newCollectionCommand(a *app.App) *cobra.Command {
	var on, off bool

	cmd := &cobra.Command{
		Use:   "collection <id>",
		Short: "Drive a collection and its members on or off",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if on == off {
				return fmt.Errorf("exactly one of --on or --off is required")
			}

			session, err := a.Session(cmd.Context())
			if err != nil {
				return err
			}
			if err := session.ToggleCollection(args[0], on); err != nil {
				return err
			}
			printWarnings(cmd, session.Warnings())
			return saveIfNeeded(a, session)
		},
	}

	cmd.Flags().BoolVar(&on, "on", false, "enable the collection and its members")
	cmd.Flags().BoolVar(&off, "off", false, "disable the collection and its members")
	return cmd
}

// runMutation parses the key argument, applies the mutation, reports
// warnings, and performs the implicit save.
func runMutation(a *app.App, cmd *cobra.Command, rawKey string, apply func(copilottui.Session, assets.Key) error) error {
	key, err := assets.ParseKey(rawKey)
	if err != nil {
		return err
	}

	session, err := a.Session(cmd.Context())
	if err != nil {
		return err
	}
	if err := apply(session, key); err != nil {
		return err
	}
	printWarnings(cmd, session.Warnings())
	return saveIfNeeded(a, session)
}

// printWarnings writes accumulated session warnings to stderr.
func printWarnings(cmd *cobra.Command, warnings []error) {
	for _, warn := range warnings {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", warn)
	}
}
