package cmd

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/astrosteveo/copilot-tui/cmd/copilot-tui/app"
	"github.com/astrosteveo/copilot-tui/pkg/paths"
	"github.com/astrosteveo/copilot-tui/pkg/reconcile"
)

// listItem is the JSON shape for one asset view.
type listItem struct {
	Kind        string   `json:"kind"`
	Path        string   `json:"path"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	Effective   bool     `json:"effective"`
	Explicit    *bool    `json:"explicit,omitempty"`
	Inherited   string   `json:"inherited_from,omitempty"`
	Local       string   `json:"local"`
	Collections []string `json:"collections,omitempty"`
	Members     int      `json:"members,omitempty"`
	Enabled     int      `json:"enabled,omitempty"`
}

// newListCommand creates the list command.
func newListCommand(a *app.App) *cobra.Command {
	var kindFilter string
	var query string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List assets and their reconciled state",
		Long: `List shows every cataloged asset with its effective enablement,
explicit and inherited values, and local install state.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			session, err := a.Session(cmd.Context())
			if err != nil {
				return err
			}

			session.Filter(query)
			views := session.Views()
			session.ClearFilter()

			if kindFilter != "" {
				kind := paths.Kind(kindFilter)
				if !kind.Valid() {
					return fmt.Errorf("unknown kind %q", kindFilter)
				}
				var filtered []*reconcile.AssetView
				for _, v := range views {
					if v.Key.Kind == kind {
						filtered = append(filtered, v)
					}
				}
				views = filtered
			}

			if asJSON {
				return printJSON(cmd, views)
			}
			return printTable(cmd, views)
		},
	}

	cmd.Flags().StringVar(&kindFilter, "kind", "", "only list one kind: instruction, prompt, chatmode, collection")
	cmd.Flags().StringVar(&query, "filter", "", "case-insensitive substring filter")
	cmd.Flags().BoolVar(&asJSON, "json", false, "emit JSON instead of a table")

	return cmd
}

func printJSON(cmd *cobra.Command, views []*reconcile.AssetView) error {
	items := make([]listItem, 0, len(views))
	for _, v := range views {
		item := listItem{
			Kind:        string(v.Key.Kind),
			Path:        v.Key.Path,
			Name:        v.Name,
			Description: v.Description,
			Tags:        v.Tags,
			Effective:   v.Effective,
			Explicit:    v.Explicit,
			Local:       v.Local.String(),
			Collections: v.Collections,
			Members:     v.MemberCount,
			Enabled:     v.EnabledCount,
		}
		if v.Inherited != nil {
			item.Inherited = v.Inherited.CollectionID
		}
		items = append(items, item)
	}

	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	return encoder.Encode(items)
}

func printTable(cmd *cobra.Command, views []*reconcile.AssetView) error {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "KIND\tPATH\tNAME\tENABLED\tLOCAL")
	for _, v := range views {
		enabled := "off"
		if v.Effective {
			enabled = "on"
		}
		switch {
		case v.Explicit != nil:
			enabled += " (explicit)"
		case v.Inherited != nil:
			enabled += fmt.Sprintf(" (via %s)", v.Inherited.CollectionID)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			v.Key.Kind, v.Key.Path, v.Name, enabled, v.Local)
	}
	return w.Flush()
}
