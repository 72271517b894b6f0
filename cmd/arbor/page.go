package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/arbor"
	"github.com/aretw0/arbor/internal/cli"
	"github.com/aretw0/arbor/pkg/domain"
)

// pageFile accepts either a bare component array or {"components": [...]}.
type pageFile struct {
	Components []domain.Component
}

func (p *pageFile) UnmarshalJSON(data []byte) error {
	if err := json.Unmarshal(data, &p.Components); err == nil {
		return nil
	}
	var wrapped struct {
		Components []domain.Component `json:"components"`
	}
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return err
	}
	p.Components = wrapped.Components
	return nil
}

var pageCmd = &cobra.Command{
	Use:   "page",
	Short: "Manage stored pages",
}

var pageListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored pages",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEditor(cmd, func(editor *arbor.Editor) error {
			pages, err := editor.List(cmd.Context())
			if err != nil {
				return err
			}
			for _, id := range pages {
				fmt.Fprintln(cmd.OutOrStdout(), id)
			}
			return nil
		})
	},
}

var pageShowCmd = &cobra.Command{
	Use:   "show <page-id>",
	Short: "Print a stored page document",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEditor(cmd, func(editor *arbor.Editor) error {
			doc, err := editor.Load(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return cli.PrintJSON(cmd.OutOrStdout(), doc)
		})
	},
}

var pageImportCmd = &cobra.Command{
	Use:   "import <page-id> [file]",
	Short: "Create a page from a component tree (no-op when it exists)",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		var path string
		if len(args) > 1 {
			path = args[1]
		}
		var raw pageFile
		if err := cli.ReadJSON(path, cmd.InOrStdin(), &raw); err != nil {
			return err
		}
		return withEditor(cmd, func(editor *arbor.Editor) error {
			doc, err := editor.Open(cmd.Context(), args[0], raw.Components)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Page '%s' at revision %d (%d components)\n", doc.ID, doc.Revision, domain.Count(doc.Components()))
			return nil
		})
	},
}

var pageDeleteCmd = &cobra.Command{
	Use:   "delete <page-id>",
	Short: "Delete a stored page",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEditor(cmd, func(editor *arbor.Editor) error {
			return editor.Delete(cmd.Context(), args[0])
		})
	},
}

func historyCommand(use, short string, action domain.Action) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <page-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEditor(cmd, func(editor *arbor.Editor) error {
				doc, changed, err := editor.Dispatch(cmd.Context(), args[0], action)
				if err != nil {
					return err
				}
				if !changed {
					fmt.Fprintf(cmd.OutOrStdout(), "Nothing to %s\n", use)
					return nil
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Page '%s' at revision %d\n", doc.ID, doc.Revision)
				return nil
			})
		},
	}
}

// withEditor opens the configured store and runs fn with an editor bound to it.
func withEditor(cmd *cobra.Command, fn func(editor *arbor.Editor) error) error {
	cfg, logger, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	backend, err := cli.OpenBackend(cmd.Context(), cfg.Store, logger)
	if err != nil {
		return err
	}
	defer backend.Close()

	editor, err := arbor.New(cli.EditorOptions(cfg, backend, logger, nil)...)
	if err != nil {
		return err
	}
	return fn(editor)
}

func init() {
	rootCmd.AddCommand(pageCmd)
	pageCmd.AddCommand(
		pageListCmd,
		pageShowCmd,
		pageImportCmd,
		pageDeleteCmd,
		historyCommand("undo", "Undo the last change of a page", domain.Undo{}),
		historyCommand("redo", "Redo the last undone change of a page", domain.Redo{}),
	)
}
