package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/arbor"
	"github.com/aretw0/arbor/internal/cli"
	"github.com/aretw0/arbor/pkg/domain"
)

// resolveInput is the document read by the resolve command.
type resolveInput struct {
	domain.Gesture
	Components []domain.Component `json:"components"`
}

type resolveOutput struct {
	Placement  domain.Placement   `json:"placement"`
	Diagnostic *domain.Diagnostic `json:"diagnostic,omitempty"`
	Tree       []domain.Component `json:"tree,omitempty"`
}

var resolveCmd = &cobra.Command{
	Use:   "resolve [file]",
	Short: "Resolve one drop gesture against a tree",
	Long: `Reads a JSON document {"drag": ..., "target": ..., "tabHover": ..., "components": [...]}
from the file (or stdin) and prints the resulting placement. With --apply the resulting tree is printed too.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		var path string
		if len(args) > 0 {
			path = args[0]
		}
		var in resolveInput
		if err := cli.ReadJSON(path, cmd.InOrStdin(), &in); err != nil {
			return err
		}

		editor, err := arbor.New(cli.EditorOptions(cfg, nil, logger, nil)...)
		if err != nil {
			return err
		}

		p := editor.Resolve(cmd.Context(), in.Gesture, in.Components)
		out := resolveOutput{Placement: p}
		if d, rejected := p.Rejected(); rejected {
			out.Diagnostic = &d
		}

		if apply, _ := cmd.Flags().GetBool("apply"); apply && out.Diagnostic == nil {
			tree, err := applyPlacement(cmd, editor, in.Components, p)
			if err != nil {
				return err
			}
			out.Tree = tree
		}
		return cli.PrintJSON(cmd.OutOrStdout(), out)
	},
}

// applyPlacement runs the placement through a scratch page of the in-memory editor.
func applyPlacement(cmd *cobra.Command, editor *arbor.Editor, tree []domain.Component, p domain.Placement) ([]domain.Component, error) {
	const scratch = "resolve"
	if _, err := editor.Open(cmd.Context(), scratch, tree); err != nil {
		return nil, err
	}
	doc, _, err := editor.Dispatch(cmd.Context(), scratch, p)
	if err != nil {
		return nil, fmt.Errorf("failed to apply placement: %w", err)
	}
	return doc.Components(), nil
}

func init() {
	rootCmd.AddCommand(resolveCmd)
	resolveCmd.Flags().Bool("apply", false, "Also print the tree after applying the placement")
}
