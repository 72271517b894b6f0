package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/arbor/internal/cli"
	"github.com/aretw0/arbor/pkg/domain"
)

var validateCmd = &cobra.Command{
	Use:   "validate [file]",
	Short: "Check a page tree for consistency",
	Long: `Reads a JSON array of components (or {"components": [...]}) and reports missing ids,
duplicate ids, missing types, leaves with children and leaf types at the page root.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		var path string
		if len(args) > 0 {
			path = args[0]
		}
		var raw pageFile
		if err := cli.ReadJSON(path, cmd.InOrStdin(), &raw); err != nil {
			return err
		}
		tree := raw.Components

		if err := domain.ValidateTree(tree, cfg.ContainerTypes); err != nil {
			return fmt.Errorf("validation failed: %w", err)
		}
		if err := validateRoot(tree, cfg.ContainerTypes); err != nil {
			return fmt.Errorf("validation failed: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Tree is valid! %d components\n", domain.Count(tree))
		return nil
	},
}

// validateRoot checks that only container types sit at the page root.
func validateRoot(tree []domain.Component, containerTypes []string) error {
	allowed := make(map[string]bool, len(containerTypes))
	for _, t := range containerTypes {
		allowed[t] = true
	}
	for _, c := range tree {
		if !allowed[c.Type] {
			return fmt.Errorf("%w: '%s' (%s) cannot be placed at the page root", domain.ErrInvalidTree, c.ID, c.Type)
		}
	}
	return nil
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
