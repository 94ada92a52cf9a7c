package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/organic-programming/sophia-kin/internal/cli"
)

var newCmd = &cobra.Command{
	Use:   "new",
	Short: "Record a new person interactively",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cli.RunNew(cmd.InOrStdin(), cmd.OutOrStdout(), cfg.Root)
	},
}

var showCmd = &cobra.Command{
	Use:   "show <uuid>",
	Short: "Display a person's PERSON.md",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return cli.RunShow(cfg.Root, args[0], cmd.OutOrStdout())
	},
}

var listCmd = &cobra.Command{
	Use:   "list [root]",
	Short: "List every person with their parents",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		root := cfg.Root
		if len(args) == 1 {
			root = args[0]
		}
		return cli.RunList(root, cmd.OutOrStdout(), os.Stderr)
	},
}

var ancestorsCmd = &cobra.Command{
	Use:   "ancestors <uuid>",
	Short: "List a person's ancestors by generation",
	Long: `Lists the ancestors of a person between --min and --max generations back.
Parents are generation 1, grandparents 2. --max 0 means no upper bound.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		minDepth, maxDepth := cfg.Ancestors.MinDepth, cfg.Ancestors.MaxDepth
		if cmd.Flags().Changed("min") {
			minDepth, _ = cmd.Flags().GetInt("min")
		}
		if cmd.Flags().Changed("max") {
			maxDepth, _ = cmd.Flags().GetInt("max")
		}
		return cli.RunAncestors(cfg.Root, args[0], minDepth, maxDepth, cmd.OutOrStdout())
	},
}

func init() {
	ancestorsCmd.Flags().Int("min", 1, "closest generation to include")
	ancestorsCmd.Flags().Int("max", 0, "furthest generation to include (0 = all)")

	rootCmd.AddCommand(newCmd, showCmd, listCmd, ancestorsCmd)
}
