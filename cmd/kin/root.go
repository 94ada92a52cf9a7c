package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/organic-programming/sophia-kin/internal/config"
	"github.com/organic-programming/sophia-kin/internal/logging"
)

// cfg is loaded before any subcommand runs.
var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "kin",
	Short: "kin manages a family tree stored as PERSON.md files",
	Long: `kin records persons with their mother and father, checks that the
tree stays consistent, and answers ancestor queries from the CLI or over gRPC.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		configPath, _ := cmd.Flags().GetString("config")
		loaded, err := config.Load(configPath)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("root") {
			loaded.Root, _ = cmd.Flags().GetString("root")
		}
		cfg = loaded
		return logging.Initialize(cfg.Log.JSON, cfg.Log.Debug)
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logging.Sync()
	},
}

// Execute adds all child commands to the root command and runs it.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file (default ./"+config.FileName+")")
	rootCmd.PersistentFlags().String("root", ".", "directory holding PERSON.md records")
}
