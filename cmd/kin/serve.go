package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/organic-programming/sophia-kin/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the kin gRPC server",
	Long: `Serves kin.v1.KinService on --listen until interrupted.

Listen URIs:
  tcp://:9090            TCP
  unix:///tmp/kin.sock   Unix domain socket
  ws://:8080/grpc        gRPC over WebSocket
  stdio://               stdin/stdout pipe`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		listen := cfg.Listen
		if cmd.Flags().Changed("listen") {
			listen, _ = cmd.Flags().GetString("listen")
		}
		reflection := cfg.Reflection
		if noReflection, _ := cmd.Flags().GetBool("no-reflection"); noReflection {
			reflection = false
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return server.ListenAndServe(ctx, listen, cfg.Root, reflection)
	},
}

func init() {
	serveCmd.Flags().String("listen", "tcp://:9090", "listen URI")
	serveCmd.Flags().Bool("no-reflection", false, "disable gRPC server reflection")
	rootCmd.AddCommand(serveCmd)
}
