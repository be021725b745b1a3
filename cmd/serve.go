// File: cmd/serve.go
package cmd

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/xkilldash9x/linkscout/internal/observability"
	"github.com/xkilldash9x/linkscout/internal/server"
	"github.com/xkilldash9x/linkscout/internal/tools"
)

// serveCmd starts the HTTP tool server.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP tool server.",
	Long: `Starts the tool server: a health endpoint plus one command endpoint that
dispatches to the LinkedIn automation tools. The server shuts down gracefully
on SIGINT/SIGTERM.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := observability.GetLogger()

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		toolset, err := tools.NewToolset(ctx, appCfg, logger)
		if err != nil {
			return fmt.Errorf("failed to assemble toolset: %w", err)
		}

		srv, err := server.NewServer(ctx, appCfg, logger, toolset)
		if err != nil {
			return fmt.Errorf("failed to initialize server: %w", err)
		}
		return srv.Start(ctx)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
