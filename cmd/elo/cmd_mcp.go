package main

import (
	"github.com/spf13/cobra"

	"elo-welcoming/internal/mcptools"
	"elo-welcoming/internal/reconcile"
	"elo-welcoming/internal/storage"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the workflow steps as MCP tools over stdio",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		n, closeFn, err := newNotifier(cmd.Context())
		if err != nil {
			return err
		}
		defer closeFn()

		return withReconciler(func(rec *reconcile.Reconciler, _ *storage.Storage) error {
			logger.Info().Msg("Serving MCP tools on stdio")
			return mcptools.ServeStdio(mcptools.NewServer(rec, n))
		})
	},
}
