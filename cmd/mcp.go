package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/xvierd/gitstate/internal/adapters/mcp"
)

// mcpCmd represents the mcp command
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the MCP server",
	Long: `Start the Model Context Protocol (MCP) server for integration with AI assistants.
The server provides tools for querying file states, history and merge info.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !app.config.MCP.Enabled {
			return fmt.Errorf("MCP server is disabled (mcp.enabled = false)")
		}

		// stdout carries the protocol; everything else goes to the log.
		app.logger.Info("starting MCP server on stdio", "root", app.reader.Root())

		ctx := setupSignalHandler()

		// Create and start the MCP server
		server := mcp.NewServer(app.state, app.lang)
		if err := server.Start(ctx); err != nil {
			return fmt.Errorf("MCP server error: %w", err)
		}

		return nil
	},
}
