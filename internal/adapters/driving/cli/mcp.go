package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/four-robots/unisearch/internal/adapters/driving/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "MCP server commands",
	Long:  `Commands for the Model Context Protocol (MCP) server integration.`,
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Start the Model Context Protocol server for AI assistant integration.

By default the server talks JSON-RPC over stdio. Use --port to serve the
streamable HTTP transport instead; Prometheus metrics are then available
at /metrics on the same port.

While the server runs, edits to config.toml are picked up without a restart.

Examples:
  # Stdio mode (default)
  unisearch mcp serve

  # HTTP mode
  unisearch mcp serve --port 8080

Client configuration:
  {
    "mcpServers": {
      "unisearch": {
        "command": "/path/to/unisearch",
        "args": ["mcp", "serve"]
      }
    }
  }`,
	RunE: runMCPServe,
}

func init() {
	mcpServeCmd.Flags().IntP("port", "p", 0, "HTTP port (0 = use stdio)")
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	port, err := cmd.Flags().GetInt("port")
	if err != nil {
		return fmt.Errorf("getting port flag: %w", err)
	}
	a, err := requireApp()
	if err != nil {
		return err
	}
	log := appLogger()

	ports := &mcp.Ports{
		Search:   a.Search,
		Document: a.Documents,
	}
	if port > 0 {
		ports.Metrics = a.Metrics
	}

	server, err := mcp.NewServer(ports, log)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if a.Watch != nil {
		go func() {
			if err := a.Watch(ctx); err != nil {
				log.Warn("configuration watch stopped", zap.Error(err))
			}
		}()
	}

	if port > 0 {
		addr := fmt.Sprintf(":%d", port)
		fmt.Fprintf(cmd.ErrOrStderr(), "MCP server listening on http://localhost%s\n", addr)
		return server.RunHTTP(ctx, addr)
	}
	return server.Run(ctx)
}
