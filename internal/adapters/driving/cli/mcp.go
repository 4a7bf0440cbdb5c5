package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/officepdf/internal/adapters/driving/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "MCP server commands",
	Long:  `Commands for the Model Context Protocol (MCP) server integration.`,
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Start the Model Context Protocol server so AI assistants can convert
documents on this machine.

By default, the server communicates over stdio using JSON-RPC.
Use --port to start an HTTP server instead.

Tools:
  convert_document    Convert a document to PDF
  list_formats        List accepted formats
  conversion_history  List recent conversions

Examples:
  # Stdio mode (default)
  officepdf mcp serve

  # HTTP mode (for MCP Inspector)
  officepdf mcp serve --port 8080

Client configuration:
  {
    "mcpServers": {
      "officepdf": {
        "command": "/path/to/officepdf",
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

	ports := &mcp.Ports{
		Conversion: conversionService,
		History:    historyService,
		Settings:   settingsService,
	}

	server, err := mcp.NewServer(ports)
	if err != nil {
		return err
	}

	if port > 0 {
		addr := fmt.Sprintf(":%d", port)
		fmt.Fprintf(cmd.ErrOrStderr(), "MCP server listening on http://localhost%s\n", addr)
		return server.RunHTTP(cmd.Context(), addr)
	}

	return server.Run(cmd.Context())
}
