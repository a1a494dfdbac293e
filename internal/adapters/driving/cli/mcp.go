package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/insight/internal/adapters/driving/mcp"
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

Tools: analyze_document, list_analyses, get_analysis, delete_analysis.
Resources: insight://analyses, insight://analyses/{id} and
insight://analyses/{id}/markdown.

By default the server speaks JSON-RPC over stdio, the transport desktop
MCP clients launch it with.

Use --port to serve the streamable HTTP transport instead, for example to
inspect it with MCP Inspector. It binds to localhost unless --host is given.

Examples:
  # Stdio mode (default, for Claude Desktop)
  insight mcp serve

  # HTTP mode
  insight mcp serve --port 8080
  insight mcp serve --port 8080 --host 0.0.0.0

Claude Desktop configuration (claude_desktop_config.json):
  {
    "mcpServers": {
      "insight": {
        "command": "/path/to/insight",
        "args": ["mcp", "serve"]
      }
    }
  }`,
	RunE: runMCPServe,
}

func init() {
	mcpServeCmd.Flags().IntP("port", "p", 0, "HTTP port (0 = use stdio)")
	mcpServeCmd.Flags().String("host", "localhost", "HTTP listen host")
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	port, err := cmd.Flags().GetInt("port")
	if err != nil {
		return fmt.Errorf("getting port flag: %w", err)
	}
	host, _ := cmd.Flags().GetString("host")
	if analysisService == nil {
		return errors.New("analysis service not configured")
	}

	ports := &mcp.Ports{
		Analysis: analysisService,
		Ingest:   ingestService,
	}

	server, err := mcp.NewServer(ports, mcp.WithVersion(version))
	if err != nil {
		return err
	}

	if port > 0 {
		fmt.Fprintf(cmd.ErrOrStderr(), "MCP server listening on http://%s\n", mcp.Addr(host, port))
		return server.RunHTTP(cmd.Context(), host, port)
	}

	return server.Run(cmd.Context())
}
