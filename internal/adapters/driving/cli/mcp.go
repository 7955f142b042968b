package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/versesearch/internal/adapters/driving/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "MCP server commands",
	Long:  `Commands for the Model Context Protocol (MCP) server integration.`,
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Start the Model Context Protocol server so AI assistants can search,
complete and read verses.

Tools:     search_verses, suggest_verses, read_verses
Resources: versesearch://health, versesearch://verses/{id}

By default the server speaks JSON-RPC over stdio. Use --port to serve
streamable HTTP instead, e.g. for MCP Inspector.

Examples:
  # Stdio mode (default)
  versesearch mcp serve

  # HTTP mode
  versesearch mcp serve --port 8080

Assistant configuration:
  {
    "mcpServers": {
      "versesearch": {
        "command": "/path/to/versesearch",
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

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	s, err := loadServices(cmd)
	if err != nil {
		return err
	}
	if s.Search == nil {
		return errors.New("search service not configured")
	}

	server, err := mcp.NewServer(&mcp.Ports{
		Search: s.Search,
		Health: s.Health,
	})
	if err != nil {
		return err
	}
	server.SetDefaultSize(cfg.Search.DefaultSize)

	if port > 0 {
		addr := fmt.Sprintf(":%d", port)
		fmt.Fprintf(cmd.OutOrStdout(), "MCP server listening on http://localhost%s\n", addr)
		return server.RunHTTP(cmd.Context(), addr)
	}

	return server.Run(cmd.Context())
}
