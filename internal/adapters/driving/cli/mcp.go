package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/sercha-rag/internal/adapters/driving/mcp"
)

var mcpHTTPAddr string

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the MCP server",
	Long: `Start the Model Context Protocol server for AI assistant integration.

Tools:
  ask       answer a question from the ingested documents
  retrieve  return the passages most relevant to a query

Resources:
  sercha-rag://stats  number of stored chunks

By default, the server communicates over stdio using JSON-RPC. Use --http to
serve the streamable HTTP transport instead.

Examples:
  # Stdio mode (for desktop assistants)
  sercha-rag mcp

  # HTTP mode (for MCP Inspector, remote access)
  sercha-rag mcp --http :8090

Assistant configuration:
  {
    "mcpServers": {
      "sercha-rag": {
        "command": "/path/to/sercha-rag",
        "args": ["mcp"]
      }
    }
  }`,
	Args: cobra.NoArgs,
	RunE: runMCP,
}

func init() {
	mcpCmd.Flags().StringVar(&mcpHTTPAddr, "http", "", "HTTP listen address (empty = use stdio)")
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, _ []string) error {
	s, err := requireServices(cmd)
	if err != nil {
		return err
	}
	ingestOnStart(cmd, s)

	ports := &mcp.Ports{
		Conversation: s.Conversation,
		Retrieval:    s.Retrieval,
	}

	server, err := mcp.NewServer(ports, mcp.WithTopK(s.Settings.RAG.TopK))
	if err != nil {
		return err
	}

	if mcpHTTPAddr != "" {
		// stdout stays clean in stdio mode; here it is free for messages.
		fmt.Fprintf(cmd.OutOrStdout(), "MCP server listening on http://%s\n", displayAddr(mcpHTTPAddr))
		return server.RunHTTP(cmd.Context(), mcpHTTPAddr)
	}

	return server.Run(cmd.Context())
}

// displayAddr turns ":8090" into "localhost:8090".
func displayAddr(addr string) string {
	if len(addr) > 0 && addr[0] == ':' {
		return "localhost" + addr
	}
	return addr
}
