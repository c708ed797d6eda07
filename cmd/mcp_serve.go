package cmd

import (
	"github.com/chris-regnier/murmur/internal/mcptools"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"
)

var mcpServeCmd = &cobra.Command{
	Use:   "mcp-serve",
	Short: "Run MCP server on stdio",
	Long: `Starts a Model Context Protocol (MCP) server that exposes the journal over
stdio transport, so an agent can read entries and annotate them with a category
and a translation. A running murmur TUI picks the annotations up as they land.

Available tools:
  - list_entries: Entries newest first, with existing annotations
  - annotate_entry: Set the category and translation of an entry by ID

Example MCP client config:
  {
    "mcpServers": {
      "murmur": {
        "command": "/path/to/murmur",
        "args": ["mcp-serve", "--identity", "Ada"]
      }
    }
  }`,
	RunE: runMCPServe,
}

func init() {
	rootCmd.AddCommand(mcpServeCmd)
}

func runMCPServe(cmd *cobra.Command, args []string) error {
	// Storage is already initialized in PersistentPreRunE
	if store == nil {
		return cmd.Help()
	}

	server := mcptools.CreateMCPServer(store, appConfig.Identity, logger)

	logger.Info("starting MCP server",
		"transport", "stdio",
		"storage", appConfig.Storage,
		"data_dir", appConfig.DataDir,
		"identity", journal().Identity())

	// Blocks until the client closes the transport
	return server.Run(cmd.Context(), &mcp.StdioTransport{})
}
