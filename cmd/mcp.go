package cmd

import (
	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/streed/vault-suggest/internal/logger"
	"github.com/streed/vault-suggest/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start MCP server for LLM integration",
	Long: `Start a Model Context Protocol (MCP) server over stdio.

Tools:
- suggest_links: retrieval-layer link and tag suggestions for text
- process_text: full pipeline including arbiter escalation and note writing
- list_tags: the vault's tag vocabulary

To use with Claude Desktop, add this to your claude_desktop_config.json:
{
  "mcpServers": {
    "vault-suggest": {
      "command": "vault-suggest",
      "args": ["mcp"]
    }
  }
}`,
	RunE: runMCP,
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(_ *cobra.Command, _ []string) error {
	logger.Info("Starting MCP server...")

	suggestServer := mcp.NewSuggestServer(appConfig, appPipeline)

	logger.Info("MCP server ready. Listening on stdio...")
	if err := server.ServeStdio(suggestServer.GetMCPServer()); err != nil {
		if err.Error() != "EOF" {
			logger.Error("MCP server error: %v", err)
			return err
		}
	}

	logger.Info("MCP server shutting down")
	return nil
}
