package cli

import (
	"fmt"
	"os"

	"github.com/mvp-joe/testforge/internal/mcp"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the MCP server exposing Python analysis tools",
	Long: `Start the Model Context Protocol (MCP) server so coding assistants can
analyze Python files and build test generation prompts.

The MCP server:
- Provides the analyze_python and build_test_prompt tools
- Communicates via stdio (standard MCP transport)

Example:
  testforge mcp`,
	RunE: runMCP,
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	// stdout carries the protocol; everything else goes to stderr.
	fmt.Fprintf(os.Stderr, "TestForge MCP Server %s\n\n", Version)

	server := mcp.NewMCPServer(cfg, Version, newLogger(os.Stderr))
	return server.Serve(cmd.Context())
}
