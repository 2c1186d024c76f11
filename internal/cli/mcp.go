package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mvp-joe/modelguard/internal/checker"
	"github.com/mvp-joe/modelguard/internal/mcp"
)

// mcpCmd represents the mcp command
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the MCP server for editors and coding agents",
	Long: `Start the Model Context Protocol (MCP) server so editors and LLM coding
assistants can check files and apply import fixes.

The MCP server:
- Provides the modelguard_check tool (findings for content or a file)
- Provides the modelguard_fix tool (synthesize and optionally write imports)
- Communicates via stdio (standard MCP transport)

Example:
  modelguard mcp`,
	RunE: runMCP,
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, args []string) error {
	root, err := resolveProjectRoot()
	if err != nil {
		return err
	}

	cfg, err := loadConfig(root, cfgFile)
	if err != nil {
		return err
	}

	// stdout carries the MCP protocol, so logs go to stderr only.
	logger := newLogger(cmd.ErrOrStderr(), viper.GetBool("verbose"))

	c, err := checker.New(cfg, logger)
	if err != nil {
		return err
	}
	defer c.Close()

	srv, err := mcp.NewServer(c, root, Version, logger)
	if err != nil {
		return fmt.Errorf("failed to create MCP server: %w", err)
	}

	return srv.Serve(cmd.Context())
}
