package cmd

import (
	"github.com/huangsam/xssbench/internal/iocache"
	"github.com/huangsam/xssbench/internal/mcp"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command.
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the findings review MCP server",
	Long:  `Launch an MCP server over stdio that lets AI agents list, inspect and triage findings.`,
	// Logs go to stderr so stdout stays reserved for the protocol.
	PreRunE: sharedSetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		return mcp.StartMCPServer(rootCtx, cfg, iocache.Manager)
	},
}
