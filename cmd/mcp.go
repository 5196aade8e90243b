package cmd

import (
	"github.com/huangsam/trendgate/internal/mcp"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command.
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the Trendgate MCP server",
	Long: `Launch an MCP server over stdio that allows AI agents to run the
decision pipeline via standard tools.

Tools:
  analyze_products     - Decide verdicts for product rows
  detect_cycle         - Detect the demand cycle of keyword series
  classify_price_trend - Classify a price history
  evaluate_timing      - Check whether peak windows can be caught`,
	Args: cobra.NoArgs,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		// Tool handlers suppress the analysis header since stdio carries the protocol
		return sharedSetup(rootCtx, cmd, args)
	},
	RunE: func(_ *cobra.Command, _ []string) error {
		return mcp.StartMCPServer(rootCtx, cfg, cacheManager, version)
	},
}
