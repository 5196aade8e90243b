package cmd

import (
	"github.com/huangsam/trendgate/core"
	"github.com/huangsam/trendgate/internal/contract"
	"github.com/spf13/cobra"
)

// cycleCmd prints the seasonality breakdown of product rows.
var cycleCmd = &cobra.Command{
	Use:   "cycle [input-file...]",
	Short: "Show the seasonal demand cycle of each product row.",
	Long: `Run seasonality detection on the keyword series of every product row
without deciding a verdict.

Prints, per row:
- The flow type, main peak and secondary peaks of each keyword
- The strength and stability of each keyword's seasonality
- The consensus cycle and the low-flow months

Rows without readable keyword data are skipped with a warning.

Examples:
  # Inspect the cycles of a product list
  trendgate cycle products.json

  # Export per-keyword diagnostics
  trendgate cycle products.json --output csv --output-file cycles.csv`,
	Args:    cobra.ArbitraryArgs,
	PreRunE: rowFileSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteCycle(rootCtx, cfg); err != nil {
			contract.LogFatal("Cannot run cycle detection", err)
		}
	},
}
