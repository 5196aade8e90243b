package cmd

import (
	"github.com/huangsam/trendgate/core"
	"github.com/huangsam/trendgate/internal/contract"
	"github.com/spf13/cobra"
)

// stdinPath reads product rows from standard input.
const stdinPath = "-"

// rowFileSetupWrapper runs sharedSetup and falls back to stdin when no input files are given.
func rowFileSetupWrapper(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		args = []string{stdinPath}
	}
	return sharedSetup(rootCtx, cmd, args)
}

// analyzeCmd runs the full decision pipeline on product rows.
var analyzeCmd = &cobra.Command{
	Use:   "analyze [input-file...]",
	Short: "Decide which product candidates are worth developing.",
	Long: `Run the full decision pipeline on every product row of the input files.

For each row, trendgate:
- Detects the seasonal demand cycle from keyword search series
- Finds the low-flow months outside the peaks
- Classifies the recent price trend
- Checks whether development can finish before a peak
- Applies the category rule gate to reach a verdict

Input files are JSON or YAML lists of product rows. Use '-' or no argument
to read JSON from stdin.

Examples:
  # Analyze a product list
  trendgate analyze products.json

  # Evaluate as of a specific month with a longer lead time
  trendgate analyze products.yaml --now 2025-06 --lead-months 4

  # Show the rule and season columns and a reason per row
  trendgate analyze products.json --detail

  # Export to a spreadsheet
  trendgate analyze products.json --output xlsx --output-file decisions.xlsx

  # Track runs for later export
  trendgate analyze products.json --history-backend sqlite`,
	Args:    cobra.ArbitraryArgs,
	PreRunE: rowFileSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteAnalyze(rootCtx, cfg, cacheManager); err != nil {
			contract.LogFatal("Cannot run analysis", err)
		}
	},
}
