package cmd

import (
	"github.com/huangsam/trendgate/core"
	"github.com/huangsam/trendgate/internal/contract"
	"github.com/spf13/cobra"
)

// rulesCmd prints the configured decision tables.
var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Show the decision tables of every product category.",
	Long: `Display the rule gate that maps product signals to a verdict.

For each configured category, shows:
- The ordered decision table (the first matching row decides)
- The verdict and reason of each row
- The price thresholds by unit count, or the sales threshold

Categories without a configured policy fall back to the unconfigured policy,
which is printed last.

Examples:
  # Show all decision tables
  trendgate rules

  # Show the tables with a custom sales threshold from .trendgate.yaml
  trendgate rules --config .trendgate.yaml

  # Export the tables as JSON
  trendgate rules --output json`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteRules(rootCtx, cfg); err != nil {
			contract.LogFatal("Cannot print rules", err)
		}
	},
}
