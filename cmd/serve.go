package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/huangsam/trendgate/internal/server"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// serveCmd exposes the pipeline over HTTP.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the decision pipeline over HTTP",
	Long: `Start an HTTP server that exposes the decision pipeline as a JSON API.

Endpoints:
  GET  /healthz     - Liveness check
  GET  /version     - Build information
  POST /v1/analyze  - Analyze a JSON array of product rows
                      (query: now=YYYY-MM, lead_months=N, limit=N)
  POST /v1/cycle    - Detect the cycle of a keyword set {"start", "series"}
  GET  /metrics     - Prometheus metrics

The server shuts down gracefully on SIGINT or SIGTERM.

Examples:
  # Serve on the default address
  trendgate serve

  # Serve with a result cache shared across requests
  trendgate serve --addr :9090 --cache-backend sqlite`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(rootCtx, os.Interrupt, syscall.SIGTERM)
		defer stop()

		srv := server.New(cfg, cacheManager, server.BuildInfo{Version: version, Commit: commit, Date: date})
		return srv.ListenAndServe(ctx, viper.GetString("addr"))
	},
}
