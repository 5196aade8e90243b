package core

import (
	"github.com/huangsam/trendgate/schema"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const metricsNamespace = "trendgate"

// MetricsRegistry holds every pipeline metric. The HTTP server exposes it on
// /metrics and analyze can dump it to a textfile.
var MetricsRegistry = prometheus.NewRegistry()

var (
	rowsAnalyzed = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Name:      "rows_analyzed_total",
		Help:      "Product rows analyzed, by verdict.",
	}, []string{"verdict"})

	rowsByFlow = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Name:      "rows_flow_type_total",
		Help:      "Product rows analyzed, by consensus flow type.",
	}, []string{"flow_type"})

	cacheLookups = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Name:      "result_cache_lookups_total",
		Help:      "Result cache lookups, by outcome.",
	}, []string{"result"})

	runDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: metricsNamespace,
		Name:      "run_duration_seconds",
		Help:      "Duration of analyze runs.",
		Buckets:   prometheus.ExponentialBuckets(0.01, 4, 8),
	})

	runRows = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: metricsNamespace,
		Name:      "last_run_rows",
		Help:      "Number of rows in the most recent analyze run.",
	})
)

func init() {
	MetricsRegistry.MustRegister(
		rowsAnalyzed,
		rowsByFlow,
		cacheLookups,
		runDuration,
		runRows,
		collectors.NewGoCollector(),
	)
}

// observeRow records the outcome of one row.
func observeRow(result schema.RowResult) {
	rowsAnalyzed.WithLabelValues(string(result.Decision.Verdict)).Inc()
	rowsByFlow.WithLabelValues(string(result.FlowType)).Inc()
}

// observeRun records the outcome of one run.
func observeRun(output *schema.AnalyzeOutput) {
	runDuration.Observe(output.Duration.Seconds())
	runRows.Set(float64(len(output.Results)))
}

// WriteMetricsFile writes the current metrics in the Prometheus text format,
// suitable for the node_exporter textfile collector.
func WriteMetricsFile(path string) error {
	return prometheus.WriteToTextfile(path, MetricsRegistry)
}
