package iocache

import (
	"errors"
	"fmt"
	"io"

	"github.com/huangsam/trendgate/internal/contract"
	"github.com/huangsam/trendgate/internal/parquet"
)

// ExecuteHistoryExport exports the run history to Parquet files named after
// outputFile, one file per table.
func ExecuteHistoryExport(w io.Writer, store contract.HistoryStore, outputFile string) error {
	if outputFile == "" {
		return errors.New("--output-file is required for export command")
	}
	if store == nil {
		return errors.New("run history is disabled. Set --history-backend to export it")
	}

	status, err := store.GetStatus()
	if err != nil {
		return fmt.Errorf("failed to get history status: %w", err)
	}
	if status.TotalRuns == 0 {
		return errors.New("no run history found to export")
	}

	_, _ = fmt.Fprintf(w, "Exporting data from %s backend...\n", status.Backend)
	_, _ = fmt.Fprintf(w, "Total runs: %d\n", status.TotalRuns)
	_, _ = fmt.Fprintf(w, "Total decisions: %d\n", status.TableSizes[decisionsTable])

	runs, err := store.GetAllRuns()
	if err != nil {
		return fmt.Errorf("failed to retrieve runs: %w", err)
	}
	decisions, err := store.GetAllDecisions()
	if err != nil {
		return fmt.Errorf("failed to retrieve decisions: %w", err)
	}

	runsFile := outputFile + ".runs.parquet"
	parquetRuns := parquet.ConvertRunRecords(runs)
	if err := parquet.WriteRunsParquet(parquetRuns, runsFile); err != nil {
		return fmt.Errorf("failed to write runs: %w", err)
	}
	_, _ = fmt.Fprintf(w, "Exported %d runs to: %s\n", len(parquetRuns), runsFile)

	decisionsFile := outputFile + ".decisions.parquet"
	parquetDecisions := parquet.ConvertDecisionRecords(decisions)
	if err := parquet.WriteDecisionsParquet(parquetDecisions, decisionsFile); err != nil {
		return fmt.Errorf("failed to write decisions: %w", err)
	}
	_, _ = fmt.Fprintf(w, "Exported %d decisions to: %s\n", len(parquetDecisions), decisionsFile)

	return nil
}
