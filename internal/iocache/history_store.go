package iocache

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"io/fs"
	"sort"
	"strings"
	"time"

	"github.com/huangsam/trendgate/internal/contract"
	"github.com/huangsam/trendgate/schema"
)

// Table names for run tracking.
const (
	runsTable      = "trendgate_runs"
	decisionsTable = "trendgate_decisions"
)

// historyTables lists the run-history tables in creation order.
var historyTables = []string{runsTable, decisionsTable}

// HistoryStoreImpl implements the HistoryStore interface.
type HistoryStoreImpl struct {
	db      *sql.DB
	backend schema.DatabaseBackend
}

var _ contract.HistoryStore = &HistoryStoreImpl{} // Compile-time check

// NewHistoryStore creates a new HistoryStore with the specified backend.
func NewHistoryStore(backend schema.DatabaseBackend, connStr string) (contract.HistoryStore, error) {
	if backend == schema.NoneBackend {
		// Return a no-op store for disabled tracking
		return &HistoryStoreImpl{backend: backend}, nil
	}

	db, err := openDB(backend, connStr, contract.GetHistoryDBFilePath())
	if err != nil {
		return nil, err
	}

	if err := createHistoryTables(db, backend); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create history tables: %w", err)
	}

	return &HistoryStoreImpl{db: db, backend: backend}, nil
}

// createHistoryTables applies the embedded up-migrations of the backend in
// order. Every statement is idempotent, so this is safe on an existing schema.
func createHistoryTables(db *sql.DB, backend schema.DatabaseBackend) error {
	migrationFS, err := backendMigrations(backend)
	if err != nil {
		return err
	}
	names, err := fs.Glob(migrationFS, "*.up.sql")
	if err != nil {
		return err
	}
	sort.Strings(names)

	for _, name := range names {
		query, err := fs.ReadFile(migrationFS, name)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", name, err)
		}
		if _, err := db.Exec(string(query)); err != nil {
			return fmt.Errorf("failed to apply %s: %w", name, err)
		}
	}
	return nil
}

// BeginRun creates a new run and returns its numeric ID.
func (hs *HistoryStoreImpl) BeginRun(runUUID string, startTime time.Time, configParams map[string]any) (int64, error) {
	// Skip for NoneBackend
	if hs.backend == schema.NoneBackend || hs.db == nil {
		return 0, nil
	}

	configJSON, err := json.Marshal(configParams)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal config params: %w", err)
	}

	quotedTableName := quoteTableName(runsTable, hs.backend)
	args := []any{runUUID, formatTime(startTime, hs.backend), string(configJSON)}

	var runID int64
	switch hs.backend {
	case schema.PostgreSQLBackend:
		query := fmt.Sprintf(`INSERT INTO %s (run_uuid, start_time, config_params) VALUES ($1, $2, $3) RETURNING run_id`, quotedTableName)
		err = hs.db.QueryRow(query, args...).Scan(&runID)
	default: // SQLite and MySQL
		query := fmt.Sprintf(`INSERT INTO %s (run_uuid, start_time, config_params) VALUES (?, ?, ?)`, quotedTableName)
		var result sql.Result
		result, err = hs.db.Exec(query, args...)
		if err == nil {
			runID, err = result.LastInsertId()
		}
	}

	if err != nil {
		return 0, fmt.Errorf("failed to insert run: %w", err)
	}
	return runID, nil
}

// EndRun updates the run with completion data.
func (hs *HistoryStoreImpl) EndRun(runID int64, endTime time.Time, totalRows int) error {
	// Skip for NoneBackend
	if hs.backend == schema.NoneBackend || hs.db == nil {
		return nil
	}

	quotedTableName := quoteTableName(runsTable, hs.backend)

	var start timeColumn
	query := fmt.Sprintf(`SELECT start_time FROM %s WHERE run_id = %s`, quotedTableName, bindVars(hs.backend, 1))
	if err := hs.db.QueryRow(query, runID).Scan(&start); err != nil {
		return fmt.Errorf("failed to get start_time for run %d: %w", runID, err)
	}
	durationMs := endTime.Sub(start.Time).Milliseconds()

	var updateQuery string
	switch hs.backend {
	case schema.PostgreSQLBackend:
		updateQuery = fmt.Sprintf(`UPDATE %s SET end_time = $1, run_duration_ms = $2, total_rows = $3 WHERE run_id = $4`, quotedTableName)
	default: // SQLite and MySQL
		updateQuery = fmt.Sprintf(`UPDATE %s SET end_time = ?, run_duration_ms = ?, total_rows = ? WHERE run_id = ?`, quotedTableName)
	}

	if _, err := hs.db.Exec(updateQuery, formatTime(endTime, hs.backend), durationMs, totalRows, runID); err != nil {
		return fmt.Errorf("failed to update run: %w", err)
	}
	return nil
}

// decisionColumns is the column order shared by inserts and reads.
var decisionColumns = []string{
	"run_id", "row_id", "analysis_time", "main_category", "sub_category", "flow_type",
	"cycle", "low_months", "price_label", "timing_ok", "verdict", "reason", "unit_count",
}

// RecordDecision stores the decision for one product row.
func (hs *HistoryStoreImpl) RecordDecision(runID int64, record schema.DecisionRecord) error {
	// Skip for NoneBackend
	if hs.backend == schema.NoneBackend || hs.db == nil {
		return nil
	}

	query := fmt.Sprintf(`INSERT INTO %s (%s) VALUES (%s)`,
		quoteTableName(decisionsTable, hs.backend),
		strings.Join(decisionColumns, ", "),
		bindVars(hs.backend, len(decisionColumns)))

	_, err := hs.db.Exec(query,
		runID, record.RowID, formatTime(record.AnalysisTime, hs.backend),
		record.MainCategory, record.SubCategory, record.FlowType,
		record.Cycle, record.LowMonths, record.PriceLabel,
		record.TimingOK, record.Verdict, record.Reason, record.UnitCount,
	)
	if err != nil {
		return fmt.Errorf("failed to insert decision for %s: %w", record.RowID, err)
	}
	return nil
}

// Close closes the underlying connection.
func (hs *HistoryStoreImpl) Close() error {
	if hs.db != nil {
		return hs.db.Close()
	}
	return nil
}

// GetStatus returns status information about the history store.
func (hs *HistoryStoreImpl) GetStatus() (schema.HistoryStatus, error) {
	status := schema.HistoryStatus{
		Backend:    string(hs.backend),
		Connected:  hs.db != nil,
		TableSizes: make(map[string]int64),
	}

	if hs.backend == schema.NoneBackend || hs.db == nil {
		return status, nil
	}

	quotedRuns := quoteTableName(runsTable, hs.backend)

	if err := hs.db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", quotedRuns)).Scan(&status.TotalRuns); err != nil {
		return status, fmt.Errorf("failed to get total runs: %w", err)
	}

	if status.TotalRuns > 0 {
		var lastStart timeColumn
		lastRunQuery := fmt.Sprintf("SELECT run_id, run_uuid, start_time FROM %s ORDER BY run_id DESC LIMIT 1", quotedRuns)
		if err := hs.db.QueryRow(lastRunQuery).Scan(&status.LastRunID, &status.LastRunUUID, &lastStart); err != nil {
			return status, fmt.Errorf("failed to get last run info: %w", err)
		}
		status.LastRunTime = lastStart.Time

		var oldestStart timeColumn
		oldestRunQuery := fmt.Sprintf("SELECT start_time FROM %s ORDER BY run_id ASC LIMIT 1", quotedRuns)
		if err := hs.db.QueryRow(oldestRunQuery).Scan(&oldestStart); err != nil {
			return status, fmt.Errorf("failed to get oldest run time: %w", err)
		}
		status.OldestRunTime = oldestStart.Time

		rowsQuery := fmt.Sprintf("SELECT COALESCE(SUM(total_rows), 0) FROM %s", quotedRuns)
		if err := hs.db.QueryRow(rowsQuery).Scan(&status.TotalRowsSeen); err != nil {
			return status, fmt.Errorf("failed to get total rows seen: %w", err)
		}
	}

	for _, table := range historyTables {
		var count int64
		countQuery := fmt.Sprintf("SELECT COUNT(*) FROM %s", quoteTableName(table, hs.backend))
		if err := hs.db.QueryRow(countQuery).Scan(&count); err != nil {
			return status, fmt.Errorf("failed to get count for table %s: %w", table, err)
		}
		status.TableSizes[table] = count
	}

	return status, nil
}

// GetAllRuns retrieves all runs from the store.
func (hs *HistoryStoreImpl) GetAllRuns() ([]schema.RunRecord, error) {
	// Skip for NoneBackend
	if hs.backend == schema.NoneBackend || hs.db == nil {
		return nil, nil
	}

	query := fmt.Sprintf("SELECT run_id, run_uuid, start_time, end_time, run_duration_ms, total_rows, config_params FROM %s ORDER BY run_id",
		quoteTableName(runsTable, hs.backend))
	rows, err := hs.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.RunRecord
	for rows.Next() {
		var record schema.RunRecord
		var start, end timeColumn
		if err := rows.Scan(&record.RunID, &record.RunUUID, &start, &end,
			&record.RunDurationMs, &record.TotalRows, &record.ConfigParams); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		record.StartTime = start.Time
		record.EndTime = end.Ptr()
		results = append(results, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating runs: %w", err)
	}
	return results, nil
}

// GetAllDecisions retrieves all decisions from the store.
func (hs *HistoryStoreImpl) GetAllDecisions() ([]schema.DecisionRecord, error) {
	// Skip for NoneBackend
	if hs.backend == schema.NoneBackend || hs.db == nil {
		return nil, nil
	}

	query := fmt.Sprintf("SELECT %s FROM %s ORDER BY run_id, decision_id",
		strings.Join(decisionColumns, ", "), quoteTableName(decisionsTable, hs.backend))
	rows, err := hs.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query decisions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.DecisionRecord
	for rows.Next() {
		var record schema.DecisionRecord
		var analysisTime timeColumn
		if err := rows.Scan(&record.RunID, &record.RowID, &analysisTime,
			&record.MainCategory, &record.SubCategory, &record.FlowType,
			&record.Cycle, &record.LowMonths, &record.PriceLabel,
			&record.TimingOK, &record.Verdict, &record.Reason, &record.UnitCount); err != nil {
			return nil, fmt.Errorf("failed to scan decision: %w", err)
		}
		record.AnalysisTime = analysisTime.Time
		results = append(results, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating decisions: %w", err)
	}
	return results, nil
}
