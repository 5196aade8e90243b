package schema

import "time"

// CacheStatus represents the status of the result cache.
type CacheStatus struct {
	Backend         string    `json:"backend"`
	Connected       bool      `json:"connected"`
	TotalEntries    int       `json:"total_entries"`
	LastEntryTime   time.Time `json:"last_entry_time"`
	OldestEntryTime time.Time `json:"oldest_entry_time"`
	TableSizeBytes  int64     `json:"table_size_bytes"`
}

// HistoryStatus represents the status of the run history store.
type HistoryStatus struct {
	Backend       string           `json:"backend"`
	Connected     bool             `json:"connected"`
	TotalRuns     int              `json:"total_runs"`
	LastRunID     int64            `json:"last_run_id"`
	LastRunUUID   string           `json:"last_run_uuid"`
	LastRunTime   time.Time        `json:"last_run_time"`
	OldestRunTime time.Time        `json:"oldest_run_time"`
	TotalRowsSeen int              `json:"total_rows_seen"`
	TableSizes    map[string]int64 `json:"table_sizes"`
}

// RunRecord is a stored analyze run.
type RunRecord struct {
	RunID         int64
	RunUUID       string
	StartTime     time.Time
	EndTime       *time.Time
	RunDurationMs *int64
	TotalRows     *int64
	ConfigParams  *string
}

// DecisionRecord is a stored per-row decision.
type DecisionRecord struct {
	RunID        int64
	RowID        string
	AnalysisTime time.Time
	MainCategory string
	SubCategory  string
	FlowType     string
	Cycle        string
	LowMonths    string
	PriceLabel   string
	TimingOK     bool
	Verdict      string
	Reason       string
	UnitCount    *int64
}
