// Package contract provides interfaces and shared utilities for internal architecture.
package contract

import (
	"time"

	"github.com/huangsam/trendgate/schema"
)

// CacheManager defines the interface for managing the result cache and the run history.
// This allows the storage layer to be mocked for testing.
type CacheManager interface {
	GetResultStore() CacheStore
	GetHistoryStore() HistoryStore
}

// CacheStore defines the interface for cache data storage.
// This allows mocking the store for testing.
type CacheStore interface {
	Get(key string) ([]byte, int, int64, error)
	Set(key string, value []byte, version int, timestamp int64) error
	GetStatus() (schema.CacheStatus, error)
	Close() error
}

// HistoryStore defines the interface for tracking analyze runs and their decisions.
type HistoryStore interface {
	// BeginRun creates a new run and returns its numeric ID
	BeginRun(runUUID string, startTime time.Time, configParams map[string]any) (int64, error)

	// EndRun updates the run with completion data
	EndRun(runID int64, endTime time.Time, totalRows int) error

	// RecordDecision stores the decision for one product row
	RecordDecision(runID int64, record schema.DecisionRecord) error

	// GetStatus returns status information about the history store
	GetStatus() (schema.HistoryStatus, error)

	// GetAllRuns returns every stored run ordered by run ID
	GetAllRuns() ([]schema.RunRecord, error)

	// GetAllDecisions returns every stored decision ordered by run and row
	GetAllDecisions() ([]schema.DecisionRecord, error)

	// Close closes the underlying connection
	Close() error
}
