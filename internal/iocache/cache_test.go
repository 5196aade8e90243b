package iocache

import (
	"database/sql"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/huangsam/trendgate/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// resetGlobals lets a test run InitStores again.
func resetGlobals(t *testing.T) {
	t.Helper()
	initOnce = sync.Once{}
	closeOnce = sync.Once{}
	t.Cleanup(func() {
		CloseStores()
		initOnce = sync.Once{}
		closeOnce = sync.Once{}
		Manager = &CacheStoreManager{}
	})
}

func TestInitStores(t *testing.T) {
	t.Run("sqlite cache and history", func(t *testing.T) {
		resetGlobals(t)
		dir := t.TempDir()
		cachePath := filepath.Join(dir, "cache.db")
		historyPath := filepath.Join(dir, "history.db")

		err := InitStores(schema.SQLiteBackend, cachePath, schema.SQLiteBackend, historyPath)
		require.NoError(t, err)
		assert.NotNil(t, Manager.GetResultStore())
		assert.NotNil(t, Manager.GetHistoryStore())

		CloseStores()
		_, err = os.Stat(cachePath)
		assert.NoError(t, err, "cache file should be created")
		_, err = os.Stat(historyPath)
		assert.NoError(t, err, "history file should be created")
	})

	t.Run("idempotent setup", func(t *testing.T) {
		resetGlobals(t)
		path := filepath.Join(t.TempDir(), "cache.db")

		assert.NoError(t, InitStores(schema.SQLiteBackend, path, "", ""))
		assert.NoError(t, InitStores(schema.SQLiteBackend, path, "", ""))

		CloseStores()
		CloseStores()
	})

	t.Run("history disabled", func(t *testing.T) {
		resetGlobals(t)
		require.NoError(t, InitStores(schema.NoneBackend, "", "", ""))

		store := Manager.GetResultStore()
		require.NotNil(t, store)
		_, _, _, err := store.Get("missing")
		assert.Equal(t, sql.ErrNoRows, err)
		assert.Nil(t, Manager.GetHistoryStore())
	})

	t.Run("invalid mysql connection", func(t *testing.T) {
		resetGlobals(t)
		err := InitStores(schema.MySQLBackend, "invalid://connection", "", "")
		assert.Error(t, err)
	})

	t.Run("history failure closes cache", func(t *testing.T) {
		resetGlobals(t)
		err := InitStores(schema.NoneBackend, "", "unsupported", "")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "history store")
		assert.Nil(t, Manager.GetResultStore())
	})
}

func TestValidateTableName(t *testing.T) {
	tests := []struct {
		name      string
		tableName string
		wantErr   bool
	}{
		{name: "valid simple name", tableName: "test_table"},
		{name: "valid name with numbers", tableName: "test_table_123"},
		{name: "valid name starting with underscore", tableName: "_test_table"},
		{name: "valid mixed case", tableName: "TestTable_123"},
		{name: "empty name", tableName: "", wantErr: true},
		{name: "starts with number", tableName: "123_table", wantErr: true},
		{name: "contains dash", tableName: "test-table", wantErr: true},
		{name: "contains space", tableName: "test table", wantErr: true},
		{name: "sql injection attempt", tableName: "test'; DROP TABLE users; --", wantErr: true},
		{name: "contains dot", tableName: "test.table", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateTableName(tt.tableName)
			if tt.wantErr {
				assert.Error(t, err, "validateTableName should error for %q", tt.tableName)
			} else {
				assert.NoError(t, err, "validateTableName should not error for %q", tt.tableName)
			}
		})
	}
}

func TestQuoteTableName(t *testing.T) {
	assert.Equal(t, `"t"`, quoteTableName("t", schema.SQLiteBackend))
	assert.Equal(t, `"t"`, quoteTableName("t", schema.PostgreSQLBackend))
	assert.Equal(t, "`t`", quoteTableName("t", schema.MySQLBackend))
	assert.Equal(t, `"t"`, quoteTableName("t", schema.NoneBackend), "none defaults to SQLite style")
}

func TestBindVars(t *testing.T) {
	assert.Equal(t, "?", bindVars(schema.SQLiteBackend, 1))
	assert.Equal(t, "?, ?, ?", bindVars(schema.MySQLBackend, 3))
	assert.Equal(t, "$1, $2, $3", bindVars(schema.PostgreSQLBackend, 3))
	assert.Empty(t, bindVars(schema.PostgreSQLBackend, 0))
}

func TestGetCreateTableQuery(t *testing.T) {
	assert.Contains(t, getCreateTableQuery("results", schema.MySQLBackend), "LONGBLOB")
	assert.Contains(t, getCreateTableQuery("results", schema.PostgreSQLBackend), "BYTEA")
	assert.Contains(t, getCreateTableQuery("results", schema.SQLiteBackend), `"results"`)
}

func TestGetUpsertQuery(t *testing.T) {
	tests := []struct {
		backend schema.DatabaseBackend
		want    string
	}{
		{schema.SQLiteBackend, "INSERT OR REPLACE"},
		{schema.MySQLBackend, "ON DUPLICATE KEY UPDATE"},
		{schema.PostgreSQLBackend, "ON CONFLICT (cache_key)"},
	}
	for _, tt := range tests {
		t.Run(string(tt.backend), func(t *testing.T) {
			store := &CacheStoreImpl{tableName: "results", backend: tt.backend}
			assert.Contains(t, store.getUpsertQuery(), tt.want)
		})
	}
}

func TestSQLiteCacheOperations(t *testing.T) {
	t.Run("set and get", func(t *testing.T) {
		store, err := NewCacheStore("test_table", schema.SQLiteBackend, ":memory:")
		require.NoError(t, err)
		defer func() { _ = store.Close() }()

		require.NoError(t, store.Set("row-1", []byte(`{"id":"row-1"}`), 1, 1234567890))

		value, version, ts, err := store.Get("row-1")
		require.NoError(t, err)
		assert.Equal(t, `{"id":"row-1"}`, string(value))
		assert.Equal(t, 1, version)
		assert.Equal(t, int64(1234567890), ts)
	})

	t.Run("upsert", func(t *testing.T) {
		store, err := NewCacheStore("test_table", schema.SQLiteBackend, ":memory:")
		require.NoError(t, err)
		defer func() { _ = store.Close() }()

		require.NoError(t, store.Set("k", []byte("initial"), 1, 1000))
		require.NoError(t, store.Set("k", []byte("updated"), 2, 2000))

		value, version, ts, err := store.Get("k")
		require.NoError(t, err)
		assert.Equal(t, "updated", string(value))
		assert.Equal(t, 2, version)
		assert.Equal(t, int64(2000), ts)
	})

	t.Run("missing key", func(t *testing.T) {
		store, err := NewCacheStore("test_table", schema.SQLiteBackend, ":memory:")
		require.NoError(t, err)
		defer func() { _ = store.Close() }()

		_, _, _, err = store.Get("missing")
		assert.Equal(t, sql.ErrNoRows, err)
	})
}

func TestNoneCacheStore(t *testing.T) {
	store, err := NewCacheStore("test_table", schema.NoneBackend, "")
	require.NoError(t, err)

	assert.NoError(t, store.Set("k", []byte("v"), 1, 1))
	_, _, _, err = store.Get("k")
	assert.Error(t, err, "none backend never returns data")
	assert.NoError(t, store.Close())
}

func TestNewCacheStoreErrors(t *testing.T) {
	_, err := NewCacheStore("bad-name", schema.SQLiteBackend, ":memory:")
	assert.Error(t, err)

	_, err = NewCacheStore("", schema.SQLiteBackend, ":memory:")
	assert.Error(t, err)

	_, err = NewCacheStore("test_table", "unsupported", "")
	assert.Error(t, err)
}

func TestClearCache(t *testing.T) {
	t.Run("sqlite removes file", func(t *testing.T) {
		dbPath := filepath.Join(t.TempDir(), "clear.db")
		store, err := NewCacheStore(resultTable, schema.SQLiteBackend, dbPath)
		require.NoError(t, err)
		require.NoError(t, store.Close())

		require.NoError(t, ClearCache(schema.SQLiteBackend, dbPath, ""))
		_, err = os.Stat(dbPath)
		assert.True(t, os.IsNotExist(err))
	})

	t.Run("sqlite missing file", func(t *testing.T) {
		assert.NoError(t, ClearCache(schema.SQLiteBackend, filepath.Join(t.TempDir(), "none.db"), ""))
	})

	t.Run("sqlite empty path", func(t *testing.T) {
		assert.Error(t, ClearCache(schema.SQLiteBackend, "", ""))
	})

	t.Run("none backend", func(t *testing.T) {
		assert.NoError(t, ClearCache(schema.NoneBackend, "", ""))
	})

	t.Run("unsupported backend", func(t *testing.T) {
		assert.Error(t, ClearCache("unsupported", "", ""))
	})
}

func TestCacheStoreManagerConcurrency(t *testing.T) {
	resetGlobals(t)
	require.NoError(t, InitStores(schema.SQLiteBackend, ":memory:", "", ""))

	var wg sync.WaitGroup
	for i := range 10 {
		wg.Go(func() {
			store := Manager.GetResultStore()
			if assert.NotNil(t, store) {
				assert.NoError(t, store.Set("concurrent_key", []byte("value"), 1, int64(1000+i)))
			}
		})
	}
	wg.Wait()
}

func TestCacheStoreGetStatus(t *testing.T) {
	t.Run("sqlite with data", func(t *testing.T) {
		store, err := NewCacheStore("test_status_table", schema.SQLiteBackend, ":memory:")
		require.NoError(t, err)
		defer func() { _ = store.Close() }()

		for key, ts := range map[string]int64{"key1": 1000, "key2": 2000, "key3": 1500} {
			require.NoError(t, store.Set(key, []byte("value"), 1, ts))
		}

		status, err := store.GetStatus()
		require.NoError(t, err)
		assert.Equal(t, "sqlite", status.Backend)
		assert.True(t, status.Connected)
		assert.Equal(t, 3, status.TotalEntries)
		assert.Equal(t, time.Unix(2000, 0), status.LastEntryTime)
		assert.Equal(t, time.Unix(1000, 0), status.OldestEntryTime)
		assert.Greater(t, status.TableSizeBytes, int64(0))
	})

	t.Run("sqlite empty", func(t *testing.T) {
		store, err := NewCacheStore("test_empty_table", schema.SQLiteBackend, ":memory:")
		require.NoError(t, err)
		defer func() { _ = store.Close() }()

		status, err := store.GetStatus()
		require.NoError(t, err)
		assert.Equal(t, 0, status.TotalEntries)
		assert.True(t, status.LastEntryTime.IsZero())
		assert.Equal(t, int64(0), status.TableSizeBytes)
	})

	t.Run("none backend", func(t *testing.T) {
		store, err := NewCacheStore("test_none", schema.NoneBackend, "")
		require.NoError(t, err)

		status, err := store.GetStatus()
		require.NoError(t, err)
		assert.Equal(t, "none", status.Backend)
		assert.False(t, status.Connected)
	})
}
