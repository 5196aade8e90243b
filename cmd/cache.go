package cmd

import (
	"fmt"
	"os"

	"github.com/huangsam/trendgate/internal/contract"
	"github.com/huangsam/trendgate/internal/iocache"
	"github.com/huangsam/trendgate/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// cacheSetup loads minimal configuration needed for cache operations.
// This is used by commands that need cache access without full shared setup.
func cacheSetup(initStores bool) error {
	if err := loadConfigFile(); err != nil {
		return err
	}

	// Get cache-related config values
	backend := schema.DatabaseBackend(viper.GetString("cache-backend"))
	connStr := viper.GetString("cache-db-connect")
	if _, ok := schema.ValidDatabaseBackends[backend]; !ok {
		return fmt.Errorf("invalid cache backend '%s'. must be sqlite, mysql, postgresql, none", backend)
	}

	// Basic validation for database backends
	if err := contract.ValidateDatabaseConnectionString(backend, connStr); err != nil {
		return err
	}

	// Initialize caching with the loaded config (no run history for cache commands)
	if initStores {
		if err := iocache.InitStores(backend, connStr, "", ""); err != nil {
			return fmt.Errorf("failed to initialize cache: %w", err)
		}
	}

	cfg.CacheBackend = backend
	cfg.CacheDBConnect = connStr
	return nil
}

// cacheCmd focused on cache management.
//
// Note: Cache subcommands use minimal initialization (cacheSetup) instead of
// the full sharedSetup used by analysis commands.
var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the row result cache (improves performance)",
	Long: `Manage the cache of per-row analysis results.

Trendgate caches each row's result keyed by the row content, the evaluation
month, the lead time and the tuning. Unchanged rows are not recomputed on the
next run within the same month. Entries expire after 7 days.

Supported backends: SQLite, MySQL, PostgreSQL, or None (default, disabled)

Subcommands:
  status - Show cache statistics and connection info
  clear  - Remove all cached data

Examples:
  # Check cache status
  trendgate cache status --cache-backend sqlite

  # Clear cache after changing the rule tables
  trendgate cache clear --cache-backend sqlite`,
}

// cacheClearCmd clears the cache.
var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all cached row results",
	Long: `Delete all cached row results from the configured backend.

For SQLite: Deletes the database file
For MySQL/PostgreSQL: Drops the cache table

Examples:
  # Clear SQLite cache
  trendgate cache clear --cache-backend sqlite

  # Clear MySQL cache (set connection string via env variable)
  TRENDGATE_CACHE_BACKEND=mysql TRENDGATE_CACHE_DB_CONNECT="..." trendgate cache clear`,
	PreRunE: func(_ *cobra.Command, _ []string) error {
		// The SQLite file is removed, so no store may hold it open
		return cacheSetup(false)
	},
	Run: func(_ *cobra.Command, _ []string) {
		dbPath := contract.GetCacheDBFilePath()
		if cfg.CacheBackend == schema.SQLiteBackend && cfg.CacheDBConnect != "" {
			dbPath = cfg.CacheDBConnect
		}
		if err := iocache.ClearCache(cfg.CacheBackend, dbPath, cfg.CacheDBConnect); err != nil {
			contract.LogFatal("Failed to clear cache", err)
		}
		fmt.Println("Cache cleared successfully.")
	},
}

// cacheStatusCmd shows cache status.
var cacheStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display cache statistics and connection details",
	Long: `Show detailed information about the row result cache.

Displays:
- Backend type and connection status
- Total number of cached entries
- Last and oldest cache entry timestamps
- Cache table size

Examples:
  # Check cache status
  trendgate cache status --cache-backend sqlite`,
	PreRunE: func(_ *cobra.Command, _ []string) error {
		return cacheSetup(true)
	},
	Run: func(_ *cobra.Command, _ []string) {
		status, err := iocache.Manager.GetResultStore().GetStatus()
		if err != nil {
			contract.LogFatal("Failed to get cache status", err)
		}
		iocache.PrintCacheStatus(os.Stdout, status)
	},
}
