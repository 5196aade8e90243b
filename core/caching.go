package core

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"time"

	"github.com/huangsam/trendgate/core/rules"
	"github.com/huangsam/trendgate/internal/contract"
	"github.com/huangsam/trendgate/schema"
)

// currentCacheVersion defines the version of the cache schema
const currentCacheVersion = 1

// cachedRowResult returns the cached result of a row or computes and stores it.
func cachedRowResult(ctx context.Context, cfg *contract.Config, registry *rules.Registry, row schema.ProductRow) schema.RowResult {
	var store contract.CacheStore
	if mgr := cacheManagerFromContext(ctx); mgr != nil {
		store = mgr.GetResultStore()
	}
	if store == nil {
		// Fallback to direct computation
		return buildRowResult(cfg, registry, row)
	}

	key, err := generateCacheKey(cfg, row)
	if err != nil {
		return buildRowResult(cfg, registry, row)
	}

	// Check for cache hit
	if result := checkCacheHit(store, key, time.Now()); result != nil {
		cacheLookups.WithLabelValues("hit").Inc()
		result.Cached = true
		return *result
	}

	// Cache miss: compute and store
	cacheLookups.WithLabelValues("miss").Inc()
	return computeAndStore(cfg, registry, row, store, key)
}

// checkCacheHit attempts to retrieve and validate a cached result
func checkCacheHit(store contract.CacheStore, key string, now time.Time) *schema.RowResult {
	data, version, ts, err := store.Get(key)
	if err != nil {
		return nil // Cache miss
	}

	// Validate version and staleness
	if version != currentCacheVersion || now.Sub(time.Unix(ts, 0)) > contract.CacheTTL {
		return nil
	}
	var result schema.RowResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil
	}
	return &result
}

// computeAndStore computes the result and stores it in cache
func computeAndStore(cfg *contract.Config, registry *rules.Registry, row schema.ProductRow, store contract.CacheStore, key string) schema.RowResult {
	result := buildRowResult(cfg, registry, row)
	if data, err := json.Marshal(result); err == nil {
		if err := store.Set(key, data, currentCacheVersion, time.Now().Unix()); err != nil {
			contract.LogWarn(fmt.Sprintf("Failed to cache result for row %s", row.ID), err)
		}
	}
	return result
}

// generateCacheKey hashes the row together with every setting that changes its result.
func generateCacheKey(cfg *contract.Config, row schema.ProductRow) (string, error) {
	rowJSON, err := json.Marshal(row)
	if err != nil {
		return "", err
	}
	tuningJSON, err := json.Marshal(cfg.Tuning)
	if err != nil {
		return "", err
	}
	key := fmt.Sprintf("%s:%s:%d:%s",
		rowJSON,
		cfg.Now.Format(contract.MonthFormat),
		cfg.LeadMonths,
		tuningJSON,
	)
	return fmt.Sprintf("%x", sha256.Sum256([]byte(key))), nil
}
