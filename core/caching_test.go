package core

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/huangsam/trendgate/internal/contract"
	"github.com/huangsam/trendgate/internal/iocache"
	"github.com/huangsam/trendgate/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var errMiss = errors.New("miss")

func TestGenerateCacheKey(t *testing.T) {
	cfg := testConfig()
	row := holidayRow("p-1")

	key1, err := generateCacheKey(cfg, row)
	require.NoError(t, err)
	key2, err := generateCacheKey(cfg, row)
	require.NoError(t, err)
	assert.Equal(t, key1, key2, "same inputs give the same key")
	assert.Len(t, key1, 64)

	tests := []struct {
		name   string
		mutate func(cfg *contract.Config, row *schema.ProductRow)
	}{
		{"month", func(cfg *contract.Config, _ *schema.ProductRow) { cfg.Now = cfg.Now.AddDate(0, 1, 0) }},
		{"lead time", func(cfg *contract.Config, _ *schema.ProductRow) { cfg.LeadMonths++ }},
		{"tuning", func(cfg *contract.Config, _ *schema.ProductRow) { cfg.Tuning.SalesThreshold++ }},
		{"row", func(_ *contract.Config, row *schema.ProductRow) { row.Price = "$21.00" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := cfg.Clone()
			r := holidayRow("p-1")
			tt.mutate(c, &r)
			key, err := generateCacheKey(c, r)
			require.NoError(t, err)
			assert.NotEqual(t, key1, key)
		})
	}
}

func TestCheckCacheHit(t *testing.T) {
	now := time.Date(2025, 10, 15, 12, 0, 0, 0, time.UTC)
	data, err := json.Marshal(schema.RowResult{ID: "p-1", FlowType: schema.YearRoundFlow})
	require.NoError(t, err)

	tests := []struct {
		name    string
		version int
		age     time.Duration
		payload []byte
		hit     bool
	}{
		{"fresh", currentCacheVersion, time.Hour, data, true},
		{"stale", currentCacheVersion, contract.CacheTTL + time.Minute, data, false},
		{"old version", currentCacheVersion + 1, time.Hour, data, false},
		{"corrupt payload", currentCacheVersion, time.Hour, []byte("{"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &iocache.MockCacheStore{}
			store.On("Get", "k").Return(tt.payload, tt.version, now.Add(-tt.age).Unix(), nil)

			result := checkCacheHit(store, "k", now)
			if tt.hit {
				require.NotNil(t, result)
				assert.Equal(t, "p-1", result.ID)
				assert.Equal(t, schema.YearRoundFlow, result.FlowType)
			} else {
				assert.Nil(t, result)
			}
		})
	}

	t.Run("store error", func(t *testing.T) {
		store := &iocache.MockCacheStore{}
		store.On("Get", "k").Return(nil, 0, int64(0), errMiss)
		assert.Nil(t, checkCacheHit(store, "k", now))
	})
}

func TestCachedRowResult(t *testing.T) {
	cfg := testConfig()
	row := holidayRow("p-1")
	registry := newRegistry(cfg)
	key, err := generateCacheKey(cfg, row)
	require.NoError(t, err)

	t.Run("miss computes and stores", func(t *testing.T) {
		store := &iocache.MockCacheStore{}
		store.On("Get", key).Return(nil, 0, int64(0), errMiss)
		store.On("Set", key, mock.Anything, currentCacheVersion, mock.Anything).Return(nil)
		mgr := &iocache.MockCacheManager{}
		mgr.On("GetResultStore").Return(store)

		ctx := contextWithCacheManager(context.Background(), mgr)
		result := cachedRowResult(ctx, cfg, registry, row)
		assert.False(t, result.Cached)
		assert.Equal(t, schema.StrongCyclicalFlow, result.FlowType)
		store.AssertExpectations(t)
	})

	t.Run("hit skips computation", func(t *testing.T) {
		cached := schema.RowResult{ID: "p-1", FlowType: schema.MixedSeasonalFlow}
		data, err := json.Marshal(cached)
		require.NoError(t, err)

		store := &iocache.MockCacheStore{}
		store.On("Get", key).Return(data, currentCacheVersion, time.Now().Unix(), nil)
		mgr := &iocache.MockCacheManager{}
		mgr.On("GetResultStore").Return(store)

		ctx := contextWithCacheManager(context.Background(), mgr)
		result := cachedRowResult(ctx, cfg, registry, row)
		assert.True(t, result.Cached)
		assert.Equal(t, schema.MixedSeasonalFlow, result.FlowType, "cached value is returned as is")
		store.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("set failure still returns result", func(t *testing.T) {
		store := &iocache.MockCacheStore{}
		store.On("Get", key).Return(nil, 0, int64(0), errMiss)
		store.On("Set", key, mock.Anything, currentCacheVersion, mock.Anything).Return(errors.New("disk full"))
		mgr := &iocache.MockCacheManager{}
		mgr.On("GetResultStore").Return(store)

		result := cachedRowResult(contextWithCacheManager(context.Background(), mgr), cfg, registry, row)
		assert.Equal(t, "p-1", result.ID)
	})

	t.Run("no store", func(t *testing.T) {
		mgr := &iocache.MockCacheManager{}
		mgr.On("GetResultStore").Return(nil)

		result := cachedRowResult(contextWithCacheManager(context.Background(), mgr), cfg, registry, row)
		assert.Equal(t, "p-1", result.ID)
		mgr.AssertExpectations(t)
	})
}
