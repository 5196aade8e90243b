package mcp_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/huangsam/trendgate/internal/contract"
	mcp_internal "github.com/huangsam/trendgate/internal/mcp"
	"github.com/huangsam/trendgate/schema"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer() *server.MCPServer {
	baseCfg := &contract.Config{
		Workers:     2,
		ResultLimit: 100,
		Now:         time.Date(2025, time.October, 1, 0, 0, 0, 0, time.UTC),
		LeadMonths:  3,
		Tuning:      contract.DefaultTuning(),
	}
	// No stores configured, so results are computed directly
	var mgr contract.CacheManager
	return mcp_internal.NewMCPServer(baseCfg, mgr, "test")
}

func callTool(t *testing.T, s *server.MCPServer, name string, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	tool := s.GetTool(name)
	require.NotNil(t, tool, "Tool %s should exist", name)

	res, err := tool.Handler(context.Background(), mcp.CallToolRequest{
		Params: mcp.CallToolParams{Name: name, Arguments: args},
	})
	require.NoError(t, err, "The MCP handler should not return a raw error for tool logic failures")
	require.NotNil(t, res)
	return res
}

func resultText(res *mcp.CallToolResult) string {
	return res.Content[0].(mcp.TextContent).Text
}

func TestMCPServerHandlers_ValidationErrors(t *testing.T) {
	s := newTestServer()

	t.Run("analyze_products missing rows", func(t *testing.T) {
		res := callTool(t, s, "analyze_products", map[string]any{})
		assert.True(t, res.IsError, "The response should indicate an error state")
		assert.Contains(t, resultText(res), "rows is required")
	})

	t.Run("analyze_products bad now", func(t *testing.T) {
		res := callTool(t, s, "analyze_products", map[string]any{"rows": "[]", "now": "October"})
		assert.True(t, res.IsError)
		assert.Contains(t, resultText(res), "invalid --now value")
	})

	t.Run("detect_cycle invalid JSON", func(t *testing.T) {
		res := callTool(t, s, "detect_cycle", map[string]any{"series": "{not json", "start": "2023-01"})
		assert.True(t, res.IsError)
		assert.Contains(t, resultText(res), "invalid series JSON")
	})

	t.Run("classify_price_trend length mismatch", func(t *testing.T) {
		res := callTool(t, s, "classify_price_trend", map[string]any{
			"times":  `["2025-01-01 10:00"]`,
			"prices": `[10.5, 11]`,
		})
		assert.True(t, res.IsError)
		assert.Contains(t, resultText(res), "same length")
	})

	t.Run("evaluate_timing invalid month", func(t *testing.T) {
		res := callTool(t, s, "evaluate_timing", map[string]any{
			"cycle":         "[[11,12]]",
			"current_month": 13.0,
		})
		assert.True(t, res.IsError)
		assert.Contains(t, resultText(res), "current month must be between 1 and 12")
	})
}

func TestMCPServerHandlers_Success(t *testing.T) {
	s := newTestServer()

	t.Run("analyze_products", func(t *testing.T) {
		rows := `[{"id": "p1", "title": "96pcs plates", "main_category": "toys&games", "sub_category": "plates", "price": "$20.00"},
			{"id": "p2", "title": "banner"}]`
		res := callTool(t, s, "analyze_products", map[string]any{"rows": rows, "limit": 1.0})
		require.False(t, res.IsError, resultText(res))

		var output schema.AnalyzeOutput
		require.NoError(t, json.Unmarshal([]byte(resultText(res)), &output))
		require.Len(t, output.Results, 1)
		assert.Equal(t, "p1", output.Results[0].ID)
		assert.NotEmpty(t, output.RunID)
		assert.Equal(t, 2, output.Counts[schema.UndeterminedVerdict]+output.Counts[schema.RejectVerdict]+
			output.Counts[schema.TrackVerdict]+output.Counts[schema.DevelopVerdict])
	})

	t.Run("evaluate_timing", func(t *testing.T) {
		res := callTool(t, s, "evaluate_timing", map[string]any{
			"cycle":         "[[11,12]]",
			"lead_months":   3.0,
			"current_month": 5.0,
		})
		require.False(t, res.IsError, resultText(res))

		var timing schema.TimingFeasibility
		require.NoError(t, json.Unmarshal([]byte(resultText(res)), &timing))
		assert.True(t, timing.Overall)
		require.Len(t, timing.PerWindow, 1)
	})

	t.Run("classify_price_trend", func(t *testing.T) {
		res := callTool(t, s, "classify_price_trend", map[string]any{
			"times":  `["2025-01-01 10:00"]`,
			"prices": `[10.5]`,
		})
		require.False(t, res.IsError, resultText(res))

		var trend schema.PriceTrendResult
		require.NoError(t, json.Unmarshal([]byte(resultText(res)), &trend))
		assert.Equal(t, schema.UnknownPrice, trend.Label)
	})
}
