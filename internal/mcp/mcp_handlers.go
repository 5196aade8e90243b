package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/huangsam/trendgate/core"
	"github.com/huangsam/trendgate/internal/contract"
	"github.com/huangsam/trendgate/internal/input"
	"github.com/huangsam/trendgate/schema"
	"github.com/mark3labs/mcp-go/mcp"
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg *contract.Config
	mgr     contract.CacheManager
}

// decodeArg unmarshals a JSON-encoded string argument.
func decodeArg(request mcp.CallToolRequest, name string, dst any) error {
	raw := request.GetString(name, "")
	if raw == "" {
		return fmt.Errorf("%s is required", name)
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		return fmt.Errorf("invalid %s JSON: %w", name, err)
	}
	return nil
}

func toolResultJSON(data any) *mcp.CallToolResult {
	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode result: %v", err))
	}
	return mcp.NewToolResultText(string(jsonData))
}

func (h *toolHandler) handleAnalyzeProducts(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg := h.baseCfg.Clone()
	if n := request.GetString("now", ""); n != "" {
		now, err := contract.ParseNowMonth(n, time.Now())
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		cfg.Now = now
	}
	if l := request.GetInt("lead_months", -1); l >= 0 {
		if l > contract.MaxLeadMonths {
			return mcp.NewToolResultError(fmt.Sprintf("lead_months cannot exceed %d", contract.MaxLeadMonths)), nil
		}
		cfg.LeadMonths = l
	}
	if l := request.GetInt("limit", 0); l > 0 {
		cfg.ResultLimit = l
	}

	raw := request.GetString("rows", "")
	if raw == "" {
		return mcp.NewToolResultError("rows is required"), nil
	}
	rows, err := input.Decode(strings.NewReader(raw), schema.JSONInput)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid rows JSON: %v", err)), nil
	}
	if len(rows) == 0 {
		return mcp.NewToolResultError("rows must contain at least one product row"), nil
	}

	// Invalid rows come back as undetermined results
	output := core.AnalyzeRows(core.WithSuppressHeader(ctx), cfg, h.mgr, rows)
	if cfg.ResultLimit > 0 && len(output.Results) > cfg.ResultLimit {
		output.Results = output.Results[:cfg.ResultLimit]
	}
	return toolResultJSON(output), nil
}

func (h *toolHandler) handleDetectCycle(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	set := schema.KeywordSet{Start: request.GetString("start", "")}
	if set.Start == "" {
		return mcp.NewToolResultError("start is required"), nil
	}
	if err := decodeArg(request, "series", &set.Series); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if err := input.ValidateKeywords(set); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid series: %v", err)), nil
	}

	report, err := core.DetectCycle(set, h.baseCfg.Tuning)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("cycle detection failed: %v", err)), nil
	}
	return toolResultJSON(report), nil
}

func (h *toolHandler) handleClassifyPriceTrend(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var history schema.PriceHistory
	if err := decodeArg(request, "times", &history.Times); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := decodeArg(request, "prices", &history.Prices); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(history.Times) != len(history.Prices) {
		return mcp.NewToolResultError(fmt.Sprintf("times and prices must have the same length (%d != %d)", len(history.Times), len(history.Prices))), nil
	}

	var sales []schema.SalesRecord
	if request.GetString("sales", "") != "" {
		if err := decodeArg(request, "sales", &sales); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
	}

	return toolResultJSON(core.ClassifyPriceTrend(history, sales, h.baseCfg.Tuning)), nil
}

func (h *toolHandler) handleEvaluateTiming(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var cycle [][]int
	if err := decodeArg(request, "cycle", &cycle); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	lead := request.GetInt("lead_months", h.baseCfg.LeadMonths)
	month := request.GetInt("current_month", h.baseCfg.CurrentMonth())

	result, err := core.EvaluateTiming(cycle, lead, month)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid timing parameters: %v", err)), nil
	}
	return toolResultJSON(result), nil
}
