// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/huangsam/trendgate/internal/contract"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// NewMCPServer initializes and configures the Trendgate MCP server without starting it.
// This is exposed for unit testing.
func NewMCPServer(baseCfg *contract.Config, mgr contract.CacheManager, version string) *server.MCPServer {
	s := server.NewMCPServer(
		"Trendgate Analysis Server",
		version,
		server.WithLogging(),
	)

	h := &toolHandler{
		baseCfg: baseCfg,
		mgr:     mgr,
	}

	// --- 1. Tool: analyze_products ---
	s.AddTool(mcp.NewTool("analyze_products",
		mcp.WithDescription("Run the full development decision pipeline on product rows."),
		mcp.WithString("rows", mcp.Description("JSON array of product rows (id, title, main_category, sub_category, price, keywords, price_history, sales)."), mcp.Required()),
		mcp.WithString("now", mcp.Description("Month the analysis is evaluated at, as YYYY-MM. Defaults to the current month.")),
		mcp.WithNumber("lead_months", mcp.Description("Months needed to develop a product before its peak.")),
		mcp.WithNumber("limit", mcp.Description("Limit the number of results returned.")),
	), h.handleAnalyzeProducts)

	// --- 2. Tool: detect_cycle ---
	s.AddTool(mcp.NewTool("detect_cycle",
		mcp.WithDescription("Detect the seasonal demand cycle and low-flow months of keyword search series."),
		mcp.WithString("series", mcp.Description("JSON array of keyword series, each with a keyword and monthly values."), mcp.Required()),
		mcp.WithString("start", mcp.Description("Month of the first value, as YYYY-MM."), mcp.Required()),
	), h.handleDetectCycle)

	// --- 3. Tool: classify_price_trend ---
	s.AddTool(mcp.NewTool("classify_price_trend",
		mcp.WithDescription("Classify a price history as rising, falling, stable, volatile or unknown."),
		mcp.WithString("times", mcp.Description("JSON array of observation times (e.g. '2025-01-02 15:04')."), mcp.Required()),
		mcp.WithString("prices", mcp.Description("JSON array of prices aligned with times."), mcp.Required()),
		mcp.WithString("sales", mcp.Description("Optional JSON array of monthly sales records ({\"dk\": \"202501\", \"sales\": 12}).")),
	), h.handleClassifyPriceTrend)

	// --- 4. Tool: evaluate_timing ---
	s.AddTool(mcp.NewTool("evaluate_timing",
		mcp.WithDescription("Check whether the peak windows of a cycle can be caught with the given lead time."),
		mcp.WithString("cycle", mcp.Description("JSON array of peak windows, e.g. [[11,12],[3,4]]."), mcp.Required()),
		mcp.WithNumber("lead_months", mcp.Description("Months needed to develop a product before its peak.")),
		mcp.WithNumber("current_month", mcp.Description("Current calendar month, 1-12. Defaults to the configured month.")),
	), h.handleEvaluateTiming)

	return s
}

// StartMCPServer starts the Trendgate MCP server over stdio.
func StartMCPServer(_ context.Context, baseCfg *contract.Config, mgr contract.CacheManager, version string) error {
	s := NewMCPServer(baseCfg, mgr, version)
	return server.ServeStdio(s)
}
