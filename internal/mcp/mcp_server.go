// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/huangsam/xssbench/internal/contract"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// NewMCPServer initializes and configures the findings review server without starting it.
// This is exposed for unit testing.
func NewMCPServer(baseCfg *contract.Config, mgr contract.StoreManager) *server.MCPServer {
	s := server.NewMCPServer(
		"XSS Findings Review Server",
		"1.0.0",
		server.WithLogging(),
	)

	h := &toolHandler{
		baseCfg: baseCfg,
		mgr:     mgr,
	}

	// --- 1. Tool: list_findings ---
	s.AddTool(mcp.NewTool("list_findings",
		mcp.WithDescription("List stored XSS fix findings in review-queue order, without diffs or scanner output."),
		mcp.WithString("status", mcp.Description("Only return findings with this triage status."),
			mcp.Enum("unreviewed", "unknown", "true_positive", "false_positive")),
		mcp.WithString("repository", mcp.Description("Only return findings for this owner/name repository.")),
		mcp.WithNumber("limit", mcp.Description("Limit the number of results returned.")),
	), h.handleListFindings)

	// --- 2. Tool: get_finding ---
	s.AddTool(mcp.NewTool("get_finding",
		mcp.WithDescription("Get one finding including its diff and scanner output."),
		mcp.WithNumber("id", mcp.Description("The finding ID."), mcp.Required()),
	), h.handleGetFinding)

	// --- 3. Tool: update_triage ---
	s.AddTool(mcp.NewTool("update_triage",
		mcp.WithDescription("Record a reviewer verdict on a finding. Omitted fields are left unchanged."),
		mcp.WithNumber("id", mcp.Description("The finding ID."), mcp.Required()),
		mcp.WithString("status", mcp.Description("Triage status."),
			mcp.Enum("unreviewed", "unknown", "true_positive", "false_positive")),
		mcp.WithString("taxonomy", mcp.Description("Why the ruleset did or did not catch the fix (A-E)."),
			mcp.Enum("A", "B", "C", "D", "E")),
		mcp.WithString("notes", mcp.Description("Free-form reviewer notes.")),
	), h.handleUpdateTriage)

	// --- 4. Tool: store_status ---
	s.AddTool(mcp.NewTool("store_status",
		mcp.WithDescription("Summarize the findings store: totals by triage status and taxonomy."),
	), h.handleStoreStatus)

	return s
}

// StartMCPServer starts the findings review MCP server on stdio.
func StartMCPServer(_ context.Context, baseCfg *contract.Config, mgr contract.StoreManager) error {
	s := NewMCPServer(baseCfg, mgr)
	return server.ServeStdio(s)
}
