package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/huangsam/xssbench/internal/contract"
	"github.com/huangsam/xssbench/schema"
	"github.com/mark3labs/mcp-go/mcp"
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg *contract.Config
	mgr     contract.StoreManager
}

// findingSummary is a finding without the bulky diff and scanner output.
type findingSummary struct {
	ID            int64               `json:"id"`
	Repository    string              `json:"repository"`
	FixCommit     string              `json:"fix_commit"`
	Message       string              `json:"message"`
	TriageStatus  schema.TriageStatus `json:"triage_status"`
	Taxonomy      *schema.Taxonomy    `json:"taxonomy,omitempty"`
	ReviewerNotes string              `json:"reviewer_notes,omitempty"`
}

func (h *toolHandler) store() (contract.FindingStore, error) {
	if h.mgr == nil {
		return nil, errors.New("findings store is not configured")
	}
	store := h.mgr.GetFindingStore()
	if store == nil {
		return nil, errors.New("findings store is not configured")
	}
	return store, nil
}

func (h *toolHandler) handleListFindings(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var status schema.TriageStatus
	if s := request.GetString("status", ""); s != "" {
		parsed, err := schema.ParseTriageStatus(s)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid parameters: %v", err)), nil
		}
		status = parsed
	}
	repository := request.GetString("repository", "")
	limit := request.GetInt("limit", 0)

	store, err := h.store()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	findings, err := store.List(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("listing findings failed: %v", err)), nil
	}

	out := []findingSummary{}
	for _, f := range findings {
		if status != "" && f.TriageStatus != status {
			continue
		}
		if repository != "" && f.Repository() != repository {
			continue
		}
		out = append(out, findingSummary{
			ID:            f.ID,
			Repository:    f.Repository(),
			FixCommit:     f.FixCommit,
			Message:       contract.FirstLine(f.RepoMessage),
			TriageStatus:  f.TriageStatus,
			Taxonomy:      f.Taxonomy,
			ReviewerNotes: f.ReviewerNotes,
		})
		if limit > 0 && len(out) >= limit {
			break
		}
	}

	jsonData, _ := json.MarshalIndent(out, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleGetFinding(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := int64(request.GetInt("id", 0))
	if id <= 0 {
		return mcp.NewToolResultError("id must be a positive integer"), nil
	}

	store, err := h.store()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	f, err := store.Get(ctx, id)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("get finding failed: %v", err)), nil
	}

	jsonData, _ := json.MarshalIndent(f, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleUpdateTriage(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := int64(request.GetInt("id", 0))
	if id <= 0 {
		return mcp.NewToolResultError("id must be a positive integer"), nil
	}

	var update schema.TriageUpdate
	if s := request.GetString("status", ""); s != "" {
		status, err := schema.ParseTriageStatus(s)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid parameters: %v", err)), nil
		}
		update.Status = &status
	}
	if s := request.GetString("taxonomy", ""); s != "" {
		taxonomy, err := schema.ParseTaxonomy(s)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid parameters: %v", err)), nil
		}
		update.Taxonomy = &taxonomy
	}
	if args := request.GetArguments(); args != nil {
		if _, ok := args["notes"]; ok {
			notes := request.GetString("notes", "")
			update.Notes = &notes
		}
	}
	if update.Empty() {
		return mcp.NewToolResultError("nothing to update: pass status, taxonomy or notes"), nil
	}

	store, err := h.store()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := store.Update(ctx, id, update); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("update failed: %v", err)), nil
	}
	f, err := store.Get(ctx, id)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("get finding failed: %v", err)), nil
	}

	jsonData, _ := json.MarshalIndent(findingSummary{
		ID:            f.ID,
		Repository:    f.Repository(),
		FixCommit:     f.FixCommit,
		Message:       contract.FirstLine(f.RepoMessage),
		TriageStatus:  f.TriageStatus,
		Taxonomy:      f.Taxonomy,
		ReviewerNotes: f.ReviewerNotes,
	}, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleStoreStatus(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	store, err := h.store()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	status, err := store.GetStatus()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("status failed: %v", err)), nil
	}
	jsonData, _ := json.MarshalIndent(status, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}
