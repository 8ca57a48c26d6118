// Package server exposes the stats operation surface to callers: an
// MCP stdio server for tool callers and a small REST facade for HTTP
// clients. Both are thin — argument plumbing and serialization only;
// the semantics live in pkg/stats.
package server

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/wordscope/wordscope/pkg/regions"
	"github.com/wordscope/wordscope/pkg/stats"
)

// StatsService is the operation surface the facades publish.
type StatsService interface {
	RegionsProjection(ctx context.Context, depth int) ([]*regions.Node, error)
	RegionChildren(ctx context.Context, id int64, depth int) ([]*regions.Node, error)
	EnrichedRegionalDistribution(ctx context.Context, phrase string, filterIDs []int64, devices []string, limit int) (*stats.Report, error)
}

// NewMCPServer builds the MCP stdio server over svc. Run it with
// server.ServeStdio from the caller.
func NewMCPServer(svc StatsService, version string) *server.MCPServer {
	s := server.NewMCPServer("wordscope", version,
		server.WithToolCapabilities(false),
		server.WithRecovery(),
	)

	h := &toolHandlers{svc: svc}

	s.AddTool(mcp.NewTool("regions_tree",
		mcp.WithDescription("Return the geographic region taxonomy truncated to a depth. Truncated subtrees have children: null; leaves have children: []."),
		mcp.WithNumber("depth",
			mcp.DefaultNumber(2),
			mcp.Description("Levels to include, root = 1."),
		),
	), h.regionsTree)

	s.AddTool(mcp.NewTool("region_children",
		mcp.WithDescription("Return the children of a region, truncated to a depth."),
		mcp.WithNumber("region_id",
			mcp.Required(),
			mcp.Description("Region id to look up."),
		),
		mcp.WithNumber("depth",
			mcp.DefaultNumber(1),
			mcp.Description("Levels of the child subtrees to include."),
		),
	), h.regionChildren)

	s.AddTool(mcp.NewTool("regional_distribution",
		mcp.WithDescription("Query the regional distribution of interest in a phrase: rows ranked by query count plus a top-5 by affinity index, with region names resolved."),
		mcp.WithString("phrase",
			mcp.Required(),
			mcp.Description("Keyword or phrase to query."),
		),
		mcp.WithArray("region_ids",
			mcp.Description("Optional region ids; results are scoped to these regions and all their descendants."),
		),
		mcp.WithArray("devices",
			mcp.Description("Optional device filter (all, desktop, mobile, phone, tablet), forwarded to the API."),
		),
		mcp.WithNumber("limit",
			mcp.DefaultNumber(10),
			mcp.Description("Maximum number of ranked rows."),
		),
	), h.regionalDistribution)

	return s
}

type toolHandlers struct {
	svc StatsService
}

func (h *toolHandlers) regionsTree(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	depth := req.GetInt("depth", 2)

	forest, err := h.svc.RegionsProjection(ctx, depth)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(forest)
}

func (h *toolHandlers) regionChildren(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := req.GetInt("region_id", 0)
	if id == 0 {
		return mcp.NewToolResultError("region_id is required"), nil
	}
	depth := req.GetInt("depth", 1)

	children, err := h.svc.RegionChildren(ctx, int64(id), depth)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(children)
}

func (h *toolHandlers) regionalDistribution(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	phrase, err := req.RequireString("phrase")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	limit := req.GetInt("limit", 10)
	filterIDs := int64SliceArg(req, "region_ids")
	devices := stringSliceArg(req, "devices")

	report, err := h.svc.EnrichedRegionalDistribution(ctx, phrase, filterIDs, devices, limit)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(report)
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(b)), nil
}

// int64SliceArg reads an array argument of JSON numbers (or numeric
// strings, which some clients send) as int64s.
func int64SliceArg(req mcp.CallToolRequest, key string) []int64 {
	raw, ok := req.GetArguments()[key].([]any)
	if !ok {
		return nil
	}
	out := make([]int64, 0, len(raw))
	for _, v := range raw {
		switch t := v.(type) {
		case float64:
			out = append(out, int64(t))
		case string:
			var id int64
			if _, err := fmt.Sscanf(t, "%d", &id); err == nil {
				out = append(out, id)
			}
		}
	}
	return out
}

func stringSliceArg(req mcp.CallToolRequest, key string) []string {
	raw, ok := req.GetArguments()[key].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
