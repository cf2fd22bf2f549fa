// Package mcpapi provides a stateless MCP streamable-HTTP adapter.
package mcpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/evanschultz/hwplan/internal/adapters/server/common"
	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
)

// Config captures MCP transport configuration.
type Config struct {
	ServerName    string
	ServerVersion string
	EndpointPath  string
}

// Handler wraps one stateless MCP streamable HTTP handler.
type Handler struct {
	httpHandler http.Handler
}

// NewHandler builds one stateless MCP adapter exposing the planner tools.
func NewHandler(cfg Config, planner common.PlannerService) (*Handler, error) {
	if planner == nil {
		return nil, fmt.Errorf("planner service is required")
	}
	cfg = normalizeConfig(cfg)

	mcpSrv := mcpserver.NewMCPServer(
		cfg.ServerName,
		cfg.ServerVersion,
		mcpserver.WithToolCapabilities(false),
	)
	registerReadTools(mcpSrv, planner)
	registerToggleTools(mcpSrv, planner)

	streamable := mcpserver.NewStreamableHTTPServer(
		mcpSrv,
		mcpserver.WithEndpointPath(cfg.EndpointPath),
		mcpserver.WithStateLess(true),
	)
	return &Handler{httpHandler: streamable}, nil
}

// ServeHTTP handles one MCP streamable HTTP request.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.httpHandler == nil {
		http.Error(w, "mcp handler unavailable", http.StatusServiceUnavailable)
		return
	}
	h.httpHandler.ServeHTTP(w, r)
}

// normalizeConfig applies deterministic defaults to MCP adapter config.
func normalizeConfig(cfg Config) Config {
	cfg.ServerName = strings.TrimSpace(cfg.ServerName)
	if cfg.ServerName == "" {
		cfg.ServerName = "hwplan"
	}
	cfg.ServerVersion = strings.TrimSpace(cfg.ServerVersion)
	if cfg.ServerVersion == "" {
		cfg.ServerVersion = "dev"
	}
	cfg.EndpointPath = strings.TrimSpace(cfg.EndpointPath)
	if cfg.EndpointPath == "" {
		cfg.EndpointPath = "/mcp"
	}
	cfg.EndpointPath = "/" + strings.Trim(cfg.EndpointPath, "/")
	return cfg
}

// registerReadTools registers the side-effect free planner tools.
func registerReadTools(srv *mcpserver.MCPServer, planner common.PlannerService) {
	srv.AddTool(
		mcp.NewTool(
			"hwplan.today",
			mcp.WithDescription("List today's planned homework work, completed days included."),
		),
		func(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			today, err := planner.Today(ctx)
			if err != nil {
				return toolResultFromError(err), nil
			}
			return jsonResult("today", today)
		},
	)

	srv.AddTool(
		mcp.NewTool(
			"hwplan.list_homework",
			mcp.WithDescription("List every homework item with its daily plan and progress."),
		),
		func(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			items, err := planner.ListHomework(ctx)
			if err != nil {
				return toolResultFromError(err), nil
			}
			return jsonResult("list_homework", map[string]any{"items": items})
		},
	)

	srv.AddTool(
		mcp.NewTool(
			"hwplan.get_homework",
			mcp.WithDescription("Return one homework item by id."),
			mcp.WithString("id", mcp.Required(), mcp.Description("Homework id")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			id, err := req.RequireString("id")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			item, err := planner.GetHomework(ctx, id)
			if err != nil {
				return toolResultFromError(err), nil
			}
			return jsonResult("get_homework", item)
		},
	)

	srv.AddTool(
		mcp.NewTool(
			"hwplan.deadlines",
			mcp.WithDescription("List overdue and upcoming incomplete homework ordered by due date."),
		),
		func(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			items, err := planner.Deadlines(ctx)
			if err != nil {
				return toolResultFromError(err), nil
			}
			return jsonResult("deadlines", map[string]any{"items": items})
		},
	)

	srv.AddTool(
		mcp.NewTool(
			"hwplan.calendar_day",
			mcp.WithDescription("Return the planned work and deadlines of one date."),
			mcp.WithString("date", mcp.Required(), mcp.Description("Calendar day as YYYY-MM-DD")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			date, err := req.RequireString("date")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			day, err := planner.CalendarDay(ctx, date)
			if err != nil {
				return toolResultFromError(err), nil
			}
			return jsonResult("calendar_day", day)
		},
	)
}

// registerToggleTools registers the completion toggles.
func registerToggleTools(srv *mcpserver.MCPServer, planner common.PlannerService) {
	srv.AddTool(
		mcp.NewTool(
			"hwplan.toggle_task",
			mcp.WithDescription("Toggle one day of a homework plan and reschedule missed work."),
			mcp.WithString("id", mcp.Required(), mcp.Description("Homework id")),
			mcp.WithString("date", mcp.Description("Calendar day as YYYY-MM-DD (defaults to today)")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			id, err := req.RequireString("id")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			item, err := planner.ToggleDayTask(ctx, id, req.GetString("date", ""))
			if err != nil {
				return toolResultFromError(err), nil
			}
			return jsonResult("toggle_task", item)
		},
	)

	srv.AddTool(
		mcp.NewTool(
			"hwplan.toggle_homework",
			mcp.WithDescription("Toggle completion of a whole homework item."),
			mcp.WithString("id", mcp.Required(), mcp.Description("Homework id")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			id, err := req.RequireString("id")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			item, err := planner.ToggleHomework(ctx, id)
			if err != nil {
				return toolResultFromError(err), nil
			}
			return jsonResult("toggle_homework", item)
		},
	)
}

func jsonResult(tool string, payload any) (*mcp.CallToolResult, error) {
	result, err := mcp.NewToolResultJSON(payload)
	if err != nil {
		return nil, fmt.Errorf("encode %s result: %w", tool, err)
	}
	return result, nil
}

// toolResultFromError maps service errors into MCP-visible tool errors.
func toolResultFromError(err error) *mcp.CallToolResult {
	switch {
	case err == nil:
		return mcp.NewToolResultError("unknown error")
	case errors.Is(err, common.ErrInvalidRequest):
		return mcp.NewToolResultError("invalid_request: " + err.Error())
	case errors.Is(err, common.ErrNotFound):
		return mcp.NewToolResultError("not_found: " + err.Error())
	case errors.Is(err, common.ErrUnavailable):
		return mcp.NewToolResultError("unavailable: " + err.Error())
	default:
		return mcp.NewToolResultError("internal_error: " + err.Error())
	}
}
