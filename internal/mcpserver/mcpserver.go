// Package mcpserver exposes the assistant's tools over the Model Context Protocol.
package mcpserver

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/comigor/jarvis-assistant/internal/logger"
	"github.com/comigor/jarvis-assistant/pkg/tools"
)

const serverName = "jarvis"

// New registers every tool of mgr on a fresh MCP server.
func New(version string, mgr *tools.ToolManager) *server.MCPServer {
	s := server.NewMCPServer(serverName, version, server.WithToolCapabilities(false))
	for _, t := range mgr.List() {
		s.AddTool(toMCPTool(t), handler(t))
	}
	return s
}

// ServeStdio blocks serving s on stdin/stdout.
func ServeStdio(s *server.MCPServer) error {
	logger.L.Info("serving MCP over stdio", "server", serverName)
	return server.ServeStdio(s)
}

func toMCPTool(t tools.Tool) mcp.Tool {
	opts := []mcp.ToolOption{mcp.WithDescription(t.Description())}
	for _, p := range t.Params() {
		props := []mcp.PropertyOption{mcp.Description(p.Description)}
		if p.Required {
			props = append(props, mcp.Required())
		}
		switch p.Type {
		case "number":
			opts = append(opts, mcp.WithNumber(p.Name, props...))
		case "boolean":
			opts = append(opts, mcp.WithBoolean(p.Name, props...))
		default:
			opts = append(opts, mcp.WithString(p.Name, props...))
		}
	}
	return mcp.NewTool(t.Name(), opts...)
}

// handler adapts a tool; tool failures are reported as error results, not protocol errors.
func handler(t tools.Tool) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args, err := json.Marshal(req.Params.Arguments)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if string(args) == "null" {
			args = []byte("{}")
		}

		out, err := t.Run(ctx, string(args))
		if err != nil {
			logger.L.Warn("tool call failed", "tool", t.Name(), "error", err)
			return mcp.NewToolResultError(err.Error()), nil
		}
		logger.L.Debug("tool call", "tool", t.Name())
		return mcp.NewToolResultText(out), nil
	}
}
