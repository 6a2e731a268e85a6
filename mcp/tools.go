package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// ToolDetectRefactorings is the name of the analysis tool
const ToolDetectRefactorings = "detect_refactorings"

// RegisterTools registers the pyrefactor MCP tools with the server
func RegisterTools(s *server.MCPServer, deps *Dependencies) {
	h := NewHandlerSet(deps)

	s.AddTool(mcp.NewTool(ToolDetectRefactorings,
		mcp.WithDescription("Find refactoring opportunities in Python code: semantic duplicate groups, long methods and overloaded parameter lists. Returns the JSON report with its diagnostics."),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Path to Python code (file or directory) to analyze")),
		mcp.WithNumber("duplicate_threshold",
			mcp.Description("Minimum similarity 0.0-1.0 for two units to be duplicates (default: 0.85)")),
		mcp.WithNumber("long_method_threshold",
			mcp.Description("Flag functions with more lines than this (default: 30)")),
		mcp.WithNumber("param_count_threshold",
			mcp.Description("Flag functions with more parameters than this (default: 5)")),
		mcp.WithNumber("min_unit_lines",
			mcp.Description("Ignore units shorter than this for duplicate detection")),
		mcp.WithBoolean("recursive",
			mcp.Description("Recursively analyze directories (default: true)")),
		mcp.WithString("output_mode",
			mcp.Enum("full", "summary"),
			mcp.Description("full returns the whole report, summary only counts and diagnostics (default: full)")),
	), h.HandleDetectRefactorings)
}
