package mcp_test

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ludo-technologies/pyrefactor/domain"
	"github.com/ludo-technologies/pyrefactor/internal/config"
	"github.com/ludo-technologies/pyrefactor/mcp"
	"github.com/ludo-technologies/pyrefactor/service"
)

var fixtureProject = filepath.Join("..", "testdata", "python", "project")

func callTool(t *testing.T, cfg *config.Config, arguments interface{}) *mcplib.CallToolResult {
	t.Helper()
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	h := mcp.NewHandlerSet(mcp.NewTestDependencies(service.NewFileReader(), cfg, ""))

	req := mcplib.CallToolRequest{
		Params: mcplib.CallToolParams{
			Name:      mcp.ToolDetectRefactorings,
			Arguments: arguments,
		},
	}
	res, err := h.HandleDetectRefactorings(context.Background(), req)
	require.NoError(t, err)
	require.NotNil(t, res)
	return res
}

func resultText(t *testing.T, res *mcplib.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, res.Content)
	text, ok := res.Content[0].(mcplib.TextContent)
	require.True(t, ok, "expected text content, got %T", res.Content[0])
	return text.Text
}

func decodeReport(t *testing.T, res *mcplib.CallToolResult) domain.RunReport {
	t.Helper()
	require.False(t, res.IsError, resultText(t, res))
	var report domain.RunReport
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &report))
	return report
}

func TestHandleDetectRefactorings_InvalidArguments(t *testing.T) {
	tests := []struct {
		name      string
		arguments interface{}
		wantText  string
	}{
		{"not a map", "path", "invalid arguments format"},
		{"missing path", map[string]interface{}{}, "path parameter is required"},
		{"missing directory", map[string]interface{}{"path": "/does/not/exist"}, "path does not exist"},
		{"threshold out of range", map[string]interface{}{"path": fixtureProject, "duplicate_threshold": 1.5}, "duplicate"},
		{"unknown output mode", map[string]interface{}{"path": fixtureProject, "output_mode": "html"}, "output_mode"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := callTool(t, nil, tt.arguments)
			assert.True(t, res.IsError)
			assert.Contains(t, resultText(t, res), tt.wantText)
		})
	}
}

func TestHandleDetectRefactorings_FullReport(t *testing.T) {
	res := callTool(t, nil, map[string]interface{}{
		"path":           fixtureProject,
		"min_unit_lines": float64(4),
	})
	report := decodeReport(t, res)

	assert.NotEmpty(t, report.RunID)
	assert.Equal(t, 2, report.Summary.FilesAnalyzed)
	assert.Equal(t, 1, report.Summary.DuplicateGroups)
	assert.Equal(t, 3, report.Summary.DuplicateUnits)
	assert.Equal(t, 1, report.Summary.OverloadedParameters)
}

func TestHandleDetectRefactorings_ArgumentsOverrideThresholds(t *testing.T) {
	res := callTool(t, nil, map[string]interface{}{
		"path":                  fixtureProject,
		"param_count_threshold": float64(10),
		"long_method_threshold": float64(5),
	})
	report := decodeReport(t, res)

	assert.Zero(t, report.Summary.OverloadedParameters)
	assert.Positive(t, report.Summary.LongMethods)
}

func TestHandleDetectRefactorings_RespectsConfigThreshold(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Detection.ParamCountThreshold = 10

	report := decodeReport(t, callTool(t, cfg, map[string]interface{}{"path": fixtureProject}))
	assert.Zero(t, report.Summary.OverloadedParameters)
	assert.Equal(t, 10, cfg.Detection.ParamCountThreshold)
}

func TestHandleDetectRefactorings_ArgumentsDoNotLeakIntoConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	callTool(t, cfg, map[string]interface{}{"path": fixtureProject, "param_count_threshold": float64(9)})
	assert.Equal(t, domain.DefaultParamCountThreshold, cfg.Detection.ParamCountThreshold)
}

func TestHandleDetectRefactorings_FullReportIsFormatterOutput(t *testing.T) {
	res := callTool(t, nil, map[string]interface{}{"path": fixtureProject})
	require.False(t, res.IsError, resultText(t, res))

	report := decodeReport(t, res)
	var want bytes.Buffer
	require.NoError(t, service.NewReportFormatter(false).Write(&report, domain.OutputFormatJSON, &want))

	assert.Contains(t, resultText(t, res), "\n  \"run_id\"")
	assert.JSONEq(t, want.String(), resultText(t, res))
}

func TestHandleDetectRefactorings_SummaryMode(t *testing.T) {
	res := callTool(t, nil, map[string]interface{}{
		"path":        fixtureProject,
		"output_mode": "summary",
	})
	require.False(t, res.IsError, resultText(t, res))

	var payload map[string]json.RawMessage
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &payload))
	assert.Contains(t, payload, "summary")
	assert.Contains(t, payload, "diagnostics")
	assert.NotContains(t, payload, "findings")
}

func TestHandleDetectRefactorings_SkippedFileInDiagnostics(t *testing.T) {
	res := callTool(t, nil, map[string]interface{}{
		"path": filepath.Join("..", "testdata", "python", "invalid"),
	})
	report := decodeReport(t, res)

	require.Len(t, report.Diagnostics.SkippedFiles, 1)
	assert.Equal(t, domain.ReasonParseError, report.Diagnostics.SkippedFiles[0].Reason)
}

func TestRegisterTools(t *testing.T) {
	server := mcpserver.NewMCPServer("pyrefactor-test", "0.0.0", mcpserver.WithToolCapabilities(true))
	assert.NotPanics(t, func() {
		mcp.RegisterTools(server, mcp.NewDependencies(nil, "", nil))
	})
}
