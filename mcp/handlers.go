package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/mark3labs/mcp-go/mcp"
	"go.uber.org/zap"

	"github.com/ludo-technologies/pyrefactor/app"
	"github.com/ludo-technologies/pyrefactor/domain"
	"github.com/ludo-technologies/pyrefactor/internal/config"
	"github.com/ludo-technologies/pyrefactor/service"
)

// HandlerSet exposes MCP tool handlers with shared dependencies.
type HandlerSet struct {
	deps *Dependencies
}

// NewHandlerSet constructs a handler set.
func NewHandlerSet(deps *Dependencies) *HandlerSet {
	if deps == nil {
		deps = NewDependencies(nil, "", nil)
	}
	return &HandlerSet{deps: deps}
}

// HandleDetectRefactorings handles the detect_refactorings tool
func (h *HandlerSet) HandleDetectRefactorings(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return mcp.NewToolResultError("invalid arguments format"), nil
	}

	path, ok := args["path"].(string)
	if !ok || path == "" {
		return mcp.NewToolResultError("path parameter is required and must be a string"), nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return mcp.NewToolResultError(fmt.Sprintf("path does not exist: %s", path)), nil
	}

	cfg, err := h.deps.ConfigFor(path)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to load configuration: %v", err)), nil
	}
	if err := applyArguments(cfg, args); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	outputMode := "full"
	if om, ok := args["output_mode"].(string); ok && om != "" {
		outputMode = om
	}
	if outputMode != "full" && outputMode != "summary" {
		return mcp.NewToolResultError(fmt.Sprintf("invalid output_mode '%s', must be one of: full, summary", outputMode)), nil
	}

	if outputMode == "summary" {
		report, err := h.analyze(ctx, cfg, path, skipRender{}, io.Discard)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("analysis failed: %v", err)), nil
		}
		jsonData, err := json.Marshal(map[string]interface{}{
			"run_id":      report.RunID,
			"summary":     report.Summary,
			"diagnostics": report.Diagnostics,
		})
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to marshal result: %v", err)), nil
		}
		return mcp.NewToolResultText(string(jsonData)), nil
	}

	var buf bytes.Buffer
	if _, err := h.analyze(ctx, cfg, path, service.NewFileOutputWriter(io.Discard), &buf); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("analysis failed: %v", err)), nil
	}
	return mcp.NewToolResultText(buf.String()), nil
}

// skipRender is a report writer for callers that only need the report value
type skipRender struct{}

func (skipRender) Write(io.Writer, string, func(io.Writer) error) error { return nil }

// analyze runs one analysis with a fresh oracle setup
func (h *HandlerSet) analyze(ctx context.Context, cfg *config.Config, path string, writer domain.ReportWriter, out io.Writer) (*domain.RunReport, error) {
	logger := h.deps.logger

	setup, err := service.NewOracleSetup(service.OracleSetupOptions{
		Provider:     cfg.OracleOptions(),
		CacheEnabled: cfg.Cache.Enabled,
		CacheDir:     cfg.CacheDir(projectRoot(path)),
		Logger:       logger,
	})
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := setup.Close(); err != nil {
			logger.Warn("failed to close score cache", zap.Error(err))
		}
	}()

	analysisService := service.NewAnalysisService(
		h.deps.fileReader,
		service.WithOracleSetup(setup),
		service.WithLogger(logger),
	)

	useCase, err := app.NewAnalyzeUseCaseBuilder().
		WithService(analysisService).
		WithFileReader(h.deps.fileReader).
		WithFormatter(service.NewReportFormatter(false)).
		WithReportWriter(writer).
		Build()
	if err != nil {
		return nil, err
	}

	return useCase.Execute(ctx, domain.AnalysisRequest{
		Paths:           []string{path},
		Recursive:       cfg.Input.Recursive,
		IncludePatterns: cfg.Input.IncludePatterns,
		ExcludePatterns: cfg.Input.ExcludePatterns,
		Options:         cfg.ToAnalysisOptions(),
		OutputFormat:    domain.OutputFormatJSON,
		OutputWriter:    out,
		ConfigPath:      h.deps.ConfigPath(),
	})
}

// applyArguments overrides configuration with the optional tool arguments
func applyArguments(cfg *config.Config, args map[string]interface{}) error {
	d := &cfg.Detection
	if v, ok := args["duplicate_threshold"].(float64); ok {
		d.DuplicateThreshold = v
	}
	if v, ok := args["long_method_threshold"].(float64); ok {
		d.LongMethodThreshold = int(v)
	}
	if v, ok := args["param_count_threshold"].(float64); ok {
		d.ParamCountThreshold = int(v)
	}
	if v, ok := args["min_unit_lines"].(float64); ok {
		d.MinUnitLines = int(v)
	}
	if v, ok := args["recursive"].(bool); ok {
		cfg.Input.Recursive = v
	}
	return cfg.Validate()
}

func projectRoot(path string) string {
	info, err := os.Stat(path)
	if err == nil && !info.IsDir() {
		return filepath.Dir(path)
	}
	return path
}
