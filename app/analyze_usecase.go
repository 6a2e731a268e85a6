package app

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/ludo-technologies/pyrefactor/domain"
	"github.com/ludo-technologies/pyrefactor/service"
)

// AnalyzeUseCase orchestrates a refactoring analysis: collect files, run
// the analysis service, and write the formatted report.
type AnalyzeUseCase struct {
	service      domain.AnalysisService
	fileReader   domain.FileReader
	formatter    domain.ReportFormatter
	reportWriter domain.ReportWriter
}

// AnalyzeUseCaseBuilder builds an AnalyzeUseCase
type AnalyzeUseCaseBuilder struct {
	service      domain.AnalysisService
	fileReader   domain.FileReader
	formatter    domain.ReportFormatter
	reportWriter domain.ReportWriter
}

// NewAnalyzeUseCaseBuilder creates a new builder
func NewAnalyzeUseCaseBuilder() *AnalyzeUseCaseBuilder {
	return &AnalyzeUseCaseBuilder{}
}

// WithService sets the analysis service
func (b *AnalyzeUseCaseBuilder) WithService(s domain.AnalysisService) *AnalyzeUseCaseBuilder {
	b.service = s
	return b
}

// WithFileReader sets the file reader
func (b *AnalyzeUseCaseBuilder) WithFileReader(fr domain.FileReader) *AnalyzeUseCaseBuilder {
	b.fileReader = fr
	return b
}

// WithFormatter sets the report formatter
func (b *AnalyzeUseCaseBuilder) WithFormatter(f domain.ReportFormatter) *AnalyzeUseCaseBuilder {
	b.formatter = f
	return b
}

// WithReportWriter sets the report writer
func (b *AnalyzeUseCaseBuilder) WithReportWriter(w domain.ReportWriter) *AnalyzeUseCaseBuilder {
	b.reportWriter = w
	return b
}

// Build creates the AnalyzeUseCase
func (b *AnalyzeUseCaseBuilder) Build() (*AnalyzeUseCase, error) {
	if b.service == nil {
		return nil, fmt.Errorf("analysis service is required")
	}
	if b.fileReader == nil {
		return nil, fmt.Errorf("file reader is required")
	}
	if b.formatter == nil {
		b.formatter = service.NewReportFormatter(false)
	}
	if b.reportWriter == nil {
		b.reportWriter = service.NewFileOutputWriter(os.Stderr)
	}

	return &AnalyzeUseCase{
		service:      b.service,
		fileReader:   b.fileReader,
		formatter:    b.formatter,
		reportWriter: b.reportWriter,
	}, nil
}

// Execute runs the analysis and writes the report. The report is returned
// even when it is partial so callers can inspect its diagnostics.
func (uc *AnalyzeUseCase) Execute(ctx context.Context, req domain.AnalysisRequest) (*domain.RunReport, error) {
	// Step 1: Validate the request; invalid options abort before any work
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if !req.HasValidOutputWriter() && req.OutputPath == "" {
		return nil, domain.NewOutputError("no valid output writer specified", nil)
	}

	if req.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, req.Timeout)
		defer cancel()
	}

	// Step 2: Collect files to analyze
	files, err := uc.fileReader.CollectPythonFiles(req.Paths, req.Recursive, req.IncludePatterns, req.ExcludePatterns)
	if err != nil {
		return nil, fmt.Errorf("failed to collect files: %w", err)
	}

	// Step 3: Analyze
	report, err := uc.service.Analyze(ctx, files, req.Options)
	if err != nil {
		return nil, fmt.Errorf("analysis failed: %w", err)
	}

	// Step 4: Format and output results
	err = uc.reportWriter.Write(req.OutputWriter, req.OutputPath, func(w io.Writer) error {
		return uc.formatter.Write(report, req.OutputFormat, w)
	})
	if err != nil {
		return report, fmt.Errorf("failed to write report: %w", err)
	}

	return report, nil
}
