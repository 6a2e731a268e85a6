package domain

import (
	"context"
	"fmt"
	"io"
	"time"
)

// OutputFormat represents the supported output formats
type OutputFormat string

const (
	OutputFormatText OutputFormat = "text"
	OutputFormatJSON OutputFormat = "json"
	OutputFormatYAML OutputFormat = "yaml"
	OutputFormatCSV  OutputFormat = "csv"
)

// ParseOutputFormat converts a user-supplied name to an OutputFormat
func ParseOutputFormat(name string) (OutputFormat, error) {
	switch OutputFormat(name) {
	case OutputFormatText, OutputFormatJSON, OutputFormatYAML, OutputFormatCSV:
		return OutputFormat(name), nil
	case "":
		return OutputFormatText, nil
	default:
		return "", NewUnsupportedFormatError(name)
	}
}

// Thresholds configures the structural metrics scanner
type Thresholds struct {
	LongMethod int `json:"long_method_threshold" yaml:"long_method_threshold"`
	ParamCount int `json:"param_count_threshold" yaml:"param_count_threshold"`
}

// Validate fails with a configuration error for negative thresholds
func (t Thresholds) Validate() error {
	if t.LongMethod < 0 {
		return NewValidationError(fmt.Sprintf("long_method_threshold must be >= 0, got %d", t.LongMethod))
	}
	if t.ParamCount < 0 {
		return NewValidationError(fmt.Sprintf("param_count_threshold must be >= 0, got %d", t.ParamCount))
	}
	return nil
}

// AnalysisOptions holds the run-level configuration passed explicitly into
// every component of an analysis run.
type AnalysisOptions struct {
	Thresholds Thresholds `json:"thresholds" yaml:"thresholds"`

	DuplicateThreshold float64 `json:"duplicate_threshold" yaml:"duplicate_threshold"`
	PrefilterThreshold float64 `json:"prefilter_threshold" yaml:"prefilter_threshold"`
	MinUnitLines       int     `json:"min_unit_lines" yaml:"min_unit_lines"`

	MaxConcurrentOracleCalls int           `json:"max_concurrent_oracle_calls" yaml:"max_concurrent_oracle_calls"`
	MaxConcurrentFiles       int           `json:"max_concurrent_files" yaml:"max_concurrent_files"`
	PerCallTimeout           time.Duration `json:"per_call_timeout" yaml:"per_call_timeout"`

	MaxUnscoredFraction    float64 `json:"max_unscored_fraction" yaml:"max_unscored_fraction"`
	ReproducibilityChecks  int     `json:"reproducibility_checks" yaml:"reproducibility_checks"`
	ReproducibilityEpsilon float64 `json:"reproducibility_epsilon" yaml:"reproducibility_epsilon"`
}

// DefaultAnalysisOptions returns the default run configuration
func DefaultAnalysisOptions() AnalysisOptions {
	return AnalysisOptions{
		Thresholds: Thresholds{
			LongMethod: DefaultLongMethodThreshold,
			ParamCount: DefaultParamCountThreshold,
		},
		DuplicateThreshold:       DefaultDuplicateThreshold,
		PrefilterThreshold:       DefaultPrefilterThreshold,
		MinUnitLines:             DefaultMinUnitLines,
		MaxConcurrentOracleCalls: DefaultMaxConcurrentOracleCalls,
		MaxConcurrentFiles:       0,
		PerCallTimeout:           DefaultPerCallTimeout,
		MaxUnscoredFraction:      DefaultMaxUnscoredFraction,
		ReproducibilityChecks:    0,
		ReproducibilityEpsilon:   DefaultReproducibilityEpsilon,
	}
}

// Validate checks every option; any violation is a configuration error.
func (o AnalysisOptions) Validate() error {
	if err := o.Thresholds.Validate(); err != nil {
		return err
	}
	if o.DuplicateThreshold < 0.0 || o.DuplicateThreshold > 1.0 {
		return NewValidationError("duplicate_threshold must be between 0.0 and 1.0")
	}
	if o.PrefilterThreshold < 0.0 || o.PrefilterThreshold > 1.0 {
		return NewValidationError("prefilter_threshold must be between 0.0 and 1.0")
	}
	if o.MinUnitLines < 0 {
		return NewValidationError("min_unit_lines must be >= 0")
	}
	if o.MaxConcurrentOracleCalls < 1 {
		return NewValidationError("max_concurrent_oracle_calls must be >= 1")
	}
	if o.MaxConcurrentFiles < 0 {
		return NewValidationError("max_concurrent_files must be >= 0")
	}
	if o.PerCallTimeout <= 0 {
		return NewValidationError("per_call_timeout must be > 0")
	}
	if o.MaxUnscoredFraction < 0.0 || o.MaxUnscoredFraction > 1.0 {
		return NewValidationError("max_unscored_fraction must be between 0.0 and 1.0")
	}
	if o.ReproducibilityChecks < 0 {
		return NewValidationError("reproducibility_checks must be >= 0")
	}
	if o.ReproducibilityEpsilon < 0.0 {
		return NewValidationError("reproducibility_epsilon must be >= 0.0")
	}
	return nil
}

// AnalysisRequest represents a request for a refactoring analysis
type AnalysisRequest struct {
	// Input parameters
	Paths           []string `json:"paths"`
	Recursive       bool     `json:"recursive"`
	IncludePatterns []string `json:"include_patterns"`
	ExcludePatterns []string `json:"exclude_patterns"`

	Options AnalysisOptions `json:"options"`

	// Output configuration
	OutputFormat OutputFormat `json:"output_format"`
	OutputWriter io.Writer    `json:"-"`
	OutputPath   string       `json:"output_path"`

	// Timeout bounds the whole run; zero means no limit
	Timeout time.Duration `json:"timeout"`

	// Configuration file
	ConfigPath string `json:"config_path"`
}

// Validate validates an analysis request
func (req *AnalysisRequest) Validate() error {
	if len(req.Paths) == 0 {
		return NewInvalidInputError("paths cannot be empty", nil)
	}
	if req.Timeout < 0 {
		return NewValidationError("timeout must be >= 0")
	}
	return req.Options.Validate()
}

// HasValidOutputWriter checks if the request has a valid output writer
func (req *AnalysisRequest) HasValidOutputWriter() bool {
	return req.OutputWriter != nil
}

// DefaultAnalysisRequest returns a default analysis request
func DefaultAnalysisRequest() *AnalysisRequest {
	return &AnalysisRequest{
		Paths:           []string{"."},
		Recursive:       true,
		IncludePatterns: []string{"**/*.py"},
		ExcludePatterns: []string{},
		Options:         DefaultAnalysisOptions(),
		OutputFormat:    OutputFormatText,
	}
}

// AnalysisService runs the refactoring analysis over already-collected files
type AnalysisService interface {
	Analyze(ctx context.Context, files []string, opts AnalysisOptions) (*RunReport, error)
}

// FileReader defines the interface for collecting and reading source files
type FileReader interface {
	// CollectPythonFiles finds all Python files in the given paths
	CollectPythonFiles(paths []string, recursive bool, includePatterns, excludePatterns []string) ([]string, error)

	// ReadFile reads the content of a file
	ReadFile(path string) ([]byte, error)

	// IsValidPythonFile checks if a file is a valid Python file
	IsValidPythonFile(path string) bool
}

// ReportFormatter renders a run report
type ReportFormatter interface {
	Write(report *RunReport, format OutputFormat, writer io.Writer) error
}
