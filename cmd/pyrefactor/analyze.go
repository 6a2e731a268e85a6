package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/ludo-technologies/pyrefactor/app"
	"github.com/ludo-technologies/pyrefactor/domain"
	"github.com/ludo-technologies/pyrefactor/internal/config"
	"github.com/ludo-technologies/pyrefactor/service"
)

// AnalyzeCommand represents the analyze command
type AnalyzeCommand struct {
	configFile string
	format     string
	outputPath string
	noColor    bool
	noProgress bool
	timeout    time.Duration

	// Detection overrides
	longMethodThreshold    int
	paramCountThreshold    int
	duplicateThreshold     float64
	prefilterThreshold     float64
	minUnitLines           int
	maxConcurrentCalls     int
	maxConcurrentFiles     int
	perCallTimeout         time.Duration
	maxUnscoredFraction    float64
	reproducibilityChecks  int
	reproducibilityEpsilon float64

	// Oracle and cache overrides
	provider string
	model    string
	cache    bool
	cacheDir string

	// Input overrides
	recursive       bool
	includePatterns []string
	excludePatterns []string

	// Exit non-zero when the run is degraded
	failOnDegraded bool
}

// NewAnalyzeCommand creates a new analyze command with default values
func NewAnalyzeCommand() *AnalyzeCommand {
	defaults := config.DefaultConfig()
	d := defaults.Detection
	return &AnalyzeCommand{
		format:                 defaults.Output.Format,
		longMethodThreshold:    d.LongMethodThreshold,
		paramCountThreshold:    d.ParamCountThreshold,
		duplicateThreshold:     d.DuplicateThreshold,
		prefilterThreshold:     d.PrefilterThreshold,
		minUnitLines:           d.MinUnitLines,
		maxConcurrentCalls:     d.MaxConcurrentOracleCalls,
		maxConcurrentFiles:     d.MaxConcurrentFiles,
		perCallTimeout:         d.PerCallTimeout,
		maxUnscoredFraction:    d.MaxUnscoredFraction,
		reproducibilityChecks:  d.ReproducibilityChecks,
		reproducibilityEpsilon: d.ReproducibilityEpsilon,
		provider:               defaults.Oracle.Provider,
		cacheDir:               defaults.Cache.Dir,
		recursive:              defaults.Input.Recursive,
	}
}

// CreateCobraCommand creates the cobra command for refactoring analysis
func (c *AnalyzeCommand) CreateCobraCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze [files...]",
		Short: "Find refactoring opportunities",
		Long: `Scan Python files for duplicate code groups, long methods and
overloaded parameter lists.

Candidate pairs of functions and methods are scored by a similarity
oracle. Pairs scoring at or above the duplicate threshold are merged into
groups. Every pair or file the run could not score is listed in the
diagnostics section of the report.

Examples:
  # Analyze the current directory
  pyrefactor analyze .

  # Write a JSON report
  pyrefactor analyze --format json --output report.json src/

  # Score pairs with an embedding model and cache the scores
  OPENAI_API_KEY=... pyrefactor analyze --provider openai --cache src/

  # Stricter thresholds
  pyrefactor analyze --long-method-threshold 30 --param-count-threshold 4 .`,
		Args: cobra.MinimumNArgs(1),
		RunE: c.runAnalyze,
	}

	f := cmd.Flags()
	f.StringVarP(&c.configFile, "config", "c", "", "Configuration file path")
	f.StringVarP(&c.format, "format", "f", c.format, "Output format: text, json, yaml, csv")
	f.StringVarP(&c.outputPath, "output", "o", "", "Write the report to this file instead of stdout")
	f.BoolVar(&c.noColor, "no-color", false, "Disable colored output")
	f.BoolVar(&c.noProgress, "no-progress", false, "Disable progress bars")
	f.DurationVar(&c.timeout, "timeout", 0, "Bound the whole run (0 = no limit)")

	f.IntVar(&c.longMethodThreshold, "long-method-threshold", c.longMethodThreshold, "Flag functions with more lines than this")
	f.IntVar(&c.paramCountThreshold, "param-count-threshold", c.paramCountThreshold, "Flag functions with more parameters than this")
	f.Float64Var(&c.duplicateThreshold, "duplicate-threshold", c.duplicateThreshold, "Minimum similarity for two units to be duplicates (0.0-1.0)")
	f.Float64Var(&c.prefilterThreshold, "prefilter-threshold", c.prefilterThreshold, "Minimum cheap signature similarity for a pair to be scored (0.0-1.0)")
	f.IntVar(&c.minUnitLines, "min-unit-lines", c.minUnitLines, "Ignore units shorter than this for duplicate detection")
	f.IntVar(&c.maxConcurrentCalls, "max-concurrent-calls", c.maxConcurrentCalls, "Maximum concurrent oracle calls")
	f.IntVar(&c.maxConcurrentFiles, "max-concurrent-files", c.maxConcurrentFiles, "Maximum files parsed in parallel (0 = number of CPUs)")
	f.DurationVar(&c.perCallTimeout, "per-call-timeout", c.perCallTimeout, "Timeout of one oracle call")
	f.Float64Var(&c.maxUnscoredFraction, "max-unscored-fraction", c.maxUnscoredFraction, "Mark the run degraded above this share of unscored pairs")
	f.IntVar(&c.reproducibilityChecks, "reproducibility-checks", c.reproducibilityChecks, "Re-score this many pairs to check the oracle is stable")
	f.Float64Var(&c.reproducibilityEpsilon, "reproducibility-epsilon", c.reproducibilityEpsilon, "Tolerated difference between repeated scores")

	f.StringVar(&c.provider, "provider", c.provider, "Similarity provider: structural, openai")
	f.StringVar(&c.model, "model", "", "Embedding model of the openai provider")
	f.BoolVar(&c.cache, "cache", false, "Cache oracle scores between runs")
	f.StringVar(&c.cacheDir, "cache-dir", c.cacheDir, "Score cache directory")

	f.BoolVarP(&c.recursive, "recursive", "r", c.recursive, "Analyze directories recursively")
	f.StringSliceVar(&c.includePatterns, "include", nil, "File patterns to include")
	f.StringSliceVar(&c.excludePatterns, "exclude", nil, "File patterns to exclude")

	f.BoolVar(&c.failOnDegraded, "fail-on-degraded", false, "Exit with code 1 when too many pairs went unscored")

	return cmd
}

// runAnalyze executes the analysis
func (c *AnalyzeCommand) runAnalyze(cmd *cobra.Command, args []string) error {
	verbose, _ := cmd.Flags().GetBool("verbose")
	logger, err := newLogger(verbose)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	cfg, err := c.loadConfig(cmd, args)
	if err != nil {
		return &exitError{code: ExitConfigError, err: err}
	}

	format, err := domain.ParseOutputFormat(cfg.Output.Format)
	if err != nil {
		return &exitError{code: ExitConfigError, err: err}
	}

	outputPath, err := c.resolveOutputPath(cfg, format)
	if err != nil {
		return &exitError{code: ExitConfigError, err: err}
	}

	setup, err := service.NewOracleSetup(service.OracleSetupOptions{
		Provider:     cfg.OracleOptions(),
		CacheEnabled: cfg.Cache.Enabled,
		CacheDir:     cfg.CacheDir(projectRoot(args[0])),
		Logger:       logger,
	})
	if err != nil {
		return &exitError{code: ExitConfigError, err: err}
	}
	defer func() {
		if err := setup.Close(); err != nil {
			logger.Warn("failed to close score cache", zap.Error(err))
		}
	}()

	progress := service.NewNoOpProgressManager()
	if !c.noProgress && service.IsInteractiveEnvironment() {
		progress = service.NewProgressManager()
	}
	defer progress.Close()

	analysisService := service.NewAnalysisService(
		service.NewFileReader(),
		service.WithOracleSetup(setup),
		service.WithProgress(progress),
		service.WithLogger(logger),
	)

	useCase, err := app.NewAnalyzeUseCaseBuilder().
		WithService(analysisService).
		WithFileReader(service.NewFileReader()).
		WithFormatter(service.NewReportFormatter(c.colored(outputPath, format))).
		WithReportWriter(service.NewFileOutputWriter(cmd.ErrOrStderr())).
		Build()
	if err != nil {
		return err
	}

	request := domain.AnalysisRequest{
		Paths:           args,
		Recursive:       cfg.Input.Recursive,
		IncludePatterns: cfg.Input.IncludePatterns,
		ExcludePatterns: cfg.Input.ExcludePatterns,
		Options:         cfg.ToAnalysisOptions(),
		OutputFormat:    format,
		OutputWriter:    cmd.OutOrStdout(),
		OutputPath:      outputPath,
		Timeout:         c.timeout,
		ConfigPath:      c.configFile,
	}

	report, err := useCase.Execute(cmd.Context(), request)
	if err != nil {
		return categorize(err)
	}

	switch {
	case report.Diagnostics.Cancelled:
		return &exitError{code: ExitAnalysisFailed, err: errors.New("analysis cancelled; the report is partial")}
	case report.Diagnostics.Degraded && c.failOnDegraded:
		return &exitError{
			code: ExitAnalysisFailed,
			err:  fmt.Errorf("run degraded: %.0f%% of attempted pairs unscored", report.Diagnostics.UnscoredFraction()*100),
		}
	}
	return nil
}

// loadConfig loads file configuration and applies explicitly set flags
func (c *AnalyzeCommand) loadConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg, err := config.LoadConfig(c.configFile, args[0])
	if err != nil {
		return nil, err
	}

	flags := GetExplicitFlags(cmd)
	d := &cfg.Detection
	d.LongMethodThreshold = config.MergeInt(d.LongMethodThreshold, c.longMethodThreshold, "long-method-threshold", flags)
	d.ParamCountThreshold = config.MergeInt(d.ParamCountThreshold, c.paramCountThreshold, "param-count-threshold", flags)
	d.DuplicateThreshold = config.MergeFloat64(d.DuplicateThreshold, c.duplicateThreshold, "duplicate-threshold", flags)
	d.PrefilterThreshold = config.MergeFloat64(d.PrefilterThreshold, c.prefilterThreshold, "prefilter-threshold", flags)
	d.MinUnitLines = config.MergeInt(d.MinUnitLines, c.minUnitLines, "min-unit-lines", flags)
	d.MaxConcurrentOracleCalls = config.MergeInt(d.MaxConcurrentOracleCalls, c.maxConcurrentCalls, "max-concurrent-calls", flags)
	d.MaxConcurrentFiles = config.MergeInt(d.MaxConcurrentFiles, c.maxConcurrentFiles, "max-concurrent-files", flags)
	d.PerCallTimeout = config.MergeDuration(d.PerCallTimeout, c.perCallTimeout, "per-call-timeout", flags)
	d.MaxUnscoredFraction = config.MergeFloat64(d.MaxUnscoredFraction, c.maxUnscoredFraction, "max-unscored-fraction", flags)
	d.ReproducibilityChecks = config.MergeInt(d.ReproducibilityChecks, c.reproducibilityChecks, "reproducibility-checks", flags)
	d.ReproducibilityEpsilon = config.MergeFloat64(d.ReproducibilityEpsilon, c.reproducibilityEpsilon, "reproducibility-epsilon", flags)

	cfg.Oracle.Provider = config.MergeString(cfg.Oracle.Provider, c.provider, "provider", flags)
	cfg.Oracle.Model = config.MergeString(cfg.Oracle.Model, c.model, "model", flags)
	cfg.Cache.Enabled = config.MergeBool(cfg.Cache.Enabled, c.cache, "cache", flags)
	cfg.Cache.Dir = config.MergeString(cfg.Cache.Dir, c.cacheDir, "cache-dir", flags)

	cfg.Input.Recursive = config.MergeBool(cfg.Input.Recursive, c.recursive, "recursive", flags)
	cfg.Input.IncludePatterns = config.MergeStringSlice(cfg.Input.IncludePatterns, c.includePatterns, "include", flags)
	cfg.Input.ExcludePatterns = config.MergeStringSlice(cfg.Input.ExcludePatterns, c.excludePatterns, "exclude", flags)

	cfg.Output.Format = config.MergeString(cfg.Output.Format, c.format, "format", flags)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// resolveOutputPath picks the report file: --output, then a timestamped
// file under output.directory for machine formats, else stdout.
func (c *AnalyzeCommand) resolveOutputPath(cfg *config.Config, format domain.OutputFormat) (string, error) {
	if c.outputPath != "" {
		return c.outputPath, nil
	}
	if cfg.Output.Directory == "" || format == domain.OutputFormatText {
		return "", nil
	}
	return generateOutputFilePath(cfg.Output.Directory, service.Extension(format))
}

// colored enables ANSI colors only for text written to a terminal
func (c *AnalyzeCommand) colored(outputPath string, format domain.OutputFormat) bool {
	if c.noColor || outputPath != "" || format != domain.OutputFormatText {
		return false
	}
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// categorize maps a use case error to an exit code
func categorize(err error) error {
	if errors.Is(err, domain.ErrConfig) {
		return &exitError{code: ExitConfigError, err: err}
	}
	categorized := service.NewErrorCategorizer().Categorize(err)
	if categorized.Category == domain.ErrorCategoryConfig {
		return &exitError{code: ExitConfigError, err: categorized}
	}
	return &exitError{code: ExitAnalysisFailed, err: categorized}
}

// projectRoot is the directory a relative cache path is resolved against
func projectRoot(target string) string {
	abs, err := filepath.Abs(target)
	if err != nil {
		return ""
	}
	if info, err := os.Stat(abs); err == nil && !info.IsDir() {
		return filepath.Dir(abs)
	}
	return abs
}

// NewAnalyzeCmd creates and returns the analyze cobra command
func NewAnalyzeCmd() *cobra.Command {
	return NewAnalyzeCommand().CreateCobraCommand()
}
