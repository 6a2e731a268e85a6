package service

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/sourcegraph/conc/pool"
	"go.uber.org/zap"

	"github.com/ludo-technologies/pyrefactor/domain"
	"github.com/ludo-technologies/pyrefactor/internal/analyzer"
	"github.com/ludo-technologies/pyrefactor/internal/oracle"
	"github.com/ludo-technologies/pyrefactor/internal/parser"
)

// AnalysisServiceImpl runs the whole pipeline: extract units, scan
// metrics, build the similarity matrix, group duplicates, and assemble
// the report.
type AnalysisServiceImpl struct {
	reader    domain.FileReader
	oracle    domain.SimilarityOracle
	verifier  domain.SimilarityOracle
	cacheHits func() int
	progress  domain.ProgressManager
	logger    *zap.Logger
	now       func() time.Time
}

// AnalysisServiceOption configures an AnalysisServiceImpl
type AnalysisServiceOption func(*AnalysisServiceImpl)

// WithOracle sets the similarity oracle. The default is the structural
// oracle.
func WithOracle(o domain.SimilarityOracle) AnalysisServiceOption {
	return func(s *AnalysisServiceImpl) {
		s.oracle = o
	}
}

// WithOracleSetup uses a prepared oracle wiring, including its verifier
// and cache counters.
func WithOracleSetup(setup *OracleSetup) AnalysisServiceOption {
	return func(s *AnalysisServiceImpl) {
		s.oracle = setup.Oracle
		s.verifier = setup.Verifier
		s.cacheHits = setup.CacheHits
	}
}

// WithProgress reports parsing and scoring progress
func WithProgress(pm domain.ProgressManager) AnalysisServiceOption {
	return func(s *AnalysisServiceImpl) {
		s.progress = pm
	}
}

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) AnalysisServiceOption {
	return func(s *AnalysisServiceImpl) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewAnalysisService creates the analysis service
func NewAnalysisService(reader domain.FileReader, opts ...AnalysisServiceOption) *AnalysisServiceImpl {
	s := &AnalysisServiceImpl{
		reader:   reader,
		progress: NewNoOpProgressManager(),
		logger:   zap.NewNop(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.oracle == nil {
		s.oracle = oracle.NewStructuralOracle()
		if s.verifier == nil {
			s.verifier = oracle.NewStructuralOracle(oracle.WithoutProfileMemo())
		}
	}
	if s.verifier == nil {
		s.verifier = s.oracle
	}
	if s.cacheHits == nil {
		s.cacheHits = func() int { return 0 }
	}
	return s
}

type fileResult struct {
	units   []domain.CodeUnit
	skipped *domain.SkippedFile
	err     error
}

// Analyze runs the analysis over files. Invalid options fail before any
// work starts. Every other problem is recorded in the report's
// diagnostics; on cancellation the report holds the partial results.
func (s *AnalysisServiceImpl) Analyze(ctx context.Context, files []string, opts domain.AnalysisOptions) (*domain.RunReport, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	scanner, err := analyzer.NewMetricsScanner(opts.Thresholds)
	if err != nil {
		return nil, err
	}

	start := s.now()
	report := &domain.RunReport{RunID: uuid.NewString()}
	logger := s.logger.With(zap.String("run_id", report.RunID))
	logger.Debug("analysis started", zap.Int("files", len(files)))

	units, filesAnalyzed, skipped := s.extract(ctx, files, opts.MaxConcurrentFiles, logger)
	report.Diagnostics.SkippedFiles = skipped
	report.Summary.FilesAnalyzed = filesAnalyzed
	report.Summary.UnitsAnalyzed = len(units)

	metricFindings := scanner.Scan(units)

	cfg := analyzer.BuilderConfigFrom(opts)
	cfg.Progress = func(done, total int) {
		s.progress.Update(done, total)
	}
	builder := analyzer.NewMatrixBuilder(s.oracle, cfg, logger.Named("matrix")).WithVerifier(s.verifier)

	s.progress.StartPhase("Scoring pairs", 0)
	matrix, stats := builder.Build(ctx, units)
	s.progress.Complete(!stats.Cancelled)

	groups := analyzer.NewConnectedGrouping(opts.DuplicateThreshold).Group(units, matrix)
	report.Findings = analyzer.AssembleFindings(metricFindings, groups)
	report.Summarize()

	s.fillDiagnostics(&report.Diagnostics, stats, opts)
	if ctx.Err() != nil {
		report.Diagnostics.Cancelled = true
	}
	s.warn(logger, &report.Diagnostics, opts)

	end := s.now()
	report.GeneratedAt = end
	report.DurationMs = end.Sub(start).Milliseconds()

	logger.Debug("analysis finished",
		zap.Int("units", len(units)),
		zap.Int("findings", len(report.Findings)),
		zap.Int("scored_pairs", report.Diagnostics.ScoredPairs),
		zap.Int64("duration_ms", report.DurationMs))
	return report, nil
}

// extract parses every file on a bounded pool, one parser per task, and
// flattens the units in file order.
func (s *AnalysisServiceImpl) extract(ctx context.Context, files []string, maxWorkers int, logger *zap.Logger) ([]*domain.CodeUnit, int, []domain.SkippedFile) {
	if maxWorkers <= 0 {
		maxWorkers = runtime.NumCPU()
	}

	results := make([]fileResult, len(files))
	s.progress.StartPhase("Parsing files", len(files))

	var done int
	progress := make(chan struct{}, len(files))
	p := pool.New().WithMaxGoroutines(maxWorkers)
	for i, path := range files {
		p.Go(func() {
			defer func() { progress <- struct{}{} }()
			results[i] = s.extractFile(ctx, path)
		})
	}
	go func() {
		p.Wait()
		close(progress)
	}()
	for range progress {
		done++
		s.progress.Update(done, len(files))
	}
	s.progress.Complete(ctx.Err() == nil)

	var (
		units    []*domain.CodeUnit
		skipped  []domain.SkippedFile
		analyzed int
	)
	for i := range results {
		r := &results[i]
		if r.skipped != nil {
			logger.Warn("file skipped",
				zap.String("file", r.skipped.Path),
				zap.String("reason", r.skipped.Reason),
				zap.Error(r.err))
			skipped = append(skipped, *r.skipped)
			continue
		}
		analyzed++
		for j := range r.units {
			units = append(units, &r.units[j])
		}
	}
	return units, analyzed, skipped
}

func (s *AnalysisServiceImpl) extractFile(ctx context.Context, path string) fileResult {
	skip := func(reason string, err error) fileResult {
		return fileResult{
			skipped: &domain.SkippedFile{Path: path, Reason: reason, Detail: detailOf(err)},
			err:     err,
		}
	}

	if ctx.Err() != nil {
		return skip(domain.ReasonCancelled, ctx.Err())
	}

	source, err := s.reader.ReadFile(path)
	if err != nil {
		return skip(domain.ReasonReadError, err)
	}

	p := parser.Acquire()
	defer parser.Release(p)

	seq, err := p.ExtractUnits(ctx, path, source)
	if err != nil {
		if ctx.Err() != nil {
			return skip(domain.ReasonCancelled, err)
		}
		return skip(domain.ReasonParseError, err)
	}
	return fileResult{units: slices.Collect(seq)}
}

// detailOf keeps the innermost message, e.g. the syntax error position
func detailOf(err error) string {
	if err == nil {
		return ""
	}
	var derr domain.DomainError
	if errors.As(err, &derr) && derr.Cause != nil {
		return derr.Cause.Error()
	}
	return err.Error()
}

func (s *AnalysisServiceImpl) fillDiagnostics(d *domain.Diagnostics, stats analyzer.BuildStats, opts domain.AnalysisOptions) {
	d.UnscoredPairs = stats.Unscored
	d.NonReproduciblePairs = stats.NonReproducible
	d.ComparedPairs = stats.Compared
	d.PrefilteredPairs = stats.Prefiltered
	d.IdenticalPairs = stats.Identical
	d.AttemptedPairs = stats.Attempted
	d.ScoredPairs = stats.Scored
	d.CachedPairs = s.cacheHits()
	d.Degraded = stats.UnscoredFraction() > opts.MaxUnscoredFraction
	d.NonReproducible = len(stats.NonReproducible) > 0
	d.Cancelled = stats.Cancelled

	for _, f := range d.SkippedFiles {
		if f.Reason == domain.ReasonCancelled {
			d.Cancelled = true
		}
	}
}

func (s *AnalysisServiceImpl) warn(logger *zap.Logger, d *domain.Diagnostics, opts domain.AnalysisOptions) {
	if len(d.SkippedFiles) > 0 {
		d.Warnings = append(d.Warnings, fmt.Sprintf("%d file(s) skipped", len(d.SkippedFiles)))
	}
	if len(d.UnscoredPairs) > 0 {
		d.Warnings = append(d.Warnings, fmt.Sprintf("%d of %d attempted pair(s) unscored", len(d.UnscoredPairs), d.AttemptedPairs))
	}
	if d.Degraded {
		msg := fmt.Sprintf("duplicate detection degraded: unscored fraction %.2f exceeds %.2f; duplicate groups may be incomplete",
			d.UnscoredFraction(), opts.MaxUnscoredFraction)
		d.Warnings = append(d.Warnings, msg)
		logger.Warn("duplicate detection degraded",
			zap.Int("unscored", len(d.UnscoredPairs)),
			zap.Int("attempted", d.AttemptedPairs),
			zap.Float64("max_unscored_fraction", opts.MaxUnscoredFraction))
	}
	if d.NonReproducible {
		d.Warnings = append(d.Warnings, fmt.Sprintf("%d pair(s) scored differently on re-check; the oracle may be non-deterministic", len(d.NonReproduciblePairs)))
	}
	if d.Cancelled {
		d.Warnings = append(d.Warnings, "run cancelled; results are partial")
	}
}

var _ domain.AnalysisService = (*AnalysisServiceImpl)(nil)
