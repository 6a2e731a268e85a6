package analyzer

import (
	"context"
	"errors"
	"math"
	"sync"
	"time"

	"github.com/sourcegraph/conc/pool"
	"go.uber.org/zap"

	"github.com/ludo-technologies/pyrefactor/domain"
)

// ProgressFunc is called once per finished oracle pair. Calls are
// serialized.
type ProgressFunc func(done, total int)

// BuilderConfig holds the matrix builder settings
type BuilderConfig struct {
	PrefilterThreshold     float64
	MinUnitLines           int
	MaxConcurrentCalls     int
	MaxSignatureWorkers    int
	PerCallTimeout         time.Duration
	ReproducibilityChecks  int
	ReproducibilityEpsilon float64
	Progress               ProgressFunc
}

// BuilderConfigFrom derives the builder settings from run options
func BuilderConfigFrom(opts domain.AnalysisOptions) BuilderConfig {
	return BuilderConfig{
		PrefilterThreshold:     opts.PrefilterThreshold,
		MinUnitLines:           opts.MinUnitLines,
		MaxConcurrentCalls:     opts.MaxConcurrentOracleCalls,
		MaxSignatureWorkers:    opts.MaxConcurrentFiles,
		PerCallTimeout:         opts.PerCallTimeout,
		ReproducibilityChecks:  opts.ReproducibilityChecks,
		ReproducibilityEpsilon: opts.ReproducibilityEpsilon,
	}
}

// BuildStats counts what happened to every candidate pair
type BuildStats struct {
	Compared        int // cells written
	Skipped         int // nested or too short, never compared
	Identical       int
	Prefiltered     int
	Attempted       int // pairs that reached the oracle stage
	Scored          int // oracle scores received
	Unscored        []domain.UnscoredPair
	NonReproducible []domain.NonReproduciblePair
	Cancelled       bool
}

// UnscoredFraction returns unscored / attempted
func (s BuildStats) UnscoredFraction() float64 {
	if s.Attempted == 0 {
		return 0
	}
	return float64(len(s.Unscored)) / float64(s.Attempted)
}

// MatrixBuilder computes the pairwise similarity matrix for a unit set
type MatrixBuilder struct {
	oracle   domain.SimilarityOracle
	verifier domain.SimilarityOracle
	cfg      BuilderConfig
	logger   *zap.Logger
}

// NewMatrixBuilder creates a builder. A nil logger disables logging.
func NewMatrixBuilder(oracle domain.SimilarityOracle, cfg BuilderConfig, logger *zap.Logger) *MatrixBuilder {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.MaxConcurrentCalls < 1 {
		cfg.MaxConcurrentCalls = domain.DefaultMaxConcurrentOracleCalls
	}
	if cfg.PerCallTimeout <= 0 {
		cfg.PerCallTimeout = domain.DefaultPerCallTimeout
	}
	return &MatrixBuilder{
		oracle:   oracle,
		verifier: oracle,
		cfg:      cfg,
		logger:   logger,
	}
}

// WithVerifier sets the oracle used to re-score pairs for the
// reproducibility check. It defaults to the scoring oracle; pass the
// uncached provider when the scoring oracle is backed by a score cache.
func (b *MatrixBuilder) WithVerifier(verifier domain.SimilarityOracle) *MatrixBuilder {
	if verifier != nil {
		b.verifier = verifier
	}
	return b
}

type pairTask struct {
	key PairKey
}

type pairResult struct {
	cell Cell
	done bool
}

// Build fills the matrix for units. Oracle failures never fail the build:
// they leave the cell unscored and are reported in the stats. On
// cancellation the matrix holds every pair resolved so far and the rest is
// marked unscored with reason cancelled.
func (b *MatrixBuilder) Build(ctx context.Context, units []*domain.CodeUnit) (*SimilarityMatrix, BuildStats) {
	matrix := NewSimilarityMatrix(len(units))
	var stats BuildStats

	sigs := ComputeSignatures(ctx, units, b.cfg.MaxSignatureWorkers)

	var tasks []pairTask
	for i := 0; i < len(units); i++ {
		for j := i + 1; j < len(units); j++ {
			a, c := units[i], units[j]
			if a.Contains(c) || c.Contains(a) ||
				a.LineCount() < b.cfg.MinUnitLines || c.LineCount() < b.cfg.MinUnitLines {
				stats.Skipped++
				continue
			}

			switch {
			case sigs[i].IdenticalBody(sigs[j]):
				b.set(matrix, i, j, Cell{State: CellScored, Score: 1.0, Identical: true})
				stats.Identical++
			case !b.passesPrefilter(sigs[i], sigs[j]):
				b.set(matrix, i, j, Cell{State: CellPrefiltered, Score: 0.0})
				stats.Prefiltered++
			default:
				tasks = append(tasks, pairTask{key: PairKey{I: i, J: j}})
			}
		}
	}
	stats.Attempted = len(tasks)

	results := b.scoreAll(ctx, units, tasks)

	for idx, task := range tasks {
		res := results[idx]
		if !res.done {
			res.cell = Cell{State: CellUnscored, Reason: domain.ReasonCancelled}
		}
		b.set(matrix, task.key.I, task.key.J, res.cell)

		switch res.cell.State {
		case CellScored:
			stats.Scored++
		case CellUnscored:
			stats.Unscored = append(stats.Unscored, domain.UnscoredPair{
				UnitA:  units[task.key.I].Key(),
				UnitB:  units[task.key.J].Key(),
				Reason: res.cell.Reason,
			})
			if res.cell.Reason == domain.ReasonCancelled {
				stats.Cancelled = true
			}
		}
	}

	if ctx.Err() != nil {
		stats.Cancelled = true
	} else {
		stats.NonReproducible = b.verify(ctx, units, tasks, results)
	}

	stats.Compared = matrix.Len()
	return matrix, stats
}

// scoreAll submits every task to a bounded pool. Each task owns its slot
// in the returned slice. Submission stops once ctx is done.
func (b *MatrixBuilder) scoreAll(ctx context.Context, units []*domain.CodeUnit, tasks []pairTask) []pairResult {
	results := make([]pairResult, len(tasks))
	if len(tasks) == 0 {
		return results
	}

	var (
		mu   sync.Mutex
		done int
	)
	progress := func() {
		if b.cfg.Progress == nil {
			return
		}
		mu.Lock()
		defer mu.Unlock()
		done++
		b.cfg.Progress(done, len(tasks))
	}

	p := pool.New().WithMaxGoroutines(b.cfg.MaxConcurrentCalls)
	for idx, task := range tasks {
		if ctx.Err() != nil {
			break
		}
		p.Go(func() {
			if ctx.Err() != nil {
				return
			}
			a, c := units[task.key.I], units[task.key.J]
			results[idx] = pairResult{cell: b.score(ctx, b.oracle, a, c), done: true}
			progress()
		})
	}
	p.Wait()

	return results
}

// score runs one oracle call under its own timeout and classifies the
// outcome into a cell.
func (b *MatrixBuilder) score(ctx context.Context, oracle domain.SimilarityOracle, a, c *domain.CodeUnit) Cell {
	callCtx, cancel := context.WithTimeout(ctx, b.cfg.PerCallTimeout)
	defer cancel()

	score, err := oracle.Score(callCtx, a.Body, c.Body)
	if err == nil && (math.IsNaN(score) || score < 0 || score > 1) {
		err = domain.NewOracleUnavailableError("score out of range", nil)
	}
	if err == nil {
		return Cell{State: CellScored, Score: score}
	}

	reason := domain.ReasonOracleFailure
	switch {
	case ctx.Err() != nil:
		reason = domain.ReasonCancelled
	case errors.Is(err, domain.ErrOracleTimeout),
		errors.Is(err, context.DeadlineExceeded),
		errors.Is(callCtx.Err(), context.DeadlineExceeded):
		reason = domain.ReasonOracleTimeout
	}

	b.logger.Debug("pair not scored",
		zap.String("unit_a", a.Key()),
		zap.String("unit_b", c.Key()),
		zap.String("reason", reason),
		zap.Error(err))

	return Cell{State: CellUnscored, Reason: reason}
}

// verify re-scores the first scored oracle pairs and reports the ones
// whose scores drift by more than the configured epsilon.
func (b *MatrixBuilder) verify(ctx context.Context, units []*domain.CodeUnit, tasks []pairTask, results []pairResult) []domain.NonReproduciblePair {
	if b.cfg.ReproducibilityChecks <= 0 {
		return nil
	}

	var drifted []domain.NonReproduciblePair
	checked := 0
	for idx, task := range tasks {
		if checked >= b.cfg.ReproducibilityChecks || ctx.Err() != nil {
			break
		}
		first := results[idx].cell
		if !results[idx].done || first.State != CellScored {
			continue
		}
		checked++

		a, c := units[task.key.I], units[task.key.J]
		second := b.score(ctx, b.verifier, a, c)
		if second.State != CellScored {
			continue
		}
		if math.Abs(first.Score-second.Score) > b.cfg.ReproducibilityEpsilon {
			b.logger.Warn("oracle score not reproducible",
				zap.String("unit_a", a.Key()),
				zap.String("unit_b", c.Key()),
				zap.Float64("first", first.Score),
				zap.Float64("second", second.Score))
			drifted = append(drifted, domain.NonReproduciblePair{
				UnitA:  a.Key(),
				UnitB:  c.Key(),
				First:  first.Score,
				Second: second.Score,
			})
		}
	}
	return drifted
}

// passesPrefilter reports whether a pair reaches the oracle: its signature
// similarity must exceed the bound. A zero bound scores every pair.
func (b *MatrixBuilder) passesPrefilter(a, c Signature) bool {
	if b.cfg.PrefilterThreshold <= 0 {
		return true
	}
	return a.WeightedJaccard(c) > b.cfg.PrefilterThreshold
}

func (b *MatrixBuilder) set(matrix *SimilarityMatrix, i, j int, cell Cell) {
	if err := matrix.Set(i, j, cell); err != nil {
		b.logger.Error("matrix write rejected", zap.Int("i", i), zap.Int("j", j), zap.Error(err))
	}
}
