package oracle

import (
	"context"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/ludo-technologies/pyrefactor/domain"
)

// CachedOracle serves scores from a ScoreStore and falls through to the
// wrapped oracle on a miss. Only successful scores are stored.
type CachedOracle struct {
	inner     domain.SimilarityOracle
	store     domain.ScoreStore
	namespace string
	logger    *zap.Logger

	hits   atomic.Int64
	misses atomic.Int64
}

// NewCachedOracle wraps inner. The namespace identifies the provider and
// model so their scores never mix.
func NewCachedOracle(inner domain.SimilarityOracle, store domain.ScoreStore, namespace string, logger *zap.Logger) *CachedOracle {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedOracle{
		inner:     inner,
		store:     store,
		namespace: namespace,
		logger:    logger,
	}
}

// Score implements domain.SimilarityOracle
func (c *CachedOracle) Score(ctx context.Context, fragmentA, fragmentB string) (float64, error) {
	ha := FragmentHash(c.namespace, fragmentA)
	hb := FragmentHash(c.namespace, fragmentB)

	score, ok, err := c.store.Get(ha, hb)
	if err != nil {
		c.logger.Warn("score cache read failed", zap.Error(err))
	} else if ok {
		c.hits.Add(1)
		return score, nil
	}
	c.misses.Add(1)

	score, err = c.inner.Score(ctx, fragmentA, fragmentB)
	if err != nil {
		return 0, err
	}
	if err := c.store.Put(ha, hb, score); err != nil {
		c.logger.Warn("score cache write failed", zap.Error(err))
	}
	return score, nil
}

// Inner returns the wrapped oracle
func (c *CachedOracle) Inner() domain.SimilarityOracle { return c.inner }

// Hits returns the number of scores served from the store
func (c *CachedOracle) Hits() int64 { return c.hits.Load() }

// Misses returns the number of scores computed by the wrapped oracle
func (c *CachedOracle) Misses() int64 { return c.misses.Load() }

var _ domain.SimilarityOracle = (*CachedOracle)(nil)
