package service

import (
	"go.uber.org/zap"

	"github.com/ludo-technologies/pyrefactor/domain"
	"github.com/ludo-technologies/pyrefactor/internal/cache"
	"github.com/ludo-technologies/pyrefactor/internal/oracle"
)

// OracleSetup is the oracle wiring of one run
type OracleSetup struct {
	// Oracle scores pairs, through the score cache when enabled
	Oracle domain.SimilarityOracle

	// Verifier re-scores pairs for the reproducibility check. It is a
	// separate unmemoized provider and never cached.
	Verifier domain.SimilarityOracle

	cached *oracle.CachedOracle
	store  *cache.BadgerStore
}

// OracleSetupOptions selects the provider and the cache
type OracleSetupOptions struct {
	Provider     oracle.Options
	CacheEnabled bool
	CacheDir     string
	Logger       *zap.Logger
}

// NewOracleSetup builds the provider and, when enabled, opens the score
// cache in front of it. Close must be called to release the cache.
func NewOracleSetup(opts OracleSetupOptions) (*OracleSetup, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	provider, err := oracle.New(opts.Provider, logger.Named("oracle"))
	if err != nil {
		return nil, err
	}

	verifier, err := oracle.NewVerifier(opts.Provider, logger.Named("verifier"))
	if err != nil {
		return nil, err
	}

	setup := &OracleSetup{Oracle: provider, Verifier: verifier}
	if !opts.CacheEnabled {
		return setup, nil
	}

	store, err := cache.Open(cache.Config{Path: opts.CacheDir, Logger: logger})
	if err != nil {
		return nil, domain.NewConfigError("failed to open score cache", err)
	}
	setup.store = store
	setup.cached = oracle.NewCachedOracle(provider, store, opts.Provider.Namespace(), logger.Named("cache"))
	setup.Oracle = setup.cached
	return setup, nil
}

// CacheHits returns the number of pairs served from the score cache
func (s *OracleSetup) CacheHits() int {
	if s == nil || s.cached == nil {
		return 0
	}
	return int(s.cached.Hits())
}

// Close releases the score cache
func (s *OracleSetup) Close() error {
	if s == nil || s.store == nil {
		return nil
	}
	return s.store.Close()
}
