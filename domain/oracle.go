package domain

import "context"

// SimilarityOracle scores the semantic closeness of two code fragments.
//
// Score returns a value in [0,1]: 1.0 denotes certain equivalence and 0.0
// certain unrelatedness. Implementations fail with an error matching
// ErrOracleUnavailable or ErrOracleTimeout; callers treat both as "pair not
// scored". Scores for unchanged inputs must be stable within a small epsilon.
type SimilarityOracle interface {
	Score(ctx context.Context, fragmentA, fragmentB string) (float64, error)
}

// OracleFunc adapts a plain function to SimilarityOracle.
type OracleFunc func(ctx context.Context, fragmentA, fragmentB string) (float64, error)

// Score calls f(ctx, fragmentA, fragmentB).
func (f OracleFunc) Score(ctx context.Context, fragmentA, fragmentB string) (float64, error) {
	return f(ctx, fragmentA, fragmentB)
}

// ScoreStore persists similarity scores keyed by fragment hashes so unchanged
// code is not re-scored across runs.
type ScoreStore interface {
	// Get returns the stored score for the unordered hash pair.
	Get(hashA, hashB string) (float64, bool, error)

	// Put stores the score for the unordered hash pair.
	Put(hashA, hashB string, score float64) error

	// Close releases the store.
	Close() error
}
