package domain

import "time"

// Structural metric thresholds. A unit fires only when strictly above.
const (
	// DefaultLongMethodThreshold is the maximum line count before a unit is
	// reported as a long method.
	DefaultLongMethodThreshold = 30

	// DefaultParamCountThreshold is the maximum parameter count before a unit
	// is reported as having an overloaded parameter list.
	DefaultParamCountThreshold = 5
)

// Duplicate detection defaults.
const (
	// DefaultDuplicateThreshold is the minimum oracle score for an edge in
	// the similarity graph.
	DefaultDuplicateThreshold = 0.85

	// DefaultPrefilterThreshold is the minimum token-multiset similarity
	// for a pair to reach the oracle. Kept low so that syntactically
	// divergent duplicates still pass.
	DefaultPrefilterThreshold = 0.3

	// DefaultMinUnitLines excludes nothing by default.
	DefaultMinUnitLines = 1

	// DefaultMaxUnscoredFraction flags the run as degraded above 10%
	// unscored pairs.
	DefaultMaxUnscoredFraction = 0.1

	// DefaultReproducibilityEpsilon is the allowed drift between two scores
	// of the same pair.
	DefaultReproducibilityEpsilon = 0.05
)

// Concurrency defaults.
const (
	DefaultMaxConcurrentOracleCalls = 8
	DefaultPerCallTimeout           = 10 * time.Second
)
