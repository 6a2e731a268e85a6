package domain

import "time"

// Reasons recorded for skipped files and unscored pairs
const (
	ReasonParseError    = "parse_error"
	ReasonReadError     = "read_error"
	ReasonCancelled     = "cancelled"
	ReasonOracleTimeout = "oracle_timeout"
	ReasonOracleFailure = "oracle_unavailable"
)

// SkippedFile records a file whose units were not analyzed
type SkippedFile struct {
	Path   string `json:"path" yaml:"path"`
	Reason string `json:"reason" yaml:"reason"`
	Detail string `json:"detail,omitempty" yaml:"detail,omitempty"`
}

// UnscoredPair records a candidate pair the oracle did not score
type UnscoredPair struct {
	UnitA  string `json:"unit_a" yaml:"unit_a"`
	UnitB  string `json:"unit_b" yaml:"unit_b"`
	Reason string `json:"reason" yaml:"reason"`
}

// NonReproduciblePair records a pair whose repeated scores disagreed
type NonReproduciblePair struct {
	UnitA  string  `json:"unit_a" yaml:"unit_a"`
	UnitB  string  `json:"unit_b" yaml:"unit_b"`
	First  float64 `json:"first" yaml:"first"`
	Second float64 `json:"second" yaml:"second"`
}

// Diagnostics summarizes everything the run skipped or could not trust
type Diagnostics struct {
	SkippedFiles         []SkippedFile         `json:"skipped_files" yaml:"skipped_files"`
	UnscoredPairs        []UnscoredPair        `json:"unscored_pairs" yaml:"unscored_pairs"`
	NonReproduciblePairs []NonReproduciblePair `json:"non_reproducible_pairs,omitempty" yaml:"non_reproducible_pairs,omitempty"`

	ComparedPairs    int `json:"compared_pairs" yaml:"compared_pairs"`
	PrefilteredPairs int `json:"prefiltered_pairs" yaml:"prefiltered_pairs"`
	IdenticalPairs   int `json:"identical_pairs" yaml:"identical_pairs"`
	AttemptedPairs   int `json:"attempted_pairs" yaml:"attempted_pairs"`
	ScoredPairs      int `json:"scored_pairs" yaml:"scored_pairs"`
	CachedPairs      int `json:"cached_pairs" yaml:"cached_pairs"`

	// Degraded is set when the unscored share of attempted pairs exceeds
	// the configured fraction; duplicate groups may then be undercounted.
	Degraded        bool     `json:"degraded" yaml:"degraded"`
	NonReproducible bool     `json:"non_reproducible" yaml:"non_reproducible"`
	Cancelled       bool     `json:"cancelled" yaml:"cancelled"`
	Warnings        []string `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

// UnscoredFraction returns unscored / attempted, or 0 when nothing was attempted.
func (d *Diagnostics) UnscoredFraction() float64 {
	if d.AttemptedPairs == 0 {
		return 0
	}
	return float64(len(d.UnscoredPairs)) / float64(d.AttemptedPairs)
}

// HasIssues reports whether anything was skipped or flagged.
func (d *Diagnostics) HasIssues() bool {
	return len(d.SkippedFiles) > 0 || len(d.UnscoredPairs) > 0 ||
		d.Degraded || d.NonReproducible || d.Cancelled
}

// Summary counts the run's findings
type Summary struct {
	FilesAnalyzed        int `json:"files_analyzed" yaml:"files_analyzed"`
	UnitsAnalyzed        int `json:"units_analyzed" yaml:"units_analyzed"`
	LongMethods          int `json:"long_methods" yaml:"long_methods"`
	OverloadedParameters int `json:"overloaded_parameters" yaml:"overloaded_parameters"`
	DuplicateGroups      int `json:"duplicate_groups" yaml:"duplicate_groups"`
	DuplicateUnits       int `json:"duplicate_units" yaml:"duplicate_units"`
}

// RunReport is the complete result of one analysis run
type RunReport struct {
	RunID       string      `json:"run_id" yaml:"run_id"`
	Findings    []Finding   `json:"findings" yaml:"findings"`
	Summary     Summary     `json:"summary" yaml:"summary"`
	Diagnostics Diagnostics `json:"diagnostics" yaml:"diagnostics"`
	GeneratedAt time.Time   `json:"generated_at" yaml:"generated_at"`
	DurationMs  int64       `json:"duration_ms" yaml:"duration_ms"`
}

// Summarize recomputes the finding counters from Findings.
func (r *RunReport) Summarize() {
	r.Summary.LongMethods = 0
	r.Summary.OverloadedParameters = 0
	r.Summary.DuplicateGroups = 0
	r.Summary.DuplicateUnits = 0
	for i := range r.Findings {
		switch r.Findings[i].Kind {
		case FindingLongMethod:
			r.Summary.LongMethods++
		case FindingOverloadedParameters:
			r.Summary.OverloadedParameters++
		case FindingSemanticDuplicateGroup:
			r.Summary.DuplicateGroups++
			r.Summary.DuplicateUnits += len(r.Findings[i].Units)
		}
	}
}
