package domain

import (
	"testing"
)

// TestDefaultValueConsistency ensures all default values are properly defined
// and maintain expected relationships
func TestDefaultValueConsistency(t *testing.T) {
	t.Run("Prefilter is looser than the duplicate threshold", func(t *testing.T) {
		if DefaultPrefilterThreshold >= DefaultDuplicateThreshold {
			t.Errorf("prefilter threshold (%.2f) should be < duplicate threshold (%.2f)",
				DefaultPrefilterThreshold, DefaultDuplicateThreshold)
		}
	})

	t.Run("Fractions are within valid range", func(t *testing.T) {
		fractions := []struct {
			name  string
			value float64
		}{
			{"DuplicateThreshold", DefaultDuplicateThreshold},
			{"PrefilterThreshold", DefaultPrefilterThreshold},
			{"MaxUnscoredFraction", DefaultMaxUnscoredFraction},
			{"ReproducibilityEpsilon", DefaultReproducibilityEpsilon},
		}
		for _, f := range fractions {
			if f.value < 0.0 || f.value > 1.0 {
				t.Errorf("%s (%.2f) should be between 0.0 and 1.0", f.name, f.value)
			}
		}
	})

	t.Run("Concurrency defaults are usable", func(t *testing.T) {
		if DefaultMaxConcurrentOracleCalls < 1 {
			t.Errorf("max concurrent oracle calls should be >= 1, got %d", DefaultMaxConcurrentOracleCalls)
		}
		if DefaultPerCallTimeout <= 0 {
			t.Errorf("per-call timeout should be positive, got %v", DefaultPerCallTimeout)
		}
	})
}

// TestExpectedDefaultValues pins the documented defaults
func TestExpectedDefaultValues(t *testing.T) {
	if DefaultLongMethodThreshold != 30 {
		t.Errorf("long method threshold should be 30, got %d", DefaultLongMethodThreshold)
	}
	if DefaultParamCountThreshold != 5 {
		t.Errorf("param count threshold should be 5, got %d", DefaultParamCountThreshold)
	}
	if DefaultDuplicateThreshold != 0.85 {
		t.Errorf("duplicate threshold should be 0.85, got %.2f", DefaultDuplicateThreshold)
	}
	if DefaultMinUnitLines != 1 {
		t.Errorf("min unit lines should be 1, got %d", DefaultMinUnitLines)
	}
}
