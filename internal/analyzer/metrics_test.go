package analyzer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ludo-technologies/pyrefactor/domain"
)

func TestScanUnit_ThresholdBoundary(t *testing.T) {
	thresholds := domain.Thresholds{LongMethod: 30, ParamCount: 5}

	tests := []struct {
		name      string
		lines     int
		params    int
		wantKinds []domain.FindingKind
	}{
		{"equal to thresholds", 30, 5, nil},
		{"one line over", 31, 5, []domain.FindingKind{domain.FindingLongMethod}},
		{"one parameter over", 30, 6, []domain.FindingKind{domain.FindingOverloadedParameters}},
		{"both over", 31, 6, []domain.FindingKind{domain.FindingLongMethod, domain.FindingOverloadedParameters}},
		{"well under", 3, 1, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			unit := newUnit("a.py", "f", 1, tt.lines, "")
			for i := 0; i < tt.params; i++ {
				unit.Parameters = append(unit.Parameters, "p")
			}

			findings := ScanUnit(unit, thresholds)

			var kinds []domain.FindingKind
			for _, f := range findings {
				kinds = append(kinds, f.Kind)
				assert.Same(t, unit, f.PrimaryUnit())
			}
			assert.Equal(t, tt.wantKinds, kinds)
		})
	}
}

func TestScanUnit_SixParametersAtFive(t *testing.T) {
	unit := newUnit("a.py", "f", 1, 2, "")
	unit.Parameters = []string{"a", "b", "c", "d", "e", "f"}

	findings := ScanUnit(unit, domain.Thresholds{LongMethod: 30, ParamCount: 5})

	require.Len(t, findings, 1)
	assert.Equal(t, domain.FindingOverloadedParameters, findings[0].Kind)
	assert.Equal(t, 6, findings[0].Measured)
	assert.Equal(t, 5, findings[0].Threshold)
}

func TestNewMetricsScanner(t *testing.T) {
	_, err := NewMetricsScanner(domain.Thresholds{LongMethod: -1, ParamCount: 5})
	assert.ErrorIs(t, err, domain.ErrConfig)

	_, err = NewMetricsScanner(domain.Thresholds{LongMethod: 30, ParamCount: -1})
	assert.ErrorIs(t, err, domain.ErrConfig)

	scanner, err := NewMetricsScanner(domain.Thresholds{LongMethod: 0, ParamCount: 0})
	require.NoError(t, err)

	u := newUnit("a.py", "f", 1, 1, "")
	u.Parameters = []string{"x"}
	findings := scanner.Scan([]*domain.CodeUnit{u, newUnit("a.py", "g", 3, 3, "")})

	// zero thresholds fire on every non-empty measure
	assert.Len(t, findings, 3)
}
