package analyzer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ludo-technologies/pyrefactor/domain"
)

func TestAssembleFindings_Order(t *testing.T) {
	a := newUnit("a.py", "alpha", 40, 80, "")
	b := newUnit("a.py", "beta", 5, 50, "")
	c := newUnit("b.py", "gamma", 1, 60, "")
	c.Parameters = []string{"p1", "p2", "p3", "p4", "p5", "p6"}
	dupA := newUnit("z.py", "dup", 1, 3, "")
	dupB := newUnit("z.py", "dup2", 10, 12, "")

	metric := []domain.Finding{
		domain.NewOverloadedParametersFinding(c, 5),
		domain.NewLongMethodFinding(c, 30),
		domain.NewLongMethodFinding(a, 30),
		domain.NewLongMethodFinding(b, 30),
	}
	groups := []DuplicateGroup{{ID: 1, Members: []*domain.CodeUnit{dupA, dupB}, Confidence: 0.9}}

	findings := AssembleFindings(metric, groups)

	require.Len(t, findings, 5)
	assert.Equal(t, domain.FindingSemanticDuplicateGroup, findings[0].Kind)
	assert.Same(t, b, findings[1].PrimaryUnit())
	assert.Same(t, a, findings[2].PrimaryUnit())
	assert.Same(t, c, findings[3].PrimaryUnit())
	assert.Equal(t, domain.FindingOverloadedParameters, findings[4].Kind)
}

func TestAssembleFindings_NoFiltering(t *testing.T) {
	u := newUnit("a.py", "f", 1, 100, "")
	metric := []domain.Finding{domain.NewLongMethodFinding(u, 1), domain.NewLongMethodFinding(u, 1)}

	assert.Len(t, AssembleFindings(metric, nil), 2)
	assert.Empty(t, AssembleFindings(nil, nil))
}

func TestPipeline_Idempotent(t *testing.T) {
	units := distinctUnits(5)
	units[4].EndLine = 40
	oracle := newScriptedOracle()
	oracle.def = 0.1
	oracle.set(units[0], units[1], 0.9)
	oracle.set(units[1], units[3], 0.92)

	run := func() []domain.Finding {
		matrix, _ := NewMatrixBuilder(oracle, scoreAllConfig(), nil).Build(context.Background(), units)
		groups := NewConnectedGrouping(0.85).Group(units, matrix)
		scanner, err := NewMetricsScanner(domain.Thresholds{LongMethod: 30, ParamCount: 5})
		require.NoError(t, err)
		return AssembleFindings(scanner.Scan(units), groups)
	}

	first := run()
	second := run()

	assert.Equal(t, first, second)
	require.Len(t, first, 2)
	assert.Equal(t, []*domain.CodeUnit{units[0], units[1], units[3]}, first[0].Units)
	assert.Equal(t, 0.9, first[0].Confidence)
	assert.Same(t, units[4], first[1].PrimaryUnit())
}
