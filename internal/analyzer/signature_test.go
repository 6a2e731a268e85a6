package analyzer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ludo-technologies/pyrefactor/domain"
	"github.com/ludo-technologies/pyrefactor/internal/parser"
)

func TestSignature_WeightedJaccard(t *testing.T) {
	sig := func(tokens ...string) Signature {
		return NewSignature(&parser.Profile{Tokens: tokens})
	}

	tests := []struct {
		name string
		a, b Signature
		want float64
	}{
		{"identical", sig("a", "b", "b"), sig("a", "b", "b"), 1.0},
		{"disjoint", sig("a", "a"), sig("b"), 0.0},
		{"multiset overlap", sig("a", "b", "b"), sig("a", "b"), 2.0 / 3.0},
		{"both empty", sig(), sig(), 1.0},
		{"one empty", sig("a"), sig(), 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, tt.a.WeightedJaccard(tt.b), 1e-9)
			assert.InDelta(t, tt.want, tt.b.WeightedJaccard(tt.a), 1e-9)
		})
	}
}

func TestComputeSignatures(t *testing.T) {
	units := []*domain.CodeUnit{
		newUnit("a.py", "first", 1, 3, "def first(a):\n    total = a * 2\n    return total\n"),
		newUnit("b.py", "second", 1, 4, "def second(a, b=1):\n    # same body\n    total = a * 2\n    return total\n"),
		newUnit("c.py", "third", 1, 3, "def third(a):\n    for i in a:\n        print(i)\n"),
	}

	sigs := ComputeSignatures(context.Background(), units, 2)

	require.Len(t, sigs, 3)
	assert.True(t, sigs[0].IdenticalBody(sigs[1]))
	assert.False(t, sigs[0].IdenticalBody(sigs[2]))
	assert.False(t, sigs[0].Empty())
	assert.Less(t, sigs[0].WeightedJaccard(sigs[2]), sigs[0].WeightedJaccard(sigs[1]))
}
