package analyzer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ludo-technologies/pyrefactor/domain"
)

type scoredPair struct {
	i, j int
	cell Cell
}

func matrixOf(t *testing.T, size int, pairs ...scoredPair) *SimilarityMatrix {
	t.Helper()
	m := NewSimilarityMatrix(size)
	for _, p := range pairs {
		require.NoError(t, m.Set(p.i, p.j, p.cell))
	}
	return m
}

func scored(i, j int, score float64) scoredPair {
	return scoredPair{i: i, j: j, cell: Cell{State: CellScored, Score: score}}
}

func TestConnectedGrouping_TransitiveGroup(t *testing.T) {
	units := distinctUnits(3)
	matrix := matrixOf(t, 3, scored(0, 1, 0.9), scored(1, 2, 0.9), scored(0, 2, 0.3))

	groups := NewConnectedGrouping(0.85).Group(units, matrix)

	require.Len(t, groups, 1)
	assert.Equal(t, 1, groups[0].ID)
	assert.Equal(t, []*domain.CodeUnit{units[0], units[1], units[2]}, groups[0].Members)
	assert.Equal(t, 0.9, groups[0].Confidence)
}

func TestConnectedGrouping_ConfidenceIsWeakestEdge(t *testing.T) {
	units := distinctUnits(3)
	matrix := matrixOf(t, 3, scored(0, 1, 0.99), scored(1, 2, 0.87), scored(0, 2, 0.95))

	groups := NewConnectedGrouping(0.85).Group(units, matrix)

	require.Len(t, groups, 1)
	assert.Equal(t, 0.87, groups[0].Confidence)
}

func TestConnectedGrouping_ThresholdIsInclusive(t *testing.T) {
	units := distinctUnits(4)
	matrix := matrixOf(t, 4, scored(0, 1, 0.85), scored(2, 3, 0.8499))

	groups := NewConnectedGrouping(0.85).Group(units, matrix)

	require.Len(t, groups, 1)
	assert.Equal(t, []*domain.CodeUnit{units[0], units[1]}, groups[0].Members)
}

func TestConnectedGrouping_IgnoresNonScoredCells(t *testing.T) {
	units := distinctUnits(3)
	matrix := matrixOf(t, 3,
		scoredPair{0, 1, Cell{State: CellUnscored, Reason: domain.ReasonOracleTimeout}},
		scoredPair{1, 2, Cell{State: CellPrefiltered, Score: 0}},
	)

	assert.Empty(t, NewConnectedGrouping(0.0).Group(units, matrix))
}

func TestConnectedGrouping_EdgeOrderDoesNotMatter(t *testing.T) {
	units := distinctUnits(6)
	pairs := []scoredPair{
		scored(0, 3, 0.9), scored(3, 5, 0.95), scored(1, 2, 0.88), scored(4, 2, 0.86), scored(0, 1, 0.2),
	}
	reversed := make([]scoredPair, len(pairs))
	for i, p := range pairs {
		reversed[len(pairs)-1-i] = scoredPair{i: p.j, j: p.i, cell: p.cell}
	}

	g1 := NewConnectedGrouping(0.85).Group(units, matrixOf(t, 6, pairs...))
	g2 := NewConnectedGrouping(0.85).Group(units, matrixOf(t, 6, reversed...))

	assert.Equal(t, g1, g2)
	require.Len(t, g1, 2)
	assert.Equal(t, []*domain.CodeUnit{units[0], units[3], units[5]}, g1[0].Members)
	assert.Equal(t, []*domain.CodeUnit{units[1], units[2], units[4]}, g1[1].Members)
	assert.Equal(t, 2, g1[1].ID)
}

func TestConnectedGrouping_Partition(t *testing.T) {
	units := distinctUnits(7)
	matrix := matrixOf(t, 7,
		scored(0, 1, 0.9), scored(1, 2, 0.91), scored(3, 4, 0.97), scored(5, 6, 0.1), scored(2, 3, 0.5),
	)

	groups := NewConnectedGrouping(0.85).Group(units, matrix)

	seen := make(map[*domain.CodeUnit]int)
	for _, g := range groups {
		assert.GreaterOrEqual(t, g.Size(), 2)
		for _, m := range g.Members {
			seen[m]++
		}
	}
	for u, n := range seen {
		assert.Equal(t, 1, n, "unit %s appears in more than one group", u.Key())
	}
	assert.Len(t, groups, 2)
}

func TestConnectedGrouping_Empty(t *testing.T) {
	assert.Empty(t, NewConnectedGrouping(0.85).Group(nil, nil))
	assert.Empty(t, NewConnectedGrouping(0.85).Group(distinctUnits(2), NewSimilarityMatrix(2)))
	assert.Equal(t, "Connected Components", NewConnectedGrouping(0.85).GetName())
}
