package analyzer

import (
	"errors"
	"fmt"
	"slices"
)

// CellState tells how a matrix cell got its value
type CellState int

const (
	// CellScored holds an oracle score or the identical-body shortcut
	CellScored CellState = iota + 1
	// CellPrefiltered was rejected by the cheap signature pre-filter
	CellPrefiltered
	// CellUnscored means the oracle failed, timed out or was cancelled
	CellUnscored
)

func (s CellState) String() string {
	switch s {
	case CellScored:
		return "scored"
	case CellPrefiltered:
		return "prefiltered"
	case CellUnscored:
		return "unscored"
	default:
		return "not_compared"
	}
}

// Cell is one entry of the similarity matrix
type Cell struct {
	State     CellState
	Score     float64
	Reason    string // set for unscored cells
	Identical bool   // scored by the identical-body shortcut
}

// PairKey identifies an unordered pair of unit indices with I < J
type PairKey struct {
	I, J int
}

// NewPairKey orders the indices
func NewPairKey(i, j int) PairKey {
	if i > j {
		i, j = j, i
	}
	return PairKey{I: i, J: j}
}

func comparePairKeys(a, b PairKey) int {
	if a.I != b.I {
		return a.I - b.I
	}
	return a.J - b.J
}

// Edge is a scored pair at or above a threshold
type Edge struct {
	I, J  int
	Score float64
}

// ErrCellWritten is returned when a cell is written twice
var ErrCellWritten = errors.New("matrix cell already written")

// SimilarityMatrix is a sparse symmetric matrix over unit indices. Each
// unordered pair has at most one cell and a cell is written once. Absent
// cells were never compared.
type SimilarityMatrix struct {
	size  int
	cells map[PairKey]Cell
}

// NewSimilarityMatrix creates an empty matrix for size units
func NewSimilarityMatrix(size int) *SimilarityMatrix {
	return &SimilarityMatrix{
		size:  size,
		cells: make(map[PairKey]Cell),
	}
}

// Size returns the number of units the matrix covers
func (m *SimilarityMatrix) Size() int { return m.size }

// Len returns the number of written cells
func (m *SimilarityMatrix) Len() int { return len(m.cells) }

// Get returns the cell for the unordered pair (i, j)
func (m *SimilarityMatrix) Get(i, j int) (Cell, bool) {
	c, ok := m.cells[NewPairKey(i, j)]
	return c, ok
}

// Set writes the cell for the unordered pair (i, j)
func (m *SimilarityMatrix) Set(i, j int, cell Cell) error {
	if i == j {
		return fmt.Errorf("self pair %d is not a matrix cell", i)
	}
	if i < 0 || j < 0 || i >= m.size || j >= m.size {
		return fmt.Errorf("pair (%d, %d) out of range for %d units", i, j, m.size)
	}
	key := NewPairKey(i, j)
	if _, ok := m.cells[key]; ok {
		return fmt.Errorf("pair (%d, %d): %w", key.I, key.J, ErrCellWritten)
	}
	m.cells[key] = cell
	return nil
}

// Pairs returns every written pair in index order
func (m *SimilarityMatrix) Pairs() []PairKey {
	keys := make([]PairKey, 0, len(m.cells))
	for k := range m.cells {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, comparePairKeys)
	return keys
}

// Edges returns the scored pairs whose score is at least threshold
func (m *SimilarityMatrix) Edges(threshold float64) []Edge {
	var edges []Edge
	for _, k := range m.Pairs() {
		c := m.cells[k]
		if c.State == CellScored && c.Score >= threshold {
			edges = append(edges, Edge{I: k.I, J: k.J, Score: c.Score})
		}
	}
	return edges
}

// CountByState counts written cells per state
func (m *SimilarityMatrix) CountByState() map[CellState]int {
	counts := make(map[CellState]int, 3)
	for _, c := range m.cells {
		counts[c.State]++
	}
	return counts
}
