package analyzer

import (
	"slices"

	"github.com/ludo-technologies/pyrefactor/domain"
)

// ConnectedGrouping groups units transitively using Union-Find over the
// thresholded edge set
type ConnectedGrouping struct {
	threshold float64
}

func NewConnectedGrouping(threshold float64) *ConnectedGrouping {
	return &ConnectedGrouping{threshold: threshold}
}

func (c *ConnectedGrouping) GetName() string { return "Connected Components" }

// Group partitions the units connected by scored edges at or above the
// threshold. Components of one unit are dropped. Confidence is the weakest
// edge inside the component.
func (c *ConnectedGrouping) Group(units []*domain.CodeUnit, matrix *SimilarityMatrix) []DuplicateGroup {
	if len(units) < 2 || matrix == nil {
		return []DuplicateGroup{}
	}

	edges := matrix.Edges(c.threshold)
	if len(edges) == 0 {
		return []DuplicateGroup{}
	}

	parent := make(map[int]int, len(units))
	rank := make(map[int]int, len(units))

	var find func(int) int
	find = func(x int) int {
		if parent[x] != x {
			parent[x] = find(parent[x])
		}
		return parent[x]
	}
	union := func(a, b int) {
		ra := find(a)
		rb := find(b)
		if ra == rb {
			return
		}
		if rank[ra] < rank[rb] {
			parent[ra] = rb
		} else if rank[ra] > rank[rb] {
			parent[rb] = ra
		} else {
			parent[rb] = ra
			rank[ra]++
		}
	}
	for i := range units {
		parent[i] = i
		rank[i] = 0
	}

	for _, e := range edges {
		union(e.I, e.J)
	}

	// Weakest edge per component, computed after all unions so the
	// order edges were found in cannot matter
	weakest := make(map[int]float64)
	for _, e := range edges {
		r := find(e.I)
		if w, ok := weakest[r]; !ok || e.Score < w {
			weakest[r] = e.Score
		}
	}

	comp := make(map[int][]*domain.CodeUnit)
	for i, u := range units {
		r := find(i)
		comp[r] = append(comp[r], u)
	}

	groups := make([]DuplicateGroup, 0, len(weakest))
	for root, members := range comp {
		if len(members) < 2 {
			continue
		}
		slices.SortFunc(members, domain.CompareUnits)
		groups = append(groups, DuplicateGroup{
			Members:    members,
			Confidence: weakest[root],
		})
	}

	slices.SortFunc(groups, func(a, b DuplicateGroup) int {
		return domain.CompareUnits(a.Members[0], b.Members[0])
	})
	for i := range groups {
		groups[i].ID = i + 1
	}

	return groups
}
