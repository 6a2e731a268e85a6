package analyzer

import "github.com/ludo-technologies/pyrefactor/domain"

// DuplicateGroup is a set of units judged semantically duplicate
type DuplicateGroup struct {
	ID         int
	Members    []*domain.CodeUnit
	Confidence float64
}

// Size returns the number of members
func (g DuplicateGroup) Size() int { return len(g.Members) }

// Finding converts the group to a report finding
func (g DuplicateGroup) Finding() domain.Finding {
	return domain.NewDuplicateGroupFinding(g.ID, g.Members, g.Confidence)
}

// GroupingStrategy defines a strategy for grouping units into duplicate
// groups. Implementations must work from the matrix and never call the
// similarity oracle themselves.
type GroupingStrategy interface {
	// Group partitions units into duplicate groups.
	Group(units []*domain.CodeUnit, matrix *SimilarityMatrix) []DuplicateGroup
	// GetName returns the strategy name.
	GetName() string
}

var _ GroupingStrategy = (*ConnectedGrouping)(nil)
