package analyzer

import (
	"cmp"
	"slices"
	"strings"

	"github.com/ludo-technologies/pyrefactor/domain"
)

// AssembleFindings merges metric findings with duplicate groups and sorts
// them into the report order: kind priority, then file path and start line
// of the primary unit. End line, unit name and group size break the
// remaining ties. Nothing is filtered.
func AssembleFindings(metricFindings []domain.Finding, groups []DuplicateGroup) []domain.Finding {
	findings := make([]domain.Finding, 0, len(metricFindings)+len(groups))
	for _, g := range groups {
		findings = append(findings, g.Finding())
	}
	findings = append(findings, metricFindings...)

	slices.SortStableFunc(findings, CompareFindings)
	return findings
}

// CompareFindings is the total report order
func CompareFindings(a, b domain.Finding) int {
	if c := cmp.Compare(a.Kind.Priority(), b.Kind.Priority()); c != 0 {
		return c
	}

	ua, ub := a.PrimaryUnit(), b.PrimaryUnit()
	switch {
	case ua == nil && ub == nil:
		return 0
	case ua == nil:
		return 1
	case ub == nil:
		return -1
	}

	if c := strings.Compare(ua.FilePath, ub.FilePath); c != 0 {
		return c
	}
	if c := cmp.Compare(ua.StartLine, ub.StartLine); c != 0 {
		return c
	}
	if c := cmp.Compare(ua.EndLine, ub.EndLine); c != 0 {
		return c
	}
	if c := strings.Compare(ua.QualifiedName, ub.QualifiedName); c != 0 {
		return c
	}
	if c := cmp.Compare(len(a.Units), len(b.Units)); c != 0 {
		return c
	}
	return cmp.Compare(a.GroupID, b.GroupID)
}
