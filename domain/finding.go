package domain

import (
	"fmt"
	"strings"
)

// FindingKind identifies the refactoring signal a finding reports
type FindingKind string

const (
	FindingSemanticDuplicateGroup FindingKind = "semantic_duplicate_group"
	FindingLongMethod             FindingKind = "long_method"
	FindingOverloadedParameters   FindingKind = "overloaded_parameters"
)

// Priority returns the sort rank of the kind; lower sorts first.
func (k FindingKind) Priority() int {
	switch k {
	case FindingSemanticDuplicateGroup:
		return 0
	case FindingLongMethod:
		return 1
	case FindingOverloadedParameters:
		return 2
	default:
		return 3
	}
}

// String returns a human-readable label for the kind
func (k FindingKind) String() string {
	switch k {
	case FindingSemanticDuplicateGroup:
		return "Semantic Duplicate"
	case FindingLongMethod:
		return "Long Method"
	case FindingOverloadedParameters:
		return "Overloaded Parameters"
	default:
		return "Unknown"
	}
}

// Finding is one entry of the report. Metric findings (long method,
// overloaded parameters) reference exactly one unit and carry Measured and
// Threshold. Duplicate groups reference two or more units and carry
// Confidence, the minimum pairwise edge score observed in the group.
type Finding struct {
	Kind       FindingKind `json:"kind" yaml:"kind"`
	Units      []*CodeUnit `json:"units" yaml:"units"`
	Measured   int         `json:"measured,omitempty" yaml:"measured,omitempty"`
	Threshold  int         `json:"threshold,omitempty" yaml:"threshold,omitempty"`
	Confidence float64     `json:"confidence,omitempty" yaml:"confidence,omitempty"`
	GroupID    int         `json:"group_id,omitempty" yaml:"group_id,omitempty"`
}

// NewLongMethodFinding creates a long-method finding for unit
func NewLongMethodFinding(unit *CodeUnit, threshold int) Finding {
	return Finding{
		Kind:      FindingLongMethod,
		Units:     []*CodeUnit{unit},
		Measured:  unit.LineCount(),
		Threshold: threshold,
	}
}

// NewOverloadedParametersFinding creates a parameter-count finding for unit
func NewOverloadedParametersFinding(unit *CodeUnit, threshold int) Finding {
	return Finding{
		Kind:      FindingOverloadedParameters,
		Units:     []*CodeUnit{unit},
		Measured:  unit.ParameterCount(),
		Threshold: threshold,
	}
}

// NewDuplicateGroupFinding creates a duplicate-group finding. Members must
// already be in their final order.
func NewDuplicateGroupFinding(groupID int, members []*CodeUnit, confidence float64) Finding {
	return Finding{
		Kind:       FindingSemanticDuplicateGroup,
		Units:      members,
		Confidence: confidence,
		GroupID:    groupID,
	}
}

// PrimaryUnit returns the unit used to place the finding in the report.
func (f *Finding) PrimaryUnit() *CodeUnit {
	if len(f.Units) == 0 {
		return nil
	}
	return f.Units[0]
}

// Locations returns the location of every referenced unit.
func (f *Finding) Locations() []string {
	locs := make([]string, 0, len(f.Units))
	for _, u := range f.Units {
		locs = append(locs, u.Location())
	}
	return locs
}

// String returns string representation of Finding
func (f *Finding) String() string {
	switch f.Kind {
	case FindingSemanticDuplicateGroup:
		return fmt.Sprintf("%s group %d: %s (confidence: %.3f)",
			f.Kind.String(), f.GroupID, strings.Join(f.Locations(), ", "), f.Confidence)
	default:
		return fmt.Sprintf("%s: %s (measured: %d, threshold: %d)",
			f.Kind.String(), strings.Join(f.Locations(), ", "), f.Measured, f.Threshold)
	}
}
