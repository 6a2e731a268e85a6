package domain

import (
	"fmt"
	"strings"
)

// CodeUnit is one function or method extracted from a source file.
// Units are immutable once extracted.
type CodeUnit struct {
	FilePath      string   `json:"file_path" yaml:"file_path"`
	Name          string   `json:"name" yaml:"name"`
	QualifiedName string   `json:"qualified_name" yaml:"qualified_name"`
	StartLine     int      `json:"start_line" yaml:"start_line"`
	EndLine       int      `json:"end_line" yaml:"end_line"`
	StartCol      int      `json:"start_col" yaml:"start_col"`
	EndCol        int      `json:"end_col" yaml:"end_col"`
	Parameters    []string `json:"parameters" yaml:"parameters"`
	Decorators    []string `json:"decorators,omitempty" yaml:"decorators,omitempty"`
	Async         bool     `json:"async,omitempty" yaml:"async,omitempty"`
	Depth         int      `json:"depth" yaml:"depth"` // 0 for module-level and class-level definitions
	Body          string   `json:"-" yaml:"-"`
}

// LineCount returns the number of source lines spanned by the unit.
func (u *CodeUnit) LineCount() int {
	return u.EndLine - u.StartLine + 1
}

// ParameterCount returns the number of declared parameters.
func (u *CodeUnit) ParameterCount() int {
	return len(u.Parameters)
}

// Key returns the unit identity as a stable string.
func (u *CodeUnit) Key() string {
	return fmt.Sprintf("%s:%s:%d-%d", u.FilePath, u.Name, u.StartLine, u.EndLine)
}

// Location returns file:start-end.
func (u *CodeUnit) Location() string {
	return fmt.Sprintf("%s:%d-%d", u.FilePath, u.StartLine, u.EndLine)
}

// Contains reports whether other is nested inside u in the same file.
func (u *CodeUnit) Contains(other *CodeUnit) bool {
	if u.FilePath != other.FilePath {
		return false
	}
	if u.StartLine == other.StartLine && u.EndLine == other.EndLine && u.StartCol == other.StartCol {
		return false
	}
	startsAfter := other.StartLine > u.StartLine ||
		(other.StartLine == u.StartLine && other.StartCol >= u.StartCol)
	endsBefore := other.EndLine < u.EndLine ||
		(other.EndLine == u.EndLine && other.EndCol <= u.EndCol)
	return startsAfter && endsBefore
}

// String returns string representation of CodeUnit
func (u *CodeUnit) String() string {
	name := u.QualifiedName
	if name == "" {
		name = u.Name
	}
	return fmt.Sprintf("%s(%s) at %s", name, strings.Join(u.Parameters, ", "), u.Location())
}

// CompareUnits orders units by file path, start line, end line, then name.
func CompareUnits(a, b *CodeUnit) int {
	if c := strings.Compare(a.FilePath, b.FilePath); c != 0 {
		return c
	}
	if a.StartLine != b.StartLine {
		return a.StartLine - b.StartLine
	}
	if a.EndLine != b.EndLine {
		return a.EndLine - b.EndLine
	}
	if a.StartCol != b.StartCol {
		return a.StartCol - b.StartCol
	}
	return strings.Compare(a.QualifiedName, b.QualifiedName)
}
