package service

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"gopkg.in/yaml.v3"

	"github.com/ludo-technologies/pyrefactor/domain"
)

// WriteJSON writes indented JSON for the given value to the writer.
func WriteJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return domain.NewOutputError("failed to encode JSON", err)
	}
	return nil
}

// WriteYAML writes YAML for the given value to the writer.
func WriteYAML(w io.Writer, v interface{}) error {
	enc := yaml.NewEncoder(w)
	defer enc.Close()
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return domain.NewOutputError("failed to encode YAML", err)
	}
	return nil
}

// Standard formatting constants
const (
	HeaderWidth = 40
	LabelWidth  = 22
)

// FormatUtils provides shared formatting utilities for the text report
type FormatUtils struct {
	colored bool
}

// NewFormatUtils creates a new format utilities instance
func NewFormatUtils(colored bool) *FormatUtils {
	return &FormatUtils{colored: colored}
}

// FormatMainHeader creates a standardized main header
func (f *FormatUtils) FormatMainHeader(title string) string {
	var builder strings.Builder
	builder.WriteString(f.paint(title, color.Bold, color.FgCyan) + "\n")
	builder.WriteString(strings.Repeat("=", HeaderWidth) + "\n\n")
	return builder.String()
}

// FormatSectionHeader creates a standardized section header
func (f *FormatUtils) FormatSectionHeader(title string) string {
	var builder strings.Builder
	builder.WriteString(f.paint(strings.ToUpper(title), color.Bold) + "\n")
	builder.WriteString(strings.Repeat("-", len(title)) + "\n")
	return builder.String()
}

// FormatLabel creates a consistently formatted label with right alignment
func (f *FormatUtils) FormatLabel(label string, value interface{}) string {
	padding := LabelWidth - len(label)
	if padding < 0 {
		padding = 0
	}
	return fmt.Sprintf("%s%s: %v\n", strings.Repeat(" ", padding), label, value)
}

// FormatKind colors a finding kind by its priority
func (f *FormatUtils) FormatKind(kind domain.FindingKind) string {
	switch kind {
	case domain.FindingSemanticDuplicateGroup:
		return f.paint(kind.String(), color.FgRed)
	case domain.FindingLongMethod:
		return f.paint(kind.String(), color.FgYellow)
	default:
		return f.paint(kind.String(), color.FgCyan)
	}
}

// Warning colors a warning line
func (f *FormatUtils) Warning(text string) string {
	return f.paint(text, color.FgYellow)
}

// Success colors a success line
func (f *FormatUtils) Success(text string) string {
	return f.paint(text, color.FgGreen)
}

func (f *FormatUtils) paint(text string, attrs ...color.Attribute) string {
	if !f.colored {
		return text
	}
	c := color.New(attrs...)
	c.EnableColor()
	return c.Sprint(text)
}
