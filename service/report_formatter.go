package service

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/ludo-technologies/pyrefactor/domain"
)

// ReportFormatterImpl renders run reports in every supported format
type ReportFormatterImpl struct {
	colored bool
}

// NewReportFormatter creates a formatter. colored enables ANSI colors in
// the text format.
func NewReportFormatter(colored bool) *ReportFormatterImpl {
	return &ReportFormatterImpl{colored: colored}
}

// Write implements domain.ReportFormatter
func (f *ReportFormatterImpl) Write(report *domain.RunReport, format domain.OutputFormat, writer io.Writer) error {
	switch format {
	case domain.OutputFormatText, "":
		return f.writeText(report, writer)
	case domain.OutputFormatJSON:
		return WriteJSON(writer, report)
	case domain.OutputFormatYAML:
		return WriteYAML(writer, report)
	case domain.OutputFormatCSV:
		return f.writeCSV(report, writer)
	default:
		return domain.NewUnsupportedFormatError(string(format))
	}
}

// Extension returns the file extension for a format
func Extension(format domain.OutputFormat) string {
	switch format {
	case domain.OutputFormatJSON:
		return "json"
	case domain.OutputFormatYAML:
		return "yaml"
	case domain.OutputFormatCSV:
		return "csv"
	default:
		return "txt"
	}
}

// findingRow is the flat form shared by the text and CSV outputs
func findingRow(fd *domain.Finding) (kind, name, locations, measured, limit string) {
	names := make([]string, 0, len(fd.Units))
	for _, u := range fd.Units {
		names = append(names, u.QualifiedName)
	}
	name = strings.Join(names, ", ")
	locations = strings.Join(fd.Locations(), ", ")

	switch fd.Kind {
	case domain.FindingSemanticDuplicateGroup:
		measured = strconv.Itoa(len(fd.Units)) + " units"
		limit = "confidence " + strconv.FormatFloat(fd.Confidence, 'f', 3, 64)
	default:
		measured = strconv.Itoa(fd.Measured)
		limit = strconv.Itoa(fd.Threshold)
	}
	return string(fd.Kind), name, locations, measured, limit
}

func (f *ReportFormatterImpl) writeText(report *domain.RunReport, w io.Writer) error {
	utils := NewFormatUtils(f.colored)
	var b strings.Builder

	b.WriteString(utils.FormatMainHeader("Refactoring Report"))

	b.WriteString(utils.FormatSectionHeader("Summary"))
	s := report.Summary
	b.WriteString(utils.FormatLabel("Files analyzed", s.FilesAnalyzed))
	b.WriteString(utils.FormatLabel("Units analyzed", s.UnitsAnalyzed))
	b.WriteString(utils.FormatLabel("Duplicate groups", s.DuplicateGroups))
	b.WriteString(utils.FormatLabel("Long methods", s.LongMethods))
	b.WriteString(utils.FormatLabel("Overloaded parameters", s.OverloadedParameters))
	b.WriteString("\n")
	if _, err := io.WriteString(w, b.String()); err != nil {
		return domain.NewOutputError("failed to write report", err)
	}

	if len(report.Findings) == 0 {
		if _, err := io.WriteString(w, utils.Success("No refactoring opportunities found.")+"\n\n"); err != nil {
			return domain.NewOutputError("failed to write report", err)
		}
	} else {
		if _, err := io.WriteString(w, utils.FormatSectionHeader("Findings")); err != nil {
			return domain.NewOutputError("failed to write report", err)
		}
		if err := f.findingsTable(report, w, utils); err != nil {
			return err
		}
	}

	return f.writeDiagnosticsText(&report.Diagnostics, w, utils)
}

func (f *ReportFormatterImpl) findingsTable(report *domain.RunReport, w io.Writer, utils *FormatUtils) error {
	table := tablewriter.NewTable(w,
		tablewriter.WithConfig(tablewriter.Config{
			Header: tw.CellConfig{
				Alignment:  tw.CellAlignment{Global: tw.AlignLeft},
				Formatting: tw.CellFormatting{AutoFormat: tw.On},
			},
			Row: tw.CellConfig{
				Alignment: tw.CellAlignment{Global: tw.AlignLeft},
			},
		}),
		tablewriter.WithRendition(tw.Rendition{
			Borders: tw.Border{Left: tw.Off, Right: tw.Off, Top: tw.Off, Bottom: tw.Off},
			Settings: tw.Settings{
				Separators: tw.Separators{BetweenColumns: tw.Off},
			},
		}),
	)

	table.Header([]string{"Kind", "Unit", "Location", "Measured", "Threshold"})
	for i := range report.Findings {
		fd := &report.Findings[i]
		_, name, locations, measured, limit := findingRow(fd)
		if err := table.Append([]string{utils.FormatKind(fd.Kind), name, locations, measured, limit}); err != nil {
			return domain.NewOutputError("failed to render findings table", err)
		}
	}
	if err := table.Render(); err != nil {
		return domain.NewOutputError("failed to render findings table", err)
	}
	_, err := fmt.Fprintln(w)
	return err
}

func (f *ReportFormatterImpl) writeDiagnosticsText(d *domain.Diagnostics, w io.Writer, utils *FormatUtils) error {
	var b strings.Builder
	b.WriteString(utils.FormatSectionHeader("Diagnostics"))
	b.WriteString(utils.FormatLabel("Compared pairs", d.ComparedPairs))
	b.WriteString(utils.FormatLabel("Identical pairs", d.IdenticalPairs))
	b.WriteString(utils.FormatLabel("Prefiltered pairs", d.PrefilteredPairs))
	b.WriteString(utils.FormatLabel("Oracle pairs", d.AttemptedPairs))
	b.WriteString(utils.FormatLabel("Scored pairs", d.ScoredPairs))
	if d.CachedPairs > 0 {
		b.WriteString(utils.FormatLabel("Cached pairs", d.CachedPairs))
	}
	b.WriteString(utils.FormatLabel("Unscored pairs", len(d.UnscoredPairs)))
	b.WriteString(utils.FormatLabel("Skipped files", len(d.SkippedFiles)))

	for _, sf := range d.SkippedFiles {
		line := fmt.Sprintf("  skipped %s (%s)", sf.Path, sf.Reason)
		if sf.Detail != "" {
			line += ": " + sf.Detail
		}
		b.WriteString(utils.Warning(line) + "\n")
	}
	for _, up := range d.UnscoredPairs {
		b.WriteString(utils.Warning(fmt.Sprintf("  unscored %s <-> %s (%s)", up.UnitA, up.UnitB, up.Reason)) + "\n")
	}
	for _, np := range d.NonReproduciblePairs {
		b.WriteString(utils.Warning(fmt.Sprintf("  non-reproducible %s <-> %s (%.3f vs %.3f)", np.UnitA, np.UnitB, np.First, np.Second)) + "\n")
	}
	for _, msg := range d.Warnings {
		b.WriteString(utils.Warning("WARNING: "+msg) + "\n")
	}

	if _, err := io.WriteString(w, b.String()); err != nil {
		return domain.NewOutputError("failed to write diagnostics", err)
	}
	return nil
}

// writeCSV writes one row per finding followed by one row per skipped
// file and unscored pair, so diagnostics survive the flat format.
func (f *ReportFormatterImpl) writeCSV(report *domain.RunReport, w io.Writer) error {
	cw := csv.NewWriter(w)

	rows := [][]string{{"record", "kind", "units", "locations", "measured", "threshold", "reason"}}
	for i := range report.Findings {
		kind, name, locations, measured, limit := findingRow(&report.Findings[i])
		rows = append(rows, []string{"finding", kind, name, locations, measured, limit, ""})
	}
	for _, sf := range report.Diagnostics.SkippedFiles {
		rows = append(rows, []string{"skipped_file", "", "", sf.Path, "", "", sf.Reason})
	}
	for _, up := range report.Diagnostics.UnscoredPairs {
		rows = append(rows, []string{"unscored_pair", "", up.UnitA + ", " + up.UnitB, "", "", "", up.Reason})
	}
	if report.Diagnostics.Degraded {
		rows = append(rows, []string{"degraded", "", "", "", "", "", "unscored fraction above limit"})
	}

	if err := cw.WriteAll(rows); err != nil {
		return domain.NewOutputError("failed to write CSV", err)
	}
	return nil
}

var _ domain.ReportFormatter = (*ReportFormatterImpl)(nil)
