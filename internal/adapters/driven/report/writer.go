// Package report renders run reports as Markdown files.
package report

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/custodia-labs/reqsync/internal/core/domain"
	"github.com/custodia-labs/reqsync/internal/core/ports/driven"
)

// Ensure Writer implements the interface.
var _ driven.ReportWriter = (*Writer)(nil)

// EnvStepSummary is set by GitHub Actions to a file that collects job summaries.
const EnvStepSummary = "GITHUB_STEP_SUMMARY"

// Writer writes one Markdown file per run into a directory.
type Writer struct {
	dir         string
	stepSummary string
}

// New creates a report writer for dir. When stepSummary is non-empty a short
// summary is appended to that file as well.
func New(dir, stepSummary string) *Writer {
	return &Writer{dir: dir, stepSummary: stepSummary}
}

// NewFromEnv creates a writer that appends to $GITHUB_STEP_SUMMARY when set.
func NewFromEnv(dir string) *Writer {
	return New(dir, os.Getenv(EnvStepSummary))
}

// WriteReport renders report and returns the file written.
func (w *Writer) WriteReport(ctx context.Context, report *domain.RunReport) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := os.MkdirAll(w.dir, 0755); err != nil {
		return "", fmt.Errorf("create report directory: %w", err)
	}

	path := filepath.Join(w.dir, FileName(report))
	if err := os.WriteFile(path, []byte(Render(report)), 0644); err != nil { //nolint:gosec // G306: reports are meant to be shared
		return "", fmt.Errorf("write report: %w", err)
	}

	if w.stepSummary != "" {
		if err := appendFile(w.stepSummary, Summary(report)); err != nil {
			return path, fmt.Errorf("write step summary: %w", err)
		}
	}
	return path, nil
}

// FileName returns report_<timestamp>_<run id prefix>.md.
func FileName(report *domain.RunReport) string {
	id := report.RunID
	if len(id) > 8 {
		id = id[:8]
	}
	name := "report_" + report.StartedAt.Format("20060102_150405")
	if id != "" {
		name += "_" + id
	}
	return name + ".md"
}

// Status returns the overall verdict and a one-line explanation.
func Status(report *domain.RunReport) (string, string) {
	switch {
	case report.Failed || len(report.Errors) > 0:
		return "FAILED", "The run completed with errors."
	case len(report.Warnings) > 0:
		return "COMPLETED WITH WARNINGS", "The run completed successfully with some warnings."
	default:
		return "SUCCESS", "The run completed successfully."
	}
}

// Render returns the full Markdown report.
func Render(report *domain.RunReport) string {
	var b strings.Builder

	b.WriteString("# reqsync run report\n\n")
	fmt.Fprintf(&b, "**Run ID:** %s\n", report.RunID)
	fmt.Fprintf(&b, "**Run Date:** %s\n", report.StartedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "**Mode:** %s\n", report.Mode)
	fmt.Fprintf(&b, "**Duration:** %.2f seconds\n\n", report.Duration().Seconds())

	b.WriteString("## Summary\n\n")
	fmt.Fprintf(&b, "- **Requirements Processed:** %d\n", report.RequirementsProcessed)
	fmt.Fprintf(&b, "- **Records Created:** %d\n", report.Stats.Created)
	fmt.Fprintf(&b, "- **Records Updated:** %d\n", report.Stats.Updated)
	fmt.Fprintf(&b, "- **Records Unchanged:** %d\n", report.Stats.Unchanged)
	fmt.Fprintf(&b, "- **Total Records:** %d\n", report.Stats.Total)
	if report.DuplicatesDropped > 0 {
		fmt.Fprintf(&b, "- **Duplicates Dropped:** %d\n", report.DuplicatesDropped)
	}
	if report.Renumbered > 0 {
		fmt.Fprintf(&b, "- **Identities Renumbered:** %d\n", report.Renumbered)
	}
	b.WriteString("\n")

	writeChanges(&b, report)
	writeCoverage(&b, report)

	if len(report.Warnings) > 0 {
		b.WriteString("## Warnings\n\n")
		for _, w := range report.Warnings {
			fmt.Fprintf(&b, "> %s\n", w)
		}
		b.WriteString("\n")
	}
	if len(report.Errors) > 0 {
		b.WriteString("## Errors\n\n")
		for _, e := range report.Errors {
			fmt.Fprintf(&b, "> %s\n", e)
		}
		b.WriteString("\n")
	}

	status, msg := Status(report)
	fmt.Fprintf(&b, "## Status\n\n**%s**\n\n%s\n\n", status, msg)
	b.WriteString("---\n\n*Generated by reqsync*\n")
	return b.String()
}

func writeChanges(b *strings.Builder, report *domain.RunReport) {
	if report.Skipped {
		b.WriteString("## No Changes Detected\n\nThe requirements document is unchanged since the last run.\n\n")
		return
	}
	if len(report.Changes) == 0 {
		b.WriteString("## No Changes Detected\n\nNo changes were detected in the requirements document.\n\n")
		return
	}

	groups := map[domain.ChangeType][]domain.Change{}
	for _, c := range report.Changes {
		groups[c.Type] = append(groups[c.Type], c)
	}

	b.WriteString("## Requirement Changes Detected\n\n")
	fmt.Fprintf(b, "- **Added:** %d\n", len(groups[domain.ChangeAdded]))
	fmt.Fprintf(b, "- **Modified:** %d\n", len(groups[domain.ChangeModified]))
	fmt.Fprintf(b, "- **Removed:** %d\n\n", len(groups[domain.ChangeRemoved]))

	for _, g := range []struct {
		title string
		typ   domain.ChangeType
	}{
		{"Added Requirements", domain.ChangeAdded},
		{"Modified Requirements", domain.ChangeModified},
		{"Removed Requirements", domain.ChangeRemoved},
	} {
		if len(groups[g.typ]) == 0 {
			continue
		}
		fmt.Fprintf(b, "### %s\n\n", g.title)
		for _, c := range groups[g.typ] {
			fmt.Fprintf(b, "- **%s**: %s\n", c.RequirementID, c.DiffSummary)
		}
		b.WriteString("\n")
	}
}

func writeCoverage(b *strings.Builder, report *domain.RunReport) {
	c := report.Coverage
	if c == (domain.CoverageSummary{}) && len(report.Orphans) == 0 {
		return
	}
	b.WriteString("## Coverage\n\n")
	b.WriteString("| Status | Requirements |\n|---|---|\n")
	fmt.Fprintf(b, "| complete | %d |\n", c.Complete)
	fmt.Fprintf(b, "| partial | %d |\n", c.Partial)
	fmt.Fprintf(b, "| none | %d |\n", c.None)
	fmt.Fprintf(b, "| outdated | %d |\n", c.Outdated)
	fmt.Fprintf(b, "| unknown | %d |\n", c.Unknown)
	b.WriteString("\n")
	if len(report.Orphans) > 0 {
		fmt.Fprintf(b, "Records matching no requirement: %s\n\n", strings.Join(report.Orphans, ", "))
	}
}

// Summary returns the short form used for CI job summaries.
func Summary(report *domain.RunReport) string {
	var b strings.Builder
	status, _ := Status(report)

	b.WriteString("## reqsync run summary\n\n")
	fmt.Fprintf(&b, "Processed %d requirement(s)\n", report.RequirementsProcessed)
	fmt.Fprintf(&b, "Created %d new record(s)\n", report.Stats.Created)
	fmt.Fprintf(&b, "Updated %d record(s)\n", report.Stats.Updated)
	fmt.Fprintf(&b, "Total records: %d\n", report.Stats.Total)
	if len(report.Changes) > 0 {
		fmt.Fprintf(&b, "\nDetected %d requirement change(s)\n", len(report.Changes))
	}
	fmt.Fprintf(&b, "\nStatus: **%s**\n\n", status)
	return b.String()
}

func appendFile(path, text string) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644) //nolint:gosec // G302: CI summary file
	if err != nil {
		return err
	}
	if _, err := f.WriteString(text); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Age returns how long ago the report's run finished, rounded to seconds.
func Age(report *domain.RunReport, now time.Time) time.Duration {
	if report.FinishedAt.IsZero() {
		return 0
	}
	return now.Sub(report.FinishedAt).Round(time.Second)
}
