// Package summary renders run reports for the terminal.
package summary

import (
	"fmt"
	"strings"
	"time"

	"github.com/custodia-labs/reqsync/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/reqsync/internal/core/domain"
)

// Render formats a run report as labelled rows followed by the outcome headline.
func Render(st *styles.Styles, report *domain.RunReport) string {
	if st == nil {
		st = styles.DefaultStyles()
	}
	var b strings.Builder

	b.WriteString(st.Title.Render("Run "+ShortID(report.RunID)) + " " +
		st.Muted.Render(fmt.Sprintf("(%s, %s)", report.Mode, report.Duration().Round(time.Millisecond))) + "\n\n")

	row := func(label string, value any) {
		b.WriteString(st.Label.Render(label) + fmt.Sprint(value) + "\n")
	}
	row("Requirements processed", report.RequirementsProcessed)
	row("Records created", report.Stats.Created)
	row("Records updated", report.Stats.Updated)
	row("Records unchanged", report.Stats.Unchanged)
	row("Total records", report.Stats.Total)
	if len(report.Changes) > 0 {
		counts := map[domain.ChangeType]int{}
		for _, c := range report.Changes {
			counts[c.Type]++
		}
		row("Requirement changes", fmt.Sprintf("%d added, %d modified, %d removed",
			counts[domain.ChangeAdded], counts[domain.ChangeModified], counts[domain.ChangeRemoved]))
	}
	if c := report.Coverage; c != (domain.CoverageSummary{}) {
		row("Coverage", fmt.Sprintf("%d complete, %d partial, %d none, %d outdated, %d unknown",
			c.Complete, c.Partial, c.None, c.Outdated, c.Unknown))
	}
	if report.DuplicatesDropped > 0 {
		row("Duplicates dropped", report.DuplicatesDropped)
	}

	for _, w := range report.Warnings {
		b.WriteString(st.Warning.Render("warning: "+w) + "\n")
	}
	for _, e := range report.Errors {
		b.WriteString(st.Error.Render("error: "+e) + "\n")
	}

	headline, style := st.Outcome(report)
	b.WriteString("\n" + style.Render(headline) + "\n")
	return b.String()
}

// ShortID returns the first eight characters of a run id.
func ShortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
