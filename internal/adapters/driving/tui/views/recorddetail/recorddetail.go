// Package recorddetail provides the single record view for the TUI.
package recorddetail

import (
	"fmt"
	"sort"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/reqsync/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/reqsync/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/reqsync/internal/core/domain"
)

const timeLayout = "2006-01-02 15:04:05"

// View shows one record field by field.
type View struct {
	styles *styles.Styles

	record       *domain.Record
	template     domain.RecordTemplate
	scrollOffset int
	width        int
	height       int
}

// NewView creates a record detail view.
func NewView(s *styles.Styles) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	return &View{styles: s, width: 80, height: 24}
}

// SetRecord sets the record to display.
func (v *View) SetRecord(rec domain.Record, tmpl domain.RecordTemplate) {
	v.record = &rec
	v.template = tmpl
	v.scrollOffset = 0
}

// Update handles messages for the detail view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return v, nil
	}

	switch keyMsg.String() {
	case "up", "k":
		if v.scrollOffset > 0 {
			v.scrollOffset--
		}
	case "down", "j":
		if v.scrollOffset < v.maxScrollOffset() {
			v.scrollOffset++
		}
	case "esc":
		return v, func() tea.Msg { return messages.ViewChanged{View: messages.ViewRecords} }
	}
	return v, nil
}

func (v *View) visibleLines() int {
	return max(v.height-6, 1)
}

func (v *View) maxScrollOffset() int {
	return max(len(v.buildContent())-v.visibleLines(), 0)
}

// buildContent lists template fields in order, then fields the template does not know.
func (v *View) buildContent() []string {
	if v.record == nil {
		return nil
	}

	var lines []string
	add := func(name, value string) {
		label := v.styles.Label.Render(name + ":")
		parts := strings.Split(value, "\n")
		if len(parts) == 1 {
			lines = append(lines, label+v.styles.Normal.Render(value))
			return
		}
		lines = append(lines, v.styles.Subtitle.Render(name+":"))
		for _, p := range parts {
			lines = append(lines, "  "+v.styles.Normal.Render(p))
		}
	}

	for _, name := range v.template.FieldNames() {
		add(name, v.record.Get(name))
	}

	var extra []string
	for name := range v.record.Fields {
		if !v.template.Has(name) {
			extra = append(extra, name)
		}
	}
	sort.Strings(extra)
	for _, name := range extra {
		add(name, v.record.Get(name))
	}

	if !v.record.CreatedAt.IsZero() || !v.record.UpdatedAt.IsZero() {
		lines = append(lines, "")
	}
	if !v.record.CreatedAt.IsZero() {
		lines = append(lines, v.styles.Muted.Render("Created: "+v.record.CreatedAt.Local().Format(timeLayout)))
	}
	if !v.record.UpdatedAt.IsZero() {
		lines = append(lines, v.styles.Muted.Render("Updated: "+v.record.UpdatedAt.Local().Format(timeLayout)))
	}
	return lines
}

// View renders the record.
func (v *View) View() string {
	var b strings.Builder

	title := "Record"
	if v.record != nil {
		title = fmt.Sprintf("%s  %s", v.record.Get(v.template.IdentityField), v.record.Get(v.template.TitleField))
	}
	b.WriteString(v.styles.Title.Render(title))
	b.WriteString("\n")
	b.WriteString(strings.Repeat("─", max(min(v.width-4, 60), 1)))
	b.WriteString("\n\n")

	lines := v.buildContent()
	if len(lines) == 0 {
		b.WriteString(v.styles.Muted.Render("No record selected"))
	}
	n := v.visibleLines()
	for i := v.scrollOffset; i < len(lines) && i < v.scrollOffset+n; i++ {
		b.WriteString(lines[i])
		b.WriteString("\n")
	}
	if len(lines) > n {
		b.WriteString(v.styles.Muted.Render(fmt.Sprintf("  [Line %d-%d of %d]",
			v.scrollOffset+1, min(v.scrollOffset+n, len(lines)), len(lines))))
	}

	b.WriteString("\n\n")
	b.WriteString(v.styles.Help.Render("[↑/↓] scroll  [esc] back"))
	return b.String()
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
}

// Record returns the record on display.
func (v *View) Record() *domain.Record {
	return v.record
}

// ScrollOffset returns the first visible line.
func (v *View) ScrollOffset() int {
	return v.scrollOffset
}
