// Package records provides the records list view for the TUI.
package records

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/reqsync/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/reqsync/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/reqsync/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/reqsync/internal/core/domain"
	"github.com/custodia-labs/reqsync/internal/core/ports/driving"
)

// View lists records with an optional filter.
type View struct {
	styles  *styles.Styles
	service driving.RecordService
	ctx     context.Context

	filter   *input.FilterInput
	template domain.RecordTemplate
	records  []domain.Record
	visible  []int

	selected     int
	scrollOffset int
	width        int
	height       int
	loading      bool
	err          error
}

// NewView creates a records view.
func NewView(s *styles.Styles, service driving.RecordService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	return &View{
		styles:  s,
		service: service,
		ctx:     context.Background(),
		filter:  input.NewFilterInput(s),
		width:   80,
		height:  24,
	}
}

// SetContext sets the context used by load commands.
func (v *View) SetContext(ctx context.Context) {
	v.ctx = ctx
}

// Load returns a command that reads the record snapshot.
func (v *View) Load() tea.Cmd {
	v.loading = true
	service, ctx := v.service, v.ctx
	return func() tea.Msg {
		if service == nil {
			return messages.RecordsLoaded{Err: fmt.Errorf("record service not available")}
		}
		recs, err := service.List(ctx)
		return messages.RecordsLoaded{Records: recs, Template: service.Template(), Err: err}
	}
}

// Update handles messages for the records view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case messages.RecordsLoaded:
		v.loading = false
		v.err = msg.Err
		if msg.Err == nil {
			v.records = msg.Records
			v.template = msg.Template
		}
		v.applyFilter()
		return v, nil

	case messages.ErrorOccurred:
		v.err = msg.Err
		return v, nil

	case tea.KeyMsg:
		if v.filter.Focused() {
			return v.handleFilterKey(msg)
		}
		return v.handleKey(msg)
	}
	return v, nil
}

func (v *View) handleFilterKey(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		v.filter.Blur()
		return v, nil
	case tea.KeyEsc:
		v.filter.Reset()
		v.filter.Blur()
		v.applyFilter()
		return v, nil
	default:
		var cmd tea.Cmd
		v.filter, cmd = v.filter.Update(msg)
		v.applyFilter()
		return v, cmd
	}
}

func (v *View) handleKey(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if v.selected > 0 {
			v.selected--
			v.adjustScroll()
		}
	case "down", "j":
		if v.selected < len(v.visible)-1 {
			v.selected++
			v.adjustScroll()
		}
	case "enter":
		if rec := v.SelectedRecord(); rec != nil {
			selected := rec.Clone()
			return v, func() tea.Msg { return messages.RecordSelected{Record: selected} }
		}
	case "/":
		return v, v.filter.Focus()
	case "ctrl+r":
		return v, v.Load()
	case "esc":
		if v.filter.Value() != "" {
			v.filter.Reset()
			v.applyFilter()
			return v, nil
		}
		return v, func() tea.Msg { return messages.ViewChanged{View: messages.ViewMenu} }
	}
	return v, nil
}

// applyFilter recomputes the visible rows and clamps the cursor.
func (v *View) applyFilter() {
	query := strings.TrimSpace(v.filter.Value())
	v.visible = v.visible[:0]
	for i, r := range v.records {
		if query == "" || v.matches(r, query) {
			v.visible = append(v.visible, i)
		}
	}
	if v.selected >= len(v.visible) {
		v.selected = max(len(v.visible)-1, 0)
	}
	v.scrollOffset = min(v.scrollOffset, v.selected)
}

func (v *View) matches(r domain.Record, query string) bool {
	if v.template.TracesTo(r, query) {
		return true
	}
	q := strings.ToLower(query)
	return strings.Contains(strings.ToLower(r.Get(v.template.IdentityField)), q) ||
		strings.Contains(strings.ToLower(r.Get(v.template.TitleField)), q)
}

func (v *View) adjustScroll() {
	n := v.visibleItemCount()
	if v.selected < v.scrollOffset {
		v.scrollOffset = v.selected
	} else if v.selected >= v.scrollOffset+n {
		v.scrollOffset = v.selected - n + 1
	}
}

// visibleItemCount reserves lines for the title, filter and help.
func (v *View) visibleItemCount() int {
	return max(v.height-8, 1)
}

// View renders the records list.
func (v *View) View() string {
	var b strings.Builder

	b.WriteString(v.styles.Title.Render(fmt.Sprintf("Records (%d/%d)", len(v.visible), len(v.records))))
	b.WriteString("\n\n")

	if v.filter.Focused() || v.filter.Value() != "" {
		b.WriteString(v.filter.View())
		b.WriteString("\n\n")
	}

	switch {
	case v.loading:
		b.WriteString(v.styles.Muted.Render("Loading records..."))
	case v.err != nil:
		b.WriteString(v.styles.Error.Render("Error: " + v.err.Error()))
	case len(v.records) == 0:
		b.WriteString(v.styles.Muted.Render("No records yet. Run a reconciliation first."))
	case len(v.visible) == 0:
		b.WriteString(v.styles.Muted.Render("No records match the filter."))
	default:
		v.renderRows(&b)
	}

	b.WriteString("\n\n")
	b.WriteString(v.styles.Help.Render("[↑/↓] navigate  [enter] open  [/] filter  [ctrl+r] reload  [esc] back"))
	return b.String()
}

func (v *View) renderRows(b *strings.Builder) {
	n := v.visibleItemCount()
	titleWidth := max(v.width-32, 10)
	end := min(v.scrollOffset+n, len(v.visible))
	for i := v.scrollOffset; i < end; i++ {
		r := v.records[v.visible[i]]
		line := fmt.Sprintf("%-10s %-16s %s",
			r.Get(v.template.IdentityField),
			truncate(r.Get(v.template.TraceField), 16),
			truncate(r.Get(v.template.TitleField), titleWidth))
		if i == v.selected {
			b.WriteString(v.styles.Selected.Render("> " + line))
		} else {
			b.WriteString(v.styles.Normal.Render("  " + line))
		}
		b.WriteString("\n")
	}
	if len(v.visible) > n {
		b.WriteString(v.styles.Muted.Render(fmt.Sprintf("  [%d-%d of %d]", v.scrollOffset+1, end, len(v.visible))))
	}
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.filter.SetWidth(width)
}

// SelectedRecord returns the record under the cursor.
func (v *View) SelectedRecord() *domain.Record {
	if v.selected < 0 || v.selected >= len(v.visible) {
		return nil
	}
	return &v.records[v.visible[v.selected]]
}

// Visible returns the number of records passing the filter.
func (v *View) Visible() int {
	return len(v.visible)
}

// Filtering reports whether the filter input has focus.
func (v *View) Filtering() bool {
	return v.filter.Focused()
}

// SetFilter replaces the filter text.
func (v *View) SetFilter(query string) {
	v.filter.SetValue(query)
	v.applyFilter()
}

// Template returns the template of the loaded snapshot.
func (v *View) Template() domain.RecordTemplate {
	return v.template
}

// Err returns the last error.
func (v *View) Err() error {
	return v.err
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
