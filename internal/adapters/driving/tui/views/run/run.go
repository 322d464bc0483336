// Package run provides the run view: the last report and a trigger for new runs.
package run

import (
	"context"
	"errors"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/reqsync/internal/adapters/driving/tui/components/summary"
	"github.com/custodia-labs/reqsync/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/reqsync/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/reqsync/internal/core/domain"
	"github.com/custodia-labs/reqsync/internal/core/ports/driving"
)

// View shows the most recent run and starts new ones.
type View struct {
	styles     *styles.Styles
	reconciler driving.Reconciler
	ctx        context.Context

	report  *domain.RunReport
	running bool
	err     error
	width   int
	height  int
}

// NewView creates a run view. A nil reconciler renders setup instructions.
func NewView(s *styles.Styles, reconciler driving.Reconciler) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	return &View{
		styles:     s,
		reconciler: reconciler,
		ctx:        context.Background(),
		width:      80,
		height:     24,
	}
}

// SetContext sets the context used by run commands.
func (v *View) SetContext(ctx context.Context) {
	v.ctx = ctx
}

// Load returns a command that reads the last stored report.
func (v *View) Load() tea.Cmd {
	if v.reconciler == nil {
		return nil
	}
	reconciler, ctx := v.reconciler, v.ctx
	return func() tea.Msg {
		report, err := reconciler.LastRun(ctx)
		if errors.Is(err, domain.ErrNotFound) {
			return messages.LastRunLoaded{}
		}
		return messages.LastRunLoaded{Report: report, Err: err}
	}
}

// Start returns a command that performs one reconciliation.
// Only one run is dispatched at a time.
func (v *View) Start(force bool) tea.Cmd {
	if v.reconciler == nil || v.running {
		return nil
	}
	v.running = true
	v.err = nil
	reconciler, ctx := v.reconciler, v.ctx
	return func() tea.Msg {
		report, err := reconciler.Run(ctx, driving.RunOptions{Force: force})
		return messages.RunCompleted{Report: report, Err: err}
	}
}

// Update handles messages for the run view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case messages.LastRunLoaded:
		if !v.running {
			v.report, v.err = msg.Report, msg.Err
		}
		return v, nil

	case messages.RunCompleted:
		v.running = false
		v.err = msg.Err
		if msg.Report != nil {
			v.report = msg.Report
		}
		return v, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "r":
			return v, v.Start(false)
		case "f":
			return v, v.Start(true)
		case "esc":
			return v, func() tea.Msg { return messages.ViewChanged{View: messages.ViewMenu} }
		}
	}
	return v, nil
}

// View renders the run view.
func (v *View) View() string {
	var b strings.Builder

	b.WriteString(v.styles.Title.Render("Reconciliation"))
	b.WriteString("\n\n")

	switch {
	case v.reconciler == nil:
		b.WriteString(v.styles.Warning.Render("No requirements source configured."))
		b.WriteString("\n")
		b.WriteString(v.styles.Muted.Render("Set one with: reqsync settings set source.path <file>"))
		b.WriteString("\n\n")
		b.WriteString(v.styles.Help.Render("[esc] back"))
		return b.String()
	case v.running:
		b.WriteString(v.styles.Warning.Render("Reconciling... this may take a while when the oracle is called."))
		b.WriteString("\n\n")
	case v.report == nil && v.err == nil:
		b.WriteString(v.styles.Muted.Render("No runs recorded yet."))
		b.WriteString("\n\n")
	}

	if v.report != nil {
		b.WriteString(v.styles.Muted.Render("Started " + v.report.StartedAt.Local().Format("2006-01-02 15:04:05")))
		b.WriteString("\n")
		b.WriteString(summary.Render(v.styles, v.report))
		b.WriteString("\n")
	}
	if v.err != nil && (v.report == nil || !v.report.Failed) {
		b.WriteString(v.styles.Error.Render("Error: " + v.err.Error()))
		b.WriteString("\n\n")
	}

	b.WriteString(v.styles.Help.Render("[r] run  [f] force run  [esc] back"))
	return b.String()
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
}

// Running reports whether a run is in flight.
func (v *View) Running() bool {
	return v.running
}

// Report returns the report on display.
func (v *View) Report() *domain.RunReport {
	return v.report
}

// Err returns the last error.
func (v *View) Err() error {
	return v.err
}
