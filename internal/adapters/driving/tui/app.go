package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/reqsync/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/reqsync/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/reqsync/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/reqsync/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/reqsync/internal/adapters/driving/tui/views/menu"
	"github.com/custodia-labs/reqsync/internal/adapters/driving/tui/views/recorddetail"
	"github.com/custodia-labs/reqsync/internal/adapters/driving/tui/views/records"
	"github.com/custodia-labs/reqsync/internal/adapters/driving/tui/views/run"
)

// App is the main TUI application following the Elm architecture.
// It implements tea.Model for use with Bubbletea.
type App struct {
	ports  *Ports
	ctx    context.Context
	styles *styles.Styles
	keymap *keymap.KeyMap

	menuView    *menu.View
	recordsView *records.View
	detailView  *recorddetail.View
	runView     *run.View
	statusBar   *status.Bar

	currentView messages.ViewType
	err         error

	width  int
	height int
	ready  bool
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates a new TUI application with the given ports.
func NewApp(ports *Ports) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}

	s := styles.DefaultStyles()
	km := keymap.DefaultKeyMap()

	return &App{
		ports:       ports,
		ctx:         context.Background(),
		styles:      s,
		keymap:      km,
		menuView:    menu.NewView(s),
		recordsView: records.NewView(s, ports.Records),
		detailView:  recorddetail.NewView(s),
		runView:     run.NewView(s, ports.Reconciler),
		statusBar:   status.NewBar(s, km),
		currentView: messages.ViewMenu,
	}, nil
}

// WithContext sets the context passed to service calls.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	a.recordsView.SetContext(ctx)
	a.runView.SetContext(ctx)
	return a
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	return tea.SetWindowTitle("reqsync")
}

// Update implements tea.Model.
//
//nolint:gocyclo // central message handler
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.SetDimensions(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
		return a, a.updateActive(msg)

	case messages.ViewChanged:
		return a, a.switchTo(msg.View)

	case messages.RecordsLoaded:
		a.recordsView, cmd = a.recordsView.Update(msg)
		a.statusBar.Clear()
		if msg.Err != nil {
			a.setError(msg.Err)
		} else {
			a.statusBar.SetCount(len(msg.Records))
		}
		return a, cmd

	case messages.RecordSelected:
		a.detailView.SetRecord(msg.Record, a.recordsView.Template())
		a.currentView = messages.ViewRecordDetail
		a.statusBar.SetBindings(a.keymap.DetailHelp())
		return a, nil

	case messages.LastRunLoaded:
		a.runView, cmd = a.runView.Update(msg)
		if msg.Err != nil {
			a.setError(msg.Err)
		}
		return a, cmd

	case messages.RunCompleted:
		a.runView, cmd = a.runView.Update(msg)
		a.statusBar.Clear()
		if msg.Err != nil {
			a.setError(msg.Err)
		} else if msg.Report != nil {
			headline, _ := a.styles.Outcome(msg.Report)
			a.statusBar.SetMessage("Last run: " + strings.ToLower(headline))
		}
		// Records may have changed.
		return a, tea.Batch(cmd, a.recordsView.Load())

	case messages.ErrorOccurred:
		a.setError(msg.Err)
		return a, nil

	case messages.Quit:
		return a, tea.Quit
	}

	return a, nil
}

func (a *App) updateActive(msg tea.KeyMsg) tea.Cmd {
	var cmd tea.Cmd
	switch a.currentView {
	case messages.ViewMenu:
		a.menuView, cmd = a.menuView.Update(msg)
	case messages.ViewRecords:
		a.recordsView, cmd = a.recordsView.Update(msg)
	case messages.ViewRecordDetail:
		a.detailView, cmd = a.detailView.Update(msg)
	case messages.ViewRun:
		wasRunning := a.runView.Running()
		a.runView, cmd = a.runView.Update(msg)
		if !wasRunning && a.runView.Running() {
			a.statusBar.SetState(status.StateRunning)
		}
	case messages.ViewHelp:
		if msg.Type == tea.KeyEsc || msg.String() == "q" {
			return a.switchTo(messages.ViewMenu)
		}
	}
	return cmd
}

// switchTo activates a view and returns its initial command.
func (a *App) switchTo(view messages.ViewType) tea.Cmd {
	prev := a.currentView
	a.currentView = view
	a.statusBar.SetBindings(nil)

	switch view {
	case messages.ViewRecords:
		a.statusBar.SetBindings(a.keymap.RecordsHelp())
		// Returning from a record keeps the list and cursor.
		if prev == messages.ViewRecordDetail {
			return nil
		}
		a.statusBar.SetState(status.StateLoading)
		return a.recordsView.Load()
	case messages.ViewRun:
		a.statusBar.SetBindings(a.keymap.RunHelp())
		return a.runView.Load()
	case messages.ViewMenu, messages.ViewRecordDetail, messages.ViewHelp:
	}
	return nil
}

func (a *App) setError(err error) {
	a.err = err
	a.statusBar.SetState(status.StateError)
	a.statusBar.SetMessage(err.Error())
}

// View implements tea.Model.
func (a *App) View() string {
	if !a.ready {
		return "Initialising..."
	}

	var body string
	switch a.currentView {
	case messages.ViewRecords:
		body = a.recordsView.View()
	case messages.ViewRecordDetail:
		body = a.detailView.View()
	case messages.ViewRun:
		body = a.runView.View()
	case messages.ViewHelp:
		body = a.viewHelp()
	default:
		body = a.menuView.View()
	}
	return body + "\n\n" + a.statusBar.View()
}

// viewHelp renders every keybinding group in columns.
func (a *App) viewHelp() string {
	h := help.New()
	h.Width = a.width
	return a.styles.Title.Render("Help") + "\n\n" +
		h.FullHelpView(a.keymap.FullHelp()) + "\n\n" +
		a.styles.Help.Render("[esc] back to menu")
}

// Run starts the TUI application and blocks until it exits.
func (a *App) Run() error {
	p := tea.NewProgram(a, tea.WithAltScreen(), tea.WithContext(a.ctx))
	_, err := p.Run()
	return err
}

// CurrentView returns the current view type.
func (a *App) CurrentView() messages.ViewType {
	return a.currentView
}

// Err returns the last error that occurred.
func (a *App) Err() error {
	return a.err
}

// Ready returns whether the app has received its dimensions.
func (a *App) Ready() bool {
	return a.ready
}

// SetDimensions sets the terminal dimensions on every view.
func (a *App) SetDimensions(width, height int) {
	a.width = width
	a.height = height
	a.ready = true
	// One line for the status bar plus spacing.
	viewHeight := max(height-2, 1)
	a.menuView.SetDimensions(width, viewHeight)
	a.recordsView.SetDimensions(width, viewHeight)
	a.detailView.SetDimensions(width, viewHeight)
	a.runView.SetDimensions(width, viewHeight)
	a.statusBar.SetWidth(width)
}
