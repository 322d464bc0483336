// Package status renders the one-line bar under every view.
package status

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/reqsync/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/reqsync/internal/adapters/driving/tui/styles"
)

// State is what the app is busy with.
type State string

const (
	StateReady   State = "ready"
	StateLoading State = "loading"
	StateRunning State = "running"
	StateError   State = "error"
)

// Bar shows the state on the left and key hints on the right.
type Bar struct {
	styles   *styles.Styles
	keymap   *keymap.KeyMap
	help     help.Model
	state    State
	message  string
	count    int
	bindings []key.Binding
	width    int
}

// NewBar creates a status bar. Nil arguments use the defaults.
func NewBar(s *styles.Styles, km *keymap.KeyMap) *Bar {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	h := help.New()
	h.ShortSeparator = " | "
	h.Styles.ShortKey = s.Muted
	h.Styles.ShortDesc = s.Muted
	h.Styles.ShortSeparator = s.Muted

	return &Bar{styles: s, keymap: km, help: h, state: StateReady, width: 80}
}

// View renders the bar at its full width.
func (b *Bar) View() string {
	left := b.status()
	right := b.hints()

	// the StatusBar style pads one column on each side
	gap := max(1, b.width-2-lipgloss.Width(left)-lipgloss.Width(right))
	return b.styles.StatusBar.Width(b.width).Render(left + strings.Repeat(" ", gap) + right)
}

func (b *Bar) status() string {
	switch b.state {
	case StateLoading:
		return b.styles.Muted.Render("Loading...")
	case StateRunning:
		return b.styles.Warning.Render("Reconciling...")
	case StateError:
		if b.message == "" {
			return b.styles.Error.Render("Error")
		}
		return b.styles.Error.Render("Error: " + b.message)
	}

	switch {
	case b.message != "":
		return b.styles.Normal.Render(b.message)
	case b.count > 0:
		return b.styles.Normal.Render(fmt.Sprintf("%d records", b.count))
	default:
		return b.styles.Muted.Render("Ready")
	}
}

func (b *Bar) hints() string {
	if b.bindings == nil {
		return b.help.ShortHelpView(b.keymap.ShortHelp())
	}
	return b.help.ShortHelpView(b.bindings)
}

func (b *Bar) SetState(state State) { b.state = state }
func (b *Bar) State() State { return b.state }
func (b *Bar) SetMessage(msg string) { b.message = msg }
func (b *Bar) Message() string { return b.message }

// SetCount sets the record count shown while idle.
func (b *Bar) SetCount(n int) { b.count = n }

// SetBindings replaces the key hints. Nil restores the short help.
func (b *Bar) SetBindings(bindings []key.Binding) { b.bindings = bindings }

func (b *Bar) SetWidth(width int) { b.width = width }

// Clear returns to the idle state, keeping the record count.
func (b *Bar) Clear() {
	b.state = StateReady
	b.message = ""
}
