// Package menu is the start screen of the record browser.
package menu

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/reqsync/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/reqsync/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/reqsync/internal/adapters/driving/tui/styles"
)

// Item is one menu entry. An item with Quit set ends the program.
type Item struct {
	Label string
	Hint  string
	View  messages.ViewType
	Quit  bool
}

// View lists the items; enter or the item's number opens it.
type View struct {
	styles   *styles.Styles
	keys     *keymap.KeyMap
	items    []Item
	selected int
	width    int
	height   int
}

// NewView creates the menu.
func NewView(s *styles.Styles) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	return &View{
		styles: s,
		keys:   keymap.DefaultKeyMap(),
		items: []Item{
			{Label: "Records", Hint: "browse generated test records", View: messages.ViewRecords},
			{Label: "Run", Hint: "last run and new reconciliations", View: messages.ViewRun},
			{Label: "Help", View: messages.ViewHelp},
			{Label: "Quit", Quit: true},
		},
		width:  80,
		height: 24,
	}
}

// Update moves the cursor or opens an item.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return v, nil
	}
	k := km.String()

	switch {
	case keymap.Matches(k, v.keys.Up):
		v.selected = max(0, v.selected-1)
	case keymap.Matches(k, v.keys.Down):
		v.selected = min(len(v.items)-1, v.selected+1)
	case keymap.Matches(k, v.keys.Select):
		return v, v.open(v.selected)
	case keymap.Matches(k, v.keys.Quit):
		return v, tea.Quit
	default:
		if n, err := strconv.Atoi(k); err == nil && n >= 1 && n <= len(v.items) {
			v.selected = n - 1
			return v, v.open(v.selected)
		}
	}
	return v, nil
}

func (v *View) open(i int) tea.Cmd {
	item := v.items[i]
	if item.Quit {
		return tea.Quit
	}
	return func() tea.Msg { return messages.ViewChanged{View: item.View} }
}

// View renders the menu.
func (v *View) View() string {
	var b strings.Builder
	b.WriteString(v.styles.Title.Render("reqsync") + "\n\n")
	b.WriteString(v.styles.Muted.Render("Requirements to test records") + "\n\n")

	for i, item := range v.items {
		line := fmt.Sprintf("%d. %s", i+1, item.Label)
		if i == v.selected {
			line = v.styles.Selected.Render("> " + line)
		} else {
			line = v.styles.Normal.Render("  " + line)
		}
		if item.Hint != "" {
			line += "  " + v.styles.Muted.Render(item.Hint)
		}
		b.WriteString(line + "\n")
	}

	b.WriteString("\n" + v.styles.Help.Render("[j/k] navigate  [enter or 1-4] open  [q] quit"))
	return b.String()
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width, v.height = width, height
}

// Selected returns the cursor position.
func (v *View) Selected() int {
	return v.selected
}

// Items returns the menu entries.
func (v *View) Items() []Item {
	return v.items
}
