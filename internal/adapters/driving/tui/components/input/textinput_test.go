package input

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
)

func TestFilterInput(t *testing.T) {
	f := NewFilterInput(nil)
	assert.False(t, f.Focused())

	f.Focus()
	assert.True(t, f.Focused())

	for _, r := range "REQ-1" {
		f.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	assert.Equal(t, "REQ-1", f.Value())
	assert.Contains(t, f.View(), "Filter:")

	f.Blur()
	assert.False(t, f.Focused())

	f.Reset()
	assert.Empty(t, f.Value())

	f.SetValue("login")
	assert.Equal(t, "login", f.Value())
}

func TestFilterInput_SetWidth(t *testing.T) {
	f := NewFilterInput(nil)

	f.SetWidth(10)
	assert.Equal(t, 20, f.textinput.Width)

	f.SetWidth(100)
	assert.Equal(t, 86, f.textinput.Width)
}
