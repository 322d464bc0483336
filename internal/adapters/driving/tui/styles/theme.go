// Package styles provides the colour theme shared by the TUI and the CLI run summary.
package styles

import (
	"io"

	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/reqsync/internal/core/domain"
)

// Theme defines the colour palette.
type Theme struct {
	Primary    lipgloss.Color
	Secondary  lipgloss.Color
	Foreground lipgloss.Color
	Muted      lipgloss.Color
	Success    lipgloss.Color
	Warning    lipgloss.Color
	Error      lipgloss.Color
	Border     lipgloss.Color
	StatusBar  lipgloss.Color
}

// DefaultTheme returns the default colour theme.
func DefaultTheme() *Theme {
	return &Theme{
		Primary:    lipgloss.Color("#7C3AED"), // Purple
		Secondary:  lipgloss.Color("#06B6D4"), // Cyan
		Foreground: lipgloss.Color("#CDD6F4"),
		Muted:      lipgloss.Color("#6C7086"),
		Success:    lipgloss.Color("#A6E3A1"),
		Warning:    lipgloss.Color("#F9E2AF"),
		Error:      lipgloss.Color("#F38BA8"),
		Border:     lipgloss.Color("#45475A"),
		StatusBar:  lipgloss.Color("#181825"),
	}
}

// Styles contains pre-configured lipgloss styles.
type Styles struct {
	theme *Theme

	Title    lipgloss.Style
	Subtitle lipgloss.Style
	Normal   lipgloss.Style
	Muted    lipgloss.Style
	Selected lipgloss.Style
	Error    lipgloss.Style
	Success  lipgloss.Style
	Warning  lipgloss.Style

	// Label pads field names in key/value listings.
	Label lipgloss.Style

	InputField lipgloss.Style
	StatusBar  lipgloss.Style
	Help       lipgloss.Style
}

// NewStyles creates styles from a theme using the default renderer.
func NewStyles(theme *Theme) *Styles {
	return newStyles(lipgloss.DefaultRenderer(), theme)
}

// NewStylesFor creates styles whose colour profile follows w.
// Output to a pipe or file is rendered without colour.
func NewStylesFor(w io.Writer, theme *Theme) *Styles {
	return newStyles(lipgloss.NewRenderer(w), theme)
}

func newStyles(r *lipgloss.Renderer, theme *Theme) *Styles {
	if theme == nil {
		theme = DefaultTheme()
	}

	return &Styles{
		theme: theme,

		Title:    r.NewStyle().Bold(true).Foreground(theme.Primary),
		Subtitle: r.NewStyle().Bold(true).Foreground(theme.Secondary),
		Normal:   r.NewStyle().Foreground(theme.Foreground),
		Muted:    r.NewStyle().Foreground(theme.Muted),
		Selected: r.NewStyle().
			Bold(true).
			Foreground(theme.Foreground).
			Background(theme.Primary),
		Error:   r.NewStyle().Foreground(theme.Error),
		Success: r.NewStyle().Foreground(theme.Success),
		Warning: r.NewStyle().Foreground(theme.Warning),
		Label:   r.NewStyle().Width(24),

		InputField: r.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(theme.Border).
			Padding(0, 1),
		StatusBar: r.NewStyle().
			Foreground(theme.Muted).
			Background(theme.StatusBar).
			Padding(0, 1),
		Help: r.NewStyle().Foreground(theme.Muted),
	}
}

// DefaultStyles returns styles with the default theme.
func DefaultStyles() *Styles {
	return NewStyles(DefaultTheme())
}

// Theme returns the theme used by these styles.
func (s *Styles) Theme() *Theme {
	return s.theme
}

// Outcome returns the headline and style summarising a run report.
func (s *Styles) Outcome(report *domain.RunReport) (string, lipgloss.Style) {
	switch {
	case report == nil:
		return "NO RUNS", s.Muted
	case report.Failed:
		return "FAILED", s.Error
	case report.Skipped:
		return "SKIPPED: document unchanged since the last run", s.Muted
	case len(report.Warnings) > 0:
		return "COMPLETED WITH WARNINGS", s.Warning
	default:
		return "SUCCESS", s.Success
	}
}

// Coverage returns the style for a coverage status.
func (s *Styles) Coverage(status domain.CoverageStatus) lipgloss.Style {
	switch status {
	case domain.CoverageComplete:
		return s.Success
	case domain.CoveragePartial, domain.CoverageOutdated:
		return s.Warning
	case domain.CoverageNone:
		return s.Error
	default:
		return s.Muted
	}
}
