package output

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Styles holds the lipgloss styles shared by all commands.
type Styles struct {
	Header1 lipgloss.Style
	Header2 lipgloss.Style
	Bold    lipgloss.Style
	Muted   lipgloss.Style
	Info    lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style

	// StatusSuccess and StatusFailed carry their glyphs; render them
	// with String().
	StatusSuccess lipgloss.Style
	StatusFailed  lipgloss.Style
}

// newStyles builds the style set. Colors are dropped when output is not
// a terminal, when NO_COLOR is set, or when the terminal reports no
// color support.
func newStyles(isTTY bool) *Styles {
	colored := isTTY && !termenv.EnvNoColor() && termenv.ColorProfile() != termenv.Ascii
	if !colored {
		plain := lipgloss.NewStyle()
		return &Styles{
			Header1:       plain,
			Header2:       plain,
			Bold:          plain,
			Muted:         plain,
			Info:          plain,
			Success:       plain,
			Warning:       plain,
			Error:         plain,
			StatusSuccess: plain.SetString("✓"),
			StatusFailed:  plain.SetString("✗"),
		}
	}

	success := lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	failure := lipgloss.NewStyle().Foreground(lipgloss.Color("196"))

	return &Styles{
		Header1:       lipgloss.NewStyle().Bold(true).Underline(true),
		Header2:       lipgloss.NewStyle().Bold(true),
		Bold:          lipgloss.NewStyle().Bold(true),
		Muted:         lipgloss.NewStyle().Foreground(lipgloss.Color("243")),
		Info:          lipgloss.NewStyle().Foreground(lipgloss.Color("39")),
		Success:       success,
		Warning:       lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		Error:         failure,
		StatusSuccess: success.SetString("✓"),
		StatusFailed:  failure.SetString("✗"),
	}
}
