// ABOUTME: Defines lipgloss styles for the TUI panels, duck states, and event log lines.
// ABOUTME: Provides StyleForStatus to map DuckStatus values to their display styles.
package tui

import "github.com/charmbracelet/lipgloss"

var (
	// Panel borders
	BorderStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62"))

	// Title styling
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("170"))

	// Duck colors
	IdleStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("228"))
	ComparingStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true)
	HighlightedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true)
	SortedStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	MotherStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("220")).Bold(true)
	WaterStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("24"))

	// Log event colors
	LogTimestampStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	LogCompareStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("75"))
	LogSwapStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	LogCompleteStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	LogNoteStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Italic(true)

	// Status bar
	StatusBarStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("236")).
			Foreground(lipgloss.Color("252")).
			Padding(0, 1)
	PausedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true)
	DoneStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)

	// Stats panel labels
	LabelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Width(10)
	ValueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	// Key help
	HelpStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// StyleForStatus returns the lipgloss style for a DuckStatus.
func StyleForStatus(status DuckStatus) lipgloss.Style {
	switch status {
	case DuckIdle:
		return IdleStyle
	case DuckComparing:
		return ComparingStyle
	case DuckHighlighted:
		return HighlightedStyle
	case DuckSorted:
		return SortedStyle
	case DuckMother:
		return MotherStyle
	default:
		return IdleStyle
	}
}
