package tui

import "github.com/charmbracelet/lipgloss"

var (
	// Colors
	Primary   = lipgloss.Color("205")
	Secondary = lipgloss.Color("86")
	Subtle    = lipgloss.Color("241")
	Warning   = lipgloss.Color("214")
	Error     = lipgloss.Color("196")

	// Header styles
	HeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")).
			Background(Primary).
			Padding(0, 2).
			Align(lipgloss.Center)

	// Section styles
	SectionStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Subtle).
			Padding(0, 1).
			MarginTop(1)

	LabelStyle = lipgloss.NewStyle().
			Foreground(Subtle)

	ValueStyle = lipgloss.NewStyle().
			Foreground(Secondary).
			Bold(true)

	// Pager controls
	ControlStyle = lipgloss.NewStyle().
			Foreground(Secondary).
			Bold(true).
			Padding(0, 1)

	DisabledControlStyle = lipgloss.NewStyle().
				Foreground(Subtle).
				Padding(0, 1)

	WarningStyle = lipgloss.NewStyle().
			Foreground(Warning)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(Error).
			Bold(true)

	// Dim style
	DimStyle = lipgloss.NewStyle().
			Foreground(Subtle).
			Italic(true)

	// Help style
	HelpStyle = lipgloss.NewStyle().
			Foreground(Subtle).
			MarginTop(1)

	// Loading style
	LoadingStyle = lipgloss.NewStyle().
			Foreground(Primary).
			Padding(1, 2)

	// Table styles
	TableHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("15")).
				Background(Subtle).
				Padding(0, 1)

	TableSelectedStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("229")).
				Background(lipgloss.Color("57"))
)

// RenderControl renders a pager button, dimmed when it cannot be used.
func RenderControl(label string, enabled bool) string {
	if enabled {
		return ControlStyle.Render(label)
	}
	return DisabledControlStyle.Render(label)
}
