package theme

import (
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
)

// Theme centralizes Lip Gloss styles for the Bubble Tea UI.
type Theme struct {
	Tabs   TabTheme
	Table  table.Styles
	Footer FooterTheme
	Notice NoticeTheme
}

// TabTheme styles the row of open files.
type TabTheme struct {
	Active   lipgloss.Style
	Inactive lipgloss.Style
	Unsaved  lipgloss.Style
}

// FooterTheme groups styles used by the bottom status/input bar.
type FooterTheme struct {
	Help     lipgloss.Style
	Status   lipgloss.Style
	Prompt   lipgloss.Style
	Question lipgloss.Style
}

// NoticeTheme styles the dismissible notices above the footer.
type NoticeTheme struct {
	Warning lipgloss.Style
	Info    lipgloss.Style
	Hint    lipgloss.Style
}

// Default returns the built-in theme used across the UI.
func Default() Theme {
	tab := lipgloss.NewStyle().Padding(0, 1)

	tbl := table.DefaultStyles()
	tbl.Header = tbl.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderBottom(true).
		BorderForeground(lipgloss.Color("240"))
	tbl.Selected = tbl.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)

	return Theme{
		Tabs: TabTheme{
			Active:   tab.Bold(true).Foreground(lipgloss.Color("212")).Underline(true),
			Inactive: tab.Foreground(lipgloss.Color("245")),
			Unsaved:  lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		},
		Table: tbl,
		Footer: FooterTheme{
			Help:     lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
			Status:   lipgloss.NewStyle().Foreground(lipgloss.Color("244")),
			Prompt:   lipgloss.NewStyle().Foreground(lipgloss.Color("212")).Bold(true),
			Question: lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true),
		},
		Notice: NoticeTheme{
			Warning: lipgloss.NewStyle().Foreground(lipgloss.Color("203")),
			Info:    lipgloss.NewStyle().Foreground(lipgloss.Color("110")),
			Hint:    lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Italic(true),
		},
	}
}
