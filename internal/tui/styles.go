package tui

import (
	"hash/fnv"

	"github.com/charmbracelet/lipgloss"
)

// Color palette
var (
	colorPrimary   = lipgloss.Color("#F08A24")
	colorSecondary = lipgloss.Color("#2EC4B6")
	colorAccent    = lipgloss.Color("#FF6B6B")
	colorMuted     = lipgloss.Color("#666666")
	colorSuccess   = lipgloss.Color("#2ECC71")
	colorWarning   = lipgloss.Color("#F39C12")
	colorError     = lipgloss.Color("#E74C3C")
	colorFg        = lipgloss.Color("#C0CAF5")
	colorSubtle    = lipgloss.Color("#414868")
	colorHighlight = lipgloss.Color("#7AA2F7")
)

// categoryColors colour spending categories in charts and legends.
var categoryColors = []lipgloss.Color{
	"#6C63FF", "#2EC4B6", "#FF6B6B", "#F39C12", "#2ECC71", "#E74C3C", "#9B59B6", "#3498DB",
}

func categoryColor(name string) lipgloss.Color {
	h := fnv.New32a()
	h.Write([]byte(name))
	return categoryColors[h.Sum32()%uint32(len(categoryColors))]
}

// Styles
var (
	// Tabs
	activeTabStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorPrimary).
			Border(lipgloss.NormalBorder(), false, false, true, false).
			BorderForeground(colorPrimary).
			Padding(0, 2)

	inactiveTabStyle = lipgloss.NewStyle().
				Foreground(colorMuted).
				Padding(0, 2)

	// Panels
	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorSubtle).
			Padding(0, 1)

	activePanelStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(colorPrimary).
				Padding(0, 1)

	// Timer
	timerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorHighlight).
			Align(lipgloss.Center)

	timerRunningStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(colorSuccess).
				Align(lipgloss.Center)

	// Text
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorPrimary)

	subtitleStyle = lipgloss.NewStyle().
			Foreground(colorMuted)

	accentStyle = lipgloss.NewStyle().
			Foreground(colorAccent)

	successStyle = lipgloss.NewStyle().
			Foreground(colorSuccess)

	warningStyle = lipgloss.NewStyle().
			Foreground(colorWarning)

	errorStyle = lipgloss.NewStyle().
			Foreground(colorError)

	mutedStyle = lipgloss.NewStyle().
			Foreground(colorMuted)

	highlightStyle = lipgloss.NewStyle().
			Foreground(colorHighlight)

	secondaryStyle = lipgloss.NewStyle().
			Foreground(colorSecondary)

	// Header/footer
	headerStyle = lipgloss.NewStyle().
			Padding(0, 1)

	footerStyle = lipgloss.NewStyle().
			Foreground(colorMuted).
			Padding(0, 1)

	// List items
	selectedItemStyle = lipgloss.NewStyle().
				Foreground(colorPrimary).
				Bold(true)

	normalItemStyle = lipgloss.NewStyle().
			Foreground(colorFg)

	doneItemStyle = lipgloss.NewStyle().
			Foreground(colorMuted).
			Strikethrough(true)
)

func levelStyle(l notifyLevel) lipgloss.Style {
	switch l {
	case levelSuccess:
		return successStyle
	case levelError:
		return errorStyle
	case levelLoading:
		return warningStyle
	}
	return highlightStyle
}

func levelIcon(l notifyLevel) string {
	switch l {
	case levelSuccess:
		return "✓"
	case levelError:
		return "✗"
	case levelLoading:
		return "…"
	}
	return "•"
}
