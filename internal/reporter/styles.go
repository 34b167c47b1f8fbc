package reporter

import "github.com/charmbracelet/lipgloss"

// Color palette, one swatch per OutcomeStatus plus a muted tone. mutedStyle
// is built from it, but badge does not use it and link positions are
// printed unstyled.
var (
	successColor        = lipgloss.Color("82")  // Green
	warningColor         = lipgloss.Color("214") // Orange
	errorColor           = lipgloss.Color("196") // Red
	ignoredColor         = lipgloss.Color("241") // Gray
	notImplementedColor  = lipgloss.Color("245") // Dimmed
	mutedColor           = lipgloss.Color("245")
)

var (
	successStyle = lipgloss.NewStyle().Foreground(successColor)
	warningStyle = lipgloss.NewStyle().Foreground(warningColor)
	errorStyle   = lipgloss.NewStyle().Foreground(errorColor)
	ignoredStyle = lipgloss.NewStyle().Foreground(ignoredColor)
	dimStyle     = lipgloss.NewStyle().Foreground(notImplementedColor)
	mutedStyle   = lipgloss.NewStyle().Foreground(mutedColor)

	summarySuccessStyle = lipgloss.NewStyle().Bold(true).Foreground(successColor)
	summaryErrorStyle   = lipgloss.NewStyle().Bold(true).Foreground(errorColor)
)

// badge returns a short, colorized tag for a status, e.g. "[OK]" in green.
func badge(status string, plain bool) string {
	text := "[" + status + "]"
	if plain {
		return text
	}
	switch status {
	case "OK":
		return successStyle.Render(text)
	case "Warning":
		return warningStyle.Render(text)
	case "Failed":
		return errorStyle.Render(text)
	case "Ignored":
		return ignoredStyle.Render(text)
	default:
		return dimStyle.Render(text)
	}
}
