package tui

import "github.com/charmbracelet/lipgloss"

// ---------------------------------------------------------------------------
// Catppuccin Mocha palette (subset)
// https://catppuccin.com/palette
// ---------------------------------------------------------------------------

const (
	colorPink     lipgloss.Color = "#f5c2e7"
	colorRed      lipgloss.Color = "#f38ba8"
	colorYellow   lipgloss.Color = "#f9e2af"
	colorGreen    lipgloss.Color = "#a6e3a1"
	colorTeal     lipgloss.Color = "#94e2d5"
	colorBlue     lipgloss.Color = "#89b4fa"
	colorLavender lipgloss.Color = "#b4befe"

	colorText     lipgloss.Color = "#cdd6f4"
	colorSubtext0 lipgloss.Color = "#a6adc8"
	colorOverlay1 lipgloss.Color = "#7f849c"
	colorSurface1 lipgloss.Color = "#45475a"
	colorSurface0 lipgloss.Color = "#313244"
	colorBase     lipgloss.Color = "#1e1e2e"
)

const (
	colorAccent  = colorPink
	colorFocus   = colorLavender
	colorSuccess = colorGreen
	colorError   = colorRed
	colorWarning = colorYellow
	colorInfo    = colorTeal
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)

	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorSurface1).
			Foreground(colorSubtext0).
			Padding(0, 2)
	activeCardStyle = cardStyle.
			BorderForeground(colorAccent).
			Foreground(colorText).
			Bold(true)

	paneStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorSurface1).
			Padding(0, 1)
	focusedPaneStyle = paneStyle.BorderForeground(colorFocus)

	labelStyle    = lipgloss.NewStyle().Foreground(colorSubtext0)
	selectedStyle = lipgloss.NewStyle().Foreground(colorSuccess).Bold(true)
	cursorStyle   = lipgloss.NewStyle().Foreground(colorFocus).Bold(true)
	dimStyle      = lipgloss.NewStyle().Foreground(colorOverlay1)
	sizeStyle     = lipgloss.NewStyle().Foreground(colorBlue)
	headerStyle   = lipgloss.NewStyle().Foreground(colorText).Background(colorSurface0).Padding(0, 1)

	statusStyle = lipgloss.NewStyle().Foreground(colorInfo)
	errorStyle  = lipgloss.NewStyle().Foreground(colorError)
	buttonStyle = lipgloss.NewStyle().Foreground(colorBase).Background(colorAccent).Padding(0, 1)

	noticeStyle = lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			BorderForeground(colorWarning).
			Foreground(colorText).
			Padding(0, 2)
)
