// Package styles contains Lip Gloss style definitions.
package styles

import "github.com/charmbracelet/lipgloss"

var (
	// Text hierarchy
	TextPrimaryColor     = lipgloss.AdaptiveColor{Light: "#D9DCCF", Dark: "#CCCCCC"} // Main/primary text
	TextSecondaryColor   = lipgloss.AdaptiveColor{Light: "#AAAAAA", Dark: "#BBBBBB"} // Headers, secondary info
	TextMutedColor       = lipgloss.AdaptiveColor{Light: "#D9DCCF", Dark: "#696969"} // Hints, help text, footers
	TextPlaceholderColor = lipgloss.AdaptiveColor{Light: "#666666", Dark: "#777777"} // Input placeholders

	// Status
	StatusSuccessColor = lipgloss.AdaptiveColor{Light: "#43BF6D", Dark: "#73F59F"} // Success states
	StatusWarningColor = lipgloss.AdaptiveColor{Light: "#FECA57", Dark: "#FECA57"} // Warnings
	StatusErrorColor   = lipgloss.AdaptiveColor{Light: "#FF6B6B", Dark: "#FF8787"} // Errors

	// Selection and focus
	AccentColor             = lipgloss.AdaptiveColor{Light: "#54A0FF", Dark: "#54A0FF"} // Selected cell, focus
	SelectionIndicatorColor = lipgloss.AdaptiveColor{Light: "#FFFFFF", Dark: "#FFFFFF"}
	SelectionIndicatorStyle = lipgloss.NewStyle().Bold(true).Foreground(SelectionIndicatorColor)

	// Overlay chrome
	OverlayTitleColor  = lipgloss.AdaptiveColor{Light: "#D9DCCF", Dark: "#C9C9C9"}
	OverlayBorderColor = lipgloss.AdaptiveColor{Light: "#D9DCCF", Dark: "#8C8C8C"}

	// Grid chrome
	HeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(TextSecondaryColor)
	CellStyle   = lipgloss.NewStyle().Foreground(TextPrimaryColor)

	// SelectedCellStyle marks the cursor cell.
	SelectedCellStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(SelectionIndicatorColor).
				Background(AccentColor)

	// Status bar
	StatusBarStyle = lipgloss.NewStyle().
			Foreground(TextSecondaryColor).
			Padding(0, 1)

	ModeTagStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(SelectionIndicatorColor).
			Background(AccentColor).
			Padding(0, 1)

	// Error display
	ErrorStyle = lipgloss.NewStyle().
			Foreground(StatusErrorColor).
			Bold(true)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(StatusSuccessColor)
)

// ApplyTheme applies custom theme colors from configuration.
// Empty strings are ignored, keeping the default values.
func ApplyTheme(highlight, muted, errorColor, success string) {
	if highlight != "" {
		AccentColor = lipgloss.AdaptiveColor{Light: highlight, Dark: highlight}
		SelectedCellStyle = SelectedCellStyle.Background(AccentColor)
		ModeTagStyle = ModeTagStyle.Background(AccentColor)
	}
	if muted != "" {
		TextMutedColor = lipgloss.AdaptiveColor{Light: muted, Dark: muted}
		OverlayBorderColor = lipgloss.AdaptiveColor{Light: muted, Dark: muted}
	}
	if errorColor != "" {
		StatusErrorColor = lipgloss.AdaptiveColor{Light: errorColor, Dark: errorColor}
		ErrorStyle = ErrorStyle.Foreground(StatusErrorColor)
	}
	if success != "" {
		StatusSuccessColor = lipgloss.AdaptiveColor{Light: success, Dark: success}
		SuccessStyle = SuccessStyle.Foreground(StatusSuccessColor)
	}
}
