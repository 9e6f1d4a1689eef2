// Package styles contains Lip Gloss style definitions.
package styles

import "github.com/charmbracelet/lipgloss"

// Color tokens shared across views.
var (
	TextPrimaryColor   lipgloss.TerminalColor = lipgloss.AdaptiveColor{Light: "#1A1A2E", Dark: "#EAEAEA"}
	TextSecondaryColor lipgloss.TerminalColor = lipgloss.AdaptiveColor{Light: "#4A4A68", Dark: "#B8B8C8"}
	TextMutedColor     lipgloss.TerminalColor = lipgloss.AdaptiveColor{Light: "#8A8AA0", Dark: "#6C6C80"}

	AccentColor    lipgloss.TerminalColor = lipgloss.Color("#7C5CFF")
	HighlightColor lipgloss.TerminalColor = lipgloss.Color("#54A0FF")

	StatusSuccessColor lipgloss.TerminalColor = lipgloss.Color("#73F59F")
	StatusWarningColor lipgloss.TerminalColor = lipgloss.Color("#F5D573")
	StatusErrorColor   lipgloss.TerminalColor = lipgloss.Color("#FF8787")

	BorderDefaultColor lipgloss.TerminalColor = lipgloss.AdaptiveColor{Light: "#C8C8D8", Dark: "#3A3A50"}
)

// Common styles built from the tokens.
var (
	TitleStyle = lipgloss.NewStyle().Bold(true).Foreground(AccentColor)
	HintStyle  = lipgloss.NewStyle().Foreground(TextMutedColor)
	ErrorStyle = lipgloss.NewStyle().Foreground(StatusErrorColor)
	ValidStyle = lipgloss.NewStyle().Foreground(StatusSuccessColor)
)
