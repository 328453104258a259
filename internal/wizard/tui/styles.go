package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/Ashwin-Rajesh/UniversalRemote-ESP32/internal/urls"
	"github.com/Ashwin-Rajesh/UniversalRemote-ESP32/internal/version"
)

const AppName = "IR BRIDGE SETUP"

// GitHubURL is shown in the header bar
var GitHubURL = urls.Display(urls.Repository)

// Layout constants
const (
	MinTerminalWidth = 72
	MaxContentWidth  = 120
)

var (
	PrimaryColor   = lipgloss.Color("#7D56F4")
	SecondaryColor = lipgloss.Color("#43BF6D")
	WarningColor   = lipgloss.Color("#FFA500")
	ErrorColor     = lipgloss.Color("#FF5555")
	TextColor      = lipgloss.Color("#FFFFFF")
	SubtleColor    = lipgloss.Color("#626262")
	BorderColor    = PrimaryColor
	HighlightColor = SecondaryColor
)

var (
	TitleStyle = lipgloss.NewStyle().
			Foreground(TextColor).
			Bold(true).
			Padding(0, 1)

	SubtitleStyle = lipgloss.NewStyle().
			Foreground(SubtleColor).
			Padding(0, 1)

	LabelStyle = lipgloss.NewStyle().
			Foreground(SubtleColor).
			Width(12).
			PaddingLeft(2)

	ValueStyle = lipgloss.NewStyle().
			Foreground(TextColor)

	SelectedStyle = lipgloss.NewStyle().
			Foreground(HighlightColor).
			Bold(true)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(ErrorColor).
			Bold(true).
			PaddingLeft(2)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(SecondaryColor).
			Bold(true).
			PaddingLeft(2)

	SpinnerStyle = lipgloss.NewStyle().
			Foreground(PrimaryColor)

	InfoBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(SubtleColor).
			Padding(0, 1).
			MarginLeft(2)

	SuccessBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(SecondaryColor).
			Padding(1, 2).
			MarginLeft(2)

	ErrorBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ErrorColor).
			Padding(1, 2).
			MarginLeft(2)
)

func RenderTitle(text string) string    { return TitleStyle.Render(text) }
func RenderSubtitle(text string) string { return SubtitleStyle.Render(text) }
func RenderError(text string) string    { return ErrorStyle.Render("✗ " + text) }
func RenderSuccess(text string) string  { return SuccessStyle.Render("✓ " + text) }

// RenderField renders an aligned "label value" line
func RenderField(label, value string) string {
	return LabelStyle.Render(label+":") + " " + ValueStyle.Render(value)
}

// BuildHeaderContent returns the app name, version and project URL
func BuildHeaderContent() string {
	left := lipgloss.NewStyle().Foreground(TextColor).Bold(true).Render(AppName + " " + version.Version)
	right := lipgloss.NewStyle().Foreground(SubtleColor).Render(GitHubURL)
	return lipgloss.JoinHorizontal(lipgloss.Top, left, "  ", right)
}

// RenderApplicationContainer frames a screen with the shared header and a
// footer holding helpText. A zero height lets the content decide.
func RenderApplicationContainer(content, helpText string, width, height int) string {
	if width < MinTerminalWidth {
		width = MinTerminalWidth
	}

	section := lipgloss.NewStyle().
		BorderForeground(BorderColor).
		Width(width-4).
		Padding(0, 1)

	header := section.BorderStyle(lipgloss.Border{Bottom: "─"}).Render(BuildHeaderContent())
	footer := section.BorderStyle(lipgloss.Border{Top: "─"}).
		Render(lipgloss.NewStyle().Foreground(SubtleColor).Render(helpText))
	body := lipgloss.NewStyle().Width(width - 4).Render(content)

	frame := lipgloss.NewStyle().
		Border(lipgloss.NormalBorder()).
		BorderForeground(BorderColor).
		Width(width - 2).
		AlignVertical(lipgloss.Top)
	if height > 2 {
		frame = frame.Height(height - 2)
	}

	inner := lipgloss.JoinVertical(lipgloss.Left, header, body, footer)
	if height <= 0 {
		return frame.Render(inner)
	}
	return lipgloss.Place(width, height, lipgloss.Left, lipgloss.Top, frame.Render(inner))
}
