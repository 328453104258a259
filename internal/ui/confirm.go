package ui

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Confirm shows a warning box on out and waits for the user to type phrase
// on in. It returns true only on an exact match.
func Confirm(in io.Reader, out io.Writer, title string, warnings []string, phrase string) bool {
	width := GetTerminalWidth()

	lines := []string{
		"",
		WarningTitleStyle.Render(fmt.Sprintf("   %s  WARNING  ─  %s", WarningMarker, title)),
		"",
	}
	for _, w := range warnings {
		lines = append(lines, lipgloss.NewStyle().Foreground(TextColor).Render("   • "+w))
	}
	lines = append(lines, "")

	box := lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(WarningColor).
		Width(width-2).
		Padding(0, 2).
		Render(strings.Join(lines, "\n"))

	fmt.Fprintln(out, box)
	fmt.Fprintln(out)
	fmt.Fprint(out, WarningTitleStyle.Render(fmt.Sprintf("To proceed, type %q and press Enter: ", phrase)))

	input, err := bufio.NewReader(in).ReadString('\n')
	fmt.Fprintln(out)
	if err != nil && input == "" {
		return false
	}
	if strings.TrimSpace(input) == phrase {
		return true
	}

	fmt.Fprintln(out, StepPendingStyle.Render("  Operation cancelled."))
	return false
}

// ConfirmFactoryReset asks before wiping the stored WiFi credentials.
func ConfirmFactoryReset(in io.Reader, out io.Writer, store string) bool {
	return Confirm(in, out, "FACTORY RESET", []string{
		"Stored WiFi credentials and hostname will be erased from " + store,
		"The bridge comes back up as the configuration access point",
		"Remotes that address it by hostname stop working until it is set up again",
	}, "RESET")
}
