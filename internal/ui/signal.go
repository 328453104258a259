package ui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Ashwin-Rajesh/UniversalRemote-ESP32/internal/protocol"
)

// RenderSignal draws a captured signal as rows of durations, marks and
// spaces alternating in colour, followed by its wire form so it can be
// pasted into send-raw.
func RenderSignal(sig protocol.CapturedSignal, width int) string {
	width = clampWidth(width)

	var b strings.Builder
	fmt.Fprintf(&b, "  %s %s   %s %d\n\n",
		ResultKeyStyle.Render("Protocol:"), ResultValueStyle.Render(sig.Protocol.String()),
		StepNoteStyle.Render("pulses"), sig.PulseCount())

	const cell = 7 // "65535 " plus a separator
	perRow := (width - 4) / cell
	if perRow < 1 {
		perRow = 1
	}

	for i, d := range sig.Pulses {
		if i%perRow == 0 {
			if i > 0 {
				b.WriteString("\n")
			}
			b.WriteString("  ")
		}
		text := fmt.Sprintf("%6s ", strconv.FormatUint(uint64(d), 10))
		if i%2 == 0 {
			b.WriteString(MarkStyle.Render(text))
		} else {
			b.WriteString(SpaceStyle.Render(text))
		}
	}
	b.WriteString("\n\n")
	b.WriteString(HeaderCommandStyle.Render(protocol.EncodeRaw(sig)))
	return b.String()
}
