package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Palette.
var (
	colorTeal  = lipgloss.Color("36")
	colorGreen = lipgloss.Color("35")
	colorAmber = lipgloss.Color("220")
	colorRed   = lipgloss.Color("167")
	colorBlue  = lipgloss.Color("75")
	colorWhite = lipgloss.Color("255")
	colorGray  = lipgloss.Color("245")
	colorDim   = lipgloss.Color("240")
)

var (
	// StyleHighlight marks input names and other emphasized values.
	StyleHighlight = lipgloss.NewStyle().Foreground(colorTeal)
	// StyleLink marks addresses.
	StyleLink = lipgloss.NewStyle().Foreground(colorBlue).Underline(true)
	// StyleDim is used for secondary text.
	StyleDim = lipgloss.NewStyle().Foreground(colorDim)

	styleValue    = lipgloss.NewStyle().Foreground(colorWhite)
	styleKey      = lipgloss.NewStyle().Foreground(colorGray).Width(12)
	styleSpinner  = lipgloss.NewStyle().Foreground(colorTeal)
	styleCommand  = lipgloss.NewStyle().Foreground(colorBlue)
	styleCached   = lipgloss.NewStyle().Foreground(colorGreen)
	styleComputed = lipgloss.NewStyle().Foreground(colorGray)
)

// A marker is the icon that leads a status line.
type marker struct {
	icon  string
	style lipgloss.Style
	body  *lipgloss.Style
}

var (
	markSuccess = marker{icon: "✓", style: lipgloss.NewStyle().Foreground(colorGreen)}
	markError   = marker{icon: "✗", style: lipgloss.NewStyle().Foreground(colorRed)}
	markWarning = marker{icon: "!", style: lipgloss.NewStyle().Foreground(colorAmber), body: ptr(lipgloss.NewStyle().Foreground(colorAmber))}
	markInfo    = marker{icon: "›", style: lipgloss.NewStyle().Foreground(colorGray)}
)

func ptr[T any](v T) *T { return &v }

// stdout receives all user-facing status output.
var stdout io.Writer = os.Stdout

func (m marker) print(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if m.body != nil {
		msg = m.body.Render(msg)
	}
	fmt.Fprintln(stdout, m.style.Render(m.icon)+" "+msg)
}

func printSuccess(format string, args ...any) { markSuccess.print(format, args...) }
func printError(format string, args ...any)   { markError.print(format, args...) }
func printWarning(format string, args ...any) { markWarning.print(format, args...) }
func printInfo(format string, args ...any)    { markInfo.print(format, args...) }

// printDetail prints an indented secondary line.
func printDetail(format string, args ...any) {
	fmt.Fprintln(stdout, "  "+StyleDim.Render(fmt.Sprintf(format, args...)))
}

// printFile prints a written output path.
func printFile(path string) {
	fmt.Fprintln(stdout, "  "+StyleDim.Render("→")+" "+styleValue.Render(path))
}

func printKeyValue(key, value string) {
	fmt.Fprintln(stdout, styleKey.Render(key)+" "+styleValue.Render(value))
}

// printStats prints simulation statistics on a single line, for example
// "12 nodes · 15 links · 287 ticks · fresh".
func printStats(nodes, links, ticks int, cached bool) {
	parts := []string{StyleDim.Render(count(nodes, "node", "nodes"))}
	if links > 0 {
		parts = append(parts, StyleDim.Render(count(links, "link", "links")))
	}
	if ticks > 0 {
		parts = append(parts, StyleDim.Render(count(ticks, "tick", "ticks")))
	}
	if cached {
		parts = append(parts, styleCached.Render("cached"))
	} else {
		parts = append(parts, styleComputed.Render("fresh"))
	}
	fmt.Fprintln(stdout, "  "+strings.Join(parts, StyleDim.Render(" · ")))
}

// printNextStep suggests the command to run next.
func printNextStep(description, cmd string) {
	fmt.Fprintln(stdout, StyleDim.Render(description+":")+" "+styleCommand.Render(cmd))
}

func printNewline() { fmt.Fprintln(stdout) }

func count(n int, one, many string) string {
	return fmt.Sprintf("%d %s", n, plural(n, one, many))
}
