package cli

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/loadorder/pkg/pipeline"
)

// Palette
var (
	colorCyan   = lipgloss.Color("36")  // primary
	colorGreen  = lipgloss.Color("35")  // success
	colorYellow = lipgloss.Color("220") // warnings
	colorRed    = lipgloss.Color("167") // errors
	colorBlue   = lipgloss.Color("75")  // links and commands
	colorWhite  = lipgloss.Color("255") // values
	colorGray   = lipgloss.Color("245") // labels
	colorDim    = lipgloss.Color("240") // muted
)

var (
	// StyleTitle for headings.
	StyleTitle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	// StyleLink for URLs.
	StyleLink = lipgloss.NewStyle().Foreground(colorBlue).Underline(true)
	// StyleDim for secondary text.
	StyleDim = lipgloss.NewStyle().Foreground(colorDim)
	// StyleValue for data values.
	StyleValue = lipgloss.NewStyle().Foreground(colorWhite)
	// StyleWarning for warning text.
	StyleWarning = lipgloss.NewStyle().Foreground(colorYellow)

	styleIconSpinner = lipgloss.NewStyle().Foreground(colorCyan)
	styleLabel       = lipgloss.NewStyle().Foreground(colorGray).Width(12)
	styleCommand     = lipgloss.NewStyle().Foreground(colorBlue)
)

// statusOut receives human-oriented status lines. Plan artifacts never go
// here; they are written to the command's output stream.
var statusOut io.Writer = os.Stdout

// icon is a status marker with its colour.
type icon struct {
	glyph string
	style lipgloss.Style
}

var (
	iconSuccess = icon{"✓", lipgloss.NewStyle().Foreground(colorGreen)}
	iconError   = icon{"✗", lipgloss.NewStyle().Foreground(colorRed)}
	iconWarning = icon{"!", lipgloss.NewStyle().Foreground(colorYellow)}
	iconInfo    = icon{"›", lipgloss.NewStyle().Foreground(colorGray)}
)

func status(ic icon, msg string) {
	fmt.Fprintln(statusOut, ic.style.Render(ic.glyph)+" "+msg)
}

func printSuccess(format string, args ...any) { status(iconSuccess, fmt.Sprintf(format, args...)) }

func printError(format string, args ...any) { status(iconError, fmt.Sprintf(format, args...)) }

func printWarning(format string, args ...any) {
	status(iconWarning, StyleWarning.Render(fmt.Sprintf(format, args...)))
}

func printInfo(format string, args ...any) { status(iconInfo, fmt.Sprintf(format, args...)) }

// printDetail prints an indented, muted line.
func printDetail(format string, args ...any) {
	fmt.Fprintln(statusOut, "  "+StyleDim.Render(fmt.Sprintf(format, args...)))
}

// printFile prints a written output path.
func printFile(path string) {
	fmt.Fprintln(statusOut, "  "+StyleDim.Render("→")+" "+StyleValue.Render(path))
}

// printKeyValue prints a labelled value.
func printKeyValue(key, value string) {
	fmt.Fprintln(statusOut, styleLabel.Render(key)+" "+StyleValue.Render(value))
}

// printStats prints one line summarising a pipeline run, e.g.
//
//	4 modules · 3 edges · solved in 2ms · cached
func printStats(s pipeline.Stats, cached bool) {
	fmt.Fprintln(statusOut, "  "+statsLine(s, cached))
}

func statsLine(s pipeline.Stats, cached bool) string {
	parts := []string{fmt.Sprintf("%d modules", s.Modules)}
	if s.Edges > 0 {
		parts = append(parts, fmt.Sprintf("%d edges", s.Edges))
	}
	if !cached && s.SolveTime > 0 {
		parts = append(parts, "solved in "+s.SolveTime.Round(time.Microsecond).String())
	}
	source := lipgloss.NewStyle().Foreground(colorGray).Render("fresh")
	if cached {
		source = lipgloss.NewStyle().Foreground(colorGreen).Render("cached")
	}
	for i, p := range parts {
		parts[i] = StyleDim.Render(p)
	}
	return strings.Join(append(parts, source), StyleDim.Render(" · "))
}

// printNextStep suggests a follow-up command.
func printNextStep(description, cmd string) {
	fmt.Fprintln(statusOut, StyleDim.Render(description+":")+" "+styleCommand.Render(cmd))
}
