package main

import (
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/schollz/progressbar/v3"
)

// Colors (Swiss minimal)
var (
	accentStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF0000")).Bold(true)
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#00CC66")).Bold(true)
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#666666"))
)

func useColor() bool {
	return !noColor && os.Getenv("NO_COLOR") == ""
}

func styled(st lipgloss.Style, s string) string {
	if !useColor() {
		return s
	}
	return st.Render(s)
}

// warnf reports a non-fatal problem without interrupting the command.
func warnf(format string, args ...any) {
	fmt.Fprintln(os.Stderr, styled(mutedStyle, "warning: "+fmt.Sprintf(format, args...)))
}

func newBar(total int64, description string) *progressbar.ProgressBar {
	return progressbar.NewOptions64(total,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowBytes(false),
		progressbar.OptionShowCount(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "█",
			SaucerHead:    "█",
			SaucerPadding: "░",
			BarStart:      "",
			BarEnd:        "",
		}),
		progressbar.OptionThrottle(100*time.Millisecond),
		progressbar.OptionClearOnFinish(),
	)
}
