package report

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
)

// Colors (Swiss minimal)
var (
	accent  = lipgloss.Color("#FF0000")
	muted   = lipgloss.Color("#666666")
	success = lipgloss.Color("#00CC66")
	white   = lipgloss.Color("#FFFFFF")
)

// Styles
var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(white)
	failStyle  = lipgloss.NewStyle().Foreground(accent).Bold(true)
	mutedStyle = lipgloss.NewStyle().Foreground(muted)
	passStyle  = lipgloss.NewStyle().Foreground(success).Bold(true)
)

// Text renders the report for a terminal. With color off the output is
// plain fixed text, byte-identical run to run on any terminal; with
// color on the same layout is styled.
func Text(w io.Writer, r *Report, color bool) {
	p := printer{w: w, color: color}

	header := "canvascheck"
	if r.Summary.Source != "" {
		header += " · " + r.Summary.Source
	}
	if r.Summary.Dialect != "" {
		header += " (" + r.Summary.Dialect + ")"
	}
	p.line(p.styled(titleStyle, header))
	p.line(p.styled(mutedStyle, fmt.Sprintf("%d artists painted %d pixels (%d draws, %d repaints)",
		r.Summary.Artists, r.Summary.Pixels, r.Summary.Draws, r.Summary.Repaints)))
	p.line("")

	for _, c := range r.Checks {
		switch c.Status {
		case StatusSkipped:
			p.line(fmt.Sprintf("  %s %-14s %s", p.styled(mutedStyle, "-"), c.Name, p.styled(mutedStyle, "skipped")))
		case StatusPass:
			p.line(fmt.Sprintf("  %s %s", p.styled(passStyle, "✓"), c.Name))
		case StatusFail:
			p.line(fmt.Sprintf("  %s %-14s %s", p.styled(failStyle, "✗"), c.Name,
				p.styled(mutedStyle, plural(len(c.Violations), "violation"))))
			for _, v := range c.Violations {
				p.line(p.styled(mutedStyle, "      "+v.Message))
			}
		}
	}

	if len(r.ParseErrors) > 0 {
		p.line("")
		p.line(fmt.Sprintf("  %s %s", p.styled(failStyle, "✗"),
			plural(len(r.ParseErrors), "line")+" failed to parse"))
		for _, pe := range r.ParseErrors {
			p.line(p.styled(mutedStyle, "      "+pe.Error()))
		}
	}

	p.line("")
	if r.Passed {
		p.line(p.styled(passStyle, "PASS") + p.styled(mutedStyle, ": all checks passed"))
	} else {
		detail := plural(r.ViolationCount(), "violation")
		if n := len(r.ParseErrors); n > 0 {
			detail += ", " + plural(n, "parse error")
		}
		p.line(p.styled(failStyle, "FAIL") + p.styled(mutedStyle, ": "+detail))
	}
}

type printer struct {
	w     io.Writer
	color bool
}

func (p printer) line(s string) {
	fmt.Fprintln(p.w, s)
}

func (p printer) styled(st lipgloss.Style, s string) string {
	if !p.color {
		return s
	}
	return st.Render(s)
}

func plural(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", noun)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}
