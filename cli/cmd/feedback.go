package cmd

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"

	"github.com/ardnew/automaton/lang"
)

// feedbackPrinter writes compiler feedback one message per line, styled
// for the color profile of its writer.
type feedbackPrinter struct {
	w      io.Writer
	min    lang.Severity
	prefix map[lang.Severity]lipgloss.Style
	file   lipgloss.Style
	pos    lipgloss.Style
}

func newFeedbackPrinter(w io.Writer, minSeverity lang.Severity) *feedbackPrinter {
	r := lipgloss.NewRenderer(w)

	return &feedbackPrinter{
		w:   w,
		min: minSeverity,
		prefix: map[lang.Severity]lipgloss.Style{
			lang.SeverityDebug:   r.NewStyle().Foreground(lipgloss.Color("8")),
			lang.SeverityInfo:    r.NewStyle().Foreground(lipgloss.Color("4")),
			lang.SeverityWarning: r.NewStyle().Foreground(lipgloss.Color("3")).Bold(true),
			lang.SeverityError:   r.NewStyle().Foreground(lipgloss.Color("1")).Bold(true),
		},
		file: r.NewStyle().Bold(true),
		pos:  r.NewStyle().Faint(true),
	}
}

func severityPrefix(s lang.Severity) string {
	switch s {
	case lang.SeverityDebug:
		return "Debug:   "
	case lang.SeverityInfo:
		return "Info:    "
	case lang.SeverityWarning:
		return "Warning: "
	default:
		return "Error:   "
	}
}

// print writes every message at or above the printer's threshold. A
// non-empty name is written as a header line before the first message.
func (p *feedbackPrinter) print(name string, msgs []lang.Message) (n int) {
	for _, m := range msgs {
		if m.Severity < p.min {
			continue
		}

		if n == 0 && name != "" {
			fmt.Fprintln(p.w, p.file.Render(name))
		}

		n++

		loc := ""
		if m.Pos.IsValid() {
			loc = p.pos.Render(m.Pos.String() + ": ")
		}

		fmt.Fprintln(p.w, p.prefix[m.Severity].Render(severityPrefix(m.Severity))+loc+m.Text)
	}

	return n
}
