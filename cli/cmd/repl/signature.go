package repl

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/ardnew/automaton/op"
)

// Styles for argument hints.
var (
	signatureStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	signatureNameStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("6")).
				Bold(true)
	currentParamStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("11")).
				Bold(true)
	signatureSeparatorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// currentArg returns the index of the argument the cursor is on: the one
// named by its key when the key is known, otherwise the positional index.
// It returns -1 when no documented argument applies.
func currentArg(doc op.Doc, call invocation) int {
	if call.inValue() {
		for i, a := range doc.Args {
			if strings.EqualFold(a.Name, call.key) {
				return i
			}
		}

		return -1
	}

	if call.argIndex < len(doc.Args) {
		return call.argIndex
	}

	return -1
}

// formatArg renders one argument as it would be written with its default.
func formatArg(a op.ArgDoc) string {
	if a.Default == "" {
		return a.Name
	}

	return a.Name + "=" + a.Default
}

// renderSignatureHint renders the documented arguments of the operation
// being invoked with the current argument highlighted. An argument with an
// exhaustive value set shows those values in place of its default.
func renderSignatureHint(doc op.Doc, call invocation) string {
	var b strings.Builder

	b.WriteString(signatureNameStyle.Render(doc.Name))
	b.WriteString(signatureStyle.Render("("))

	cur := currentArg(doc, call)

	for i, a := range doc.Args {
		if i > 0 {
			b.WriteString(signatureSeparatorStyle.Render(", "))
		}

		text := formatArg(a)
		if i == cur && a.Exhaustive && len(a.Examples) > 0 {
			text = a.Name + "=" + strings.Join(a.Examples, "|")
		}

		if i == cur {
			b.WriteString(currentParamStyle.Render(text))
		} else {
			b.WriteString(signatureStyle.Render(text))
		}
	}

	b.WriteString(signatureStyle.Render(")"))

	if len(doc.Args) == 0 {
		b.WriteString(hintStyle.Render("  takes no arguments"))
	} else if cur >= 0 && doc.Args[cur].Desc != "" {
		b.WriteString(hintStyle.Render("  " + doc.Args[cur].Desc))
	}

	return b.String()
}
