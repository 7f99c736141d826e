package repl

import (
	"maps"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	"github.com/ardnew/automaton/op"
)

// ctrlCommands are the available control-mode commands.
var ctrlCommands = []string{
	"help", "ops", "state", "params", "reset", "edit", "clear", "quit",
}

// isWordBoundary returns true if the rune is a word delimiter for completion
// purposes: whitespace and the punctuation of the statement syntax.
func isWordBoundary(r rune) bool {
	switch r {
	case ' ', '\t',
		'(', ')', '{', '}',
		',', ';', '=', '\'', '"':
		return true
	}

	return false
}

// wordBounds returns the current word at the cursor position and its byte
// boundaries within input.
// Returns an empty word when the cursor sits on a boundary (after a space,
// after an opening paren, start of line, etc.).
func wordBounds(input string, cursor int) (word string, start, end int) {
	if cursor > len(input) {
		cursor = len(input)
	}

	// Walk backward from cursor to find word start.
	start = cursor

	for start > 0 {
		r, size := utf8.DecodeLastRuneInString(input[:start])
		if isWordBoundary(r) {
			break
		}

		start -= size
	}

	// Walk forward from cursor to find word end.
	end = cursor

	for end < len(input) {
		r, size := utf8.DecodeRuneInString(input[end:])
		if isWordBoundary(r) {
			break
		}

		end += size
	}

	word = input[start:end]

	return word, start, end
}

// invocation describes the operation call enclosing the cursor.
type invocation struct {
	name     string // operation name before '('
	argIndex int    // index of the argument under the cursor
	key      string // argument key, when the cursor is past its '='
	inArgs   bool   // cursor is inside the argument list
}

// inValue reports whether the cursor is in an argument's value.
func (c invocation) inValue() bool { return c.key != "" }

// invocationAt finds the argument list enclosing cursor, if any. An
// unmatched '{' or a ';' at the same depth ends the search: the cursor is
// then in a statement of its own.
func invocationAt(input string, cursor int) invocation {
	if cursor > len(input) {
		cursor = len(input)
	}

	depth, open := 0, -1

scan:
	for i := cursor - 1; i >= 0; i-- {
		switch input[i] {
		case ')':
			depth++
		case '(':
			if depth == 0 {
				open = i

				break scan
			}

			depth--
		case '{', '}', ';':
			if depth == 0 {
				break scan
			}
		}
	}

	if open < 0 {
		return invocation{}
	}

	_, start, _ := wordBounds(input, open)
	name := strings.TrimSpace(input[start:open])

	if name == "" {
		return invocation{}
	}

	call := invocation{name: name, inArgs: true}

	// The argument under the cursor follows the last comma at depth 0.
	argStart := open + 1
	depth = 0

	for i := open + 1; i < cursor; i++ {
		switch input[i] {
		case '(':
			depth++
		case ')':
			depth--
		case ',':
			if depth == 0 {
				call.argIndex++
				argStart = i + 1
			}
		}
	}

	if key, _, ok := strings.Cut(input[argStart:cursor], "="); ok {
		call.key = strings.TrimSpace(key)
	}

	return call
}

// argDoc returns the documentation of the named argument, matching names
// case-insensitively.
func argDoc(doc op.Doc, name string) (op.ArgDoc, bool) {
	for _, a := range doc.Args {
		if strings.EqualFold(a.Name, name) {
			return a, true
		}
	}

	return op.ArgDoc{}, false
}

// candidates returns the completions for a word at the position described
// by call, and whether they should be offered before anything is typed.
func candidates(reg *op.Registry, call invocation) (names []string, eager bool) {
	if !call.inArgs {
		return slices.Sorted(maps.Keys(reg.Lexicon())), false
	}

	x, ok := reg.Lookup(call.name)
	if !ok {
		return nil, false
	}

	if call.inValue() {
		a, ok := argDoc(x.Doc, call.key)
		if !ok {
			return nil, false
		}

		return a.Examples, a.Exhaustive
	}

	return x.Doc.ArgNames(), true
}

// computeMatches calculates the fuzzy match results for the word at the cursor.
// It returns the matches (ranked best-first), the candidate list, and the word
// boundaries. An empty word only produces matches where the candidates are
// offered eagerly: argument names inside an argument list, and the values
// of an argument with an exhaustive set of values.
func (m model) computeMatches() (
	matches fuzzy.Matches,
	cands []string,
	wordStart, wordEnd int,
) {
	input := m.input.Value()
	cursor := m.input.Position()

	word, ws, we := wordBounds(input, cursor)
	wordStart, wordEnd = ws, we

	eager := false

	if m.mode == modeCtrl {
		if strings.TrimSpace(input[:wordStart]) != "" {
			return nil, nil, wordStart, wordEnd
		}

		cands = ctrlCommands
	} else {
		cands, eager = candidates(m.registry, invocationAt(input, cursor))
	}

	if len(cands) == 0 || (word == "" && !eager) {
		return nil, nil, wordStart, wordEnd
	}

	if word == "" {
		matches = make(fuzzy.Matches, len(cands))
		for i, c := range cands {
			matches[i] = fuzzy.Match{Str: c, Index: i}
		}

		return matches, cands, wordStart, wordEnd
	}

	return fuzzy.Find(word, cands), cands, wordStart, wordEnd
}

// renderCandidateBar builds the single-line completion bar, ellipsized to fit
// within the given terminal width. Each candidate is rendered with its matched
// characters highlighted. The selected candidate (when tabbing) uses the
// selected style.
func renderCandidateBar(
	matches fuzzy.Matches,
	suggIdx int,
	tabActive bool,
	width int,
) string {
	if len(matches) == 0 || width <= 0 {
		return ""
	}

	const sep = "  "

	sepWidth := lipgloss.Width(sep)
	ellipsis := hintStyle.Render("...")
	ellipsisWidth := lipgloss.Width(ellipsis)

	var b strings.Builder

	used := 0

	for i, match := range matches {
		selected := tabActive && i == suggIdx
		rendered := renderCandidate(match, selected)

		entryWidth := lipgloss.Width(rendered)
		if i > 0 {
			entryWidth += sepWidth
		}

		if used+entryWidth+ellipsisWidth > width && i > 0 {
			b.WriteString(sep)
			b.WriteString(ellipsis)

			break
		}

		if i > 0 {
			b.WriteString(sep)
		}

		b.WriteString(rendered)

		used += entryWidth
	}

	return b.String()
}

// renderCandidate renders a single candidate with matched characters
// highlighted.
func renderCandidate(match fuzzy.Match, selected bool) string {
	baseStyle, highlightStyle := suggestionStyle, matchStyle
	if selected {
		baseStyle, highlightStyle = selectedStyle, selectedMatchStyle
	}

	matched := make(map[int]bool, len(match.MatchedIndexes))
	for _, idx := range match.MatchedIndexes {
		matched[idx] = true
	}

	var b strings.Builder

	for i, r := range match.Str {
		if matched[i] {
			b.WriteString(highlightStyle.Render(string(r)))
		} else {
			b.WriteString(baseStyle.Render(string(r)))
		}
	}

	return b.String()
}
