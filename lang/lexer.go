package lang

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokWord
	tokString
	tokLParen
	tokRParen
	tokComma
	tokEquals
	tokColon
	tokSemicolon
	tokBlock
)

func (k tokenKind) String() string {
	switch k {
	case tokEOF:
		return "end of input"
	case tokWord:
		return "word"
	case tokString:
		return "string"
	case tokLParen:
		return "'('"
	case tokRParen:
		return "')'"
	case tokComma:
		return "','"
	case tokEquals:
		return "'='"
	case tokColon:
		return "':'"
	case tokSemicolon:
		return "';'"
	case tokBlock:
		return "block"
	default:
		return "token"
	}
}

// token is a lexeme with its source span. For strings, text holds the
// unescaped contents; for blocks, the raw text between the braces, which
// begins at inner.
type token struct {
	kind  tokenKind
	text  string
	pos   Position
	end   int
	inner Position
}

// lexer is a finite-state scanner. Each stateFn consumes input and
// returns the next state; nil stops the machine.
type lexer struct {
	src  string
	base Position
	fb   *Feedback

	i         int
	line, col int

	// Only one level of '(' is legal. parens holds the position of every
	// open one so that nested pairs can be reported and skipped.
	parens    []Position
	sawEquals bool

	tokens []token
}

type stateFn func(*lexer) stateFn

// lex scans src, whose first byte sits at base, and returns its tokens.
// The result always ends with a tokEOF.
func lex(src string, base Position, fb *Feedback) []token {
	if !base.IsValid() {
		base = Position{Line: 1, Column: 1}
	}

	l := &lexer{src: src, base: base, fb: fb, line: base.Line, col: base.Column}

	for state := lexText; state != nil; {
		state = state(l)
	}

	return l.tokens
}

func (l *lexer) pos() Position {
	return Position{Offset: l.base.Offset + l.i, Line: l.line, Column: l.col}
}

func (l *lexer) peek() rune {
	if l.i >= len(l.src) {
		return -1
	}

	r, _ := utf8.DecodeRuneInString(l.src[l.i:])

	return r
}

func (l *lexer) next() rune {
	if l.i >= len(l.src) {
		return -1
	}

	r, w := utf8.DecodeRuneInString(l.src[l.i:])
	l.i += w

	switch r {
	case '\n':
		l.line++
		l.col = 1
	case '\r', 0:
	default:
		l.col++
	}

	return r
}

func (l *lexer) emit(kind tokenKind, text string, at Position) {
	l.tokens = append(l.tokens, token{
		kind: kind,
		text: text,
		pos:  at,
		end:  l.base.Offset + l.i,
	})
}

func lexText(l *lexer) stateFn {
	for {
		r := l.peek()
		if r == -1 {
			for _, p := range l.parens {
				l.fb.errorf(p, "Unmatched '('")
			}

			l.emit(tokEOF, "", l.pos())

			return nil
		}

		if r == 0 || unicode.IsSpace(r) {
			l.next()

			continue
		}

		at := l.pos()

		switch r {
		case '#':
			return lexComment
		case '"', '\'':
			return lexQuoted
		case '(':
			l.next()
			l.parens = append(l.parens, at)

			if len(l.parens) == 1 {
				l.emit(tokLParen, "(", at)
			} else {
				l.fb.errorf(at, "Nested '('")
			}
		case ')':
			l.next()

			switch len(l.parens) {
			case 0:
				l.fb.errorf(at, "Unmatched ')'")
			case 1:
				l.parens = l.parens[:0]
				l.emit(tokRParen, ")", at)
			default:
				l.parens = l.parens[:len(l.parens)-1]
			}
		case '{':
			if len(l.parens) > 0 {
				return lexWord
			}

			return lexBlock
		case '}':
			if len(l.parens) > 0 {
				return lexWord
			}

			l.next()
			l.fb.errorf(at, "Unmatched '}'")
		case ',':
			l.next()
			l.emit(tokComma, ",", at)
		case '=':
			l.next()
			l.emit(tokEquals, "=", at)

			if len(l.parens) == 0 {
				l.sawEquals = true
			}
		case ':':
			if len(l.parens) > 0 || l.sawEquals {
				return lexWord
			}

			l.next()
			l.emit(tokColon, ":", at)
		case ';':
			if len(l.parens) > 0 {
				return lexWord
			}

			l.next()
			l.emit(tokSemicolon, ";", at)
			l.sawEquals = false
		default:
			return lexWord
		}
	}
}

func lexComment(l *lexer) stateFn {
	for r := l.peek(); r != -1 && r != '\n'; r = l.peek() {
		l.next()
	}

	return lexText
}

// isDelim reports whether r ends a bare word in the lexer's current state.
func (l *lexer) isDelim(r rune) bool {
	switch r {
	case -1, 0, '(', ')', '=', ',', '#', '"', '\'':
		return true
	case '{', '}', ';':
		return len(l.parens) == 0
	case ':':
		return len(l.parens) == 0 && !l.sawEquals
	}

	return unicode.IsSpace(r)
}

func lexWord(l *lexer) stateFn {
	at := l.pos()
	start := l.i

	// The first rune may be a delimiter that is literal inside parens.
	l.next()

	for !l.isDelim(l.peek()) {
		l.next()
	}

	l.emit(tokWord, l.src[start:l.i], at)

	return lexText
}

func lexQuoted(l *lexer) stateFn {
	at := l.pos()
	quote := l.next()

	var sb strings.Builder

	for {
		r := l.next()

		switch r {
		case -1:
			l.fb.errorf(at, "Unmatched '%c'", quote)
			l.emit(tokEOF, "", l.pos())

			return nil
		case '\\':
			if e := l.next(); e != -1 {
				sb.WriteRune(e)
			}
		case quote:
			l.emit(tokString, sb.String(), at)

			return lexText
		case '\r', 0:
		default:
			sb.WriteRune(r)
		}
	}
}

// lexBlock consumes a balanced brace block. Quotes and comments inside the
// block are honoured so that braces within them do not count.
func lexBlock(l *lexer) stateFn {
	at := l.pos()
	l.next()

	inner, start := l.pos(), l.i

	// Positions of the braces still open, outermost first.
	open := []Position{at}

	for len(open) > 0 {
		rat := l.pos()
		r := l.next()

		switch r {
		case -1:
			for _, p := range open {
				l.fb.errorf(p, "Unmatched '{'")
			}

			l.emit(tokEOF, "", l.pos())

			return nil
		case '{':
			open = append(open, rat)
		case '}':
			open = open[:len(open)-1]
		case '#':
			for c := l.peek(); c != -1 && c != '\n'; c = l.peek() {
				l.next()
			}
		case '"', '\'':
			if !l.skipQuoted(r) {
				l.fb.errorf(rat, "Unmatched '%c'", r)
			}
		}
	}

	l.emit(tokBlock, l.src[start:l.i-1], at)
	l.tokens[len(l.tokens)-1].inner = inner

	return lexText
}

func (l *lexer) skipQuoted(quote rune) bool {
	for {
		switch l.next() {
		case -1:
			return false
		case '\\':
			l.next()
		case quote:
			return true
		}
	}
}
