package lang

import (
	"strings"
)

// parser builds statements from the token stream by recursive descent.
// Errors go to the feedback; a malformed statement is skipped up to its
// terminating ';'.
type parser struct {
	src  string
	base Position
	toks []token
	i    int
	fb   *Feedback
}

// rawArg is an argument list entry before it is interpreted as a call
// argument or a function parameter.
type rawArg struct {
	key, val []token
	eq       bool
	pos      Position
}

// parse splits src, whose first byte sits at base, into statements.
// Bodies are left unparsed.
func parse(src string, base Position, fb *Feedback) []Stmt {
	if !base.IsValid() {
		base = Position{Line: 1, Column: 1}
	}

	p := &parser{src: src, base: base, toks: lex(src, base, fb), fb: fb}

	var out []Stmt

	for p.peek().kind != tokEOF {
		if p.peek().kind == tokSemicolon {
			p.i++

			continue
		}

		if s := p.statement(); s != nil {
			out = append(out, s)
		} else {
			p.recover()
		}
	}

	return out
}

func (p *parser) peek() token { return p.peekAt(0) }

func (p *parser) peekAt(n int) token {
	if p.i+n < len(p.toks) {
		return p.toks[p.i+n]
	}

	return p.toks[len(p.toks)-1]
}

func (p *parser) recover() {
	for {
		switch p.peek().kind {
		case tokEOF:
			return
		case tokSemicolon:
			p.i++

			return
		}

		p.i++
	}
}

// text converts a run of tokens into a field. A lone string or block is
// literal; anything else is the trimmed source span.
func (p *parser) text(toks []token) Text {
	if len(toks) == 0 {
		return Text{}
	}

	first, last := toks[0], toks[len(toks)-1]

	if len(toks) == 1 {
		switch first.kind {
		case tokString, tokBlock:
			return Text{Value: first.text, Literal: true, Pos: first.pos}
		}
	}

	span := p.src[first.pos.Offset-p.base.Offset : last.end-p.base.Offset]

	return Text{Value: strings.TrimSpace(span), Pos: first.pos}
}

// collect consumes tokens up to, not including, any of the given kinds or
// the end of input.
func (p *parser) collect(stop ...tokenKind) []token {
	start := p.i

	for {
		k := p.peek().kind
		if k == tokEOF {
			break
		}

		found := false

		for _, s := range stop {
			if k == s {
				found = true

				break
			}
		}

		if found {
			break
		}

		p.i++
	}

	return p.toks[start:p.i]
}

func (p *parser) head() []token {
	start := p.i

	for k := p.peek().kind; k == tokWord || k == tokString; k = p.peek().kind {
		p.i++
	}

	return p.toks[start:p.i]
}

func (p *parser) statement() Stmt {
	start := p.peek()

	if start.kind == tokWord && p.peekAt(1).kind == tokColon {
		p.i += 2

		if start.text != "let" {
			p.fb.errorf(start.pos,
				"Qualifier '%s' not understood. Only 'let' is accepted.", start.text)

			return nil
		}

		return p.definition()
	}

	head := p.head()

	switch t := p.peek(); {
	case len(head) > 0 && t.kind == tokEquals:
		return p.varDef(head)
	case len(head) > 0 && t.kind == tokLParen:
		return p.invocation(head)
	case len(head) > 0 && t.kind == tokEOF:
		p.trailing(head[len(head)-1])
	case t.kind == tokComma:
		p.fb.errorf(t.pos, "Ambiguous ','")
	default:
		p.fb.errorf(start.pos,
			"Statement is neither a variable assignment, nor a function.")
	}

	return nil
}

func (p *parser) trailing(last token) {
	p.fb.errorf(last.pos, "Trailing input. (Are you missing a semicolon?)")
}

// terminate consumes the ';' ending a statement. End of input also ends
// a statement that is otherwise complete.
func (p *parser) terminate() bool {
	switch t := p.peek(); t.kind {
	case tokSemicolon:
		p.i++

		return true
	case tokEOF:
		return true
	case tokComma:
		p.fb.errorf(t.pos, "Ambiguous ','")
	default:
		p.fb.errorf(t.pos, "Expected ';' before %s.", t.kind)
	}

	return false
}

func (p *parser) varDef(head []token) Stmt {
	name := head[0]

	if len(head) != 1 || name.kind != tokWord || !isIdentifier(name.text) {
		p.fb.errorf(name.pos, "Variable contains forbidden identifier characters.")

		return nil
	}

	p.i++ // '='

	payload := p.collect(tokSemicolon)

	if p.peek().kind == tokEOF {
		last := name
		if len(payload) > 0 {
			last = payload[len(payload)-1]
		}

		p.trailing(last)

		return nil
	}

	p.i++ // ';'

	v := p.text(payload)
	if !v.Pos.IsValid() {
		v.Pos = name.pos
	}

	return &VarDef{Pos: name.pos, Name: name.text, Value: v}
}

// args parses a parenthesized argument list. The opening '(' is the
// current token.
func (p *parser) args() ([]rawArg, bool) {
	p.i++ // '('

	var out []rawArg

	for {
		at := p.peek().pos
		a := rawArg{pos: at, key: p.collect(tokEquals, tokComma, tokRParen)}

		if p.peek().kind == tokEquals {
			p.i++
			a.eq = true
			a.val = p.collect(tokComma, tokRParen)
		}

		empty := len(a.key) == 0 && !a.eq

		switch t := p.peek(); t.kind {
		case tokRParen:
			p.i++

			if !empty {
				out = append(out, a)
			}

			return out, true
		case tokComma:
			p.i++

			if empty || (a.eq && len(a.val) == 0) {
				p.fb.errorf(t.pos, "Ambiguous ','")
			}

			if !empty {
				out = append(out, a)
			}
		default:
			// The lexer has reported the unmatched '('.
			return out, false
		}
	}
}

func (p *parser) invocation(head []token) Stmt {
	inv := &Invocation{Pos: head[0].pos, Name: p.text(head)}

	raw, ok := p.args()
	if !ok {
		return nil
	}

	for _, a := range raw {
		arg := Arg{Key: p.text(a.key), Value: p.text(a.val)}

		if !arg.Key.Pos.IsValid() {
			arg.Key.Pos = a.pos
		}

		if !arg.Value.Pos.IsValid() {
			arg.Value.Pos = arg.Key.Pos
		}

		if !a.eq {
			// A bare word is an unnamed value.
			arg.Key, arg.Value = Text{Pos: a.pos}, arg.Key
		}

		inv.Args = append(inv.Args, arg)
	}

	if t := p.peek(); t.kind == tokBlock {
		p.i++
		inv.Body = &Body{Source: t.text, Pos: t.inner}
	}

	if !p.terminate() {
		return nil
	}

	return inv
}

func (p *parser) definition() Stmt {
	head := p.head()

	switch t := p.peek(); {
	case len(head) > 0 && t.kind == tokEquals:
		return p.varDef(head)
	case len(head) > 0 && t.kind == tokLParen:
		return p.funcDef(head)
	default:
		p.fb.errorf(t.pos,
			"Statement is neither a variable assignment, nor a function.")

		return nil
	}
}

func (p *parser) funcDef(head []token) Stmt {
	name := head[0]

	if len(head) != 1 || name.kind != tokWord || !isIdentifier(name.text) {
		p.fb.errorf(name.pos, "Function contains forbidden identifier characters.")

		return nil
	}

	raw, ok := p.args()
	if !ok {
		return nil
	}

	def := &FuncDef{Pos: name.pos, Name: name.text}

	for _, a := range raw {
		key := p.text(a.key)

		if len(a.key) != 1 || a.key[0].kind != tokWord || !isIdentifier(key.Value) {
			p.fb.errorf(a.pos,
				"Function parameter contains forbidden identifier characters.")

			continue
		}

		param := Param{Name: key.Value, Pos: key.Pos, HasDefault: a.eq}
		if a.eq {
			param.Default = p.text(a.val)
			if !param.Default.Pos.IsValid() {
				param.Default.Pos = key.Pos
			}
		}

		for i, prev := range def.Params {
			if prev.Name == param.Name {
				p.fb.warnf(param.Pos,
					"Duplicate function argument specified (duplicated from line %d).",
					prev.Pos.Line)

				def.Params = append(def.Params[:i], def.Params[i+1:]...)

				break
			}
		}

		def.Params = append(def.Params, param)
	}

	t := p.peek()
	if t.kind != tokBlock {
		p.fb.errorf(name.pos, "Function definition requires a body.")

		return nil
	}

	p.i++
	def.Body = Body{Source: t.text, Pos: t.inner}

	if !p.terminate() {
		return nil
	}

	return def
}
