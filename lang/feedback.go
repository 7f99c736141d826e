package lang

import (
	"cmp"
	"fmt"
	"slices"
	"strconv"

	"github.com/ardnew/automaton/log"
)

// MaxFeedback bounds the number of messages recorded by one compile.
const MaxFeedback = 500

// Position locates a byte in a script. Line and Column count from 1; the
// zero Position is "unlocated".
type Position struct {
	Offset int `json:"offset" yaml:"offset"`
	Line   int `json:"line"   yaml:"line"`
	Column int `json:"column" yaml:"column"`
}

// IsValid reports whether p refers to a location.
func (p Position) IsValid() bool { return p.Line > 0 }

func (p Position) String() string {
	if !p.IsValid() {
		return "-"
	}

	return "line " + strconv.Itoa(p.Line) + ", char " + strconv.Itoa(p.Column)
}

// Severity classifies a feedback message.
type Severity int

const (
	SeverityDebug Severity = iota
	SeverityInfo
	SeverityWarning
	SeverityError
)

func (s Severity) String() string {
	switch s {
	case SeverityDebug:
		return "debug"
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return "Severity(" + strconv.Itoa(int(s)) + ")"
	}
}

// Level returns the log level messages of severity s are logged at.
func (s Severity) Level() log.Level {
	switch s {
	case SeverityDebug:
		return log.LevelDebug
	case SeverityInfo:
		return log.LevelInfo
	case SeverityWarning:
		return log.LevelWarn
	default:
		return log.LevelError
	}
}

// MarshalText implements [encoding.TextMarshaler].
func (s Severity) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// Message is one diagnostic produced while compiling.
type Message struct {
	Severity Severity `json:"severity"           yaml:"severity"`
	Pos      Position `json:"position,omitzero"  yaml:"position,omitempty"`
	Text     string   `json:"message"            yaml:"message"`
}

func (m Message) String() string {
	if m.Pos.IsValid() {
		return m.Severity.String() + ": " + m.Pos.String() + ": " + m.Text
	}

	return m.Severity.String() + ": " + m.Text
}

// Feedback collects compile diagnostics. The zero value is ready to use.
type Feedback struct {
	items   []Message
	errors  int
	dropped int // errors not recorded
}

// Add records a message unless the feedback is full. Errors are counted
// even when they are not recorded.
func (f *Feedback) Add(sev Severity, pos Position, text string) {
	if sev >= SeverityError {
		f.errors++
	}

	if len(f.items) >= MaxFeedback {
		if sev >= SeverityError {
			f.dropped++
		}

		return
	}

	f.items = append(f.items, Message{Severity: sev, Pos: pos, Text: text})
}

func (f *Feedback) debugf(pos Position, format string, args ...any) {
	f.Add(SeverityDebug, pos, fmt.Sprintf(format, args...))
}

func (f *Feedback) infof(pos Position, format string, args ...any) {
	f.Add(SeverityInfo, pos, fmt.Sprintf(format, args...))
}

func (f *Feedback) warnf(pos Position, format string, args ...any) {
	f.Add(SeverityWarning, pos, fmt.Sprintf(format, args...))
}

func (f *Feedback) errorf(pos Position, format string, args ...any) {
	f.Add(SeverityError, pos, fmt.Sprintf(format, args...))
}

// Len returns the number of recorded messages, duplicates included.
func (f *Feedback) Len() int { return len(f.items) }

// HasErrors reports whether any message of error severity was added,
// including those dropped by the cap.
func (f *Feedback) HasErrors() bool { return f.errors > 0 }

// Messages returns the recorded messages ordered by source offset, with
// unlocated messages last in the order they were recorded. Exact
// duplicates are dropped.
func (f *Feedback) Messages() []Message {
	out := slices.Clone(f.items)

	slices.SortStableFunc(out, func(a, b Message) int {
		switch av, bv := a.Pos.IsValid(), b.Pos.IsValid(); {
		case av && bv:
			return cmp.Compare(a.Pos.Offset, b.Pos.Offset)
		case av:
			return -1
		case bv:
			return 1
		default:
			return 0
		}
	})

	if f.dropped > 0 {
		out = append(out, Message{
			Severity: SeverityError,
			Text:     fmt.Sprintf("Feedback limit reached; %d further errors not shown.", f.dropped),
		})
	}

	seen := make(map[Message]struct{}, len(out))

	return slices.DeleteFunc(out, func(m Message) bool {
		if _, ok := seen[m]; ok {
			return true
		}

		seen[m] = struct{}{}

		return false
	})
}
