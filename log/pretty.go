package log

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

// palette holds the styles used by the pretty handlers. Styles come from a
// renderer bound to the output writer, so a non-terminal writer gets plain
// text.
type palette struct {
	key, str, num, dur, yes, no, null lipgloss.Style
	levels                            map[slog.Level]lipgloss.Style
}

func newPalette(w io.Writer) *palette {
	r := lipgloss.NewRenderer(w)

	color := func(c string) lipgloss.Style {
		return r.NewStyle().Foreground(lipgloss.Color(c))
	}

	return &palette{
		key:  color("8"),
		str:  color("6"),
		num:  color("3"),
		dur:  color("5"),
		yes:  color("2"),
		no:   color("1"),
		null: color("8"),
		levels: map[slog.Level]lipgloss.Style{
			slog.Level(LevelTrace): color("8"),
			slog.LevelDebug:        color("4"),
			slog.LevelInfo:         color("2"),
			slog.LevelWarn:         color("3").Bold(true),
			slog.LevelError:        color("1").Bold(true),
		},
	}
}

func (p *palette) level(l slog.Level, text string) string {
	s, ok := p.levels[l]
	if !ok {
		switch {
		case l >= slog.LevelError:
			s = p.levels[slog.LevelError]
		case l >= slog.LevelWarn:
			s = p.levels[slog.LevelWarn]
		case l >= slog.LevelInfo:
			s = p.levels[slog.LevelInfo]
		default:
			s = p.levels[slog.LevelDebug]
		}
	}

	return s.Render(text)
}

func (p *palette) value(v slog.Value) string {
	switch v.Kind() {
	case slog.KindString:
		return p.str.Render(v.String())
	case slog.KindInt64:
		return p.num.Render(strconv.FormatInt(v.Int64(), 10))
	case slog.KindUint64:
		return p.num.Render(strconv.FormatUint(v.Uint64(), 10))
	case slog.KindFloat64:
		return p.num.Render(strconv.FormatFloat(v.Float64(), 'g', -1, 64))
	case slog.KindBool:
		if v.Bool() {
			return p.yes.Render("true")
		}

		return p.no.Render("false")
	case slog.KindDuration:
		return p.dur.Render(v.Duration().String())
	case slog.KindAny:
		if v.Any() == nil {
			return p.null.Render("null")
		}

		if err, ok := v.Any().(error); ok {
			return p.no.Render(err.Error())
		}

		return p.str.Render(fmt.Sprint(v.Any()))
	default:
		return p.str.Render(v.String())
	}
}

// prettyCore is shared by both pretty handlers: it holds preformatted
// attributes and the open group path.
type prettyCore struct {
	opts   slog.HandlerOptions
	mu     *sync.Mutex
	w      io.Writer
	pal    *palette
	attrs  []slog.Attr
	groups []string
}

func newPrettyCore(w io.Writer, opts *slog.HandlerOptions) prettyCore {
	return prettyCore{
		opts: *opts,
		mu:   &sync.Mutex{},
		w:    w,
		pal:  newPalette(w),
	}
}

func (c prettyCore) enabled(level slog.Level) bool {
	floor := slog.LevelInfo
	if c.opts.Level != nil {
		floor = c.opts.Level.Level()
	}

	return level >= floor
}

func (c prettyCore) withAttrs(attrs []slog.Attr) prettyCore {
	prefix := c.prefix()
	next := slices.Clip(c.attrs)

	for _, a := range attrs {
		a.Key = prefix + a.Key
		next = append(next, a)
	}

	c.attrs = next

	return c
}

func (c prettyCore) withGroup(name string) prettyCore {
	if name == "" {
		return c
	}

	c.groups = append(slices.Clip(c.groups), name)

	return c
}

func (c prettyCore) prefix() string {
	if len(c.groups) == 0 {
		return ""
	}

	return strings.Join(c.groups, ".") + "."
}

// builtin runs ReplaceAttr over a record's standard attribute.
func (c prettyCore) builtin(a slog.Attr) slog.Attr {
	if c.opts.ReplaceAttr == nil {
		return a
	}

	return c.opts.ReplaceAttr(nil, a)
}

// fields flattens the record into the ordered attributes to print.
func (c prettyCore) fields(r slog.Record) []slog.Attr {
	out := make([]slog.Attr, 0, 4+len(c.attrs)+r.NumAttrs())

	if !r.Time.IsZero() {
		if a := c.builtin(slog.Time(slog.TimeKey, r.Time)); a.Key != "" {
			out = append(out, a)
		}
	}

	out = append(out, c.builtin(slog.Any(slog.LevelKey, r.Level)))

	if c.opts.AddSource {
		if src := r.Source(); src != nil {
			out = append(out, slog.String(
				slog.SourceKey,
				src.File+":"+strconv.Itoa(src.Line),
			))
		}
	}

	out = append(out, slog.String(slog.MessageKey, r.Message))
	out = append(out, c.attrs...)

	prefix := c.prefix()

	r.Attrs(func(a slog.Attr) bool {
		a.Key = prefix + a.Key
		out = append(out, a)

		return true
	})

	return out
}

func (c prettyCore) render(a slog.Attr, level slog.Level) string {
	if a.Key == slog.LevelKey {
		return c.pal.level(level, a.Value.String())
	}

	return c.pal.value(a.Value.Resolve())
}

func (c prettyCore) write(buf *bytes.Buffer) error {
	buf.WriteByte('\n')

	c.mu.Lock()
	defer c.mu.Unlock()

	_, err := c.w.Write(buf.Bytes())

	return err
}

// prettyTextHandler writes one key=value line per record, styled per type.
type prettyTextHandler struct{ prettyCore }

func newPrettyTextHandler(
	w io.Writer,
	opts *slog.HandlerOptions,
) *prettyTextHandler {
	return &prettyTextHandler{newPrettyCore(w, opts)}
}

func (h *prettyTextHandler) Enabled(_ context.Context, level slog.Level) bool {
	return h.enabled(level)
}

func (h *prettyTextHandler) Handle(_ context.Context, r slog.Record) error {
	var buf bytes.Buffer

	for _, a := range h.fields(r) {
		if buf.Len() > 0 {
			buf.WriteByte(' ')
		}

		buf.WriteString(h.pal.key.Render(a.Key))
		buf.WriteByte('=')
		buf.WriteString(h.render(a, r.Level))
	}

	return h.write(&buf)
}

func (h *prettyTextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &prettyTextHandler{h.withAttrs(attrs)}
}

func (h *prettyTextHandler) WithGroup(name string) slog.Handler {
	return &prettyTextHandler{h.withGroup(name)}
}

// prettyJSONHandler writes an indented, styled object per record.
type prettyJSONHandler struct{ prettyCore }

func newPrettyJSONHandler(
	w io.Writer,
	opts *slog.HandlerOptions,
) *prettyJSONHandler {
	return &prettyJSONHandler{newPrettyCore(w, opts)}
}

func (h *prettyJSONHandler) Enabled(_ context.Context, level slog.Level) bool {
	return h.enabled(level)
}

func (h *prettyJSONHandler) Handle(_ context.Context, r slog.Record) error {
	var buf bytes.Buffer

	buf.WriteString("{")

	for i, a := range h.fields(r) {
		if i > 0 {
			buf.WriteByte(',')
		}

		buf.WriteString("\n  ")
		buf.WriteString(h.pal.key.Render(strconv.Quote(a.Key)))
		buf.WriteString(": ")
		buf.WriteString(h.render(a, r.Level))
	}

	buf.WriteString("\n}")

	return h.write(&buf)
}

func (h *prettyJSONHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &prettyJSONHandler{h.withAttrs(attrs)}
}

func (h *prettyJSONHandler) WithGroup(name string) slog.Handler {
	return &prettyJSONHandler{h.withGroup(name)}
}
