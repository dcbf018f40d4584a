package logging

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
)

// palette colors the parts of a terminal line. A nil palette prints plain
// text.
type palette struct {
	time, key *color.Color
	levels    map[slog.Level]*color.Color
}

func newPalette() *palette {
	return &palette{
		time: color.New(color.FgHiBlack),
		key:  color.New(color.FgCyan),
		levels: map[slog.Level]*color.Color{
			LevelTrace:      color.New(color.FgHiBlack),
			slog.LevelDebug: color.New(color.FgMagenta),
			slog.LevelInfo:  color.New(color.FgGreen),
			slog.LevelWarn:  color.New(color.FgYellow),
			slog.LevelError: color.New(color.FgRed, color.Bold),
		},
	}
}

// Handler writes one compact line per record for terminal use:
//
//	3:04PM INFO  configuration loaded digest=9f2c… pucks=6
//
// Groups are flattened into dotted keys and sensitive values are masked.
type Handler struct {
	level   slog.Leveler
	replace func([]string, slog.Attr) slog.Attr
	out     io.Writer
	mu      *sync.Mutex
	colors  *palette

	prefix string // dotted group path, with trailing dot
	groups []string
	attrs  []byte // preformatted WithAttrs output
}

// NewHandler returns a Handler writing to out. Colors are used only when
// out is a terminal that accepts them.
func NewHandler(out io.Writer, opts *slog.HandlerOptions) *Handler {
	h := &Handler{level: slog.LevelInfo, out: out, mu: &sync.Mutex{}}
	if opts != nil {
		if opts.Level != nil {
			h.level = opts.Level
		}
		h.replace = opts.ReplaceAttr
	}
	if SupportsColor(out) {
		h.colors = newPalette()
	}
	return h
}

// Enabled reports whether level meets the configured minimum.
func (h *Handler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

// Handle formats r and writes it with a single Write call.
func (h *Handler) Handle(_ context.Context, r slog.Record) error {
	var buf bytes.Buffer
	if !r.Time.IsZero() {
		buf.WriteString(h.paint(h.timeColor(), r.Time.Format(time.Kitchen)))
		buf.WriteByte(' ')
	}
	fmt.Fprintf(&buf, "%-5s ", h.paint(h.levelColor(r.Level), levelName(r.Level)))
	buf.WriteString(r.Message)
	buf.Write(h.attrs)
	r.Attrs(func(a slog.Attr) bool {
		h.writeAttr(&buf, h.prefix, a)
		return true
	})
	buf.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := h.out.Write(buf.Bytes())
	return err
}

func (h *Handler) writeAttr(buf *bytes.Buffer, prefix string, a slog.Attr) {
	a.Value = a.Value.Resolve()
	if h.replace != nil && a.Value.Kind() != slog.KindGroup {
		a = h.replace(h.groups, a)
	}
	a = RedactAttr(h.groups, a)
	if a.Equal(slog.Attr{}) {
		return
	}

	if a.Value.Kind() == slog.KindGroup {
		inner := prefix
		if a.Key != "" {
			inner += a.Key + "."
		}
		for _, ga := range a.Value.Group() {
			h.writeAttr(buf, inner, ga)
		}
		return
	}

	var key string
	if h.colors != nil {
		key = h.colors.key.Sprint(prefix + a.Key)
	} else {
		key = prefix + a.Key
	}
	fmt.Fprintf(buf, " %s=%v", key, a.Value.Any())
}

// WithAttrs formats attrs once under the current group path.
func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	c := *h
	buf := bytes.NewBuffer(slices.Clone(h.attrs))
	for _, a := range attrs {
		h.writeAttr(buf, h.prefix, a)
	}
	c.attrs = buf.Bytes()
	return &c
}

// WithGroup qualifies later attributes with name.
func (h *Handler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	c := *h
	c.groups = append(slices.Clip(h.groups), name)
	c.prefix = strings.Join(c.groups, ".") + "."
	return &c
}

func (h *Handler) timeColor() *color.Color {
	if h.colors == nil {
		return nil
	}
	return h.colors.time
}

func (h *Handler) levelColor(l slog.Level) *color.Color {
	if h.colors == nil {
		return nil
	}
	switch {
	case l >= slog.LevelError:
		return h.colors.levels[slog.LevelError]
	case l >= slog.LevelWarn:
		return h.colors.levels[slog.LevelWarn]
	case l >= slog.LevelInfo:
		return h.colors.levels[slog.LevelInfo]
	case l >= slog.LevelDebug:
		return h.colors.levels[slog.LevelDebug]
	default:
		return h.colors.levels[LevelTrace]
	}
}

func (h *Handler) paint(c *color.Color, s string) string {
	if c == nil {
		return s
	}
	return c.Sprint(s)
}

func levelName(l slog.Level) string {
	if l == LevelTrace {
		return "TRACE"
	}
	return l.String()
}
