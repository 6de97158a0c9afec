package common

import (
	"context"
	"io"
	"log/slog"
	"os"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"time"
)

const (
	Reset   = "\033[0m"
	Red     = "\033[31m"
	Green   = "\033[32m"
	Yellow  = "\033[33m"
	Blue    = "\033[34m"
	Magenta = "\033[35m"
	Cyan    = "\033[36m"
	White   = "\033[37m"
	Gray    = "\033[90m"
)

var levelStyles = []struct {
	min   slog.Level
	color string
	label string
}{
	{slog.LevelError, Red, "[ERROR]"},
	{slog.LevelWarn, Yellow, "[WARN ]"},
	{slog.LevelInfo, Green, "[INFO ]"},
}

// ColorHandler is a slog.Handler writing one human-readable line per record.
// Colors are only emitted on terminals.
type ColorHandler struct {
	opts     *slog.HandlerOptions
	mu       *sync.Mutex
	writer   io.Writer
	attrs    []slog.Attr
	groups   []string
	masker   *Masker
	useColor bool
}

func NewColorHandler(w io.Writer, opts *slog.HandlerOptions) *ColorHandler {
	if opts == nil {
		opts = &slog.HandlerOptions{}
	}
	return &ColorHandler{
		opts:     opts,
		mu:       &sync.Mutex{},
		writer:   w,
		useColor: isTerminal(w),
		masker:   NewMasker(),
	}
}

func isTerminal(w io.Writer) bool {
	if runtime.GOOS == "windows" || os.Getenv("NO_COLOR") != "" {
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	fi, err := f.Stat()
	return err == nil && fi.Mode()&os.ModeCharDevice != 0
}

func (h *ColorHandler) Enabled(_ context.Context, level slog.Level) bool {
	if h.opts.Level == nil {
		return level >= slog.LevelInfo
	}
	return level >= h.opts.Level.Level()
}

func (h *ColorHandler) Handle(_ context.Context, r slog.Record) error {
	var sb strings.Builder
	if !r.Time.IsZero() {
		sb.WriteString(h.colorize(Gray, r.Time.Format(time.RFC3339)))
		sb.WriteByte(' ')
	}
	sb.WriteString(h.levelLabel(r.Level))
	if len(h.groups) > 0 {
		sb.WriteByte(' ')
		sb.WriteString(h.colorize(Cyan, "["+strings.Join(h.groups, ".")+"]"))
	}
	sb.WriteByte(' ')
	sb.WriteString(h.colorize(White, h.maskMessage(r.Message)))

	write := func(a slog.Attr) bool {
		a = h.maskAttr(a)
		key := Cyan
		if a.Key == "event" {
			key = Blue
		}
		sb.WriteByte(' ')
		sb.WriteString(h.colorize(key, a.Key))
		sb.WriteByte('=')
		sb.WriteString(h.renderValue(a.Value))
		return true
	}
	for _, a := range h.attrs {
		write(a)
	}
	r.Attrs(write)
	sb.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.writer, sb.String())
	return err
}

func (h *ColorHandler) levelLabel(level slog.Level) string {
	for _, s := range levelStyles {
		if level >= s.min {
			return h.colorize(s.color, s.label)
		}
	}
	return h.colorize(Gray, "[DEBUG]")
}

func (h *ColorHandler) renderValue(v slog.Value) string {
	switch v.Kind() {
	case slog.KindString:
		s := v.String()
		color := White
		if looksLikeFailure(s) {
			color = Red
		} else if looksLikeSuccess(s) {
			color = Green
		}
		return h.colorize(color, strconv.Quote(s))
	case slog.KindInt64:
		return h.colorize(Magenta, strconv.FormatInt(v.Int64(), 10))
	case slog.KindUint64:
		return h.colorize(Magenta, strconv.FormatUint(v.Uint64(), 10))
	case slog.KindFloat64:
		return h.colorize(Magenta, strconv.FormatFloat(v.Float64(), 'g', -1, 64))
	case slog.KindBool:
		if v.Bool() {
			return h.colorize(Green, "true")
		}
		return h.colorize(Red, "false")
	case slog.KindDuration:
		return h.colorize(Yellow, v.Duration().String())
	case slog.KindTime:
		return h.colorize(Gray, v.Time().Format(time.RFC3339))
	}
	return h.colorize(White, v.String())
}

func looksLikeFailure(s string) bool {
	s = strings.ToLower(s)
	for _, w := range []string{"error", "fail", "refused", "timeout"} {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

func looksLikeSuccess(s string) bool {
	switch strings.ToLower(s) {
	case "success", "matched", "ok":
		return true
	}
	return false
}

func (h *ColorHandler) colorize(color, text string) string {
	if !h.useColor {
		return text
	}
	return color + text + Reset
}

func (h *ColorHandler) maskMessage(msg string) string {
	if h.masker == nil {
		return msg
	}
	return h.masker.MaskString(msg)
}

func (h *ColorHandler) maskAttr(a slog.Attr) slog.Attr {
	if h.masker == nil || !h.masker.IsEnabled() || a.Value.Kind() != slog.KindString {
		return a
	}
	if s, ok := h.masker.MaskValue(a.Key, a.Value.String()).(string); ok {
		return slog.String(a.Key, s)
	}
	return a
}

func (h *ColorHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	c := h.clone()
	c.attrs = append(c.attrs, attrs...)
	return c
}

func (h *ColorHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	c := h.clone()
	c.groups = append(c.groups, name)
	return c
}

// clone copies the attr and group slices so derived handlers never share
// backing arrays.
func (h *ColorHandler) clone() *ColorHandler {
	c := *h
	c.attrs = append([]slog.Attr(nil), h.attrs...)
	c.groups = append([]string(nil), h.groups...)
	return &c
}

func (h *ColorHandler) SetMasker(masker *Masker) {
	h.masker = masker
}

func (h *ColorHandler) SetColorEnabled(enabled bool) {
	h.useColor = enabled
}
