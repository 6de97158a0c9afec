package common

import (
	"io"
	"log/slog"
	"os"
)

// LogLevel is the verbosity of a Logger, from quietest to loudest.
type LogLevel int

const (
	LogLevelError LogLevel = iota
	LogLevelWarn
	LogLevelInfo
	LogLevelDebug
)

var levelTable = map[LogLevel]struct {
	name string
	slog slog.Level
}{
	LogLevelError: {"error", slog.LevelError},
	LogLevelWarn:  {"warn", slog.LevelWarn},
	LogLevelInfo:  {"info", slog.LevelInfo},
	LogLevelDebug: {"debug", slog.LevelDebug},
}

// String returns the level name. Unknown levels read as info.
func (l LogLevel) String() string {
	if e, ok := levelTable[l]; ok {
		return e.name
	}
	return "info"
}

func (l LogLevel) ToSlogLevel() slog.Level {
	if e, ok := levelTable[l]; ok {
		return e.slog
	}
	return slog.LevelInfo
}

// Logger wraps slog with the configured level and the masker shared by its
// handlers.
type Logger struct {
	*slog.Logger
	level  LogLevel
	masker *Masker
}

func wrap(h slog.Handler, level LogLevel) *Logger {
	return &Logger{Logger: slog.New(h), level: level, masker: globalMasker}
}

func stdlibOptions(level LogLevel) *slog.HandlerOptions {
	return &slog.HandlerOptions{Level: level.ToSlogLevel(), ReplaceAttr: maskReplaceAttr(globalMasker)}
}

// NewLogger returns a text logger on stdout.
func NewLogger(level LogLevel) *Logger {
	return NewTextLogger(os.Stdout, level)
}

func NewTextLogger(w io.Writer, level LogLevel) *Logger {
	return wrap(slog.NewTextHandler(w, stdlibOptions(level)), level)
}

// NewJSONLogger returns a logger emitting one JSON object per line on stdout.
func NewJSONLogger(level LogLevel) *Logger {
	return wrap(slog.NewJSONHandler(os.Stdout, stdlibOptions(level)), level)
}

// NewColorLogger returns a logger using ColorHandler on stdout.
func NewColorLogger(level LogLevel) *Logger {
	h := NewColorHandler(os.Stdout, &slog.HandlerOptions{Level: level.ToSlogLevel()})
	h.SetMasker(globalMasker)
	return wrap(h, level)
}

// maskReplaceAttr hides sensitive string attributes for the slog handlers.
func maskReplaceAttr(m *Masker) func([]string, slog.Attr) slog.Attr {
	return func(_ []string, a slog.Attr) slog.Attr {
		if m == nil || !m.IsEnabled() || a.Value.Kind() != slog.KindString {
			return a
		}
		if masked, ok := m.MaskValue(a.Key, a.Value.String()).(string); ok {
			return slog.String(a.Key, masked)
		}
		return a
	}
}

func (l *Logger) Level() LogLevel {
	return l.level
}

// EnableMasking toggles the masker behind this logger.
func (l *Logger) EnableMasking(enabled bool) {
	if l.masker != nil {
		l.masker.SetEnabled(enabled)
	}
}

func (l *Logger) with(args ...any) *Logger {
	return &Logger{Logger: l.Logger.With(args...), level: l.level, masker: l.masker}
}

func (l *Logger) WithComponent(component string) *Logger {
	return l.with("component", component)
}

// WithStep adds the step name. Unnamed steps add nothing.
func (l *Logger) WithStep(name string) *Logger {
	if name == "" {
		return l
	}
	return l.with("step", name)
}

func (l *Logger) WithRequest(method, url string) *Logger {
	return l.with("method", method, "url", url)
}

func (l *Logger) WithStore(storeType string) *Logger {
	return l.with("store", storeType)
}

func (l *Logger) WithRun(runID string) *Logger {
	return l.with("run_id", runID)
}

var defaultLogger = NewLogger(LogLevelInfo)

// SetDefaultLogger replaces the process-wide logger.
func SetDefaultLogger(logger *Logger) {
	defaultLogger = logger
}

func GetLogger() *Logger {
	return defaultLogger
}

// LogWarn logs on the process-wide logger.
func LogWarn(msg string, attrs ...any) {
	defaultLogger.Warn(msg, attrs...)
}
