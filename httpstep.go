package httpstep

import (
	"context"

	"github.com/loykin/httpstep/internal/common"
	"github.com/loykin/httpstep/internal/config"
	"github.com/loykin/httpstep/internal/errdefs"
	"github.com/loykin/httpstep/internal/observer"
	"github.com/loykin/httpstep/internal/params"
	"github.com/loykin/httpstep/internal/step"
	"github.com/loykin/httpstep/internal/store"
	"github.com/loykin/httpstep/pkg/env"
)

// Re-export commonly used types for the public API
type (
	Step     = step.Config
	Report   = step.Report
	Hook     = step.Hook
	HookFunc = step.HookFunc
	StepFile = config.StepFile
	Env      = env.Env
	Param    = params.Param
	Params   = params.Set
)

type EventKind = observer.EventKind

const (
	EventConnect          = observer.Connect
	EventSentHeaders      = observer.SentHeaders
	EventSentBodyPart     = observer.SentBodyPart
	EventSentBody         = observer.SentBody
	EventReceivedHeaders  = observer.ReceivedHeaders
	EventReceivedBodyPart = observer.ReceivedBodyPart
	EventReceivedBody     = observer.ReceivedBody
	EventDisconnect       = observer.Disconnect
)

// DefaultEvents is the event set used when verbose is on and none is given.
func DefaultEvents() []EventKind { return observer.DefaultEvents() }

// ParseEvents splits a comma, space or semicolon separated list of events.
func ParseEvents(s string) []EventKind { return observer.ParseEvents(s) }

// NewParams builds an ordered name/value set; duplicates are kept.
func NewParams(ps ...Param) Params { return params.New(ps...) }

// Run executes one step with the global logger. Hooks, if any, run after it.
func Run(ctx context.Context, s Step, hooks ...Hook) (*Report, error) {
	return step.NewController(step.WithHooks(hooks...)).Run(ctx, s)
}

// Check validates s and compiles its pattern without any network call.
func Check(s Step) error {
	_, _, err := step.NewController().Prepare(s)
	return err
}

// LoadStepFile reads a YAML step file.
func LoadStepFile(path string) (*StepFile, error) { return config.Load(path) }

// History
type (
	Store          = store.Store
	StoreConfig    = store.Config
	StoredRun      = store.Run
	SqliteConfig   = store.SqliteConfig
	PostgresConfig = store.PostgresConfig
)

const (
	DriverSqlite     = store.DriverSqlite
	DriverPostgresql = store.DriverPostgresql
)

func OpenStore(cfg StoreConfig) (*Store, error) { return store.Open(cfg) }

// HistoryHook records every run in st.
func HistoryHook(st *Store, saveBody bool) Hook { return step.HistoryHook(st, saveBody) }

// MetricsHook writes a Prometheus textfile after every run.
func MetricsHook(path string) Hook { return step.MetricsHook(path) }

// Errors
type (
	ConfigError     = errdefs.ConfigError
	TransportError  = errdefs.TransportError
	ValidationError = errdefs.ValidationError
)

func IsConfigError(err error) bool { return errdefs.IsConfig(err) }
func IsTransportError(err error) bool { return errdefs.IsTransport(err) }
func IsValidationError(err error) bool { return errdefs.IsValidation(err) }

// ExitCode maps err to 0 (success), 1 (validation), 2 (config),
// 3 (transport) or 4.
func ExitCode(err error) int { return errdefs.ExitCode(err) }

// Logging
type (
	Logger   = common.Logger
	LogLevel = common.LogLevel
)

const (
	LogLevelError = common.LogLevelError
	LogLevelWarn  = common.LogLevelWarn
	LogLevelInfo  = common.LogLevelInfo
	LogLevelDebug = common.LogLevelDebug
)

func NewLogger(level LogLevel) *Logger { return common.NewLogger(level) }
func NewJSONLogger(level LogLevel) *Logger { return common.NewJSONLogger(level) }
func NewColorLogger(level LogLevel) *Logger { return common.NewColorLogger(level) }
func SetDefaultLogger(logger *Logger) { common.SetDefaultLogger(logger) }
func GetLogger() *Logger { return common.GetLogger() }

// EnableMasking toggles masking of credentials in log output.
func EnableMasking(enabled bool) { common.EnableMasking(enabled) }
func IsMaskingEnabled() bool { return common.IsMaskingEnabled() }
func MaskSensitiveData(s string) string {
	return common.MaskSensitiveData(s)
}
