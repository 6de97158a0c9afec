package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/loykin/httpstep/internal/common"
	"github.com/loykin/httpstep/internal/errdefs"
	"github.com/loykin/httpstep/internal/observer"
	"github.com/loykin/httpstep/internal/params"
	"github.com/loykin/httpstep/internal/security"
	"github.com/loykin/httpstep/internal/step"
	"github.com/loykin/httpstep/internal/store"
	"github.com/loykin/httpstep/internal/util"
	"github.com/loykin/httpstep/pkg/env"
	"gopkg.in/yaml.v3"
)

type AuthConfig struct {
	User     string `mapstructure:"user" yaml:"user"`
	Password string `mapstructure:"password" yaml:"password"`
	// Basic (default) or Digest
	Scheme string `mapstructure:"scheme" yaml:"scheme"`
}

type EnvConfig struct {
	Name         string `mapstructure:"name" yaml:"name"`
	Value        string `mapstructure:"value" yaml:"value"`
	ValueFromEnv string `mapstructure:"valueFromEnv" yaml:"valueFromEnv"`
}

type LoggingConfig struct {
	Level         string `mapstructure:"level" yaml:"level"`                   // error, warn, info, debug
	Format        string `mapstructure:"format" yaml:"format"`                 // text, json, color
	MaskSensitive *bool  `mapstructure:"mask_sensitive" yaml:"mask_sensitive"` // defaults to true
	Color         *bool  `mapstructure:"color" yaml:"color"`
}

type SQLiteHistoryConfig struct {
	Path          string `mapstructure:"path" yaml:"path"`
	BusyTimeoutMS int    `mapstructure:"busy_timeout_ms" yaml:"busy_timeout_ms"`
}

type HistoryConfig struct {
	Enabled          bool                 `mapstructure:"enabled" yaml:"enabled"`
	Type             string               `mapstructure:"type" yaml:"type"`
	SaveResponseBody bool                 `mapstructure:"save_response_body" yaml:"save_response_body"`
	Table            string               `mapstructure:"table" yaml:"table"`
	SQLite           SQLiteHistoryConfig  `mapstructure:"sqlite" yaml:"sqlite"`
	Postgres         store.PostgresConfig `mapstructure:"postgres" yaml:"postgres"`
}

// StoreConfig converts the history section for store.Open.
func (h HistoryConfig) StoreConfig() store.Config {
	cfg := store.Config{Driver: util.TrimAndLower(h.Type), TableName: h.Table}
	switch cfg.Driver {
	case store.DriverPostgresql, "postgres":
		pg := h.Postgres
		cfg.DriverConfig = &pg
	default:
		if path, ok := util.TrimEmptyCheck(h.SQLite.Path); ok {
			cfg.DriverConfig = &store.SqliteConfig{Path: path, BusyTimeoutMS: h.SQLite.BusyTimeoutMS}
		}
	}
	return cfg
}

// StepFile is the YAML document describing one step.
type StepFile struct {
	Name           string `mapstructure:"name" yaml:"name"`
	URL            string `mapstructure:"url" yaml:"url"`
	ResponseRegex  string `mapstructure:"response_regex" yaml:"response_regex"`
	Verbose        bool   `mapstructure:"verbose" yaml:"verbose"`
	ObserverEvents string `mapstructure:"observer_events" yaml:"observer_events"`
	Method         string `mapstructure:"method" yaml:"method"`

	Auth           AuthConfig     `mapstructure:"auth" yaml:"auth"`
	Headers        []params.Param `mapstructure:"headers" yaml:"headers"`
	Config         []params.Param `mapstructure:"config" yaml:"config"`
	PostParameters []params.Param `mapstructure:"post_parameters" yaml:"post_parameters"`

	StatusCodes    []int             `mapstructure:"status_codes" yaml:"status_codes"`
	Outputs        map[string]string `mapstructure:"outputs" yaml:"outputs"`
	OutputsMissing string            `mapstructure:"outputs_missing" yaml:"outputs_missing"`
	OutputFile     string            `mapstructure:"output_file" yaml:"output_file"`

	Env         []EnvConfig   `mapstructure:"env" yaml:"env"`
	Logging     LoggingConfig `mapstructure:"logging" yaml:"logging"`
	History     HistoryConfig `mapstructure:"history" yaml:"history"`
	MetricsFile string        `mapstructure:"metrics_file" yaml:"metrics_file"`
}

// Load reads a step file. Any failure is a ConfigError.
func Load(path string) (*StepFile, error) {
	f := &StepFile{}
	if err := f.Load(path); err != nil {
		return nil, err
	}
	return f, nil
}

func (c *StepFile) Load(path string) error {
	clean := filepath.Clean(path)
	info, err := os.Stat(clean)
	if err != nil {
		return errdefs.Config("load", "%w", err)
	}
	if !info.Mode().IsRegular() {
		return errdefs.Config("load", "not a regular file: %s", clean)
	}
	// #nosec G304 -- step file path is chosen by the operator
	fh, err := os.Open(clean)
	if err != nil {
		return errdefs.Config("load", "%w", err)
	}
	defer func() { _ = fh.Close() }()
	dec := yaml.NewDecoder(fh)
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil {
		return errdefs.Config("load", "%s: %w", clean, err)
	}
	return c.CheckTemplates()
}

// CheckTemplates rejects templated values that do more than read variables.
func (c *StepFile) CheckTemplates() error {
	checker := security.NewTemplateChecker()
	fields := []struct {
		name, value string
	}{
		{"url", c.URL},
		{"auth.user", c.Auth.User},
		{"auth.password", c.Auth.Password},
	}
	for _, list := range []struct {
		name string
		ps   []params.Param
	}{{"headers", c.Headers}, {"config", c.Config}, {"post_parameters", c.PostParameters}} {
		for _, p := range list.ps {
			fields = append(fields, struct{ name, value string }{list.name + "." + p.Name, p.Value})
		}
	}
	for _, f := range fields {
		if err := checker.Check(f.value); err != nil {
			return errdefs.Config("template", "%s: %w", f.name, err)
		}
	}
	return nil
}

// GetEnv builds the template environment from the env list. valueFromEnv is
// consulted only when value is empty.
func (c *StepFile) GetEnv() *env.Env {
	base := env.New()
	for _, kv := range c.Env {
		name, ok := util.TrimEmptyCheck(kv.Name)
		if !ok {
			continue
		}
		val := kv.Value
		if envVar, hasEnvVar := util.TrimEmptyCheck(kv.ValueFromEnv); val == "" && hasEnvVar {
			val = os.Getenv(envVar)
			if val == "" {
				common.LogWarn("env variable requested but empty or not set", "name", name, "env_var", envVar)
			}
		}
		_ = base.SetString("global", name, val)
	}
	return base
}

// ToStepConfig renders templates with e (GetEnv when nil) and returns the
// controller configuration. Semantic checks are left to the controller.
func (c *StepFile) ToStepConfig(e *env.Env) step.Config {
	if e == nil {
		e = c.GetEnv()
	}
	cfg := step.Config{
		Name:            c.Name,
		URL:             util.RenderString(c.URL, e),
		ResponseRegex:   c.ResponseRegex,
		Verbose:         c.Verbose,
		Method:          c.Method,
		AuthUser:        util.RenderString(c.Auth.User, e),
		AuthPassword:    util.RenderString(c.Auth.Password, e),
		AuthScheme:      c.Auth.Scheme,
		Headers:         util.RenderParams(params.New(c.Headers...), e),
		TransportConfig: util.RenderParams(params.New(c.Config...), e),
		PostParameters:  util.RenderParams(params.New(c.PostParameters...), e),
		StatusCodes:     append([]int(nil), c.StatusCodes...),
		Outputs:         c.Outputs,
		OutputsMissing:  c.OutputsMissing,
	}
	if _, ok := util.TrimEmptyCheck(c.ObserverEvents); ok {
		cfg.ObserverEvents = observer.ParseEvents(c.ObserverEvents)
	}
	return cfg
}

// OpenHistory opens the history store, or returns nil when history is off.
func (c *StepFile) OpenHistory() (*store.Store, error) {
	if !c.History.Enabled {
		return nil, nil
	}
	st, err := store.Open(c.History.StoreConfig())
	if err != nil {
		return nil, fmt.Errorf("history: %w", err)
	}
	return st, nil
}

// Hooks returns the post-run hooks the file asks for. A history store that
// cannot be opened is logged and skipped. The caller closes the returned
// store, if any.
func (c *StepFile) Hooks() ([]step.Hook, *store.Store) {
	var hooks []step.Hook
	st, err := c.OpenHistory()
	if err != nil {
		common.LogWarn("run history disabled", "error", err)
	}
	if st != nil {
		hooks = append(hooks, step.HistoryHook(st, c.History.SaveResponseBody))
	}
	if path, ok := util.TrimEmptyCheck(c.MetricsFile); ok {
		hooks = append(hooks, step.MetricsHook(path))
	}
	if path, ok := util.TrimEmptyCheck(c.OutputFile); ok {
		hooks = append(hooks, step.OutputFileHook(path))
	}
	return hooks, st
}
