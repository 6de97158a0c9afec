package main

import (
	"strings"

	"github.com/loykin/httpstep/internal/config"
	"github.com/loykin/httpstep/internal/errdefs"
	"github.com/loykin/httpstep/internal/params"
	"github.com/loykin/httpstep/internal/util"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const envPrefix = "HTTPSTEP"

func addFileFlag(cmd *cobra.Command) {
	cmd.Flags().StringP("file", "f", "", "path to a step yaml file")
}

func addStepFlags(cmd *cobra.Command) {
	addFileFlag(cmd)
	f := cmd.Flags()
	f.String("url", "", "request URL (http or https)")
	f.String("response-regex", "", "pattern the response body must contain; /pattern/flags form accepted")
	f.Bool("verbose", false, "log request lifecycle events")
	f.String("observer-events", "", "lifecycle events to log when verbose, separated by comma, space or semicolon")
	f.String("method", "", "HTTP method (default GET)")
	f.String("auth-user", "", "user name; empty disables authentication")
	f.String("auth-password", "", "password")
	f.String("auth-scheme", "", "Basic (default) or Digest")
	f.StringArray("header", nil, "request header as name=value (repeatable)")
	f.StringArray("config", nil, "transport option as key=value (repeatable)")
	f.StringArray("post-param", nil, "POST field as name=value (repeatable)")
	f.String("log-level", "", "error, warn, info or debug")
	f.String("log-format", "", "text, json or color")
}

// newViper binds the command flags and HTTPSTEP_* environment variables.
// Flag names map to variables by upper-casing and replacing '-' with '_'.
func newViper(cmd *cobra.Command) *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	_ = v.BindPFlags(cmd.Flags())
	return v
}

// loadStepFile reads --file (if any) and layers flag and environment
// overrides on top of it.
func loadStepFile(cmd *cobra.Command) (*config.StepFile, error) {
	v := newViper(cmd)
	f := &config.StepFile{}
	if path, ok := util.TrimEmptyCheck(v.GetString("file")); ok {
		loaded, err := config.Load(path)
		if err != nil {
			return nil, err
		}
		f = loaded
	}
	if err := applyOverrides(cmd, v, f); err != nil {
		return nil, err
	}
	return f, nil
}

func applyOverrides(cmd *cobra.Command, v *viper.Viper, f *config.StepFile) error {
	strs := []struct {
		key string
		dst *string
	}{
		{"url", &f.URL},
		{"response-regex", &f.ResponseRegex},
		{"observer-events", &f.ObserverEvents},
		{"method", &f.Method},
		{"auth-user", &f.Auth.User},
		{"auth-password", &f.Auth.Password},
		{"auth-scheme", &f.Auth.Scheme},
		{"log-level", &f.Logging.Level},
		{"log-format", &f.Logging.Format},
	}
	for _, s := range strs {
		if cmd.Flags().Lookup(s.key) != nil && v.IsSet(s.key) {
			*s.dst = v.GetString(s.key)
		}
	}
	if cmd.Flags().Lookup("verbose") != nil && v.IsSet("verbose") {
		f.Verbose = v.GetBool("verbose")
	}

	lists := []struct {
		flag string
		dst  *[]params.Param
	}{
		{"header", &f.Headers},
		{"config", &f.Config},
		{"post-param", &f.PostParameters},
	}
	for _, l := range lists {
		if cmd.Flags().Lookup(l.flag) == nil {
			continue
		}
		vals, err := cmd.Flags().GetStringArray(l.flag)
		if err != nil {
			return errdefs.Config("flags", "--%s: %w", l.flag, err)
		}
		for _, raw := range vals {
			p, err := parsePair(raw)
			if err != nil {
				return errdefs.Config("flags", "--%s: %w", l.flag, err)
			}
			*l.dst = append(*l.dst, p)
		}
	}
	return nil
}

type pairError string

func (e pairError) Error() string { return "expected name=value, got " + string(e) }

func parsePair(raw string) (params.Param, error) {
	name, value, ok := strings.Cut(raw, "=")
	if !ok || strings.TrimSpace(name) == "" {
		return params.Param{}, pairError(raw)
	}
	return params.Param{Name: strings.TrimSpace(name), Value: value}, nil
}
