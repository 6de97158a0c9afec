package httpc

import (
	"fmt"
	"net"
	"net/url"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/loykin/httpstep/internal/constants"
	"github.com/loykin/httpstep/internal/errdefs"
	"github.com/loykin/httpstep/internal/params"
)

// Options is the decoded form of a step's transport configuration entries.
type Options struct {
	Timeout         time.Duration `mapstructure:"timeout"`
	ConnectTimeout  time.Duration `mapstructure:"connect_timeout"`
	FollowRedirects bool          `mapstructure:"follow_redirects"`
	MaxRedirects    int           `mapstructure:"max_redirects"`

	Proxy         string `mapstructure:"proxy"`
	ProxyHost     string `mapstructure:"proxy_host"`
	ProxyPort     int    `mapstructure:"proxy_port"`
	ProxyUser     string `mapstructure:"proxy_user"`
	ProxyPassword string `mapstructure:"proxy_password"`

	SSLVerifyPeer bool   `mapstructure:"ssl_verify_peer"`
	SSLVerifyHost bool   `mapstructure:"ssl_verify_host"`
	SSLCAFile     string `mapstructure:"ssl_cafile"`
	SSLLocalCert  string `mapstructure:"ssl_local_cert"`
	SSLLocalKey   string `mapstructure:"ssl_local_key"`
	MinTLSVersion string `mapstructure:"min_tls_version"`
	MaxTLSVersion string `mapstructure:"max_tls_version"`

	UserAgent string `mapstructure:"user_agent"`
}

// DefaultOptions returns the transport settings used when no entry overrides them.
func DefaultOptions() Options {
	return Options{
		FollowRedirects: constants.DefaultFollowRedirects,
		MaxRedirects:    constants.DefaultMaxRedirects,
		SSLVerifyPeer:   constants.DefaultSSLVerifyPeer,
		SSLVerifyHost:   constants.DefaultSSLVerifyHost,
	}
}

// NormalizeKey lowercases a config key and maps '-' to '_'.
func NormalizeKey(k string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(k)), "-", "_")
}

// ParseOptions folds the entries in order (a later entry for the same key
// replaces an earlier one) and decodes them over DefaultOptions.
func ParseOptions(entries params.Set) (Options, error) {
	opts := DefaultOptions()
	if entries.Len() == 0 {
		return opts, nil
	}
	raw := make(map[string]interface{}, entries.Len())
	for _, p := range entries.Pairs() {
		key := NormalizeKey(p.Name)
		if key == "" {
			return opts, errdefs.Config("transport config", "empty config key")
		}
		raw[key] = strings.TrimSpace(p.Value)
	}

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       secondsOrDurationHook,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		Result:           &opts,
	})
	if err != nil {
		return opts, errdefs.Config("transport config", "%v", err)
	}
	if err := dec.Decode(raw); err != nil {
		return DefaultOptions(), errdefs.Config("transport config", "%v", err)
	}
	if err := opts.validate(); err != nil {
		return DefaultOptions(), err
	}
	return opts, nil
}

// secondsOrDurationHook accepts "30", "1.5" (seconds) or "500ms" for
// time.Duration fields.
func secondsOrDurationHook(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
	if from.Kind() != reflect.String || to != reflect.TypeOf(time.Duration(0)) {
		return data, nil
	}
	s := strings.TrimSpace(data.(string))
	if s == "" {
		return time.Duration(0), nil
	}
	if secs, err := strconv.ParseFloat(s, 64); err == nil {
		return time.Duration(secs * float64(time.Second)), nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return nil, fmt.Errorf("invalid duration %q", s)
	}
	return d, nil
}

func (o Options) validate() error {
	if o.Timeout < 0 || o.ConnectTimeout < 0 {
		return errdefs.Config("transport config", "timeouts must not be negative")
	}
	if o.MaxRedirects < 0 {
		return errdefs.Config("transport config", "max_redirects must not be negative")
	}
	if o.ProxyPort < 0 || o.ProxyPort > 65535 {
		return errdefs.Config("transport config", "proxy_port %d out of range", o.ProxyPort)
	}
	if o.Proxy != "" {
		if _, err := o.ProxyURL(); err != nil {
			return err
		}
	}
	if v := strings.TrimSpace(o.MinTLSVersion); v != "" && parseTLSVersion(v) == 0 {
		return errdefs.Config("transport config", "unknown min_tls_version %q", v)
	}
	if v := strings.TrimSpace(o.MaxTLSVersion); v != "" && parseTLSVersion(v) == 0 {
		return errdefs.Config("transport config", "unknown max_tls_version %q", v)
	}
	if o.SSLLocalKey != "" && o.SSLLocalCert == "" {
		return errdefs.Config("transport config", "ssl_local_key requires ssl_local_cert")
	}
	return nil
}

// ProxyURL returns the explicit proxy, or nil when none is configured.
// "proxy" wins over the proxy_host/proxy_port pair.
func (o Options) ProxyURL() (*url.URL, error) {
	var u *url.URL
	switch {
	case o.Proxy != "":
		raw := o.Proxy
		if !strings.Contains(raw, "://") {
			raw = "http://" + raw
		}
		parsed, err := url.Parse(raw)
		if err != nil || parsed.Host == "" {
			return nil, errdefs.Config("transport config", "invalid proxy %q", o.Proxy)
		}
		u = parsed
	case o.ProxyHost != "":
		host := o.ProxyHost
		if o.ProxyPort > 0 {
			host = net.JoinHostPort(o.ProxyHost, strconv.Itoa(o.ProxyPort))
		}
		u = &url.URL{Scheme: "http", Host: host}
	default:
		return nil, nil
	}
	if o.ProxyUser != "" {
		u.User = url.UserPassword(o.ProxyUser, o.ProxyPassword)
	}
	return u, nil
}

// InsecureSkipVerify reports whether either verification switch is off.
func (o Options) InsecureSkipVerify() bool {
	return !o.SSLVerifyPeer || !o.SSLVerifyHost
}
