package httpc

import (
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/loykin/httpstep/internal/common"
	"github.com/loykin/httpstep/internal/constants"
	"github.com/loykin/httpstep/internal/errdefs"
)

const (
	defaultConnectTimeout      = 30 * time.Second
	defaultTLSHandshakeTimeout = 10 * time.Second
)

// Httpc builds one resty client per step invocation. Clients are never
// pooled or shared: each one owns a transport with keep-alives disabled.
type Httpc struct {
	Options Options
	// Base replaces the generated *http.Transport when set. Proxy and TLS
	// options are not applied to it.
	Base http.RoundTripper
	// Wrap decorates the final round tripper (lifecycle observation).
	Wrap   func(http.RoundTripper) http.RoundTripper
	Logger *common.Logger
}

// New returns a resty.Client configured from the receiver's options.
func (h *Httpc) New() (*resty.Client, error) {
	rt := h.Base
	if rt == nil {
		tr, err := h.Options.Transport()
		if err != nil {
			return nil, err
		}
		rt = tr
	}
	if h.Wrap != nil {
		rt = h.Wrap(rt)
	}

	logger := h.Logger
	if logger == nil {
		logger = common.GetLogger()
	}
	c := resty.New().
		SetTransport(rt).
		SetLogger(restyLogger{l: logger.WithComponent("httpc")}).
		SetDisableWarn(true)

	if h.Options.Timeout > 0 {
		c.SetTimeout(h.Options.Timeout)
	}
	if h.Options.FollowRedirects {
		c.SetRedirectPolicy(resty.FlexibleRedirectPolicy(h.Options.MaxRedirects))
	} else {
		c.SetRedirectPolicy(resty.RedirectPolicyFunc(func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		}))
	}
	if ua := strings.TrimSpace(h.Options.UserAgent); ua != "" {
		c.SetHeader("User-Agent", ua)
	}
	return c, nil
}

// Transport builds the per-invocation *http.Transport.
func (o Options) Transport() (*http.Transport, error) {
	tlsCfg, err := o.TLSConfig()
	if err != nil {
		return nil, err
	}
	proxyURL, err := o.ProxyURL()
	if err != nil {
		return nil, err
	}
	connectTimeout := o.ConnectTimeout
	if connectTimeout == 0 {
		connectTimeout = defaultConnectTimeout
	}
	tr := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		DialContext:         (&net.Dialer{Timeout: connectTimeout}).DialContext,
		TLSClientConfig:     tlsCfg,
		TLSHandshakeTimeout: defaultTLSHandshakeTimeout,
		DisableKeepAlives:   true,
		ForceAttemptHTTP2:   true,
	}
	if proxyURL != nil {
		tr.Proxy = http.ProxyURL(proxyURL)
	}
	return tr, nil
}

// ApplyAuth sets client credentials for the given scheme.
func ApplyAuth(c *resty.Client, scheme, user, password string) error {
	switch NormalizeAuthScheme(scheme) {
	case constants.DefaultAuthScheme:
		c.SetBasicAuth(user, password)
	case constants.AuthSchemeDigest:
		// resty wraps the transport that is current at call time, so this
		// must run after SetTransport.
		c.SetDigestAuth(user, password)
	default:
		return errdefs.Config("auth", "unsupported auth scheme %q", scheme)
	}
	return nil
}

// NormalizeAuthScheme returns the canonical scheme name ("Basic", "Digest"),
// the default for an empty value, or "" for an unknown scheme.
func NormalizeAuthScheme(scheme string) string {
	switch strings.ToLower(strings.TrimSpace(scheme)) {
	case "", "basic":
		return constants.DefaultAuthScheme
	case "digest":
		return constants.AuthSchemeDigest
	default:
		return ""
	}
}

// restyLogger routes resty's own diagnostics into the structured logger.
type restyLogger struct {
	l *common.Logger
}

func (r restyLogger) Errorf(format string, v ...interface{}) {
	r.l.Error(strings.TrimSpace(fmt.Sprintf(format, v...)))
}

func (r restyLogger) Warnf(format string, v ...interface{}) {
	r.l.Warn(strings.TrimSpace(fmt.Sprintf(format, v...)))
}

func (r restyLogger) Debugf(format string, v ...interface{}) {
	r.l.Debug(strings.TrimSpace(fmt.Sprintf(format, v...)))
}
