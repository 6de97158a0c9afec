package request

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/loykin/httpstep/internal/constants"
	"github.com/loykin/httpstep/internal/errdefs"
	"github.com/loykin/httpstep/internal/httpc"
	"github.com/loykin/httpstep/internal/params"
	"golang.org/x/net/http/httpguts"
)

// Spec is a fully assembled, immutable request description. The parameter
// sets it holds are private copies of the builder input.
type Spec struct {
	URL    string
	Method string

	AuthUser     string
	AuthPassword string
	AuthScheme   string

	Headers         params.Set
	TransportConfig params.Set
	PostParameters  params.Set
}

// HasAuth reports whether credentials are attached.
func (s Spec) HasAuth() bool { return s.AuthUser != "" }

// SendsPostParameters reports whether the POST fields go on the wire.
// Parameters configured for any other method are never transmitted.
func (s Spec) SendsPostParameters() bool {
	return s.Method == http.MethodPost && s.PostParameters.Len() > 0
}

// Input holds the raw step fields a Spec is assembled from.
type Input struct {
	URL          string
	Method       string
	AuthUser     string
	AuthPassword string
	AuthScheme   string

	Headers         params.Set
	TransportConfig params.Set
	PostParameters  params.Set
}

type stage struct {
	name  string
	apply func(*Spec, Input) error
}

// stages run in a fixed order: url, auth, transport config, headers, method.
var stages = []stage{
	{"url", applyURL},
	{"auth", applyAuth},
	{"transport config", applyTransportConfig},
	{"headers", applyHeaders},
	{"method", applyMethod},
}

// Build validates in and assembles a Spec. Every failure is a ConfigError and
// happens before any network activity.
func Build(in Input) (Spec, error) {
	var s Spec
	for _, st := range stages {
		if err := st.apply(&s, in); err != nil {
			return Spec{}, err
		}
	}
	return s, nil
}

func applyURL(s *Spec, in Input) error {
	raw := strings.TrimSpace(in.URL)
	if raw == "" {
		return errdefs.Config("url", "url is required")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return errdefs.Config("url", "invalid url %q: %v", raw, err)
	}
	if scheme := strings.ToLower(u.Scheme); scheme != "http" && scheme != "https" {
		return errdefs.Config("url", "unsupported url scheme %q (want http or https)", u.Scheme)
	}
	if u.Host == "" {
		return errdefs.Config("url", "url %q has no host", raw)
	}
	s.URL = raw
	return nil
}

func applyAuth(s *Spec, in Input) error {
	if in.AuthUser == "" {
		return nil
	}
	scheme := httpc.NormalizeAuthScheme(in.AuthScheme)
	if scheme == "" {
		return errdefs.Config("auth", "unsupported auth scheme %q (want %s or %s)",
			in.AuthScheme, constants.DefaultAuthScheme, constants.AuthSchemeDigest)
	}
	s.AuthUser = in.AuthUser
	s.AuthPassword = in.AuthPassword
	s.AuthScheme = scheme
	return nil
}

func applyTransportConfig(s *Spec, in Input) error {
	if _, err := httpc.ParseOptions(in.TransportConfig); err != nil {
		return err
	}
	s.TransportConfig = in.TransportConfig.Clone()
	return nil
}

func applyHeaders(s *Spec, in Input) error {
	for _, h := range in.Headers.Pairs() {
		if !httpguts.ValidHeaderFieldName(h.Name) {
			return errdefs.Config("headers", "invalid header name %q", h.Name)
		}
		if !httpguts.ValidHeaderFieldValue(h.Value) {
			return errdefs.Config("headers", "header %s has an invalid value", h.Name)
		}
	}
	s.Headers = in.Headers.Clone()
	return nil
}

func applyMethod(s *Spec, in Input) error {
	m := strings.ToUpper(strings.TrimSpace(in.Method))
	if m == "" {
		m = constants.DefaultMethod
	}
	if !httpguts.ValidHeaderFieldName(m) {
		return errdefs.Config("method", "invalid method %q", in.Method)
	}
	s.Method = m
	if m == http.MethodPost {
		s.PostParameters = in.PostParameters.Clone()
	}
	return nil
}
