package httpc

import (
	"crypto/tls"
	"testing"

	"github.com/loykin/httpstep/internal/errdefs"
	"github.com/loykin/httpstep/internal/params"
)

// FuzzParseTLSVersion ensures parseTLSVersion only returns known versions or 0.
func FuzzParseTLSVersion(f *testing.F) {
	for _, s := range []string{"", "1.2", "tls1.3", "TLS13", "weird-input!!"} {
		f.Add(s)
	}
	f.Fuzz(func(t *testing.T, s string) {
		switch v := parseTLSVersion(s); v {
		case 0, tls.VersionTLS10, tls.VersionTLS11, tls.VersionTLS12, tls.VersionTLS13:
		default:
			t.Fatalf("unexpected tls version: %v", v)
		}
	})
}

// FuzzParseOptions checks that arbitrary entries either decode or fail with
// a ConfigError, never anything else.
func FuzzParseOptions(f *testing.F) {
	f.Add("timeout", "30")
	f.Add("follow-redirects", "false")
	f.Add("proxy", "http://[::1")
	f.Add("bogus", "x")
	f.Fuzz(func(t *testing.T, key, value string) {
		_, err := ParseOptions(params.New(params.Param{Name: key, Value: value}))
		if err != nil && !errdefs.IsConfig(err) {
			t.Fatalf("ParseOptions(%q=%q) returned non-config error %T: %v", key, value, err, err)
		}
	})
}
