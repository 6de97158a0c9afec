package httpc

import (
	"crypto/tls"
	"crypto/x509"
	"os"

	"github.com/loykin/httpstep/internal/errdefs"
	"github.com/loykin/httpstep/internal/util"
)

// parseTLSVersion maps "1.2", "tls12", "TLS1.3" etc. to a tls version
// constant; unknown input yields 0.
func parseTLSVersion(version string) uint16 {
	switch util.TrimAndLower(version) {
	case "1.0", "10", "tls1.0", "tls10":
		return tls.VersionTLS10
	case "1.1", "11", "tls1.1", "tls11":
		return tls.VersionTLS11
	case "1.2", "12", "tls1.2", "tls12":
		return tls.VersionTLS12
	case "1.3", "13", "tls1.3", "tls13":
		return tls.VersionTLS13
	default:
		return 0
	}
}

// TLSConfig builds the client TLS settings. It returns nil when every TLS
// option is left at its default so the transport keeps Go's defaults.
func (o Options) TLSConfig() (*tls.Config, error) {
	if !o.InsecureSkipVerify() && o.SSLCAFile == "" && o.SSLLocalCert == "" &&
		o.MinTLSVersion == "" && o.MaxTLSVersion == "" {
		return nil, nil
	}
	cfg := &tls.Config{
		InsecureSkipVerify: o.InsecureSkipVerify(), //nolint:gosec // opt-in via ssl_verify_peer/ssl_verify_host
		MinVersion:         parseTLSVersion(o.MinTLSVersion),
		MaxVersion:         parseTLSVersion(o.MaxTLSVersion),
	}
	if cfg.MinVersion == 0 {
		cfg.MinVersion = tls.VersionTLS12
	}
	if cfg.MaxVersion != 0 && cfg.MaxVersion < cfg.MinVersion {
		return nil, errdefs.Config("transport config", "max_tls_version is lower than min_tls_version")
	}

	if o.SSLCAFile != "" {
		pem, err := os.ReadFile(o.SSLCAFile)
		if err != nil {
			return nil, errdefs.Config("transport config", "read ssl_cafile: %v", err)
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(pem) {
			return nil, errdefs.Config("transport config", "ssl_cafile %s holds no PEM certificates", o.SSLCAFile)
		}
		cfg.RootCAs = pool
	}

	if o.SSLLocalCert != "" {
		keyFile := o.SSLLocalKey
		if keyFile == "" {
			keyFile = o.SSLLocalCert
		}
		cert, err := tls.LoadX509KeyPair(o.SSLLocalCert, keyFile)
		if err != nil {
			return nil, errdefs.Config("transport config", "load client certificate: %v", err)
		}
		cfg.Certificates = []tls.Certificate{cert}
	}
	return cfg, nil
}
