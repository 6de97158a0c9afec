package constants

import (
	"net/http"
	"time"
)

// Request defaults
const (
	DefaultMethod     = http.MethodGet
	DefaultAuthScheme = "Basic"
	AuthSchemeDigest  = "Digest"
)

// Transport defaults applied when no config entry overrides them.
const (
	DefaultFollowRedirects = true
	DefaultMaxRedirects    = 10
	DefaultSSLVerifyPeer   = true
	DefaultSSLVerifyHost   = true
)

// Observer event list delimiters (space, comma, semicolon).
const ObserverEventDelimiters = " ,;"

// History store constants
const (
	DefaultPostgresPort    = 5432
	DefaultPostgresSSLMode = "disable"

	DefaultHistoryFile  = "httpstep.db"
	DefaultStepRunTable = "step_runs"

	DefaultSQLiteMaxConnections   = 1 // SQLite allows only one writer
	DefaultSQLiteMaxIdleConns     = 1
	DefaultPostgresMaxConnections = 5
	DefaultPostgresMaxIdleConns   = 1

	DefaultMaxConnLifetime = 5 * time.Minute
	DefaultMaxIdleTime     = 1 * time.Minute
)

// Output handling
const (
	OutputsMissingSkip = "skip"
	OutputsMissingFail = "fail"
)
