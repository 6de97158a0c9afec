package errdefs

import (
	"errors"
	"fmt"
)

// Exit codes reported to the host pipeline.
const (
	ExitOK         = 0
	ExitValidation = 1
	ExitConfig     = 2
	ExitTransport  = 3
	ExitUnknown    = 4
)

// ConfigError reports a missing or structurally invalid input. It is always
// raised before any network activity.
type ConfigError struct {
	Op  string
	Err error
}

func (e *ConfigError) Error() string {
	if e.Op == "" {
		return fmt.Sprintf("config: %v", e.Err)
	}
	return fmt.Sprintf("config: %s: %v", e.Op, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// TransportError wraps any fault raised while exchanging the request:
// connection failures, timeouts and unparsable responses.
type TransportError struct {
	Op  string
	URL string
	Err error
}

func (e *TransportError) Error() string {
	if e.URL == "" {
		return fmt.Sprintf("transport: %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("transport: %s %s: %v", e.Op, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ValidationError reports a response that completed but did not satisfy the
// configured expectations.
type ValidationError struct {
	Op  string
	Err error
}

func (e *ValidationError) Error() string {
	if e.Op == "" {
		return fmt.Sprintf("validation: %v", e.Err)
	}
	return fmt.Sprintf("validation: %s: %v", e.Op, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// Config builds a ConfigError from a formatted message.
func Config(op, format string, args ...any) error {
	return &ConfigError{Op: op, Err: fmt.Errorf(format, args...)}
}

// Validation builds a ValidationError from a formatted message.
func Validation(op, format string, args ...any) error {
	return &ValidationError{Op: op, Err: fmt.Errorf(format, args...)}
}

// Transport wraps err as a TransportError unless it already is one.
func Transport(op, url string, err error) error {
	if err == nil {
		return nil
	}
	var te *TransportError
	if errors.As(err, &te) {
		return err
	}
	return &TransportError{Op: op, URL: url, Err: err}
}

func IsConfig(err error) bool {
	var e *ConfigError
	return errors.As(err, &e)
}

func IsTransport(err error) bool {
	var e *TransportError
	return errors.As(err, &e)
}

func IsValidation(err error) bool {
	var e *ValidationError
	return errors.As(err, &e)
}

// ExitCode maps an error returned by a step run to a process exit code.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case IsConfig(err):
		return ExitConfig
	case IsTransport(err):
		return ExitTransport
	case IsValidation(err):
		return ExitValidation
	default:
		return ExitUnknown
	}
}

// Kind returns a short label for the error class, used in run history.
func Kind(err error) string {
	switch {
	case err == nil:
		return "success"
	case IsConfig(err):
		return "config_error"
	case IsTransport(err):
		return "transport_error"
	case IsValidation(err):
		return "validation_error"
	default:
		return "error"
	}
}
