package main

import (
	"errors"
	"os"

	"github.com/loykin/httpstep/internal/common"
	"github.com/loykin/httpstep/internal/errdefs"
)

// ExitHandler lets tests observe termination instead of exiting.
type ExitHandler interface {
	Exit(code int)
	Fail(err error, msg string, keyvals ...any)
}

type DefaultExitHandler struct{}

func NewDefaultExitHandler() *DefaultExitHandler {
	return &DefaultExitHandler{}
}

func (h *DefaultExitHandler) Exit(code int) {
	os.Exit(code)
}

// Fail logs err unless the step controller already reported it, then exits
// with the code of its error class.
func (h *DefaultExitHandler) Fail(err error, msg string, keyvals ...any) {
	if !alreadyReported(err) {
		all := append([]any{"error", err}, keyvals...)
		common.GetLogger().WithComponent("main").Error(msg, all...)
	}
	h.Exit(errdefs.ExitCode(err))
}

// reportedError marks an error the step controller has logged already.
type reportedError struct{ error }

func (e reportedError) Unwrap() error { return e.error }

func alreadyReported(err error) bool {
	var r reportedError
	return errors.As(err, &r)
}

var exitHandler ExitHandler = NewDefaultExitHandler()
