package main

import (
	"fmt"
	"sort"
	"time"

	"github.com/loykin/httpstep/internal/errdefs"
	"github.com/loykin/httpstep/internal/step"
	"github.com/spf13/cobra"
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Send the configured request and validate the response",
		Long: `Send one HTTP request described by a step file and/or flags, then check
the response. Flags and HTTPSTEP_* environment variables override the file.

Exit codes: 0 success, 1 validation failure, 2 configuration error,
3 transport error, 4 anything else.`,
		Args: cobra.NoArgs,
		RunE: runStep,
	}
	addStepFlags(cmd)
	return cmd
}

func runStep(cmd *cobra.Command, _ []string) error {
	f, err := loadStepFile(cmd)
	if err != nil {
		return err
	}
	if err := f.SetupLogging(); err != nil {
		return errdefs.Config("logging", "%w", err)
	}
	hooks, st := f.Hooks()
	defer func() { _ = st.Close() }()

	ctrl := step.NewController(step.WithHooks(hooks...))
	rep, err := ctrl.Run(cmd.Context(), f.ToStepConfig(nil))
	if err != nil {
		return reportedError{err}
	}

	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(out, "%s %s -> %d (%s)\n", rep.Method, rep.URL, rep.StatusCode, rep.Duration.Round(time.Millisecond))
	names := make([]string, 0, len(rep.Outputs))
	for k := range rep.Outputs {
		names = append(names, k)
	}
	sort.Strings(names)
	for _, k := range names {
		_, _ = fmt.Fprintf(out, "%s=%s\n", k, rep.Outputs[k])
	}
	return nil
}
