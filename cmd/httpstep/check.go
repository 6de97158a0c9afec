package main

import (
	"fmt"

	"github.com/loykin/httpstep/internal/errdefs"
	"github.com/loykin/httpstep/internal/step"
	"github.com/loykin/httpstep/internal/util"
	"github.com/spf13/cobra"
)

func newCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Validate a step without sending the request",
		Long: `Load a step and compile everything a run needs: URL, auth scheme,
headers, method, transport options and the response pattern. No network
call is made.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := loadStepFile(cmd)
			if err != nil {
				return err
			}
			logger, err := f.Logging.NewLogger()
			if err != nil {
				return errdefs.Config("logging", "%w", err)
			}
			spec, v, err := step.NewController(step.WithLogger(logger)).Prepare(f.ToStepConfig(nil))
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "step %q is valid\n", util.TrimWithDefault(f.Name, "default"))
			_, _ = fmt.Fprintf(out, "  request: %s %s\n", spec.Method, spec.URL)
			if spec.HasAuth() {
				_, _ = fmt.Fprintf(out, "  auth:    %s as %s\n", spec.AuthScheme, spec.AuthUser)
			}
			if p := v.Pattern(); !p.Empty() {
				_, _ = fmt.Fprintf(out, "  pattern: %s\n", p)
			}
			return nil
		},
	}
	addStepFlags(cmd)
	return cmd
}
