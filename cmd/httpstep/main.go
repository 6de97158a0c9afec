package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "httpstep",
		Short:         "Send one configured HTTP request and validate the response",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runStep,
	}
	addStepFlags(root)
	root.AddCommand(newRunCmd(), newCheckCmd(), newHistoryCmd())
	return root
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		exitHandler.Fail(err, "httpstep failed")
		return
	}
	exitHandler.Exit(0)
}
