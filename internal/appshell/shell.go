// Package appshell binds an application entrypoint to the process:
// os.Args, the standard streams, and a context that cancels on
// interrupt or termination signals. Everything below it stays testable;
// only Main touches the process itself.
package appshell

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"
)

// Entry is a runnable application: argv in, exit code out.
type Entry func(ctx context.Context, argv []string, stdout, stderr io.Writer) int

// Main runs the entrypoint under a signal context and exits the process
// with its code.
func Main(run Entry) {
	os.Exit(runSignalled(context.Background(), run, os.Args[1:], os.Stdout, os.Stderr))
}

// runSignalled wires SIGINT/SIGTERM cancellation around run. A run cut
// short by a signal exits 130 unless it already reported a failure.
func runSignalled(parent context.Context, run Entry, argv []string, stdout, stderr io.Writer) int {
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	code := run(ctx, argv, stdout, stderr)
	if ctx.Err() != nil && code == 0 {
		code = 130
	}
	return code
}
