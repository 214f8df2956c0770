// Command shardbench compares ephemeral and pooled shard execution of the
// parallel operations across a range of thread counts.
package main

import (
	"context"
	"os"
	"os/signal"
)

func main() {
	enableWindowsANSI()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
