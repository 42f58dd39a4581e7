package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rcliao/kandang/internal/cli"
)

func main() {
	// Ctrl-C abandons in-flight remote calls; cache bookkeeping still completes.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cli.RootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
