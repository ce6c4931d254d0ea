package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/vango-dev/userboard/internal/errors"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		errors.PrintError(os.Stderr, errors.FromError(err, "U900"))
		os.Exit(1)
	}
}
