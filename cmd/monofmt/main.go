package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/andyballingall/monofmt/internal/app"
	"github.com/andyballingall/monofmt/internal/runner"
)

func main() {
	// Create context that cancels on SIGINT (Ctrl+C) or SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := app.Run(ctx, os.Args, os.Stdout, os.Stderr, nil)
	stop()
	if err != nil {
		//nolint:gocritic // os.Exit is intentional
		os.Exit(runner.ExitCode(err))
	}
}
