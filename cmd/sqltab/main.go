package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/bgunnarsson/sqltab/internal/ui"
)

var (
	// Version information
	Version   = "0.1.0"
	BuildDate = "unknown"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	status := ui.NewStatus(os.Stderr)
	if err := newRootCmd(status).ExecuteContext(ctx); err != nil {
		status.Failure(err)
		stop()
		os.Exit(1)
	}
}
