// Command placeit is the terminal client for the placeit server.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/isdelr/placeit-be/internal/cli"
	"github.com/isdelr/placeit-be/internal/client"
	"github.com/isdelr/placeit-be/internal/logger"
	"github.com/isdelr/placeit-be/internal/session"
)

func main() {
	cfg, args, err := cli.LoadConfig(os.Args[1:], os.Stderr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}
	logger.Init(cfg.LogLevel, "pretty")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	app := cli.NewApp(
		client.New(cfg.Server, cfg.Timeout),
		session.NewFileStore(cfg.SessionFile),
		os.Stdin,
		os.Stdout,
	)
	if err := app.Run(ctx, args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}
