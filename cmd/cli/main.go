package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/gophauth/internal/client/cli"
	"github.com/dmitrijs2005/gophauth/internal/client/config"
	"github.com/dmitrijs2005/gophauth/internal/logging"
)

func main() {

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.LoadConfig()
	log := logging.New(logging.Options{Level: cfg.LogLevel, Pretty: true})

	app, err := cli.NewApp(ctx, cfg, log)
	if err != nil {
		log.Error(ctx, "failed to start", "error", err)
		os.Exit(1)
	}

	app.Run(ctx)

}
