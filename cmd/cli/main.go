package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/clipshare/internal/buildinfo"
	"github.com/dmitrijs2005/clipshare/internal/client/cli"
	"github.com/dmitrijs2005/clipshare/internal/client/config"
	"github.com/dmitrijs2005/clipshare/internal/logging"
)

func main() {

	buildinfo.PrintBuildData(os.Stdout)

	cfg, err := config.LoadConfig(os.Args[1:])
	if err != nil {
		log.Fatalf("%v", err)
	}

	logger, err := logging.New(cfg.LogFormat, cfg.LogLevel, os.Stderr)
	if err != nil {
		log.Fatalf("%v", err)
	}
	if z, ok := logger.(*logging.ZapLogger); ok {
		defer func() { _ = z.Sync() }()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := cli.NewApp(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("%v", err)
	}
	defer func() {
		if err := app.Close(); err != nil {
			logger.Error(ctx, "failed to close app", "error", err)
		}
	}()

	app.Run(ctx)

}
