package main

import (
	"context"
	"log"
	"os"

	"github.com/aivise/portal-session/internal/logging"
	"github.com/aivise/portal-session/internal/portal/cli"
	"github.com/aivise/portal-session/internal/portal/config"
)

func main() {

	ctx := context.Background()
	cfg := config.LoadConfig()
	logger := logging.New(cfg.LogLevel, cfg.LogPretty, os.Stderr)

	app, err := cli.NewApp(cfg, logger)
	if err != nil {
		log.Fatalf("%v", err)
		return
	}

	app.Run(ctx)
}
