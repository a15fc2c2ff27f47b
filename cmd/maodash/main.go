package main

import (
	"context"
	"log"
	"log/slog"
	"os"

	"github.com/rfaguiar/manifestops/internal/cli"
	"github.com/rfaguiar/manifestops/internal/config"
	"github.com/rfaguiar/manifestops/internal/logging"
)

func main() {

	ctx := context.Background()
	cfg := config.LoadConfig()

	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stderr, nil)))

	app, err := cli.NewApp(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("%v", err)
		return
	}

	app.Run(ctx)
}
