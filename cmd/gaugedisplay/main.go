package main

import (
	"flag"
	"log/slog"
	"os"

	"github.com/tronsgaard/gaugemonitor/internal/app"
	"github.com/tronsgaard/gaugemonitor/internal/config"
)

func main() {
	configPath := flag.String("config", "gaugemonitor.txt", "path to configuration file")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	logger.Info("starting gaugemonitor OLED display (MQTT subscriber)")

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("failed to load config", "err", err)
		os.Exit(1)
	}

	if err := app.RunDisplay(cfg, logger); err != nil {
		logger.Error("fatal", "err", err)
		os.Exit(1)
	}
}
