package main

import (
	"flag"
	"os"

	"github.com/xavierca1/visa-leads/internal/config"
	"github.com/xavierca1/visa-leads/internal/infra/database"
	"github.com/xavierca1/visa-leads/internal/logger"
)

func main() {
	direction := flag.String("direction", "up", "up or down")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log := logger.New(true, "info")
		log.Fatal().Err(err).Msg("load config")
	}
	log := logger.New(cfg.IsDev(), cfg.LogLevel)

	if err := database.RunMigrations(cfg.DatabaseURL, *direction); err != nil {
		log.Error().Err(err).Str("direction", *direction).Msg("migration failed")
		os.Exit(1)
	}
	log.Info().Str("direction", *direction).Msg("migrations applied")
}
