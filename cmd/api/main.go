// Package main runs the crime query gateway, the read-only HTTP API behind
// the incident dashboard.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/crimestats/querygateway/internal/config"
	"github.com/crimestats/querygateway/internal/database"
	"github.com/crimestats/querygateway/internal/server"
	"github.com/crimestats/querygateway/internal/utils"
)

// Set through -ldflags "-X main.version=..." by the release build.
var (
	version   = "dev"
	commit    = "none"
	buildDate = "unknown"
)

func main() {
	configPath := flag.String("config", "./configs/config.yaml", "Path to configuration file")
	showVersion := flag.Bool("version", false, "Print build information and exit")
	checkOnly := flag.Bool("check", false, "Verify the configuration and the incident database, then exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("crime-query-gateway %s (commit %s, built %s)\n", version, commit, buildDate)
		return
	}

	// A missing .env is normal outside local development
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "ignoring .env: %v\n", err)
	}

	// Plain JSON on stdout until the configured logger replaces it
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", *configPath).Msg("Failed to load configuration")
	}
	if version != "dev" {
		cfg.App.Version = version
	}

	utils.InitLogger(cfg)
	utils.InitValidator()

	if *checkOnly {
		if err := check(cfg); err != nil {
			log.Fatal().Err(err).Msg("Check failed")
		}
		log.Info().Str("driver", cfg.Database.Driver).Msg("Configuration and database OK")
		return
	}

	log.Info().
		Str("version", cfg.App.Version).
		Str("commit", commit).
		Str("environment", cfg.App.Environment).
		Msg("Starting crime query gateway")

	srv, err := server.NewServer(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create server")
	}

	if err := srv.Start(); err != nil {
		log.Fatal().Err(err).Msg("Server error")
	}
}

// check opens the configured store read-only and runs the same check as
// GET /health.
func check(cfg *config.AppConfig) error {
	db, err := database.Open(&cfg.Database, false)
	if err != nil {
		return err
	}
	defer db.Close()

	return db.Verify(context.Background())
}
