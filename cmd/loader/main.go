// Package main builds the incident database the gateway reads from a CSV
// export of the gun-violence feed.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/crimestats/querygateway/internal/config"
	"github.com/crimestats/querygateway/internal/constants"
	"github.com/crimestats/querygateway/internal/database"
	"github.com/crimestats/querygateway/internal/dataset"
	"github.com/crimestats/querygateway/internal/utils"
)

func main() {
	var (
		configPath string
		csvPath    string
		dbPath     string
		replace    bool
	)

	flag.StringVar(&configPath, "config", "./configs/config.yaml", "Path to configuration file")
	flag.StringVar(&csvPath, "csv", "", "CSV export to load (required)")
	flag.StringVar(&dbPath, "db", "", "Database file to write, overrides database.path")
	flag.BoolVar(&replace, "replace", false, "Drop and recreate the tables before loading")
	flag.Parse()

	if csvPath == "" {
		fmt.Fprintln(os.Stderr, "-csv is required")
		flag.Usage()
		os.Exit(2)
	}

	_ = godotenv.Load()

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if dbPath != "" {
		cfg.Database.Path = dbPath
	}

	utils.InitLogger(cfg)

	if err := run(cfg, csvPath, replace); err != nil {
		log.Fatal().Err(err).Str("csv", csvPath).Msg("Failed to load incidents")
	}
}

func run(cfg *config.AppConfig, csvPath string, replace bool) error {
	f, err := os.Open(csvPath)
	if err != nil {
		return fmt.Errorf("failed to open CSV: %w", err)
	}
	defer f.Close()

	if cfg.Database.Driver == constants.DriverSQLite {
		if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0o755); err != nil {
			return fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := database.Open(&cfg.Database, true)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx := context.Background()
	if err := db.Verify(ctx); err != nil {
		return err
	}

	start := time.Now()
	n, err := dataset.NewBuilder(db).LoadCSV(ctx, f, replace)
	if err != nil {
		return err
	}

	log.Info().
		Int("incidents", n).
		Str("database", cfg.Database.Path).
		Dur("duration", time.Since(start)).
		Msg("Incidents loaded")
	return nil
}
