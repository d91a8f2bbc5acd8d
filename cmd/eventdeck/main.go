// Package main implements the unified eventdeck binary.
// This binary can run both services (ingest, query) concurrently or individual
// services based on the --mode flag.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/eventdeck/eventdeck/internal/app"
	"github.com/eventdeck/eventdeck/internal/config"
)

var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	var (
		configFile  string
		dataDir     string
		mode        string
		httpIngest  string
		httpQuery   string
		storeType   string
		showVersion bool
		showHelp    bool
	)

	flag.StringVar(&configFile, "config", "", "Path to configuration file (YAML or JSON)")
	flag.StringVar(&dataDir, "data-dir", "", "Base directory for all data files")
	flag.StringVar(&mode, "mode", "", "Service mode: all, ingest, query")
	flag.StringVar(&httpIngest, "http-ingest", "", "HTTP address for the submission service")
	flag.StringVar(&httpQuery, "http-query", "", "HTTP address for the listing service")
	flag.StringVar(&storeType, "store", "", "Event store type: sqlite, mongo, memory")
	flag.BoolVar(&showVersion, "version", false, "Show version information")
	flag.BoolVar(&showHelp, "help", false, "Show help message")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Eventdeck - The Developer Event Hub\n\n")
		fmt.Fprintf(os.Stderr, "Usage: eventdeck [options]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  eventdeck --data-dir /data/eventdeck\n")
		fmt.Fprintf(os.Stderr, "  eventdeck --mode query --store mongo\n")
		fmt.Fprintf(os.Stderr, "  eventdeck --config /etc/eventdeck/config.yaml\n")
		fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		fmt.Fprintf(os.Stderr, "  EVENTDECK_MODE           Service mode (all, ingest, query)\n")
		fmt.Fprintf(os.Stderr, "  EVENTDECK_DATA_DIR       Base directory for data files\n")
		fmt.Fprintf(os.Stderr, "  EVENTDECK_HTTP_*_ADDR    HTTP addresses for services\n")
		fmt.Fprintf(os.Stderr, "  EVENTDECK_STORE_TYPE     Event store type (sqlite, mongo, memory)\n")
		fmt.Fprintf(os.Stderr, "  EVENTDECK_MONGO_URI      MongoDB connection string\n")
		fmt.Fprintf(os.Stderr, "  EVENTDECK_ASSETS_TYPE    Asset store type (local, s3)\n")
	}

	flag.Parse()

	if showHelp {
		flag.Usage()
		os.Exit(0)
	}

	if showVersion {
		fmt.Printf("eventdeck version %s (commit: %s)\n", version, commit)
		os.Exit(0)
	}

	// A .env file is optional; env vars already set take precedence.
	godotenv.Load()

	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	cfg, err := loadConfig(configFile, dataDir, mode, httpIngest, httpQuery, storeType)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	printBanner(log, cfg)

	application, err := app.New(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create application")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := application.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to start application")
	}

	// Blocks until SIGTERM/SIGINT, draining in-flight requests and closing
	// resources before returning.
	if err := application.WaitForShutdown(ctx); err != nil {
		log.Warn().Err(err).Msg("shutdown error")
	}

	if err := application.Stop(context.Background()); err != nil {
		log.Error().Err(err).Msg("shutdown error")
		os.Exit(1)
	}
}

// loadConfig loads configuration from file, environment, and command line flags.
func loadConfig(configFile, dataDir, mode, httpIngest, httpQuery, storeType string) (*config.Config, error) {
	var cfg *config.Config
	var err error

	// Start with defaults or load from file
	if configFile != "" {
		cfg, err = config.LoadFromFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	} else {
		cfg = config.DefaultConfig()
	}

	// Apply environment variables
	config.LoadFromEnv(cfg)

	// Apply command line flags (highest priority)
	if dataDir != "" {
		cfg.DataDir = dataDir
	}
	if mode != "" {
		cfg.Mode = config.Mode(mode)
	}
	if httpIngest != "" {
		cfg.HTTP.IngestAddr = httpIngest
	}
	if httpQuery != "" {
		cfg.HTTP.QueryAddr = httpQuery
	}
	if storeType != "" {
		cfg.Store.Type = storeType
	}

	return cfg, nil
}

// printBanner prints the startup banner with configuration summary.
func printBanner(log zerolog.Logger, cfg *config.Config) {
	log.Info().
		Str("version", version).
		Str("mode", string(cfg.Mode)).
		Str("data_dir", cfg.DataDir).
		Str("store", cfg.Store.Type).
		Str("assets", cfg.Assets.Type).
		Msg("eventdeck")

	if cfg.ShouldRunIngest() {
		log.Info().
			Str("http", cfg.HTTP.IngestAddr).
			Int("max_upload_mb", cfg.Ingest.MaxUploadMB).
			Msg("submission service")
	}

	if cfg.ShouldRunQuery() {
		log.Info().
			Str("http", cfg.HTTP.QueryAddr).
			Bool("listing_cache", cfg.Query.ListingCacheEnabled).
			Msg("listing service")
	}
}
