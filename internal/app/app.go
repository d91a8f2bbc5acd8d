// Package app provides the unified application lifecycle management for Eventdeck.
package app

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"

	httpapi "github.com/eventdeck/eventdeck/internal/api/http"
	"github.com/eventdeck/eventdeck/internal/assets"
	"github.com/eventdeck/eventdeck/internal/cache"
	"github.com/eventdeck/eventdeck/internal/config"
	"github.com/eventdeck/eventdeck/internal/server"
	"github.com/eventdeck/eventdeck/internal/store"
)

// App manages all Eventdeck service lifecycles.
type App struct {
	cfg *config.Config
	log zerolog.Logger

	// Shared resources
	events   store.EventStore
	assets   assets.AssetStore
	shutdown *server.ShutdownManager

	// Service components
	ingestServer *http.Server
	queryServer  *http.Server

	// Lifecycle
	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// New creates a new App with the given configuration.
func New(cfg *config.Config, log zerolog.Logger) (*App, error) {
	cfg.Resolve()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("failed to create directories: %w", err)
	}

	return &App{cfg: cfg, log: log}, nil
}

// Start initializes shared resources and starts all configured services.
func (a *App) Start(ctx context.Context) error {
	a.mu.Lock()
	if a.running {
		a.mu.Unlock()
		return fmt.Errorf("app is already running")
	}
	a.running = true
	a.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	a.cancel = cancel

	if err := a.initSharedResources(ctx); err != nil {
		a.cleanup()
		return fmt.Errorf("failed to initialize shared resources: %w", err)
	}

	if a.cfg.ShouldRunIngest() {
		if err := a.startIngestService(); err != nil {
			a.cleanup()
			return fmt.Errorf("failed to start ingest service: %w", err)
		}
	}

	if a.cfg.ShouldRunQuery() {
		if err := a.startQueryService(); err != nil {
			a.cleanup()
			return fmt.Errorf("failed to start query service: %w", err)
		}
	}

	a.log.Info().Str("mode", string(a.cfg.Mode)).Msg("eventdeck started")
	return nil
}

// initSharedResources initializes the event store, asset store, and shutdown
// manager.
func (a *App) initSharedResources(ctx context.Context) error {
	var err error

	switch a.cfg.Store.Type {
	case "sqlite":
		a.events, err = store.NewSQLiteStore(a.cfg.Store.Path)
	case "mongo":
		a.events, err = store.NewMongoStore(ctx, a.cfg.Store.Mongo.URI, a.cfg.Store.Mongo.Database)
	case "memory":
		a.events = store.NewMemoryStore()
	default:
		return fmt.Errorf("unsupported store type: %s", a.cfg.Store.Type)
	}
	if err != nil {
		return fmt.Errorf("failed to initialize event store: %w", err)
	}
	a.log.Info().Str("type", a.cfg.Store.Type).Msg("event store initialized")

	switch a.cfg.Assets.Type {
	case "local":
		a.assets, err = assets.NewLocalAssets(a.cfg.Assets.Path)
	case "s3":
		s3Cfg := assets.DefaultS3Config()
		if a.cfg.Assets.S3.Region != "" {
			s3Cfg.Region = a.cfg.Assets.S3.Region
		}
		s3Cfg.Endpoint = a.cfg.Assets.S3.Endpoint
		s3Cfg.UsePathStyle = a.cfg.Assets.S3.UsePathStyle
		s3Cfg.PublicBaseURL = a.cfg.Assets.S3.PublicBaseURL
		a.assets, err = assets.NewS3Assets(ctx, a.cfg.Assets.S3.Bucket, s3Cfg)
	default:
		return fmt.Errorf("unsupported assets type: %s", a.cfg.Assets.Type)
	}
	if err != nil {
		return fmt.Errorf("failed to initialize asset store: %w", err)
	}
	a.log.Info().Str("type", a.cfg.Assets.Type).Msg("asset store initialized")
	if a.cfg.Assets.Type == "s3" {
		a.log.Info().
			Str("bucket", a.cfg.Assets.S3.Bucket).
			Str("region", a.cfg.Assets.S3.Region).
			Str("endpoint", a.cfg.Assets.S3.Endpoint).
			Msg("s3 asset configuration")
	}

	// The store is registered first so the LIFO close order shuts the
	// servers down before the store they read from.
	a.shutdown = server.NewShutdownManager(server.ShutdownConfig{})
	a.shutdown.RegisterCloser(a.events)

	return nil
}

// startIngestService starts the submission HTTP server.
func (a *App) startIngestService() error {
	ingestHandler := httpapi.NewIngestHandler(a.events, a.assets, a.cfg.MaxUploadBytes(),
		a.log.With().Str("service", "ingest").Logger())

	mux := http.NewServeMux()
	middleware := httpapi.ChainMiddleware(
		server.ShutdownMiddleware(a.shutdown),
		httpapi.RecoveryMiddleware,
		httpapi.RequestIDMiddleware,
		httpapi.ContentTypeMiddleware,
	)
	mux.Handle("/v1/events", middleware(ingestHandler))
	mux.HandleFunc("/health", a.healthHandler("eventdeck-ingest"))

	a.ingestServer = &http.Server{
		Addr:         a.cfg.HTTP.IngestAddr,
		Handler:      mux,
		ReadTimeout:  a.cfg.HTTP.ReadTimeout,
		WriteTimeout: a.cfg.HTTP.WriteTimeout,
		IdleTimeout:  a.cfg.HTTP.IdleTimeout,
	}

	gs := server.NewGracefulHTTPServer(a.ingestServer, a.shutdown)
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		a.log.Info().Str("addr", a.cfg.HTTP.IngestAddr).Msg("ingest HTTP server listening")
		if err := gs.ListenAndServe(); err != nil {
			a.log.Error().Err(err).Msg("ingest HTTP server error")
		}
	}()

	return nil
}

// startQueryService starts the read-only HTTP server.
func (a *App) startQueryService() error {
	var listing *cache.ListingCache
	if a.cfg.Query.ListingCacheEnabled && a.cfg.Query.ListingTTL > 0 {
		listing = cache.NewListingCache(a.cfg.Query.ListingTTL)
		a.log.Info().Dur("ttl", a.cfg.Query.ListingTTL).Msg("listing cache enabled")
	}

	queryHandler := httpapi.NewQueryHandler(a.events, listing,
		a.log.With().Str("service", "query").Logger())

	mux := http.NewServeMux()
	middleware := httpapi.ChainMiddleware(
		server.ShutdownMiddleware(a.shutdown),
		httpapi.RecoveryMiddleware,
		httpapi.RequestIDMiddleware,
		httpapi.ContentTypeMiddleware,
	)
	mux.Handle("/v1/events", middleware(queryHandler))
	mux.Handle("/v1/events/", middleware(queryHandler))
	mux.HandleFunc("/health", a.healthHandler("eventdeck-query"))

	a.queryServer = &http.Server{
		Addr:         a.cfg.HTTP.QueryAddr,
		Handler:      mux,
		ReadTimeout:  a.cfg.HTTP.ReadTimeout,
		WriteTimeout: a.cfg.HTTP.WriteTimeout,
		IdleTimeout:  a.cfg.HTTP.IdleTimeout,
	}

	gs := server.NewGracefulHTTPServer(a.queryServer, a.shutdown)
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		a.log.Info().Str("addr", a.cfg.HTTP.QueryAddr).Msg("query HTTP server listening")
		if err := gs.ListenAndServe(); err != nil {
			a.log.Error().Err(err).Msg("query HTTP server error")
		}
	}()

	return nil
}

// Stop gracefully stops all services and releases resources.
func (a *App) Stop(ctx context.Context) error {
	a.mu.Lock()
	if !a.running {
		a.mu.Unlock()
		return nil
	}
	a.running = false
	a.mu.Unlock()

	a.log.Info().Msg("initiating graceful shutdown")

	if a.cancel != nil {
		a.cancel()
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	// Drains in-flight requests, then closes the servers and the store in
	// reverse registration order. Idempotent, so a signal-driven shutdown
	// that already ran makes this a no-op.
	if err := a.shutdown.Shutdown(shutdownCtx); err != nil {
		a.log.Warn().Err(err).Msg("shutdown error")
	}

	done := make(chan struct{})
	go func() {
		a.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-shutdownCtx.Done():
		a.log.Warn().Msg("shutdown timeout, some goroutines may not have finished")
	}

	a.log.Info().Msg("eventdeck stopped")
	return nil
}

// cleanup releases resources acquired before a failed start; after a
// successful start the shutdown manager owns them.
func (a *App) cleanup() {
	if a.events != nil {
		if err := a.events.Close(); err != nil {
			a.log.Warn().Err(err).Msg("event store close error")
		}
	}
}

// healthHandler returns a health check handler for the given service.
func (a *App) healthHandler(service string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, `{"status":"healthy","service":"%s","mode":"%s"}`, service, a.cfg.Mode)
	}
}

// WaitForShutdown blocks until a shutdown signal is received.
func (a *App) WaitForShutdown(ctx context.Context) error {
	return a.shutdown.ListenForSignals(ctx)
}
