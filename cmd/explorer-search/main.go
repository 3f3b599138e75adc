package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/0xmhha/explorer-search/internal/config"
	"github.com/0xmhha/explorer-search/internal/logger"
	"github.com/0xmhha/explorer-search/pkg/api"
	"github.com/0xmhha/explorer-search/pkg/backend"
	"github.com/0xmhha/explorer-search/pkg/network"
	"github.com/0xmhha/explorer-search/pkg/search"
	"github.com/0xmhha/explorer-search/pkg/squid"
	"github.com/0xmhha/explorer-search/pkg/storage"
)

var (
	// Version information (injected at build time)
	version   = "dev"
	commit    = "none"
	buildTime = "unknown"
)

func main() {
	// Define command-line flags
	var (
		configFile  = flag.String("config", "", "Path to configuration file (YAML)")
		showVersion = flag.Bool("version", false, "Show version information and exit")
		networks    = flag.String("networks", "", "Comma separated squid networks to add")
		dbPath      = flag.String("db", "", "Database path for local networks")
		logLevel    = flag.String("log-level", "", "Log level (debug, info, warn, error)")
		logFormat   = flag.String("log-format", "", "Log format (json, console)")

		// API server flags
		apiHost         = flag.String("api-host", "", "API server host")
		apiPort         = flag.Int("api-port", 0, "API server port")
		enableGraphQL   = flag.Bool("graphql", false, "Enable GraphQL API")
		enableWebSocket = flag.Bool("websocket", false, "Enable search streams")
	)

	flag.Parse()

	if *showVersion {
		fmt.Printf("explorer-search version %s\n", version)
		fmt.Printf("  commit: %s\n", commit)
		fmt.Printf("  built:  %s\n", buildTime)
		os.Exit(0)
	}

	cfg, err := loadConfig(*configFile, func(cfg *config.Config) {
		applyFlags(cfg, *networks, *dbPath, *logLevel, *logFormat)
		applyAPIFlags(cfg, *apiHost, *apiPort, *enableGraphQL, *enableWebSocket)
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	log.Info("Starting explorer search",
		zap.String("version", version),
		zap.String("commit", commit),
		zap.String("build_time", buildTime),
		zap.Int("networks", len(cfg.Networks)),
		zap.Int("page_size", cfg.Search.PageSize),
		zap.Int("workers", cfg.Search.DispatchWorkers),
	)

	if err := run(cfg, log); err != nil {
		log.Fatal("Explorer search stopped with error", zap.Error(err))
	}
	log.Info("Explorer search stopped")
}

func run(cfg *config.Config, log *zap.Logger) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	registry, err := network.NewRegistryFromConfig(cfg, log)
	if err != nil {
		return fmt.Errorf("failed to register networks: %w", err)
	}

	squidClient := squid.NewClient(&squid.Config{
		Timeout:       cfg.Squid.Timeout,
		RatePerSecond: cfg.Squid.RatePerSecond,
		Burst:         cfg.Squid.Burst,
		UserAgent:     "explorer-search/" + version,
	}, log)
	remote := squid.NewFactory(squidClient, registry, log)

	var local search.ClientFactory
	store, err := openStorage(ctx, cfg, log)
	if err != nil {
		return err
	}
	if store != nil {
		defer func() {
			if err := store.Close(); err != nil {
				log.Error("Failed to close storage", zap.Error(err))
			}
		}()
		local = storage.NewFactory(store, log)
	}

	engine, err := search.NewEngine(backend.NewRouter(registry, remote, local, log),
		search.WithWorkers(cfg.Search.DispatchWorkers),
		search.WithResponseCache(cfg.Search.CacheSize, cfg.Search.CacheTTL),
		search.WithLogger(log),
		search.WithMetrics(search.NewMetrics(prometheus.DefaultRegisterer, "explorer")),
	)
	if err != nil {
		return fmt.Errorf("failed to create search engine: %w", err)
	}
	defer engine.Close()

	sessions := search.NewStore(engine, registry, search.StoreConfig{
		Session: search.SessionConfig{
			PageSize:       cfg.Search.PageSize,
			MinDisplayTime: cfg.Search.MinDisplayTime,
		},
		MaxSessions: cfg.Search.MaxSessions,
		TTL:         cfg.Search.SessionTTL,
	})
	defer sessions.Close()

	apiConfig := api.FromConfig(cfg.API)
	apiServer, err := api.NewServer(apiConfig, log, api.Dependencies{
		Sessions: sessions,
		Engine:   engine,
		Networks: registry,
		Version:  version,
	})
	if err != nil {
		return fmt.Errorf("failed to create API server: %w", err)
	}

	errChan := make(chan error, 1)
	go func() {
		errChan <- apiServer.Start()
	}()

	log.Info("API server started",
		zap.String("address", apiConfig.Address()),
		zap.Strings("networks", network.Names(registry.ListSelectable())),
		zap.Bool("graphql", apiConfig.EnableGraphQL),
		zap.Bool("websocket", apiConfig.EnableWebSocket),
	)

	select {
	case sig := <-sigChan:
		log.Info("Received shutdown signal", zap.String("signal", sig.String()))
	case err := <-errChan:
		if err != nil {
			return err
		}
	}

	log.Info("Shutting down gracefully...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), apiConfig.ShutdownTimeout)
	defer shutdownCancel()
	if err := apiServer.Stop(shutdownCtx); err != nil {
		log.Error("Failed to stop API server gracefully", zap.Error(err))
	}
	return nil
}

// openStorage opens the pebble store when a local network is configured and
// seeds it from the networks' fixture files. It returns nil otherwise.
func openStorage(ctx context.Context, cfg *config.Config, log *zap.Logger) (*storage.PebbleStore, error) {
	var locals []config.NetworkConfig
	for _, n := range cfg.Networks {
		if n.Source == config.SourceLocal {
			locals = append(locals, n)
		}
	}
	if len(locals) == 0 {
		return nil, nil
	}

	storageConfig := storage.DefaultConfig(cfg.Storage.Path)
	storageConfig.ReadOnly = cfg.Storage.ReadOnly
	storageConfig.Cache = cfg.Storage.CacheMB
	store, err := storage.NewPebbleStore(storageConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage: %w", err)
	}
	store.SetLogger(log)

	log.Info("Storage initialized",
		zap.String("path", cfg.Storage.Path),
		zap.Bool("readonly", cfg.Storage.ReadOnly),
	)

	for _, n := range locals {
		if n.Fixtures == "" {
			continue
		}
		start := time.Now()
		count, err := store.LoadFixturesFile(ctx, n.Name, n.Fixtures)
		if err != nil {
			store.Close()
			return nil, fmt.Errorf("failed to load fixtures for %s: %w", n.Name, err)
		}
		log.Info("Fixtures loaded",
			zap.String("network", n.Name),
			zap.String("file", n.Fixtures),
			zap.Int("entities", count),
			zap.Duration("took", time.Since(start)),
		)
	}
	return store, nil
}

// loadConfig loads configuration from file and environment variables, then
// lets flags override both before defaults and validation apply
func loadConfig(configFile string, override func(*config.Config)) (*config.Config, error) {
	cfg := &config.Config{}
	if configFile != "" {
		if err := cfg.LoadFromFile(configFile); err != nil {
			return nil, err
		}
	}
	if err := cfg.LoadFromEnv(); err != nil {
		return nil, err
	}
	override(cfg)
	cfg.SetDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// applyFlags applies command-line flags to configuration
func applyFlags(cfg *config.Config, networks, dbPath, logLevel, logFormat string) {
	if networks != "" {
		cfg.AddNetworks(strings.Split(networks, ","))
	}
	if dbPath != "" {
		cfg.Storage.Path = dbPath
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	if logFormat != "" {
		cfg.Log.Format = logFormat
	}
}

// applyAPIFlags applies API-related command-line flags to configuration
func applyAPIFlags(cfg *config.Config, apiHost string, apiPort int, enableGraphQL, enableWebSocket bool) {
	if apiHost != "" {
		cfg.API.Host = apiHost
	}
	if apiPort > 0 {
		cfg.API.Port = apiPort
	}
	if enableGraphQL {
		cfg.API.EnableGraphQL = true
	}
	if enableWebSocket {
		cfg.API.EnableWebSocket = true
	}
}
