package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/dmarro/tunepull/internal/cache"
	"github.com/dmarro/tunepull/internal/config"
	"github.com/dmarro/tunepull/internal/log"
	"github.com/dmarro/tunepull/internal/pipeline"
	"github.com/dmarro/tunepull/internal/provider/spotify"
	"github.com/dmarro/tunepull/internal/server"
	"github.com/dmarro/tunepull/internal/service"
	"github.com/dmarro/tunepull/internal/source/youtube"
)

// Version is set at build time via -ldflags
var Version = "dev"

func main() {
	var showVersion bool
	flag.BoolVar(&showVersion, "v", false, "print version")
	flag.BoolVar(&showVersion, "version", false, "print version")
	flag.Parse()

	if showVersion {
		fmt.Printf("tunepull %s\n", Version)
		return
	}

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	logger, err := log.SetupLogger(&cfg.Logging)
	if err != nil {
		// Fall back to null logger if file logging fails
		logger = log.NullLogger()
	}
	slog.SetDefault(logger)

	logger.Info("starting tunepull", "version", Version)

	var store *cache.Store
	switch cfg.Cache.Backend {
	case config.CacheBackendBolt:
		store, err = cache.NewBoltStore(cfg.Cache.Path, cfg.Cache.TTL, logger)
		if err != nil {
			return fmt.Errorf("failed to open cache: %w", err)
		}
	default:
		store = cache.NewFileStore(cfg.Cache.Path, cfg.Cache.TTL, logger)
	}
	defer store.Close()

	ytClient := youtube.NewClient(cfg.YouTube.BaseURL, logger)
	spClient := spotify.NewClient(
		cfg.Spotify.SearchURL,
		cfg.Spotify.TokenURL,
		cfg.Spotify.ClientID,
		cfg.Spotify.ClientSecret,
		store,
		logger,
	)

	searchSvc := service.NewSearchService(ytClient, store, logger)
	metadataSvc := service.NewMetadataService(spClient, store, logger)
	pipe := pipeline.New(ytClient, cfg.FFmpeg.Path, "", logger)

	srv := server.New(searchSvc, metadataSvc, pipe, logger)
	return srv.Run(cfg.Server.Addr)
}
