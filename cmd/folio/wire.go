package main

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/jtrask/folio/internal/auth"
	"github.com/jtrask/folio/internal/config"
	"github.com/jtrask/folio/internal/ledger"
	"github.com/jtrask/folio/internal/logger"
	"github.com/jtrask/folio/internal/pricedata"
	"github.com/jtrask/folio/internal/storage/object"
)

// loadConfig reads the config file when one is given, defaults otherwise.
func loadConfig(log *zap.Logger) (*config.Config, error) {
	var cfg *config.Config
	var err error

	if cfgFile != "" {
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return nil, fmt.Errorf("loading config: %w", err)
		}
	} else {
		cfg = config.Defaults()
		log.Warn("no config file specified, using defaults")
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// buildStore creates the configured object storage backend.
func buildStore(cfg *config.Config) (object.Store, error) {
	switch cfg.Storage.Type {
	case "s3":
		return object.NewS3(object.S3Config{
			Bucket:    cfg.Storage.S3.Bucket,
			Endpoint:  cfg.Storage.S3.Endpoint,
			Region:    cfg.Storage.S3.Region,
			AccessKey: cfg.Storage.S3.AccessKey,
			SecretKey: cfg.Storage.S3.SecretKey,
			Prefix:    cfg.Storage.S3.Prefix,
		})
	default:
		return object.NewLocalFS(cfg.Storage.Path)
	}
}

// components is the wired set shared by the CLI commands.
type components struct {
	cfg      *config.Config
	store    object.Store
	ledger   *ledger.Store
	prices   pricedata.Repository
	resolver *pricedata.Resolver
	tokens   *auth.Store
}

func buildComponents(log *zap.Logger) (*components, error) {
	cfg, err := loadConfig(log)
	if err != nil {
		return nil, err
	}

	store, err := buildStore(cfg)
	if err != nil {
		return nil, fmt.Errorf("creating storage: %w", err)
	}

	return &components{
		cfg:      cfg,
		store:    store,
		ledger:   ledger.NewStore(store, cfg.Storage.LedgerKey, logger.Named(log, "ledger")),
		prices:   pricedata.NewStoreRepository(store, cfg.Storage.PricePrefix, logger.Named(log, "pricedata")),
		resolver: pricedata.NewResolver(cfg.Replay.ProbeDays),
		tokens:   auth.NewStore(store, cfg.Storage.TokensKey),
	}, nil
}
