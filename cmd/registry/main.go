package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/feral-file/nft-registry/internal/adapter"
	"github.com/feral-file/nft-registry/internal/api/server"
	"github.com/feral-file/nft-registry/internal/audit"
	"github.com/feral-file/nft-registry/internal/config"
	"github.com/feral-file/nft-registry/internal/domain"
	"github.com/feral-file/nft-registry/internal/ledger"
	"github.com/feral-file/nft-registry/internal/logger"
	"github.com/feral-file/nft-registry/internal/registry"
	"github.com/feral-file/nft-registry/internal/store"
)

var (
	configFile = flag.String("config", "", "Path to configuration file")
	envPath    = flag.String("env", "config/", "Path to environment files")
)

func main() {
	flag.Parse()

	// Load configuration
	cfg, err := config.LoadRegistryConfig(*configFile, *envPath)
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// Initialize logger with sentry integration
	err = logger.Initialize(logger.Config{
		Debug:     cfg.Debug,
		SentryDSN: cfg.SentryDSN,
		Tags: map[string]string{
			"service": "nft-registry",
		},
	})
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Flush(2 * time.Second)
	logger.Info("Starting NFT registry")

	// Connect to database
	db, err := gorm.Open(postgres.Open(cfg.Database.DSN()), &gorm.Config{})
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}

	// Configure connection pool
	if err := store.ConfigureConnectionPool(db, cfg.Database.MaxOpenConns, cfg.Database.MaxIdleConns, cfg.Database.ConnMaxLifetime, cfg.Database.ConnMaxIdleTime); err != nil {
		logger.Fatal("Failed to configure connection pool", zap.Error(err))
	}
	if err := store.Migrate(db); err != nil {
		logger.Fatal("Failed to migrate database", zap.Error(err))
	}
	logger.Info("Connected to database",
		zap.Int("max_open_conns", cfg.Database.MaxOpenConns),
		zap.Int("max_idle_conns", cfg.Database.MaxIdleConns),
	)

	// Initialize store and adapters
	snapshotStore := store.NewPGStore(db)
	clock := adapter.NewClock()
	jsonAdapter := adapter.NewJSON()

	// Connect audit publisher
	publisher, err := audit.NewJetStreamPublisher(audit.Config{
		URL:            cfg.NATS.URL,
		StreamName:     cfg.NATS.StreamName,
		MaxReconnects:  cfg.NATS.MaxReconnects,
		ReconnectWait:  cfg.NATS.ReconnectWait,
		ConnectionName: cfg.NATS.ConnectionName,
		ConnectTimeout: cfg.NATS.ConnectTimeout,
	}, adapter.NewNatsJetStream(), jsonAdapter)
	if err != nil {
		logger.Fatal("Failed to connect to NATS", zap.Error(err), zap.String("url", cfg.NATS.URL))
	}
	recorder := audit.NewRecorder(publisher)
	defer recorder.Close()
	logger.Info("Connected audit sink", zap.String("url", cfg.NATS.URL))

	// Create the executor with bootstrap metadata; a persisted snapshot
	// replaces it below.
	exec := registry.NewExecutor(bootstrapMetadata(cfg.Collection, clock), recorder, clock)

	// Restore the latest snapshot, migrating legacy payloads
	bootCtx, bootCancel := context.WithTimeout(context.Background(), 30*time.Second)
	row, err := snapshotStore.LatestSnapshot(bootCtx)
	bootCancel()
	if err != nil {
		logger.Fatal("Failed to load snapshot", zap.Error(err))
	}
	if row != nil {
		snapshot, err := ledger.DecodeSnapshot(row.Payload, jsonAdapter, clock.Now())
		if err != nil {
			logger.Fatal("Failed to decode snapshot", zap.Error(err), zap.String("snapshot_id", row.ID))
		}
		if err := exec.Restore(snapshot); err != nil {
			logger.Fatal("Failed to restore snapshot", zap.Error(err), zap.String("snapshot_id", row.ID))
		}
		logger.Info("Restored snapshot",
			zap.String("snapshot_id", row.ID),
			zap.Int("stored_version", row.Version),
			zap.Uint64("total_supply", exec.TotalSupply()),
		)
	} else {
		logger.Info("No snapshot found, starting with an empty ledger")
	}

	// Create and start server
	srv := server.New(server.Config{
		Debug:        cfg.Debug,
		Host:         cfg.Server.Host,
		Port:         cfg.Server.Port,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
		APIKeys:      cfg.Auth.APIKeys,
	}, exec)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil {
			errCh <- err
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-sigCh:
		logger.Info("Received shutdown signal", zap.String("signal", sig.String()))
	case err := <-errCh:
		logger.Error(err, zap.String("component", "server"))
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	// Shutdown server before persisting, so no mutation lands after the
	// snapshot is taken.
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error(err, zap.String("component", "server"))
	}

	// Persist the final state
	payload, err := exec.Snapshot().Encode(jsonAdapter)
	if err != nil {
		logger.Fatal("Failed to encode snapshot", zap.Error(err))
	}
	if err := snapshotStore.SaveSnapshot(shutdownCtx, ledger.SnapshotVersion, payload); err != nil {
		logger.Fatal("Failed to save snapshot", zap.Error(err))
	}
	logger.Info("Saved snapshot", zap.Uint64("total_supply", exec.TotalSupply()))

	logger.Info("NFT registry stopped")
}

// bootstrapMetadata builds the collection metadata used on a fresh boot.
func bootstrapMetadata(cfg config.CollectionConfig, clock adapter.Clock) domain.CollectionMetadata {
	meta := domain.CollectionMetadata{
		CreatedAt: clock.Now(),
	}
	if cfg.Name != "" {
		name := cfg.Name
		meta.Name = &name
	}
	if cfg.Logo != "" {
		logo := cfg.Logo
		meta.Logo = &logo
	}
	if cfg.Symbol != "" {
		symbol := cfg.Symbol
		meta.Symbol = &symbol
	}
	for _, custodian := range cfg.Custodians {
		meta.AddCustodian(domain.Principal(custodian))
	}
	return meta
}
