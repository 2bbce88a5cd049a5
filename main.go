package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"icefloe/config"
	"icefloe/migrate"
	"icefloe/paimon"
	"icefloe/storage"
)

func main() {
	configFile := flag.String("config", "config.yaml", "Path to config file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configFile)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	targetCatalog := paimon.NewCatalog(storage.NewLocalStorage(cfg.Target.Warehouse))

	migrator, err := migrate.NewMigrator(
		targetCatalog,
		cfg.Target.Database,
		cfg.Target.Table,
		cfg.Source.Database,
		cfg.Source.Table,
		cfg.Source.Storage,
		cfg.Parallelism,
		cfg.Target.Options,
	)
	if err != nil {
		log.Fatalf("Failed to create migrator: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Cancel in-flight work on shutdown; a committed table stays committed.
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Println("Shutting down...")
		cancel()
	}()

	if err := migrator.ExecuteMigrate(ctx); err != nil {
		var cleanupErr *migrate.CleanupError
		if errors.As(err, &cleanupErr) {
			// The target table is committed and valid; only the source
			// metadata is left behind.
			log.Printf("Warning: %v", cleanupErr)
		} else {
			log.Fatalf("Migration failed: %v", err)
		}
	}

	if cfg.Rename.Enabled {
		if err := migrator.RenameTable(ctx, cfg.Rename.DeleteOrigin); err != nil {
			log.Fatalf("Rename failed: %v", err)
		}
	}

	log.Printf("Migrated %s.%s to %s.%s",
		cfg.Source.Database, cfg.Source.Table, cfg.Target.Database, cfg.Target.Table)
}
