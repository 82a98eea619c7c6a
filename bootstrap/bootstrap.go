// Package bootstrap verdrahtet Speicher, Datenquellen und S3 anhand der
// Konfiguration. Es wird von Server, Build-CLI und Backup-Job gemeinsam
// genutzt.
package bootstrap

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/The-Policy-Posse/Network-Graph-1/config"
	"github.com/The-Policy-Posse/Network-Graph-1/providers"
	"github.com/The-Policy-Posse/Network-Graph-1/providers/httpsource"
	"github.com/The-Policy-Posse/Network-Graph-1/providers/localfs"
	"github.com/The-Policy-Posse/Network-Graph-1/providers/s3source"
	"github.com/The-Policy-Posse/Network-Graph-1/services"
	"github.com/The-Policy-Posse/Network-Graph-1/storage"
)

// S3Client liefert einen Client, falls S3 konfiguriert ist, sonst nil.
func S3Client(ctx context.Context, cfg *config.Config) (*s3.Client, error) {
	if !cfg.S3Enabled() {
		return nil, nil
	}
	client, err := storage.NewS3Client(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create s3 client: %w", err)
	}
	return client, nil
}

// Provider wählt die Datenquelle gemäß DATA_PROVIDER.
func Provider(cfg *config.Config, client *s3.Client, log *zap.Logger) (providers.Provider, error) {
	switch cfg.DataProvider {
	case "local":
		return localfs.NewFetcher(cfg.DataDir), nil
	case "http":
		return httpsource.NewFetcher(cfg, log), nil
	case "s3":
		if client == nil {
			return nil, fmt.Errorf("s3 data provider requires S3 credentials")
		}
		return s3source.NewFetcher(client, cfg, log), nil
	default:
		return nil, fmt.Errorf("unknown data provider %q", cfg.DataProvider)
	}
}

// Store öffnet den Snapshot-Speicher gemäß STORE_DRIVER. Die zurückgegebene
// Funktion schließt die Verbindung.
func Store(ctx context.Context, cfg *config.Config, log *zap.Logger) (storage.SnapshotStore, func(), error) {
	switch cfg.StoreDriver {
	case "pgx":
		pool, err := pgxpool.New(ctx, cfg.URL())
		if err != nil {
			return nil, nil, fmt.Errorf("create pgx pool: %w", err)
		}
		store, err := storage.NewPgxStore(ctx, pool, log)
		if err != nil {
			pool.Close()
			return nil, nil, err
		}
		return store, pool.Close, nil
	case "gorm":
		db, err := storage.OpenGorm(cfg)
		if err != nil {
			return nil, nil, err
		}
		closeFn := func() {
			if sqlDB, err := db.DB(); err == nil {
				_ = sqlDB.Close()
			}
		}
		return storage.NewGormStore(db, log), closeFn, nil
	default:
		return nil, nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
}

// Archive liefert das S3-Archiv oder nil, wenn kein Client vorhanden ist.
func Archive(cfg *config.Config, client *s3.Client, log *zap.Logger) services.Archiver {
	if client == nil {
		return nil
	}
	return storage.NewArchive(client, cfg, log)
}
