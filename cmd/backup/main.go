package main

import (
	"context"
	"errors"
	"fmt"
	"log"

	"go.uber.org/zap"

	"github.com/The-Policy-Posse/Network-Graph-1/bootstrap"
	"github.com/The-Policy-Posse/Network-Graph-1/config"
	"github.com/The-Policy-Posse/Network-Graph-1/logging"
	"github.com/The-Policy-Posse/Network-Graph-1/services"
	"github.com/The-Policy-Posse/Network-Graph-1/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Fehler beim Laden der Konfiguration: %v", err)
	}
	logger := logging.New(logging.FromConfig(cfg))
	defer logger.Sync()

	ctx := context.Background()
	logger.Info("Starte Backup-Prozess...")

	store, closeStore, err := bootstrap.Store(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("Fehler beim Verbinden mit dem Snapshot-Speicher", zap.Error(err))
	}
	defer closeStore()

	s3Client, err := bootstrap.S3Client(ctx, cfg)
	if err != nil {
		logger.Fatal("Fehler beim Erstellen des S3-Clients", zap.Error(err))
	}
	archive := bootstrap.Archive(cfg, s3Client, logger)
	if archive == nil {
		logger.Fatal("S3 ist nicht konfiguriert (S3_URL, S3_KEY, S3_SECRET, S3_BUCKET)")
	}

	link, err := backupLatest(ctx, store, archive)
	if errors.Is(err, storage.ErrNoSnapshot) {
		logger.Warn("Kein Snapshot vorhanden, nichts zu sichern.")
		return
	}
	if err != nil {
		logger.Fatal("Backup fehlgeschlagen", zap.Error(err))
	}
	logger.Info("Backup-Prozess erfolgreich abgeschlossen.", zap.String("link", link))
}

// backupLatest archiviert den neuesten gespeicherten Snapshot.
func backupLatest(ctx context.Context, store services.SnapshotReader, archive services.Archiver) (string, error) {
	row, err := store.Latest(ctx)
	if err != nil {
		return "", err
	}
	link, err := archive.Store(ctx, row, fmt.Sprintf("row%d", row.ID))
	if err != nil {
		return "", fmt.Errorf("archive snapshot %d: %w", row.ID, err)
	}
	return link, nil
}
