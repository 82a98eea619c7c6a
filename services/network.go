package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/The-Policy-Posse/Network-Graph-1/config"
	"github.com/The-Policy-Posse/Network-Graph-1/models"
	"github.com/The-Policy-Posse/Network-Graph-1/providers"
	"github.com/The-Policy-Posse/Network-Graph-1/storage"
)

// ErrRebuildInProgress wird gemeldet, wenn bereits ein Rebuild läuft.
var ErrRebuildInProgress = errors.New("rebuild already in progress")

// Archiver legt Kopien gespeicherter Snapshots ab.
type Archiver interface {
	Store(ctx context.Context, row *models.NetworkData, runID string) (string, error)
}

// RebuildResult fasst einen erfolgreichen Rebuild zusammen.
type RebuildResult struct {
	Row         *models.NetworkData
	Snapshot    *models.Snapshot
	Quality     *QualityReport
	ArchiveLink string
}

// NetworkService orchestriert Pipeline, Speicherung, Archivierung und Cache.
type NetworkService struct {
	Config   *config.Config
	Store    storage.SnapshotStore
	Provider providers.Provider
	Archive  Archiver
	Cache    *SnapshotCache
	Logger   *zap.Logger

	running sync.Mutex
}

// NewNetworkService erstellt eine neue Instanz des NetworkService. archive
// darf nil sein.
func NewNetworkService(cfg *config.Config, store storage.SnapshotStore, provider providers.Provider, archive Archiver, logger *zap.Logger) *NetworkService {
	return &NetworkService{
		Config:   cfg,
		Store:    store,
		Provider: provider,
		Archive:  archive,
		Cache:    NewSnapshotCache(store, cfg.CacheTTL),
		Logger:   logger.Named("network"),
	}
}

// Latest liefert das neueste Dokument über den Cache.
func (n *NetworkService) Latest(ctx context.Context) ([]byte, error) {
	return n.Cache.Get(ctx)
}

// Rebuild führt die Pipeline aus, speichert den Snapshot und verwirft den
// Cache. Ein Fehler beim Archivieren bricht den Rebuild nicht ab.
func (n *NetworkService) Rebuild(ctx context.Context, opts config.RunOptions) (*RebuildResult, error) {
	if !n.running.TryLock() {
		return nil, ErrRebuildInProgress
	}
	defer n.running.Unlock()

	log := n.Logger.With(zap.Int("target_congress", opts.TargetCongress), zap.Int("min_collaborations", opts.MinCollaborations))
	log.Info("Starte Rebuild des Netzwerks.")

	res, err := NewPipeline(opts, n.Logger).Run(ctx, n.Provider)
	if err != nil {
		return nil, fmt.Errorf("build snapshot: %w", err)
	}
	row, err := n.Store.Append(ctx, res.Snapshot)
	if err != nil {
		return nil, fmt.Errorf("persist snapshot: %w", err)
	}
	n.Cache.Invalidate()

	out := &RebuildResult{Row: row, Snapshot: res.Snapshot, Quality: res.Quality}
	if n.Archive != nil {
		link, err := n.Archive.Store(ctx, row, res.Snapshot.Metadata.RunID)
		if err != nil {
			log.Error("Archivierung fehlgeschlagen", zap.Error(err))
		} else {
			out.ArchiveLink = link
		}
	}
	log.Info("Rebuild abgeschlossen",
		zap.Uint("row_id", row.ID),
		zap.String("run_id", res.Snapshot.Metadata.RunID),
		zap.Int("collaborations", res.Snapshot.Metadata.TotalCollaborations),
	)
	return out, nil
}
