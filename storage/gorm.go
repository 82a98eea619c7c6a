package storage

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/The-Policy-Posse/Network-Graph-1/config"
	"github.com/The-Policy-Posse/Network-Graph-1/models"
)

// GormStore speichert Snapshots über GORM in PostgreSQL.
type GormStore struct {
	DB     *gorm.DB
	Logger *zap.Logger
}

// OpenGorm baut die Verbindung anhand der Konfiguration auf.
func OpenGorm(cfg *config.Config) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	return db, nil
}

// NewGormStore erstellt einen GormStore.
func NewGormStore(db *gorm.DB, logger *zap.Logger) *GormStore {
	return &GormStore{DB: db, Logger: logger.Named("gorm_store")}
}

// Append implementiert SnapshotStore.
func (s *GormStore) Append(ctx context.Context, snap *models.Snapshot) (*models.NetworkData, error) {
	cr, data, err := encodeSnapshot(snap)
	if err != nil {
		return nil, err
	}
	row := &models.NetworkData{
		CongressRange: datatypes.JSON(cr),
		Data:          datatypes.JSON(data),
	}
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(createTableSQL).Error; err != nil {
			return fmt.Errorf("create table: %w", err)
		}
		if err := tx.Create(row).Error; err != nil {
			return fmt.Errorf("insert snapshot: %w", err)
		}
		return nil
	})
	if err != nil {
		s.Logger.Error("Snapshot konnte nicht gespeichert werden", zap.Error(err))
		return nil, err
	}
	s.Logger.Info("Snapshot gespeichert", zap.Uint("id", row.ID), zap.Int("bytes", len(data)))
	return row, nil
}

// Latest implementiert SnapshotStore.
func (s *GormStore) Latest(ctx context.Context) (*models.NetworkData, error) {
	var row models.NetworkData
	err := s.DB.WithContext(ctx).Order("created_at DESC").Order("id DESC").First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) || isUndefinedTable(err) {
			return nil, ErrNoSnapshot
		}
		return nil, fmt.Errorf("query latest snapshot: %w", err)
	}
	return &row, nil
}
