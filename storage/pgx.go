package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/The-Policy-Posse/Network-Graph-1/models"
)

// DBPool ist der Teil von pgxpool.Pool, den der Store benötigt.
type DBPool interface {
	Ping(ctx context.Context) error
	Begin(ctx context.Context) (pgx.Tx, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const (
	insertSnapshotSQL = `INSERT INTO network_data (congress_range, data)
	VALUES ($1, $2)
	RETURNING id, created_at`
	selectLatestSQL = `SELECT id, congress_range, data, created_at
	FROM network_data
	ORDER BY created_at DESC, id DESC
	LIMIT 1`
)

// PgxStore speichert Snapshots direkt über einen pgx-Pool.
type PgxStore struct {
	pool DBPool
	log  *zap.Logger
}

// NewPgxStore prüft die Verbindung und erstellt den Store.
func NewPgxStore(ctx context.Context, pool DBPool, logger *zap.Logger) (*PgxStore, error) {
	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return &PgxStore{pool: pool, log: logger.Named("pgx_store")}, nil
}

// Append implementiert SnapshotStore.
func (s *PgxStore) Append(ctx context.Context, snap *models.Snapshot) (*models.NetworkData, error) {
	cr, data, err := encodeSnapshot(snap)
	if err != nil {
		return nil, err
	}
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			s.log.Error("Failed to rollback transaction", zap.Error(rbErr))
		}
	}()

	if _, err := tx.Exec(ctx, createTableSQL); err != nil {
		return nil, fmt.Errorf("failed to create table: %w", err)
	}
	row := &models.NetworkData{CongressRange: datatypes.JSON(cr), Data: datatypes.JSON(data)}
	var id int64
	if err := tx.QueryRow(ctx, insertSnapshotSQL, cr, data).Scan(&id, &row.CreatedAt); err != nil {
		return nil, fmt.Errorf("failed to insert snapshot: %w", err)
	}
	row.ID = uint(id)
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	s.log.Info("Snapshot gespeichert", zap.Int64("id", id), zap.Int("bytes", len(data)))
	return row, nil
}

// Latest implementiert SnapshotStore.
func (s *PgxStore) Latest(ctx context.Context) (*models.NetworkData, error) {
	var (
		id       int64
		cr, data []byte
		row      models.NetworkData
	)
	err := s.pool.QueryRow(ctx, selectLatestSQL).Scan(&id, &cr, &data, &row.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isUndefinedTable(err) {
			return nil, ErrNoSnapshot
		}
		return nil, fmt.Errorf("failed to query latest snapshot: %w", err)
	}
	row.ID = uint(id)
	row.CongressRange = datatypes.JSON(cr)
	row.Data = datatypes.JSON(data)
	return &row, nil
}

// isUndefinedTable erkennt den Fall, dass noch nie ein Snapshot geschrieben
// wurde und die Tabelle daher fehlt.
func isUndefinedTable(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "42P01"
}
