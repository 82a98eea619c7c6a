package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/The-Policy-Posse/Network-Graph-1/models"
)

// ErrNoSnapshot wird zurückgegeben, wenn noch kein Snapshot gespeichert wurde.
var ErrNoSnapshot = errors.New("no snapshot available")

// SnapshotStore ist die append-only Ablage der Snapshots.
type SnapshotStore interface {
	// Append legt bei Bedarf die Tabelle an und fügt den Snapshot in einer
	// einzigen Transaktion ein.
	Append(ctx context.Context, snap *models.Snapshot) (*models.NetworkData, error)
	// Latest liefert die zuletzt angelegte Zeile oder ErrNoSnapshot.
	Latest(ctx context.Context) (*models.NetworkData, error)
}

const createTableSQL = `CREATE TABLE IF NOT EXISTS network_data (
	id SERIAL PRIMARY KEY,
	congress_range JSONB NOT NULL,
	data JSONB NOT NULL,
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
)`

// encodeSnapshot serialisiert Congress-Range und Dokument für die Ablage.
func encodeSnapshot(snap *models.Snapshot) (congressRange, data []byte, err error) {
	if snap == nil {
		return nil, nil, errors.New("nil snapshot")
	}
	congressRange, err = json.Marshal(snap.Metadata.CongressRange)
	if err != nil {
		return nil, nil, fmt.Errorf("encode congress range: %w", err)
	}
	data, err = json.Marshal(snap)
	if err != nil {
		return nil, nil, fmt.Errorf("encode snapshot: %w", err)
	}
	return congressRange, data, nil
}
