package services

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/The-Policy-Posse/Network-Graph-1/models"
)

// SnapshotReader liefert die zuletzt gespeicherte Snapshot-Zeile.
type SnapshotReader interface {
	Latest(ctx context.Context) (*models.NetworkData, error)
}

const cacheKey = "network_data"

// SnapshotCache hält das zuletzt gelesene Dokument für eine feste Zeit.
// Gleichzeitige Fehlzugriffe teilen sich eine einzige Leseoperation.
// Fehler werden nicht gecacht.
type SnapshotCache struct {
	reader SnapshotReader
	ttl    time.Duration
	now    func() time.Time

	mu      sync.RWMutex
	data    []byte
	expires time.Time
	gen     uint64

	group singleflight.Group
}

// NewSnapshotCache erstellt einen Cache vor dem gegebenen Reader.
func NewSnapshotCache(reader SnapshotReader, ttl time.Duration) *SnapshotCache {
	return &SnapshotCache{reader: reader, ttl: ttl, now: time.Now}
}

// Get liefert das JSON-Dokument des neuesten Snapshots.
func (c *SnapshotCache) Get(ctx context.Context) ([]byte, error) {
	c.mu.RLock()
	if c.data != nil && c.now().Before(c.expires) {
		data := c.data
		c.mu.RUnlock()
		cacheRequests.WithLabelValues("hit").Inc()
		return data, nil
	}
	gen := c.gen
	c.mu.RUnlock()
	cacheRequests.WithLabelValues("miss").Inc()

	v, err, _ := c.group.Do(cacheKey, func() (interface{}, error) {
		row, err := c.reader.Latest(context.WithoutCancel(ctx))
		if err != nil {
			return nil, err
		}
		data := []byte(row.Data)
		c.mu.Lock()
		if c.gen == gen {
			c.data = data
			c.expires = c.now().Add(c.ttl)
		}
		c.mu.Unlock()
		return data, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]byte), nil
}

// Invalidate verwirft den gecachten Eintrag.
func (c *SnapshotCache) Invalidate() {
	c.mu.Lock()
	c.data = nil
	c.expires = time.Time{}
	c.gen++
	c.mu.Unlock()
	c.group.Forget(cacheKey)
}
